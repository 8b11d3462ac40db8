package search

import (
	"context"
	"errors"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/limaJavier/ihtp/pkg/model"
	"github.com/limaJavier/ihtp/pkg/solver"
	"go.uber.org/zap"
)

// randomSearch is the baseline: independent random encodings, keeping the best one
type randomSearch struct {
	problem    model.Problem
	parameters Parameters
	solver     solver.Solver
	rng        *rand.Rand
	logger     *zap.Logger
	metrics    *solver.Metrics
}

func NewRandomSearch(problem model.Problem, parameters Parameters, logger *zap.Logger, metrics *solver.Metrics) (Search, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := validateParameters(parameters); err != nil {
		return nil, err
	}

	evaluator, err := solver.NewSolver(problem, logger, metrics)
	if err != nil {
		return nil, err
	}

	return &randomSearch{
		problem:    problem,
		parameters: parameters,
		solver:     evaluator,
		rng:        newRandom(parameters.Seed),
		logger:     logger,
		metrics:    metrics,
	}, nil
}

// Run draws PopulationSize encodings per generation. Draws the solver rejects as structurally invalid are discarded
func (search *randomSearch) Run(ctx context.Context) (Result, error) {
	result := Result{RunId: uuid.NewString()}
	logger := search.logger.With(zap.String("run_id", result.RunId), zap.String("strategy", StrategyRandom))

	found := false
	iterations := search.parameters.PopulationSize * search.parameters.MaxGenerations
	for iteration := range iterations {
		if ctx.Err() != nil {
			logger.Info("search interrupted", zap.Int("iteration", iteration), zap.Error(ctx.Err()))
			break
		}

		encoded := RandomEncoding(search.problem, search.rng)
		fitness, err := search.solver.Solve(&encoded)
		if err != nil {
			if solver.IsInvariantError(err) {
				logger.Debug("discarding invalid encoding", zap.Error(err))
				continue
			}
			return Result{}, err
		}
		result.Evaluations++

		if !found || fitness.Better(result.Fitness) {
			found = true
			result.Encoding, result.Fitness, result.Solution = encoded, fitness, search.solver.Solution()
		}

		if (iteration+1)%search.parameters.PopulationSize == 0 && found {
			result.Generations++
			search.metrics.RecordGeneration(result.Fitness)
			logger.Info("generation completed",
				zap.Int("generation", result.Generations-1),
				zap.Int("best_hard", result.Fitness.Hard),
				zap.Int("best_soft", result.Fitness.Soft),
			)
		}
	}

	if !found {
		return Result{}, errors.Join(errors.New("no valid encoding was found"), ctx.Err())
	}

	logger.Info("search finished",
		zap.Int("generations", result.Generations),
		zap.Int("evaluations", result.Evaluations),
		zap.Int("hard", result.Fitness.Hard),
		zap.Int("soft", result.Fitness.Soft),
	)
	return result, nil
}
