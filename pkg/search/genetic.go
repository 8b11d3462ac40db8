package search

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sort"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/limaJavier/ihtp/pkg/model"
	"github.com/limaJavier/ihtp/pkg/solver"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type individual struct {
	encoding  model.EncodedSolution
	fitness   solver.Fitness
	evaluated bool
}

func (ind *individual) clone() *individual {
	return &individual{
		encoding:  ind.encoding.Clone(),
		fitness:   ind.fitness,
		evaluated: ind.evaluated,
	}
}

type geneticSearch struct {
	problem    model.Problem
	parameters Parameters
	workers    []solver.Solver
	rng        *rand.Rand
	logger     *zap.Logger
	metrics    *solver.Metrics
	patients   map[string]int
	slotGroups [][]int // Nurse slots sharing a (day, shift)
}

func NewGeneticSearch(problem model.Problem, parameters Parameters, logger *zap.Logger, metrics *solver.Metrics) (Search, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := validateParameters(parameters); err != nil {
		return nil, err
	}

	workers, err := newWorkers(problem, parameters.Workers, logger, metrics)
	if err != nil {
		return nil, err
	}

	//** Index nurse slots by (day, shift)
	groups := make(map[[2]int][]int)
	keys := make([][2]int, 0)
	index := 0
	for _, nurse := range problem.Nurses {
		for _, workingShift := range nurse.WorkingShifts {
			key := [2]int{workingShift.Day, slices.Index(problem.ShiftTypes, workingShift.Shift)}
			if _, exists := groups[key]; !exists {
				keys = append(keys, key)
			}
			groups[key] = append(groups[key], index)
			index++
		}
	}

	return &geneticSearch{
		problem:    problem,
		parameters: parameters,
		workers:    workers,
		rng:        newRandom(parameters.Seed),
		logger:     logger,
		metrics:    metrics,
		patients:   lo.SliceToMap(lo.Range(len(problem.Patients)), func(i int) (string, int) { return problem.Patients[i].Id, i }),
		slotGroups: lo.Map(keys, func(key [2]int, _ int) []int { return groups[key] }),
	}, nil
}

func (search *geneticSearch) Run(ctx context.Context) (Result, error) {
	result := Result{RunId: uuid.NewString()}
	logger := search.logger.With(zap.String("run_id", result.RunId), zap.String("strategy", StrategyGenetic))

	population := make([]*individual, search.parameters.PopulationSize)
	for i := range population {
		population[i] = &individual{encoding: RandomEncoding(search.problem, search.rng)}
	}

	var best *individual
	for generation := range search.parameters.MaxGenerations {
		evaluations, err := search.evaluate(ctx, population)
		result.Evaluations += evaluations
		if err != nil {
			return Result{}, err
		}

		//** Keep a deep copy of the best individual ever seen
		for _, candidate := range population {
			if candidate.evaluated && (best == nil || candidate.fitness.Better(best.fitness)) {
				best = candidate.clone()
			}
		}

		if ctx.Err() != nil {
			logger.Info("search interrupted", zap.Int("generation", generation), zap.Error(ctx.Err()))
			break
		}

		result.Generations++
		search.metrics.RecordGeneration(best.fitness)
		logger.Info("generation completed",
			zap.Int("generation", generation),
			zap.Int("best_hard", best.fitness.Hard),
			zap.Int("best_soft", best.fitness.Soft),
		)

		if generation+1 < search.parameters.MaxGenerations {
			population = search.breed(population)
		}
	}

	if best == nil {
		return Result{}, errors.Join(errors.New("no individual was evaluated"), ctx.Err())
	}

	//** Decode the best encoding once more to recover its solution
	fitness, err := search.workers[0].Solve(&best.encoding)
	if err != nil {
		return Result{}, err
	}

	result.Encoding = best.encoding
	result.Fitness = fitness
	result.Solution = search.workers[0].Solution()
	logger.Info("search finished",
		zap.Int("generations", result.Generations),
		zap.Int("evaluations", result.Evaluations),
		zap.Int("hard", fitness.Hard),
		zap.Int("soft", fitness.Soft),
	)
	return result, nil
}

// evaluate assesses every pending individual, spreading them over the workers. It stops early, without error, once the context is done
func (search *geneticSearch) evaluate(ctx context.Context, population []*individual) (int, error) {
	var evaluations atomic.Int64
	group, groupCtx := errgroup.WithContext(ctx)

	for w, worker := range search.workers {
		group.Go(func() error {
			for i := w; i < len(population); i += len(search.workers) {
				if groupCtx.Err() != nil {
					return nil
				}

				candidate := population[i]
				if candidate.evaluated {
					continue
				}

				var fitness solver.Fitness
				var err error
				if search.parameters.LocalSearch {
					fitness, err = worker.LocalSearchNurses(&candidate.encoding)
				} else {
					fitness, err = worker.Solve(&candidate.encoding)
				}
				if err != nil {
					return fmt.Errorf("cannot evaluate individual %d: %w", i, err)
				}

				candidate.fitness, candidate.evaluated = fitness, true
				evaluations.Add(1)
			}
			return nil
		})
	}

	err := group.Wait()
	return int(evaluations.Load()), err
}

// breed keeps the elites and fills the rest of the next population with mutated offspring of tournament winners
func (search *geneticSearch) breed(population []*individual) []*individual {
	evaluated := lo.Filter(population, func(candidate *individual, _ int) bool { return candidate.evaluated })
	sort.SliceStable(evaluated, func(i, j int) bool {
		return evaluated[i].fitness.Better(evaluated[j].fitness)
	})

	next := make([]*individual, 0, search.parameters.PopulationSize)
	next = append(next, evaluated[:min(search.parameters.EliteCount, len(evaluated))]...)

	for len(next) < search.parameters.PopulationSize {
		first, second := search.tournament(evaluated), search.tournament(evaluated)

		var child model.EncodedSolution
		if search.rng.Float64() < search.parameters.CrossoverRate {
			child = search.crossover(first.encoding, second.encoding)
		} else {
			child = first.encoding.Clone()
		}
		search.mutate(&child)

		next = append(next, &individual{encoding: child})
	}
	return next
}

func (search *geneticSearch) tournament(population []*individual) *individual {
	winner := population[search.rng.IntN(len(population))]
	for range search.parameters.TournamentSize - 1 {
		candidate := population[search.rng.IntN(len(population))]
		if candidate.fitness.Better(winner.fitness) {
			winner = candidate
		}
	}
	return winner
}

// crossover takes every patient gene and every nurse slot from either parent with equal probability. Parents list patients in the same order
func (search *geneticSearch) crossover(first, second model.EncodedSolution) model.EncodedSolution {
	child := first.Clone()
	for i := range child.Patients {
		if search.rng.IntN(2) == 1 {
			child.Patients[i] = second.Patients[i]
		}
	}
	for i := range child.Nurses {
		if search.rng.IntN(2) == 1 {
			child.Nurses[i] = slices.Clone(second.Nurses[i])
		}
	}
	return child
}

// mutate moves patients to a new day or room, swaps nurse slots of the same shift, and re-covers nurses once patients moved
func (search *geneticSearch) mutate(encoded *model.EncodedSolution) {
	moved := false
	for i := range encoded.Patients {
		if search.rng.Float64() >= search.parameters.MutationRate {
			continue
		}
		patient := search.problem.Patients[search.patients[encoded.Patients[i].PatientId]]
		if search.rng.IntN(2) == 0 {
			encoded.Patients[i].AdmissionDay = randomDay(search.problem, patient, search.rng)
		} else {
			encoded.Patients[i].RoomId = randomRoom(search.problem, patient, search.rng)
		}
		moved = true
	}

	if moved {
		encoded.Nurses = coverNurses(search.problem, *encoded)
		return
	}

	for _, group := range search.slotGroups {
		if len(group) < 2 || search.rng.Float64() >= search.parameters.MutationRate {
			continue
		}
		first := search.rng.IntN(len(group))
		second := (first + 1 + search.rng.IntN(len(group)-1)) % len(group)
		encoded.Nurses[group[first]], encoded.Nurses[group[second]] = encoded.Nurses[group[second]], encoded.Nurses[group[first]]
	}
}
