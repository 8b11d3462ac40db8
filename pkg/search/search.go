package search

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/limaJavier/ihtp/pkg/model"
	"github.com/limaJavier/ihtp/pkg/solver"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

const (
	StrategyGenetic = "genetic"
	StrategyRandom  = "random"
)

var Strategies = []string{StrategyGenetic, StrategyRandom}

type Parameters struct {
	PopulationSize int     `validate:"gte=2"`
	MaxGenerations int     `validate:"gte=1"`
	CrossoverRate  float64 `validate:"gte=0,lte=1"`
	MutationRate   float64 `validate:"gte=0,lte=1"`
	EliteCount     int     `validate:"gte=0,ltfield=PopulationSize"`
	TournamentSize int     `validate:"gte=1"`
	Workers        int     `validate:"gte=1"`
	LocalSearch    bool
	Seed           uint64 // Zero picks a time-based seed
}

type Result struct {
	RunId       string
	Encoding    model.EncodedSolution
	Fitness     solver.Fitness
	Solution    model.Solution
	Generations int
	Evaluations int
}

// Search explores encodings of one problem until its budget or the context runs out
type Search interface {
	Run(ctx context.Context) (Result, error)
}

func New(strategy string, problem model.Problem, parameters Parameters, logger *zap.Logger, metrics *solver.Metrics) (Search, error) {
	switch strategy {
	case StrategyGenetic:
		return NewGeneticSearch(problem, parameters, logger, metrics)
	case StrategyRandom:
		return NewRandomSearch(problem, parameters, logger, metrics)
	default:
		return nil, fmt.Errorf("unknown search strategy \"%v\"", strategy)
	}
}

var validate = validator.New()

func validateParameters(parameters Parameters) error {
	if err := validate.Struct(parameters); err != nil {
		return fmt.Errorf("invalid search parameters: %w", err)
	}
	return nil
}

func newRandom(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed>>1|1))
}

// newWorkers builds one solver per worker, each on its own copy of the problem
func newWorkers(problem model.Problem, count int, logger *zap.Logger, metrics *solver.Metrics) ([]solver.Solver, error) {
	workers := make([]solver.Solver, 0, count)
	for range count {
		worker, err := solver.NewSolver(problem.Clone(), logger, metrics)
		if err != nil {
			return nil, err
		}
		workers = append(workers, worker)
	}
	return workers, nil
}

// admissionWindow returns the days a patient may be proposed on. Mandatory patients are bounded by their due day
func admissionWindow(problem model.Problem, patient model.Patient) (first, last int) {
	first = min(max(patient.SurgeryReleaseDay, 0), problem.Days-1)
	last = problem.Days - 1
	if patient.Mandatory {
		last = min(patient.SurgeryDueDay, last)
	}
	return first, max(first, last)
}

func randomDay(problem model.Problem, patient model.Patient, rng *rand.Rand) int {
	first, last := admissionWindow(problem, patient)
	return first + rng.IntN(last-first+1)
}

func randomRoom(problem model.Problem, patient model.Patient, rng *rand.Rand) string {
	compatible := lo.Filter(problem.Rooms, func(room model.Room, _ int) bool {
		return !lo.Contains(patient.IncompatibleRoomIds, room.Id)
	})
	if len(compatible) == 0 {
		compatible = problem.Rooms
	}
	return compatible[rng.IntN(len(compatible))].Id
}

// RandomEncoding proposes a random day inside every patient's window and a random compatible room, then covers the resulting
// occupancy with nurses
func RandomEncoding(problem model.Problem, rng *rand.Rand) model.EncodedSolution {
	encoded := model.EncodedSolution{
		Patients: lo.Map(problem.Patients, func(patient model.Patient, _ int) model.EncodedPatient {
			return model.EncodedPatient{
				PatientId:    patient.Id,
				AdmissionDay: randomDay(problem, patient, rng),
				RoomId:       randomRoom(problem, patient, rng),
			}
		}),
	}
	encoded.Nurses = coverNurses(problem, encoded)
	return encoded
}
