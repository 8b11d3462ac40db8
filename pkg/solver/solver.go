package solver

import (
	"time"

	"github.com/limaJavier/ihtp/pkg/model"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Fitness is compared lexicographically: fewer hard violations first, then lower soft penalty
type Fitness struct {
	Hard int
	Soft int
}

func (fitness Fitness) Better(other Fitness) bool {
	return fitness.Hard < other.Hard || (fitness.Hard == other.Hard && fitness.Soft < other.Soft)
}

// Solver decodes encoded solutions of one problem and evaluates them. A Solver is not safe for concurrent use; build one per worker
type Solver interface {
	// Decodes, repairs and evaluates the encoding. Repaired patients are written back into it
	Solve(encoded *model.EncodedSolution) (Fitness, error)

	// Solves the encoding and then applies the first nurse block swap that improves it, leaving the swap in the encoding
	LocalSearchNurses(encoded *model.EncodedSolution) (Fitness, error)

	// Returns a copy of the last decoded solution
	Solution() model.Solution
}

func NewSolver(problem model.Problem, logger *zap.Logger, metrics *Metrics) (Solver, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	catalog, err := newCatalog(problem)
	if err != nil {
		return nil, err
	}

	solver := &solverImplementation{
		problem: problem,
		catalog: catalog,
		indexer: newIndexer(len(problem.ShiftTypes)),
		logger:  logger,
		metrics: metrics,
	}
	solver.predicates = newPredicateEvaluator(&solver.problem, catalog, &solver.state)
	return solver, nil
}

type solverImplementation struct {
	problem    model.Problem
	catalog    *catalog
	indexer    indexer
	predicates predicateEvaluator
	logger     *zap.Logger
	metrics    *Metrics

	phase phase
	state resourceState

	//** Decoding results indexed by patient (-1 when unscheduled)
	admission []int
	roomOf    []int
	theaterOf []int

	assignments []model.PatientAssignment // In decoding order
	nurses      []model.NurseAssignment
	blockRooms  [][]int     // Room indices per nurse block
	coverage    [][][][]int // [room][day][shift] covering nurses, reused across evaluations

	hardConstraints []int
	softConstraints []int
	solution        model.Solution
}

func (s *solverImplementation) Solve(encoded *model.EncodedSolution) (Fitness, error) {
	start := time.Now()
	defer s.metrics.observeEvaluation(evaluationFull, start)

	s.restart()

	if err := s.decode(encoded); err != nil {
		return Fitness{}, err
	}
	if err := s.applyNurses(encoded); err != nil {
		return Fitness{}, err
	}
	return s.evaluate()
}

func (s *solverImplementation) Solution() model.Solution {
	return s.solution.Clone()
}

// restart discards every trace of the previous evaluation
func (s *solverImplementation) restart() {
	s.phase = phaseReset
	s.state = reset(s.problem, s.catalog)

	patients := len(s.problem.Patients)
	s.admission = lo.Times(patients, func(int) int { return -1 })
	s.roomOf = lo.Times(patients, func(int) int { return -1 })
	s.theaterOf = lo.Times(patients, func(int) int { return -1 })
	s.assignments = make([]model.PatientAssignment, 0, patients)
	s.nurses = nil
	s.blockRooms = nil
	s.hardConstraints = nil
	s.softConstraints = nil
	s.solution = model.Solution{}
}

func (s *solverImplementation) fitness() Fitness {
	return Fitness{
		Hard: lo.Sum(s.hardConstraints),
		Soft: lo.Sum(s.softConstraints),
	}
}

func (s *solverImplementation) assembleSolution() {
	s.solution = model.Solution{
		RoomStates:           s.state.rooms,
		TheaterStates:        s.state.theaters,
		Patients:             s.assignments,
		Nurses:               s.nurses,
		SoftConstraints:      s.softConstraints,
		TotalSoftConstraints: lo.Sum(s.softConstraints),
		HardConstraints:      s.hardConstraints,
	}
}
