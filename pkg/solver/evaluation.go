package solver

import (
	"slices"
	"time"

	"github.com/limaJavier/ihtp/pkg/model"
	"github.com/samber/lo"
)

// Soft categories in canonical order
const (
	roomMixedAge = iota
	roomNurseSkill
	continuityOfCare
	nurseExcessiveWorkload
	openOperatingTheater
	surgeonTransfer
	patientDelay
	unscheduledOptional
)

// Soft categories that depend on nurse assignments only
var nurseSoftConstraints = []int{roomNurseSkill, continuityOfCare, nurseExcessiveWorkload}

// evaluationState is the read-only view handed to constraint functions
type evaluationState struct {
	problem    *model.Problem
	catalog    *catalog
	indexer    indexer
	rooms      []model.RoomState
	theaters   []model.OperatingTheaterState
	admission  []int
	roomOf     []int
	blockRooms [][]int
	coverage   [][][][]int
}

func (s *solverImplementation) evaluationState() evaluationState {
	return evaluationState{
		problem:    &s.problem,
		catalog:    s.catalog,
		indexer:    s.indexer,
		rooms:      s.state.rooms,
		theaters:   s.state.theaters,
		admission:  s.admission,
		roomOf:     s.roomOf,
		blockRooms: s.blockRooms,
		coverage:   s.coverage,
	}
}

func evaluateHardConstraints(state evaluationState) []int {
	return lo.Map(hardConstraints, func(constraint func(evaluationState) int, _ int) int {
		return constraint(state)
	})
}

// evaluate computes every hard and soft category of the decoded solution
func (s *solverImplementation) evaluate() (Fitness, error) {
	if s.phase != phaseNursesApplied {
		return Fitness{}, newInvariantError("solver", "", "cannot evaluate in phase \"%v\"", s.phase)
	}

	state := s.evaluationState()
	hard := evaluateHardConstraints(state)
	soft := make([]int, len(softConstraints))
	for category, constraint := range softConstraints {
		penalty, err := constraint(state)
		if err != nil {
			return Fitness{}, err
		}
		soft[category] = penalty
	}

	s.hardConstraints, s.softConstraints = hard, soft
	if err := s.advance(phaseEvaluated); err != nil {
		return Fitness{}, err
	}
	s.assembleSolution()
	return s.fitness(), nil
}

// reevaluateNurses reapplies the nurse portion of the encoding and recomputes only what depends on it
func (s *solverImplementation) reevaluateNurses(encoded *model.EncodedSolution) (Fitness, error) {
	start := time.Now()
	defer s.metrics.observeEvaluation(evaluationNurses, start)

	if s.phase != phaseEvaluated {
		return Fitness{}, newInvariantError("solver", "", "nurse-only evaluation requires a full evaluation, current phase is \"%v\"", s.phase)
	}
	if err := s.applyNurses(encoded); err != nil {
		return Fitness{}, err
	}

	state := s.evaluationState()
	hard := evaluateHardConstraints(state)
	soft := slices.Clone(s.softConstraints)
	for _, category := range nurseSoftConstraints {
		penalty, err := softConstraints[category](state)
		if err != nil {
			return Fitness{}, err
		}
		soft[category] = penalty
	}

	s.hardConstraints, s.softConstraints = hard, soft
	if err := s.advance(phaseEvaluated); err != nil {
		return Fitness{}, err
	}
	s.assembleSolution()
	return s.fitness(), nil
}
