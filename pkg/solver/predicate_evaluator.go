package solver

import (
	"github.com/limaJavier/ihtp/pkg/model"
	"github.com/samber/lo"
)

// predicateEvaluator answers feasibility questions against the current resource state
type predicateEvaluator interface {
	// Checks whether the patient's surgeon has enough surgery time left on the given day
	SurgeonAvailable(patient, day int) bool

	// Checks whether at least one operating theater can still host the patient's surgery on the given day
	TheaterAvailable(patient, day int) bool

	// Checks whether the room keeps a free bed and hosts no other gender on every day of the patient's stay
	RoomAvailable(patient, day, room int) bool

	// Checks whether the patient can be admitted on the given day into the given room
	Feasible(patient, day, room int) bool
}

type predicateEvaluatorStandard struct {
	problem *model.Problem
	catalog *catalog
	state   *resourceState
}

func newPredicateEvaluator(problem *model.Problem, catalog *catalog, state *resourceState) predicateEvaluator {
	return &predicateEvaluatorStandard{
		problem: problem,
		catalog: catalog,
		state:   state,
	}
}

func (evaluator *predicateEvaluatorStandard) inHorizon(day int) bool {
	return day >= 0 && day < evaluator.problem.Days
}

func (evaluator *predicateEvaluatorStandard) SurgeonAvailable(patient, day int) bool {
	if !evaluator.inHorizon(day) {
		return false
	}
	surgeon := evaluator.catalog.patientSurgeon[patient]
	return evaluator.state.surgeonTime[surgeon][day] >= evaluator.problem.Patients[patient].SurgeryDuration
}

func (evaluator *predicateEvaluatorStandard) TheaterAvailable(patient, day int) bool {
	if !evaluator.inHorizon(day) {
		return false
	}
	duration := evaluator.problem.Patients[patient].SurgeryDuration
	return lo.ContainsBy(evaluator.state.theaters, func(theater model.OperatingTheaterState) bool {
		return theater.AvailabilityPerDay[day] >= duration
	})
}

func (evaluator *predicateEvaluatorStandard) RoomAvailable(patient, day, room int) bool {
	if !evaluator.inHorizon(day) {
		return false
	}

	gender := evaluator.problem.Patients[patient].Gender
	state := evaluator.state.rooms[room]
	lastDay := min(day+evaluator.problem.Patients[patient].LengthOfStay, evaluator.problem.Days)

	for stayDay := day; stayDay < lastDay; stayDay++ {
		if state.CapacityPerDay[stayDay] <= 0 {
			return false
		}
		for _, other := range state.PatientsPerDay[stayDay] {
			if evaluator.problem.Patients[other].Gender != gender {
				return false
			}
		}
		for _, occupant := range state.OccupantsPerDay[stayDay] {
			if evaluator.problem.Occupants[occupant].Gender != gender {
				return false
			}
		}
	}
	return true
}

func (evaluator *predicateEvaluatorStandard) Feasible(patient, day, room int) bool {
	return evaluator.SurgeonAvailable(patient, day) &&
		evaluator.TheaterAvailable(patient, day) &&
		evaluator.RoomAvailable(patient, day, room)
}
