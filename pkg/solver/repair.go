package solver

import "github.com/limaJavier/ihtp/pkg/model"

// repairPolicy bounds the days a repair may try for a patient
type repairPolicy struct {
	name    string
	lastDay func(problem *model.Problem, patient int) int
}

var mandatoryRepair = repairPolicy{
	name: "mandatory",
	lastDay: func(problem *model.Problem, patient int) int {
		return min(problem.Patients[patient].SurgeryDueDay, problem.Days-1)
	},
}

var optionalRepair = repairPolicy{
	name: "optional",
	lastDay: func(problem *model.Problem, _ int) int {
		return problem.Days - 1
	},
}

// repair writes into the proposal the first feasible (day, room) pair, days ascending and rooms in problem order.
// It returns false when no pair exists within the policy's window
func (s *solverImplementation) repair(patient int, proposal *model.EncodedPatient, policy repairPolicy) bool {
	firstDay := max(s.problem.Patients[patient].SurgeryReleaseDay, 0)
	lastDay := policy.lastDay(&s.problem, patient)

	for day := firstDay; day <= lastDay; day++ {
		if !s.predicates.SurgeonAvailable(patient, day) || !s.predicates.TheaterAvailable(patient, day) {
			continue
		}

		for room := range s.problem.Rooms {
			if s.catalog.incompatible[patient][room] {
				continue
			}
			if s.predicates.RoomAvailable(patient, day, room) {
				proposal.AdmissionDay = day
				proposal.RoomId = s.problem.Rooms[room].Id
				return true
			}
		}
	}
	return false
}
