package solver

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/limaJavier/ihtp/pkg/model"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func repeat(value, times int) []int {
	return lo.Times(times, func(int) int { return value })
}

// newTestProblem returns a single-room, single-theater, single-surgeon problem with unit weights
func newTestProblem(days int) model.Problem {
	return model.Problem{
		Days:              days,
		SkillLevels:       3,
		ShiftTypes:        []string{"early", "late"},
		AgeGroups:         []string{"infant", "adult", "elderly"},
		Surgeons:          []model.Surgeon{{Id: "s0", MaxSurgeryTime: repeat(480, days)}},
		OperatingTheaters: []model.OperatingTheater{{Id: "t0", Availability: repeat(480, days)}},
		Rooms:             []model.Room{{Id: "r0", Capacity: 2}},
		Weights: model.Weights{
			RoomMixedAge:           1,
			RoomNurseSkill:         1,
			ContinuityOfCare:       1,
			NurseExcessiveWorkload: 1,
			OpenOperatingTheater:   1,
			SurgeonTransfer:        1,
			PatientDelay:           1,
			UnscheduledOptional:    1,
		},
	}
}

func newTestPatient(problem model.Problem, id string, mandatory bool, gender string, release, due, stay int) model.Patient {
	entries := stay * len(problem.ShiftTypes)
	return model.Patient{
		Id:                 id,
		Mandatory:          mandatory,
		Gender:             gender,
		AgeGroup:           "adult",
		LengthOfStay:       stay,
		SurgeryReleaseDay:  release,
		SurgeryDueDay:      due,
		SurgeryDuration:    60,
		SurgeonId:          "s0",
		WorkloadProduced:   repeat(1, entries),
		SkillLevelRequired: repeat(0, entries),
	}
}

func newTestOccupant(problem model.Problem, id, gender, room string, stay int) model.Occupant {
	entries := stay * len(problem.ShiftTypes)
	return model.Occupant{
		Id:                 id,
		Gender:             gender,
		AgeGroup:           "adult",
		LengthOfStay:       stay,
		WorkloadProduced:   repeat(1, entries),
		SkillLevelRequired: repeat(0, entries),
		RoomId:             room,
	}
}

// propose builds an encoding from the given proposals with an empty room list for every nurse working shift
func propose(problem model.Problem, proposals ...model.EncodedPatient) model.EncodedSolution {
	nurses := make([][]string, problem.WorkingShiftSlots())
	for i := range nurses {
		nurses[i] = []string{}
	}
	return model.EncodedSolution{
		Patients: proposals,
		Nurses:   nurses,
	}
}

func newTestSolver(t *testing.T, problem model.Problem) *solverImplementation {
	t.Helper()
	solver, err := NewSolver(problem, nil, nil)
	require.NoError(t, err)
	return solver.(*solverImplementation)
}

func assignmentOf(solution model.Solution, id string) model.PatientAssignment {
	assignment, ok := lo.Find(solution.Patients, func(assignment model.PatientAssignment) bool { return assignment.Id == id })
	if !ok {
		panic("no assignment for " + id)
	}
	return assignment
}

// newRichProblem is a small instance exercising every resource: several rooms, theaters, surgeons, occupants and nurses
func newRichProblem() model.Problem {
	problem := newTestProblem(4)
	problem.Surgeons = []model.Surgeon{
		{Id: "s0", MaxSurgeryTime: []int{120, 180, 0, 120}},
		{Id: "s1", MaxSurgeryTime: []int{60, 60, 120, 120}},
	}
	problem.OperatingTheaters = []model.OperatingTheater{
		{Id: "t0", Availability: []int{120, 120, 60, 0}},
		{Id: "t1", Availability: []int{60, 180, 120, 240}},
	}
	problem.Rooms = []model.Room{{Id: "r0", Capacity: 2}, {Id: "r1", Capacity: 1}, {Id: "r2", Capacity: 3}}
	problem.Occupants = []model.Occupant{
		newTestOccupant(problem, "a0", "A", "r0", 2),
		newTestOccupant(problem, "a1", "B", "r2", 1),
	}

	genders := []string{"A", "B"}
	for i := range 10 {
		patient := newTestPatient(problem, fmt.Sprintf("p%d", i), i%3 == 0, genders[i%2], i%3, min(i%3+1, 3), 1+i%3)
		patient.SurgeonId = []string{"s0", "s1"}[i%2]
		patient.SurgeryDuration = 30 + 15*(i%4)
		patient.AgeGroup = problem.AgeGroups[i%3]
		patient.SkillLevelRequired = lo.Times(len(patient.SkillLevelRequired), func(j int) int { return (i + j) % 3 })
		patient.WorkloadProduced = lo.Times(len(patient.WorkloadProduced), func(j int) int { return 1 + (i*j)%4 })
		if i%4 == 1 {
			patient.IncompatibleRoomIds = []string{"r1"}
		}
		problem.Patients = append(problem.Patients, patient)
	}

	problem.Nurses = []model.Nurse{
		{Id: "n0", SkillLevel: 2, WorkingShifts: []model.WorkingShift{{Day: 0, Shift: "early", MaxLoad: 6}, {Day: 1, Shift: "early", MaxLoad: 6}, {Day: 2, Shift: "late", MaxLoad: 4}}},
		{Id: "n1", SkillLevel: 0, WorkingShifts: []model.WorkingShift{{Day: 0, Shift: "early", MaxLoad: 3}, {Day: 0, Shift: "late", MaxLoad: 8}, {Day: 3, Shift: "early", MaxLoad: 5}}},
		{Id: "n2", SkillLevel: 1, WorkingShifts: []model.WorkingShift{{Day: 1, Shift: "early", MaxLoad: 5}, {Day: 2, Shift: "late", MaxLoad: 5}, {Day: 3, Shift: "late", MaxLoad: 5}}},
	}
	return problem
}

// randomEncoding proposes arbitrary days (including some outside the horizon) and rooms, and random room lists for every working shift
func randomEncoding(problem model.Problem, rng *rand.Rand) model.EncodedSolution {
	patients := lo.Map(problem.Patients, func(patient model.Patient, _ int) model.EncodedPatient {
		return model.EncodedPatient{
			PatientId:    patient.Id,
			AdmissionDay: rng.IntN(problem.Days+2) - 1,
			RoomId:       problem.Rooms[rng.IntN(len(problem.Rooms))].Id,
		}
	})
	rng.Shuffle(len(patients), func(i, j int) { patients[i], patients[j] = patients[j], patients[i] })

	nurses := make([][]string, problem.WorkingShiftSlots())
	for i := range nurses {
		nurses[i] = lo.Filter(lo.Map(problem.Rooms, func(room model.Room, _ int) string { return room.Id }), func(string, int) bool {
			return rng.IntN(2) == 0
		})
	}
	return model.EncodedSolution{Patients: patients, Nurses: nurses}
}
