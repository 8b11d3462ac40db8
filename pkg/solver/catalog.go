package solver

import (
	"github.com/limaJavier/ihtp/pkg/model"
	"github.com/samber/lo"
)

// block is a (nurse, working shift) slot. Blocks are kept in the order the encoding lists their room lists
type block struct {
	nurse   int
	day     int
	shift   int
	maxLoad int
}

// catalog holds the lookups derived from the immutable problem. It is built once per Solver
type catalog struct {
	rooms     map[string]int
	theaters  map[string]int
	surgeons  map[string]int
	patients  map[string]int
	shifts    map[string]int
	ageGroups map[string]int

	patientSurgeon []int
	patientAge     []int
	occupantAge    []int
	occupantRoom   []int
	incompatible   [][]bool // [patient][room]

	blocks []block
}

func newCatalog(problem model.Problem) (*catalog, error) {
	indexOf := func(ids []string) map[string]int {
		return lo.SliceToMap(lo.Range(len(ids)), func(i int) (string, int) { return ids[i], i })
	}

	catalog := &catalog{
		rooms:     indexOf(lo.Map(problem.Rooms, func(room model.Room, _ int) string { return room.Id })),
		theaters:  indexOf(lo.Map(problem.OperatingTheaters, func(theater model.OperatingTheater, _ int) string { return theater.Id })),
		surgeons:  indexOf(lo.Map(problem.Surgeons, func(surgeon model.Surgeon, _ int) string { return surgeon.Id })),
		patients:  indexOf(lo.Map(problem.Patients, func(patient model.Patient, _ int) string { return patient.Id })),
		shifts:    indexOf(problem.ShiftTypes),
		ageGroups: indexOf(problem.AgeGroups),
	}

	//** Patients
	catalog.patientSurgeon = make([]int, len(problem.Patients))
	catalog.patientAge = make([]int, len(problem.Patients))
	catalog.incompatible = make([][]bool, len(problem.Patients))
	for i, patient := range problem.Patients {
		surgeon, ok := catalog.surgeons[patient.SurgeonId]
		if !ok {
			return nil, newInvariantError("patient", patient.Id, "unknown surgeon \"%v\"", patient.SurgeonId)
		}
		age, ok := catalog.ageGroups[patient.AgeGroup]
		if !ok {
			return nil, newInvariantError("patient", patient.Id, "unknown age group \"%v\"", patient.AgeGroup)
		}
		catalog.patientSurgeon[i] = surgeon
		catalog.patientAge[i] = age

		catalog.incompatible[i] = make([]bool, len(problem.Rooms))
		for _, roomId := range patient.IncompatibleRoomIds {
			room, ok := catalog.rooms[roomId]
			if !ok {
				return nil, newInvariantError("patient", patient.Id, "unknown incompatible room \"%v\"", roomId)
			}
			catalog.incompatible[i][room] = true
		}
	}

	//** Occupants
	catalog.occupantAge = make([]int, len(problem.Occupants))
	catalog.occupantRoom = make([]int, len(problem.Occupants))
	for i, occupant := range problem.Occupants {
		room, ok := catalog.rooms[occupant.RoomId]
		if !ok {
			return nil, newInvariantError("occupant", occupant.Id, "unknown room \"%v\"", occupant.RoomId)
		}
		age, ok := catalog.ageGroups[occupant.AgeGroup]
		if !ok {
			return nil, newInvariantError("occupant", occupant.Id, "unknown age group \"%v\"", occupant.AgeGroup)
		}
		catalog.occupantRoom[i] = room
		catalog.occupantAge[i] = age
	}

	//** Nurse blocks
	for i, nurse := range problem.Nurses {
		for _, workingShift := range nurse.WorkingShifts {
			shift, ok := catalog.shifts[workingShift.Shift]
			if !ok {
				return nil, newInvariantError("nurse", nurse.Id, "unknown shift \"%v\"", workingShift.Shift)
			}
			if workingShift.Day < 0 || workingShift.Day >= problem.Days {
				return nil, newInvariantError("nurse", nurse.Id, "working day %d outside the horizon", workingShift.Day)
			}
			catalog.blocks = append(catalog.blocks, block{
				nurse:   i,
				day:     workingShift.Day,
				shift:   shift,
				maxLoad: workingShift.MaxLoad,
			})
		}
	}

	//** Per-day arrays
	for _, surgeon := range problem.Surgeons {
		if len(surgeon.MaxSurgeryTime) < problem.Days {
			return nil, newInvariantError("surgeon", surgeon.Id, "%d daily limits for a %d-day horizon", len(surgeon.MaxSurgeryTime), problem.Days)
		}
	}
	for _, theater := range problem.OperatingTheaters {
		if len(theater.Availability) < problem.Days {
			return nil, newInvariantError("operating theater", theater.Id, "%d daily availabilities for a %d-day horizon", len(theater.Availability), problem.Days)
		}
	}

	return catalog, nil
}
