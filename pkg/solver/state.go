package solver

import (
	"slices"

	"github.com/limaJavier/ihtp/pkg/model"
	"github.com/samber/lo"
)

// resourceState is the mutable snapshot consumed while decoding. A fresh one is built at the start of every evaluation
type resourceState struct {
	rooms       []model.RoomState
	theaters    []model.OperatingTheaterState
	surgeonTime [][]int // [surgeon][day] remaining surgery time
}

func reset(problem model.Problem, catalog *catalog) resourceState {
	emptyDays := func() [][]int {
		days := make([][]int, problem.Days)
		for day := range days {
			days[day] = make([]int, 0)
		}
		return days
	}

	rooms := lo.Map(problem.Rooms, func(room model.Room, _ int) model.RoomState {
		state := model.RoomState{
			Room:            room,
			CapacityPerDay:  make([]int, problem.Days),
			PatientsPerDay:  emptyDays(),
			OccupantsPerDay: emptyDays(),
		}
		for day := range problem.Days {
			state.CapacityPerDay[day] = room.Capacity
		}
		return state
	})

	for i, occupant := range problem.Occupants {
		room := &rooms[catalog.occupantRoom[i]]
		for day := range min(occupant.LengthOfStay, problem.Days) {
			room.CapacityPerDay[day]--
			room.OccupantsPerDay[day] = append(room.OccupantsPerDay[day], i)
		}
	}

	theaters := lo.Map(problem.OperatingTheaters, func(theater model.OperatingTheater, _ int) model.OperatingTheaterState {
		return model.OperatingTheaterState{
			Theater:            theater,
			AvailabilityPerDay: slices.Clone(theater.Availability[:problem.Days]),
			PatientsPerDay:     emptyDays(),
		}
	})

	surgeonTime := lo.Map(problem.Surgeons, func(surgeon model.Surgeon, _ int) []int {
		return slices.Clone(surgeon.MaxSurgeryTime[:problem.Days])
	})

	return resourceState{
		rooms:       rooms,
		theaters:    theaters,
		surgeonTime: surgeonTime,
	}
}
