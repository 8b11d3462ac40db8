package solver

import (
	"github.com/samber/lo"
)

var hardConstraints = []func(state evaluationState) int{
	genderMixingViolations,
	roomCompatibilityViolations,
	surgeonOvertimeViolations,
	theaterOvertimeViolations,
	mandatoryUnscheduledViolations,
	admissionDayViolations,
	roomCapacityViolations,
	nursePresenceViolations,
}

// Room-days hosting more than one gender
func genderMixingViolations(state evaluationState) int {
	violations := 0
	for _, room := range state.rooms {
		for day := range state.problem.Days {
			genders := make([]string, 0, len(room.PatientsPerDay[day])+len(room.OccupantsPerDay[day]))
			for _, patient := range room.PatientsPerDay[day] {
				genders = append(genders, state.problem.Patients[patient].Gender)
			}
			for _, occupant := range room.OccupantsPerDay[day] {
				genders = append(genders, state.problem.Occupants[occupant].Gender)
			}
			if len(lo.Uniq(genders)) > 1 {
				violations++
			}
		}
	}
	return violations
}

// Patients admitted into a room they are incompatible with
func roomCompatibilityViolations(state evaluationState) int {
	violations := 0
	for patient, room := range state.roomOf {
		if room != -1 && state.catalog.incompatible[patient][room] {
			violations++
		}
	}
	return violations
}

// Surgeon-days whose booked surgery time exceeds the surgeon's limit
func surgeonOvertimeViolations(state evaluationState) int {
	used := make([][]int, len(state.problem.Surgeons))
	for surgeon := range used {
		used[surgeon] = make([]int, state.problem.Days)
	}
	for patient, day := range state.admission {
		if day != -1 {
			used[state.catalog.patientSurgeon[patient]][day] += state.problem.Patients[patient].SurgeryDuration
		}
	}

	violations := 0
	for surgeon, days := range used {
		for day, booked := range days {
			if booked > state.problem.Surgeons[surgeon].MaxSurgeryTime[day] {
				violations++
			}
		}
	}
	return violations
}

// Theater-days whose booked surgery time exceeds the theater's availability
func theaterOvertimeViolations(state evaluationState) int {
	violations := 0
	for _, theater := range state.theaters {
		for day := range state.problem.Days {
			booked := lo.SumBy(theater.PatientsPerDay[day], func(patient int) int {
				return state.problem.Patients[patient].SurgeryDuration
			})
			if booked > theater.Theater.Availability[day] {
				violations++
			}
		}
	}
	return violations
}

// Mandatory patients left unscheduled
func mandatoryUnscheduledViolations(state evaluationState) int {
	violations := 0
	for patient, day := range state.admission {
		if day == -1 && state.problem.Patients[patient].Mandatory {
			violations++
		}
	}
	return violations
}

// Patients admitted before their release day, or mandatory ones after their due day
func admissionDayViolations(state evaluationState) int {
	violations := 0
	for patient, day := range state.admission {
		if day == -1 {
			continue
		}
		data := state.problem.Patients[patient]
		if day < data.SurgeryReleaseDay || (data.Mandatory && day > data.SurgeryDueDay) {
			violations++
		}
	}
	return violations
}

// Room-days hosting more people than beds
func roomCapacityViolations(state evaluationState) int {
	violations := 0
	for _, room := range state.rooms {
		for day := range state.problem.Days {
			if len(room.PatientsPerDay[day])+len(room.OccupantsPerDay[day]) > room.Room.Capacity {
				violations++
			}
		}
	}
	return violations
}

// Occupied room-day-shifts without any nurse
func nursePresenceViolations(state evaluationState) int {
	violations := 0
	for room, roomState := range state.rooms {
		for day := range state.problem.Days {
			if len(roomState.PatientsPerDay[day])+len(roomState.OccupantsPerDay[day]) == 0 {
				continue
			}
			for shift := range state.problem.ShiftTypes {
				if len(state.coverage[room][day][shift]) == 0 {
					violations++
				}
			}
		}
	}
	return violations
}
