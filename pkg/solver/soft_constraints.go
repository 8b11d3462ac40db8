package solver

import (
	"github.com/samber/lo"
)

var softConstraints = []func(state evaluationState) (int, error){
	roomMixedAgePenalty,
	roomNurseSkillPenalty,
	continuityOfCarePenalty,
	nurseExcessiveWorkloadPenalty,
	openOperatingTheaterPenalty,
	surgeonTransferPenalty,
	patientDelayPenalty,
	unscheduledOptionalPenalty,
}

// Age-group spread of every room-day
func roomMixedAgePenalty(state evaluationState) (int, error) {
	penalty := 0
	for _, room := range state.rooms {
		for day := range state.problem.Days {
			ages := make([]int, 0, len(room.PatientsPerDay[day])+len(room.OccupantsPerDay[day]))
			for _, patient := range room.PatientsPerDay[day] {
				ages = append(ages, state.catalog.patientAge[patient])
			}
			for _, occupant := range room.OccupantsPerDay[day] {
				ages = append(ages, state.catalog.occupantAge[occupant])
			}
			if len(ages) > 1 {
				penalty += lo.Max(ages) - lo.Min(ages)
			}
		}
	}
	return penalty * state.problem.Weights.RoomMixedAge, nil
}

// Skill shortfall of every nurse towards every person in the rooms the nurse covers. Care entries beyond the arrays are ignored
func roomNurseSkillPenalty(state evaluationState) (int, error) {
	penalty := 0
	shortfall := func(required []int, index, skill int) int {
		if index < 0 || index >= len(required) || required[index] <= skill {
			return 0
		}
		return required[index] - skill
	}

	for i, block := range state.catalog.blocks {
		skill := state.problem.Nurses[block.nurse].SkillLevel
		for _, room := range state.blockRooms[i] {
			for _, patient := range state.rooms[room].PatientsPerDay[block.day] {
				index := state.indexer.Index(block.day-state.admission[patient], block.shift)
				penalty += shortfall(state.problem.Patients[patient].SkillLevelRequired, index, skill)
			}
			for _, occupant := range state.rooms[room].OccupantsPerDay[block.day] {
				index := state.indexer.Index(block.day, block.shift)
				penalty += shortfall(state.problem.Occupants[occupant].SkillLevelRequired, index, skill)
			}
		}
	}
	return penalty * state.problem.Weights.RoomNurseSkill, nil
}

// Distinct nurses met by every patient and occupant over the whole stay
func continuityOfCarePenalty(state evaluationState) (int, error) {
	distinctNurses := func(room, firstDay, lastDay int) int {
		nurses := make([]int, 0)
		for day := firstDay; day < lastDay; day++ {
			for _, covering := range state.coverage[room][day] {
				nurses = append(nurses, covering...)
			}
		}
		return len(lo.Uniq(nurses))
	}

	penalty := 0
	for occupant, data := range state.problem.Occupants {
		penalty += distinctNurses(state.catalog.occupantRoom[occupant], 0, min(data.LengthOfStay, state.problem.Days))
	}
	for patient, day := range state.admission {
		if day == -1 {
			continue
		}
		lastDay := min(day+state.problem.Patients[patient].LengthOfStay, state.problem.Days)
		penalty += distinctNurses(state.roomOf[patient], day, lastDay)
	}
	return penalty * state.problem.Weights.ContinuityOfCare, nil
}

func missingWorkloadError(state evaluationState, entity, id string, index int) error {
	if index < 0 {
		return newInvariantError(entity, id, "no workload entry at position %d", index)
	}
	day, shift := state.indexer.Attributes(index)
	return newInvariantError(entity, id, "no workload entry for shift \"%v\" of stay day %d", state.problem.ShiftTypes[shift], day)
}

// Workload above the maximum load of every nurse working shift
func nurseExcessiveWorkloadPenalty(state evaluationState) (int, error) {
	penalty := 0
	for i, block := range state.catalog.blocks {
		load := 0
		for _, room := range state.blockRooms[i] {
			for _, patient := range state.rooms[room].PatientsPerDay[block.day] {
				data := state.problem.Patients[patient]
				index := state.indexer.Index(block.day-state.admission[patient], block.shift)
				if index < 0 || index >= len(data.WorkloadProduced) {
					return 0, missingWorkloadError(state, "patient", data.Id, index)
				}
				load += data.WorkloadProduced[index]
			}
			for _, occupant := range state.rooms[room].OccupantsPerDay[block.day] {
				data := state.problem.Occupants[occupant]
				index := state.indexer.Index(block.day, block.shift)
				if index >= len(data.WorkloadProduced) {
					return 0, missingWorkloadError(state, "occupant", data.Id, index)
				}
				load += data.WorkloadProduced[index]
			}
		}
		if load > block.maxLoad {
			penalty += load - block.maxLoad
		}
	}
	return penalty * state.problem.Weights.NurseExcessiveWorkload, nil
}

// Theater-days with at least one surgery
func openOperatingTheaterPenalty(state evaluationState) (int, error) {
	open := 0
	for _, theater := range state.theaters {
		for day := range state.problem.Days {
			if len(theater.PatientsPerDay[day]) > 0 {
				open++
			}
		}
	}
	return open * state.problem.Weights.OpenOperatingTheater, nil
}

// Extra theaters visited by every surgeon on every day
func surgeonTransferPenalty(state evaluationState) (int, error) {
	penalty := 0
	for day := range state.problem.Days {
		theatersBySurgeon := make(map[int][]int)
		for theater, theaterState := range state.theaters {
			for _, patient := range theaterState.PatientsPerDay[day] {
				surgeon := state.catalog.patientSurgeon[patient]
				theatersBySurgeon[surgeon] = append(theatersBySurgeon[surgeon], theater)
			}
		}
		for _, theaters := range theatersBySurgeon {
			if distinct := len(lo.Uniq(theaters)); distinct > 1 {
				penalty += distinct - 1
			}
		}
	}
	return penalty * state.problem.Weights.SurgeonTransfer, nil
}

// Days between release and admission of every scheduled patient. Early admissions are an admission-day violation, not a delay
func patientDelayPenalty(state evaluationState) (int, error) {
	delay := 0
	for patient, day := range state.admission {
		if release := state.problem.Patients[patient].SurgeryReleaseDay; day != -1 && day > release {
			delay += day - release
		}
	}
	return delay * state.problem.Weights.PatientDelay, nil
}

// Optional patients left unscheduled
func unscheduledOptionalPenalty(state evaluationState) (int, error) {
	unscheduled := 0
	for patient, day := range state.admission {
		if day == -1 && !state.problem.Patients[patient].Mandatory {
			unscheduled++
		}
	}
	return unscheduled * state.problem.Weights.UnscheduledOptional, nil
}
