package search

import (
	"github.com/limaJavier/ihtp/pkg/model"
	"github.com/onsi/gomega/matchers/support/goraph/bipartitegraph"
	"github.com/samber/lo"
)

type slot struct {
	index int // Position of the slot inside the nurse portion of an encoding
	day   int
	shift int
	skill int
}

// occupancy returns which rooms host someone on each day, and the highest skill level required in each (room, day, shift),
// assuming every proposal of the encoding is admitted as proposed
func occupancy(problem model.Problem, encoded model.EncodedSolution) (occupied [][]bool, requiredSkill [][][]int) {
	shifts := len(problem.ShiftTypes)
	rooms := lo.SliceToMap(lo.Range(len(problem.Rooms)), func(i int) (string, int) { return problem.Rooms[i].Id, i })
	patients := lo.SliceToMap(lo.Range(len(problem.Patients)), func(i int) (string, int) { return problem.Patients[i].Id, i })

	occupied = make([][]bool, len(problem.Rooms))
	requiredSkill = make([][][]int, len(problem.Rooms))
	for room := range problem.Rooms {
		occupied[room] = make([]bool, problem.Days)
		requiredSkill[room] = make([][]int, problem.Days)
		for day := range problem.Days {
			requiredSkill[room][day] = make([]int, shifts)
		}
	}

	mark := func(room, day, firstCareDay int, skills []int) {
		occupied[room][day] = true
		for shift := range shifts {
			if index := (day-firstCareDay)*shifts + shift; index < len(skills) {
				requiredSkill[room][day][shift] = max(requiredSkill[room][day][shift], skills[index])
			}
		}
	}

	for _, occupant := range problem.Occupants {
		room, ok := rooms[occupant.RoomId]
		if !ok {
			continue
		}
		for day := range min(occupant.LengthOfStay, problem.Days) {
			mark(room, day, 0, occupant.SkillLevelRequired)
		}
	}

	for _, proposal := range encoded.Patients {
		room, roomOk := rooms[proposal.RoomId]
		patient, patientOk := patients[proposal.PatientId]
		if !roomOk || !patientOk {
			continue
		}
		data := problem.Patients[patient]
		for day := max(proposal.AdmissionDay, 0); day < min(proposal.AdmissionDay+data.LengthOfStay, problem.Days); day++ {
			mark(room, day, proposal.AdmissionDay, data.SkillLevelRequired)
		}
	}

	return occupied, requiredSkill
}

// coverNurses builds the nurse portion of an encoding so that every occupied (room, day, shift) gets a nurse. Within each
// (day, shift) a maximum matching pairs occupied rooms with nurses skilled enough for them; rooms left unmatched go to the
// least loaded nurse of that shift
func coverNurses(problem model.Problem, encoded model.EncodedSolution) [][]string {
	occupied, requiredSkill := occupancy(problem, encoded)
	shifts := lo.SliceToMap(lo.Range(len(problem.ShiftTypes)), func(i int) (string, int) { return problem.ShiftTypes[i], i })

	//** Group slots by (day, shift)
	groups := make(map[[2]int][]slot)
	keys := make([][2]int, 0)
	index := 0
	for _, nurse := range problem.Nurses {
		for _, workingShift := range nurse.WorkingShifts {
			shift, ok := shifts[workingShift.Shift]
			if ok && workingShift.Day >= 0 && workingShift.Day < problem.Days {
				key := [2]int{workingShift.Day, shift}
				if _, exists := groups[key]; !exists {
					keys = append(keys, key)
				}
				groups[key] = append(groups[key], slot{index: index, day: workingShift.Day, shift: shift, skill: nurse.SkillLevel})
			}
			index++
		}
	}

	nurses := lo.Times(index, func(int) []string { return []string{} })

	for _, key := range keys {
		day, shift := key[0], key[1]
		slots := groups[key]
		demands := lo.Filter(lo.Range(len(problem.Rooms)), func(room int, _ int) bool { return occupied[room][day] })
		if len(demands) == 0 {
			continue
		}

		//** Match occupied rooms with skilled enough nurses
		neighbors := func(demandAny any, slotAny any) (bool, error) {
			room := demandAny.(int)
			candidate := slotAny.(slot)
			return candidate.skill >= requiredSkill[room][day][shift], nil
		}
		demandsAny, slotsAny := lo.Map(demands, func(room int, _ int) any { return room }), lo.Map(slots, func(candidate slot, _ int) any { return candidate })

		matched := make([]bool, len(demands))
		graph, err := bipartitegraph.NewBipartiteGraph(demandsAny, slotsAny, neighbors)
		if err == nil {
			for _, edge := range graph.LargestMatching() {
				demandIndex, slotIndex := edge.Node1, edge.Node2-len(demands)
				nurses[slots[slotIndex].index] = append(nurses[slots[slotIndex].index], problem.Rooms[demands[demandIndex]].Id)
				matched[demandIndex] = true
			}
		}

		//** Spread the remaining rooms over the least loaded nurses
		for demandIndex, room := range demands {
			if matched[demandIndex] {
				continue
			}
			target := lo.MinBy(slots, func(a, b slot) bool { return len(nurses[a.index]) < len(nurses[b.index]) })
			nurses[target.index] = append(nurses[target.index], problem.Rooms[room].Id)
		}
	}

	return nurses
}
