package solver

import (
	"slices"

	"github.com/limaJavier/ihtp/pkg/model"
	"github.com/samber/lo"
)

// applyNurses copies the nurse portion of the encoding into nurse assignments and indexes which nurses cover every (room, day, shift)
func (s *solverImplementation) applyNurses(encoded *model.EncodedSolution) error {
	if err := s.advance(phaseNursesApplied); err != nil {
		return err
	}

	blocks := s.catalog.blocks
	if len(encoded.Nurses) != len(blocks) {
		return newInvariantError("nurse", "", "encoding holds %d room lists for %d working shifts", len(encoded.Nurses), len(blocks))
	}

	s.clearCoverage()
	s.nurses = lo.Map(s.problem.Nurses, func(nurse model.Nurse, _ int) model.NurseAssignment {
		return model.NurseAssignment{
			Id:          nurse.Id,
			Assignments: make([]model.ShiftAssignment, 0, len(nurse.WorkingShifts)),
		}
	})
	s.blockRooms = make([][]int, len(blocks))

	for i, block := range blocks {
		rooms := make([]int, 0, len(encoded.Nurses[i]))
		for _, roomId := range encoded.Nurses[i] {
			room, ok := s.catalog.rooms[roomId]
			if !ok {
				return newInvariantError("room", roomId, "assigned to nurse \"%v\" but not found in problem", s.problem.Nurses[block.nurse].Id)
			}
			rooms = append(rooms, room)
			s.coverage[room][block.day][block.shift] = append(s.coverage[room][block.day][block.shift], block.nurse)
		}
		s.blockRooms[i] = rooms

		s.nurses[block.nurse].Assignments = append(s.nurses[block.nurse].Assignments, model.ShiftAssignment{
			Day:   block.day,
			Shift: s.problem.ShiftTypes[block.shift],
			Rooms: slices.Clone(encoded.Nurses[i]),
		})
	}

	return nil
}

// clearCoverage empties the coverage index, allocating it on first use
func (s *solverImplementation) clearCoverage() {
	if s.coverage == nil {
		s.coverage = make([][][][]int, len(s.problem.Rooms))
		for room := range s.coverage {
			s.coverage[room] = make([][][]int, s.problem.Days)
			for day := range s.coverage[room] {
				s.coverage[room][day] = make([][]int, len(s.problem.ShiftTypes))
			}
		}
		return
	}

	for room := range s.coverage {
		for day := range s.coverage[room] {
			for shift := range s.coverage[room][day] {
				s.coverage[room][day][shift] = s.coverage[room][day][shift][:0]
			}
		}
	}
}
