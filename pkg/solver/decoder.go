package solver

import (
	"github.com/limaJavier/ihtp/pkg/model"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// decode places every encoded patient, mandatory ones first, each group in encoding order
func (s *solverImplementation) decode(encoded *model.EncodedSolution) error {
	if err := s.advance(phaseDecodingMandatory); err != nil {
		return err
	}

	//** Validate the patient portion of the encoding and split it by priority
	seen := make([]bool, len(s.problem.Patients))
	mandatory := make([]int, 0, len(encoded.Patients))
	optional := make([]int, 0, len(encoded.Patients))
	for position, proposal := range encoded.Patients {
		patient, ok := s.catalog.patients[proposal.PatientId]
		if !ok {
			return newInvariantError("patient", proposal.PatientId, "not found in problem")
		}
		if seen[patient] {
			return newInvariantError("patient", proposal.PatientId, "encoded more than once")
		}
		seen[patient] = true

		if _, ok := s.catalog.rooms[proposal.RoomId]; !ok {
			return newInvariantError("room", proposal.RoomId, "proposed for patient \"%v\" but not found in problem", proposal.PatientId)
		}

		if s.problem.Patients[patient].Mandatory {
			mandatory = append(mandatory, position)
		} else {
			optional = append(optional, position)
		}
	}
	if missing := lo.IndexOf(seen, false); missing != -1 {
		return newInvariantError("patient", s.problem.Patients[missing].Id, "missing from encoding")
	}

	//** Place patients
	for _, position := range mandatory {
		if err := s.place(&encoded.Patients[position], mandatoryRepair); err != nil {
			return err
		}
	}

	if err := s.advance(phaseDecodingOptional); err != nil {
		return err
	}
	for _, position := range optional {
		if err := s.place(&encoded.Patients[position], optionalRepair); err != nil {
			return err
		}
	}

	return nil
}

// place commits the proposal when feasible, otherwise repairs it in place. A patient that cannot be repaired is left unscheduled
func (s *solverImplementation) place(proposal *model.EncodedPatient, policy repairPolicy) error {
	patient := s.catalog.patients[proposal.PatientId]
	room := s.catalog.rooms[proposal.RoomId]

	if !s.predicates.Feasible(patient, proposal.AdmissionDay, room) {
		repaired := s.repair(patient, proposal, policy)
		s.metrics.recordRepair(policy.name, repaired)

		if !repaired {
			if ce := s.logger.Check(zap.DebugLevel, "patient left unscheduled"); ce != nil {
				ce.Write(zap.String("patient", proposal.PatientId), zap.String("policy", policy.name))
			}
			s.assignments = append(s.assignments, model.PatientAssignment{Id: proposal.PatientId})
			return nil
		}

		if ce := s.logger.Check(zap.DebugLevel, "patient repaired"); ce != nil {
			ce.Write(zap.String("patient", proposal.PatientId), zap.Int("day", proposal.AdmissionDay), zap.String("room", proposal.RoomId))
		}
		room = s.catalog.rooms[proposal.RoomId]
	}

	return s.commit(patient, proposal.AdmissionDay, room)
}

// commit books the surgeon, an operating theater and the room for the whole stay
func (s *solverImplementation) commit(patient, day, room int) error {
	data := s.problem.Patients[patient]

	s.state.surgeonTime[s.catalog.patientSurgeon[patient]][day] -= data.SurgeryDuration

	theater, err := s.chooseTheater(patient, day)
	if err != nil {
		return err
	}
	theaterState := &s.state.theaters[theater]
	theaterState.AvailabilityPerDay[day] -= data.SurgeryDuration
	theaterState.PatientsPerDay[day] = append(theaterState.PatientsPerDay[day], patient)

	roomState := &s.state.rooms[room]
	for stayDay := day; stayDay < min(day+data.LengthOfStay, s.problem.Days); stayDay++ {
		if roomState.CapacityPerDay[stayDay] <= 0 {
			return newInvariantError("room", roomState.Room.Id, "no bed left on day %d for patient \"%v\"", stayDay, data.Id)
		}
		roomState.CapacityPerDay[stayDay]--
		roomState.PatientsPerDay[stayDay] = append(roomState.PatientsPerDay[stayDay], patient)
	}

	s.admission[patient] = day
	s.roomOf[patient] = room
	s.theaterOf[patient] = theater
	s.assignments = append(s.assignments, model.PatientAssignment{
		Id:               data.Id,
		AdmissionDay:     lo.ToPtr(day),
		Room:             lo.ToPtr(roomState.Room.Id),
		OperatingTheater: lo.ToPtr(theaterState.Theater.Id),
	})
	return nil
}

// chooseTheater prefers an already open theater, the one left with the least time. Otherwise it opens the closed theater with the most time
func (s *solverImplementation) chooseTheater(patient, day int) (int, error) {
	duration := s.problem.Patients[patient].SurgeryDuration

	open, closed := -1, -1
	for theater, state := range s.state.theaters {
		available := state.AvailabilityPerDay[day]
		if available < duration {
			continue
		}

		if len(state.PatientsPerDay[day]) > 0 {
			if open == -1 || available < s.state.theaters[open].AvailabilityPerDay[day] {
				open = theater
			}
		} else if closed == -1 || available > s.state.theaters[closed].AvailabilityPerDay[day] {
			closed = theater
		}
	}

	if open != -1 {
		return open, nil
	}
	if closed != -1 {
		return closed, nil
	}
	return -1, newInvariantError("patient", s.problem.Patients[patient].Id, "no operating theater fits a surgery of %d on day %d", duration, day)
}
