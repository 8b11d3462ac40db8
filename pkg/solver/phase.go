package solver

type phase int

const (
	phaseReset phase = iota
	phaseDecodingMandatory
	phaseDecodingOptional
	phaseNursesApplied
	phaseEvaluated
)

var phaseNames = map[phase]string{
	phaseReset:             "reset",
	phaseDecodingMandatory: "decoding mandatory patients",
	phaseDecodingOptional:  "decoding optional patients",
	phaseNursesApplied:     "nurses applied",
	phaseEvaluated:         "evaluated",
}

func (p phase) String() string {
	return phaseNames[p]
}

// Allowed predecessors of every phase. Reset is entered only by restart; nurses may be reapplied once an evaluation exists
var phaseTransitions = map[phase][]phase{
	phaseDecodingMandatory: {phaseReset},
	phaseDecodingOptional:  {phaseDecodingMandatory},
	phaseNursesApplied:     {phaseDecodingOptional, phaseEvaluated},
	phaseEvaluated:         {phaseNursesApplied},
}

func (s *solverImplementation) advance(to phase) error {
	for _, from := range phaseTransitions[to] {
		if s.phase == from {
			s.phase = to
			return nil
		}
	}
	return newInvariantError("solver", "", "cannot move from phase \"%v\" to phase \"%v\"", s.phase, to)
}
