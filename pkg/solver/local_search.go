package solver

import (
	"github.com/limaJavier/ihtp/pkg/model"
	"go.uber.org/zap"
)

func (s *solverImplementation) LocalSearchNurses(encoded *model.EncodedSolution) (Fitness, error) {
	initial, err := s.Solve(encoded)
	if err != nil {
		return Fitness{}, err
	}

	//** Group blocks sharing a (day, shift)
	groups := make(map[[2]int][]int)
	for i, block := range s.catalog.blocks {
		key := [2]int{block.day, block.shift}
		groups[key] = append(groups[key], i)
	}

	swapped := false
	for i, block := range s.catalog.blocks {
		for _, j := range groups[[2]int{block.day, block.shift}] {
			if j <= i {
				continue
			}

			encoded.Nurses[i], encoded.Nurses[j] = encoded.Nurses[j], encoded.Nurses[i]
			swapped = true

			candidate, err := s.reevaluateNurses(encoded)
			if err != nil {
				return Fitness{}, err
			}
			if candidate.Better(initial) {
				s.metrics.recordAcceptedSwap()
				if ce := s.logger.Check(zap.DebugLevel, "nurse blocks swapped"); ce != nil {
					ce.Write(zap.Int("first", i), zap.Int("second", j), zap.Int("hard", candidate.Hard), zap.Int("soft", candidate.Soft))
				}
				return candidate, nil
			}

			encoded.Nurses[i], encoded.Nurses[j] = encoded.Nurses[j], encoded.Nurses[i]
		}
	}

	//** No improving swap: bring the decoded solution back to the initial blocks
	if swapped {
		if _, err := s.reevaluateNurses(encoded); err != nil {
			return Fitness{}, err
		}
	}
	return initial, nil
}
