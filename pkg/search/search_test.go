package search

import (
	"context"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/limaJavier/ihtp/pkg/model"
	"github.com/limaJavier/ihtp/pkg/solver"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func repeat(value, times int) []int {
	return lo.Times(times, func(int) int { return value })
}

func newSearchProblem() model.Problem {
	days, shifts := 5, []string{"early", "late", "night"}
	problem := model.Problem{
		Days:        days,
		SkillLevels: 3,
		ShiftTypes:  shifts,
		AgeGroups:   []string{"infant", "adult", "elderly"},
		Surgeons: []model.Surgeon{
			{Id: "s0", MaxSurgeryTime: repeat(240, days)},
			{Id: "s1", MaxSurgeryTime: repeat(120, days)},
		},
		OperatingTheaters: []model.OperatingTheater{
			{Id: "t0", Availability: repeat(240, days)},
			{Id: "t1", Availability: repeat(180, days)},
		},
		Rooms: []model.Room{{Id: "r0", Capacity: 2}, {Id: "r1", Capacity: 2}, {Id: "r2", Capacity: 1}},
		Occupants: []model.Occupant{{
			Id: "a0", Gender: "A", AgeGroup: "adult", LengthOfStay: 2, RoomId: "r0",
			WorkloadProduced: repeat(1, 2*len(shifts)), SkillLevelRequired: repeat(1, 2*len(shifts)),
		}},
		Weights: model.Weights{
			RoomMixedAge: 5, RoomNurseSkill: 1, ContinuityOfCare: 1, NurseExcessiveWorkload: 5,
			OpenOperatingTheater: 10, SurgeonTransfer: 2, PatientDelay: 3, UnscheduledOptional: 50,
		},
	}

	for i := range 8 {
		stay := 1 + i%3
		problem.Patients = append(problem.Patients, model.Patient{
			Id:                  fmt.Sprintf("p%d", i),
			Mandatory:           i%2 == 0,
			Gender:              []string{"A", "B"}[i%2],
			AgeGroup:            problem.AgeGroups[i%3],
			LengthOfStay:        stay,
			SurgeryReleaseDay:   i % 3,
			SurgeryDueDay:       i%3 + 2,
			SurgeryDuration:     30 + 30*(i%3),
			SurgeonId:           []string{"s0", "s1"}[i%2],
			IncompatibleRoomIds: lo.Ternary(i%4 == 3, []string{"r2"}, nil),
			WorkloadProduced:    repeat(1+i%2, stay*len(shifts)),
			SkillLevelRequired:  repeat(i%3, stay*len(shifts)),
		})
	}

	for i := range 4 {
		nurse := model.Nurse{Id: fmt.Sprintf("n%d", i), SkillLevel: i % 3}
		for day := range days {
			nurse.WorkingShifts = append(nurse.WorkingShifts, model.WorkingShift{Day: day, Shift: shifts[(day+i)%len(shifts)], MaxLoad: 4})
		}
		problem.Nurses = append(problem.Nurses, nurse)
	}
	return problem
}

func newTestParameters() Parameters {
	return Parameters{
		PopulationSize: 8,
		MaxGenerations: 4,
		CrossoverRate:  0.8,
		MutationRate:   0.2,
		EliteCount:     2,
		TournamentSize: 2,
		Workers:        2,
		LocalSearch:    true,
		Seed:           42,
	}
}

func TestRandomEncoding(t *testing.T) {
	problem := newSearchProblem()

	t.Run("Proposals respect windows and compatibility", func(t *testing.T) {
		rng := rand.New(rand.NewPCG(1, 2))
		for range 50 {
			// Act
			encoded := RandomEncoding(problem, rng)

			// Assert
			require.Len(t, encoded.Patients, len(problem.Patients))
			require.Len(t, encoded.Nurses, problem.WorkingShiftSlots())
			for i, proposal := range encoded.Patients {
				patient := problem.Patients[i]
				assert.Equal(t, patient.Id, proposal.PatientId)
				first, last := admissionWindow(problem, patient)
				assert.GreaterOrEqual(t, proposal.AdmissionDay, first)
				assert.LessOrEqual(t, proposal.AdmissionDay, last)
				assert.NotContains(t, patient.IncompatibleRoomIds, proposal.RoomId)
			}
		}
	})

	t.Run("Same seed, same encoding", func(t *testing.T) {
		// Act
		first := RandomEncoding(problem, rand.New(rand.NewPCG(9, 9)))
		second := RandomEncoding(problem, rand.New(rand.NewPCG(9, 9)))

		// Assert
		assert.Equal(t, first, second)
	})

	t.Run("Random encodings are always decodable", func(t *testing.T) {
		// Arrange
		evaluator, err := solver.NewSolver(problem, nil, nil)
		require.NoError(t, err)
		rng := rand.New(rand.NewPCG(5, 6))

		// Act
		for range 30 {
			encoded := RandomEncoding(problem, rng)
			_, err := evaluator.Solve(&encoded)
			assert.NoError(t, err)
		}
	})
}

func TestAdmissionWindow(t *testing.T) {
	problem := model.Problem{Days: 5}

	first, last := admissionWindow(problem, model.Patient{Mandatory: true, SurgeryReleaseDay: 1, SurgeryDueDay: 3})
	assert.Equal(t, []int{1, 3}, []int{first, last})

	first, last = admissionWindow(problem, model.Patient{Mandatory: false, SurgeryReleaseDay: 2})
	assert.Equal(t, []int{2, 4}, []int{first, last})

	first, last = admissionWindow(problem, model.Patient{Mandatory: true, SurgeryReleaseDay: 3, SurgeryDueDay: 9})
	assert.Equal(t, []int{3, 4}, []int{first, last})

	first, last = admissionWindow(problem, model.Patient{Mandatory: false, SurgeryReleaseDay: 7})
	assert.Equal(t, []int{4, 4}, []int{first, last})
}

func TestCoverNurses(t *testing.T) {
	newCoverProblem := func() model.Problem {
		return model.Problem{
			Days:       1,
			ShiftTypes: []string{"early"},
			Rooms:      []model.Room{{Id: "r0", Capacity: 1}, {Id: "r1", Capacity: 1}, {Id: "r2", Capacity: 1}, {Id: "r3", Capacity: 1}},
			Patients: []model.Patient{
				{Id: "p0", LengthOfStay: 1, SkillLevelRequired: []int{2}},
				{Id: "p1", LengthOfStay: 1, SkillLevelRequired: []int{0}},
				{Id: "p2", LengthOfStay: 1, SkillLevelRequired: []int{0}},
			},
			Nurses: []model.Nurse{
				{Id: "n0", SkillLevel: 0, WorkingShifts: []model.WorkingShift{{Day: 0, Shift: "early"}}},
				{Id: "n1", SkillLevel: 2, WorkingShifts: []model.WorkingShift{{Day: 0, Shift: "early"}}},
			},
		}
	}

	t.Run("Skilled nurse takes the demanding room", func(t *testing.T) {
		// Arrange
		problem := newCoverProblem()
		encoded := model.EncodedSolution{Patients: []model.EncodedPatient{
			{PatientId: "p0", AdmissionDay: 0, RoomId: "r0"},
			{PatientId: "p1", AdmissionDay: 0, RoomId: "r1"},
		}}

		// Act
		nurses := coverNurses(problem, encoded)

		// Assert
		assert.Equal(t, [][]string{{"r1"}, {"r0"}}, nurses)
	})

	t.Run("Every occupied room is covered once", func(t *testing.T) {
		// Arrange
		problem := newCoverProblem()
		encoded := model.EncodedSolution{Patients: []model.EncodedPatient{
			{PatientId: "p0", AdmissionDay: 0, RoomId: "r0"},
			{PatientId: "p1", AdmissionDay: 0, RoomId: "r1"},
			{PatientId: "p2", AdmissionDay: 0, RoomId: "r2"},
		}}

		// Act
		nurses := coverNurses(problem, encoded)

		// Assert
		require.Len(t, nurses, 2)
		covered := lo.Flatten(nurses)
		assert.ElementsMatch(t, []string{"r0", "r1", "r2"}, covered)
		assert.NotEmpty(t, nurses[0])
		assert.NotEmpty(t, nurses[1])
	})

	t.Run("Empty wards leave slots empty", func(t *testing.T) {
		// Act
		nurses := coverNurses(newCoverProblem(), model.EncodedSolution{})

		// Assert
		assert.Equal(t, [][]string{{}, {}}, nurses)
	})
}

func TestParametersValidation(t *testing.T) {
	problem := newSearchProblem()

	scenarios := map[string]func(parameters *Parameters){
		"Tiny population":       func(parameters *Parameters) { parameters.PopulationSize = 1 },
		"No generations":        func(parameters *Parameters) { parameters.MaxGenerations = 0 },
		"Crossover above one":   func(parameters *Parameters) { parameters.CrossoverRate = 1.5 },
		"Negative mutation":     func(parameters *Parameters) { parameters.MutationRate = -0.1 },
		"Elites fill the space": func(parameters *Parameters) { parameters.EliteCount = parameters.PopulationSize },
		"No workers":            func(parameters *Parameters) { parameters.Workers = 0 },
		"Empty tournament":      func(parameters *Parameters) { parameters.TournamentSize = 0 },
	}

	for name, mutate := range scenarios {
		t.Run(name, func(t *testing.T) {
			// Arrange
			parameters := newTestParameters()
			mutate(&parameters)

			// Act
			_, err := NewGeneticSearch(problem, parameters, nil, nil)

			// Assert
			assert.Error(t, err)
		})
	}

	t.Run("Unknown strategy", func(t *testing.T) {
		// Act
		_, err := New("annealing", problem, newTestParameters(), nil, nil)

		// Assert
		assert.Error(t, err)
	})
}

func TestGeneticSearch(t *testing.T) {
	problem := newSearchProblem()

	t.Run("Result is consistent with its encoding", func(t *testing.T) {
		// Arrange
		metrics := solver.NewMetrics()
		search, err := New(StrategyGenetic, problem, newTestParameters(), nil, metrics)
		require.NoError(t, err)

		// Act
		result, err := search.Run(context.Background())

		// Assert
		require.NoError(t, err)
		assert.NotEmpty(t, result.RunId)
		assert.Equal(t, 4, result.Generations)
		assert.GreaterOrEqual(t, result.Evaluations, 8)
		assert.Equal(t, result.Fitness.Hard, result.Solution.TotalHardConstraints())
		assert.Equal(t, result.Fitness.Soft, result.Solution.TotalSoftConstraints)

		evaluator, err := solver.NewSolver(problem, nil, nil)
		require.NoError(t, err)
		encoded := result.Encoding.Clone()
		fitness, err := evaluator.Solve(&encoded)
		require.NoError(t, err)
		assert.Equal(t, result.Fitness, fitness)
	})

	t.Run("Best fitness never worsens with more generations", func(t *testing.T) {
		// Arrange
		short, long := newTestParameters(), newTestParameters()
		short.MaxGenerations, long.MaxGenerations = 1, 6
		short.Workers, long.Workers = 1, 1

		// Act
		shortSearch, err := NewGeneticSearch(problem, short, nil, nil)
		require.NoError(t, err)
		shortResult, err := shortSearch.Run(context.Background())
		require.NoError(t, err)
		longSearch, err := NewGeneticSearch(problem, long, nil, nil)
		require.NoError(t, err)
		longResult, err := longSearch.Run(context.Background())
		require.NoError(t, err)

		// Assert
		assert.False(t, shortResult.Fitness.Better(longResult.Fitness))
	})

	t.Run("Cancelled context", func(t *testing.T) {
		// Arrange
		search, err := NewGeneticSearch(problem, newTestParameters(), nil, nil)
		require.NoError(t, err)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		// Act
		_, err = search.Run(ctx)

		// Assert
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestRandomSearch(t *testing.T) {
	// Arrange
	problem := newSearchProblem()
	parameters := newTestParameters()
	search, err := New(StrategyRandom, problem, parameters, nil, nil)
	require.NoError(t, err)

	// Act
	result, err := search.Run(context.Background())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, parameters.PopulationSize*parameters.MaxGenerations, result.Evaluations)
	assert.Equal(t, parameters.MaxGenerations, result.Generations)
	assert.Equal(t, result.Fitness.Soft, result.Solution.TotalSoftConstraints)
	assert.Len(t, result.Solution.Patients, len(problem.Patients))
}
