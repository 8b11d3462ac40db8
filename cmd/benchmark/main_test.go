package main

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/limaJavier/ihtp/pkg/config"
	"github.com/limaJavier/ihtp/pkg/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const instanceJson = `{
  "days": 2,
  "skill_levels": 2,
  "shift_types": ["early", "late"],
  "age_groups": ["adult"],
  "occupants": [],
  "patients": [
    {"id": "p0", "mandatory": true, "gender": "A", "age_group": "adult", "length_of_stay": 1,
     "surgery_release_day": 0, "surgery_due_day": 1, "surgery_duration": 60, "surgeon_id": "s0",
     "incompatible_room_ids": [], "workload_produced": [1, 1], "skill_level_required": [1, 0]},
    {"id": "p1", "mandatory": false, "gender": "B", "age_group": "adult", "length_of_stay": 2,
     "surgery_release_day": 0, "surgery_duration": 30, "surgeon_id": "s0",
     "incompatible_room_ids": [], "workload_produced": [1, 1, 1, 1], "skill_level_required": [0, 0, 0, 0]}
  ],
  "surgeons": [{"id": "s0", "max_surgery_time": [120, 120]}],
  "operating_theaters": [{"id": "t0", "availability": [120, 120]}],
  "rooms": [{"id": "r0", "capacity": 1}, {"id": "r1", "capacity": 1}],
  "nurses": [
    {"id": "n0", "skill_level": 1, "working_shifts": [{"day": 0, "shift": "early", "max_load": 5}, {"day": 1, "shift": "late", "max_load": 5}]}
  ],
  "weights": {"room_mixed_age": 1, "room_nurse_skill": 1, "continuity_of_care": 1, "nurse_eccessive_workload": 1,
              "open_operating_theater": 1, "surgeon_transfer": 1, "patient_delay": 1, "unscheduled_optional": 10}
}`

func TestToRecord(t *testing.T) {
	result := BenchmarkResult{
		Strategy:    search.StrategyGenetic,
		Instance:    InstanceMetadata{Name: "i01.json", Days: 14, Patients: 42, Nurses: 10, Rooms: 6},
		Duration:    1520,
		Hard:        0,
		Soft:        3081,
		Evaluations: 4000,
		RunId:       "run",
	}

	assert.Equal(t, []string{"i01.json", "genetic", "14", "42", "10", "6", "0", "3081", "1520", "4000", "run"}, toRecord(result))
	assert.Len(t, header, len(toRecord(result)))
}

func TestGetInstances(t *testing.T) {
	// Arrange
	directory := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(directory, "b.json"), []byte(instanceJson), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(directory, "a.json"), []byte(instanceJson), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(directory, "notes.txt"), []byte("ignored"), 0o644))

	// Act
	instances, err := getInstances(directory)

	// Assert
	require.NoError(t, err)
	require.Len(t, instances, 2)
	assert.Equal(t, "a.json", instances[0].Name)
	assert.Equal(t, "b.json", instances[1].Name)
	assert.Equal(t, 2, instances[0].Days)
	assert.Equal(t, 2, instances[0].Patients)
	assert.Equal(t, 1, instances[0].Nurses)
	assert.Equal(t, 2, instances[0].Rooms)

	t.Run("Broken instance", func(t *testing.T) {
		// Arrange
		require.NoError(t, os.WriteFile(filepath.Join(directory, "c.json"), []byte(`{"days": 0}`), 0o644))

		// Act
		_, err := getInstances(directory)

		// Assert
		assert.Error(t, err)
	})
}

func TestMeasureAndCsv(t *testing.T) {
	// Arrange
	directory := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(directory, "a.json"), []byte(instanceJson), 0o644))
	instances, err := getInstances(directory)
	require.NoError(t, err)

	cfg := config.SearchConfig{
		PopulationSize: 4,
		MaxGenerations: 2,
		CrossoverRate:  0.5,
		MutationRate:   0.5,
		EliteCount:     1,
		TournamentSize: 2,
		Workers:        1,
		Seed:           3,
	}

	// Act
	results := make([]BenchmarkResult, 0)
	for _, strategy := range search.Strategies {
		result, err := measure(cfg, strategy, instances[0], nil, nil)
		require.NoError(t, err)
		results = append(results, result)
	}
	out := filepath.Join(directory, "results.csv")
	require.NoError(t, toCsv(out, results))

	// Assert
	file, err := os.Open(out)
	require.NoError(t, err)
	defer file.Close()
	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 1+len(search.Strategies))
	assert.Equal(t, header, records[0])
	for i, strategy := range search.Strategies {
		assert.Equal(t, "a.json", records[i+1][0])
		assert.Equal(t, strategy, records[i+1][1])
		assert.NotEmpty(t, records[i+1][10])
	}
}
