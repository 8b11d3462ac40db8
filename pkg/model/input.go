package model

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
)

type Room struct {
	Id       string `mapstructure:"id" validate:"required"`
	Capacity int    `mapstructure:"capacity" validate:"gte=0"`
}

type OperatingTheater struct {
	Id           string `mapstructure:"id" validate:"required"`
	Availability []int  `mapstructure:"availability" validate:"dive,gte=0"`
}

type Surgeon struct {
	Id             string `mapstructure:"id" validate:"required"`
	MaxSurgeryTime []int  `mapstructure:"max_surgery_time" validate:"dive,gte=0"`
}

// Occupant is a patient admitted before the planning horizon starts. Its care arrays are indexed by absolute day and shift
type Occupant struct {
	Id                 string `mapstructure:"id" validate:"required"`
	Gender             string `mapstructure:"gender" validate:"required"`
	AgeGroup           string `mapstructure:"age_group" validate:"required"`
	LengthOfStay       int    `mapstructure:"length_of_stay" validate:"gte=1"`
	WorkloadProduced   []int  `mapstructure:"workload_produced" validate:"dive,gte=0"`
	SkillLevelRequired []int  `mapstructure:"skill_level_required" validate:"dive,gte=0"`
	RoomId             string `mapstructure:"room_id" validate:"required"`
}

// Patient care arrays are indexed by the day relative to the admission day and the shift
type Patient struct {
	Id                  string   `mapstructure:"id" validate:"required"`
	Mandatory           bool     `mapstructure:"mandatory"`
	Gender              string   `mapstructure:"gender" validate:"required"`
	AgeGroup            string   `mapstructure:"age_group" validate:"required"`
	LengthOfStay        int      `mapstructure:"length_of_stay" validate:"gte=1"`
	SurgeryReleaseDay   int      `mapstructure:"surgery_release_day" validate:"gte=0"`
	SurgeryDueDay       int      `mapstructure:"surgery_due_day" validate:"gte=0"` // Only meaningful for mandatory patients
	SurgeryDuration     int      `mapstructure:"surgery_duration" validate:"gte=0"`
	SurgeonId           string   `mapstructure:"surgeon_id" validate:"required"`
	IncompatibleRoomIds []string `mapstructure:"incompatible_room_ids"`
	WorkloadProduced    []int    `mapstructure:"workload_produced" validate:"dive,gte=0"`
	SkillLevelRequired  []int    `mapstructure:"skill_level_required" validate:"dive,gte=0"`
}

type WorkingShift struct {
	Day     int    `mapstructure:"day" validate:"gte=0"`
	Shift   string `mapstructure:"shift" validate:"required"`
	MaxLoad int    `mapstructure:"max_load" validate:"gte=0"`
}

type Nurse struct {
	Id            string         `mapstructure:"id" validate:"required"`
	SkillLevel    int            `mapstructure:"skill_level" validate:"gte=0"`
	WorkingShifts []WorkingShift `mapstructure:"working_shifts" validate:"dive"`
}

type Weights struct {
	RoomMixedAge           int `mapstructure:"room_mixed_age" validate:"gte=0"`
	RoomNurseSkill         int `mapstructure:"room_nurse_skill" validate:"gte=0"`
	ContinuityOfCare       int `mapstructure:"continuity_of_care" validate:"gte=0"`
	NurseExcessiveWorkload int `mapstructure:"nurse_eccessive_workload" validate:"gte=0"`
	OpenOperatingTheater   int `mapstructure:"open_operating_theater" validate:"gte=0"`
	SurgeonTransfer        int `mapstructure:"surgeon_transfer" validate:"gte=0"`
	PatientDelay           int `mapstructure:"patient_delay" validate:"gte=0"`
	UnscheduledOptional    int `mapstructure:"unscheduled_optional" validate:"gte=0"`
}

// Problem is the static definition of an instance. It is never mutated by the solver, so a value copy (see Clone) is all a worker needs
type Problem struct {
	Days              int                `mapstructure:"days" validate:"gte=1"`
	SkillLevels       int                `mapstructure:"skill_levels" validate:"gte=0"`
	ShiftTypes        []string           `mapstructure:"shift_types" validate:"min=1,dive,required"`
	AgeGroups         []string           `mapstructure:"age_groups" validate:"min=1,dive,required"`
	Occupants         []Occupant         `mapstructure:"occupants" validate:"dive"`
	Patients          []Patient          `mapstructure:"patients" validate:"dive"`
	Surgeons          []Surgeon          `mapstructure:"surgeons" validate:"dive"`
	OperatingTheaters []OperatingTheater `mapstructure:"operating_theaters" validate:"min=1,dive"`
	Rooms             []Room             `mapstructure:"rooms" validate:"min=1,dive"`
	Nurses            []Nurse            `mapstructure:"nurses" validate:"dive"`
	Weights           Weights            `mapstructure:"weights"`
}

var validate = validator.New()

func InputFromJson(file string) (Problem, error) {
	bytes, err := os.ReadFile(file)
	if err != nil {
		return Problem{}, fmt.Errorf("cannot read input file: %w", err)
	}

	var inputJson map[string]any
	if err := json.Unmarshal(bytes, &inputJson); err != nil {
		return Problem{}, fmt.Errorf("cannot parse input file: %w", err)
	}

	var problem Problem
	if err := mapstructure.Decode(inputJson, &problem); err != nil {
		return Problem{}, fmt.Errorf("cannot decode input file: %w", err)
	}

	if err := ValidateProblem(problem); err != nil {
		return Problem{}, err
	}
	return problem, nil
}

// ValidateProblem checks field-level rules and every cross reference between entities
func ValidateProblem(problem Problem) error {
	if err := validate.Struct(problem); err != nil {
		return fmt.Errorf("invalid problem: %w", err)
	}

	//** Verify identifiers are unique within each collection
	duplicates := map[string][]string{
		"room":      lo.FindDuplicates(lo.Map(problem.Rooms, func(room Room, _ int) string { return room.Id })),
		"theater":   lo.FindDuplicates(lo.Map(problem.OperatingTheaters, func(theater OperatingTheater, _ int) string { return theater.Id })),
		"surgeon":   lo.FindDuplicates(lo.Map(problem.Surgeons, func(surgeon Surgeon, _ int) string { return surgeon.Id })),
		"patient":   lo.FindDuplicates(lo.Map(problem.Patients, func(patient Patient, _ int) string { return patient.Id })),
		"occupant":  lo.FindDuplicates(lo.Map(problem.Occupants, func(occupant Occupant, _ int) string { return occupant.Id })),
		"nurse":     lo.FindDuplicates(lo.Map(problem.Nurses, func(nurse Nurse, _ int) string { return nurse.Id })),
		"shift":     lo.FindDuplicates(problem.ShiftTypes),
		"age group": lo.FindDuplicates(problem.AgeGroups),
	}
	for _, entity := range []string{"room", "theater", "surgeon", "patient", "occupant", "nurse", "shift", "age group"} {
		if len(duplicates[entity]) > 0 {
			return fmt.Errorf("duplicate %v ids: %v", entity, duplicates[entity])
		}
	}

	rooms := lo.SliceToMap(problem.Rooms, func(room Room) (string, bool) { return room.Id, true })
	surgeons := lo.SliceToMap(problem.Surgeons, func(surgeon Surgeon) (string, bool) { return surgeon.Id, true })

	//** Verify per-day arrays cover the horizon
	for _, surgeon := range problem.Surgeons {
		if len(surgeon.MaxSurgeryTime) != problem.Days {
			return fmt.Errorf("surgeon \"%v\" has %d daily limits for a %d-day horizon", surgeon.Id, len(surgeon.MaxSurgeryTime), problem.Days)
		}
	}
	for _, theater := range problem.OperatingTheaters {
		if len(theater.Availability) != problem.Days {
			return fmt.Errorf("operating theater \"%v\" has %d daily availabilities for a %d-day horizon", theater.Id, len(theater.Availability), problem.Days)
		}
	}

	//** Verify patients
	for _, patient := range problem.Patients {
		if !surgeons[patient.SurgeonId] {
			return fmt.Errorf("patient \"%v\" references unknown surgeon \"%v\"", patient.Id, patient.SurgeonId)
		}
		if unknown, ok := lo.Find(patient.IncompatibleRoomIds, func(room string) bool { return !rooms[room] }); ok {
			return fmt.Errorf("patient \"%v\" references unknown incompatible room \"%v\"", patient.Id, unknown)
		}
		if !slices.Contains(problem.AgeGroups, patient.AgeGroup) {
			return fmt.Errorf("patient \"%v\" has unknown age group \"%v\"", patient.Id, patient.AgeGroup)
		}
		if patient.Mandatory && patient.SurgeryDueDay < patient.SurgeryReleaseDay {
			return fmt.Errorf("mandatory patient \"%v\" is due on day %d before its release day %d", patient.Id, patient.SurgeryDueDay, patient.SurgeryReleaseDay)
		}
		if expected := patient.LengthOfStay * len(problem.ShiftTypes); len(patient.WorkloadProduced) < expected || len(patient.SkillLevelRequired) < expected {
			return fmt.Errorf("patient \"%v\" needs %d workload and skill entries", patient.Id, expected)
		}
	}

	//** Verify occupants
	for _, occupant := range problem.Occupants {
		if !rooms[occupant.RoomId] {
			return fmt.Errorf("occupant \"%v\" references unknown room \"%v\"", occupant.Id, occupant.RoomId)
		}
		if !slices.Contains(problem.AgeGroups, occupant.AgeGroup) {
			return fmt.Errorf("occupant \"%v\" has unknown age group \"%v\"", occupant.Id, occupant.AgeGroup)
		}
		if expected := min(occupant.LengthOfStay, problem.Days) * len(problem.ShiftTypes); len(occupant.WorkloadProduced) < expected || len(occupant.SkillLevelRequired) < expected {
			return fmt.Errorf("occupant \"%v\" needs %d workload and skill entries", occupant.Id, expected)
		}
	}

	//** Verify nurses
	for _, nurse := range problem.Nurses {
		for _, workingShift := range nurse.WorkingShifts {
			if workingShift.Day >= problem.Days {
				return fmt.Errorf("nurse \"%v\" works on day %d outside the %d-day horizon", nurse.Id, workingShift.Day, problem.Days)
			}
			if !slices.Contains(problem.ShiftTypes, workingShift.Shift) {
				return fmt.Errorf("nurse \"%v\" works on unknown shift \"%v\"", nurse.Id, workingShift.Shift)
			}
		}
	}

	return nil
}

// Clone returns a deep copy of the problem so that concurrent workers never share backing arrays
func (problem Problem) Clone() Problem {
	clone := problem
	clone.ShiftTypes = slices.Clone(problem.ShiftTypes)
	clone.AgeGroups = slices.Clone(problem.AgeGroups)
	clone.Rooms = slices.Clone(problem.Rooms)
	clone.Occupants = lo.Map(problem.Occupants, func(occupant Occupant, _ int) Occupant {
		occupant.WorkloadProduced = slices.Clone(occupant.WorkloadProduced)
		occupant.SkillLevelRequired = slices.Clone(occupant.SkillLevelRequired)
		return occupant
	})
	clone.Patients = lo.Map(problem.Patients, func(patient Patient, _ int) Patient {
		patient.IncompatibleRoomIds = slices.Clone(patient.IncompatibleRoomIds)
		patient.WorkloadProduced = slices.Clone(patient.WorkloadProduced)
		patient.SkillLevelRequired = slices.Clone(patient.SkillLevelRequired)
		return patient
	})
	clone.Surgeons = lo.Map(problem.Surgeons, func(surgeon Surgeon, _ int) Surgeon {
		surgeon.MaxSurgeryTime = slices.Clone(surgeon.MaxSurgeryTime)
		return surgeon
	})
	clone.OperatingTheaters = lo.Map(problem.OperatingTheaters, func(theater OperatingTheater, _ int) OperatingTheater {
		theater.Availability = slices.Clone(theater.Availability)
		return theater
	})
	clone.Nurses = lo.Map(problem.Nurses, func(nurse Nurse, _ int) Nurse {
		nurse.WorkingShifts = slices.Clone(nurse.WorkingShifts)
		return nurse
	})
	return clone
}

// WorkingShiftSlots returns the number of (nurse, working shift) slots, i.e. the number of room lists an encoding must carry
func (problem Problem) WorkingShiftSlots() int {
	return lo.SumBy(problem.Nurses, func(nurse Nurse) int { return len(nurse.WorkingShifts) })
}
