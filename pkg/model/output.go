package model

import (
	"encoding/json"
	"fmt"
	"os"
)

var SoftConstraintNames = []string{
	"room_mixed_age",
	"room_nurse_skill",
	"continuity_of_care",
	"nurse_eccessive_workload",
	"open_operating_theater",
	"surgeon_transfer",
	"patient_delay",
	"unscheduled_optional",
}

var HardConstraintNames = []string{
	"room_gender_mix",
	"patient_room_compatibility",
	"surgeon_overtime",
	"operating_theater_overtime",
	"mandatory_unscheduled_patients",
	"admission_day",
	"room_capacity",
	"nurse_presence",
}

type costsJson struct {
	Soft      map[string]int `json:"soft"`
	TotalSoft int            `json:"total_soft"`
	Hard      map[string]int `json:"hard"`
	TotalHard int            `json:"total_hard"`
}

type solutionJson struct {
	RunId    string              `json:"run_id,omitempty"`
	Patients []PatientAssignment `json:"patients"`
	Nurses   []NurseAssignment   `json:"nurses"`
	Costs    costsJson           `json:"costs"`
}

func (assignment PatientAssignment) MarshalJSON() ([]byte, error) {
	if !assignment.Scheduled() {
		return json.Marshal(struct {
			Id           string `json:"id"`
			AdmissionDay string `json:"admission_day"`
		}{assignment.Id, "none"})
	}

	var room, theater string
	if assignment.Room != nil {
		room = *assignment.Room
	}
	if assignment.OperatingTheater != nil {
		theater = *assignment.OperatingTheater
	}

	return json.Marshal(struct {
		Id               string `json:"id"`
		AdmissionDay     int    `json:"admission_day"`
		Room             string `json:"room"`
		OperatingTheater string `json:"operating_theater"`
	}{assignment.Id, *assignment.AdmissionDay, room, theater})
}

func (solution Solution) toJson(runId string) solutionJson {
	costs := costsJson{
		Soft:      make(map[string]int, len(SoftConstraintNames)),
		TotalSoft: solution.TotalSoftConstraints,
		Hard:      make(map[string]int, len(HardConstraintNames)),
		TotalHard: solution.TotalHardConstraints(),
	}
	for i, value := range solution.SoftConstraints {
		costs.Soft[SoftConstraintNames[i]] = value
	}
	for i, value := range solution.HardConstraints {
		costs.Hard[HardConstraintNames[i]] = value
	}

	return solutionJson{
		RunId:    runId,
		Patients: solution.Patients,
		Nurses:   solution.Nurses,
		Costs:    costs,
	}
}

// MarshalJSON writes the solution in the competition output format, extended with the cost breakdown
func (solution Solution) MarshalJSON() ([]byte, error) {
	return json.Marshal(solution.toJson(""))
}

func (solution Solution) ExportToJson(file string, runId string) error {
	bytes, err := json.MarshalIndent(solution.toJson(runId), "", "  ")
	if err != nil {
		return fmt.Errorf("cannot encode solution: %w", err)
	}
	if err := os.WriteFile(file, bytes, 0o644); err != nil {
		return fmt.Errorf("cannot write solution file: %w", err)
	}
	return nil
}
