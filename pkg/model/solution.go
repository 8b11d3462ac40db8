package model

import (
	"slices"

	"github.com/samber/lo"
)

//** Encoding

// EncodedPatient is the proposal for one patient: an admission day and a room. The operating theater is always derived during decoding
type EncodedPatient struct {
	PatientId    string
	AdmissionDay int
	RoomId       string
}

// EncodedSolution is the genotype handled by search drivers. Nurses holds one room list per (nurse, working shift) slot, in nurse order and then working-shift order
type EncodedSolution struct {
	Patients []EncodedPatient
	Nurses   [][]string
}

func (encoded EncodedSolution) Clone() EncodedSolution {
	return EncodedSolution{
		Patients: slices.Clone(encoded.Patients),
		Nurses: lo.Map(encoded.Nurses, func(rooms []string, _ int) []string {
			return slices.Clone(rooms)
		}),
	}
}

//** Decoded solution

// RoomState holds, per day of the horizon, the remaining capacity and the indices (into Problem.Patients and Problem.Occupants) of the people in the room
type RoomState struct {
	Room            Room
	CapacityPerDay  []int
	PatientsPerDay  [][]int
	OccupantsPerDay [][]int
}

type OperatingTheaterState struct {
	Theater            OperatingTheater
	AvailabilityPerDay []int
	PatientsPerDay     [][]int
}

// PatientAssignment leaves AdmissionDay, Room and OperatingTheater nil when the patient is unscheduled
type PatientAssignment struct {
	Id               string
	AdmissionDay     *int
	Room             *string
	OperatingTheater *string
}

func (assignment PatientAssignment) Scheduled() bool {
	return assignment.AdmissionDay != nil
}

type ShiftAssignment struct {
	Day   int      `json:"day"`
	Shift string   `json:"shift"`
	Rooms []string `json:"rooms"`
}

type NurseAssignment struct {
	Id          string            `json:"id"`
	Assignments []ShiftAssignment `json:"assignments"`
}

// Solution is the phenotype of an encoding. SoftConstraints and HardConstraints hold the eight categories in their canonical order
type Solution struct {
	RoomStates           []RoomState
	TheaterStates        []OperatingTheaterState
	Patients             []PatientAssignment
	Nurses               []NurseAssignment
	SoftConstraints      []int
	TotalSoftConstraints int
	HardConstraints      []int
}

func (solution Solution) TotalHardConstraints() int {
	return lo.Sum(solution.HardConstraints)
}

func (solution Solution) Clone() Solution {
	cloneDays := func(days [][]int) [][]int {
		return lo.Map(days, func(indices []int, _ int) []int { return slices.Clone(indices) })
	}

	return Solution{
		RoomStates: lo.Map(solution.RoomStates, func(state RoomState, _ int) RoomState {
			return RoomState{
				Room:            state.Room,
				CapacityPerDay:  slices.Clone(state.CapacityPerDay),
				PatientsPerDay:  cloneDays(state.PatientsPerDay),
				OccupantsPerDay: cloneDays(state.OccupantsPerDay),
			}
		}),
		TheaterStates: lo.Map(solution.TheaterStates, func(state OperatingTheaterState, _ int) OperatingTheaterState {
			return OperatingTheaterState{
				Theater:            state.Theater,
				AvailabilityPerDay: slices.Clone(state.AvailabilityPerDay),
				PatientsPerDay:     cloneDays(state.PatientsPerDay),
			}
		}),
		Patients: slices.Clone(solution.Patients), // Pointers inside are never written after decoding
		Nurses: lo.Map(solution.Nurses, func(nurse NurseAssignment, _ int) NurseAssignment {
			return NurseAssignment{
				Id: nurse.Id,
				Assignments: lo.Map(nurse.Assignments, func(assignment ShiftAssignment, _ int) ShiftAssignment {
					assignment.Rooms = slices.Clone(assignment.Rooms)
					return assignment
				}),
			}
		}),
		SoftConstraints:      slices.Clone(solution.SoftConstraints),
		TotalSoftConstraints: solution.TotalSoftConstraints,
		HardConstraints:      slices.Clone(solution.HardConstraints),
	}
}
