package model

import (
	"strings"
	"time"
)

// WeatherRecord is the decoded snapshot of current conditions for one location
type WeatherRecord struct {
	Name        string  `json:"name"`
	Temperature float64 `json:"temp"`
	FeelsLike   float64 `json:"feels_like"`
	Humidity    int     `json:"humidity"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
}

// IconURL builds the image URL for the record's icon identifier
func (r WeatherRecord) IconURL(base string) string {
	if r.Icon == "" {
		return ""
	}
	return strings.TrimRight(base, "/") + "/" + r.Icon + "@2x.png"
}

// Phase is the active member of a request state
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseSuccess Phase = "success"
	PhaseFailure Phase = "failure"
)

// State is the lifecycle of the current lookup as seen by the screen.
// Record is set only in PhaseSuccess and Error only in PhaseFailure.
type State struct {
	Phase      Phase          `json:"phase"`
	City       string         `json:"city,omitempty"`
	Record     *WeatherRecord `json:"record,omitempty"`
	Error      string         `json:"error,omitempty"`
	Generation uint64         `json:"generation"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// IdleState returns the initial state of a screen
func IdleState() State {
	return State{Phase: PhaseIdle, UpdatedAt: time.Now()}
}

// LoadingState starts a new lookup, dropping any previous record or error
func LoadingState(city string, generation uint64) State {
	return State{Phase: PhaseLoading, City: city, Generation: generation, UpdatedAt: time.Now()}
}

// SuccessState finishes a lookup with a record
func SuccessState(city string, generation uint64, record WeatherRecord) State {
	return State{Phase: PhaseSuccess, City: city, Record: &record, Generation: generation, UpdatedAt: time.Now()}
}

// FailureState finishes a lookup with a user-facing message
func FailureState(city string, generation uint64, message string) State {
	return State{Phase: PhaseFailure, City: city, Error: message, Generation: generation, UpdatedAt: time.Now()}
}

// IsIdle reports whether no lookup has been submitted yet
func (s State) IsIdle() bool { return s.Phase == PhaseIdle }

// IsLoading reports whether a lookup is in flight
func (s State) IsLoading() bool { return s.Phase == PhaseLoading }

// IsSuccess reports whether the latest lookup produced a record
func (s State) IsSuccess() bool { return s.Phase == PhaseSuccess }

// IsFailure reports whether the latest lookup ended with an error message
func (s State) IsFailure() bool { return s.Phase == PhaseFailure }
