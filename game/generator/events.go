package generator

import (
	"time"

	"github.com/wricardo/mcp-training/icegen/game/engine"
)

// State is a phase of the generation state machine
type State string

const (
	Carving     State = "carving"
	Interfering State = "interfering"
	Reverting   State = "reverting"
	Done        State = "done"
)

// EventType names what happened
type EventType string

const (
	EventCarved       EventType = "carved"
	EventBoulders     EventType = "boulders"
	EventInterference EventType = "interference"
	EventRevert       EventType = "revert"
	EventDone         EventType = "done"
)

// Event is emitted to the observer as generation progresses
type Event struct {
	Type      EventType        `json:"type"`
	State     State            `json:"state"`
	Attempt   int              `json:"attempt,omitempty"`
	Position  *engine.Position `json:"position,omitempty"`
	Distance  int              `json:"distance,omitempty"`
	Solutions int              `json:"solutions"`
	Message   string           `json:"message,omitempty"`
}

// Stop reasons reported in Report.Reason
const (
	ReasonThreshold   = "longest slide within threshold"
	ReasonUnambiguous = "continuation policy no longer holds"
	ReasonExhausted   = "interference attempts exhausted"
	ReasonReverted    = "stopped after reverting an unsolvable edit"
	ReasonCancelled   = "generation cancelled"
)

// Report summarises one generation run
type Report struct {
	Width         int           `json:"width"`
	Height        int           `json:"height"`
	Seed          int64         `json:"seed,omitempty"`
	Islands       int           `json:"islands"`
	Boulders      int           `json:"boulders"`
	Lifted        int           `json:"lifted"`
	Interferences int           `json:"interferences"`
	Reverts       int           `json:"reverts"`
	Skipped       int           `json:"skipped"`
	Attempts      int           `json:"attempts"`
	Solutions     int           `json:"solutions"`
	Shortest      int           `json:"shortest"`
	LongestSlide  int           `json:"longest_slide"`
	Reason        string        `json:"reason"`
	Duration      time.Duration `json:"duration"`
}
