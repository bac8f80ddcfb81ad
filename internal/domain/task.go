package domain

import (
	"fmt"
	"time"
)

type TaskType string

const (
	TaskTypeCall    TaskType = "call"
	TaskTypeEmail   TaskType = "email"
	TaskTypeMeeting TaskType = "meeting"
	TaskTypeVisit   TaskType = "visit"
)

func (t TaskType) Valid() bool {
	switch t {
	case TaskTypeCall, TaskTypeEmail, TaskTypeMeeting, TaskTypeVisit:
		return true
	}
	return false
}

type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusCanceled  TaskStatus = "canceled"
	TaskStatusOnHold    TaskStatus = "on-hold"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusCompleted, TaskStatusCanceled, TaskStatusOnHold:
		return true
	}
	return false
}

// Open reports whether the task still needs doing.
func (s TaskStatus) Open() bool {
	return s == TaskStatusPending || s == TaskStatusOnHold
}

type AssociationType string

const (
	AssociationLead   AssociationType = "lead"
	AssociationClient AssociationType = "client"
)

// Association is a denormalised pointer to a lead or client. Nothing keeps it in
// sync when the target is renamed or deleted.
type Association struct {
	Type AssociationType `json:"type"`
	ID   string          `json:"id"`
	Name string          `json:"name"`
}

type Task struct {
	ID             string       `json:"id"`
	Title          string       `json:"title"`
	Description    string       `json:"description,omitempty"`
	Date           time.Time    `json:"date"`
	Type           TaskType     `json:"type"`
	Time           string       `json:"time,omitempty"`
	Client         string       `json:"client"`
	Status         TaskStatus   `json:"status"`
	AssociatedWith *Association `json:"associatedWith,omitempty"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

func (t Task) Clone() Task {
	out := t
	if t.AssociatedWith != nil {
		a := *t.AssociatedWith
		out.AssociatedWith = &a
	}
	return out
}

// ParseClock parses an "HH:MM" string.
func ParseClock(s string) (hour, minute int, err error) {
	tm, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: time must be HH:MM, got %q", ErrValidation, s)
	}
	return tm.Hour(), tm.Minute(), nil
}

// Start combines the task's calendar day with its HH:MM time in the date's location.
// Without a time the date is returned as stored.
func (t Task) Start() (time.Time, error) {
	if t.Time == "" {
		return t.Date, nil
	}
	hour, minute, err := ParseClock(t.Time)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := t.Date.Date()
	return time.Date(y, m, d, hour, minute, 0, 0, t.Date.Location()), nil
}

// SameDay reports whether a and b fall on the same calendar day in b's location.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.In(b.Location()).Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

type TaskFilter struct {
	Status   TaskStatus
	Type     TaskType
	LinkedTo string
}
