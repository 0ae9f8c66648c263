// Package task defines the Task domain entity and its query filter.
package task

import (
	"strings"
	"time"
)

// Status represents the current state of a task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Priority is the stored single-letter-pair priority code.
type Priority string

const (
	PriorityVeryLow  Priority = "vl"
	PriorityLow      Priority = "l"
	PriorityNormal   Priority = "n"
	PriorityHigh     Priority = "h"
	PriorityVeryHigh Priority = "vh"
)

// MaxScore is the upper bound of the normalized task score.
const MaxScore = 30

// Weight returns the scoring weight of a priority. Unknown codes
// fall back to the lowest weight.
func (p Priority) Weight() float64 {
	switch p {
	case PriorityVeryHigh:
		return 3
	case PriorityHigh:
		return 2.5
	case PriorityNormal:
		return 2
	case PriorityLow:
		return 1.5
	default:
		return 1
	}
}

// Category codes are single letters: e(mergency), f(amily), h(ome),
// p(ersonal), s(ocial), w(ork). "g" is the catch-all for unclassified tasks.
const CategoryGeneral = "g"

// Task represents a single to-do item owned by a user.
type Task struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	Status        Status     `json:"status"`
	Priority      Priority   `json:"priority"`
	Category      string     `json:"category"`
	Score         int        `json:"est_points"`
	EstTime       int        `json:"est_time"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	StartDate     *time.Time `json:"start_date,omitempty"`
	CompletedDate *time.Time `json:"completed_date,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// CreateRequest holds the fields needed to create a new task.
type CreateRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      Status     `json:"status,omitempty"`
	Priority    Priority   `json:"priority,omitempty"`
	Category    string     `json:"category,omitempty"`
	Score       int        `json:"est_points,omitempty"`
	EstTime     int        `json:"est_time,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
}

// Filter describes a predicate over a user's task set. Zero-valued
// fields are not applied; set fields compose with logical AND.
type Filter struct {
	Statuses      []Status
	Priorities    []Priority
	DueOn         *time.Time // matches the calendar day of this instant
	MissedBefore  *time.Time // due strictly before this AND status pending/in_progress
	TitleContains string     // case-insensitive substring on title
	CreatedAfter  *time.Time
	Limit         int
}

// Matches reports whether t satisfies the filter. The postgres store
// compiles the same predicate into SQL; this in-memory form backs the
// fake stores used in tests and keeps the two definitions honest.
func (f Filter) Matches(t Task) bool {
	if len(f.Statuses) > 0 && !containsStatus(f.Statuses, t.Status) {
		return false
	}
	if len(f.Priorities) > 0 && !containsPriority(f.Priorities, t.Priority) {
		return false
	}
	if f.DueOn != nil {
		if t.DueDate == nil {
			return false
		}
		y1, m1, d1 := f.DueOn.Date()
		y2, m2, d2 := t.DueDate.Date()
		if y1 != y2 || m1 != m2 || d1 != d2 {
			return false
		}
	}
	if f.MissedBefore != nil {
		if t.DueDate == nil || !t.DueDate.Before(*f.MissedBefore) {
			return false
		}
		if t.Status != StatusPending && t.Status != StatusInProgress {
			return false
		}
	}
	if f.TitleContains != "" &&
		!strings.Contains(strings.ToLower(t.Title), strings.ToLower(f.TitleContains)) {
		return false
	}
	if f.CreatedAfter != nil && t.CreatedAt.Before(*f.CreatedAfter) {
		return false
	}
	return true
}

func containsStatus(ss []Status, s Status) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

func containsPriority(ps []Priority, p Priority) bool {
	for _, v := range ps {
		if v == p {
			return true
		}
	}
	return false
}

