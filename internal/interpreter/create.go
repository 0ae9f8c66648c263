package interpreter

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/progressor-app/progressor/internal/domain/task"
)

// Estimation defaults used when an AI call fails or returns something
// unparsable. A single failed estimate never aborts creation.
const (
	defaultDifficulty = 5
	defaultHours      = 1.0
	minHours          = 0.1
	defaultCategory   = "General"
)

var priorityByRank = map[string]task.Priority{
	"5": task.PriorityVeryHigh,
	"4": task.PriorityHigh,
	"3": task.PriorityNormal,
	"2": task.PriorityLow,
	"1": task.PriorityVeryLow,
}

// createTask runs the creation pipeline: due-date phrase extraction,
// AI-estimated priority/difficulty/time, scoring, categorization, and
// persistence. Only the final store write can fail the operation.
func (i *Interpreter) createTask(ctx context.Context, userID, text string) string {
	if strings.TrimSpace(text) == "" {
		return "Please provide a task description after @task"
	}

	now := i.now()
	dueDate, title := ExtractDueDate(text, now)

	priority := i.estimatePriority(ctx, title)
	difficulty := i.estimateDifficulty(ctx, title)
	hours := i.estimateHours(ctx, title)

	if dueDate == nil {
		d := now.Add(time.Duration(hours * float64(time.Hour)))
		dueDate = &d
	}
	due := clampDue(*dueDate)

	category := i.categorize(ctx, title)

	req := task.CreateRequest{
		Title:       title,
		Description: "Automatically created task: " + title,
		Category:    categoryCode(category),
		Priority:    priority,
		Score:       Score(difficulty, priority),
		Status:      task.StatusPending,
		DueDate:     &due,
		EstTime:     int(math.Round(hours)),
	}

	if _, err := i.store.CreateTask(ctx, userID, req); err != nil {
		slog.Error("task creation failed", "user_id", userID, "error", err)
		return "Failed to save task. Please try again later."
	}

	return fmt.Sprintf(
		"Task saved successfully!\n\n%s\nDue: %s\nCategory: %s\n\n"+
			"You can view and manage this task in your Tasks tab.\nGood luck with your task!",
		title, due.Format("Monday, January 2 at 3:04 PM"), category)
}

func (i *Interpreter) estimatePriority(ctx context.Context, title string) task.Priority {
	prompt := fmt.Sprintf(
		"Given this task: '%s', assign a priority level (1-5) where 1 is lowest and 5 is highest. Return ONLY the number.",
		title)
	resp, err := i.completer.Complete(ctx, prompt)
	if err != nil {
		slog.Error("priority estimation failed", "error", err)
		return task.PriorityNormal
	}
	if p, ok := priorityByRank[strings.TrimSpace(resp)]; ok {
		return p
	}
	return task.PriorityNormal
}

func (i *Interpreter) estimateDifficulty(ctx context.Context, title string) int {
	prompt := fmt.Sprintf(
		"Rate difficulty of this task (1-10, 10=hardest): '%s'. Return ONLY the number.", title)
	resp, err := i.completer.Complete(ctx, prompt)
	if err != nil {
		slog.Error("difficulty estimation failed", "error", err)
		return defaultDifficulty
	}
	n, err := strconv.Atoi(strings.TrimSpace(resp))
	if err != nil {
		slog.Error("difficulty response unparsable", "response", resp)
		return defaultDifficulty
	}
	return min(10, max(1, n))
}

func (i *Interpreter) estimateHours(ctx context.Context, title string) float64 {
	prompt := fmt.Sprintf(
		"Estimate time required for this task in hours: '%s'. Return ONLY the number.", title)
	resp, err := i.completer.Complete(ctx, prompt)
	if err != nil {
		slog.Error("time estimation failed", "error", err)
		return defaultHours
	}
	// ParseFloat accepts "NaN" and "Inf"; those are as useless as
	// garbage text, and NaN would slip past the floor below.
	h, err := strconv.ParseFloat(strings.TrimSpace(resp), 64)
	if err != nil || math.IsNaN(h) || math.IsInf(h, 0) {
		slog.Error("time response unparsable", "response", resp)
		return defaultHours
	}
	return math.Max(minHours, h)
}

func (i *Interpreter) categorize(ctx context.Context, title string) string {
	label, err := i.classifier.Classify(ctx, title)
	if err != nil {
		slog.Error("task categorization failed", "error", err)
		return defaultCategory
	}
	if strings.TrimSpace(label) == "" {
		return defaultCategory
	}
	return label
}

// categoryCode reduces a category label to its stored single-letter code.
func categoryCode(label string) string {
	label = strings.TrimSpace(strings.ToLower(label))
	if label == "" {
		return task.CategoryGeneral
	}
	return label[:1]
}

// clampDue keeps deadlines inside waking hours: before 6 AM moves to
// 9 AM the same day, 11 PM or later moves to 9 PM the next day.
func clampDue(t time.Time) time.Time {
	switch {
	case t.Hour() < 6:
		return time.Date(t.Year(), t.Month(), t.Day(), 9, 0, 0, 0, t.Location())
	case t.Hour() >= 23:
		return time.Date(t.Year(), t.Month(), t.Day(), 21, 0, 0, 0, t.Location()).AddDate(0, 0, 1)
	default:
		return t
	}
}

// Score combines difficulty and priority into the normalized 0-30 task
// score. Difficulty carries two thirds of the weight (max 20 raw),
// priority one third, and the result is capped at task.MaxScore.
func Score(difficulty int, p task.Priority) int {
	raw := int(math.Round(float64(difficulty) * 2 * p.Weight()))
	if raw > task.MaxScore {
		return task.MaxScore
	}
	return raw
}
