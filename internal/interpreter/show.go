package interpreter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/progressor-app/progressor/internal/domain/task"
)

// sampleSize is how many matches a show reply lists before pointing the
// user at '@show' for more.
const sampleSize = 3

// filterForCommand maps a filter command to its task predicate.
func filterForCommand(cmd string, now time.Time) (task.Filter, bool) {
	switch cmd {
	case cmdPending:
		return task.Filter{Statuses: []task.Status{task.StatusPending}}, true
	case cmdProgress:
		return task.Filter{Statuses: []task.Status{task.StatusInProgress}}, true
	case cmdComplete:
		return task.Filter{Statuses: []task.Status{task.StatusCompleted}}, true
	case cmdHigh:
		return task.Filter{Priorities: []task.Priority{task.PriorityHigh, task.PriorityVeryHigh}}, true
	case cmdLow:
		return task.Filter{Priorities: []task.Priority{task.PriorityLow, task.PriorityVeryLow}}, true
	case cmdNormal:
		return task.Filter{Priorities: []task.Priority{task.PriorityNormal}}, true
	case cmdVeryHigh:
		return task.Filter{Priorities: []task.Priority{task.PriorityVeryHigh}}, true
	case cmdVeryLow:
		return task.Filter{Priorities: []task.Priority{task.PriorityVeryLow}}, true
	case cmdToday:
		return task.Filter{DueOn: &now}, true
	case cmdTomorrow:
		tomorrow := now.AddDate(0, 0, 1)
		return task.Filter{DueOn: &tomorrow}, true
	case cmdMissed:
		return task.Filter{MissedBefore: &now}, true
	default:
		return task.Filter{}, false
	}
}

// filteredShow answers a filter command, optionally narrowed by a title
// substring, listing the newest matches.
func (i *Interpreter) filteredShow(ctx context.Context, userID, cmd, filterText string) string {
	f, ok := filterForCommand(cmd, i.now())
	if !ok {
		return fmt.Sprintf("Unknown command '%s'. Type '@help' to see available commands.", cmd)
	}
	f.TitleContains = filterText

	label := strings.TrimSpace(cmd[1:] + " " + filterText)

	count, err := i.store.CountTasks(ctx, userID, f)
	if err != nil {
		slog.Error("count tasks failed", "user_id", userID, "command", cmd, "error", err)
		return genericErrorReply
	}
	if count == 0 {
		return fmt.Sprintf("No tasks found matching '%s'", label)
	}

	f.Limit = sampleSize
	tasks, err := i.store.ListTasks(ctx, userID, f)
	if err != nil {
		slog.Error("list tasks failed", "user_id", userID, "command", cmd, "error", err)
		return genericErrorReply
	}

	var lines []string
	for _, t := range tasks {
		lines = append(lines, fmt.Sprintf("- %s (%s, %s)", t.Title, t.Status, t.Priority))
	}

	return fmt.Sprintf("Found %d tasks matching '%s':\n%s\nType '@show %s [more details]' to see more",
		count, label, strings.Join(lines, "\n"), cmd[1:])
}

// showTasks answers a plain @show, optionally narrowed by a title
// substring.
func (i *Interpreter) showTasks(ctx context.Context, userID, filterText string) string {
	f := task.Filter{TitleContains: filterText}

	count, err := i.store.CountTasks(ctx, userID, f)
	if err != nil {
		slog.Error("count tasks failed", "user_id", userID, "error", err)
		return genericErrorReply
	}

	matching := ""
	if filterText != "" {
		matching = fmt.Sprintf(" matching '%s'", filterText)
	}
	if count == 0 {
		return "No tasks found" + matching
	}

	f.Limit = sampleSize
	tasks, err := i.store.ListTasks(ctx, userID, f)
	if err != nil {
		slog.Error("list tasks failed", "user_id", userID, "error", err)
		return genericErrorReply
	}

	var lines []string
	for _, t := range tasks {
		lines = append(lines, fmt.Sprintf("- %s (Priority: %s, Status: %s)", t.Title, t.Priority, t.Status))
	}

	return fmt.Sprintf("Found %d tasks%s:\n%s\nType '@show [more details]' to see more",
		count, matching, strings.Join(lines, "\n"))
}
