package interpreter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/progressor-app/progressor/internal/domain/task"
)

// advicePhrases route a freeform message to the productivity summary.
var advicePhrases = []string{
	"what do you advice",
	"what should i do",
	"any suggestions",
}

// taskKeywords route a freeform message to the @task hint.
var taskKeywords = []string{"task", "todo", "remind", "remember"}

// trendWindowDays is the lookback for the productivity summary.
const trendWindowDays = 5

// analyzeFreeform handles messages with no command prefix by keyword
// containment, first matching branch wins.
func (i *Interpreter) analyzeFreeform(ctx context.Context, userID, message string) string {
	lower := strings.ToLower(message)

	for _, q := range advicePhrases {
		if strings.Contains(lower, q) {
			return i.productivityTrends(ctx, userID)
		}
	}

	for _, kw := range taskKeywords {
		if strings.Contains(lower, kw) {
			return "It seems you're asking about tasks. You can say '@task [description]' to create a new task."
		}
	}

	return "I'm not sure what you're asking. You can use commands like '@task', '@show', etc. for specific actions."
}

// productivityTrends summarizes the user's last five days: completion
// rate and a priority breakdown.
func (i *Interpreter) productivityTrends(ctx context.Context, userID string) string {
	since := i.now().AddDate(0, 0, -trendWindowDays)
	tasks, err := i.store.ListTasks(ctx, userID, task.Filter{CreatedAfter: &since})
	if err != nil {
		slog.Error("productivity trends query failed", "user_id", userID, "error", err)
		return genericErrorReply
	}

	var completed, high, normal, low int
	for _, t := range tasks {
		if t.Status == task.StatusCompleted {
			completed++
		}
		switch t.Priority {
		case task.PriorityHigh, task.PriorityVeryHigh:
			high++
		case task.PriorityNormal:
			normal++
		case task.PriorityLow, task.PriorityVeryLow:
			low++
		}
	}

	total := len(tasks)
	rate := 0.0
	if total > 0 {
		rate = float64(completed) / float64(total) * 100
	}

	return fmt.Sprintf(
		"Here's your productivity analysis for last %d days:\n"+
			"- Completed %d/%d tasks (%.1f%%)\n"+
			"- Priority distribution: %d high, %d normal, %d low\n"+
			"Tip: Try focusing on high priority tasks first!",
		trendWindowDays, completed, total, rate, high, normal, low)
}
