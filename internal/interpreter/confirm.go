package interpreter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/progressor-app/progressor/internal/domain/task"
)

// pendingTTL is how long a mutating command waits for its "yes".
const pendingTTL = 60 * time.Second

// pendingAction is the single-slot record of a mutating command awaiting
// confirmation. A new mutating command overwrites it (last write wins).
type pendingAction struct {
	Command string `json:"command"`
	Args    string `json:"args"`
}

func pendingKey(userID string) string {
	return "pending_action_" + userID
}

// isConfirmation matches a literal yes, optionally single-quoted,
// case-insensitively.
func isConfirmation(message string) bool {
	s := strings.ToLower(strings.TrimSpace(message))
	return s == "yes" || s == "'yes'"
}

func (i *Interpreter) storePending(ctx context.Context, userID, command, args string) error {
	data, err := json.Marshal(pendingAction{Command: command, Args: args})
	if err != nil {
		return fmt.Errorf("marshal pending action: %w", err)
	}
	if err := i.cache.Set(ctx, pendingKey(userID), data, pendingTTL); err != nil {
		return fmt.Errorf("cache pending action: %w", err)
	}
	return nil
}

// takePending atomically consumes the user's pending action. The cache's
// Take provides the read-and-delete atomicity, so two racing "yes"
// replies cannot both execute.
func (i *Interpreter) takePending(ctx context.Context, userID string) (pendingAction, bool) {
	data, ok, err := i.cache.Take(ctx, pendingKey(userID))
	if err != nil {
		slog.Error("take pending action failed", "user_id", userID, "error", err)
		return pendingAction{}, false
	}
	if !ok {
		return pendingAction{}, false
	}

	var act pendingAction
	if err := json.Unmarshal(data, &act); err != nil {
		slog.Error("decode pending action failed", "user_id", userID, "error", err)
		return pendingAction{}, false
	}
	return act, true
}

// executePending forwards the confirmed mutation to the task store. The
// target is the newest task whose title contains the argument text;
// store failures are logged, never surfaced.
func (i *Interpreter) executePending(ctx context.Context, userID string, act pendingAction) string {
	if target := i.findTarget(ctx, userID, act.Args); target != nil {
		var err error
		switch act.Command {
		case cmdDelete:
			err = i.store.DeleteTask(ctx, target.ID)
		case cmdUpdate:
			err = i.store.UpdateTaskStatus(ctx, target.ID, task.StatusInProgress)
		}
		if err != nil {
			slog.Error("confirmed action failed", "command", act.Command, "task_id", target.ID, "error", err)
		}
	}
	return fmt.Sprintf("Executing %s: %s", act.Command, act.Args)
}

func (i *Interpreter) findTarget(ctx context.Context, userID, args string) *task.Task {
	if strings.TrimSpace(args) == "" {
		return nil
	}
	tasks, err := i.store.ListTasks(ctx, userID, task.Filter{TitleContains: args, Limit: 1})
	if err != nil {
		slog.Error("resolve action target failed", "user_id", userID, "error", err)
		return nil
	}
	if len(tasks) == 0 {
		return nil
	}
	return &tasks[0]
}
