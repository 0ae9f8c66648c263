// Package interpreter implements the chat command interpreter: it parses
// @-prefixed commands out of free text, gates destructive commands behind
// a confirmation step, runs filtered task queries, and drives the
// AI-assisted task creation pipeline.
package interpreter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/progressor-app/progressor/internal/port/ai"
	"github.com/progressor-app/progressor/internal/port/cache"
	"github.com/progressor-app/progressor/internal/port/database"
)

// genericErrorReply is the only thing users see when a collaborator
// fails; details go to the log.
const genericErrorReply = "Something went wrong. Please try again later."

// Interpreter processes one inbound chat message at a time. It holds no
// mutable state of its own, so a single instance is safe for concurrent
// use across users; per-user confirmation state lives in the cache.
type Interpreter struct {
	store      database.Store
	cache      cache.Cache
	completer  ai.Completer
	classifier ai.Classifier
	now        func() time.Time // for testing
}

// New creates an Interpreter wired to its collaborators.
func New(store database.Store, c cache.Cache, completer ai.Completer, classifier ai.Classifier) *Interpreter {
	return &Interpreter{
		store:      store,
		cache:      c,
		completer:  completer,
		classifier: classifier,
		now:        time.Now,
	}
}

// route is the dispatcher's decision for a tokenized message. Keeping
// the branches as an enum keeps the switch in Process exhaustive.
type route int

const (
	routeHelp route = iota
	routeImmediate
	routeFreeform
	routeUnknown
	routeMutating
	routeFiltered
)

func classify(cmd string) route {
	switch {
	case cmd == cmdHelp:
		return routeHelp
	case cmd == cmdTask || cmd == cmdShow:
		return routeImmediate
	case cmd == "":
		return routeFreeform
	case !Supported(cmd):
		return routeUnknown
	case cmd == cmdUpdate || cmd == cmdDelete:
		return routeMutating
	default:
		return routeFiltered
	}
}

// Process interprets one message from a user and returns the reply text.
func (i *Interpreter) Process(ctx context.Context, userID, message string) string {
	// A literal "yes" consumes a pending action if one is still alive.
	// An expired or absent action falls through to normal parsing.
	if isConfirmation(message) {
		if act, ok := i.takePending(ctx, userID); ok {
			return i.executePending(ctx, userID, act)
		}
	}

	cmd, rest := ExtractCommand(message)

	switch classify(cmd) {
	case routeHelp:
		return helpMessage(rest)

	case routeImmediate:
		// Creation and plain show bypass the confirmation gate.
		if cmd == cmdTask {
			return i.createTask(ctx, userID, rest)
		}
		return i.showTasks(ctx, userID, rest)

	case routeFreeform:
		return i.analyzeFreeform(ctx, userID, rest)

	case routeUnknown:
		if closest, ok := ClosestCommand(cmd); ok {
			return fmt.Sprintf("Unknown command '%s'. Did you mean '%s'?", cmd, closest)
		}
		return fmt.Sprintf("Unknown command '%s'. Type '@help' to see available commands.", cmd)

	case routeMutating:
		if err := i.storePending(ctx, userID, cmd, rest); err != nil {
			slog.Error("store pending action failed", "user_id", userID, "error", err)
			return genericErrorReply
		}
		return fmt.Sprintf("Please confirm you want to %s this task: '%s' (reply 'yes' to confirm)",
			cmd[1:], rest)

	default: // routeFiltered
		return i.filteredShow(ctx, userID, cmd, rest)
	}
}
