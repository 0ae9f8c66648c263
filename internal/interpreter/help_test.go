package interpreter

import (
	"strings"
	"testing"
)

func TestHelpListsAllGroups(t *testing.T) {
	got := helpMessage("")

	for _, group := range []string{"Task Management:", "Task Views:", "Priority Filters:", "Time Filters:"} {
		if !strings.Contains(got, group) {
			t.Errorf("expected group %q, got:\n%s", group, got)
		}
	}
	for _, cmd := range commands {
		if cmd == cmdHelp {
			continue // help doesn't list itself
		}
		if !strings.Contains(got, cmd) {
			t.Errorf("help must mention %s", cmd)
		}
	}
}

func TestHelpFilter(t *testing.T) {
	got := helpMessage("priority")

	if !strings.HasPrefix(got, "Available commands matching 'priority':") {
		t.Fatalf("expected filtered header, got %q", got)
	}
	if !strings.Contains(got, "@high") || !strings.Contains(got, "@verylow") {
		t.Errorf("expected priority commands, got:\n%s", got)
	}
	if strings.Contains(got, "@today") {
		t.Errorf("unrelated commands must be filtered out:\n%s", got)
	}
}

func TestHelpFilterCaseInsensitive(t *testing.T) {
	got := helpMessage("DELETE")
	if !strings.Contains(got, "@delete") {
		t.Fatalf("expected @delete, got:\n%s", got)
	}
}

func TestHelpFilterNoMatches(t *testing.T) {
	got := helpMessage("frobnicate")
	if got != "No commands found matching 'frobnicate'" {
		t.Fatalf("expected explicit empty result, got %q", got)
	}
}
