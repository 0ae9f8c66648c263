package interpreter

import (
	"testing"
	"time"
)

var baseTime = time.Date(2025, 6, 2, 14, 30, 0, 0, time.UTC)

func TestExtractDueDateTomorrow(t *testing.T) {
	due, remaining := ExtractDueDate("finish report tomorrow by noon", baseTime)

	if due == nil {
		t.Fatal("expected a due date")
	}
	if !due.Equal(baseTime.AddDate(0, 0, 1)) {
		t.Errorf("expected now+1d, got %v", due)
	}
	if remaining != "finish report  by noon" {
		t.Errorf("expected phrase removed, got %q", remaining)
	}
}

func TestExtractDueDateOffsets(t *testing.T) {
	tests := []struct {
		text string
		days int
	}{
		{"pay rent today", 0},
		{"call mom tomorrow", 1},
		{"dentist next week", 7},
		{"review draft in 2 days", 2},
		{"submit form in 3 days", 3},
		{"renew passport next month", 30},
	}

	for _, tt := range tests {
		due, _ := ExtractDueDate(tt.text, baseTime)
		if due == nil {
			t.Errorf("%q: expected a due date", tt.text)
			continue
		}
		if want := baseTime.AddDate(0, 0, tt.days); !due.Equal(want) {
			t.Errorf("%q: expected %v, got %v", tt.text, want, due)
		}
	}
}

func TestExtractDueDateNoPhrase(t *testing.T) {
	due, remaining := ExtractDueDate("Buy Groceries", baseTime)

	if due != nil {
		t.Errorf("expected no due date, got %v", due)
	}
	if remaining != "Buy Groceries" {
		t.Errorf("text must be returned unchanged, got %q", remaining)
	}
}

func TestExtractDueDateFirstMatchWins(t *testing.T) {
	// "today" precedes "tomorrow" in the phrase table.
	due, _ := ExtractDueDate("tomorrow or today", baseTime)
	if due == nil || !due.Equal(baseTime) {
		t.Fatalf("expected today's offset to win, got %v", due)
	}
}

func TestExtractDueDateCaseInsensitive(t *testing.T) {
	due, remaining := ExtractDueDate("Ship it TOMORROW", baseTime)
	if due == nil {
		t.Fatal("expected a due date")
	}
	if remaining != "ship it" {
		t.Errorf("expected lower-cased remainder, got %q", remaining)
	}
}
