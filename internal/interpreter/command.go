package interpreter

import (
	"regexp"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Command tokens. The vocabulary is closed; anything else is either a
// typo (fuzzy-suggested) or freeform text.
const (
	cmdTask     = "@task"
	cmdDelete   = "@delete"
	cmdUpdate   = "@update"
	cmdShow     = "@show"
	cmdPending  = "@pending"
	cmdProgress = "@progress"
	cmdComplete = "@complete"
	cmdHigh     = "@high"
	cmdLow      = "@low"
	cmdNormal   = "@normal"
	cmdVeryHigh = "@veryhigh"
	cmdVeryLow  = "@verylow"
	cmdToday    = "@today"
	cmdTomorrow = "@tomorrow"
	cmdMissed   = "@missed"
	cmdHelp     = "@help"
)

// commands is the closed vocabulary in a fixed order so fuzzy matching
// is deterministic.
var commands = []string{
	cmdTask, cmdDelete, cmdUpdate, cmdShow, cmdPending, cmdProgress,
	cmdComplete, cmdHigh, cmdLow, cmdNormal, cmdVeryHigh, cmdVeryLow,
	cmdToday, cmdTomorrow, cmdMissed, cmdHelp,
}

var supported = func() map[string]bool {
	m := make(map[string]bool, len(commands))
	for _, c := range commands {
		m[c] = true
	}
	return m
}()

var commandPattern = regexp.MustCompile(`^@\w+`)

// ExtractCommand splits a raw message into an optional leading @command
// (lower-cased) and the remaining text (trimmed). With no leading
// command it returns "" and the whole trimmed message.
func ExtractCommand(message string) (command, remaining string) {
	trimmed := strings.TrimSpace(message)
	match := commandPattern.FindString(trimmed)
	if match == "" {
		return "", trimmed
	}
	return strings.ToLower(match), strings.TrimSpace(trimmed[len(match):])
}

// Supported reports whether cmd is in the command vocabulary.
func Supported(cmd string) bool {
	return supported[cmd]
}

// similarityThreshold is the minimum normalized similarity for a fuzzy
// suggestion. One-edit typos of short commands land exactly on 0.6
// (e.g. "@taks" vs "@task"), so the comparison is inclusive.
const similarityThreshold = 0.6

// ClosestCommand returns the vocabulary entry most similar to the
// candidate, if its normalized Levenshtein similarity reaches the
// threshold. Used only to phrase a suggestion, never to auto-execute.
func ClosestCommand(candidate string) (string, bool) {
	best := ""
	bestSim := 0.0
	for _, cmd := range commands {
		dist := levenshtein.ComputeDistance(candidate, cmd)
		maxLen := len(candidate)
		if len(cmd) > maxLen {
			maxLen = len(cmd)
		}
		if maxLen == 0 {
			continue
		}
		sim := 1 - float64(dist)/float64(maxLen)
		if sim > bestSim {
			best, bestSim = cmd, sim
		}
	}
	if bestSim >= similarityThreshold {
		return best, true
	}
	return "", false
}
