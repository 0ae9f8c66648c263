package interpreter

import (
	"fmt"
	"strings"
)

// helpGroups lists every command with its description line, grouped for
// display. Kept in sync with the vocabulary in command.go.
var helpGroups = []struct {
	name     string
	commands []string
}{
	{"Task Management", []string{
		"@task [description] - Create new task",
		"@update [id/name] - Update existing task",
		"@delete [id/name] - Delete task",
	}},
	{"Task Views", []string{
		"@show - Show all tasks",
		"@pending - Show pending tasks",
		"@progress - Show in-progress tasks",
		"@complete - Show completed tasks",
	}},
	{"Priority Filters", []string{
		"@high - Show high priority tasks",
		"@low - Show low priority tasks",
		"@normal - Show normal priority tasks",
		"@veryhigh - Show very high priority tasks",
		"@verylow - Show very low priority tasks",
	}},
	{"Time Filters", []string{
		"@today - Show tasks due today",
		"@tomorrow - Show tasks due tomorrow",
		"@missed - Show overdue tasks",
	}},
}

// helpMessage formats the command listing, optionally filtered by a
// case-insensitive substring against each description line.
func helpMessage(filterText string) string {
	if filterText != "" {
		needle := strings.ToLower(filterText)
		var sections []string
		for _, g := range helpGroups {
			var matched []string
			for _, cmd := range g.commands {
				if strings.Contains(strings.ToLower(cmd), needle) {
					matched = append(matched, cmd)
				}
			}
			if len(matched) > 0 {
				sections = append(sections, g.name+":\n"+strings.Join(matched, "\n"))
			}
		}
		if len(sections) == 0 {
			return fmt.Sprintf("No commands found matching '%s'", filterText)
		}
		return fmt.Sprintf("Available commands matching '%s':\n\n%s",
			filterText, strings.Join(sections, "\n\n"))
	}

	var b strings.Builder
	b.WriteString("Available commands:\n\n")
	for _, g := range helpGroups {
		b.WriteString(g.name + ":\n" + strings.Join(g.commands, "\n") + "\n\n")
	}
	return strings.TrimSpace(b.String())
}
