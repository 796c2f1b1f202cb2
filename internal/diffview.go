package internal

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// MessageDiff renders a line-based diff between the old and new message,
// prefixing removed lines with "-", added lines with "+" and context with a
// space. Empty when the messages are equal.
func MessageDiff(oldMessage, newMessage string) string {
	if oldMessage == newMessage {
		return ""
	}

	dmp := diffmatchpatch.New()
	oldChars, newChars, lineArray := dmp.DiffLinesToChars(oldMessage, newMessage)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(oldChars, newChars, false), lineArray)

	var sb strings.Builder
	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		}
		for _, line := range strings.Split(strings.TrimRight(d.Text, "\n"), "\n") {
			sb.WriteString(prefix)
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
