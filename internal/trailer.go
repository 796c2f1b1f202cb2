package internal

import (
	"fmt"
	"regexp"
	"strings"
)

var trailerLinePattern = regexp.MustCompile(`^[A-Za-z0-9-]+: .+$`)

var trailerKeyPattern = regexp.MustCompile(`^[A-Za-z0-9-]+$`)

// ValidateTrailer rejects key/value pairs that cannot form a single trailer
// line. A newline in either part would corrupt the trailer block, and a key
// that does not parse as a trailer token would never be detected on a re-run.
func ValidateTrailer(key, value string) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", ErrMalformedTrailer)
	}
	if value == "" {
		return fmt.Errorf("%w: empty value", ErrMalformedTrailer)
	}
	if strings.ContainsAny(key, "\r\n") || strings.ContainsAny(value, "\r\n") {
		return fmt.Errorf("%w: key and value must be single-line", ErrMalformedTrailer)
	}
	if !trailerKeyPattern.MatchString(key) {
		return fmt.Errorf("%w: key %q is not a valid trailer token", ErrMalformedTrailer, key)
	}
	return nil
}

// AppendTrailer returns message with "key: value" appended to its trailer
// block. The transform is idempotent: if the exact trailer line is already in
// the block, the message is returned unchanged. Body text is never touched,
// existing trailers are never reordered. A trailer-shaped first line that is
// the whole message (such as "fix: typo") stays the subject: the new trailer
// goes into a fresh blank-line-separated block below it.
func AppendTrailer(message, key, value string) string {
	line := key + ": " + value

	lines, hasBlock, blockStart := splitTrailerBlock(message)
	if len(lines) == 0 {
		return line + "\n"
	}

	if hasBlock {
		for _, l := range lines[blockStart:] {
			if l == line {
				return message
			}
		}
	}

	if hasBlock && blockStart > 0 {
		lines = append(lines, line)
	} else {
		lines = append(lines, "", line)
	}
	return strings.Join(lines, "\n") + "\n"
}

// HasTrailer reports whether the exact trailer line is present in the
// message's trailer block. Occurrences of "key: value" in body text do not
// count.
func HasTrailer(message, key, value string) bool {
	line := key + ": " + value

	lines, hasBlock, blockStart := splitTrailerBlock(message)
	if !hasBlock {
		return false
	}
	for _, l := range lines[blockStart:] {
		if l == line {
			return true
		}
	}
	return false
}

// Trailers returns the lines of the trailing trailer block, or nil when the
// message has none.
func Trailers(message string) []string {
	lines, hasBlock, blockStart := splitTrailerBlock(message)
	if !hasBlock {
		return nil
	}
	block := make([]string, len(lines)-blockStart)
	copy(block, lines[blockStart:])
	return block
}

// splitTrailerBlock splits the message into lines (without the trailing
// newline) and locates the trailing trailer block: the maximal suffix of
// "Key: value" lines that is either preceded by a blank line or spans the
// whole message. The whole-message case exists for detection: a message that
// consists solely of trailers (such as one grown from an empty message) must
// still report its lines so a re-run leaves it alone. Appending treats such a
// block as unseparated and starts a new one below a blank line.
func splitTrailerBlock(message string) (lines []string, hasBlock bool, blockStart int) {
	trimmed := strings.TrimRight(message, "\n")
	if trimmed == "" {
		return nil, false, 0
	}

	lines = strings.Split(trimmed, "\n")

	start := len(lines)
	for start > 0 && trailerLinePattern.MatchString(lines[start-1]) {
		start--
	}
	if start == len(lines) {
		return lines, false, 0
	}
	if start == 0 {
		return lines, true, 0
	}
	if lines[start-1] == "" {
		return lines, true, start
	}
	return lines, false, 0
}
