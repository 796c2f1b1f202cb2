package internal

import (
	"strings"
	"testing"
)

func TestMessageDiffEqual(t *testing.T) {
	if diff := MessageDiff("same\n", "same\n"); diff != "" {
		t.Errorf("expected empty diff, got %q", diff)
	}
}

func TestMessageDiffAddedTrailer(t *testing.T) {
	old := "fix parser\n\nbody\n"
	updated := AppendTrailer(old, testKey, testValue)

	diff := MessageDiff(old, updated)

	if !strings.Contains(diff, "+"+testKey+": "+testValue) {
		t.Errorf("diff missing added trailer: %q", diff)
	}
	if !strings.Contains(diff, " fix parser") {
		t.Errorf("diff missing context line: %q", diff)
	}
	if strings.Contains(diff, "-fix parser") {
		t.Errorf("unchanged line marked removed: %q", diff)
	}
}
