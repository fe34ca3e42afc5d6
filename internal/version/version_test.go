package version

import (
	"strings"
	"testing"
)

func TestString_Ldflags(t *testing.T) {
	oldCommit, oldBuild := Commit, BuildTime
	defer func() { Commit, BuildTime = oldCommit, oldBuild }()

	Commit = "0123456789abcdef"
	BuildTime = "2026-01-01T00:00:00Z"

	want := "tilegrab dev (commit: 0123456, built: 2026-01-01T00:00:00Z)"
	if got := String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestString_Fallback(t *testing.T) {
	oldCommit, oldBuild := Commit, BuildTime
	defer func() { Commit, BuildTime = oldCommit, oldBuild }()

	Commit, BuildTime = "", ""
	got := String()
	if !strings.HasPrefix(got, "tilegrab dev (commit: ") || strings.Contains(got, "commit: ,") {
		t.Errorf("String() = %q, want a filled-in fallback", got)
	}
}
