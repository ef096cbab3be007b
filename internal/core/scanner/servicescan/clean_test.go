package servicescan

import (
	"strings"
	"testing"
)

func TestCleanResponse_TrimsWhitespace(t *testing.T) {
	got := CleanResponse("  hello world  \n")
	want := "hello world"
	if got != want {
		t.Errorf("CleanResponse() = %q, want %q", got, want)
	}
}

func TestCleanResponse_KeepsNewlinesTabsAndCarriageReturns(t *testing.T) {
	got := CleanResponse("line one\nline two\tend\r")
	if !strings.Contains(got, "\n") || !strings.Contains(got, "\t") {
		t.Errorf("CleanResponse() = %q, want \\n and \\t preserved", got)
	}
}

func TestCleanResponse_EscapesNonPrintableBytes(t *testing.T) {
	got := CleanResponse(string([]byte{0x01, 0x02, 'a'}))
	want := `\x01\x02a`
	if got != want {
		t.Errorf("CleanResponse() = %q, want %q", got, want)
	}
}

func TestCleanResponse_TruncatesLongResponses(t *testing.T) {
	long := strings.Repeat("a", 1000)
	got := CleanResponse(long)

	if len(got) != maxResponseLen {
		t.Fatalf("CleanResponse() length = %d, want %d", len(got), maxResponseLen)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("CleanResponse() = %q, want a \"...\" suffix when truncated", got)
	}
}

func TestCleanResponse_IsIdempotent(t *testing.T) {
	once := CleanResponse("  raw\x01input  ")
	twice := CleanResponse(once)
	if once != twice {
		t.Errorf("CleanResponse is not idempotent: once=%q twice=%q", once, twice)
	}
}

func TestCleanResponse_ShortCleanInputUnchanged(t *testing.T) {
	got := CleanResponse("already clean")
	if got != "already clean" {
		t.Errorf("CleanResponse() = %q, want unchanged input", got)
	}
}
