package backend

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSummarize_NoQuery(t *testing.T) {
	text := strings.Repeat("a", 800)
	got := Summarize(text, "")
	if len(got) != MaxSummaryLen {
		t.Errorf("len = %d, want %d", len(got), MaxSummaryLen)
	}
	if Summarize("short", "  ") != "short" {
		t.Error("short text must be returned unchanged")
	}
}

func TestSummarize_EmptyText(t *testing.T) {
	if got := Summarize("", "trac"); got != "" {
		t.Errorf("got %q", got)
	}
}

func TestSummarize_CentersOnFirstTerm(t *testing.T) {
	text := strings.Repeat("x", 300) + ". the Needle is here " + strings.Repeat("y", 800)

	got := Summarize(text, "needle")

	if !strings.HasPrefix(got, "... ") {
		t.Errorf("expected leading ellipsis, got %q", got[:10])
	}
	if !strings.HasSuffix(got, " ...") {
		t.Error("expected trailing ellipsis")
	}
	if !strings.Contains(got, "Needle") {
		t.Error("excerpt must contain the matched term")
	}
	if n := utf8.RuneCountInString(got); n > MaxSummaryLen {
		t.Errorf("summary has %d runes, max %d", n, MaxSummaryLen)
	}
	if !strings.HasPrefix(got, "...  the Needle") {
		t.Errorf("expected excerpt to start after the sentence boundary, got %q", got[:20])
	}
}

func TestSummarize_EarlyHitKeepsStart(t *testing.T) {
	text := "Needle at the start " + strings.Repeat("z", 600)
	got := Summarize(text, "missing needle")
	if !strings.HasPrefix(got, "Needle") {
		t.Errorf("got %q", got[:10])
	}
	if utf8.RuneCountInString(got) > MaxSummaryLen {
		t.Error("summary too long")
	}
}

func TestSummarize_Multibyte(t *testing.T) {
	text := strings.Repeat("ж", 700)
	got := Summarize(text, "ж")
	if !utf8.ValidString(got) {
		t.Fatal("summary must be valid UTF-8")
	}
	if utf8.RuneCountInString(got) > MaxSummaryLen {
		t.Error("summary too long")
	}
}
