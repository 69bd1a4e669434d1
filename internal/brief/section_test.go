package brief

import (
	"reflect"
	"strings"
	"testing"
)

func TestIsHeading(t *testing.T) {
	if !IsHeading("Introduction:") {
		t.Error("Introduction: should be a heading")
	}
	if !IsHeading("  Goals:  ") {
		t.Error("surrounding whitespace should be ignored")
	}
	for _, line := range []string{
		"Introduction",
		"INTRODUCTION:",
		"Budget Breakdown:",
		"introduction:",
		"Goals: ship it",
		"Q3:",
		"",
	} {
		if IsHeading(line) {
			t.Errorf("%q should not be a heading", line)
		}
	}
}

func TestParse_OrderPreserved(t *testing.T) {
	got := Parse("Introduction:\nHello\n\nGoals:\nWorld\n", ModeTrimmed)
	want := []Section{
		{Title: "Introduction:", Content: "Hello"},
		{Title: "Goals:", Content: "World"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("sections = %#v, want %#v", got, want)
	}
}

func TestParse_DanglingContentDropped(t *testing.T) {
	got := Parse("stray text\nGoals:\nhi", ModeTrimmed)
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0] != (Section{Title: "Goals:", Content: "hi"}) {
		t.Errorf("section = %#v", got[0])
	}
	for _, s := range got {
		if strings.Contains(s.Title+s.Content, "stray") {
			t.Error("leading text leaked into output")
		}
	}
}

func TestParse_EmptyAndHeadless(t *testing.T) {
	if got := Parse("", ModeTrimmed); got == nil || len(got) != 0 {
		t.Errorf("empty input = %#v, want empty slice", got)
	}
	if got := Parse("just some words\nand more\n", ModeRaw); len(got) != 0 {
		t.Errorf("headless input = %#v, want empty", got)
	}
}

func TestParse_ConsecutiveHeadings(t *testing.T) {
	got := Parse("Introduction:\nGoals:\nship\n", ModeTrimmed)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Title != "Introduction:" || got[0].Content != "" {
		t.Errorf("first = %#v, want empty Introduction", got[0])
	}
}

func TestParse_RawKeepsLineBreaks(t *testing.T) {
	got := Parse("Goals:\n  one\n\n\ntwo\nBudget:\nlow", ModeRaw)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Content != "  one\n\n\ntwo\n" {
		t.Errorf("raw content = %q", got[0].Content)
	}
	if got[1].Content != "low\n" {
		t.Errorf("raw last content = %q", got[1].Content)
	}
}

func TestParse_TrimmedCollapsesBlankLines(t *testing.T) {
	got := Parse("Goals:\n\n  one  \n\n\n\ntwo\n\n", ModeTrimmed)
	if got[0].Content != "one\n\ntwo" {
		t.Errorf("trimmed content = %q", got[0].Content)
	}
}

func TestParse_CRLF(t *testing.T) {
	got := Parse("Goals:\r\nhi\r\nBudget:\r\n$5\r\n", ModeTrimmed)
	if len(got) != 2 || got[0].Content != "hi" || got[1].Content != "$5" {
		t.Errorf("crlf sections = %#v", got)
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode(""); err != nil || m != ModeTrimmed {
		t.Errorf("empty mode = %q, %v", m, err)
	}
	if m, err := ParseMode("RAW"); err != nil || m != ModeRaw {
		t.Errorf("RAW = %q, %v", m, err)
	}
	if _, err := ParseMode("fancy"); err == nil {
		t.Error("unknown mode should fail")
	}
}
