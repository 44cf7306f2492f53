package document

import (
	"testing"
	"time"
)

func TestNewWikiPage_Valid(t *testing.T) {
	ts := time.Date(2011, 4, 20, 12, 34, 0, 0, time.UTC)
	doc, err := NewWikiPage(WikiPage{
		Name: "TracHelp", Version: 3, Time: ts, Author: "admin", Text: "help text", Comment: "typo",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.ID() != "wiki_TracHelp" {
		t.Errorf("ID() = %q", doc.ID())
	}
	if doc.Source() != SourceWiki {
		t.Errorf("Source() = %q", doc.Source())
	}
	if doc.Ticket() != nil {
		t.Error("wiki document must not carry ticket fields")
	}

	f := doc.Fields()
	if f[FieldVersion] != 3 {
		t.Errorf("version = %v", f[FieldVersion])
	}
	if f[FieldTime] != ts {
		t.Errorf("time = %v", f[FieldTime])
	}
	if _, ok := f[FieldTicketID]; ok {
		t.Error("ticket_id must be absent for wiki pages")
	}
}

func TestNewWikiPage_EmptyName(t *testing.T) {
	if _, err := NewWikiPage(WikiPage{Name: "  "}); err == nil {
		t.Fatal("expected error for empty name")
	}
}

func TestNewTicket_Valid(t *testing.T) {
	doc, err := NewTicket(Ticket{
		ID:          42,
		Summary:     "Crash on save",
		Description: "Steps to reproduce",
		Reporter:    "joe",
		Comments:    []string{"confirmed", "fixed in r100"},
		Status:      "closed",
		Component:   "editor",
		Priority:    "major",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.ID() != "ticket_42" {
		t.Errorf("ID() = %q", doc.ID())
	}
	if doc.Author() != "joe" {
		t.Errorf("Author() = %q", doc.Author())
	}
	if doc.Name() != "Crash on save" {
		t.Errorf("Name() = %q", doc.Name())
	}
	if doc.Text() != "Steps to reproduce confirmed fixed in r100" {
		t.Errorf("Text() = %q", doc.Text())
	}

	ti := doc.Ticket()
	if ti == nil || ti.ID != 42 || ti.Status != "closed" {
		t.Fatalf("Ticket() = %+v", ti)
	}
	ti.Status = "mutated"
	if doc.Ticket().Status != "closed" {
		t.Error("Ticket() must return a copy")
	}

	f := doc.Fields()
	if f[FieldTicketID] != 42 {
		t.Errorf("ticket_id = %v", f[FieldTicketID])
	}
	if f[FieldComponent] != "editor" {
		t.Errorf("component = %v", f[FieldComponent])
	}
	if _, ok := f[FieldMilestone]; ok {
		t.Error("empty milestone must be omitted")
	}
	if _, ok := f[FieldTime]; ok {
		t.Error("zero time must be omitted")
	}
}

func TestNewTicket_InvalidID(t *testing.T) {
	if _, err := NewTicket(Ticket{ID: 0}); err == nil {
		t.Fatal("expected error for zero ticket id")
	}
}

func TestIDFor(t *testing.T) {
	if got := IDFor(SourceTicket, TicketKey(7)); got != "ticket_7" {
		t.Errorf("IDFor = %q", got)
	}
	if got := IDFor(SourceWiki, "WikiStart"); got != "wiki_WikiStart" {
		t.Errorf("IDFor = %q", got)
	}
}

func TestWikiPath(t *testing.T) {
	tests := []struct {
		name, want string
	}{
		{"WikiStart", "/wiki/WikiStart"},
		{"Dev/Setup", "/wiki/Dev/Setup"},
		{"Release Notes/1.0?", "/wiki/Release%20Notes/1.0%3F"},
	}
	for _, tc := range tests {
		if got := WikiPath(tc.name); got != tc.want {
			t.Errorf("WikiPath(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
	if got := TicketPath(42); got != "/ticket/42" {
		t.Errorf("TicketPath = %q", got)
	}
}
