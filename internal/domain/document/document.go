package document

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Source identifies the kind of content a document was built from.
type Source string

// Known sources.
const (
	SourceWiki   Source = "wiki"
	SourceTicket Source = "ticket"
)

// Field names shared by every backend schema.
const (
	FieldID            = "id"
	FieldSource        = "source"
	FieldAuthor        = "author"
	FieldTime          = "time"
	FieldName          = "name"
	FieldText          = "text"
	FieldVersion       = "version"
	FieldComment       = "comment"
	FieldTicketID      = "ticket_id"
	FieldTicketVersion = "ticket_version"
	FieldType          = "type"
	FieldChangeTime    = "changetime"
	FieldComponent     = "component"
	FieldSeverity      = "severity"
	FieldPriority      = "priority"
	FieldOwner         = "owner"
	FieldMilestone     = "milestone"
	FieldStatus        = "status"
	FieldResolution    = "resolution"
	FieldKeywords      = "keywords"
)

// WikiPage is the payload of a wiki change event.
type WikiPage struct {
	Name    string    `json:"name"`
	Version int       `json:"version"`
	Time    time.Time `json:"time"`
	Author  string    `json:"author"`
	Text    string    `json:"text"`
	Comment string    `json:"comment"`
}

// Ticket is the payload of a ticket change event.
type Ticket struct {
	ID          int       `json:"id"`
	Summary     string    `json:"summary"`
	Description string    `json:"description"`
	Reporter    string    `json:"reporter"`
	Comments    []string  `json:"comments"`
	Version     string    `json:"version"`
	Type        string    `json:"type"`
	Time        time.Time `json:"time"`
	ChangeTime  time.Time `json:"changetime"`
	Component   string    `json:"component"`
	Severity    string    `json:"severity"`
	Priority    string    `json:"priority"`
	Owner       string    `json:"owner"`
	Milestone   string    `json:"milestone"`
	Status      string    `json:"status"`
	Resolution  string    `json:"resolution"`
	Keywords    string    `json:"keywords"`
}

// TicketInfo holds the ticket-only fields of a document.
type TicketInfo struct {
	ID         int
	Version    string
	Type       string
	ChangeTime time.Time
	Component  string
	Severity   string
	Priority   string
	Owner      string
	Milestone  string
	Status     string
	Resolution string
	Keywords   string
}

// Document is the normalized, indexable form of a wiki page or ticket (immutable value object).
type Document struct {
	id      string
	source  Source
	author  string
	time    time.Time
	name    string
	text    string
	version int
	comment string
	ticket  *TicketInfo
}

// IDFor builds the global document identifier "<source>_<key>".
func IDFor(source Source, key string) string {
	return string(source) + "_" + key
}

// TicketKey returns the identifier key of a ticket number.
func TicketKey(id int) string {
	return strconv.Itoa(id)
}

// WikiPath returns the site path of a wiki page. Each segment of a
// hierarchical name is escaped on its own.
func WikiPath(name string) string {
	parts := strings.Split(name, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return "/wiki/" + strings.Join(parts, "/")
}

// TicketPath returns the site path of a ticket.
func TicketPath(id int) string {
	return "/ticket/" + TicketKey(id)
}

// NewWikiPage builds a document from a wiki page.
func NewWikiPage(p WikiPage) (Document, error) {
	if strings.TrimSpace(p.Name) == "" {
		return Document{}, fmt.Errorf("wiki page name is required")
	}
	return Document{
		id:      IDFor(SourceWiki, p.Name),
		source:  SourceWiki,
		author:  p.Author,
		time:    p.Time,
		name:    p.Name,
		text:    p.Text,
		version: p.Version,
		comment: p.Comment,
	}, nil
}

// NewTicket builds a document from a ticket. The text is the description followed by all comments.
func NewTicket(t Ticket) (Document, error) {
	if t.ID <= 0 {
		return Document{}, fmt.Errorf("ticket id must be positive, got %d", t.ID)
	}
	text := t.Description + " " + strings.Join(t.Comments, " ")
	return Document{
		id:     IDFor(SourceTicket, TicketKey(t.ID)),
		source: SourceTicket,
		author: t.Reporter,
		time:   t.Time,
		name:   t.Summary,
		text:   text,
		ticket: &TicketInfo{
			ID:         t.ID,
			Version:    t.Version,
			Type:       t.Type,
			ChangeTime: t.ChangeTime,
			Component:  t.Component,
			Severity:   t.Severity,
			Priority:   t.Priority,
			Owner:      t.Owner,
			Milestone:  t.Milestone,
			Status:     t.Status,
			Resolution: t.Resolution,
			Keywords:   t.Keywords,
		},
	}, nil
}

// ID returns the global identifier.
func (d *Document) ID() string { return d.id }

// Source returns the content source.
func (d *Document) Source() Source { return d.source }

// Author returns the author (wiki) or reporter (ticket).
func (d *Document) Author() string { return d.author }

// Time returns the creation/modification time.
func (d *Document) Time() time.Time { return d.time }

// Name returns the page name or ticket summary.
func (d *Document) Name() string { return d.name }

// Text returns the body text.
func (d *Document) Text() string { return d.text }

// Version returns the wiki page version (0 for tickets).
func (d *Document) Version() int { return d.version }

// Comment returns the wiki change comment.
func (d *Document) Comment() string { return d.comment }

// Ticket returns a copy of the ticket fields, or nil for non-ticket documents.
func (d *Document) Ticket() *TicketInfo {
	if d.ticket == nil {
		return nil
	}
	t := *d.ticket
	return &t
}

// Fields returns the flat field map of the document. Empty strings and zero times are omitted.
// Times are returned as time.Time; backends format them for their wire protocol.
func (d *Document) Fields() map[string]any {
	m := map[string]any{
		FieldID:     d.id,
		FieldSource: string(d.source),
	}
	putString(m, FieldAuthor, d.author)
	putTime(m, FieldTime, d.time)
	putString(m, FieldName, d.name)
	putString(m, FieldText, d.text)
	putString(m, FieldComment, d.comment)
	if d.version > 0 {
		m[FieldVersion] = d.version
	}

	if t := d.ticket; t != nil {
		m[FieldTicketID] = t.ID
		putString(m, FieldTicketVersion, t.Version)
		putString(m, FieldType, t.Type)
		putTime(m, FieldChangeTime, t.ChangeTime)
		putString(m, FieldComponent, t.Component)
		putString(m, FieldSeverity, t.Severity)
		putString(m, FieldPriority, t.Priority)
		putString(m, FieldOwner, t.Owner)
		putString(m, FieldMilestone, t.Milestone)
		putString(m, FieldStatus, t.Status)
		putString(m, FieldResolution, t.Resolution)
		putString(m, FieldKeywords, t.Keywords)
	}
	return m
}

func putString(m map[string]any, key, v string) {
	if v != "" {
		m[key] = v
	}
}

func putTime(m map[string]any, key string, v time.Time) {
	if !v.IsZero() {
		m[key] = v
	}
}
