// Package unified defines the normalized communication records the brief
// pipeline consumes.
//
// Records arrive already fetched and normalized by upstream collaborators.
// The core treats them as read-only values; nothing in this package performs
// I/O.
package unified

import (
	"time"
)

// Severity is an incident severity, ordered sev1 > sev2 > sev3 > info.
type Severity string

// Incident severities.
const (
	SeveritySev1 Severity = "sev1"
	SeveritySev2 Severity = "sev2"
	SeveritySev3 Severity = "sev3"
	SeverityInfo Severity = "info"
)

// Rank returns the urgency of the severity; higher is more urgent. Unknown
// severities rank 0.
func (s Severity) Rank() int {
	switch s {
	case SeveritySev1:
		return 4
	case SeveritySev2:
		return 3
	case SeveritySev3:
		return 2
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool { return s.Rank() > 0 }

// TicketStatus is the workflow state of a ticket.
type TicketStatus string

// Ticket statuses.
const (
	StatusOpen       TicketStatus = "open"
	StatusInProgress TicketStatus = "in_progress"
	StatusBlocked    TicketStatus = "blocked"
	StatusClosed     TicketStatus = "closed"
)

// Valid reports whether s is a known status.
func (s TicketStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusBlocked, StatusClosed:
		return true
	default:
		return false
	}
}

// TicketPriority is a ticket priority; p0 is the most urgent.
type TicketPriority string

// Ticket priorities.
const (
	PriorityP0 TicketPriority = "p0"
	PriorityP1 TicketPriority = "p1"
	PriorityP2 TicketPriority = "p2"
	PriorityP3 TicketPriority = "p3"
)

// Rank returns the urgency of the priority; higher is more urgent. Unknown
// priorities rank 0.
func (p TicketPriority) Rank() int {
	switch p {
	case PriorityP0:
		return 4
	case PriorityP1:
		return 3
	case PriorityP2:
		return 2
	case PriorityP3:
		return 1
	default:
		return 0
	}
}

// Valid reports whether p is a known priority.
func (p TicketPriority) Valid() bool { return p.Rank() > 0 }

// EmailItem is a single email message.
type EmailItem struct {
	ID      string    `json:"id" yaml:"id" toml:"id"`
	Subject string    `json:"subject" yaml:"subject" toml:"subject"`
	Body    string    `json:"body" yaml:"body" toml:"body"`
	From    string    `json:"from" yaml:"from" toml:"from"`
	To      []string  `json:"to" yaml:"to" toml:"to"`
	Date    time.Time `json:"date" yaml:"date" toml:"date"`
}

// IncidentItem is an operational incident.
type IncidentItem struct {
	ID            string     `json:"id" yaml:"id" toml:"id"`
	Title         string     `json:"title" yaml:"title" toml:"title"`
	Severity      Severity   `json:"severity" yaml:"severity" toml:"severity"`
	StartedAt     time.Time  `json:"startedAt" yaml:"startedAt" toml:"startedAt"`
	EndedAt       *time.Time `json:"endedAt,omitempty" yaml:"endedAt,omitempty" toml:"endedAt,omitempty"`
	AffectedUsers *int       `json:"affectedUsers,omitempty" yaml:"affectedUsers,omitempty" toml:"affectedUsers,omitempty"`
	ARRAtRisk     *float64   `json:"arrAtRisk,omitempty" yaml:"arrAtRisk,omitempty" toml:"arrAtRisk,omitempty"`
	Description   string     `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
}

// Ongoing reports whether the incident has not ended.
func (i IncidentItem) Ongoing() bool { return i.EndedAt == nil }

// CalendarEventItem is a scheduled meeting or event.
type CalendarEventItem struct {
	ID          string    `json:"id" yaml:"id" toml:"id"`
	Title       string    `json:"title" yaml:"title" toml:"title"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	Start       time.Time `json:"start" yaml:"start" toml:"start"`
	End         time.Time `json:"end" yaml:"end" toml:"end"`
	Attendees   []string  `json:"attendees,omitempty" yaml:"attendees,omitempty" toml:"attendees,omitempty"`
	Location    string    `json:"location,omitempty" yaml:"location,omitempty" toml:"location,omitempty"`
}

// TicketItem is a work-tracking ticket.
type TicketItem struct {
	ID          string         `json:"id" yaml:"id" toml:"id"`
	Title       string         `json:"title" yaml:"title" toml:"title"`
	Status      TicketStatus   `json:"status" yaml:"status" toml:"status"`
	Priority    TicketPriority `json:"priority" yaml:"priority" toml:"priority"`
	DueDate     *time.Time     `json:"dueDate,omitempty" yaml:"dueDate,omitempty" toml:"dueDate,omitempty"`
	Owner       string         `json:"owner,omitempty" yaml:"owner,omitempty" toml:"owner,omitempty"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	UpdatedAt   *time.Time     `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty" toml:"updatedAt,omitempty"`
}

// UnifiedData is the batch passed into synthesis. Sequences may be empty but
// are never nil once Normalize has run; an empty sequence means "no data of
// this kind".
type UnifiedData struct {
	Emails         []EmailItem         `json:"emails" yaml:"emails" toml:"emails"`
	Incidents      []IncidentItem      `json:"incidents" yaml:"incidents" toml:"incidents"`
	CalendarEvents []CalendarEventItem `json:"calendarEvents" yaml:"calendarEvents" toml:"calendarEvents"`
	Tickets        []TicketItem        `json:"tickets" yaml:"tickets" toml:"tickets"`
	GeneratedAt    *time.Time          `json:"generatedAt,omitempty" yaml:"generatedAt,omitempty" toml:"generatedAt,omitempty"`
}

// Empty returns a UnifiedData with every sequence present and empty.
func Empty() *UnifiedData {
	d := &UnifiedData{}
	d.Normalize()
	return d
}

// Normalize replaces nil sequences with empty ones.
func (d *UnifiedData) Normalize() {
	if d.Emails == nil {
		d.Emails = []EmailItem{}
	}
	if d.Incidents == nil {
		d.Incidents = []IncidentItem{}
	}
	if d.CalendarEvents == nil {
		d.CalendarEvents = []CalendarEventItem{}
	}
	if d.Tickets == nil {
		d.Tickets = []TicketItem{}
	}
}
