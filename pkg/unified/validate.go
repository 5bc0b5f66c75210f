package unified

import (
	"github.com/cockroachdb/errors"
)

// Validate reports why an email cannot be used, or nil.
func (e EmailItem) Validate() error {
	if e.ID == "" {
		return errors.New("email has no id")
	}
	if e.Date.IsZero() {
		return errors.Newf("email %s has no date", e.ID)
	}
	return nil
}

// Validate reports why a ticket cannot be used, or nil.
func (t TicketItem) Validate() error {
	if t.ID == "" {
		return errors.New("ticket has no id")
	}
	if !t.Status.Valid() {
		return errors.Newf("ticket %s has unknown status %q", t.ID, t.Status)
	}
	if !t.Priority.Valid() {
		return errors.Newf("ticket %s has unknown priority %q", t.ID, t.Priority)
	}
	return nil
}

// Validate reports why an incident cannot be used, or nil.
func (i IncidentItem) Validate() error {
	if i.ID == "" {
		return errors.New("incident has no id")
	}
	if !i.Severity.Valid() {
		return errors.Newf("incident %s has unknown severity %q", i.ID, i.Severity)
	}
	if i.StartedAt.IsZero() {
		return errors.Newf("incident %s has no start time", i.ID)
	}
	if i.EndedAt != nil && i.EndedAt.Before(i.StartedAt) {
		return errors.Newf("incident %s ends before it starts", i.ID)
	}
	return nil
}

// Validate reports why a calendar event cannot be used, or nil.
func (c CalendarEventItem) Validate() error {
	if c.ID == "" {
		return errors.New("calendar event has no id")
	}
	if c.End.Before(c.Start) {
		return errors.Newf("calendar event %s ends before it starts", c.ID)
	}
	return nil
}
