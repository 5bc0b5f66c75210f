package insights

import (
	"sort"
	"strings"

	"github.com/ask-andrew/360brief-sub007/pkg/unified"
)

// urgencyKeywords maps email phrases to the action priority they signal.
// Matching is case-insensitive against subject and body and only counts
// whole words, so "noncritical" never matches "critical".
var urgencyKeywords = []struct {
	phrase   string
	priority ActionPriority
}{
	{"emergency", PriorityCritical},
	{"outage", PriorityCritical},
	{"critical", PriorityCritical},
	{"urgent", PriorityHigh},
	{"asap", PriorityHigh},
	{"immediately", PriorityHigh},
	{"action required", PriorityMedium},
	{"deadline", PriorityMedium},
	{"due", PriorityMedium},
	{"please review", PriorityMedium},
	{"follow up", PriorityMedium},
	{"by eod", PriorityMedium},
}

var ticketPriorities = map[unified.TicketPriority]ActionPriority{
	unified.PriorityP0: PriorityCritical,
	unified.PriorityP1: PriorityHigh,
	unified.PriorityP2: PriorityMedium,
	unified.PriorityP3: PriorityLow,
}

var incidentPriorities = map[unified.Severity]ActionPriority{
	unified.SeveritySev1: PriorityCritical,
	unified.SeveritySev2: PriorityHigh,
	unified.SeveritySev3: PriorityMedium,
	unified.SeverityInfo: PriorityLow,
}

// emailAction returns the strongest urgency signal in an email, if any.
func emailAction(e unified.EmailItem) (Action, bool) {
	text := wordText(e.Subject + "\n" + e.Body)

	var best ActionPriority
	for _, kw := range urgencyKeywords {
		if kw.priority > best && strings.Contains(text, " "+kw.phrase+" ") {
			best = kw.priority
		}
	}
	if best == 0 {
		return Action{}, false
	}

	desc := strings.TrimSpace(e.Subject)
	if desc == "" {
		desc = "Email from " + e.From
	}

	return Action{
		Description: "Respond: " + desc,
		Priority:    best,
		SourceID:    e.ID,
		SourceKind:  SourceEmail,
		Timestamp:   e.Date,
	}, true
}

// wordText lowercases s and rejoins its words with single spaces, padded at
// both ends, so a phrase surrounded by spaces only matches whole words.
func wordText(s string) string {
	words := tokenPattern.FindAllString(strings.ToLower(s), -1)
	return " " + strings.Join(words, " ") + " "
}

// ticketAction flags open tickets that are high priority, have a due date
// or are blocked.
func ticketAction(t unified.TicketItem) (Action, bool) {
	if t.Status == unified.StatusClosed {
		return Action{}, false
	}

	urgent := t.Priority == unified.PriorityP0 || t.Priority == unified.PriorityP1
	if !urgent && t.DueDate == nil && t.Status != unified.StatusBlocked {
		return Action{}, false
	}

	verb := "Resolve"
	if t.Status == unified.StatusBlocked {
		verb = "Unblock"
	}
	desc := verb + " " + strings.ToUpper(string(t.Priority)) + " ticket: " + t.Title
	if t.DueDate != nil {
		desc += " (due " + t.DueDate.Format("2006-01-02") + ")"
	}

	a := Action{
		Description: desc,
		Priority:    ticketPriorities[t.Priority],
		SourceID:    t.ID,
		SourceKind:  SourceTicket,
	}
	switch {
	case t.UpdatedAt != nil:
		a.Timestamp = *t.UpdatedAt
	case t.DueDate != nil:
		a.Timestamp = *t.DueDate
	}
	return a, true
}

// incidentAction flags severe or ongoing incidents.
func incidentAction(i unified.IncidentItem) (Action, bool) {
	severe := i.Severity == unified.SeveritySev1 || i.Severity == unified.SeveritySev2
	if !severe && !i.Ongoing() {
		return Action{}, false
	}

	state := "Review"
	if i.Ongoing() {
		state = "Mitigate ongoing"
	}

	return Action{
		Description: state + " " + strings.ToUpper(string(i.Severity)) + " incident: " + i.Title,
		Priority:    incidentPriorities[i.Severity],
		SourceID:    i.ID,
		SourceKind:  SourceIncident,
		Timestamp:   i.StartedAt,
	}, true
}

// sortActions orders by priority, then most recent source first. Ties keep
// input order.
func sortActions(actions []Action) {
	sort.SliceStable(actions, func(i, j int) bool {
		if actions[i].Priority != actions[j].Priority {
			return actions[i].Priority > actions[j].Priority
		}
		return actions[i].Timestamp.After(actions[j].Timestamp)
	})
}
