package brief

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ask-andrew/360brief-sub007/pkg/insights"
	"github.com/ask-andrew/360brief-sub007/pkg/unified"
)

// Presentation limits.
const (
	maxHighlights = 5 // actions, threats and events shown in lists
	maxPriorities = 3 // startup velocity top priorities
)

// projection is the shared input every presenter builds from.
type projection struct {
	now      time.Time
	insights *insights.CommunicationInsights

	upcoming []Event
	threats  []Threat

	openTickets    int
	blockedTickets int
	inProgress     int
	closedTickets  int

	ongoingIncidents int
	affectedUsers    int
	arrAtRisk        float64
}

// presenter turns the projection into one style's payload.
type presenter func(p *projection, out *BriefingData)

var presenters = map[Style]presenter{
	StyleMissionBrief:         presentMissionBrief,
	StyleStartupVelocity:      presentStartupVelocity,
	StyleManagementConsulting: presentManagementConsulting,
	StyleNewsletter:           presentNewsletter,
}

func newProjection(now time.Time, data *unified.UnifiedData, ci *insights.CommunicationInsights) *projection {
	p := &projection{now: now, insights: ci}

	for _, t := range data.Tickets {
		if t.Validate() != nil {
			continue
		}
		switch t.Status {
		case unified.StatusOpen:
			p.openTickets++
		case unified.StatusInProgress:
			p.inProgress++
		case unified.StatusBlocked:
			p.blockedTickets++
		case unified.StatusClosed:
			p.closedTickets++
		}
	}

	for _, inc := range data.Incidents {
		if inc.Validate() != nil {
			continue
		}
		ongoing := inc.Ongoing()
		if !ongoing && inc.Severity.Rank() < unified.SeveritySev2.Rank() {
			continue
		}
		t := Threat{IncidentID: inc.ID, Title: inc.Title, Severity: inc.Severity, Ongoing: ongoing}
		if inc.AffectedUsers != nil {
			t.AffectedUsers = *inc.AffectedUsers
		}
		if inc.ARRAtRisk != nil {
			t.ARRAtRisk = *inc.ARRAtRisk
		}
		if ongoing {
			p.ongoingIncidents++
			p.affectedUsers += t.AffectedUsers
			p.arrAtRisk += t.ARRAtRisk
		}
		p.threats = append(p.threats, t)
	}
	sort.SliceStable(p.threats, func(i, j int) bool {
		a, b := p.threats[i], p.threats[j]
		if a.Ongoing != b.Ongoing {
			return a.Ongoing
		}
		return a.Severity.Rank() > b.Severity.Rank()
	})

	for _, ev := range data.CalendarEvents {
		if ev.Validate() != nil || ev.Start.Before(now) {
			continue
		}
		p.upcoming = append(p.upcoming, Event{
			EventID:   ev.ID,
			Title:     ev.Title,
			Start:     ev.Start,
			Attendees: len(ev.Attendees),
		})
	}
	sort.SliceStable(p.upcoming, func(i, j int) bool {
		return p.upcoming[i].Start.Before(p.upcoming[j].Start)
	})

	if p.threats == nil {
		p.threats = []Threat{}
	}
	if p.upcoming == nil {
		p.upcoming = []Event{}
	}
	return p
}

func (p *projection) topActions(n int) []insights.Action {
	actions := p.insights.ImmediateActions
	if len(actions) > n {
		actions = actions[:n]
	}
	out := make([]insights.Action, len(actions))
	copy(out, actions)
	return out
}

func (p *projection) countActions(floor insights.ActionPriority) int {
	n := 0
	for _, a := range p.insights.ImmediateActions {
		if a.Priority >= floor {
			n++
		}
	}
	return n
}

func presentMissionBrief(p *projection, out *BriefingData) {
	threats := p.threats
	if len(threats) > maxHighlights {
		threats = threats[:maxHighlights]
	}
	upcoming := p.upcoming
	if len(upcoming) > maxHighlights {
		upcoming = upcoming[:maxHighlights]
	}

	out.MissionBrief = &MissionBrief{
		Situation:             p.situation(),
		CommunicationInsights: *p.insights,
		ImmediateActions:      p.topActions(maxHighlights),
		Threats:               threats,
		Upcoming:              upcoming,
	}
}

func (p *projection) situation() string {
	ci := p.insights
	var parts []string

	parts = append(parts, fmt.Sprintf("%s in the window, volume %s.", plural(ci.TotalEmails, "email"), trendWord(ci.VolumeTrend)))

	if urgent := p.countActions(insights.PriorityHigh); urgent > 0 {
		parts = append(parts, fmt.Sprintf("Urgent actions: %d.", urgent))
	} else {
		parts = append(parts, "No urgent actions.")
	}

	if p.ongoingIncidents > 0 {
		s := fmt.Sprintf("%s ongoing", plural(p.ongoingIncidents, "incident"))
		if p.arrAtRisk > 0 {
			s += fmt.Sprintf(" with %s ARR at risk", money(p.arrAtRisk))
		}
		parts = append(parts, s+".")
	}

	if len(ci.KeyTopics) > 0 {
		parts = append(parts, "Dominant topics: "+strings.Join(ci.KeyTopics, ", ")+".")
	}

	return strings.Join(parts, " ")
}

func presentStartupVelocity(p *projection, out *BriefingData) {
	ci := p.insights

	var headline string
	switch {
	case p.blockedTickets > 0 && p.blockedTickets >= p.closedTickets:
		headline = fmt.Sprintf("Velocity at risk: %d blocked against %d shipped.", p.blockedTickets, p.closedTickets)
	case p.closedTickets > 0:
		headline = fmt.Sprintf("Shipping: %s closed, %d in flight.", plural(p.closedTickets, "ticket"), p.inProgress+p.openTickets)
	default:
		headline = fmt.Sprintf("Inbox %s with %s to clear.", trendWord(ci.VolumeTrend), plural(len(ci.ImmediateActions), "action"))
	}

	out.StartupVelocity = &StartupVelocity{
		Headline:      headline,
		Momentum:      ci.VolumeTrend,
		Shipped:       p.closedTickets,
		InFlight:      p.inProgress + p.openTickets,
		Blocked:       p.blockedTickets,
		TopPriorities: p.topActions(maxPriorities),
		Topics:        append([]string{}, ci.KeyTopics...),
		Signals:       *ci,
	}
}

func presentManagementConsulting(p *projection, out *BriefingData) {
	ci := p.insights

	summary := fmt.Sprintf("Across %s, %s and %s: %s flagged for action, %d critical.",
		plural(ci.TotalEmails, "email"),
		plural(p.openTickets+p.inProgress+p.blockedTickets, "open ticket"),
		plural(len(p.threats), "notable incident"),
		plural(len(ci.ImmediateActions), "item"),
		p.countActions(insights.PriorityCritical))

	findings := []string{
		fmt.Sprintf("Communication volume is %s.", trendWord(ci.VolumeTrend)),
	}
	if len(ci.KeyTopics) > 0 {
		findings = append(findings, "Discussion concentrates on "+strings.Join(ci.KeyTopics, ", ")+".")
	}
	if p.blockedTickets > 0 {
		findings = append(findings, fmt.Sprintf("%s blocked, constraining delivery.", plural(p.blockedTickets, "ticket is", "tickets are")))
	}
	if p.arrAtRisk > 0 {
		findings = append(findings, fmt.Sprintf("Ongoing incidents put %s ARR at risk.", money(p.arrAtRisk)))
	}
	if s := ci.Sentiment; s != nil && s.Analyzed() > 0 {
		findings = append(findings, fmt.Sprintf("Sentiment is %s on average (%d positive, %d neutral, %d negative).",
			tone(s.AverageScore), s.Positive, s.Neutral, s.Negative))
	}

	recs := make([]Recommendation, 0, maxHighlights)
	for _, a := range p.topActions(maxHighlights) {
		recs = append(recs, Recommendation{
			Action:    a.Description,
			Priority:  a.Priority,
			SourceID:  a.SourceID,
			Rationale: rationale(a),
		})
	}

	risks := make([]Risk, 0, len(p.threats))
	for _, t := range p.threats {
		risks = append(risks, Risk{
			Item:       t.Title,
			SourceID:   t.IncidentID,
			Likelihood: likelihood(t),
			Impact:     impact(t),
		})
	}

	out.ManagementConsulting = &ManagementConsulting{
		ExecutiveSummary: summary,
		KeyFindings:      findings,
		Recommendations:  recs,
		RiskMatrix:       risks,
		Analysis:         *ci,
	}
}

func presentNewsletter(p *projection, out *BriefingData) {
	ci := p.insights

	headline := "A quiet stretch"
	lead := fmt.Sprintf("%s arrived and nothing demands immediate action.", plural(ci.TotalEmails, "email"))
	if len(ci.ImmediateActions) > 0 {
		top := ci.ImmediateActions[0]
		headline = strings.TrimSpace(strings.TrimPrefix(top.Description, "Respond: "))
		lead = fmt.Sprintf("Top of the agenda (%s priority): %s. %s in the queue overall.",
			top.Priority, top.Description, plural(len(ci.ImmediateActions), "action"))
	}

	var sections []Section
	if len(p.threats) > 0 {
		items := make([]string, 0, len(p.threats))
		for _, t := range p.threats {
			state := "resolved"
			if t.Ongoing {
				state = "ongoing"
			}
			items = append(items, fmt.Sprintf("%s (%s, %s)", t.Title, strings.ToUpper(string(t.Severity)), state))
		}
		sections = append(sections, Section{Title: "Incidents", Items: items})
	}
	if len(ci.KeyTopics) > 0 {
		items := make([]string, len(ci.KeyTopics))
		for i, topic := range ci.KeyTopics {
			items[i] = "Talk of the town: " + topic
		}
		sections = append(sections, Section{Title: "Trending Topics", Items: items})
	}
	if len(p.upcoming) > 0 {
		items := make([]string, 0, maxHighlights)
		for i, ev := range p.upcoming {
			if i == maxHighlights {
				break
			}
			items = append(items, fmt.Sprintf("%s on %s", ev.Title, ev.Start.Format("Mon Jan 2 15:04")))
		}
		sections = append(sections, Section{Title: "Coming Up", Items: items})
	}
	if sections == nil {
		sections = []Section{}
	}

	out.Newsletter = &Newsletter{
		Headline:     headline,
		LeadStory:    lead,
		Sections:     sections,
		ByTheNumbers: *ci,
	}
}

func rationale(a insights.Action) string {
	switch a.SourceKind {
	case insights.SourceIncident:
		return fmt.Sprintf("Incident %s is %s priority and affects customers.", a.SourceID, a.Priority)
	case insights.SourceTicket:
		return fmt.Sprintf("Ticket %s is %s priority for delivery.", a.SourceID, a.Priority)
	default:
		return fmt.Sprintf("Email %s carries %s urgency signals.", a.SourceID, a.Priority)
	}
}

func likelihood(t Threat) Level {
	if t.Ongoing {
		return LevelHigh
	}
	return LevelMedium
}

func impact(t Threat) Level {
	switch {
	case t.Severity == unified.SeveritySev1 || t.ARRAtRisk > 0:
		return LevelHigh
	case t.Severity == unified.SeveritySev2:
		return LevelMedium
	default:
		return LevelLow
	}
}

func trendWord(t insights.Trend) string {
	switch t {
	case insights.TrendUp:
		return "rising"
	case insights.TrendDown:
		return "falling"
	default:
		return "steady"
	}
}

func tone(score float64) string {
	switch {
	case score >= 0.05:
		return "positive"
	case score <= -0.05:
		return "negative"
	default:
		return "neutral"
	}
}

// plural formats n with a singular or plural noun. A second form overrides
// the default "s" suffix.
func plural(n int, singular string, pluralForm ...string) string {
	if n == 1 {
		return "1 " + singular
	}
	if len(pluralForm) > 0 {
		return fmt.Sprintf("%d %s", n, pluralForm[0])
	}
	return fmt.Sprintf("%d %ss", n, singular)
}

func money(v float64) string {
	switch {
	case v >= 1_000_000:
		return fmt.Sprintf("$%.1fM", v/1_000_000)
	case v >= 1_000:
		return fmt.Sprintf("$%.0fK", v/1_000)
	default:
		return fmt.Sprintf("$%.0f", v)
	}
}
