// Package brief synthesizes style-specific briefs from a batch of unified
// communication records.
//
// A Synthesizer runs the insights extractor once per call and hands the
// result to the presenter for the requested style. An optional tone pass
// rewrites narrative fields only; counts, priorities and identifiers are
// never touched.
package brief

import (
	"time"

	"github.com/ask-andrew/360brief-sub007/pkg/insights"
	"github.com/ask-andrew/360brief-sub007/pkg/unified"
)

// BriefingData is the synthesis result. Exactly one payload, the one named
// by Style, is set.
type BriefingData struct {
	ID          string    `json:"id" yaml:"id" toml:"id"`
	Style       Style     `json:"style" yaml:"style" toml:"style"`
	GeneratedAt time.Time `json:"generatedAt" yaml:"generatedAt" toml:"generatedAt"`

	// Degraded is set when any sentiment result came from the fallback
	// strategy or failed outright.
	Degraded bool `json:"degraded" yaml:"degraded" toml:"degraded"`

	MissionBrief         *MissionBrief         `json:"missionBrief,omitempty" yaml:"missionBrief,omitempty" toml:"missionBrief,omitempty"`
	StartupVelocity      *StartupVelocity      `json:"startupVelocity,omitempty" yaml:"startupVelocity,omitempty" toml:"startupVelocity,omitempty"`
	ManagementConsulting *ManagementConsulting `json:"managementConsulting,omitempty" yaml:"managementConsulting,omitempty" toml:"managementConsulting,omitempty"`
	Newsletter           *Newsletter           `json:"newsletter,omitempty" yaml:"newsletter,omitempty" toml:"newsletter,omitempty"`

	Polish *Polish `json:"polish,omitempty" yaml:"polish,omitempty" toml:"polish,omitempty"`
}

// Insights returns the communication insights carried by the payload, or
// nil if no payload is set.
func (b *BriefingData) Insights() *insights.CommunicationInsights {
	switch {
	case b.MissionBrief != nil:
		return &b.MissionBrief.CommunicationInsights
	case b.StartupVelocity != nil:
		return &b.StartupVelocity.Signals
	case b.ManagementConsulting != nil:
		return &b.ManagementConsulting.Analysis
	case b.Newsletter != nil:
		return &b.Newsletter.ByTheNumbers
	default:
		return nil
	}
}

// narratives returns pointers to every prose field of the payload.
func (b *BriefingData) narratives() []*string {
	switch {
	case b.MissionBrief != nil:
		return b.MissionBrief.narratives()
	case b.StartupVelocity != nil:
		return b.StartupVelocity.narratives()
	case b.ManagementConsulting != nil:
		return b.ManagementConsulting.narratives()
	case b.Newsletter != nil:
		return b.Newsletter.narratives()
	default:
		return nil
	}
}

// Polish records the tone pass applied to narrative fields.
type Polish struct {
	Tone    string `json:"tone" yaml:"tone" toml:"tone"`
	Applied bool   `json:"applied" yaml:"applied" toml:"applied"`
	Fields  int    `json:"fields" yaml:"fields" toml:"fields"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty" toml:"error,omitempty"`
}

// Threat is an incident worth the reader's attention.
type Threat struct {
	IncidentID    string           `json:"incidentId" yaml:"incidentId" toml:"incidentId"`
	Title         string           `json:"title" yaml:"title" toml:"title"`
	Severity      unified.Severity `json:"severity" yaml:"severity" toml:"severity"`
	Ongoing       bool             `json:"ongoing" yaml:"ongoing" toml:"ongoing"`
	AffectedUsers int              `json:"affectedUsers,omitempty" yaml:"affectedUsers,omitempty" toml:"affectedUsers,omitempty"`
	ARRAtRisk     float64          `json:"arrAtRisk,omitempty" yaml:"arrAtRisk,omitempty" toml:"arrAtRisk,omitempty"`
}

// Event is an upcoming calendar entry.
type Event struct {
	EventID   string    `json:"eventId" yaml:"eventId" toml:"eventId"`
	Title     string    `json:"title" yaml:"title" toml:"title"`
	Start     time.Time `json:"start" yaml:"start" toml:"start"`
	Attendees int       `json:"attendees" yaml:"attendees" toml:"attendees"`
}

// MissionBrief is a situation report.
type MissionBrief struct {
	Situation             string                         `json:"situation" yaml:"situation" toml:"situation"`
	CommunicationInsights insights.CommunicationInsights `json:"communicationInsights" yaml:"communicationInsights" toml:"communicationInsights"`
	ImmediateActions      []insights.Action              `json:"immediateActions" yaml:"immediateActions" toml:"immediateActions"`
	Threats               []Threat                       `json:"threats" yaml:"threats" toml:"threats"`
	Upcoming              []Event                        `json:"upcoming" yaml:"upcoming" toml:"upcoming"`
}

func (m *MissionBrief) narratives() []*string {
	return []*string{&m.Situation}
}

// StartupVelocity is a momentum view.
type StartupVelocity struct {
	Headline      string                         `json:"headline" yaml:"headline" toml:"headline"`
	Momentum      insights.Trend                 `json:"momentum" yaml:"momentum" toml:"momentum"`
	Shipped       int                            `json:"shipped" yaml:"shipped" toml:"shipped"`
	InFlight      int                            `json:"inFlight" yaml:"inFlight" toml:"inFlight"`
	Blocked       int                            `json:"blocked" yaml:"blocked" toml:"blocked"`
	TopPriorities []insights.Action              `json:"topPriorities" yaml:"topPriorities" toml:"topPriorities"`
	Topics        []string                       `json:"topics" yaml:"topics" toml:"topics"`
	Signals       insights.CommunicationInsights `json:"signals" yaml:"signals" toml:"signals"`
}

func (s *StartupVelocity) narratives() []*string {
	return []*string{&s.Headline}
}

// Recommendation is a consulting-style next step.
type Recommendation struct {
	Action    string                  `json:"action" yaml:"action" toml:"action"`
	Priority  insights.ActionPriority `json:"priority" yaml:"priority" toml:"priority"`
	SourceID  string                  `json:"sourceId" yaml:"sourceId" toml:"sourceId"`
	Rationale string                  `json:"rationale" yaml:"rationale" toml:"rationale"`
}

// Risk is one row of the risk matrix.
type Risk struct {
	Item       string `json:"item" yaml:"item" toml:"item"`
	SourceID   string `json:"sourceId" yaml:"sourceId" toml:"sourceId"`
	Likelihood Level  `json:"likelihood" yaml:"likelihood" toml:"likelihood"`
	Impact     Level  `json:"impact" yaml:"impact" toml:"impact"`
}

// Level is a coarse low/medium/high rating.
type Level string

// Levels.
const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// ManagementConsulting is an executive summary.
type ManagementConsulting struct {
	ExecutiveSummary string                         `json:"executiveSummary" yaml:"executiveSummary" toml:"executiveSummary"`
	KeyFindings      []string                       `json:"keyFindings" yaml:"keyFindings" toml:"keyFindings"`
	Recommendations  []Recommendation               `json:"recommendations" yaml:"recommendations" toml:"recommendations"`
	RiskMatrix       []Risk                         `json:"riskMatrix" yaml:"riskMatrix" toml:"riskMatrix"`
	Analysis         insights.CommunicationInsights `json:"analysis" yaml:"analysis" toml:"analysis"`
}

func (m *ManagementConsulting) narratives() []*string {
	out := []*string{&m.ExecutiveSummary}
	for i := range m.KeyFindings {
		out = append(out, &m.KeyFindings[i])
	}
	for i := range m.Recommendations {
		out = append(out, &m.Recommendations[i].Rationale)
	}
	return out
}

// Section is a themed newsletter section.
type Section struct {
	Title string   `json:"title" yaml:"title" toml:"title"`
	Items []string `json:"items" yaml:"items" toml:"items"`
}

// Newsletter is a newspaper-style digest.
type Newsletter struct {
	Headline     string                         `json:"headline" yaml:"headline" toml:"headline"`
	LeadStory    string                         `json:"leadStory" yaml:"leadStory" toml:"leadStory"`
	Sections     []Section                      `json:"sections" yaml:"sections" toml:"sections"`
	ByTheNumbers insights.CommunicationInsights `json:"byTheNumbers" yaml:"byTheNumbers" toml:"byTheNumbers"`
}

func (n *Newsletter) narratives() []*string {
	out := []*string{&n.Headline, &n.LeadStory}
	for i := range n.Sections {
		for j := range n.Sections[i].Items {
			out = append(out, &n.Sections[i].Items[j])
		}
	}
	return out
}
