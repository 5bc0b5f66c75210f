// Package insights derives aggregate signals from a batch of communication
// records: email volume trend, key topics, prioritized immediate actions and
// an optional sentiment summary.
package insights

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// Trend is the direction of email volume across the batch window.
type Trend string

// Volume trends.
const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
	TrendFlat Trend = "flat"
)

// ActionPriority orders immediate actions; higher is more urgent.
type ActionPriority int

// Action priorities.
const (
	PriorityLow ActionPriority = iota + 1
	PriorityMedium
	PriorityHigh
	PriorityCritical
)

var priorityNames = map[ActionPriority]string{
	PriorityLow:      "low",
	PriorityMedium:   "medium",
	PriorityHigh:     "high",
	PriorityCritical: "critical",
}

// String returns the priority name.
func (p ActionPriority) String() string {
	if name, ok := priorityNames[p]; ok {
		return name
	}
	return "unknown"
}

// MarshalText encodes the priority as its name.
func (p ActionPriority) MarshalText() ([]byte, error) {
	if _, ok := priorityNames[p]; !ok {
		return nil, errors.Newf("invalid action priority %d", int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText decodes a priority name.
func (p *ActionPriority) UnmarshalText(text []byte) error {
	name := strings.ToLower(string(text))
	for v, n := range priorityNames {
		if n == name {
			*p = v
			return nil
		}
	}
	return errors.Newf("unknown action priority %q", text)
}

// Source kinds for actions.
const (
	SourceEmail    = "email"
	SourceTicket   = "ticket"
	SourceIncident = "incident"
)

// Action is a detected item that needs attention.
type Action struct {
	Description string         `json:"description" yaml:"description" toml:"description"`
	Priority    ActionPriority `json:"priority" yaml:"priority" toml:"priority"`
	SourceID    string         `json:"sourceId" yaml:"sourceId" toml:"sourceId"`
	SourceKind  string         `json:"sourceKind" yaml:"sourceKind" toml:"sourceKind"`
	Timestamp   time.Time      `json:"timestamp" yaml:"timestamp" toml:"timestamp"`
}

// SentimentSummary aggregates per-email sentiment results.
type SentimentSummary struct {
	Positive      int     `json:"positive" yaml:"positive" toml:"positive"`
	Neutral       int     `json:"neutral" yaml:"neutral" toml:"neutral"`
	Negative      int     `json:"negative" yaml:"negative" toml:"negative"`
	AverageScore  float64 `json:"averageScore" yaml:"averageScore" toml:"averageScore"`
	AICount       int     `json:"aiCount" yaml:"aiCount" toml:"aiCount"`
	FallbackCount int     `json:"fallbackCount" yaml:"fallbackCount" toml:"fallbackCount"`
	Failed        int     `json:"failed" yaml:"failed" toml:"failed"`
	Degraded      bool    `json:"degraded" yaml:"degraded" toml:"degraded"`
}

// Analyzed returns how many emails produced a sentiment result.
func (s *SentimentSummary) Analyzed() int {
	return s.Positive + s.Neutral + s.Negative
}

// CommunicationInsights is the derived view of one batch.
type CommunicationInsights struct {
	TotalEmails      int               `json:"totalEmails" yaml:"totalEmails" toml:"totalEmails"`
	VolumeTrend      Trend             `json:"volumeTrend" yaml:"volumeTrend" toml:"volumeTrend"`
	KeyTopics        []string          `json:"keyTopics" yaml:"keyTopics" toml:"keyTopics"`
	ImmediateActions []Action          `json:"immediateActions" yaml:"immediateActions" toml:"immediateActions"`
	Sentiment        *SentimentSummary `json:"sentiment,omitempty" yaml:"sentiment,omitempty" toml:"sentiment,omitempty"`
	Skipped          int               `json:"skipped" yaml:"skipped" toml:"skipped"`
}
