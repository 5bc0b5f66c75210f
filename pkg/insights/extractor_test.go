package insights

import (
	"context"
	"encoding/json"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	brieferrors "github.com/ask-andrew/360brief-sub007/pkg/errors"
	"github.com/ask-andrew/360brief-sub007/pkg/sentiment"
	"github.com/ask-andrew/360brief-sub007/pkg/unified"
)

var base = time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

func at(hours int) time.Time { return base.Add(time.Duration(hours) * time.Hour) }

func ptr[T any](v T) *T { return &v }

func email(id string, hours int, subject, body string) unified.EmailItem {
	return unified.EmailItem{ID: id, Date: at(hours), Subject: subject, Body: body, From: "a@example.com"}
}

func TestExtract_MeetingsAndProjects(t *testing.T) {
	data := &unified.UnifiedData{
		Emails: []unified.EmailItem{
			email("e1", 0, "Meetings this week", "Let's sync on meetings and projects."),
			email("e2", 2, "Projects update", "The projects are moving; meetings moved to Friday."),
		},
		Tickets: []unified.TicketItem{
			{ID: "t1", Title: "Checkout down", Status: unified.StatusOpen, Priority: unified.PriorityP0},
		},
	}

	got, err := NewExtractor(Options{}).ExtractFrom(t.Context(), data)
	require.NoError(t, err)

	assert.Equal(t, 2, got.TotalEmails)
	assert.Contains(t, got.KeyTopics, "meetings")
	assert.Contains(t, got.KeyTopics, "projects")
	require.NotEmpty(t, got.ImmediateActions)
	assert.Equal(t, PriorityCritical, got.ImmediateActions[0].Priority)
	assert.Equal(t, "t1", got.ImmediateActions[0].SourceID)
	assert.Nil(t, got.Sentiment)
}

func TestExtract_Empty(t *testing.T) {
	for name, emails := range map[string][]unified.EmailItem{"nil": nil, "empty": {}} {
		t.Run(name, func(t *testing.T) {
			got, err := NewExtractor(Options{}).Extract(t.Context(), emails)
			require.NoError(t, err)

			assert.Equal(t, 0, got.TotalEmails)
			assert.Equal(t, TrendFlat, got.VolumeTrend)
			assert.NotNil(t, got.KeyTopics)
			assert.Empty(t, got.KeyTopics)
			assert.NotNil(t, got.ImmediateActions)
			assert.Empty(t, got.ImmediateActions)

			out, err := json.Marshal(got)
			require.NoError(t, err)
			assert.Contains(t, string(out), `"keyTopics":[]`)
			assert.Contains(t, string(out), `"immediateActions":[]`)
		})
	}
}

func TestExtractFrom_NilData(t *testing.T) {
	_, err := NewExtractor(Options{}).ExtractFrom(t.Context(), nil)
	assert.True(t, brieferrors.IsInvalidInput(err))
}

func TestExtract_SkipsMalformed(t *testing.T) {
	data := &unified.UnifiedData{
		Emails: []unified.EmailItem{
			email("e1", 0, "Budget review", "budget numbers"),
			{ID: "", Date: at(1), Subject: "orphan budget budget budget"},
			{ID: "e3", Subject: "no date budget"},
		},
		Tickets: []unified.TicketItem{
			{ID: "t1", Title: "weird", Status: "done", Priority: unified.PriorityP0},
		},
		Incidents: []unified.IncidentItem{
			{ID: "i1", Title: "bad", Severity: "major", StartedAt: at(0)},
		},
	}

	got, err := NewExtractor(Options{}).ExtractFrom(t.Context(), data)
	require.NoError(t, err)

	assert.Equal(t, 1, got.TotalEmails)
	assert.Equal(t, 4, got.Skipped)
	assert.Empty(t, got.ImmediateActions)
	assert.Equal(t, []string{"budget", "review", "numbers"}, got.KeyTopics)
}

func TestVolumeTrend(t *testing.T) {
	tests := []struct {
		name  string
		hours []int
		want  Trend
	}{
		{"none", nil, TrendFlat},
		{"single", []int{0}, TrendFlat},
		{"zero span", []int{3, 3, 3}, TrendFlat},
		{"up", []int{0, 8, 9, 10}, TrendUp},
		{"down", []int{0, 1, 2, 10}, TrendDown},
		{"balanced", []int{0, 1, 9, 10}, TrendFlat},
		{"midpoint counts as second half", []int{0, 5, 10}, TrendUp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dates := make([]time.Time, len(tt.hours))
			for i, h := range tt.hours {
				dates[i] = at(h)
			}
			assert.Equal(t, tt.want, volumeTrend(dates))
		})
	}
}

func TestVolumeTrend_OrderIndependent(t *testing.T) {
	a := []time.Time{at(10), at(0), at(9), at(8)}
	b := []time.Time{at(0), at(8), at(9), at(10)}
	assert.Equal(t, volumeTrend(a), volumeTrend(b))
}

func TestKeyTopics(t *testing.T) {
	emails := []unified.EmailItem{
		email("e1", 0, "Roadmap planning", "The roadmap needs hiring input. Hiring plan attached."),
		email("e2", 1, "Re: roadmap", "Roadmap looks good, budget TBD. 2025 2025 2025"),
		email("e3", 2, "Budget", "BUDGET and hiring, plus the offsite."),
	}

	got, err := NewExtractor(Options{TopN: 3}).Extract(t.Context(), emails)
	require.NoError(t, err)

	// roadmap x4, hiring x3, budget x3 (hiring seen first), digits dropped.
	assert.Equal(t, []string{"roadmap", "hiring", "budget"}, got.KeyTopics)
}

func TestKeyTopics_UniqueAndBounded(t *testing.T) {
	var emails []unified.EmailItem
	words := []string{"alpha", "bravo", "charlie", "delta", "echo", "foxtrot", "golf", "hotel"}
	for i, w := range words {
		emails = append(emails, email("e"+w, i, w+" "+strings.ToUpper(w), strings.Repeat(w+" ", i+1)))
	}

	for _, n := range []int{1, 3, 5, 20} {
		got, err := NewExtractor(Options{TopN: n}).Extract(t.Context(), emails)
		require.NoError(t, err)

		assert.LessOrEqual(t, len(got.KeyTopics), n)
		seen := map[string]bool{}
		for _, topic := range got.KeyTopics {
			assert.False(t, seen[topic], "duplicate topic %q", topic)
			seen[topic] = true
		}
	}
}

func TestKeyTopics_Deterministic(t *testing.T) {
	emails := []unified.EmailItem{
		email("e1", 0, "launch plan", "pricing launch partners"),
		email("e2", 1, "pricing", "partners pricing launch"),
	}
	ex := NewExtractor(Options{})

	first, err := ex.Extract(t.Context(), emails)
	require.NoError(t, err)
	for range 5 {
		again, err := ex.Extract(t.Context(), emails)
		require.NoError(t, err)
		assert.Equal(t, first.KeyTopics, again.KeyTopics)
	}
}

func TestKeyTopics_NonASCII(t *testing.T) {
	emails := []unified.EmailItem{
		email("e1", 0, "Überprüfung réunion naïve", "Проект встреча проект"),
	}

	got, err := NewExtractor(Options{TopN: 5}).Extract(t.Context(), emails)
	require.NoError(t, err)

	assert.Equal(t, []string{"проект", "überprüfung", "réunion", "naïve", "встреча"}, got.KeyTopics)
}

func TestIsTopic(t *testing.T) {
	assert.True(t, isTopic("meetings"))
	assert.True(t, isTopic("q3okr"))
	assert.True(t, isTopic("naïve"))
	assert.True(t, isTopic("проект"))
	assert.False(t, isTopic("the"))
	assert.False(t, isTopic("ok"))
	assert.False(t, isTopic("él"), "length counts runes, not bytes")
	assert.False(t, isTopic("2025"))
	assert.False(t, isTopic("٢٠٢٥"))
}

func TestImmediateActions(t *testing.T) {
	data := &unified.UnifiedData{
		Emails: []unified.EmailItem{
			email("e-urgent", 5, "URGENT: contract", "Need signature asap"),
			email("e-review", 6, "Draft", "Please review by Friday"),
			email("e-fyi", 7, "Lunch", "Pizza in the kitchen"),
			email("e-outage", 1, "Outage in eu-west", "Customers affected"),
			email("e-noncritical", 8, "Noncritical cleanup, hypocritical memo", "Fasap rules, overdue-ish dueling docs"),
		},
		Tickets: []unified.TicketItem{
			{ID: "t-p1", Title: "Fix login", Status: unified.StatusInProgress, Priority: unified.PriorityP1, UpdatedAt: ptr(at(4))},
			{ID: "t-p3-due", Title: "Docs", Status: unified.StatusOpen, Priority: unified.PriorityP3, DueDate: ptr(at(48))},
			{ID: "t-p2-blocked", Title: "Migrate", Status: unified.StatusBlocked, Priority: unified.PriorityP2},
			{ID: "t-p2", Title: "Cleanup", Status: unified.StatusOpen, Priority: unified.PriorityP2},
			{ID: "t-closed", Title: "Old", Status: unified.StatusClosed, Priority: unified.PriorityP0},
		},
		Incidents: []unified.IncidentItem{
			{ID: "i-sev1", Title: "DB failover", Severity: unified.SeveritySev1, StartedAt: at(3), EndedAt: ptr(at(4))},
			{ID: "i-sev3-ongoing", Title: "Slow search", Severity: unified.SeveritySev3, StartedAt: at(2)},
			{ID: "i-sev3-done", Title: "Blip", Severity: unified.SeveritySev3, StartedAt: at(2), EndedAt: ptr(at(3))},
		},
	}

	got, err := NewExtractor(Options{}).ExtractFrom(t.Context(), data)
	require.NoError(t, err)

	var ids []string
	for _, a := range got.ImmediateActions {
		ids = append(ids, a.SourceID)
	}
	assert.Equal(t, []string{
		"i-sev1",         // critical, t=3
		"e-outage",       // critical, t=1
		"e-urgent",       // high, t=5
		"t-p1",           // high, t=4
		"e-review",       // medium, t=6
		"i-sev3-ongoing", // medium, t=2
		"t-p2-blocked",   // medium, no timestamp
		"t-p3-due",       // low, t=48
	}, ids)

	for i := 1; i < len(got.ImmediateActions); i++ {
		prev, cur := got.ImmediateActions[i-1], got.ImmediateActions[i]
		require.GreaterOrEqual(t, prev.Priority, cur.Priority)
		if prev.Priority == cur.Priority {
			assert.False(t, cur.Timestamp.After(prev.Timestamp), "actions %d and %d out of order", i-1, i)
		}
	}
}

func TestEmailAction_WholeWords(t *testing.T) {
	tests := []struct {
		name     string
		subject  string
		body     string
		want     bool
		priority ActionPriority
	}{
		{name: "keyword inside word", subject: "Noncritical cleanup, hypocritical memo", want: false},
		{name: "asap inside word", subject: "Fasap notes", body: "see the wasapp thread", want: false},
		{name: "due inside word", subject: "Overdue library book", body: "residue and dueling", want: false},
		{name: "keyword with punctuation", subject: "CRITICAL: payments down", want: true, priority: PriorityCritical},
		{name: "asap at end of sentence", body: "Send the deck asap.", want: true, priority: PriorityHigh},
		{name: "phrase across hyphen", subject: "Follow-up on the offsite", want: true, priority: PriorityMedium},
		{name: "phrase across line break", subject: "Please", body: "review the draft", want: true, priority: PriorityMedium},
		{name: "phrase split by other word", body: "please do review", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, ok := emailAction(unified.EmailItem{ID: "e1", Subject: tt.subject, Body: tt.body})
			assert.Equal(t, tt.want, ok)
			if tt.want {
				assert.Equal(t, tt.priority, a.Priority)
			}
		})
	}
}

func TestTicketAction_Description(t *testing.T) {
	a, ok := ticketAction(unified.TicketItem{
		ID: "t1", Title: "Ship billing", Status: unified.StatusBlocked, Priority: unified.PriorityP1, DueDate: ptr(at(24)),
	})
	require.True(t, ok)
	assert.Equal(t, "Unblock P1 ticket: Ship billing (due 2025-06-03)", a.Description)
	assert.Equal(t, PriorityHigh, a.Priority)
	assert.Equal(t, at(24), a.Timestamp, "due date is the timestamp without an update time")
}

func TestActionPriority_Text(t *testing.T) {
	out, err := json.Marshal(Action{Priority: PriorityCritical})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"priority":"critical"`)

	var a Action
	require.NoError(t, json.Unmarshal([]byte(`{"priority":"Medium"}`), &a))
	assert.Equal(t, PriorityMedium, a.Priority)

	assert.Error(t, json.Unmarshal([]byte(`{"priority":"whenever"}`), &a))
	_, err = ActionPriority(9).MarshalText()
	assert.Error(t, err)
}

func TestSentimentSummary(t *testing.T) {
	analyzer := sentiment.AnalyzerFunc(func(ctx context.Context, text string) (sentiment.Result, error) {
		switch {
		case strings.Contains(text, "love"):
			return sentiment.Result{Sentiment: sentiment.Positive, Score: 0.8, Method: sentiment.MethodAI}, nil
		case strings.Contains(text, "hate"):
			return sentiment.Result{Sentiment: sentiment.Negative, Score: -0.6, Method: sentiment.MethodFallback}, nil
		case strings.Contains(text, "boom"):
			return sentiment.Result{}, brieferrors.NewUpstreamError("mock", "Analyze", "boom")
		default:
			return sentiment.Result{Sentiment: sentiment.Neutral, Score: 0.1, Method: sentiment.MethodAI}, nil
		}
	})

	emails := []unified.EmailItem{
		email("e1", 0, "love it", ""),
		email("e2", 1, "hate it", ""),
		email("e3", 2, "meh", ""),
		email("e4", 3, "boom", ""),
		email("e5", 4, "", ""),
	}

	got, err := NewExtractor(Options{Analyzer: analyzer, Concurrency: 2}).Extract(t.Context(), emails)
	require.NoError(t, err)
	require.NotNil(t, got.Sentiment)

	s := got.Sentiment
	assert.Equal(t, 1, s.Positive)
	assert.Equal(t, 1, s.Negative)
	assert.Equal(t, 1, s.Neutral)
	assert.Equal(t, 3, s.Analyzed())
	assert.Equal(t, 2, s.AICount)
	assert.Equal(t, 1, s.FallbackCount)
	assert.Equal(t, 1, s.Failed)
	assert.True(t, s.Degraded)
	assert.InDelta(t, (0.8-0.6+0.1)/3, s.AverageScore, 1e-9)
}

func TestSentimentSummary_AllAI(t *testing.T) {
	analyzer := sentiment.AnalyzerFunc(func(ctx context.Context, text string) (sentiment.Result, error) {
		return sentiment.Result{Sentiment: sentiment.Positive, Score: 0.5, Method: sentiment.MethodAI}, nil
	})

	got, err := NewExtractor(Options{Analyzer: analyzer}).Extract(t.Context(), []unified.EmailItem{email("e1", 0, "hi", "there")})
	require.NoError(t, err)
	assert.False(t, got.Sentiment.Degraded)
}

func TestSentimentSummary_BoundedConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	analyzer := sentiment.AnalyzerFunc(func(ctx context.Context, text string) (sentiment.Result, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return sentiment.Result{Sentiment: sentiment.Neutral, Method: sentiment.MethodFallback}, nil
	})

	var emails []unified.EmailItem
	for i := range 12 {
		emails = append(emails, email("e"+string(rune('a'+i)), i, "status", "update"))
	}

	_, err := NewExtractor(Options{Analyzer: analyzer, Concurrency: 3}).Extract(t.Context(), emails)
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestSentimentSummary_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	analyzer := sentiment.AnalyzerFunc(func(ctx context.Context, text string) (sentiment.Result, error) {
		return sentiment.Result{}, ctx.Err()
	})

	_, err := NewExtractor(Options{Analyzer: analyzer}).Extract(ctx, []unified.EmailItem{email("e1", 0, "hi", "")})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
