package brief

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/ask-andrew/360brief-sub007/pkg/insights"
)

// markdownTemplate renders any BriefingData as markdown.
const markdownTemplate = `# {{title .Style}}

**Generated:** {{.GeneratedAt.Format "2006-01-02 15:04"}}{{if .Degraded}} _(degraded: fallback sentiment)_{{end}}

{{with .MissionBrief -}}
## Situation

{{.Situation}}

{{template "insights" .CommunicationInsights}}{{template "actions" .ImmediateActions}}{{if .Threats -}}
## Threats

{{range .Threats -}}
- **{{upper .Severity}}** {{.Title}}{{if .Ongoing}} (ongoing){{end}}{{if .ARRAtRisk}}, {{money .ARRAtRisk}} ARR at risk{{end}}
{{end}}
{{end -}}
{{if .Upcoming -}}
## Upcoming

{{range .Upcoming -}}
- {{when .Start}} {{.Title}}{{if .Attendees}} ({{.Attendees}} attendees){{end}}
{{end}}
{{end -}}
{{end -}}

{{with .StartupVelocity -}}
## {{.Headline}}

| Momentum | Shipped | In flight | Blocked |
|---|---|---|---|
| {{.Momentum}} | {{.Shipped}} | {{.InFlight}} | {{.Blocked}} |

{{template "actions" .TopPriorities}}
{{- if .Topics}}**Topics:** {{join .Topics}}
{{end}}
{{- end -}}

{{with .ManagementConsulting -}}
## Executive Summary

{{.ExecutiveSummary}}

{{if .KeyFindings -}}
## Key Findings

{{range .KeyFindings -}}
- {{.}}
{{end}}
{{end -}}
{{if .Recommendations -}}
## Recommendations

{{range $i, $r := .Recommendations -}}
{{inc $i}}. **{{$r.Action}}** ({{$r.Priority}}): {{$r.Rationale}}
{{end}}
{{end -}}
{{if .RiskMatrix -}}
## Risk Matrix

| Risk | Likelihood | Impact |
|---|---|---|
{{range .RiskMatrix -}}
| {{.Item}} | {{.Likelihood}} | {{.Impact}} |
{{end}}
{{end -}}
{{end -}}

{{with .Newsletter -}}
## {{.Headline}}

{{.LeadStory}}

{{range .Sections -}}
### {{.Title}}

{{range .Items -}}
- {{.}}
{{end}}
{{end -}}
{{template "insights" .ByTheNumbers}}
{{- end -}}

{{define "insights" -}}
## Communication Insights

- **Emails:** {{.TotalEmails}} (volume {{.VolumeTrend}})
{{- if .KeyTopics}}
- **Key topics:** {{join .KeyTopics}}
{{- end}}
{{- with .Sentiment}}
- **Sentiment:** {{.Positive}} positive, {{.Neutral}} neutral, {{.Negative}} negative (avg {{printf "%.2f" .AverageScore}})
{{- end}}
{{- if .Skipped}}
- **Skipped records:** {{.Skipped}}
{{- end}}

{{end -}}

{{define "actions" -}}
{{if . -}}
## Immediate Actions

{{range . -}}
- [ ] **{{.Priority}}** {{.Description}}
{{end}}
{{end -}}
{{end -}}
`

var tmpl = template.Must(template.New("brief").Funcs(template.FuncMap{
	"title": styleTitle,
	"join":  func(s []string) string { return strings.Join(s, ", ") },
	"upper": func(v any) string { return strings.ToUpper(fmt.Sprint(v)) },
	"money": money,
	"when":  func(t time.Time) string { return t.Format("Mon Jan 2 15:04") },
	"inc":   func(i int) int { return i + 1 },
}).Parse(markdownTemplate))

var styleTitles = map[Style]string{
	StyleMissionBrief:         "Mission Brief",
	StyleStartupVelocity:      "Startup Velocity",
	StyleManagementConsulting: "Management Consulting Brief",
	StyleNewsletter:           "The Daily Brief",
}

func styleTitle(s Style) string {
	if t, ok := styleTitles[s]; ok {
		return t
	}
	return string(s)
}

// FormatMarkdown formats the brief as markdown.
func (b *BriefingData) FormatMarkdown() string {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, b); err != nil {
		// Fallback to simple format if template fails
		return b.formatSimple()
	}
	return buf.String()
}

// formatSimple provides a fallback markdown format.
func (b *BriefingData) formatSimple() string {
	var buf bytes.Buffer
	buf.WriteString("# " + styleTitle(b.Style) + "\n\n")
	buf.WriteString("**Generated:** " + b.GeneratedAt.Format(time.RFC3339) + "\n\n")

	for _, n := range b.narratives() {
		buf.WriteString(*n + "\n\n")
	}

	if ci := b.Insights(); ci != nil {
		buf.WriteString(fmt.Sprintf("Emails: %d, volume %s\n\n", ci.TotalEmails, ci.VolumeTrend))
		writeActions(&buf, ci.ImmediateActions)
	}

	return buf.String()
}

func writeActions(buf *bytes.Buffer, actions []insights.Action) {
	if len(actions) == 0 {
		return
	}
	buf.WriteString("## Immediate Actions\n\n")
	for _, a := range actions {
		buf.WriteString("- [ ] " + a.Priority.String() + " " + a.Description + "\n")
	}
	buf.WriteString("\n")
}
