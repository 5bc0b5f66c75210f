package ingest

import (
	"strconv"
	"strings"

	"github.com/google/go-github/v68/github"
	"github.com/hashicorp/go-multierror"

	brieferrors "github.com/ask-andrew/360brief-sub007/pkg/errors"
	"github.com/ask-andrew/360brief-sub007/pkg/unified"
)

// labelPriorities maps priority label values to ticket priorities.
var labelPriorities = map[string]unified.TicketPriority{
	"p0":       unified.PriorityP0,
	"p1":       unified.PriorityP1,
	"p2":       unified.PriorityP2,
	"p3":       unified.PriorityP3,
	"critical": unified.PriorityP0,
	"high":     unified.PriorityP1,
	"medium":   unified.PriorityP2,
	"low":      unified.PriorityP3,
}

var inProgressLabels = map[string]bool{
	"in progress": true,
	"in-progress": true,
	"wip":         true,
	"doing":       true,
}

// TicketFromGitHubIssue converts a GitHub issue. Priority comes from labels
// such as "p1" or "priority: high" and defaults to p3. A "blocked" label or
// an in-progress label sets the status of an open issue.
func TicketFromGitHubIssue(issue *github.Issue) (unified.TicketItem, error) {
	if issue == nil || issue.Number == nil {
		return unified.TicketItem{}, brieferrors.NewInvalidInputError("issue", "github issue has no number")
	}

	id := "#" + strconv.Itoa(issue.GetNumber())
	if repo := issue.GetRepository().GetFullName(); repo != "" {
		id = repo + id
	}

	t := unified.TicketItem{
		ID:          id,
		Title:       issue.GetTitle(),
		Status:      unified.StatusOpen,
		Priority:    unified.PriorityP3,
		Owner:       issue.GetAssignee().GetLogin(),
		Description: issue.GetBody(),
	}

	rank := 0
	for _, label := range issue.Labels {
		name := strings.ToLower(strings.TrimSpace(label.GetName()))
		switch {
		case name == "blocked":
			t.Status = unified.StatusBlocked
		case inProgressLabels[name] && t.Status == unified.StatusOpen:
			t.Status = unified.StatusInProgress
		default:
			if p, ok := labelPriorities[trimPriorityPrefix(name)]; ok && p.Rank() > rank {
				t.Priority, rank = p, p.Rank()
			}
		}
	}

	if issue.GetState() == "closed" {
		t.Status = unified.StatusClosed
	}

	if due := issue.GetMilestone().GetDueOn(); !due.IsZero() {
		d := due.Time
		t.DueDate = &d
	}
	if updated := issue.GetUpdatedAt(); !updated.IsZero() {
		u := updated.Time
		t.UpdatedAt = &u
	}

	return t, nil
}

// TicketsFromGitHubIssues converts every issue it can. Pull requests are
// skipped; issues that fail are left out and reported together.
func TicketsFromGitHubIssues(issues []*github.Issue) ([]unified.TicketItem, error) {
	tickets := make([]unified.TicketItem, 0, len(issues))
	var result *multierror.Error
	for i, issue := range issues {
		if issue != nil && issue.IsPullRequest() {
			continue
		}
		ticket, err := TicketFromGitHubIssue(issue)
		if err != nil {
			result = multierror.Append(result, brieferrors.Wrapf(err, "issue %d", i))
			continue
		}
		tickets = append(tickets, ticket)
	}
	return tickets, result.ErrorOrNil()
}

func trimPriorityPrefix(name string) string {
	for _, prefix := range []string{"priority:", "priority/", "priority-"} {
		if rest, ok := strings.CutPrefix(name, prefix); ok {
			return strings.TrimSpace(rest)
		}
	}
	return name
}
