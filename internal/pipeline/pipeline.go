// Package pipeline is the pure filter/sort/paginate stage between the
// cached issue list for a branch and whatever renders or exports it. It
// holds no state and performs no I/O.
package pipeline

import (
	"sort"
	"strings"
	"time"

	"maintenance-app/tracking-service/internal/models"
)

// SortDirection orders active issues by creation time.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Filter is the conjunctive criteria record. Empty fields do not constrain.
type Filter struct {
	Search   string
	Category string
	Status   string
	Priority string
	DateFrom time.Time
	DateTo   time.Time
}

// IsZero reports whether no criterion is set.
func (f Filter) IsZero() bool {
	return f.Search == "" && f.Category == "" && f.Status == "" && f.Priority == "" &&
		f.DateFrom.IsZero() && f.DateTo.IsZero()
}

// Page is one slice of the filtered and sorted issue list.
type Page struct {
	Issues      []models.Issue `json:"issues"`
	TotalIssues int            `json:"totalIssues"`
	TotalPages  int            `json:"totalPages"`
	CurrentPage int            `json:"currentPage"`
}

// Match reports whether a single issue satisfies every non-empty criterion.
// Search is a case-insensitive substring over room number, location,
// description, category and author. Category matches case-insensitively,
// status and priority are exact.
func Match(issue models.Issue, f Filter) bool {
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		haystacks := []string{
			issue.RoomNumber,
			issue.Location,
			issue.Description,
			string(issue.Category),
			issue.AuthorName,
		}
		found := false
		for _, h := range haystacks {
			if strings.Contains(strings.ToLower(h), needle) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if f.Category != "" && !strings.EqualFold(string(issue.Category), f.Category) {
		return false
	}

	if f.Status != "" && string(issue.Status) != f.Status {
		return false
	}

	if f.Priority != "" && string(issue.Priority) != f.Priority {
		return false
	}

	if !f.DateFrom.IsZero() && issue.CreatedAt.Before(f.DateFrom) {
		return false
	}

	if !f.DateTo.IsZero() && issue.CreatedAt.After(endOfDay(f.DateTo)) {
		return false
	}

	return true
}

// endOfDay extends an inclusive upper bound to 23:59:59.999 of that day.
func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// Apply runs the full pipeline: filter, sort, then slice out the requested
// 1-based page. A nil input is treated as empty.
func Apply(issues []models.Issue, f Filter, dir SortDirection, page, pageSize int) Page {
	filtered := FilterIssues(issues, f)
	SortIssues(filtered, dir)
	return Paginate(filtered, page, pageSize)
}

// FilterIssues returns the subset matching every non-empty criterion. The
// input slice is not modified.
func FilterIssues(issues []models.Issue, f Filter) []models.Issue {
	result := make([]models.Issue, 0, len(issues))
	for _, issue := range issues {
		if Match(issue, f) {
			result = append(result, issue)
		}
	}
	return result
}

// SortIssues orders issues in place:
//  1. active issues before Completed ones, always;
//  2. Completed issues newest-touched first, regardless of direction;
//  3. among active issues critical priority first;
//  4. then New before In Progress;
//  5. then createdAt per the direction toggle.
//
// The sort is stable so ties keep their incoming order.
func SortIssues(issues []models.Issue, dir SortDirection) {
	sort.SliceStable(issues, func(i, j int) bool {
		a, b := issues[i], issues[j]

		aDone := a.Status == models.StatusCompleted
		bDone := b.Status == models.StatusCompleted
		if aDone != bDone {
			return !aDone
		}

		if aDone && bDone {
			return a.LastTouched().After(b.LastTouched())
		}

		aCritical := a.Priority == models.PriorityCritical
		bCritical := b.Priority == models.PriorityCritical
		if aCritical != bCritical {
			return aCritical
		}

		if ra, rb := statusRank(a.Status), statusRank(b.Status); ra != rb {
			return ra < rb
		}

		if dir == SortAsc {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
}

func statusRank(s models.IssueStatus) int {
	switch s {
	case models.StatusNew:
		return 1
	case models.StatusInProgress:
		return 2
	default:
		return 3
	}
}

// Paginate slices out one 1-based page of an already filtered and sorted
// list. Pages below 1 clamp to 1; pages past the end yield an empty slice
// so callers can render an explicit empty state.
func Paginate(issues []models.Issue, page, pageSize int) Page {
	if pageSize < 1 {
		pageSize = 10
	}
	if page < 1 {
		page = 1
	}

	total := len(issues)
	totalPages := (total + pageSize - 1) / pageSize

	start := (page - 1) * pageSize
	if start >= total {
		return Page{
			Issues:      []models.Issue{},
			TotalIssues: total,
			TotalPages:  totalPages,
			CurrentPage: page,
		}
	}

	end := start + pageSize
	if end > total {
		end = total
	}

	return Page{
		Issues:      issues[start:end],
		TotalIssues: total,
		TotalPages:  totalPages,
		CurrentPage: page,
	}
}
