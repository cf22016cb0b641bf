package models

// DayCount is the number of issues reported on one calendar day.
type DayCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// BranchStats are the dashboard counters for a single branch.
type BranchStats struct {
	BranchID    string           `json:"branchId"`
	TotalIssues int64            `json:"totalIssues"`
	OpenIssues  int64            `json:"openIssues"`
	ByCategory  map[string]int64 `json:"issuesByCategory"`
	ByStatus    map[string]int64 `json:"issuesByStatus"`
	ByPriority  map[string]int64 `json:"issuesByPriority"`
	Last7Days   []DayCount       `json:"last7Days"`
}
