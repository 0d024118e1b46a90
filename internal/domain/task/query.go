package task

import (
	"strings"
	"time"
)

// Scope restricts a query to the tasks assigned to one user. Empty means all.
type Scope struct {
	AssigneeID string
}

type ListTasksFilter struct {
	Scope
	Status   *Status
	Priority *Priority
	Sort     Sort
	Limit    int
	Offset   int
}

type Sort struct {
	Field string
	Desc  bool
}

const DefaultSortKey = "-createdAt"

var sortFields = map[string]struct{}{
	"createdAt": {},
	"updatedAt": {},
	"dueDate":   {},
	"priority":  {},
	"status":    {},
	"title":     {},
}

// ParseSort reads a "-field" / "field" sort key. Unknown fields fall back to
// newest first.
func ParseSort(key string) Sort {
	key = strings.TrimSpace(key)
	desc := strings.HasPrefix(key, "-")
	field := strings.TrimPrefix(key, "-")

	if _, ok := sortFields[field]; !ok {
		return Sort{Field: "createdAt", Desc: true}
	}

	return Sort{Field: field, Desc: desc}
}

type Page struct {
	Items []Task
	Total int
}

type GroupCount struct {
	Key   string `json:"_id" bson:"_id"`
	Count int    `json:"count" bson:"count"`
}

type Stats struct {
	Total             int          `json:"total"`
	Overdue           int          `json:"overdue"`
	CompletedThisWeek int          `json:"completedThisWeek"`
	ByStatus          []GroupCount `json:"byStatus"`
	ByPriority        []GroupCount `json:"byPriority"`
}

// StatsWindow fixes the instants a stats query is evaluated against.
type StatsWindow struct {
	Now     time.Time
	WeekAgo time.Time
}

func NewStatsWindow(now time.Time) StatsWindow {
	return StatsWindow{Now: now, WeekAgo: now.AddDate(0, 0, -7)}
}

// UserBreakdown is one row of the admin per-assignee rollup.
type UserBreakdown struct {
	UserID         string  `json:"userId" bson:"_id"`
	UserName       string  `json:"userName" bson:"userName"`
	UserEmail      string  `json:"userEmail" bson:"userEmail"`
	Total          int     `json:"total" bson:"total"`
	Completed      int     `json:"completed" bson:"completed"`
	Pending        int     `json:"pending" bson:"pending"`
	InProgress     int     `json:"inProgress" bson:"inProgress"`
	CompletionRate float64 `json:"completionRate" bson:"-"`
}

// CompletionRate is completed/total as a percentage, 0 for no tasks.
func CompletionRate(completed, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(completed) / float64(total) * 100
}

type Analytics struct {
	TotalTasks  int             `json:"totalTasks"`
	TotalUsers  int             `json:"totalUsers"`
	TasksByUser []UserBreakdown `json:"tasksByUser"`
	RecentTasks []Populated     `json:"recentTasks"`
}
