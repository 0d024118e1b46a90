package task

import (
	"errors"
	"time"

	"github.com/geocoder89/taskhub/internal/domain/user"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusOnHold     Status = "on-hold"
	StatusCancelled  Status = "cancelled"
)

var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted, StatusOnHold, StatusCancelled}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Closed statuses do not count towards overdue.
func (s Status) Closed() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

func (p Priority) Valid() bool {
	for _, v := range Priorities {
		if p == v {
			return true
		}
	}
	return false
}

// Rank orders priorities for sorting, low first.
func (p Priority) Rank() int {
	for i, v := range Priorities {
		if p == v {
			return i
		}
	}
	return -1
}

var ErrNotFound = errors.New("task not found")

// Task is the stored document. References are kept as ids; see Populated.
type Task struct {
	ID                  string     `json:"id" bson:"_id"`
	Title               string     `json:"title" bson:"title"`
	Description         string     `json:"description" bson:"description"`
	Status              Status     `json:"status" bson:"status"`
	Priority            Priority   `json:"priority" bson:"priority"`
	AssignedToID        string     `json:"-" bson:"assignedTo"`
	CreatedByID         string     `json:"-" bson:"createdBy"`
	DueDate             *time.Time `json:"dueDate,omitempty" bson:"dueDate,omitempty"`
	CompletedAt         *time.Time `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
	Response            *string    `json:"response,omitempty" bson:"response,omitempty"`
	ResponseSubmittedAt *time.Time `json:"responseSubmittedAt,omitempty" bson:"responseSubmittedAt,omitempty"`
	CreatedAt           time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// Populated is a task with its user references resolved for responses.
type Populated struct {
	Task
	AssignedTo user.Ref `json:"assignedTo"`
	CreatedBy  user.Ref `json:"createdBy"`
}

type CreateTaskRequest struct {
	Title       string     `json:"title" binding:"required,notblank,max=100"`
	Description string     `json:"description" binding:"required,notblank,max=500"`
	AssignedTo  string     `json:"assignedTo" binding:"required,uuid"`
	Status      Status     `json:"status" binding:"omitempty,oneof=pending in-progress completed on-hold cancelled"`
	Priority    Priority   `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	DueDate     *time.Time `json:"dueDate"`
}

// UpdateTaskRequest is a partial update; nil fields were not submitted.
type UpdateTaskRequest struct {
	Title       *string    `json:"title" binding:"omitempty,notblank,max=100"`
	Description *string    `json:"description" binding:"omitempty,notblank,max=500"`
	AssignedTo  *string    `json:"assignedTo" binding:"omitempty,uuid"`
	Status      *Status    `json:"status" binding:"omitempty,oneof=pending in-progress completed on-hold cancelled"`
	Priority    *Priority  `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	DueDate     *time.Time `json:"dueDate"`
	Response    *string    `json:"response" binding:"omitempty,max=1000"`
}

type AssignTaskRequest struct {
	UserID string `json:"userId" binding:"required,uuid"`
}

// Patch is the set of columns an update writes. Only non-nil fields change.
type Patch struct {
	Title               *string
	Description         *string
	AssignedToID        *string
	Status              *Status
	Priority            *Priority
	DueDate             *time.Time
	CompletedAt         *time.Time
	Response            *string
	ResponseSubmittedAt *time.Time
	UpdatedAt           time.Time
}

// Apply writes the patch onto t. Stores that cannot express partial updates
// natively use it to build the new document.
func (p Patch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.AssignedToID != nil {
		t.AssignedToID = *p.AssignedToID
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.DueDate != nil {
		d := *p.DueDate
		t.DueDate = &d
	}
	if p.CompletedAt != nil {
		c := *p.CompletedAt
		t.CompletedAt = &c
	}
	if p.Response != nil {
		r := *p.Response
		t.Response = &r
	}
	if p.ResponseSubmittedAt != nil {
		rs := *p.ResponseSubmittedAt
		t.ResponseSubmittedAt = &rs
	}
	t.UpdatedAt = p.UpdatedAt
}
