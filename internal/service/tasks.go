package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/geocoder89/taskhub/internal/apperr"
	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/geocoder89/taskhub/internal/policy"
	"github.com/google/uuid"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	recentTasksLimit = 10
)

type Tasks struct {
	tasks       TaskStore
	users       UserStore
	populate    populator
	now         clock
	transitions TransitionObserver
}

func NewTasks(tasks TaskStore, users UserStore) *Tasks {
	return &Tasks{
		tasks:    tasks,
		users:    users,
		populate: populator{users: users},
		now:      utcNow,
	}
}

// WithTransitions reports every status change made through Update to o.
func (s *Tasks) WithTransitions(o TransitionObserver) *Tasks {
	s.transitions = o
	return s
}

// ListTasksQuery is the caller-facing list request. Zero values mean "not
// set" and fall back to defaults.
type ListTasksQuery struct {
	Status     string
	Priority   string
	AssignedTo string
	SortBy     string
	Page       int
	Limit      int
}

type TaskList struct {
	Tasks []task.Populated
	Count int
	Total int
	Page  int
	Pages int
}

// NormalizePaging clamps page and limit to usable values.
func NormalizePaging(page, limit int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

func pageCount(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

func (s *Tasks) List(ctx context.Context, p user.Principal, q ListTasksQuery) (TaskList, error) {
	page, limit := NormalizePaging(q.Page, q.Limit)

	filter := task.ListTasksFilter{
		Scope:  policy.TaskScope(p),
		Sort:   task.ParseSort(q.SortBy),
		Limit:  limit,
		Offset: (page - 1) * limit,
	}

	var fields []apperr.FieldError

	if q.Status != "" {
		st := task.Status(q.Status)
		if !st.Valid() {
			fields = append(fields, apperr.FieldError{Field: "status", Rule: "oneof", Message: "Invalid status"})
		}
		filter.Status = &st
	}

	if q.Priority != "" {
		pr := task.Priority(q.Priority)
		if !pr.Valid() {
			fields = append(fields, apperr.FieldError{Field: "priority", Rule: "oneof", Message: "Invalid priority"})
		}
		filter.Priority = &pr
	}

	if len(fields) > 0 {
		return TaskList{}, apperr.Validation("Invalid query parameters", fields)
	}

	// assignedTo only narrows an admin's view; users are already scoped
	if q.AssignedTo != "" && p.IsAdmin() {
		filter.AssigneeID = q.AssignedTo
	}

	res, err := s.tasks.List(ctx, filter)
	if err != nil {
		return TaskList{}, apperr.Internal("Could not list tasks", err)
	}

	items, err := s.populate.tasks(ctx, res.Items)
	if err != nil {
		return TaskList{}, apperr.Internal("Could not list tasks", err)
	}

	return TaskList{
		Tasks: items,
		Count: len(items),
		Total: res.Total,
		Page:  page,
		Pages: pageCount(res.Total, limit),
	}, nil
}

func (s *Tasks) load(ctx context.Context, id string) (task.Task, error) {
	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			return task.Task{}, apperr.NotFound("Task not found")
		}
		return task.Task{}, apperr.Internal("Could not fetch task", err)
	}
	return t, nil
}

func (s *Tasks) Get(ctx context.Context, p user.Principal, id string) (task.Populated, error) {
	t, err := s.load(ctx, id)
	if err != nil {
		return task.Populated{}, err
	}

	if d := policy.CanViewTask(p, t); !d.Allowed {
		return task.Populated{}, apperr.Forbidden(d.Reason)
	}

	out, err := s.populate.task(ctx, t)
	if err != nil {
		return task.Populated{}, apperr.Internal("Could not fetch task", err)
	}
	return out, nil
}

func (s *Tasks) ensureUser(ctx context.Context, id, missing string) error {
	_, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return apperr.NotFound(missing)
		}
		return apperr.Internal("Could not fetch user", err)
	}
	return nil
}

func (s *Tasks) Create(ctx context.Context, p user.Principal, req task.CreateTaskRequest) (task.Populated, error) {
	if d := policy.CanCreateTask(p); !d.Allowed {
		return task.Populated{}, apperr.Forbidden(d.Reason)
	}

	if err := s.ensureUser(ctx, req.AssignedTo, "Assigned user not found"); err != nil {
		return task.Populated{}, err
	}

	now := s.now()

	t := task.Task{
		ID:           uuid.NewString(),
		Title:        strings.TrimSpace(req.Title),
		Description:  strings.TrimSpace(req.Description),
		Status:       req.Status,
		Priority:     req.Priority,
		AssignedToID: req.AssignedTo,
		CreatedByID:  p.ID,
		DueDate:      req.DueDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if t.Status == "" {
		t.Status = task.StatusPending
	}
	if t.Priority == "" {
		t.Priority = task.PriorityMedium
	}
	if t.Status == task.StatusCompleted {
		t.CompletedAt = &now
	}

	created, err := s.tasks.Create(ctx, t)
	if err != nil {
		return task.Populated{}, apperr.Internal("Could not create task", err)
	}

	out, err := s.populate.task(ctx, created)
	if err != nil {
		return task.Populated{}, apperr.Internal("Could not create task", err)
	}
	return out, nil
}

func (s *Tasks) Update(ctx context.Context, p user.Principal, id string, req task.UpdateTaskRequest) (task.Populated, error) {
	current, err := s.load(ctx, id)
	if err != nil {
		return task.Populated{}, err
	}

	d, fields := policy.TaskUpdate(p, current)
	if !d.Allowed {
		return task.Populated{}, apperr.Forbidden(d.Reason)
	}

	patch, err := s.buildPatch(ctx, fields, req)
	if err != nil {
		return task.Populated{}, err
	}

	updated, err := s.tasks.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			return task.Populated{}, apperr.NotFound("Task not found")
		}
		return task.Populated{}, apperr.Internal("Could not update task", err)
	}

	if s.transitions != nil && patch.Status != nil && *patch.Status != current.Status {
		s.transitions.ObserveTransition(string(*patch.Status))
	}

	out, err := s.populate.task(ctx, updated)
	if err != nil {
		return task.Populated{}, apperr.Internal("Could not update task", err)
	}
	return out, nil
}

// buildPatch keeps only the submitted fields the caller may change and derives
// completedAt and responseSubmittedAt.
func (s *Tasks) buildPatch(ctx context.Context, fields policy.Fields, req task.UpdateTaskRequest) (task.Patch, error) {
	now := s.now()
	patch := task.Patch{UpdatedAt: now}

	if fields.Has(policy.FieldTitle) && req.Title != nil {
		v := strings.TrimSpace(*req.Title)
		patch.Title = &v
	}

	if fields.Has(policy.FieldDescription) && req.Description != nil {
		v := strings.TrimSpace(*req.Description)
		patch.Description = &v
	}

	if fields.Has(policy.FieldPriority) && req.Priority != nil {
		patch.Priority = req.Priority
	}

	if fields.Has(policy.FieldDueDate) && req.DueDate != nil {
		patch.DueDate = req.DueDate
	}

	if fields.Has(policy.FieldAssignedTo) && req.AssignedTo != nil {
		if err := s.ensureUser(ctx, *req.AssignedTo, "Assigned user not found"); err != nil {
			return task.Patch{}, err
		}
		patch.AssignedToID = req.AssignedTo
	}

	if fields.Has(policy.FieldStatus) && req.Status != nil {
		patch.Status = req.Status
		if *req.Status == task.StatusCompleted {
			patch.CompletedAt = &now
		}
	}

	if fields.Has(policy.FieldResponse) && req.Response != nil && *req.Response != "" {
		patch.Response = req.Response
		patch.ResponseSubmittedAt = &now
	}

	return patch, nil
}

func (s *Tasks) Delete(ctx context.Context, p user.Principal, id string) error {
	if d := policy.CanDeleteTask(p); !d.Allowed {
		return apperr.Forbidden(d.Reason)
	}

	err := s.tasks.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			return apperr.NotFound("Task not found")
		}
		return apperr.Internal("Could not delete task", err)
	}
	return nil
}

func (s *Tasks) Assign(ctx context.Context, p user.Principal, id, userID string) (task.Populated, error) {
	if d := policy.CanAssignTask(p); !d.Allowed {
		return task.Populated{}, apperr.Forbidden(d.Reason)
	}

	if err := s.ensureUser(ctx, userID, "User not found"); err != nil {
		return task.Populated{}, err
	}

	updated, err := s.tasks.Update(ctx, id, task.Patch{AssignedToID: &userID, UpdatedAt: s.now()})
	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			return task.Populated{}, apperr.NotFound("Task not found")
		}
		return task.Populated{}, apperr.Internal("Could not assign task", err)
	}

	out, err := s.populate.task(ctx, updated)
	if err != nil {
		return task.Populated{}, apperr.Internal("Could not assign task", err)
	}
	return out, nil
}

func (s *Tasks) Stats(ctx context.Context, p user.Principal) (task.Stats, error) {
	st, err := s.tasks.Stats(ctx, policy.TaskScope(p), task.NewStatsWindow(s.now()))
	if err != nil {
		return task.Stats{}, apperr.Internal("Could not compute task stats", err)
	}

	if st.ByStatus == nil {
		st.ByStatus = []task.GroupCount{}
	}
	if st.ByPriority == nil {
		st.ByPriority = []task.GroupCount{}
	}
	return st, nil
}

func (s *Tasks) Analytics(ctx context.Context, p user.Principal) (task.Analytics, error) {
	if d := policy.CanViewAnalytics(p); !d.Allowed {
		return task.Analytics{}, apperr.Forbidden(d.Reason)
	}

	ctx, span := observability.StartSpan(ctx, "tasks.analytics")
	a, err := s.analytics(ctx)
	observability.EndSpan(span, err)
	return a, err
}

func (s *Tasks) analytics(ctx context.Context) (task.Analytics, error) {
	totalTasks, err := s.tasks.Count(ctx, task.Scope{})
	if err != nil {
		return task.Analytics{}, apperr.Internal("Could not compute analytics", err)
	}

	role := user.RoleUser
	totalUsers, err := s.users.Count(ctx, &role)
	if err != nil {
		return task.Analytics{}, apperr.Internal("Could not compute analytics", err)
	}

	byUser, err := s.breakdown(ctx)
	if err != nil {
		return task.Analytics{}, apperr.Internal("Could not compute analytics", err)
	}

	recent, err := s.tasks.Recent(ctx, recentTasksLimit)
	if err != nil {
		return task.Analytics{}, apperr.Internal("Could not compute analytics", err)
	}

	recentPopulated, err := s.populate.tasks(ctx, recent)
	if err != nil {
		return task.Analytics{}, apperr.Internal("Could not compute analytics", err)
	}

	return task.Analytics{
		TotalTasks:  totalTasks,
		TotalUsers:  totalUsers,
		TasksByUser: byUser,
		RecentTasks: recentPopulated,
	}, nil
}

// breakdown joins the per-assignee counters with user records. Assignees that
// no longer exist are dropped.
func (s *Tasks) breakdown(ctx context.Context) ([]task.UserBreakdown, error) {
	rows, err := s.tasks.CountByAssignee(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.UserID)
	}

	refs, err := s.populate.refs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]task.UserBreakdown, 0, len(rows))
	for _, r := range rows {
		ref, ok := refs[r.UserID]
		if !ok {
			continue
		}
		r.UserName = ref.Name
		r.UserEmail = ref.Email
		r.CompletionRate = task.CompletionRate(r.Completed, r.Total)
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].UserID < out[j].UserID
	})

	return out, nil
}
