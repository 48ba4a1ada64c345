package task

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"

	"github.com/kazz187/teamboard/internal/eventbus"
	"github.com/kazz187/teamboard/pkg/cerr"
)

// History receives task mutations for the audit trail.
type History interface {
	TaskCreated(ctx context.Context, t *Task)
	TaskUpdated(ctx context.Context, before, after *Task)
}

type Server struct {
	repo     Repository
	history  History
	eventBus *eventbus.Bus
	now      func() time.Time
}

func NewServer(repo Repository, history History, eventBus *eventbus.Bus) *Server {
	return &Server{
		repo:     repo,
		history:  history,
		eventBus: eventBus,
		now:      time.Now,
	}
}

func (s *Server) Routes(r chi.Router) {
	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", s.listTasks)
		r.Post("/", s.createTask)
		r.Get("/calendar", s.calendar)
		r.Get("/{taskID}", s.getTask)
		r.Patch("/{taskID}", s.updateTask)
		r.Put("/{taskID}/status", s.updateTaskStatus)
	})
}

type CreateTaskRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
	Status      Status   `json:"status"`
	DueDate     string   `json:"due_date"`
	Assignee    string   `json:"assignee"`
}

// UpdateTaskRequest changes only the fields that are set. An empty due_date
// clears it.
type UpdateTaskRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Priority    *Priority `json:"priority"`
	Status      *Status   `json:"status"`
	DueDate     *string   `json:"due_date"`
	Assignee    *string   `json:"assignee"`
}

type UpdateTaskStatusRequest struct {
	Status Status `json:"status"`
}

type ListTasksResponse struct {
	Tasks []*Task `json:"tasks"`
}

type CalendarResponse struct {
	From string        `json:"from"`
	To   string        `json:"to"`
	Days []CalendarDay `json:"days"`
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req CreateTaskRequest
	if err := cerr.DecodeJSONRequest(r, &req); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}

	now := s.now().UTC()
	t := &Task{
		ID:          ulid.Make().String(),
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Priority:    req.Priority,
		Status:      req.Status,
		DueDate:     req.DueDate,
		Assignee:    strings.TrimSpace(req.Assignee),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	if t.Status == "" {
		t.Status = StatusPending
	}
	if err := t.Validate(); err != nil {
		cerr.SetJSONError(ctx, invalidTaskError(err))
		return
	}
	if err := s.repo.Create(ctx, t); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}

	s.history.TaskCreated(ctx, t)
	s.eventBus.PublishNew(eventbus.TaskCreated, t.ID, t.Title, taskMetadata(t))
	cerr.SetJSONResponseWithStatus(ctx, http.StatusCreated, t)
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	t, err := s.repo.Get(ctx, chi.URLParam(r, "taskID"))
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, t)
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filter, err := filterFromQuery(r)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	tasks, err := s.repo.List(ctx, filter)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if tasks == nil {
		tasks = []*Task{}
	}
	cerr.SetJSONResponse(ctx, &ListTasksResponse{Tasks: tasks})
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req UpdateTaskRequest
	if err := cerr.DecodeJSONRequest(r, &req); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	t, err := s.update(ctx, chi.URLParam(r, "taskID"), func(t *Task) {
		if req.Title != nil {
			t.Title = strings.TrimSpace(*req.Title)
		}
		if req.Description != nil {
			t.Description = *req.Description
		}
		if req.Priority != nil {
			t.Priority = *req.Priority
		}
		if req.Status != nil {
			t.Status = *req.Status
		}
		if req.DueDate != nil {
			t.DueDate = *req.DueDate
		}
		if req.Assignee != nil {
			t.Assignee = strings.TrimSpace(*req.Assignee)
		}
	})
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, t)
}

func (s *Server) updateTaskStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req UpdateTaskStatusRequest
	if err := cerr.DecodeJSONRequest(r, &req); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	t, err := s.update(ctx, chi.URLParam(r, "taskID"), func(t *Task) {
		t.Status = req.Status
	})
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, t)
}

func (s *Server) update(ctx context.Context, id string, mutate func(*Task)) (*Task, error) {
	var before Task
	after, err := s.repo.Update(ctx, id, func(t *Task) error {
		before = *t
		mutate(t)
		if err := t.Validate(); err != nil {
			return invalidTaskError(err)
		}
		t.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.history.TaskUpdated(ctx, &before, after)
	s.eventBus.PublishNew(eventbus.TaskUpdated, after.ID, after.Title, taskMetadata(after))
	return after, nil
}

// invalidTaskError reports the first violation as the message and every
// violation as a detail.
func invalidTaskError(err error) *cerr.Error {
	violations := []error{err}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		violations = joined.Unwrap()
	}
	e := cerr.NewError(cerr.InvalidArgument, violations[0].Error(), err)
	for _, v := range violations {
		e.AddDetailMessage(v.Error())
	}
	return e
}

func (s *Server) calendar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	from, err := parseDate("from", q.Get("from"))
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	to, err := parseDate("to", q.Get("to"))
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}

	tasks, err := s.repo.List(ctx, Filter{DueFrom: &from, DueTo: &to})
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	days, err := Calendar(tasks, from, to)
	if err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, err.Error(), err)
		return
	}
	cerr.SetJSONResponse(ctx, &CalendarResponse{
		From: from.Format(DateLayout),
		To:   to.Format(DateLayout),
		Days: days,
	})
}

func filterFromQuery(r *http.Request) (Filter, error) {
	q := r.URL.Query()
	f := Filter{
		Status:   Status(q.Get("status")),
		Priority: Priority(q.Get("priority")),
		Assignee: q.Get("assignee"),
	}
	if f.Status != "" && !f.Status.Valid() {
		return Filter{}, cerr.NewError(cerr.InvalidArgument, fmt.Sprintf("invalid status %q", f.Status), nil)
	}
	if f.Priority != "" && !f.Priority.Valid() {
		return Filter{}, cerr.NewError(cerr.InvalidArgument, fmt.Sprintf("invalid priority %q", f.Priority), nil)
	}
	if v := q.Get("due_from"); v != "" {
		d, err := parseDate("due_from", v)
		if err != nil {
			return Filter{}, err
		}
		f.DueFrom = &d
	}
	if v := q.Get("due_to"); v != "" {
		d, err := parseDate("due_to", v)
		if err != nil {
			return Filter{}, err
		}
		f.DueTo = &d
	}
	return f, nil
}

func parseDate(name, v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, cerr.NewError(cerr.InvalidArgument, fmt.Sprintf("%s is required", name), nil)
	}
	d, err := time.Parse(DateLayout, v)
	if err != nil {
		return time.Time{}, cerr.NewError(cerr.InvalidArgument, fmt.Sprintf("%s must be YYYY-MM-DD", name), err)
	}
	return d, nil
}

func taskMetadata(t *Task) map[string]string {
	return map[string]string{
		"status":   string(t.Status),
		"priority": string(t.Priority),
		"assignee": t.Assignee,
	}
}
