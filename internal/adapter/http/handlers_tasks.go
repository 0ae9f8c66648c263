package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/progressor-app/progressor/internal/domain/task"
	"github.com/progressor-app/progressor/internal/middleware"
)

const defaultTaskPageSize = 50

// ListTasks handles GET /api/v1/tasks
//
// Query parameters: status and priority accept comma-separated values,
// due accepts "today" or an RFC 3339 date, missed=true selects overdue
// open tasks, search matches title substrings, limit caps the page.
func (h *Handlers) ListTasks(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	f, ok := taskFilterFromQuery(w, r)
	if !ok {
		return
	}

	tasks, err := h.Store.ListTasks(r.Context(), userID, f)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks, "count": len(tasks)})
}

func taskFilterFromQuery(w http.ResponseWriter, r *http.Request) (task.Filter, bool) {
	q := r.URL.Query()
	f := task.Filter{Limit: defaultTaskPageSize}

	for _, s := range splitParam(q.Get("status")) {
		switch st := task.Status(s); st {
		case task.StatusPending, task.StatusInProgress, task.StatusCompleted:
			f.Statuses = append(f.Statuses, st)
		default:
			writeError(w, http.StatusBadRequest, "invalid status "+strconv.Quote(s))
			return f, false
		}
	}

	for _, p := range splitParam(q.Get("priority")) {
		switch pr := task.Priority(p); pr {
		case task.PriorityVeryLow, task.PriorityLow, task.PriorityNormal,
			task.PriorityHigh, task.PriorityVeryHigh:
			f.Priorities = append(f.Priorities, pr)
		default:
			writeError(w, http.StatusBadRequest, "invalid priority "+strconv.Quote(p))
			return f, false
		}
	}

	if due := q.Get("due"); due != "" {
		if due == "today" {
			now := time.Now()
			f.DueOn = &now
		} else {
			day, err := time.Parse("2006-01-02", due)
			if err != nil {
				writeError(w, http.StatusBadRequest, "due must be 'today' or YYYY-MM-DD")
				return f, false
			}
			f.DueOn = &day
		}
	}

	if q.Get("missed") == "true" {
		now := time.Now()
		f.MissedBefore = &now
	}

	f.TitleContains = q.Get("search")

	if limit := q.Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return f, false
		}
		f.Limit = n
	}

	return f, true
}

func splitParam(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// CreateTask handles POST /api/v1/tasks
func (h *Handlers) CreateTask(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	req, ok := readJSON[task.CreateRequest](w, r)
	if !ok {
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	t, err := h.Store.CreateTask(r.Context(), userID, req)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// GetTask handles GET /api/v1/tasks/{id}
func (h *Handlers) GetTask(w http.ResponseWriter, r *http.Request) {
	t, ok := h.ownedTask(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// UpdateTaskStatus handles PATCH /api/v1/tasks/{id}/status
//
// Moving a task to in_progress stamps its start date; completing it
// stamps the completion date. The store owns that bookkeeping.
func (h *Handlers) UpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	t, ok := h.ownedTask(w, r)
	if !ok {
		return
	}

	req, ok := readJSON[struct {
		Status task.Status `json:"status"`
	}](w, r)
	if !ok {
		return
	}
	switch req.Status {
	case task.StatusPending, task.StatusInProgress, task.StatusCompleted:
	default:
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}

	if err := h.Store.UpdateTaskStatus(r.Context(), t.ID, req.Status); err != nil {
		writeDomainError(w, err, "task not found")
		return
	}

	updated, err := h.Store.GetTask(r.Context(), t.ID)
	if err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteTask handles DELETE /api/v1/tasks/{id}
func (h *Handlers) DeleteTask(w http.ResponseWriter, r *http.Request) {
	t, ok := h.ownedTask(w, r)
	if !ok {
		return
	}
	if err := h.Store.DeleteTask(r.Context(), t.ID); err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ownedTask loads the task from the path and enforces ownership.
// Foreign tasks read as 404 rather than 403 to avoid leaking IDs.
func (h *Handlers) ownedTask(w http.ResponseWriter, r *http.Request) (*task.Task, bool) {
	userID := middleware.UserIDFromContext(r.Context())
	id := urlParam(r, "id")

	t, err := h.Store.GetTask(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, "task not found")
		return nil, false
	}
	if t.UserID != userID {
		writeError(w, http.StatusNotFound, "task not found")
		return nil, false
	}
	return t, true
}
