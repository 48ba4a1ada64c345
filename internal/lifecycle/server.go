package lifecycle

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kazz187/teamboard/internal/task"
	"github.com/kazz187/teamboard/internal/trash"
	"github.com/kazz187/teamboard/pkg/cerr"
)

type Server struct {
	coord *Coordinator
	tasks task.Repository
	trash trash.Repository
}

func NewServer(coord *Coordinator, tasks task.Repository, trashRepo trash.Repository) *Server {
	return &Server{coord: coord, tasks: tasks, trash: trashRepo}
}

func (s *Server) Routes(r chi.Router) {
	r.Post("/tasks/{taskID}/trash", s.moveToTrash)
	r.Route("/trash", func(r chi.Router) {
		r.Get("/", s.listTrash)
		r.Delete("/", s.emptyTrash)
		r.Post("/{entryID}/restore", s.restore)
		r.Delete("/{entryID}", s.permanentlyDelete)
	})
}

// EntryView is a trash entry with its expiry figures computed at response
// time.
type EntryView struct {
	*trash.Entry
	DaysRemaining int  `json:"days_remaining"`
	ExpiringSoon  bool `json:"expiring_soon"`
}

func NewEntryView(e *trash.Entry, now time.Time) *EntryView {
	return &EntryView{
		Entry:         e,
		DaysRemaining: e.DaysRemaining(now),
		ExpiringSoon:  e.ExpiringSoon(now),
	}
}

type ListTrashResponse struct {
	Entries []*EntryView `json:"entries"`
}

type PermanentlyDeleteResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

type EmptyTrashResponse struct {
	Removed []*trash.Entry `json:"removed"`
}

func (s *Server) moveToTrash(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	t, err := s.tasks.Get(ctx, chi.URLParam(r, "taskID"))
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	entry, err := s.coord.MoveToTrash(ctx, t)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, NewEntryView(entry, s.coord.Now()))
}

func (s *Server) listTrash(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	entries, err := s.trash.List(ctx, nil)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	now := s.coord.Now()
	views := make([]*EntryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, NewEntryView(e, now))
	}
	cerr.SetJSONResponse(ctx, &ListTrashResponse{Entries: views})
}

func (s *Server) restore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	entry, err := s.trash.Get(ctx, chi.URLParam(r, "entryID"))
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	t, err := s.coord.Restore(ctx, entry)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, t)
}

func (s *Server) permanentlyDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "entryID")
	entry, err := s.trash.Get(ctx, id)
	if err != nil {
		if cerr.IsCode(err, cerr.NotFound) {
			cerr.SetJSONResponse(ctx, &PermanentlyDeleteResponse{ID: id})
			return
		}
		cerr.SetJSONError(ctx, err)
		return
	}
	if err := s.coord.PermanentlyDelete(ctx, entry); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, &PermanentlyDeleteResponse{ID: id, Deleted: true})
}

func (s *Server) emptyTrash(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	removed, err := s.coord.EmptyTrash(ctx)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, &EmptyTrashResponse{Removed: removed})
}
