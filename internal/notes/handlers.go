package notes

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type Handlers struct {
	store  Store
	drafts Drafts
}

// Store is the note store as seen by the HTTP layer.
// It allows unit-testing handlers without a real session.
type Store interface {
	Create(title, content *string) Note
	Select(id string)
	SetQuery(q string)
	Update(id string, p Patch)
	TogglePin(id string)
	Delete(id string)
	ClearToast()

	Note(id string) (Note, bool)
	FilteredNotes() []Note
	SelectedNote() (Note, bool)
	Query() string
	Toast() (Toast, bool)

	// Subscribe calls fn after every action until unsubscribe is called.
	Subscribe(fn func()) (unsubscribe func())
}

// Drafts receives keystroke-level edits and commits them after a quiet period.
type Drafts interface {
	Open(id string)
	NoteID() string
	EditTitle(v string)
	EditContent(v string)
}

func NewHandlers(store Store, drafts Drafts) *Handlers {
	return &Handlers{store: store, drafts: drafts}
}

func (h *Handlers) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/notes", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.get)
			r.Patch("/", h.update)
			r.Delete("/", h.delete)
			r.Post("/pin", h.togglePin)
			r.Put("/draft", h.draft)
		})
	})

	r.Get("/selection", h.selection)
	r.Put("/selection", h.selectNote)
	r.Put("/query", h.setQuery)
	r.Get("/toast", h.toast)
	r.Delete("/toast", h.clearToast)
	r.Get("/events", h.events)

	return r
}

// list returns the notes matching the session query. The query itself is
// only changed through PUT /query.
func (h *Handlers) list(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"items": h.store.FilteredNotes(),
		"query": h.store.Query(),
	})
}

func (h *Handlers) create(w http.ResponseWriter, r *http.Request) {
	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	n := h.store.Create(req.Title, req.Content)
	h.drafts.Open(n.ID)
	writeJSON(w, http.StatusCreated, n)
}

func (h *Handlers) get(w http.ResponseWriter, r *http.Request) {
	n, ok := h.store.Note(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *Handlers) update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var p Patch
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if p.IsZero() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "empty patch"})
		return
	}

	h.store.Update(id, p)
	h.writeNote(w, id)
}

func (h *Handlers) togglePin(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.store.TogglePin(id)
	h.writeNote(w, id)
}

func (h *Handlers) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if h.drafts.NoteID() == id {
		h.drafts.Open("")
	}
	h.store.Delete(id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) draft(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req DraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.Title == nil && req.Content == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title or content required"})
		return
	}
	if _, ok := h.store.Note(id); !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}

	if h.drafts.NoteID() != id {
		h.store.Select(id)
		h.drafts.Open(id)
	}
	if req.Title != nil {
		h.drafts.EditTitle(*req.Title)
	}
	if req.Content != nil {
		h.drafts.EditContent(*req.Content)
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handlers) selection(w http.ResponseWriter, r *http.Request) {
	n, ok := h.store.SelectedNote()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *Handlers) selectNote(w http.ResponseWriter, r *http.Request) {
	var req SelectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	h.store.Select(req.ID)
	h.drafts.Open(req.ID)
	h.selection(w, r)
}

func (h *Handlers) setQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	h.store.SetQuery(req.Query)
	writeJSON(w, http.StatusOK, map[string]any{
		"items": h.store.FilteredNotes(),
		"query": h.store.Query(),
	})
}

func (h *Handlers) toast(w http.ResponseWriter, r *http.Request) {
	t, ok := h.store.Toast()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *Handlers) clearToast(w http.ResponseWriter, r *http.Request) {
	h.store.ClearToast()
	w.WriteHeader(http.StatusNoContent)
}

// ViewState is what a connected client renders.
type ViewState struct {
	Items    []Note `json:"items"`
	Query    string `json:"query"`
	Selected *Note  `json:"selected"`
	Toast    *Toast `json:"toast"`
}

func (h *Handlers) view() ViewState {
	v := ViewState{
		Items: h.store.FilteredNotes(),
		Query: h.store.Query(),
	}
	if n, ok := h.store.SelectedNote(); ok {
		v.Selected = &n
	}
	if t, ok := h.store.Toast(); ok {
		v.Toast = &t
	}
	return v
}

// events streams the view as server-sent events: once on connect and again
// after every store action. Bursts of actions coalesce into one event.
func (h *Handlers) events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "streaming unsupported"})
		return
	}

	changed := make(chan struct{}, 1)
	unsubscribe := h.store.Subscribe(func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	for {
		data, err := json.Marshal(h.view())
		if err != nil {
			return
		}
		if _, err := fmt.Fprintf(w, "event: state\ndata: %s\n\n", data); err != nil {
			return
		}
		flusher.Flush()

		select {
		case <-r.Context().Done():
			return
		case <-changed:
		}
	}
}

// writeNote answers with the note after a no-op-tolerant action.
func (h *Handlers) writeNote(w http.ResponseWriter, id string) {
	n, ok := h.store.Note(id)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
