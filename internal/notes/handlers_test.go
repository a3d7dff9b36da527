package notes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type stubStore struct {
	createFn     func(*string, *string) Note
	selectFn     func(string)
	setQueryFn   func(string)
	updateFn     func(string, Patch)
	togglePinFn  func(string)
	deleteFn     func(string)
	clearToastFn func()
	noteFn       func(string) (Note, bool)
	filteredFn   func() []Note
	selectedFn   func() (Note, bool)
	queryFn      func() string
	toastFn      func() (Toast, bool)
	subscribeFn  func(func()) func()
}

func (s stubStore) Create(title, content *string) Note { return s.createFn(title, content) }
func (s stubStore) Select(id string)                   { s.selectFn(id) }
func (s stubStore) SetQuery(q string)                  { s.setQueryFn(q) }
func (s stubStore) Update(id string, p Patch)          { s.updateFn(id, p) }
func (s stubStore) TogglePin(id string)                { s.togglePinFn(id) }
func (s stubStore) Delete(id string)                   { s.deleteFn(id) }
func (s stubStore) ClearToast()                        { s.clearToastFn() }
func (s stubStore) Note(id string) (Note, bool)        { return s.noteFn(id) }
func (s stubStore) FilteredNotes() []Note              { return s.filteredFn() }
func (s stubStore) SelectedNote() (Note, bool)         { return s.selectedFn() }
func (s stubStore) Query() string                      { return s.queryFn() }
func (s stubStore) Toast() (Toast, bool)               { return s.toastFn() }
func (s stubStore) Subscribe(fn func()) func()         { return s.subscribeFn(fn) }

type stubDrafts struct {
	opened  []string
	current string
	titles  []string
	bodies  []string
}

func (d *stubDrafts) Open(id string)       { d.opened = append(d.opened, id); d.current = id }
func (d *stubDrafts) NoteID() string       { return d.current }
func (d *stubDrafts) EditTitle(v string)   { d.titles = append(d.titles, v) }
func (d *stubDrafts) EditContent(v string) { d.bodies = append(d.bodies, v) }

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHandlers_Health(t *testing.T) {
	h := NewHandlers(stubStore{}, &stubDrafts{}).Routes()
	rr := do(t, h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestHandlers_Create(t *testing.T) {
	t.Run("invalid json", func(t *testing.T) {
		h := NewHandlers(stubStore{}, &stubDrafts{}).Routes()
		rr := do(t, h, http.MethodPost, "/notes/", "{")
		require.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("empty body uses defaults", func(t *testing.T) {
		drafts := &stubDrafts{}
		h := NewHandlers(stubStore{
			createFn: func(title, content *string) Note {
				require.Nil(t, title)
				require.Nil(t, content)
				return Note{ID: "n1", Title: "Untitled"}
			},
		}, drafts).Routes()

		rr := do(t, h, http.MethodPost, "/notes/", "")
		require.Equal(t, http.StatusCreated, rr.Code)
		var got Note
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
		require.Equal(t, "n1", got.ID)
		require.Equal(t, []string{"n1"}, drafts.opened)
	})

	t.Run("overrides", func(t *testing.T) {
		h := NewHandlers(stubStore{
			createFn: func(title, content *string) Note {
				require.Equal(t, "Groceries", *title)
				require.Nil(t, content)
				return Note{ID: "n2", Title: *title}
			},
		}, &stubDrafts{}).Routes()

		rr := do(t, h, http.MethodPost, "/notes/", `{"title":"Groceries"}`)
		require.Equal(t, http.StatusCreated, rr.Code)
	})
}

func TestHandlers_Get_Success_And_NotFound(t *testing.T) {
	h := NewHandlers(stubStore{
		noteFn: func(id string) (Note, bool) {
			if id == "42" {
				return Note{ID: "42", Title: "t"}, true
			}
			return Note{}, false
		},
	}, &stubDrafts{}).Routes()

	rr := do(t, h, http.MethodGet, "/notes/42", "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, h, http.MethodGet, "/notes/999", "")
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandlers_Update_Pin_Delete(t *testing.T) {
	var patched Patch
	var pinned, deleted string
	drafts := &stubDrafts{current: "1"}

	h := NewHandlers(stubStore{
		updateFn:    func(_ string, p Patch) { patched = p },
		togglePinFn: func(id string) { pinned = id },
		deleteFn:    func(id string) { deleted = id },
		noteFn: func(id string) (Note, bool) {
			if id == "1" {
				return Note{ID: "1", Title: "t2"}, true
			}
			return Note{}, false
		},
	}, drafts).Routes()

	// update invalid json
	rr := do(t, h, http.MethodPatch, "/notes/1", "{")
	require.Equal(t, http.StatusBadRequest, rr.Code)

	// empty patch
	rr = do(t, h, http.MethodPatch, "/notes/1", "{}")
	require.Equal(t, http.StatusBadRequest, rr.Code)

	// update success
	rr = do(t, h, http.MethodPatch, "/notes/1", `{"title":"t2"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "t2", *patched.Title)
	require.Nil(t, patched.Content)

	// update unknown id is a silent no-op
	rr = do(t, h, http.MethodPatch, "/notes/nope", `{"title":"x"}`)
	require.Equal(t, http.StatusNoContent, rr.Code)

	// pin
	rr = do(t, h, http.MethodPost, "/notes/1/pin", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "1", pinned)

	// delete closes the open draft
	rr = do(t, h, http.MethodDelete, "/notes/1", "")
	require.Equal(t, http.StatusNoContent, rr.Code)
	require.Equal(t, "1", deleted)
	require.Equal(t, "", drafts.NoteID())
}

func TestHandlers_List_And_Query(t *testing.T) {
	query := ""
	h := NewHandlers(stubStore{
		setQueryFn: func(q string) { query = q },
		queryFn:    func() string { return query },
		filteredFn: func() []Note { return []Note{{ID: "2", Title: "a"}} },
	}, &stubDrafts{}).Routes()

	rr := do(t, h, http.MethodPut, "/query", `{"query":"  Milk "}`)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "  Milk ", query)

	// listing never changes the session query, even when q is passed
	rr = do(t, h, http.MethodGet, "/notes?q=groc", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "  Milk ", query)

	var resp struct {
		Items []Note `json:"items"`
		Query string `json:"query"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Len(t, resp.Items, 1)
	require.Equal(t, "  Milk ", resp.Query)

	rr = do(t, h, http.MethodPut, "/query", "{")
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandlers_Selection(t *testing.T) {
	selected := ""
	drafts := &stubDrafts{}
	h := NewHandlers(stubStore{
		selectFn: func(id string) { selected = id },
		selectedFn: func() (Note, bool) {
			if selected == "" {
				return Note{}, false
			}
			return Note{ID: selected}, true
		},
	}, drafts).Routes()

	rr := do(t, h, http.MethodGet, "/selection", "")
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = do(t, h, http.MethodPut, "/selection", `{"id":"7"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "7", selected)
	require.Equal(t, []string{"7"}, drafts.opened)
}

func TestHandlers_Draft(t *testing.T) {
	var selected []string
	drafts := &stubDrafts{current: "a"}
	h := NewHandlers(stubStore{
		selectFn: func(id string) { selected = append(selected, id) },
		noteFn: func(id string) (Note, bool) {
			return Note{ID: id}, id == "a" || id == "b"
		},
	}, drafts).Routes()

	rr := do(t, h, http.MethodPut, "/notes/a/draft", `{}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, http.MethodPut, "/notes/zzz/draft", `{"title":"x"}`)
	require.Equal(t, http.StatusNotFound, rr.Code)

	// same note: no reselect
	rr = do(t, h, http.MethodPut, "/notes/a/draft", `{"title":"Gro"}`)
	require.Equal(t, http.StatusAccepted, rr.Code)
	require.Empty(t, selected)
	require.Equal(t, []string{"Gro"}, drafts.titles)

	// other note: select + open before editing
	rr = do(t, h, http.MethodPut, "/notes/b/draft", `{"content":"body"}`)
	require.Equal(t, http.StatusAccepted, rr.Code)
	require.Equal(t, []string{"b"}, selected)
	require.Equal(t, []string{"b"}, drafts.opened)
	require.Equal(t, []string{"body"}, drafts.bodies)
}

func TestHandlers_Toast(t *testing.T) {
	current := &Toast{Kind: ToastInfo, Message: "New note created"}
	h := NewHandlers(stubStore{
		toastFn: func() (Toast, bool) {
			if current == nil {
				return Toast{}, false
			}
			return *current, true
		},
		clearToastFn: func() { current = nil },
	}, &stubDrafts{}).Routes()

	rr := do(t, h, http.MethodGet, "/toast", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"kind":"info","message":"New note created"}`, rr.Body.String())

	rr = do(t, h, http.MethodDelete, "/toast", "")
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = do(t, h, http.MethodGet, "/toast", "")
	require.Equal(t, http.StatusNoContent, rr.Code)
}

func TestHandlers_Events(t *testing.T) {
	subscribed := make(chan func(), 1)
	var views atomic.Int32
	var unsubscribed atomic.Bool

	h := NewHandlers(stubStore{
		subscribeFn: func(fn func()) func() {
			subscribed <- fn
			return func() { unsubscribed.Store(true) }
		},
		filteredFn: func() []Note { return []Note{{ID: "1", Title: "a"}} },
		queryFn: func() string {
			views.Add(1)
			return "q"
		},
		selectedFn: func() (Note, bool) { return Note{ID: "1"}, true },
		toastFn:    func() (Toast, bool) { return Toast{}, false },
	}, &stubDrafts{}).Routes()

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	rr := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		h.ServeHTTP(rr, req)
		close(done)
	}()

	notify := <-subscribed
	require.Eventually(t, func() bool { return views.Load() == 1 }, time.Second, 5*time.Millisecond)

	notify()
	require.Eventually(t, func() bool { return views.Load() == 2 }, time.Second, 5*time.Millisecond)

	cancel()
	<-done
	require.True(t, unsubscribed.Load())
	require.Equal(t, "text/event-stream", rr.Header().Get("Content-Type"))

	body := rr.Body.String()
	require.Equal(t, 2, strings.Count(body, "event: state\n"))
	require.Contains(t, body, `"selected":{"id":"1"`)
	require.Contains(t, body, `"toast":null`)
}
