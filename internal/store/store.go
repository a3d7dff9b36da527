// Package store owns the session's note collection, selection, search query
// and transient notification. Every action is atomic and every change to the
// collection is written through to the persistence gateway before the action
// returns.
package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"example.com/ocean-notes/internal/notes"
)

// ErrNotInitialized is raised when a Store is used without being built by New.
var ErrNotInitialized = errors.New("store: used outside of an initialized session")

const (
	WelcomeTitle   = "Welcome to Ocean Notes"
	WelcomeContent = "Create notes, pin important ones, and search instantly.\n\n" +
		"Tips:\n" +
		"• Use the sidebar search to filter by title or content\n" +
		"• Pin/unpin notes to keep them at the top\n" +
		"• Edits autosave after a short pause"

	DefaultTitle = "Untitled"

	MsgCreated = "New note created"
	MsgDeleted = "Note deleted"

	DefaultToastTTL    = 2500 * time.Millisecond
	DefaultSaveTimeout = 5 * time.Second
)

// Gateway persists the full collection.
type Gateway interface {
	Load(ctx context.Context) []notes.Note
	Save(ctx context.Context, ns []notes.Note)
}

// State is a point-in-time copy of the store.
type State struct {
	Notes      []notes.Note `json:"notes"`
	SelectedID *string      `json:"selectedId"`
	Query      string       `json:"query"`
	Toast      *notes.Toast `json:"toast"`
}

type Store struct {
	mu    sync.Mutex
	ready bool

	gw          Gateway
	log         *zap.Logger
	now         func() time.Time
	newID       func() string
	toastTTL    time.Duration
	saveTimeout time.Duration

	notes       []notes.Note
	selected    string
	hasSelected bool
	query       string

	toast      *notes.Toast
	toastGen   uint64
	toastTimer *time.Timer

	subs    map[int]func(State)
	nextSub int
}

// New loads the persisted collection and returns a ready Store. An empty
// collection is replaced by a single pinned welcome note.
func New(ctx context.Context, gw Gateway, opts ...Option) *Store {
	s := &Store{
		gw:          gw,
		log:         zap.NewNop(),
		now:         time.Now,
		newID:       notes.NewID,
		toastTTL:    DefaultToastTTL,
		saveTimeout: DefaultSaveTimeout,
		subs:        make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(s)
	}

	loaded := gw.Load(ctx)
	if len(loaded) > 0 {
		s.notes = notes.Sort(loaded)
		s.log.Info("notes loaded", zap.Int("count", len(loaded)))
	} else {
		s.notes = []notes.Note{s.welcome()}
		s.gw.Save(ctx, s.copyNotes())
		s.log.Info("storage empty, seeded welcome note")
	}
	if len(s.notes) > 0 {
		s.selected, s.hasSelected = s.notes[0].ID, true
	}

	s.ready = true
	return s
}

func (s *Store) welcome() notes.Note {
	return notes.Note{
		ID:        s.newID(),
		Title:     WelcomeTitle,
		Content:   WelcomeContent,
		UpdatedAt: notes.Millis(s.now()),
		Pinned:    true,
	}
}

// Create adds a note, selects it and queues an info notification. Nil
// arguments fall back to DefaultTitle and empty content.
func (s *Store) Create(title, content *string) notes.Note {
	n := notes.Note{
		ID:    s.mustID(),
		Title: DefaultTitle,
	}
	if title != nil {
		n.Title = *title
	}
	if content != nil {
		n.Content = *content
	}

	s.dispatch(func() bool {
		n.UpdatedAt = notes.Millis(s.now())
		s.notes = notes.Sort(append([]notes.Note{n}, s.notes...))
		s.selected, s.hasSelected = n.ID, true
		s.setToastLocked(notes.ToastInfo, MsgCreated)
		return true
	})
	return n
}

// Select points the selection at id without checking that it exists.
func (s *Store) Select(id string) {
	s.dispatch(func() bool {
		s.selected, s.hasSelected = id, true
		return false
	})
}

// SetQuery stores the search text verbatim.
func (s *Store) SetQuery(q string) {
	s.dispatch(func() bool {
		s.query = q
		return false
	})
}

// Update merges p into the note with the given id. Unknown ids are ignored.
func (s *Store) Update(id string, p notes.Patch) {
	s.dispatch(func() bool {
		i := s.indexLocked(id)
		if i < 0 {
			return false
		}
		next := make([]notes.Note, len(s.notes))
		copy(next, s.notes)
		next[i] = p.Apply(next[i], notes.Millis(s.now()))
		s.notes = notes.Sort(next)
		return true
	})
}

// TogglePin flips the pinned flag of a note. UpdatedAt is left untouched.
func (s *Store) TogglePin(id string) {
	s.dispatch(func() bool {
		i := s.indexLocked(id)
		if i < 0 {
			return false
		}
		next := make([]notes.Note, len(s.notes))
		copy(next, s.notes)
		next[i].Pinned = !next[i].Pinned
		s.notes = notes.Sort(next)
		return true
	})
}

// Delete removes a note and queues a warning notification. When the removed
// note was selected, the selection moves to the first remaining note.
func (s *Store) Delete(id string) {
	s.dispatch(func() bool {
		next := make([]notes.Note, 0, len(s.notes))
		for _, n := range s.notes {
			if n.ID != id {
				next = append(next, n)
			}
		}
		changed := len(next) != len(s.notes)
		s.notes = next

		if s.hasSelected && s.selected == id {
			if len(next) > 0 {
				s.selected = next[0].ID
			} else {
				s.selected, s.hasSelected = "", false
			}
		}
		s.setToastLocked(notes.ToastWarn, MsgDeleted)
		return changed
	})
}

// ClearToast drops the current notification and cancels its expiry.
func (s *Store) ClearToast() {
	s.dispatch(func() bool {
		s.clearToastLocked()
		return false
	})
}

// Subscribe registers fn to receive a State copy after every action.
// The returned func removes the subscription.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// dispatch runs fn under the lock, writes the collection through when fn
// reports a change and then notifies subscribers outside the lock.
func (s *Store) dispatch(fn func() (notesChanged bool)) {
	s.lock()
	if fn() {
		ctx, cancel := context.WithTimeout(context.Background(), s.saveTimeout)
		s.gw.Save(ctx, s.copyNotes())
		cancel()
	}
	st := s.stateLocked()
	subs := make([]func(State), 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub(st)
	}
}

func (s *Store) lock() {
	if s == nil || !s.ready {
		panic(ErrNotInitialized)
	}
	s.mu.Lock()
}

func (s *Store) mustID() string {
	if s == nil || !s.ready {
		panic(ErrNotInitialized)
	}
	return s.newID()
}

func (s *Store) indexLocked(id string) int {
	for i, n := range s.notes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) copyNotes() []notes.Note {
	out := make([]notes.Note, len(s.notes))
	copy(out, s.notes)
	return out
}
