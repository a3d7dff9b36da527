// Package editor turns keystroke-level edits into discrete note updates.
// Each edited field has its own deferred commit; only the value present when
// the quiet period elapses reaches the store.
package editor

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"example.com/ocean-notes/internal/notes"
)

// Target is the part of the store a Session writes to.
type Target interface {
	Note(id string) (notes.Note, bool)
	Update(id string, p notes.Patch)
}

// Session edits one note at a time. Opening another note cancels whatever
// the previous one still had pending.
type Session struct {
	mu      sync.Mutex
	target  Target
	log     *zap.Logger
	noteID  string
	title   *Debouncer
	content *Debouncer
}

func NewSession(target Target, delay time.Duration, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{
		target:  target,
		log:     log,
		title:   NewDebouncer(delay),
		content: NewDebouncer(delay),
	}
}

// Open switches the session to note id. Pending commits for the previous
// note are dropped. An empty id closes the session.
func (s *Session) Open(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.noteID != id {
		s.cancelLocked()
	}
	s.noteID = id
}

func (s *Session) NoteID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.noteID
}

func (s *Session) EditTitle(v string) {
	s.edit(s.title, v, func(p *notes.Patch) { p.Title = &v }, func(n notes.Note) string { return n.Title })
}

func (s *Session) EditContent(v string) {
	s.edit(s.content, v, func(p *notes.Patch) { p.Content = &v }, func(n notes.Note) string { return n.Content })
}

func (s *Session) edit(d *Debouncer, v string, set func(*notes.Patch), current func(notes.Note) string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.noteID
	if id == "" {
		return
	}

	d.Schedule(func() {
		n, ok := s.target.Note(id)
		if !ok || current(n) == v {
			return
		}
		var p notes.Patch
		set(&p)
		s.target.Update(id, p)
		s.log.Debug("autosave committed", zap.String("id", id))
	})
}

// Pending reports whether any field still waits for its quiet period.
func (s *Session) Pending() bool {
	return s.title.Pending() || s.content.Pending()
}

// Flush commits pending edits immediately.
func (s *Session) Flush() {
	s.title.Flush()
	s.content.Flush()
}

// Close drops pending edits and detaches from the current note.
func (s *Session) Close() {
	s.Open("")
}

func (s *Session) cancelLocked() {
	dropped := s.title.Cancel()
	dropped = s.content.Cancel() || dropped
	if dropped {
		s.log.Debug("pending autosave cancelled", zap.String("id", s.noteID))
	}
}
