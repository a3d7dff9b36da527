package store

import (
	"example.com/ocean-notes/internal/notes"
	"example.com/ocean-notes/internal/stringsx"
)

// Notes returns the full collection in display order.
func (s *Store) Notes() []notes.Note {
	s.lock()
	defer s.mu.Unlock()
	return s.copyNotes()
}

// FilteredNotes returns the notes whose title or content contains the
// trimmed, case-folded query. An empty query matches every note.
func (s *Store) FilteredNotes() []notes.Note {
	s.lock()
	defer s.mu.Unlock()
	return filter(s.notes, s.query)
}

func filter(ns []notes.Note, query string) []notes.Note {
	q := stringsx.Normalize(query)
	out := make([]notes.Note, 0, len(ns))
	for _, n := range ns {
		if stringsx.ContainsFold(n.Title+"\n"+n.Content, q) {
			out = append(out, n)
		}
	}
	return out
}

// Note looks a note up by id.
func (s *Store) Note(id string) (notes.Note, bool) {
	s.lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.notes[i], true
	}
	return notes.Note{}, false
}

// SelectedNote returns the selected note, if the selection names one.
func (s *Store) SelectedNote() (notes.Note, bool) {
	s.lock()
	defer s.mu.Unlock()
	if !s.hasSelected {
		return notes.Note{}, false
	}
	if i := s.indexLocked(s.selected); i >= 0 {
		return s.notes[i], true
	}
	return notes.Note{}, false
}

func (s *Store) SelectedID() (string, bool) {
	s.lock()
	defer s.mu.Unlock()
	return s.selected, s.hasSelected
}

func (s *Store) Query() string {
	s.lock()
	defer s.mu.Unlock()
	return s.query
}

func (s *Store) Toast() (notes.Toast, bool) {
	s.lock()
	defer s.mu.Unlock()
	if s.toast == nil {
		return notes.Toast{}, false
	}
	return *s.toast, true
}

// Snapshot returns a copy of the whole state.
func (s *Store) Snapshot() State {
	s.lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Store) stateLocked() State {
	st := State{
		Notes: s.copyNotes(),
		Query: s.query,
	}
	if s.hasSelected {
		id := s.selected
		st.SelectedID = &id
	}
	if s.toast != nil {
		t := *s.toast
		st.Toast = &t
	}
	return st
}
