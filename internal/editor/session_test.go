package editor

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/ocean-notes/internal/notes"
)

type update struct {
	id    string
	patch notes.Patch
}

type fakeTarget struct {
	mu      sync.Mutex
	notes   map[string]notes.Note
	updates []update
}

func newFakeTarget(ns ...notes.Note) *fakeTarget {
	f := &fakeTarget{notes: map[string]notes.Note{}}
	for _, n := range ns {
		f.notes[n.ID] = n
	}
	return f
}

func (f *fakeTarget) Note(id string) (notes.Note, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notes[id]
	return n, ok
}

func (f *fakeTarget) Update(id string, p notes.Patch) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, update{id: id, patch: p})
	if n, ok := f.notes[id]; ok {
		f.notes[id] = p.Apply(n, 0)
	}
}

func (f *fakeTarget) snapshot() []update {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]update, len(f.updates))
	copy(out, f.updates)
	return out
}

func TestSession_CommitsLastValueAfterQuietPeriod(t *testing.T) {
	target := newFakeTarget(notes.Note{ID: "a", Title: "Untitled"})
	s := NewSession(target, 30*time.Millisecond, nil)
	s.Open("a")

	s.EditTitle("G")
	s.EditTitle("Gro")
	s.EditTitle("Groceries")
	s.EditContent("milk")

	require.Eventually(t, func() bool { return len(target.snapshot()) == 2 }, time.Second, 5*time.Millisecond)
	n, _ := target.Note("a")
	require.Equal(t, "Groceries", n.Title)
	require.Equal(t, "milk", n.Content)

	for _, u := range target.snapshot() {
		require.Equal(t, "a", u.id)
		require.False(t, u.patch.Title != nil && u.patch.Content != nil, "fields commit independently")
	}
}

func TestSession_SkipsUnchangedValue(t *testing.T) {
	target := newFakeTarget(notes.Note{ID: "a", Title: "Same"})
	s := NewSession(target, time.Hour, nil)
	s.Open("a")

	s.EditTitle("Same")
	s.Flush()
	require.Empty(t, target.snapshot())
}

func TestSession_SwitchingNotesCancelsPending(t *testing.T) {
	target := newFakeTarget(notes.Note{ID: "a"}, notes.Note{ID: "b"})
	s := NewSession(target, 30*time.Millisecond, nil)

	s.Open("a")
	s.EditTitle("meant for a")
	require.True(t, s.Pending())
	s.Open("b")
	require.False(t, s.Pending())
	require.Equal(t, "b", s.NoteID())

	time.Sleep(80 * time.Millisecond)
	require.Empty(t, target.snapshot())

	s.EditContent("meant for b")
	require.Eventually(t, func() bool { return len(target.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
	require.Equal(t, "b", target.snapshot()[0].id)
}

func TestSession_ReopenSameNoteKeepsPending(t *testing.T) {
	target := newFakeTarget(notes.Note{ID: "a"})
	s := NewSession(target, time.Hour, nil)
	s.Open("a")
	s.EditTitle("x")
	s.Open("a")
	require.True(t, s.Pending())
}

func TestSession_CloseAndNoNote(t *testing.T) {
	target := newFakeTarget(notes.Note{ID: "a"})
	s := NewSession(target, time.Hour, nil)

	s.EditTitle("ignored")
	require.False(t, s.Pending())

	s.Open("a")
	s.EditTitle("x")
	s.Close()
	require.False(t, s.Pending())
	require.Equal(t, "", s.NoteID())
	s.Flush()
	require.Empty(t, target.snapshot())
}

func TestSession_DeletedNoteIsNotRecreated(t *testing.T) {
	target := newFakeTarget()
	s := NewSession(target, time.Hour, nil)
	s.Open("gone")
	s.EditContent("x")
	s.Flush()
	require.Empty(t, target.snapshot())
}
