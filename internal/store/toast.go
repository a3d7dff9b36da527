package store

import (
	"time"

	"example.com/ocean-notes/internal/notes"
)

// setToastLocked replaces the current notification and restarts its expiry.
// A superseded timer is stopped; if it already fired, the generation check in
// expireToast keeps it from clearing the newer notification.
func (s *Store) setToastLocked(kind notes.ToastKind, msg string) {
	s.stopToastTimerLocked()
	s.toastGen++
	s.toast = &notes.Toast{Kind: kind, Message: msg}

	if s.toastTTL <= 0 {
		return
	}
	gen := s.toastGen
	s.toastTimer = time.AfterFunc(s.toastTTL, func() { s.expireToast(gen) })
}

func (s *Store) clearToastLocked() {
	s.stopToastTimerLocked()
	s.toastGen++
	s.toast = nil
}

func (s *Store) stopToastTimerLocked() {
	if s.toastTimer != nil {
		s.toastTimer.Stop()
		s.toastTimer = nil
	}
}

func (s *Store) expireToast(gen uint64) {
	s.dispatch(func() bool {
		if s.toastGen == gen && s.toast != nil {
			s.toastTimer = nil
			s.toast = nil
		}
		return false
	})
}
