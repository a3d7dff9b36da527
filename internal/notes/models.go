package notes

import "time"

// Note is the persisted unit of user content. UpdatedAt is milliseconds since epoch.
type Note struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	UpdatedAt int64  `json:"updatedAt"`
	Pinned    bool   `json:"pinned"`
}

// Patch is a partial update of a Note. Nil fields are left untouched.
type Patch struct {
	Title     *string `json:"title,omitempty"`
	Content   *string `json:"content,omitempty"`
	Pinned    *bool   `json:"pinned,omitempty"`
	UpdatedAt *int64  `json:"updatedAt,omitempty"`
}

// Apply merges the present fields of p into n. UpdatedAt becomes now unless
// the patch carries its own value.
func (p Patch) Apply(n Note, now int64) Note {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Content != nil {
		n.Content = *p.Content
	}
	if p.Pinned != nil {
		n.Pinned = *p.Pinned
	}
	if p.UpdatedAt != nil {
		n.UpdatedAt = *p.UpdatedAt
	} else {
		n.UpdatedAt = now
	}
	return n
}

// IsZero reports whether the patch carries no fields at all.
func (p Patch) IsZero() bool {
	return p.Title == nil && p.Content == nil && p.Pinned == nil && p.UpdatedAt == nil
}

type ToastKind string

const (
	ToastInfo  ToastKind = "info"
	ToastWarn  ToastKind = "warn"
	ToastError ToastKind = "error"
)

// Toast is a transient notification shown to the user.
type Toast struct {
	Kind    ToastKind `json:"kind"`
	Message string    `json:"message"`
}

type CreateNoteRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

type DraftRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

type SelectRequest struct {
	ID string `json:"id"`
}

type QueryRequest struct {
	Query string `json:"query"`
}

// Ptr returns a pointer to v. Handy for building patches.
func Ptr[T any](v T) *T {
	return &v
}

// Millis converts t to milliseconds since epoch.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}
