package notes

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

// StorageKey is the fixed slot key holding the note snapshot.
const StorageKey = "ocean_notes_v1"

// Slot is a durable key-value slot on the local device.
type Slot interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Gateway reads and writes the full note collection to a Slot.
// It never reports storage failures to its callers: a broken slot loads as an
// empty collection and failed writes are only logged.
type Gateway struct {
	slot Slot
	key  string
	now  func() time.Time
	log  *zap.Logger
}

type GatewayOption func(*Gateway)

// WithKey overrides StorageKey.
func WithKey(key string) GatewayOption {
	return func(g *Gateway) { g.key = key }
}

func WithGatewayClock(now func() time.Time) GatewayOption {
	return func(g *Gateway) { g.now = now }
}

func WithGatewayLogger(l *zap.Logger) GatewayOption {
	return func(g *Gateway) { g.log = l }
}

func NewGateway(slot Slot, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		slot: slot,
		key:  StorageKey,
		now:  time.Now,
		log:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Load returns the stored collection, or an empty slice when the slot is
// missing, unreadable or malformed.
func (g *Gateway) Load(ctx context.Context) []Note {
	raw, err := g.slot.Get(ctx, g.key)
	if err != nil {
		g.log.Debug("snapshot unavailable", zap.String("key", g.key), zap.Error(err))
		return []Note{}
	}
	return decodeSnapshot(raw, Millis(g.now()))
}

// Save replaces the stored snapshot with ns. Failures are logged and dropped.
func (g *Gateway) Save(ctx context.Context, ns []Note) {
	if ns == nil {
		ns = []Note{}
	}
	data, err := json.Marshal(ns)
	if err != nil {
		g.log.Warn("encode snapshot", zap.Error(err))
		return
	}
	if err := g.slot.Set(ctx, g.key, data); err != nil {
		g.log.Warn("write snapshot", zap.String("key", g.key), zap.Int("notes", len(ns)), zap.Error(err))
	}
}

func decodeSnapshot(raw []byte, now int64) []Note {
	if len(bytes.TrimSpace(raw)) == 0 || !utf8.Valid(raw) {
		return []Note{}
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return []Note{}
	}

	out := make([]Note, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		var obj map[string]any
		if err := json.Unmarshal(e, &obj); err != nil || obj == nil {
			continue
		}
		id, ok := obj["id"].(string)
		if !ok {
			continue
		}
		// First occurrence wins.
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		n := Note{ID: id, UpdatedAt: now}
		n.Title, _ = obj["title"].(string)
		n.Content, _ = obj["content"].(string)
		if v, ok := obj["updatedAt"].(float64); ok {
			n.UpdatedAt = clampMillis(v)
		}
		n.Pinned = truthy(obj["pinned"])
		out = append(out, n)
	}
	return out
}

// clampMillis converts a decoded JSON number to int64, saturating at the
// int64 bounds instead of overflowing.
func clampMillis(v float64) int64 {
	switch {
	case v >= math.MaxInt64:
		return math.MaxInt64
	case v <= math.MinInt64:
		return math.MinInt64
	}
	return int64(v)
}

// truthy coerces a decoded JSON value to a bool the lenient way: zero values
// are false, everything else is true.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		return x != ""
	default:
		return true
	}
}
