package notes

import (
	"encoding/binary"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const randLen = 10

// NewID returns a local identifier made of the current time and a random
// component, both base36 encoded: "<ms>_<random>".
func NewID() string {
	return newID(time.Now(), uuid.New())
}

func newID(now time.Time, u uuid.UUID) string {
	// The first six bytes of a v4 UUID are fully random.
	var buf [8]byte
	copy(buf[2:], u[:6])
	r := strconv.FormatUint(binary.BigEndian.Uint64(buf[:]), 36)
	if len(r) < randLen {
		r = strings.Repeat("0", randLen-len(r)) + r
	}
	return strconv.FormatInt(now.UnixMilli(), 36) + "_" + r
}
