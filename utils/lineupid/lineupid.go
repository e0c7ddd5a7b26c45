package lineupid

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Prefixes for every entity family. The prefix makes ids self-describing in
// logs and API payloads.
const (
	PrefixVideo    = "vid"
	PrefixDetail   = "img"
	PrefixMap      = "map"
	PrefixCategory = "cat"
	PrefixSection  = "sec"
	PrefixCallout  = "pin"
	PrefixComment  = "cmt"
	PrefixFavorite = "fav"
)

var (
	entropyOnce sync.Once
	entropy     *ulid.MonotonicEntropy
)

func newEntropy() *ulid.MonotonicEntropy {
	entropyOnce.Do(func() {
		source := rand.NewSource(time.Now().UnixNano())
		entropy = ulid.Monotonic(rand.New(source), 0)
	})
	return entropy
}

// New returns a prefixed ULID string, e.g. "vid_01h9...".
func New(prefix string) string {
	id := ulid.MustNew(ulid.Timestamp(time.Now()), newEntropy())
	return prefix + "_" + strings.ToLower(id.String())
}

// IsValid reports whether value is a ULID carrying the given prefix.
func IsValid(prefix, value string) bool {
	if !strings.HasPrefix(value, prefix+"_") {
		return false
	}
	_, err := Parse(value)
	return err == nil
}

// Parse strips any known prefix and returns the ULID.
func Parse(value string) (ulid.ULID, error) {
	value = strings.TrimSpace(value)
	idx := strings.IndexByte(value, '_')
	if idx < 0 {
		return ulid.ULID{}, fmt.Errorf("lineupid: missing prefix in %q", value)
	}
	return ulid.Parse(strings.ToUpper(value[idx+1:]))
}
