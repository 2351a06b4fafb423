// internal/common/idgen/idgen.go
package idgen

import (
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Generator hands out identifiers for emitted patterns and gaps.
type Generator interface {
	New(prefix string) string
}

// UUID prefixes a random v4 UUID: "gap_3f0c...".
type UUID struct{}

func (UUID) New(prefix string) string {
	if prefix == "" {
		return uuid.NewString()
	}
	return prefix + "_" + uuid.NewString()
}

// Deterministic derives name-based (v5) UUIDs from a seed and a counter so
// repeated runs over the same input produce the same identifiers.
type Deterministic struct {
	namespace uuid.UUID
	mu        sync.Mutex
	n         int
}

func NewDeterministic(seed string) *Deterministic {
	return &Deterministic{namespace: uuid.NewSHA1(uuid.NameSpaceOID, []byte(seed))}
}

func (d *Deterministic) New(prefix string) string {
	d.mu.Lock()
	d.n++
	n := d.n
	d.mu.Unlock()
	id := uuid.NewSHA1(d.namespace, []byte(prefix+"#"+strconv.Itoa(n))).String()
	if prefix == "" {
		return id
	}
	return prefix + "_" + id
}

var stableNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("citation-intelligence/ids"))

// Stable derives an identifier from its parts alone, so the same finding
// yields the same id on every run.
func Stable(prefix string, parts ...string) string {
	return prefix + "_" + uuid.NewSHA1(stableNamespace, []byte(strings.Join(parts, "\x1f"))).String()
}
