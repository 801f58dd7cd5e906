package cardstatsdomain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ScopeKind tags which level of the event hierarchy a Scope refers to.
type ScopeKind string

const (
	ScopeEvent ScopeKind = "event"
	ScopeMeta  ScopeKind = "meta"
	ScopeGroup ScopeKind = "group"
)

// Valid reports whether k is one of the known scope kinds.
func (k ScopeKind) Valid() bool {
	switch k {
	case ScopeEvent, ScopeMeta, ScopeGroup:
		return true
	}
	return false
}

// Scope identifies one event, meta or tournament group.
type Scope struct {
	Kind ScopeKind
	ID   uuid.UUID
}

func EventScope(id uuid.UUID) Scope { return Scope{Kind: ScopeEvent, ID: id} }
func MetaScope(id uuid.UUID) Scope  { return Scope{Kind: ScopeMeta, ID: id} }
func GroupScope(id uuid.UUID) Scope { return Scope{Kind: ScopeGroup, ID: id} }

func (s Scope) String() string {
	return string(s.Kind) + ":" + s.ID.String()
}

// ParseScope parses the "kind:uuid" form produced by Scope.String.
func ParseScope(raw string) (Scope, error) {
	kind, id, ok := strings.Cut(strings.TrimSpace(raw), ":")
	if !ok {
		return Scope{}, fmt.Errorf("invalid scope %q: expected kind:id", raw)
	}
	k := ScopeKind(strings.ToLower(kind))
	if !k.Valid() {
		return Scope{}, fmt.Errorf("invalid scope kind %q", kind)
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return Scope{}, fmt.Errorf("invalid scope id %q: %w", id, err)
	}
	return Scope{Kind: k, ID: parsed}, nil
}
