// Package cardstatsevents defines the topics and payloads that trigger and
// report card statistics recomputes.
package cardstatsevents

import "github.com/google/uuid"

const (
	// TournamentImportedV1 is published by the import workflow once a
	// tournament's decks and results are stored.
	TournamentImportedV1 = "cardstats.tournament.imported.v1"

	// GroupMembershipChangedV1 is published when events are added to,
	// removed from, or reordered in a tournament group.
	GroupMembershipChangedV1 = "cardstats.group.membership.changed.v1"

	// RecomputeRequestedV1 is an operator request to recompute one scope.
	RecomputeRequestedV1 = "cardstats.recompute.requested.v1"

	// RecomputeCompletedV1 reports every scope a request committed.
	RecomputeCompletedV1 = "cardstats.recompute.completed.v1"

	// StreamName is the JetStream stream carrying every cardstats subject.
	StreamName    = "cardstats"
	StreamSubject = "cardstats.>"
)

type TournamentImportedPayloadV1 struct {
	TournamentID uuid.UUID `json:"tournament_id"`
}

type GroupMembershipChangedPayloadV1 struct {
	GroupID uuid.UUID `json:"group_id"`
}

type RecomputeRequestedPayloadV1 struct {
	ScopeKind string    `json:"scope_kind"`
	ScopeID   uuid.UUID `json:"scope_id"`
	Propagate bool      `json:"propagate,omitempty"`
}

// RecomputedScopeV1 describes one committed scope.
type RecomputedScopeV1 struct {
	ScopeKind      string    `json:"scope_kind"`
	ScopeID        uuid.UUID `json:"scope_id"`
	MemberEvents   int       `json:"member_events"`
	CardRows       int       `json:"card_rows"`
	LeaderRows     int       `json:"leader_rows"`
	LeaderBaseRows int       `json:"leader_base_rows"`
	PlacementRows  int       `json:"placement_rows,omitempty"`
}

type RecomputeCompletedPayloadV1 struct {
	Trigger string              `json:"trigger"`
	Scopes  []RecomputedScopeV1 `json:"scopes"`
}
