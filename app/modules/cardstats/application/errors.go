package cardstatsservice

import (
	"errors"
	"fmt"

	cardstatsdomain "github.com/swubase/cardstats/app/modules/cardstats/domain"
)

var (
	ErrUnknownScopeKind   = errors.New("unknown scope kind")
	ErrUnknownGranularity = errors.New("unknown granularity")
)

// Stage names the recompute step that failed.
type Stage string

const (
	StageResolve           Stage = "resolve"
	StageLoad              Stage = "load"
	StagePersistCard       Stage = "persist-card"
	StagePersistLeader     Stage = "persist-leader"
	StagePersistLeaderBase Stage = "persist-leader-base"
	StagePersistPlacement  Stage = "persist-placement"
	StagePersistSummary    Stage = "persist-summary"
	StagePropagate         Stage = "propagate"
)

func persistStage(g cardstatsdomain.Granularity) Stage {
	switch g {
	case cardstatsdomain.GranularityLeader:
		return StagePersistLeader
	case cardstatsdomain.GranularityLeaderBase:
		return StagePersistLeaderBase
	}
	return StagePersistCard
}

// RecomputeError reports which scope and stage a recompute stopped at.
// Stages committed before the failure stay committed.
type RecomputeError struct {
	Scope cardstatsdomain.Scope
	Stage Stage
	Err   error
}

func (e *RecomputeError) Error() string {
	return fmt.Sprintf("recompute %s failed at %s: %v", e.Scope, e.Stage, e.Err)
}

func (e *RecomputeError) Unwrap() error { return e.Err }

func recomputeErr(scope cardstatsdomain.Scope, stage Stage, err error) error {
	return &RecomputeError{Scope: scope, Stage: stage, Err: err}
}
