package cardstatsservice

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	cardstatsdomain "github.com/swubase/cardstats/app/modules/cardstats/domain"
)

func TestScopeLocks_DifferentScopesDoNotBlock(t *testing.T) {
	locks := newScopeLocks()
	unlockA := locks.lock(cardstatsdomain.EventScope(uuid.New()))
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock := locks.lock(cardstatsdomain.EventScope(uuid.New()))
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on an unrelated scope blocked")
	}
}

func TestScopeLocks_SameScopeWaits(t *testing.T) {
	locks := newScopeLocks()
	scope := cardstatsdomain.GroupScope(uuid.New())
	unlock := locks.lock(scope)

	acquired := make(chan struct{})
	go func() {
		release := locks.lock(scope)
		close(acquired)
		release()
	}()

	select {
	case <-acquired:
		t.Fatal("second lock acquired while first was held")
	case <-time.After(20 * time.Millisecond):
	}

	unlock()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second lock never acquired")
	}
	assert.Eventually(t, func() bool { return locks.size() == 0 }, time.Second, time.Millisecond)
}
