package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taleweaver/internal/game"
	"taleweaver/internal/game/director"
)

func newTestRegistry() *Registry {
	return NewRegistry(func() *director.Director {
		return director.New(nil, nil)
	})
}

func TestCreateGetDelete(t *testing.T) {
	r := newTestRegistry()

	s := r.Create()
	require.NotEmpty(t, s.ID)
	assert.Equal(t, 1, r.Len())

	got, err := r.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)

	require.NoError(t, r.Delete(s.ID))
	_, err = r.Get(s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, r.Delete(s.ID), ErrNotFound)
}

func TestSessionsAreIndependent(t *testing.T) {
	r := newTestRegistry()
	a, b := r.Create(), r.Create()
	assert.NotEqual(t, a.ID, b.ID)

	require.NoError(t, a.Do(func(d *director.Director) error { return d.Begin() }))

	var stageA, stageB game.Stage
	_ = a.Do(func(d *director.Director) error { stageA = d.Stage(); return nil })
	_ = b.Do(func(d *director.Director) error { stageB = d.Stage(); return nil })
	assert.Equal(t, game.StageSetup, stageA)
	assert.Equal(t, game.StageWelcome, stageB)
}

func TestDoSerializesAccess(t *testing.T) {
	r := newTestRegistry()
	s := r.Create()

	var (
		wg      sync.WaitGroup
		active  int
		maxSeen int
		mu      sync.Mutex
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Do(func(d *director.Director) error {
				mu.Lock()
				active++
				maxSeen = max(maxSeen, active)
				mu.Unlock()
				time.Sleep(time.Millisecond)
				mu.Lock()
				active--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxSeen)
}

func TestPrune(t *testing.T) {
	r := newTestRegistry()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	stale := r.Create()
	now = now.Add(2 * time.Hour)
	fresh := r.Create()

	assert.Equal(t, 1, r.Prune(time.Hour))
	_, err := r.Get(stale.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = r.Get(fresh.ID)
	assert.NoError(t, err)
}
