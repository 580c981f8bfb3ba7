package pendingaction

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/opsreasoner/opsreasoner/pkg/models"
	testdb "github.com/opsreasoner/opsreasoner/test/database"
)

// Two stores on independent connection pools contend for the same row, the
// way two engine replicas would. The row-level lock serializes them: exactly
// one Approve wins, the loser sees an invalid transition.
func TestStore_ConcurrentApproveSingleWriter(t *testing.T) {
	shared := testdb.NewSharedTestDB(t)
	storeA := New(shared.NewClient(t).Client)
	storeB := New(shared.NewClient(t).Client)
	ctx := context.Background()

	created, err := storeA.Create(ctx, "thread-1", sampleRecommendation(), models.AgentInventory)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i, store := range []*Store{storeA, storeB} {
		wg.Add(1)
		go func(i int, store *Store) {
			defer wg.Done()
			_, results[i] = store.Approve(ctx, created.ID)
		}(i, store)
	}
	wg.Wait()

	winners := 0
	for _, err := range results {
		if err == nil {
			winners++
		} else {
			require.True(t, errors.Is(err, ErrInvalidTransition), "unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, winners)

	row, err := storeB.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, models.PendingActionApproved, row.Status)
}
