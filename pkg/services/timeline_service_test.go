package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsreasoner/opsreasoner/pkg/models"
	testdb "github.com/opsreasoner/opsreasoner/test/database"
)

func newTestService(t *testing.T) *TimelineService {
	client := testdb.NewTestClient(t)
	return NewTimelineService(client.Client)
}

func TestTimelineRecordAssignsSequenceNumbers(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for _, eventType := range []models.TimelineEventType{
		models.EventTaskAssigned, models.EventTaskCompleted, models.EventHITLWait,
	} {
		require.NoError(t, svc.Record(ctx, models.TimelineEvent{
			ThreadID:  "thread-1",
			Agent:     models.AgentSales,
			EventType: eventType,
		}))
	}

	events, err := svc.List(ctx, "thread-1")
	require.NoError(t, err)
	require.Len(t, events, 3)
	for i, ev := range events {
		assert.Equal(t, i+1, ev.SequenceNumber)
	}
	assert.Equal(t, models.EventTaskAssigned, events[0].EventType)
	assert.Equal(t, models.EventHITLWait, events[2].EventType)
}

func TestTimelineSequencesAreScopedPerThread(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Record(ctx, models.TimelineEvent{
		ThreadID: "thread-a", Agent: models.AgentSales, EventType: models.EventTaskAssigned,
	}))
	require.NoError(t, svc.Record(ctx, models.TimelineEvent{
		ThreadID: "thread-b", Agent: models.AgentSales, EventType: models.EventTaskAssigned,
	}))

	a, err := svc.List(ctx, "thread-a")
	require.NoError(t, err)
	b, err := svc.List(ctx, "thread-b")
	require.NoError(t, err)
	require.Len(t, a, 1)
	require.Len(t, b, 1)
	assert.Equal(t, 1, a[0].SequenceNumber)
	assert.Equal(t, 1, b[0].SequenceNumber)
}

func TestTimelineRecordRequiresThreadID(t *testing.T) {
	svc := newTestService(t)
	err := svc.Record(context.Background(), models.TimelineEvent{EventType: models.EventReplan})
	require.Error(t, err)
}
