package sqlstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/authzgate/authzgate/internal/domain/audit"
)

func TestAuditStore_AppendAssignsIncreasingIDs(t *testing.T) {
	ctx := context.Background()
	store := NewAuditStore(testDB(t))

	id1, err := store.Append(ctx, audit.Log{Subject: "role=editor", Action: "write", Resource: "doc=1", Decision: true, Explanation: "ok", Timestamp: time.Now().UTC()})
	require.NoError(t, err)
	id2, err := store.Append(ctx, audit.Log{Subject: "role=editor", Action: "write", Resource: "doc=2", Decision: false, Explanation: "no", Timestamp: time.Now().UTC()})
	require.NoError(t, err)

	require.Greater(t, id2, id1)
}

func TestAuditStore_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewAuditStore(testDB(t))

	for i := 0; i < 3; i++ {
		_, err := store.Append(ctx, audit.Log{Subject: "s", Action: "a", Resource: "r", Decision: true, Explanation: "e", Timestamp: time.Now().UTC()})
		require.NoError(t, err)
	}

	logs, err := store.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	require.Greater(t, logs[0].ID, logs[1].ID)
}

func TestAuditStore_ListEmpty(t *testing.T) {
	ctx := context.Background()
	store := NewAuditStore(testDB(t))

	logs, err := store.List(ctx, 10)
	require.NoError(t, err)
	require.Empty(t, logs)
}
