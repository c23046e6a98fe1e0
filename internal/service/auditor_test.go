package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/authzgate/authzgate/internal/adapter/outbound/memory"
	"github.com/authzgate/authzgate/internal/domain/authz"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testAuditor() *Auditor {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewAuditor(memory.NewAuditStore(), logger)
}

func TestAuditor_Record_ReturnsIncrementingTraceIDs(t *testing.T) {
	a := testAuditor()
	ctx := context.Background()

	id1, err := a.Record(ctx, authz.Request{Action: "read"}, true, "allowed")
	require.NoError(t, err)
	id2, err := a.Record(ctx, authz.Request{Action: "write"}, false, "denied")
	require.NoError(t, err)

	require.Equal(t, int64(1), id1)
	require.Equal(t, int64(2), id2)
}

func TestAuditor_StartStop_NoGoroutineLeak(t *testing.T) {
	a := testAuditor()
	ctx := context.Background()

	_, err := a.Record(ctx, authz.Request{Action: "read"}, true, "allowed")
	require.NoError(t, err)

	a.Start(ctx, time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	a.Stop()
}

func TestAuditor_Stop_StopsEvenWithoutAnyHeartbeatTick(t *testing.T) {
	a := testAuditor()
	a.Start(context.Background(), time.Hour)
	a.Stop()
}

func TestAuditor_Start_StopsWhenContextCancelled(t *testing.T) {
	a := testAuditor()
	ctx, cancel := context.WithCancel(context.Background())

	a.Start(ctx, time.Millisecond)
	cancel()
	// Returns only once the goroutine has exited on cancellation alone.
	a.wg.Wait()
	a.Stop()
}
