package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/authzgate/authzgate/internal/domain/audit"
	"github.com/authzgate/authzgate/internal/domain/authz"
)

// Auditor persists decision records and returns the trace id assigned to
// each one. It never alters the decision it is given — a storage failure
// here surfaces as an error to the caller, not a changed outcome.
//
// Record is always synchronous: every trace_id handed back to a caller
// reflects a completed store write, never a buffered one. Start/Stop
// instead manage a background heartbeat goroutine that periodically
// reports the most recent audit entry, mirroring the teacher's async
// audit writer's periodic flush loop without weakening the trace_id
// guarantee.
type Auditor struct {
	store  audit.Store
	logger *slog.Logger
	now    func() time.Time

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewAuditor creates an Auditor backed by store.
func NewAuditor(store audit.Store, logger *slog.Logger) *Auditor {
	return &Auditor{store: store, logger: logger, now: time.Now, stopCh: make(chan struct{})}
}

// Record appends one audit log row for req and returns its trace id.
func (a *Auditor) Record(ctx context.Context, req authz.Request, decision bool, reason string) (int64, error) {
	log := audit.Log{
		Subject:     audit.RenderAttrs(req.Subject),
		Action:      req.Action,
		Resource:    audit.RenderAttrs(req.Resource),
		Decision:    decision,
		Explanation: reason,
		Timestamp:   a.now().UTC(),
	}

	id, err := a.store.Append(ctx, log)
	if err != nil {
		a.logger.Error("audit append failed", "action", req.Action, "error", err)
		return 0, fmt.Errorf("append audit log: %w", err)
	}

	a.logger.Debug("audit log recorded", "trace_id", id, "decision", decision)
	return id, nil
}

// Start launches a background heartbeat goroutine that periodically reports
// the most recent audit entry. It does not buffer or delay Record; the
// heartbeat only observes what has already been durably written.
func (a *Auditor) Start(ctx context.Context, interval time.Duration) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-a.stopCh:
				return
			case <-ticker.C:
				a.heartbeat(ctx)
			}
		}
	}()
}

// Stop signals the heartbeat goroutine to exit and waits for it to return.
func (a *Auditor) Stop() {
	close(a.stopCh)
	a.wg.Wait()
}

func (a *Auditor) heartbeat(ctx context.Context) {
	logs, err := a.store.List(ctx, 1)
	if err != nil {
		a.logger.Warn("audit heartbeat failed", "error", err)
		return
	}
	if len(logs) == 0 {
		return
	}
	a.logger.Debug("audit heartbeat", "last_trace_id", logs[0].ID)
}
