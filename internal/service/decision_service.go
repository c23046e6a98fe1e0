package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/authzgate/authzgate/internal/domain/authz"
	"github.com/authzgate/authzgate/internal/domain/policy"
	"github.com/authzgate/authzgate/internal/domain/role"
)

// DecisionService orchestrates a single authorization decision: fetch the
// active policy (cache, falling back to the registry on a miss), expand
// the subject's role, evaluate, and conditionally audit.
type DecisionService struct {
	cache    *ActivePolicyCache
	registry *PolicyRegistry
	roles    role.Graph
	auditor  *Auditor
	logger   *slog.Logger
}

// NewDecisionService wires the pieces of the decision pipeline together.
func NewDecisionService(cache *ActivePolicyCache, registry *PolicyRegistry, roles role.Graph, auditor *Auditor, logger *slog.Logger) *DecisionService {
	return &DecisionService{
		cache:    cache,
		registry: registry,
		roles:    roles,
		auditor:  auditor,
		logger:   logger,
	}
}

// Authorize evaluates one request and, unless it is a dry run, writes an
// audit log entry.
func (s *DecisionService) Authorize(ctx context.Context, req authz.Request) (authz.Response, error) {
	active, err := s.activePolicy(ctx)
	if err != nil {
		return authz.Response{}, err
	}
	if active == nil {
		return authz.Response{
			Decision: false,
			Reason:   policy.ReasonNoActivePolicy,
		}, nil
	}

	roleName := req.Role()
	expanded, err := s.roles.Expand(ctx, roleName)
	if err != nil {
		return authz.Response{}, fmt.Errorf("expand role %q: %w", roleName, err)
	}

	decision := policy.Evaluate(expanded, req.Action, req.Resource, active.Content.Rules)

	resp := authz.Response{Decision: decision.Allowed, Reason: decision.Reason}

	if req.DryRun {
		return resp, nil
	}

	traceID, err := s.auditor.Record(ctx, req, decision.Allowed, decision.Reason)
	if err != nil {
		// The decision already computed is never masked by an audit
		// failure; the caller observes the storage error separately.
		return resp, err
	}
	resp.TraceID = &traceID
	return resp, nil
}

// AuthorizeBatch invokes Authorize for each request in declared order. No
// request short-circuits another; each is independently audited unless it
// is a dry run. An error from one request does not stop the later ones;
// all such errors are returned joined. An empty input yields an empty output.
func (s *DecisionService) AuthorizeBatch(ctx context.Context, reqs []authz.Request) ([]authz.Response, error) {
	resps := make([]authz.Response, len(reqs))
	var errs []error
	for i, req := range reqs {
		resp, err := s.Authorize(ctx, req)
		if err != nil {
			errs = append(errs, fmt.Errorf("request %d: %w", i, err))
		}
		resps[i] = resp
	}
	return resps, errors.Join(errs...)
}

// activePolicy reads the cache, populating it from the registry on a
// miss. The lazy-load path never downgrades a concurrently-installed
// newer policy (see ActivePolicyCache.CompareAndSet).
func (s *DecisionService) activePolicy(ctx context.Context) (*policy.Policy, error) {
	if p := s.cache.Get(); p != nil {
		return p, nil
	}

	epoch := s.cache.Epoch()
	p, err := s.registry.Active(ctx)
	if err != nil {
		s.logger.Error("failed to fetch active policy", "error", err)
		return nil, fmt.Errorf("fetch active policy: %w", err)
	}
	if p == nil {
		return nil, nil
	}

	s.cache.CompareAndSet(epoch, p)
	return p, nil
}
