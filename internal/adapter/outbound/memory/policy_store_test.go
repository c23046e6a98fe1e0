package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/authzgate/authzgate/internal/domain/policy"
)

func TestPolicyStore_Create_AutoVersions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewPolicyStore()

	p1, err := store.Create(ctx, "default", policy.Content{})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if p1.Version != 1 {
		t.Errorf("first Version = %d, want 1", p1.Version)
	}

	p2, err := store.Create(ctx, "default", policy.Content{})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if p2.Version != 2 {
		t.Errorf("second Version = %d, want 2", p2.Version)
	}

	// A different policy name starts its own version sequence at 1.
	other, err := store.Create(ctx, "other", policy.Content{})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if other.Version != 1 {
		t.Errorf("other.Version = %d, want 1", other.Version)
	}

	if p1.IsActive || p2.IsActive {
		t.Error("newly created policies must not be active")
	}
}

func TestPolicyStore_Activate_MutualExclusion(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewPolicyStore()

	p1, _ := store.Create(ctx, "default", policy.Content{})
	p2, _ := store.Create(ctx, "default", policy.Content{})

	if _, err := store.Activate(ctx, p1.ID); err != nil {
		t.Fatalf("Activate(p1) error: %v", err)
	}
	active, err := store.Active(ctx)
	if err != nil {
		t.Fatalf("Active() error: %v", err)
	}
	if active == nil || active.ID != p1.ID {
		t.Fatalf("Active() = %+v, want p1", active)
	}

	if _, err := store.Activate(ctx, p2.ID); err != nil {
		t.Fatalf("Activate(p2) error: %v", err)
	}
	active, err = store.Active(ctx)
	if err != nil {
		t.Fatalf("Active() error: %v", err)
	}
	if active == nil || active.ID != p2.ID {
		t.Fatalf("Active() = %+v, want p2", active)
	}

	p1After, err := store.Get(ctx, p1.ID)
	if err != nil {
		t.Fatalf("Get(p1) error: %v", err)
	}
	if p1After.IsActive {
		t.Error("activating p2 must deactivate p1")
	}
}

func TestPolicyStore_Activate_NotFound(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewPolicyStore()

	_, err := store.Activate(ctx, 999)
	if !errors.Is(err, policy.ErrNotFound) {
		t.Errorf("Activate() error = %v, want ErrNotFound", err)
	}
}

func TestPolicyStore_Active_NoneActive(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewPolicyStore()
	store.Create(ctx, "default", policy.Content{})

	active, err := store.Active(ctx)
	if err != nil {
		t.Fatalf("Active() error: %v", err)
	}
	if active != nil {
		t.Errorf("Active() = %+v, want nil", active)
	}
}

func TestPolicyStore_Get_NotFound(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewPolicyStore()

	_, err := store.Get(ctx, 42)
	if !errors.Is(err, policy.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestPolicyStore_List_OrderedByVersionDescending(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewPolicyStore()

	for i := 0; i < 3; i++ {
		store.Create(ctx, "default", policy.Content{})
	}

	all, err := store.List(ctx, 0, 10)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("List() returned %d policies, want 3", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].Version > all[i-1].Version {
			t.Errorf("List() not descending by version at index %d: %+v", i, all)
		}
	}
}

func TestPolicyStore_List_Pagination(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewPolicyStore()

	for i := 0; i < 5; i++ {
		store.Create(ctx, "default", policy.Content{})
	}

	page, err := store.List(ctx, 2, 2)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(page) != 2 {
		t.Errorf("List(skip=2, limit=2) returned %d items, want 2", len(page))
	}

	beyond, err := store.List(ctx, 10, 2)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(beyond) != 0 {
		t.Errorf("List(skip=10) returned %d items, want 0", len(beyond))
	}
}

func TestPolicyStore_Get_ReturnsCopy(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewPolicyStore()
	created, _ := store.Create(ctx, "default", policy.Content{
		Rules: []policy.Rule{{Role: "admin", Action: "*", Effect: policy.EffectAllow}},
	})

	got1, err := store.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	got1.Name = "mutated"
	got1.Content.Rules[0].Role = "mutated"

	got2, err := store.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get() second call error: %v", err)
	}
	if got2.Name == "mutated" {
		t.Error("Get() leaked a reference instead of a copy (Name mutated)")
	}
}

func TestPolicyStore_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewPolicyStore()

	ids := make([]int64, 10)
	for i := range ids {
		p, _ := store.Create(ctx, "default", policy.Content{})
		ids[i] = p.ID
	}

	var wg sync.WaitGroup
	errCh := make(chan error, 300)

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.List(ctx, 0, 100); err != nil {
				errCh <- err
			}
		}()
	}

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			if _, err := store.Get(ctx, ids[idx%len(ids)]); err != nil {
				errCh <- err
			}
		}(i)
	}

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			if _, err := store.Activate(ctx, ids[idx%len(ids)]); err != nil {
				errCh <- err
			}
		}(i)
	}

	wg.Wait()
	close(errCh)

	for err := range errCh {
		t.Errorf("concurrent access error: %v", err)
	}
}
