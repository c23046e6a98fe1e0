package sqlstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/authzgate/authzgate/internal/domain/policy"
)

func TestPolicyStore_CreateAutoVersions(t *testing.T) {
	ctx := context.Background()
	store := NewPolicyStore(testDB(t))

	p1, err := store.Create(ctx, "default", policy.Content{})
	require.NoError(t, err)
	require.Equal(t, 1, p1.Version)

	p2, err := store.Create(ctx, "default", policy.Content{})
	require.NoError(t, err)
	require.Equal(t, 2, p2.Version)
	require.False(t, p2.IsActive)
}

func TestPolicyStore_ActivateMutualExclusion(t *testing.T) {
	ctx := context.Background()
	store := NewPolicyStore(testDB(t))

	p1, err := store.Create(ctx, "default", policy.Content{
		Rules: []policy.Rule{{Role: "*", Action: "*", Effect: policy.EffectAllow}},
	})
	require.NoError(t, err)
	p2, err := store.Create(ctx, "default", policy.Content{})
	require.NoError(t, err)

	_, err = store.Activate(ctx, p1.ID)
	require.NoError(t, err)
	active, err := store.Active(ctx)
	require.NoError(t, err)
	require.Equal(t, p1.ID, active.ID)
	require.Len(t, active.Content.Rules, 1)

	_, err = store.Activate(ctx, p2.ID)
	require.NoError(t, err)
	active, err = store.Active(ctx)
	require.NoError(t, err)
	require.Equal(t, p2.ID, active.ID)

	p1After, err := store.Get(ctx, p1.ID)
	require.NoError(t, err)
	require.False(t, p1After.IsActive)
}

func TestPolicyStore_ActivateNotFound(t *testing.T) {
	ctx := context.Background()
	store := NewPolicyStore(testDB(t))

	_, err := store.Activate(ctx, 999)
	require.ErrorIs(t, err, policy.ErrNotFound)
}

func TestPolicyStore_ActiveNoneActive(t *testing.T) {
	ctx := context.Background()
	store := NewPolicyStore(testDB(t))
	_, err := store.Create(ctx, "default", policy.Content{})
	require.NoError(t, err)

	active, err := store.Active(ctx)
	require.NoError(t, err)
	require.Nil(t, active)
}

func TestPolicyStore_GetNotFound(t *testing.T) {
	ctx := context.Background()
	store := NewPolicyStore(testDB(t))

	_, err := store.Get(ctx, 42)
	require.ErrorIs(t, err, policy.ErrNotFound)
}

func TestPolicyStore_ListOrderedDescending(t *testing.T) {
	ctx := context.Background()
	store := NewPolicyStore(testDB(t))

	for i := 0; i < 3; i++ {
		_, err := store.Create(ctx, "default", policy.Content{})
		require.NoError(t, err)
	}

	all, err := store.List(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i := 1; i < len(all); i++ {
		require.LessOrEqual(t, all[i].Version, all[i-1].Version)
	}
}

func TestPolicyStore_RoundTripsContent(t *testing.T) {
	ctx := context.Background()
	store := NewPolicyStore(testDB(t))

	content := policy.Content{Rules: []policy.Rule{
		{Role: "editor", Action: "write", Effect: policy.EffectAllow, ResourceMatch: map[string]interface{}{"tenant": "acme"}},
	}}
	created, err := store.Create(ctx, "rt", content)
	require.NoError(t, err)

	got, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, content.Rules[0].Role, got.Content.Rules[0].Role)
	require.Equal(t, "acme", got.Content.Rules[0].ResourceMatch["tenant"])
}
