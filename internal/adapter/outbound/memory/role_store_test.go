package memory

import (
	"context"
	"testing"

	"github.com/authzgate/authzgate/internal/domain/role"
	"github.com/stretchr/testify/require"
)

func TestRoleStore_CreateAndGetByName(t *testing.T) {
	s := NewRoleStore()
	ctx := context.Background()

	created, err := s.CreateRole(ctx, "editor", "can write", nil)
	require.NoError(t, err)
	require.Equal(t, "editor", created.Name)
	require.NotZero(t, created.ID)

	got, err := s.GetByName(ctx, "editor")
	require.NoError(t, err)
	require.Equal(t, created.Name, got.Name)
}

func TestRoleStore_GetByName_NotFound(t *testing.T) {
	s := NewRoleStore()
	_, err := s.GetByName(context.Background(), "missing")
	require.ErrorIs(t, err, role.ErrNotFound)
}

func TestRoleStore_CreateRole_DuplicateNameConflicts(t *testing.T) {
	s := NewRoleStore()
	ctx := context.Background()

	_, err := s.CreateRole(ctx, "editor", "", nil)
	require.NoError(t, err)

	_, err = s.CreateRole(ctx, "editor", "", nil)
	require.ErrorIs(t, err, role.ErrConflict)
}

func TestRoleStore_AncestorClosure_TransitiveWalk(t *testing.T) {
	s := NewRoleStore()
	ctx := context.Background()

	_, err := s.CreateRole(ctx, "viewer", "", nil)
	require.NoError(t, err)
	_, err = s.CreateRole(ctx, "editor", "", []string{"viewer"})
	require.NoError(t, err)
	_, err = s.CreateRole(ctx, "admin", "", []string{"editor"})
	require.NoError(t, err)

	closure, err := s.AncestorClosure(ctx, "admin")
	require.NoError(t, err)
	require.Contains(t, closure, "editor")
	require.Contains(t, closure, "viewer")
	require.NotContains(t, closure, "admin")
}

func TestRoleStore_Children_ReturnsDirectChildrenOnly(t *testing.T) {
	s := NewRoleStore()
	ctx := context.Background()

	_, err := s.CreateRole(ctx, "viewer", "", nil)
	require.NoError(t, err)
	_, err = s.CreateRole(ctx, "editor", "", []string{"viewer"})
	require.NoError(t, err)
	_, err = s.CreateRole(ctx, "admin", "", []string{"editor"})
	require.NoError(t, err)

	children, err := s.Children(ctx, "viewer")
	require.NoError(t, err)
	require.Equal(t, []string{"editor"}, children)
}

func TestRoleStore_GetByName_ReturnsCopy(t *testing.T) {
	s := NewRoleStore()
	ctx := context.Background()

	_, err := s.CreateRole(ctx, "editor", "", []string{})
	require.NoError(t, err)

	got, err := s.GetByName(ctx, "editor")
	require.NoError(t, err)
	got.Parents = append(got.Parents, "mutated")

	got2, err := s.GetByName(ctx, "editor")
	require.NoError(t, err)
	require.NotContains(t, got2.Parents, "mutated")
}
