package task

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ovaphlow/pitchfork/service-task-go-stdlib/internal/task/entity"
	taskrepo "github.com/ovaphlow/pitchfork/service-task-go-stdlib/internal/task/repo"
)

func newTestService() *Service {
	return NewService(taskrepo.NewMemoryRepo())
}

func TestCreate_Validation(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	ctx := context.Background()

	for _, text := range []string{"", "  ", "ab", string(make([]byte, 201))} {
		_, err := svc.Create(ctx, "alice", text)
		require.ErrorIs(t, err, ErrValidation)
	}

	created, err := svc.Create(ctx, "alice", "buy milk")
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Equal(t, "buy milk", created.Todo)
	require.Equal(t, "alice", created.Username)
}

func TestList_Pagination(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	ctx := context.Background()

	// interleave another user's tasks; they must never appear in alice's pages
	for i := 0; i < 12; i++ {
		_, err := svc.Create(ctx, "alice", fmt.Sprintf("alice task %02d", i))
		require.NoError(t, err)
		_, err = svc.Create(ctx, "bob", fmt.Sprintf("bob task %02d", i))
		require.NoError(t, err)
	}

	page1, err := svc.List(ctx, "alice", 0)
	require.NoError(t, err)
	page2, err := svc.List(ctx, "alice", PageSize)
	require.NoError(t, err)
	require.Len(t, page1, PageSize)
	require.Len(t, page2, PageSize)

	// pages are disjoint and order-consistent
	ids := map[string]bool{}
	var all []entity.Task
	all = append(all, page1...)
	all = append(all, page2...)
	for i, task := range all {
		require.False(t, ids[task.ID], "pages must be disjoint")
		ids[task.ID] = true
		require.Equal(t, fmt.Sprintf("alice task %02d", i), task.Todo, "insertion order is stable")
		require.Equal(t, "alice", task.Username)
	}

	page3, err := svc.List(ctx, "alice", 2*PageSize)
	require.NoError(t, err)
	require.Len(t, page3, 2)

	// past the end: empty page, not an error
	empty, err := svc.List(ctx, "alice", 3*PageSize)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestEdit(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "alice", "buy milk")
	require.NoError(t, err)

	updated, err := svc.Edit(ctx, "alice", created.ID, "buy oat milk")
	require.NoError(t, err)
	require.Equal(t, "buy oat milk", updated.Todo)

	_, err = svc.Edit(ctx, "alice", "no-such-id", "whatever")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Edit(ctx, "alice", created.ID, "")
	require.ErrorIs(t, err, ErrValidation)
}

func TestEditDelete_OwnershipEnforced(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "alice", "buy milk")
	require.NoError(t, err)

	_, err = svc.Edit(ctx, "bob", created.ID, "hijacked")
	require.ErrorIs(t, err, ErrForbidden)
	err = svc.Delete(ctx, "bob", created.ID)
	require.ErrorIs(t, err, ErrForbidden)

	// the rejected mutation left the task unchanged
	page, err := svc.List(ctx, "alice", 0)
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.Equal(t, "buy milk", page[0].Todo)
}

func TestDelete(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "alice", "buy milk")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "alice", created.ID))
	require.ErrorIs(t, svc.Delete(ctx, "alice", created.ID), ErrNotFound)

	page, err := svc.List(ctx, "alice", 0)
	require.NoError(t, err)
	require.Empty(t, page)
}
