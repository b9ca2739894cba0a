package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/storefront-service/internal/model"
	"github.com/fairyhunter13/storefront-service/internal/store"
)

func seed(t *testing.T) (*Service, *store.Memory) {
	t.Helper()
	st := store.NewMemory()
	ctx := context.Background()
	for i, u := range []string{"u1", "u1", "u2"} {
		require.NoError(t, st.CreateOrder(ctx, model.Order{
			ID:        []string{"a", "b", "c"}[i],
			UserID:    u,
			Status:    model.StatusPending,
			CreatedAt: time.Unix(int64(i), 0),
		}))
	}
	return NewService(st), st
}

func TestListAndGetScopedToUser(t *testing.T) {
	svc, _ := seed(t)
	ctx := context.Background()
	mine, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "b", mine[0].ID)

	_, err = svc.Get(ctx, "u1", "c")
	assert.ErrorIs(t, err, model.ErrNotFound)
	o, err := svc.Get(ctx, "u2", "c")
	require.NoError(t, err)
	assert.Equal(t, "c", o.ID)
}

func TestUpdateStatusForwardOnly(t *testing.T) {
	svc, _ := seed(t)
	ctx := context.Background()

	o, err := svc.UpdateStatus(ctx, "a", model.StatusProcessing)
	require.NoError(t, err)
	assert.Equal(t, model.StatusProcessing, o.Status)

	_, err = svc.UpdateStatus(ctx, "a", model.StatusPending)
	var ve *model.ValidationError
	assert.True(t, errors.As(err, &ve))

	_, err = svc.UpdateStatus(ctx, "a", model.StatusProcessing)
	assert.True(t, errors.As(err, &ve))

	_, err = svc.UpdateStatus(ctx, "a", "lost")
	assert.True(t, errors.As(err, &ve))

	o, err = svc.UpdateStatus(ctx, "a", model.StatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDelivered, o.Status)

	_, err = svc.UpdateStatus(ctx, "zzz", model.StatusShipped)
	assert.ErrorIs(t, err, model.ErrNotFound)

	pending, err := svc.ListAll(ctx, model.StatusPending)
	require.NoError(t, err)
	assert.Len(t, pending, 2)
	_, err = svc.ListAll(ctx, "bogus")
	assert.True(t, errors.As(err, &ve))
}
