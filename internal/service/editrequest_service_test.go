package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/models"
)

func editRequestFixture(t *testing.T) *fixture {
	t.Helper()
	f := lockFixture()
	f.save(t, "img-1", "cat-1", "alice", models.AnnotationStatusCompleted)
	f.save(t, "img-1", "cat-2", "alice", models.AnnotationStatusCompleted)
	return f
}

func TestRequestValidation(t *testing.T) {
	f := editRequestFixture(t)
	ctx := context.Background()

	_, err := f.editRequestService.Request(ctx, "img-1", "alice", "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.editRequestService.Request(ctx, "missing", "alice", "wrong option")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRequestOnlyWhenLocked(t *testing.T) {
	f := lockFixture()
	ctx := context.Background()

	// Only one of two assigned categories completed, so nothing is locked.
	f.save(t, "img-1", "cat-1", "alice", models.AnnotationStatusCompleted)

	_, err := f.editRequestService.Request(ctx, "img-1", "alice", "wrong option")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestRequestDuplicatePending(t *testing.T) {
	f := editRequestFixture(t)
	ctx := context.Background()

	_, err := f.editRequestService.Request(ctx, "img-1", "alice", "wrong option")
	require.NoError(t, err)

	_, err = f.editRequestService.Request(ctx, "img-1", "alice", "asking again")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestResolveDenyRelocksAndAllowsRetry(t *testing.T) {
	f := editRequestFixture(t)
	ctx := context.Background()

	req, err := f.editRequestService.Request(ctx, "img-1", "alice", "wrong option")
	require.NoError(t, err)

	denied, err := f.editRequestService.Resolve(ctx, req.ID, "root", false)
	require.NoError(t, err)
	assert.Equal(t, models.EditRequestStatusDenied, denied.Status)
	require.NotNil(t, denied.ResolvedBy)
	assert.Equal(t, "root", *denied.ResolvedBy)

	state, err := f.annotationService.LockState(ctx, "img-1", "alice")
	require.NoError(t, err)
	assert.Equal(t, models.LockStateLocked, state)

	// A denied request does not block a new one.
	_, err = f.editRequestService.Request(ctx, "img-1", "alice", "trying once more")
	assert.NoError(t, err)
}

func TestResolveNonPending(t *testing.T) {
	f := editRequestFixture(t)
	ctx := context.Background()

	req, err := f.editRequestService.Request(ctx, "img-1", "alice", "wrong option")
	require.NoError(t, err)

	_, err = f.editRequestService.Resolve(ctx, req.ID, "root", true)
	require.NoError(t, err)

	_, err = f.editRequestService.Resolve(ctx, req.ID, "root", false)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = f.editRequestService.Resolve(ctx, "missing", "root", true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExpireStale(t *testing.T) {
	f := editRequestFixture(t)
	ctx := context.Background()

	req, err := f.editRequestService.Request(ctx, "img-1", "alice", "wrong option")
	require.NoError(t, err)

	// A generous max age keeps the request alive.
	expired, err := f.editRequestService.ExpireStale(ctx, 100*365*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 0, expired)

	expired, err = f.editRequestService.ExpireStale(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, expired)

	swept, err := f.requests.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EditRequestStatusDenied, swept.Status)

	expired, err = f.editRequestService.ExpireStale(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, expired, "zero max age disables the sweep")
}
