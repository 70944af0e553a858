package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/models"
)

func lockFixture() *fixture {
	f := newFixture()
	f.addCategory("cat-1", "Lighting Variation", 1)
	f.addCategory("cat-2", "Activity & Motion", 2)
	f.addOption("opt-1", "cat-1", "Low light")
	f.addOption("opt-2", "cat-2", "Running")
	f.addAnnotator("alice", "cat-1", "cat-2")
	f.addAdmin("root")
	f.addImage("img-1")
	return f
}

func TestSaveValidation(t *testing.T) {
	f := lockFixture()
	ctx := context.Background()

	_, err := f.annotationService.Save(ctx, SaveInput{
		ImageID: "img-1", CategoryID: "cat-1", AnnotatorID: "alice",
		Status: "finished",
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.annotationService.Save(ctx, SaveInput{
		ImageID: "img-1", CategoryID: "cat-1", AnnotatorID: "alice",
		Status: models.AnnotationStatusCompleted,
	})
	assert.ErrorIs(t, err, ErrValidation, "completed without options")
}

func TestSaveGuards(t *testing.T) {
	f := lockFixture()
	ctx := context.Background()

	_, err := f.annotationService.Save(ctx, SaveInput{
		ImageID: "missing", CategoryID: "cat-1", AnnotatorID: "alice",
		Status: models.AnnotationStatusSkipped,
	})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.annotationService.Save(ctx, SaveInput{
		ImageID: "img-1", CategoryID: "cat-9", AnnotatorID: "alice",
		Status: models.AnnotationStatusSkipped,
	})
	assert.ErrorIs(t, err, ErrPermission, "unassigned category")

	_, err = f.annotationService.MarkImproper(ctx, "img-1", "alice", "cartoon, not a pet photo")
	require.NoError(t, err)

	_, err = f.annotationService.Save(ctx, SaveInput{
		ImageID: "img-1", CategoryID: "cat-1", AnnotatorID: "alice",
		Status: models.AnnotationStatusSkipped,
	})
	assert.ErrorIs(t, err, ErrPermission, "improper image rejects saves")
}

func TestSkipNeverDowngradesCompleted(t *testing.T) {
	f := lockFixture()
	ctx := context.Background()

	f.save(t, "img-1", "cat-1", "alice", models.AnnotationStatusCompleted)

	saved, err := f.annotationService.Save(ctx, SaveInput{
		ImageID: "img-1", CategoryID: "cat-1", AnnotatorID: "alice",
		Status: models.AnnotationStatusSkipped,
	})
	require.NoError(t, err)
	assert.Equal(t, models.AnnotationStatusCompleted, saved.Status, "stored row returned unchanged")

	// The reverse direction is a normal upgrade.
	f.save(t, "img-1", "cat-2", "alice", models.AnnotationStatusSkipped)
	upgraded := f.save(t, "img-1", "cat-2", "alice", models.AnnotationStatusCompleted)
	assert.Equal(t, models.AnnotationStatusCompleted, upgraded.Status)
}

func TestUpsertKeepsOneRowPerTriple(t *testing.T) {
	f := lockFixture()

	first := f.save(t, "img-1", "cat-1", "alice", models.AnnotationStatusInProgress)
	second := f.save(t, "img-1", "cat-1", "alice", models.AnnotationStatusCompleted)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, f.annotations.rows, 1)
}

func TestLockArmsWhenAllAssignedCategoriesCompleted(t *testing.T) {
	f := lockFixture()
	ctx := context.Background()

	f.save(t, "img-1", "cat-1", "alice", models.AnnotationStatusCompleted)

	state, err := f.annotationService.LockState(ctx, "img-1", "alice")
	require.NoError(t, err)
	assert.Equal(t, models.LockStateEditable, state, "one category still open")

	f.save(t, "img-1", "cat-2", "alice", models.AnnotationStatusCompleted)

	state, err = f.annotationService.LockState(ctx, "img-1", "alice")
	require.NoError(t, err)
	assert.Equal(t, models.LockStateLocked, state)

	_, err = f.annotationService.Save(ctx, SaveInput{
		ImageID: "img-1", CategoryID: "cat-1", AnnotatorID: "alice",
		SelectedOptionIDs: []string{"opt-1"},
		Status:            models.AnnotationStatusCompleted,
	})
	assert.ErrorIs(t, err, ErrPermission)
}

func TestEditGrantIsSingleUse(t *testing.T) {
	f := lockFixture()
	ctx := context.Background()

	f.save(t, "img-1", "cat-1", "alice", models.AnnotationStatusCompleted)
	f.save(t, "img-1", "cat-2", "alice", models.AnnotationStatusCompleted)

	req, err := f.editRequestService.Request(ctx, "img-1", "alice", "picked the wrong lighting option")
	require.NoError(t, err)

	state, err := f.annotationService.LockState(ctx, "img-1", "alice")
	require.NoError(t, err)
	assert.Equal(t, models.LockStateRequestPending, state)

	_, err = f.editRequestService.Resolve(ctx, req.ID, "root", true)
	require.NoError(t, err)

	state, err = f.annotationService.LockState(ctx, "img-1", "alice")
	require.NoError(t, err)
	assert.Equal(t, models.LockStateEditable, state, "approved grant unlocks")

	// The grant is good for exactly one completing save.
	f.save(t, "img-1", "cat-1", "alice", models.AnnotationStatusCompleted)

	state, err = f.annotationService.LockState(ctx, "img-1", "alice")
	require.NoError(t, err)
	assert.Equal(t, models.LockStateLocked, state, "lock re-armed after the grant is consumed")

	_, err = f.annotationService.Save(ctx, SaveInput{
		ImageID: "img-1", CategoryID: "cat-2", AnnotatorID: "alice",
		SelectedOptionIDs: []string{"opt-2"},
		Status:            models.AnnotationStatusCompleted,
	})
	assert.ErrorIs(t, err, ErrPermission)
}

func TestEditGrantConsumedAfterDowngradeAndRecompletion(t *testing.T) {
	f := lockFixture()
	ctx := context.Background()

	f.save(t, "img-1", "cat-1", "alice", models.AnnotationStatusCompleted)
	f.save(t, "img-1", "cat-2", "alice", models.AnnotationStatusCompleted)

	req, err := f.editRequestService.Request(ctx, "img-1", "alice", "picked the wrong lighting option")
	require.NoError(t, err)
	_, err = f.editRequestService.Resolve(ctx, req.ID, "root", true)
	require.NoError(t, err)

	// Downgrading one category unlocks the pair, so the re-completing save
	// runs without the lock armed. The grant must still be spent by it.
	f.save(t, "img-1", "cat-1", "alice", models.AnnotationStatusInProgress)

	state, err := f.annotationService.LockState(ctx, "img-1", "alice")
	require.NoError(t, err)
	assert.Equal(t, models.LockStateEditable, state)

	f.save(t, "img-1", "cat-1", "alice", models.AnnotationStatusCompleted)

	state, err = f.annotationService.LockState(ctx, "img-1", "alice")
	require.NoError(t, err)
	assert.Equal(t, models.LockStateLocked, state, "lock re-arms even when the grant was idle at save entry")

	_, err = f.annotationService.Save(ctx, SaveInput{
		ImageID: "img-1", CategoryID: "cat-2", AnnotatorID: "alice",
		SelectedOptionIDs: []string{"opt-2"},
		Status:            models.AnnotationStatusCompleted,
	})
	assert.ErrorIs(t, err, ErrPermission)
}

func TestLockIsPerAnnotator(t *testing.T) {
	f := lockFixture()
	f.addAnnotator("bob", "cat-1", "cat-2")
	ctx := context.Background()

	f.save(t, "img-1", "cat-1", "alice", models.AnnotationStatusCompleted)
	f.save(t, "img-1", "cat-2", "alice", models.AnnotationStatusCompleted)

	state, err := f.annotationService.LockState(ctx, "img-1", "bob")
	require.NoError(t, err)
	assert.Equal(t, models.LockStateEditable, state, "another annotator's completions never lock bob out")
}

func TestMarkImproper(t *testing.T) {
	f := lockFixture()
	ctx := context.Background()

	_, err := f.annotationService.MarkImproper(ctx, "img-1", "alice", "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.annotationService.MarkImproper(ctx, "missing", "alice", "duplicate upload")
	assert.ErrorIs(t, err, ErrNotFound)

	flagged, err := f.annotationService.MarkImproper(ctx, "img-1", "alice", "duplicate upload")
	require.NoError(t, err)
	assert.True(t, flagged.IsImproper)
	require.NotNil(t, flagged.ImproperReason)
	assert.Equal(t, "duplicate upload", *flagged.ImproperReason)
	require.NotNil(t, flagged.ReportedBy)
	assert.Equal(t, "alice", *flagged.ReportedBy)

	_, err = f.annotationService.MarkImproper(ctx, "img-1", "alice", "still broken")
	assert.ErrorIs(t, err, ErrConflict)
}
