package analysis_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"complaintdesk/backend/internal/analysis"
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/storage/storagetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolvedAfter(created time.Time, d time.Duration) models.Complaint {
	at := created.Add(d)
	return models.Complaint{CreatedAt: created, ResolutionDate: &at}
}

func TestAverageResolutionHours(t *testing.T) {
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	assert.Zero(t, analysis.AverageResolutionHours(nil))
	assert.Equal(t, 3.0, analysis.AverageResolutionHours([]models.Complaint{
		resolvedAfter(base, 2*time.Hour),
		resolvedAfter(base, 4*time.Hour),
		{CreatedAt: base},
	}))
	assert.Equal(t, 0.33, analysis.AverageResolutionHours([]models.Complaint{resolvedAfter(base, 20*time.Minute)}))
}

func TestCompute(t *testing.T) {
	ctx := context.Background()
	store := storagetest.New()
	now := time.Now()

	for _, c := range []models.Complaint{
		{Title: "a", Status: models.StatusPending},
		{Title: "b", Status: models.StatusInProgress, Category: models.CategoryAcademic},
		{Title: "c", Status: models.StatusResolved, Category: models.CategoryAcademic, ResolutionDate: &now},
		{Title: "d", Status: models.StatusRejected, Category: models.CategoryAdministrative, ResolutionDate: &now},
	} {
		require.NoError(t, store.CreateComplaint(ctx, &c))
	}

	st, err := analysis.Compute(ctx, store)
	require.NoError(t, err)

	assert.Equal(t, int64(4), st.Total)
	assert.Equal(t, int64(1), st.Resolved)
	assert.Equal(t, int64(1), st.ByStatus[models.StatusPending])
	assert.Equal(t, int64(0), st.ByStatus[models.StatusEscalated])
	assert.Len(t, st.ByStatus, len(models.AllStatuses))
	assert.Equal(t, map[string]int64{
		analysis.Uncategorized: 1,
		"academic":             2,
		"administrative":       1,
	}, st.ByCategory)
	assert.GreaterOrEqual(t, st.AverageResolutionHours, 0.0)
}

func TestCompute_PropagatesStorageErrors(t *testing.T) {
	store := storagetest.New()
	boom := errors.New("connection reset")
	store.Fail("ResolvedComplaints", boom)

	_, err := analysis.Compute(context.Background(), store)
	assert.ErrorIs(t, err, boom)
}
