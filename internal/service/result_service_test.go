package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/membership-portal-api/internal/dto"
	"github.com/noah-isme/membership-portal-api/internal/models"
	"github.com/noah-isme/membership-portal-api/internal/repository"
)

func TestResultPublishControlsVisibility(t *testing.T) {
	f := setupExamFixture(t, 0)
	ctx := context.Background()
	_, cache := setupTestRedis(t)

	audit := &stubAuditRecorder{}
	results := NewResultService(repository.NewExamResultRepository(f.db), audit, cache, 0, testLogger())

	started, _, err := f.attempts.Start(ctx, f.exam.ID, f.memberActor())
	require.NoError(t, err)
	_, err = f.attempts.Submit(ctx, started.ID, dto.SubmitAttemptRequest{}, f.memberActor())
	require.NoError(t, err)

	mine, err := results.Mine(ctx, f.member.ID, 1, 20)
	require.NoError(t, err)
	require.Empty(t, mine.Items)

	cached, err := results.Mine(ctx, f.member.ID, 1, 20)
	require.NoError(t, err)
	require.True(t, cached.CacheHit)

	var stored models.ExamResult
	require.NoError(t, f.db.Where("attempt_id = ?", started.ID).First(&stored).Error)

	published, err := results.Publish(ctx, stored.ID, f.admin)
	require.NoError(t, err)
	require.True(t, published.IsPublished)
	require.NotNil(t, published.PublishedBy)

	mine, err = results.Mine(ctx, f.member.ID, 1, 20)
	require.NoError(t, err)
	require.False(t, mine.CacheHit)
	require.Len(t, mine.Items, 1)
	require.Equal(t, stored.ID, mine.Items[0].ID)

	_, err = results.Unpublish(ctx, stored.ID, f.admin)
	require.NoError(t, err)

	mine, err = results.Mine(ctx, f.member.ID, 1, 20)
	require.NoError(t, err)
	require.Empty(t, mine.Items)

	require.Equal(t, []string{"exam_result.published", "exam_result.unpublished"}, audit.actions())
	require.Equal(t, f.admin.ID, audit.entries[0].Actor.ID)

	_, err = results.Publish(ctx, 9999, f.admin)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMineResultsArePaginated(t *testing.T) {
	f := setupExamFixture(t, 0)
	ctx := context.Background()
	_, cache := setupTestRedis(t)
	results := NewResultService(repository.NewExamResultRepository(f.db), &stubAuditRecorder{}, cache, 0, testLogger())

	resultIDs := make([]uint, 0, 3)
	for i := 0; i < 3; i++ {
		started, created, err := f.attempts.Start(ctx, f.exam.ID, f.memberActor())
		require.NoError(t, err)
		require.True(t, created)
		_, err = f.attempts.Submit(ctx, started.ID, dto.SubmitAttemptRequest{}, f.memberActor())
		require.NoError(t, err)

		var stored models.ExamResult
		require.NoError(t, f.db.Where("attempt_id = ?", started.ID).First(&stored).Error)
		resultIDs = append(resultIDs, stored.ID)
	}

	first, err := results.Mine(ctx, f.member.ID, 1, 2)
	require.NoError(t, err)
	require.Empty(t, first.Items)

	for _, id := range resultIDs {
		_, err := results.Publish(ctx, id, f.admin)
		require.NoError(t, err)
	}

	first, err = results.Mine(ctx, f.member.ID, 1, 2)
	require.NoError(t, err)
	require.False(t, first.CacheHit)
	require.Len(t, first.Items, 2)
	require.Equal(t, int64(3), first.Pagination.TotalItems)
	require.Equal(t, 2, first.Pagination.TotalPages)

	second, err := results.Mine(ctx, f.member.ID, 2, 2)
	require.NoError(t, err)
	require.Len(t, second.Items, 1)

	seen := map[uint]bool{second.Items[0].ID: true}
	for _, item := range first.Items {
		seen[item.ID] = true
	}
	require.Len(t, seen, 3)
}
