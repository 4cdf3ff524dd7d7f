package repository

import (
	"context"
	"testing"

	"linkup/internal/cache"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentRepository_ListByPost_ServesSecondReadFromCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })

	db, mock := setupMockDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT \* FROM "comments"`).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "post_id", "user_id", "content"}).
			AddRow(1, 5, 2, "first"))
	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}).
			AddRow(2, "commenter"))

	first, err := repo.ListByPost(ctx, 5)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// No further SQL is expected; the repeat read comes from the cache.
	second, err := repo.ListByPost(ctx, 5)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].Content, second[0].Content)
	assert.NoError(t, mock.ExpectationsWereMet())

	cache.InvalidatePost(ctx, 5)
	assert.False(t, mr.Exists(cache.CommentsKey(5)))
}
