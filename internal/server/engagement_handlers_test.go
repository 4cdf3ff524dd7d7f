package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"linkup/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func likeCount(t *testing.T, ts *testServer, postID uint) int64 {
	t.Helper()
	var count int64
	require.NoError(t, ts.db.Model(&models.Like{}).Where("post_id = ?", postID).Count(&count).Error)
	return count
}

func TestLikePost_Idempotent(t *testing.T) {
	ts := newTestServer(t)
	author := ts.seedUser(t, "author")
	fan := ts.seedUser(t, "fan")
	post := ts.seedPost(t, author.ID, "likeable")

	app := ts.appAs(fan.ID)
	path := fmt.Sprintf("/api/posts/%d/like", post.ID)

	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, path, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()
	}

	assert.Equal(t, int64(1), likeCount(t, ts, post.ID))
}

func TestDislikePost_RemovesLike(t *testing.T) {
	ts := newTestServer(t)
	author := ts.seedUser(t, "author")
	fan := ts.seedUser(t, "fan")
	post := ts.seedPost(t, author.ID, "fickle crowd")

	app := ts.appAs(fan.ID)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/api/posts/%d/like", post.ID), nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp, err = app.Test(httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/api/posts/%d/dislike", post.ID), nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	assert.Zero(t, likeCount(t, ts, post.ID))
}

func TestDislikePost_NoLikeIsNoOp(t *testing.T) {
	ts := newTestServer(t)
	author := ts.seedUser(t, "author")
	fan := ts.seedUser(t, "fan")
	post := ts.seedPost(t, author.ID, "never liked")

	app := ts.appAs(fan.ID)
	resp, err := app.Test(httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/api/posts/%d/dislike", post.ID), nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	assert.Zero(t, likeCount(t, ts, post.ID))
}

func TestLikePost_MissingPost(t *testing.T) {
	ts := newTestServer(t)
	fan := ts.seedUser(t, "fan")

	app := ts.appAs(fan.ID)
	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/posts/999/like", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestBookmarkPost_Toggles(t *testing.T) {
	ts := newTestServer(t)
	author := ts.seedUser(t, "author")
	reader := ts.seedUser(t, "reader")
	post := ts.seedPost(t, author.ID, "worth saving")

	app := ts.appAs(reader.ID)
	path := fmt.Sprintf("/api/posts/%d/bookmark", post.ID)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, path, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	envelope := decodeEnvelope(t, resp)
	assert.Equal(t, "Post bookmarked", envelope.Message)

	var count int64
	require.NoError(t, ts.db.Model(&models.Bookmark{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	resp, err = app.Test(httptest.NewRequest(http.MethodPost, path, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	envelope = decodeEnvelope(t, resp)
	assert.Equal(t, "Bookmark removed", envelope.Message)

	require.NoError(t, ts.db.Model(&models.Bookmark{}).Count(&count).Error)
	assert.Zero(t, count)
}
