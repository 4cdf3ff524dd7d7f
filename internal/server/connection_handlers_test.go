package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"linkup/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect_Symmetric(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.seedUser(t, "alice")
	bob := ts.seedUser(t, "bob")

	app := ts.appAs(alice.ID)
	resp, err := app.Test(httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/api/connections/%d", bob.ID), nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	// Either side sees the other in their connections
	for _, viewer := range []*models.User{alice, bob} {
		app := ts.appAs(viewer.ID)
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/connections/", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		envelope := decodeEnvelope(t, resp)
		raw, err := json.Marshal(envelope.Data)
		require.NoError(t, err)
		var users []models.User
		require.NoError(t, json.Unmarshal(raw, &users))
		require.Len(t, users, 1)
	}
}

func TestConnect_RepeatIsNoOp(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.seedUser(t, "alice")
	bob := ts.seedUser(t, "bob")

	app := ts.appAs(alice.ID)
	resp, err := app.Test(httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/api/connections/%d", bob.ID), nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	// The same connect again, from either side, reports the existing link
	for _, viewer := range []uint{alice.ID, bob.ID} {
		peer := bob.ID
		if viewer == bob.ID {
			peer = alice.ID
		}
		app := ts.appAs(viewer)
		resp, err := app.Test(httptest.NewRequest(http.MethodPost,
			fmt.Sprintf("/api/connections/%d", peer), nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		envelope := decodeEnvelope(t, resp)
		assert.Equal(t, "Already connected", envelope.Message)
	}

	var count int64
	require.NoError(t, ts.db.Model(&models.Connection{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestConnect_SelfRejected(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.seedUser(t, "alice")

	app := ts.appAs(alice.ID)
	resp, err := app.Test(httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/api/connections/%d", alice.ID), nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestConnect_UnknownUser(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.seedUser(t, "alice")

	app := ts.appAs(alice.ID)
	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/connections/999", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDisconnect_RemovesFeedAccess(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.seedUser(t, "alice")
	bob := ts.seedUser(t, "bob")
	ts.connect(t, alice.ID, bob.ID)
	ts.seedPost(t, bob.ID, "from bob")

	app := ts.appAs(alice.ID)
	resp, err := app.Test(httptest.NewRequest(http.MethodDelete,
		fmt.Sprintf("/api/connections/%d", bob.ID), nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/posts/feed", nil))
	require.NoError(t, err)
	envelope := decodeEnvelope(t, resp)
	raw, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	var posts []models.Post
	require.NoError(t, json.Unmarshal(raw, &posts))
	assert.Empty(t, posts)
}
