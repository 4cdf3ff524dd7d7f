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

func seedNotification(t *testing.T, ts *testServer, recipientID, senderID, postID uint) *models.Notification {
	t.Helper()
	n := &models.Notification{
		RecipientID: recipientID,
		SenderID:    senderID,
		Kind:        models.NotificationKindComment,
		PostID:      postID,
	}
	require.NoError(t, ts.db.Create(n).Error)
	return n
}

func TestGetNotifications_OnlyOwn(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.seedUser(t, "alice")
	bob := ts.seedUser(t, "bob")
	post := ts.seedPost(t, alice.ID, "popular")

	seedNotification(t, ts, alice.ID, bob.ID, post.ID)
	seedNotification(t, ts, bob.ID, alice.ID, post.ID)

	app := ts.appAs(alice.ID)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/notifications/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	envelope := decodeEnvelope(t, resp)
	raw, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	var items []models.Notification
	require.NoError(t, json.Unmarshal(raw, &items))
	require.Len(t, items, 1)
	assert.Equal(t, alice.ID, items[0].RecipientID)
	assert.Equal(t, bob.Username, items[0].Sender.Username)
}

func TestMarkNotificationRead(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.seedUser(t, "alice")
	bob := ts.seedUser(t, "bob")
	post := ts.seedPost(t, alice.ID, "popular")
	n := seedNotification(t, ts, alice.ID, bob.ID, post.ID)

	app := ts.appAs(alice.ID)
	resp, err := app.Test(httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/api/notifications/%d/read", n.ID), nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var updated models.Notification
	require.NoError(t, ts.db.First(&updated, n.ID).Error)
	assert.True(t, updated.IsRead)
}

func TestMarkNotificationRead_OtherRecipient(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.seedUser(t, "alice")
	bob := ts.seedUser(t, "bob")
	post := ts.seedPost(t, alice.ID, "popular")
	n := seedNotification(t, ts, alice.ID, bob.ID, post.ID)

	// Bob cannot mark Alice's notification
	app := ts.appAs(bob.ID)
	resp, err := app.Test(httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/api/notifications/%d/read", n.ID), nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUnreadCountAndReadAll(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.seedUser(t, "alice")
	bob := ts.seedUser(t, "bob")
	post := ts.seedPost(t, alice.ID, "popular")
	seedNotification(t, ts, alice.ID, bob.ID, post.ID)
	seedNotification(t, ts, alice.ID, bob.ID, post.ID)

	app := ts.appAs(alice.ID)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/notifications/unread-count", nil))
	require.NoError(t, err)
	envelope := decodeEnvelope(t, resp)
	data := envelope.Data.(map[string]any)
	assert.Equal(t, float64(2), data["count"])

	resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/api/notifications/read-all", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/notifications/unread-count", nil))
	require.NoError(t, err)
	envelope = decodeEnvelope(t, resp)
	data = envelope.Data.(map[string]any)
	assert.Equal(t, float64(0), data["count"])
}
