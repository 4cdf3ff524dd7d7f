package mailer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []CommentNotification
	err  error
}

func (m *recordingMailer) SendCommentNotification(msg CommentNotification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func TestDispatcher_DeliversQueuedMail(t *testing.T) {
	rec := &recordingMailer{}
	d := NewDispatcher(rec)
	d.Start(context.Background())

	d.Enqueue(CommentNotification{To: "author@example.com", CommenterName: "alice"})
	d.Enqueue(CommentNotification{To: "author@example.com", CommenterName: "bob"})
	d.Close()

	assert.Equal(t, 2, rec.sentCount())
}

func TestDispatcher_SendFailureDoesNotBlock(t *testing.T) {
	rec := &recordingMailer{err: errors.New("smtp unavailable")}
	d := NewDispatcher(rec)
	d.Start(context.Background())

	done := make(chan struct{})
	go func() {
		d.Enqueue(CommentNotification{To: "author@example.com"})
		d.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatcher blocked on a failing mailer")
	}
	assert.Equal(t, 0, rec.sentCount())
}

func TestRenderCommentBody_EscapesUserContent(t *testing.T) {
	body := renderCommentBody(CommentNotification{
		ToName:        "Alice <admin>",
		CommenterName: "bob\"",
		CommentText:   `<script>alert("x")</script>`,
		PostURL:       "http://localhost:8080/posts/1?a=1&b=2",
	})

	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "&lt;script&gt;")
	assert.Contains(t, body, "Alice &lt;admin&gt;")
	assert.Contains(t, body, "bob&#34;")
	assert.Contains(t, body, "a=1&amp;b=2")
}

func TestDispatcher_DropsWhenQueueFull(t *testing.T) {
	rec := &recordingMailer{}
	d := NewDispatcher(rec)
	// Worker never started, so the buffer fills and overflow is dropped.
	for i := 0; i < defaultQueueSize+10; i++ {
		d.Enqueue(CommentNotification{To: "author@example.com"})
	}
	assert.Len(t, d.queue, defaultQueueSize)
}
