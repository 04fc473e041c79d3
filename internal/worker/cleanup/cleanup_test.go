package cleanup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

// mockSessionExpirer はDeleteExpiredの呼び出しを記録するモック。
type mockSessionExpirer struct {
	mu       sync.Mutex
	calls    int
	deleted  int64
	err      error
	lastCtx  context.Context
	notifyCh chan struct{}
}

func (m *mockSessionExpirer) DeleteExpired(ctx context.Context) (int64, error) {
	m.mu.Lock()
	m.calls++
	m.lastCtx = ctx
	m.mu.Unlock()
	if m.notifyCh != nil {
		select {
		case m.notifyCh <- struct{}{}:
		default:
		}
	}
	return m.deleted, m.err
}

func (m *mockSessionExpirer) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type mockRecorder struct {
	counts []int64
}

func (m *mockRecorder) RecordSessionsExpired(count int64) {
	m.counts = append(m.counts, count)
}

func newTestLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// findLogField はJSONログから指定キーを持つ最初のエントリの値を返す。
func findLogField(buf *bytes.Buffer, key string) (interface{}, bool) {
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]interface{}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		if v, ok := entry[key]; ok {
			return v, true
		}
	}
	return nil, false
}

func TestCleanupJob_Run_DeletesExpiredSessions(t *testing.T) {
	var buf bytes.Buffer
	sessions := &mockSessionExpirer{deleted: 5}
	recorder := &mockRecorder{}
	job := NewCleanupJob(sessions, newTestLogger(&buf), recorder)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if sessions.callCount() != 1 {
		t.Errorf("DeleteExpired calls = %d, want 1", sessions.callCount())
	}
	if len(recorder.counts) != 1 || recorder.counts[0] != 5 {
		t.Errorf("recorded counts = %v, want [5]", recorder.counts)
	}
	if v, ok := findLogField(&buf, "deleted_count"); !ok || v != float64(5) {
		t.Errorf("log should contain deleted_count=5, got: %s", buf.String())
	}
	if _, ok := findLogField(&buf, "duration_ms"); !ok {
		t.Errorf("log should contain duration_ms, got: %s", buf.String())
	}
}

func TestCleanupJob_Run_Idempotent_ZeroRows(t *testing.T) {
	var buf bytes.Buffer
	job := NewCleanupJob(&mockSessionExpirer{}, newTestLogger(&buf), nil)

	for i := 0; i < 2; i++ {
		if err := job.Run(context.Background()); err != nil {
			t.Fatalf("Run() #%d error = %v", i+1, err)
		}
	}

	if v, ok := findLogField(&buf, "deleted_count"); !ok || v != float64(0) {
		t.Errorf("log should contain deleted_count=0, got: %s", buf.String())
	}
}

func TestCleanupJob_Run_ReturnsErrorOnStoreFailure(t *testing.T) {
	var buf bytes.Buffer
	storeErr := errors.New("connection refused")
	recorder := &mockRecorder{}
	job := NewCleanupJob(&mockSessionExpirer{err: storeErr}, newTestLogger(&buf), recorder)

	err := job.Run(context.Background())
	if !errors.Is(err, storeErr) {
		t.Fatalf("Run() error = %v, want wrapped %v", err, storeErr)
	}
	if len(recorder.counts) != 0 {
		t.Errorf("nothing should be recorded on failure, got %v", recorder.counts)
	}
	if !strings.Contains(buf.String(), `"level":"ERROR"`) {
		t.Errorf("failure should be logged at ERROR, got: %s", buf.String())
	}
}

func TestCleanupJob_Run_PropagatesContext(t *testing.T) {
	var buf bytes.Buffer
	sessions := &mockSessionExpirer{}
	job := NewCleanupJob(sessions, newTestLogger(&buf), nil)

	type ctxKey struct{}
	ctx := context.WithValue(context.Background(), ctxKey{}, "marker")
	_ = job.Run(ctx)

	if sessions.lastCtx.Value(ctxKey{}) != "marker" {
		t.Error("Run should pass its context to the store")
	}
}

func TestCleanupJob_Start_RunsImmediatelyAndOnTick(t *testing.T) {
	var buf bytes.Buffer
	sessions := &mockSessionExpirer{notifyCh: make(chan struct{}, 1)}
	job := NewCleanupJob(sessions, newTestLogger(&syncBuffer{buf: &buf}), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		job.Start(ctx, 10*time.Millisecond)
		close(done)
	}()

	// 起動直後の1回とティックによる1回以上
	for i := 0; i < 2; i++ {
		select {
		case <-sessions.notifyCh:
		case <-time.After(2 * time.Second):
			t.Fatalf("DeleteExpired was not called %d times", i+1)
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after cancel")
	}

	if sessions.callCount() < 2 {
		t.Errorf("DeleteExpired calls = %d, want >= 2", sessions.callCount())
	}
}

func TestCleanupJob_Start_ContinuesAfterFailure(t *testing.T) {
	var buf bytes.Buffer
	sessions := &mockSessionExpirer{err: errors.New("boom"), notifyCh: make(chan struct{}, 1)}
	job := NewCleanupJob(sessions, newTestLogger(&syncBuffer{buf: &buf}), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go job.Start(ctx, 10*time.Millisecond)

	for i := 0; i < 3; i++ {
		select {
		case <-sessions.notifyCh:
		case <-time.After(2 * time.Second):
			t.Fatalf("job stopped after failure (calls = %d)", sessions.callCount())
		}
	}
}

// syncBuffer はgoroutineから書き込まれるログ用のスレッドセーフなbytes.Buffer。
type syncBuffer struct {
	mu  sync.Mutex
	buf *bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}
