package client

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/vietddude/fitlink/internal/core/clock"
	"github.com/vietddude/fitlink/internal/core/domain"
	"github.com/vietddude/fitlink/internal/infra/backend/retry"
	"github.com/vietddude/fitlink/internal/infra/backend/transport"
	"github.com/vietddude/fitlink/internal/infra/connectivity"
	"github.com/vietddude/fitlink/internal/infra/discovery"
	"github.com/vietddude/fitlink/internal/infra/queue"
)

const squatConfigJSON = `{
	"exercise_type": "squat",
	"target_keypoints": ["left_hip", "right_hip"],
	"thresholds": {"min_angle": 85, "max_angle": 175, "hold_time": 0.5},
	"feedback": {"real_time_enabled": true, "audio_enabled": false, "visual_enabled": true}
}`

const poseJSON = `{"keypoints":[{"x":0.5,"y":0.5,"name":"nose"}],"confidence":0.9,"formScore":80,"currentRep":2,"stage":"up","warnings":[]}`

const analysisJSON = `{"sessionId":"sess-1","exerciseType":"squat","totalReps":10,"accuracy":90,
	"formFeedback":[],"keypoints":[],"duration":30,"calories":5,"recommendations":[]}`

type harness struct {
	client  *Client
	monitor *connectivity.Monitor
	server  *httptest.Server
	hits    atomic.Int32
}

func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.Retry = retry.Policy{MaxRetries: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, BackoffFactor: 2}
	cfg.Queue = queue.Config{MaxRetries: 3, RetryDelay: 10 * time.Millisecond}
	return cfg
}

func newHarness(t *testing.T, cfg Config, handler http.HandlerFunc, opts ...Option) *harness {
	t.Helper()

	h := &harness{monitor: connectivity.NewMonitor(nil)}
	h.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(h.server.Close)

	tr := transport.New(transport.DefaultConfig(), nil)
	h.client = New(cfg, tr, discovery.Static(h.server.URL), h.monitor, opts...)
	t.Cleanup(func() { _ = h.client.Close() })

	if !h.client.Initialize(context.Background()) {
		t.Fatal("expected initialize to succeed")
	}
	return h
}

func status(code int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(code)
		_, _ = w.Write([]byte(`{"detail":"nope"}`))
	}
}

func respond(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func writeVideo(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.mp4")
	if err := os.WriteFile(path, []byte(strings.Repeat("v", 4096)), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func awaitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestClient_OfflineDefersWithoutNetworkCalls(t *testing.T) {
	h := newHarness(t, fastConfig(), respond(`{}`))
	h.monitor.OnChange(domain.Offline())
	ctx := context.Background()

	_, err := h.client.UploadVideo(ctx, writeVideo(t), "squat", nil)
	if _, ok := domain.AsDeferred(err); !ok {
		t.Errorf("upload: expected deferral, got %v", err)
	}

	_, err = h.client.GetExerciseConfig(ctx, "squat")
	if !errors.Is(err, domain.ErrQueueDeferred) {
		t.Errorf("config: expected ErrQueueDeferred, got %v", err)
	}

	_, err = h.client.SubmitSessionSummary(ctx, domain.SessionSummaryRequest{ExerciseType: "squat", TotalReps: 10})
	if !errors.Is(err, domain.ErrQueueDeferred) {
		t.Errorf("summary: expected ErrQueueDeferred, got %v", err)
	}

	_, err = h.client.AnalyzeFrame(ctx, "frame", "squat")
	if !errors.Is(err, domain.ErrNetworkUnavailable) {
		t.Errorf("frame: expected ErrNetworkUnavailable, got %v", err)
	}

	if got := h.hits.Load(); got != 0 {
		t.Errorf("expected no network calls while offline, got %d", got)
	}

	report := h.client.Status()
	if report.QueueDepth != 3 {
		t.Errorf("expected 3 deferred requests (frames are never queued), got %d", report.QueueDepth)
	}
	kinds := []string{report.Queued[0].Kind, report.Queued[1].Kind, report.Queued[2].Kind}
	if kinds[0] != "video" || kinds[1] != "config" || kinds[2] != "summary" {
		t.Errorf("unexpected queue order %v", kinds)
	}
}

func TestClient_ConfigCachedWithinTTL(t *testing.T) {
	clk := clock.NewFake(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	h := newHarness(t, fastConfig(), respond(squatConfigJSON), WithClock(clk))
	ctx := context.Background()

	first, err := h.client.GetExerciseConfig(ctx, "squat")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Thresholds.MinAngle != 85 || first.Source != domain.SourceBackend {
		t.Errorf("expected backend config with normalized keys, got %+v", first)
	}

	if _, err := h.client.GetExerciseConfig(ctx, "squat"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := h.hits.Load(); got != 1 {
		t.Fatalf("expected 1 network call within TTL, got %d", got)
	}

	clk.Advance(5 * time.Minute)
	if _, err := h.client.GetExerciseConfig(ctx, "squat"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := h.hits.Load(); got != 2 {
		t.Errorf("expected a new network call after TTL, got %d", got)
	}
}

func TestClient_ConfigConcurrentMissesCoalesce(t *testing.T) {
	release := make(chan struct{})
	h := newHarness(t, fastConfig(), func(w http.ResponseWriter, r *http.Request) {
		<-release
		_, _ = w.Write([]byte(squatConfigJSON))
	})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := h.client.GetExerciseConfig(context.Background(), "squat"); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := h.hits.Load(); got != 1 {
		t.Errorf("expected concurrent misses to share one fetch, got %d calls", got)
	}
}

func TestClient_OfflineConfigReplayDegradesOnServerError(t *testing.T) {
	h := newHarness(t, fastConfig(), status(http.StatusInternalServerError))
	h.monitor.OnChange(domain.Offline())

	_, err := h.client.GetExerciseConfig(context.Background(), "squat")
	id, ok := domain.AsDeferred(err)
	if !ok {
		t.Fatalf("expected deferral, got %v", err)
	}

	h.monitor.OnChange(domain.Online())

	cfg, err := AwaitAs[*domain.ExerciseConfig](awaitCtx(t), h.client, id)
	if err != nil {
		t.Fatalf("expected fallback config, got %v", err)
	}
	if cfg.Thresholds.MinAngle != 90 {
		t.Errorf("expected squat fallback minAngle 90, got %v", cfg.Thresholds.MinAngle)
	}
	if cfg.Source != domain.SourceSynthetic {
		t.Error("expected synthetic config")
	}
	if got := h.hits.Load(); got != 4 {
		t.Errorf("expected the full retry policy (4 attempts), got %d", got)
	}

	// The fallback was cached
	again, err := h.client.GetExerciseConfig(context.Background(), "squat")
	if err != nil || again.Source != domain.SourceSynthetic {
		t.Errorf("expected cached fallback, got %+v, %v", again, err)
	}
	if got := h.hits.Load(); got != 4 {
		t.Errorf("expected cache hit without network, got %d calls", got)
	}
}

func TestClient_FrameAuthFailuresDegrade(t *testing.T) {
	h := newHarness(t, fastConfig(), status(http.StatusUnauthorized))

	for i := 0; i < 3; i++ {
		pose, err := h.client.AnalyzeFrame(context.Background(), "frame", "squat")
		if err != nil {
			t.Fatalf("call %d: expected degraded result, got %v", i, err)
		}
		if pose.Source != domain.SourceSynthetic {
			t.Errorf("call %d: expected synthetic pose", i)
		}
	}
	if got := h.hits.Load(); got != 3 {
		t.Errorf("expected one attempt per call for 401, got %d", got)
	}
}

func TestClient_FrameServerErrorRetriesOnce(t *testing.T) {
	h := newHarness(t, fastConfig(), status(http.StatusServiceUnavailable))

	pose, err := h.client.AnalyzeFrame(context.Background(), "frame", "push_up")
	if err != nil {
		t.Fatalf("expected degraded result, got %v", err)
	}
	if pose.Source != domain.SourceSynthetic || len(pose.Keypoints) != 33 {
		t.Errorf("unexpected synthetic pose %+v", pose)
	}
	if got := h.hits.Load(); got != 2 {
		t.Errorf("expected exactly one retry for frames, got %d calls", got)
	}
}

func TestClient_FrameSuccess(t *testing.T) {
	h := newHarness(t, fastConfig(), func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["frame_data"] != "abc" || body["exercise_type"] != "squat" {
			t.Errorf("unexpected frame body %v", body)
		}
		_, _ = w.Write([]byte(poseJSON))
	})

	pose, err := h.client.AnalyzeFrame(context.Background(), "abc", "squat")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pose.Source != domain.SourceBackend || pose.Stage != domain.StageUp {
		t.Errorf("unexpected pose %+v", pose)
	}
}

func TestClient_FrameFallbackDisabled(t *testing.T) {
	cfg := fastConfig()
	cfg.FrameFallback = false
	h := newHarness(t, cfg, status(http.StatusUnauthorized))

	_, err := h.client.AnalyzeFrame(context.Background(), "frame", "squat")
	if code, ok := domain.StatusCode(err); !ok || code != http.StatusUnauthorized {
		t.Fatalf("expected 401 to propagate, got %v", err)
	}
}

func TestClient_UploadVideo(t *testing.T) {
	h := newHarness(t, fastConfig(), func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/analyze-video" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if r.FormValue("exerciseType") != "squat" || r.FormValue("timestamp") == "" {
			t.Errorf("missing multipart fields")
		}
		f, _, err := r.FormFile("video")
		if err != nil {
			t.Errorf("missing video: %v", err)
		} else {
			_, _ = io.Copy(io.Discard, f)
			f.Close()
		}
		_, _ = w.Write([]byte(`{"success":true,"data":` + analysisJSON + `}`))
	})

	var mu sync.Mutex
	var last domain.UploadProgress
	res, err := h.client.UploadVideo(context.Background(), writeVideo(t), "squat", func(p domain.UploadProgress) {
		mu.Lock()
		last = p
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.SessionID != "sess-1" || res.TotalReps != 10 {
		t.Errorf("unexpected result %+v", res)
	}

	mu.Lock()
	defer mu.Unlock()
	if last.Fraction() != 1 {
		t.Errorf("expected progress to reach 100%%, got %d/%d", last.Sent, last.Total)
	}
}

func TestClient_UploadNeverDegrades(t *testing.T) {
	h := newHarness(t, fastConfig(), status(http.StatusUnauthorized))

	_, err := h.client.UploadVideo(context.Background(), writeVideo(t), "squat", nil)
	if code, ok := domain.StatusCode(err); !ok || code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestClient_UploadMissingFile(t *testing.T) {
	h := newHarness(t, fastConfig(), respond(analysisJSON))

	_, err := h.client.UploadVideo(context.Background(), filepath.Join(t.TempDir(), "nope.mp4"), "squat", nil)
	if err == nil || errors.Is(err, domain.ErrQueueDeferred) {
		t.Fatalf("expected local file error, got %v", err)
	}
	if got := h.hits.Load(); got != 0 {
		t.Errorf("expected no network call, got %d", got)
	}
}

func TestClient_SummaryHasNoFallback(t *testing.T) {
	h := newHarness(t, fastConfig(), status(http.StatusInternalServerError))

	_, err := h.client.SubmitSessionSummary(context.Background(), domain.SessionSummaryRequest{ExerciseType: "squat"})
	if code, ok := domain.StatusCode(err); !ok || code != http.StatusInternalServerError {
		t.Fatalf("expected last 500 to propagate, got %v", err)
	}
	if got := h.hits.Load(); got != 4 {
		t.Errorf("expected 4 attempts, got %d", got)
	}
}

func TestClient_SummarySuccess(t *testing.T) {
	h := newHarness(t, fastConfig(), func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		for _, key := range []string{"exerciseType", "duration", "totalReps", "averageAccuracy", "userId", "timestamp"} {
			if _, ok := body[key]; !ok {
				t.Errorf("summary body missing %s", key)
			}
		}
		_, _ = w.Write([]byte(`{"sessionId":"s-9","summary":{"totalReps":12}}`))
	})

	res, err := h.client.SubmitSessionSummary(context.Background(), domain.SessionSummaryRequest{
		ExerciseType:    "squat",
		Duration:        120,
		TotalReps:       12,
		AverageAccuracy: 88,
		UserID:          "u-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.SessionID != "s-9" {
		t.Errorf("unexpected session id %q", res.SessionID)
	}
}

func TestClient_ReplayPreservesOrder(t *testing.T) {
	var mu sync.Mutex
	var order []string
	h := newHarness(t, fastConfig(), func(w http.ResponseWriter, r *http.Request) {
		var body domain.SessionSummaryRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		mu.Lock()
		order = append(order, body.UserID)
		mu.Unlock()
		_, _ = w.Write([]byte(`{"sessionId":"` + body.UserID + `","summary":{}}`))
	})
	h.monitor.OnChange(domain.Offline())

	var ids []string
	for _, user := range []string{"a", "b", "c"} {
		_, err := h.client.SubmitSessionSummary(context.Background(), domain.SessionSummaryRequest{UserID: user})
		id, _ := domain.AsDeferred(err)
		ids = append(ids, id)
	}

	h.monitor.OnChange(domain.Online())

	for i, id := range ids {
		res, err := AwaitAs[*domain.SessionSummary](awaitCtx(t), h.client, id)
		if err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
		if res.SessionID != []string{"a", "b", "c"}[i] {
			t.Errorf("request %d got session %q", i, res.SessionID)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if strings.Join(order, ",") != "a,b,c" {
		t.Errorf("expected replay in enqueue order, got %v", order)
	}
}

func TestClient_DroppedRequestReported(t *testing.T) {
	cfg := fastConfig()
	cfg.Queue.MaxRetries = 0
	h := newHarness(t, cfg, status(http.StatusBadRequest))

	dropped := make(chan domain.QueuedRequest, 1)
	h.client.OnDropped(func(req domain.QueuedRequest, err error) { dropped <- req })

	h.monitor.OnChange(domain.Offline())
	_, err := h.client.SubmitSessionSummary(context.Background(), domain.SessionSummaryRequest{UserID: "x"})
	id, _ := domain.AsDeferred(err)
	h.monitor.OnChange(domain.Online())

	_, err = h.client.Await(awaitCtx(t), id)
	if code, ok := domain.StatusCode(err); !ok || code != http.StatusBadRequest {
		t.Fatalf("expected dropped request to report 400, got %v", err)
	}

	select {
	case req := <-dropped:
		if req.ID != id || req.Kind != domain.KindSummary {
			t.Errorf("unexpected dropped request %+v", req)
		}
	case <-time.After(time.Second):
		t.Fatal("expected drop notification")
	}

	if _, err := h.client.Await(context.Background(), id); !errors.Is(err, ErrUnknownRequest) {
		t.Errorf("expected outcome to be collected once, got %v", err)
	}
}

func TestClient_DeferredUploadOfDeletedFileDroppedAtOnce(t *testing.T) {
	h := newHarness(t, fastConfig(), respond(analysisJSON))

	dropped := make(chan domain.QueuedRequest, 4)
	h.client.OnDropped(func(req domain.QueuedRequest, err error) { dropped <- req })

	path := writeVideo(t)
	h.monitor.OnChange(domain.Offline())
	_, err := h.client.UploadVideo(context.Background(), path, "squat", nil)
	id, ok := domain.AsDeferred(err)
	if !ok {
		t.Fatalf("expected deferral, got %v", err)
	}

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	h.monitor.OnChange(domain.Online())

	_, err = h.client.Await(awaitCtx(t), id)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected missing file error, got %v", err)
	}

	select {
	case req := <-dropped:
		if req.ID != id || req.AttemptCount != 1 {
			t.Errorf("expected drop on the first replay, got %+v", req)
		}
	case <-time.After(time.Second):
		t.Fatal("expected drop notification")
	}
	if got := h.hits.Load(); got != 0 {
		t.Errorf("expected no upload attempts, got %d", got)
	}
	if h.client.Status().QueueDepth != 0 {
		t.Error("expected empty queue")
	}
}

func TestClient_UncollectedOutcomesExpire(t *testing.T) {
	clk := clock.NewFake(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	h := newHarness(t, fastConfig(), respond(`{"sessionId":"s-1","summary":{}}`), WithClock(clk))
	ctx := context.Background()

	h.monitor.OnChange(domain.Offline())
	_, err := h.client.SubmitSessionSummary(ctx, domain.SessionSummaryRequest{UserID: "a"})
	collected, _ := domain.AsDeferred(err)
	_, err = h.client.SubmitSessionSummary(ctx, domain.SessionSummaryRequest{UserID: "b"})
	forgotten, _ := domain.AsDeferred(err)

	h.monitor.OnChange(domain.Online())
	if _, err := h.client.Await(awaitCtx(t), collected); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for !h.client.isSettled(forgotten) && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if !h.client.isSettled(forgotten) {
		t.Fatal("expected second request to be replayed")
	}

	if n := h.client.EvictExpired(); n != 0 {
		t.Errorf("expected nothing evicted within the retention window, got %d", n)
	}

	clk.Advance(10 * time.Minute)
	if n := h.client.EvictExpired(); n != 1 {
		t.Errorf("expected one uncollected outcome evicted, got %d", n)
	}
	if _, err := h.client.Await(ctx, forgotten); !errors.Is(err, ErrUnknownRequest) {
		t.Errorf("expected expired outcome to be unknown, got %v", err)
	}

	h.client.mu.Lock()
	left := len(h.client.waiters)
	h.client.mu.Unlock()
	if left != 0 {
		t.Errorf("expected no retained waiters, got %d", left)
	}
}

// isSettled reports whether a deferred request has an outcome waiting.
func (c *Client) isSettled(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	w, ok := c.waiters[id]
	return ok && !w.settledAt.IsZero()
}

func TestClient_UnknownTypeFallbackKeepsRequestedName(t *testing.T) {
	h := newHarness(t, fastConfig(), status(http.StatusInternalServerError))

	cfg, err := h.client.GetExerciseConfig(context.Background(), "yoga")
	if err != nil {
		t.Fatalf("expected fallback config, got %v", err)
	}
	if cfg.ExerciseType != "yoga" {
		t.Errorf("expected requested exercise name, got %q", cfg.ExerciseType)
	}
	if cfg.Source != domain.SourceSynthetic || cfg.Thresholds.MaxAngle != 180 {
		t.Errorf("expected generic synthetic config, got %+v", cfg)
	}

	cached, err := h.client.GetExerciseConfig(context.Background(), "yoga")
	if err != nil || cached.ExerciseType != "yoga" {
		t.Errorf("expected cached config under the requested name, got %+v, %v", cached, err)
	}
}

func TestClient_InitializeFailureBehavesOffline(t *testing.T) {
	monitor := connectivity.NewMonitor(nil)
	tr := transport.New(transport.DefaultConfig(), nil)
	c := New(fastConfig(), tr, discovery.Static(""), monitor)
	defer c.Close()

	if c.Initialize(context.Background()) {
		t.Fatal("expected initialize to fail without a backend")
	}

	_, err := c.GetExerciseConfig(context.Background(), "squat")
	if !errors.Is(err, domain.ErrQueueDeferred) {
		t.Fatalf("expected deferral while uninitialized, got %v", err)
	}
	if !c.Status().Connected || c.Status().Initialized {
		t.Errorf("unexpected status %+v", c.Status())
	}
}

func TestClient_ReplayInitializesLazily(t *testing.T) {
	server := httptest.NewServer(respond(squatConfigJSON))
	defer server.Close()

	var url atomic.Value
	url.Store("")
	disc := discoverFunc(func(context.Context) (string, error) {
		u := url.Load().(string)
		if u == "" {
			return "", domain.ErrNotInitialized
		}
		return u, nil
	})

	monitor := connectivity.NewMonitor(nil)
	c := New(fastConfig(), transport.New(transport.DefaultConfig(), nil), disc, monitor)
	defer c.Close()

	c.Initialize(context.Background())
	_, err := c.GetExerciseConfig(context.Background(), "squat")
	id, ok := domain.AsDeferred(err)
	if !ok {
		t.Fatalf("expected deferral, got %v", err)
	}

	url.Store(server.URL)
	monitor.OnChange(domain.Offline())
	monitor.OnChange(domain.Online())

	cfg, err := AwaitAs[*domain.ExerciseConfig](awaitCtx(t), c, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Source != domain.SourceBackend || !c.Status().Initialized {
		t.Errorf("expected replay to initialize and fetch from backend, got %+v", cfg)
	}
}

func TestClient_FirstInitializeDrainsQueue(t *testing.T) {
	server := httptest.NewServer(respond(squatConfigJSON))
	defer server.Close()

	var url atomic.Value
	url.Store("")
	disc := discoverFunc(func(context.Context) (string, error) {
		u := url.Load().(string)
		if u == "" {
			return "", domain.ErrNotInitialized
		}
		return u, nil
	})

	c := New(fastConfig(), transport.New(transport.DefaultConfig(), nil), disc, connectivity.NewMonitor(nil))
	defer c.Close()

	_, err := c.GetExerciseConfig(context.Background(), "squat")
	id, ok := domain.AsDeferred(err)
	if !ok {
		t.Fatalf("expected deferral, got %v", err)
	}

	url.Store(server.URL)
	if !c.Initialize(context.Background()) {
		t.Fatal("expected initialize to succeed")
	}

	cfg, err := AwaitAs[*domain.ExerciseConfig](awaitCtx(t), c, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Source != domain.SourceBackend {
		t.Errorf("expected backend config, got %+v", cfg)
	}
}

type discoverFunc func(ctx context.Context) (string, error)

func (f discoverFunc) Discover(ctx context.Context) (string, error) { return f(ctx) }
