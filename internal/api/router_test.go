package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"snatch/internal/api"
	"snatch/internal/artifacts"
	"snatch/internal/cookies"
	"snatch/internal/fingerprint"
	"snatch/internal/logging"
	"snatch/internal/media"
	"snatch/internal/pending"
	"snatch/internal/sites"
	"snatch/internal/ytdlp"
)

type fakeHandle struct {
	result ytdlp.Result
}

func (h fakeHandle) Wait() ytdlp.Result { return h.result }

// fakeExecutor materializes the output file on launch so synchronous
// extraction paths find their artifact afterwards.
type fakeExecutor struct {
	mu      sync.Mutex
	started [][]string
	result  ytdlp.Result
	output  []byte
	fail    bool
}

func (f *fakeExecutor) Start(_ context.Context, _ string, args []string) (ytdlp.Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = append(f.started, args)
	if !f.fail {
		for i, arg := range args {
			if arg == "-o" && i+1 < len(args) {
				_ = os.WriteFile(args[i+1], []byte("media-bytes"), 0o644)
			}
		}
	}
	result := f.result
	if f.fail && result.ExitCode == 0 {
		result = ytdlp.Result{ExitCode: 1, Stderr: "ERROR: download failed"}
	}
	return fakeHandle{result: result}, nil
}

func (f *fakeExecutor) Output(context.Context, string, []string) ([]byte, error) {
	return f.output, nil
}

type fixture struct {
	cache    *pending.Cache
	store    *artifacts.Store
	supplier *cookies.Supplier
	exec     *fakeExecutor
	checker  *sites.Checker
	handler  http.Handler
	audioDir string
	videoDir string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	base := t.TempDir()
	audioDir := filepath.Join(base, "audio")
	videoDir := filepath.Join(base, "video")

	store := artifacts.NewStore(audioDir, videoDir, "http://media.test")
	if err := store.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs failed: %v", err)
	}

	exec := &fakeExecutor{}
	cache := pending.NewCache(logging.NewNop())
	supplier := cookies.NewSupplier(filepath.Join(base, "cookies"))
	checker := sites.NewCheckerWithClient(http.DefaultClient)

	svc := api.NewService(
		cache, store, supplier,
		ytdlp.NewClientWithExecutor("yt-dlp", "ffmpeg", exec),
		checker, nil, logging.NewNop(),
		func(site string) time.Duration {
			if site == sites.YouTube {
				return 10 * time.Minute
			}
			return 2 * time.Hour
		},
	)

	handler := api.NewRouter(api.RouterConfig{
		Service:     svc,
		SecretKey:   "sekret",
		ServeStatic: true,
		AudioDir:    audioDir,
		VideoDir:    videoDir,
		Logger:      logging.NewNop(),
	})

	return &fixture{
		cache:    cache,
		store:    store,
		supplier: supplier,
		exec:     exec,
		checker:  checker,
		handler:  handler,
		audioDir: audioDir,
		videoDir: videoDir,
	}
}

type envelope struct {
	Status  int               `json:"status"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

func (f *fixture) get(t *testing.T, path string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 && strings.Contains(rec.Header().Get("Content-Type"), "json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode envelope: %v (%s)", err, rec.Body.String())
		}
	}
	return rec, env
}

func TestQueueAcceptsAndDeduplicates(t *testing.T) {
	f := newFixture(t)
	url := "/yt/video-queue?url=https://youtube.com/watch?v=dQw4w9WgXcQ"

	rec, env := f.get(t, url)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("unexpected status: %d (%s)", rec.Code, rec.Body.String())
	}
	if env.Message != "Video is being processed. Please try again shortly." {
		t.Fatalf("unexpected message: %q", env.Message)
	}

	rec, _ = f.get(t, url)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("duplicate should still be accepted: %d", rec.Code)
	}
	if f.cache.Len() != 1 {
		t.Fatalf("expected one pending entry, got %d", f.cache.Len())
	}

	rec, env = f.get(t, "/yt/audio-queue?url=https://youtube.com/watch?v=dQw4w9WgXcQ")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("unexpected status: %d (%s)", rec.Code, rec.Body.String())
	}
	if env.Message != "Audio is being processed. Please try again shortly." {
		t.Fatalf("unexpected message: %q", env.Message)
	}
}

func TestQueueReturnsExistingArtifactWithRawSize(t *testing.T) {
	f := newFixture(t)

	key := fingerprint.Compute(sites.YouTube, media.KindVideo, "dQw4w9WgXcQ", "mp4", "360p")
	path := f.store.PathFor(media.KindVideo, string(key)+".mp4")
	if err := os.WriteFile(path, []byte("12345"), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}

	rec, env := f.get(t, "/yt/video-queue?url=https://youtube.com/watch?v=dQw4w9WgXcQ")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d (%s)", rec.Code, rec.Body.String())
	}
	var data map[string]any
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data["link"] != "http://media.test/video/"+string(key)+".mp4" {
		t.Fatalf("unexpected link: %v", data["link"])
	}
	if size, ok := data["size"].(float64); !ok || size != 5 {
		t.Fatalf("expected raw byte size, got %v", data["size"])
	}
	if f.cache.Len() != 0 {
		t.Fatal("existing artifact should not enqueue")
	}
}

func TestSyncExtractionProducesArtifact(t *testing.T) {
	f := newFixture(t)

	rec, env := f.get(t, "/yt/video?url=https://youtube.com/watch?v=dQw4w9WgXcQ&format=mp4&quality=720p")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d (%s)", rec.Code, rec.Body.String())
	}
	var data map[string]any
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	link, _ := data["link"].(string)
	if !strings.HasPrefix(link, "http://media.test/video/") || !strings.HasSuffix(link, ".mp4") {
		t.Fatalf("unexpected link: %q", link)
	}

	args := strings.Join(f.exec.started[0], " ")
	if !strings.Contains(args, "bestvideo[height<=720]+bestaudio") {
		t.Fatalf("expected quality selector in args: %q", args)
	}
}

func TestDefaultGroupVideoExtractionOmitsQualitySelector(t *testing.T) {
	f := newFixture(t)

	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer target.Close()

	rec, env := f.get(t, "/dl/video?url="+target.URL+"/clip&format=mp4")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d (%s)", rec.Code, rec.Body.String())
	}
	var data map[string]any
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	link, _ := data["link"].(string)
	if !strings.HasPrefix(link, "http://media.test/video/") || !strings.HasSuffix(link, ".mp4") {
		t.Fatalf("unexpected link: %q", link)
	}

	if len(f.exec.started) != 1 {
		t.Fatalf("expected one launch, got %d", len(f.exec.started))
	}
	for _, arg := range f.exec.started[0] {
		if arg == "-f" {
			t.Fatalf("default-group video must not carry a -f selector: %v", f.exec.started[0])
		}
	}
	if f.exec.started[0][0] != "--merge-output-format" || f.exec.started[0][1] != "mp4" {
		t.Fatalf("expected merge format first in args: %v", f.exec.started[0])
	}
}

func TestSyncExtractionFailureReturns400(t *testing.T) {
	f := newFixture(t)
	f.exec.fail = true

	rec, env := f.get(t, "/yt/audio?url=https://youtube.com/watch?v=dQw4w9WgXcQ")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if !strings.Contains(env.Message, "ERROR: download failed") {
		t.Fatalf("expected stderr in message, got %q", env.Message)
	}
}

func TestValidationErrors(t *testing.T) {
	f := newFixture(t)

	rec, env := f.get(t, "/yt/video")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if env.Errors["url"] == "" {
		t.Fatalf("expected url field error, got %v", env.Errors)
	}

	rec, env = f.get(t, "/yt/video?url=https://youtube.com/watch?v=abc&quality=144p")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if env.Errors["quality"] == "" {
		t.Fatalf("expected quality field error, got %v", env.Errors)
	}
}

func TestHumanizedSizesForDefaultGroup(t *testing.T) {
	f := newFixture(t)

	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer target.Close()

	key := fingerprint.Compute(sites.Default, media.KindAudio, target.URL+"/track", "mp3", "5")
	path := f.store.PathFor(media.KindAudio, string(key)+".mp3")
	if err := os.WriteFile(path, bytes.Repeat([]byte("x"), 2048), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}

	rec, env := f.get(t, "/dl/audio-queue?url="+target.URL+"/track")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d (%s)", rec.Code, rec.Body.String())
	}
	var data map[string]any
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	size, ok := data["size"].(string)
	if !ok || !strings.Contains(size, "kB") {
		t.Fatalf("expected humanized size, got %v", data["size"])
	}
}

func TestUnavailableItemRejected(t *testing.T) {
	f := newFixture(t)

	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusGone)
	}))
	defer target.Close()

	rec, env := f.get(t, "/dl/video-queue?url="+target.URL+"/clip")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if env.Message != "Requested item is unavailable" {
		t.Fatalf("unexpected message: %q", env.Message)
	}
	if f.cache.Len() != 0 {
		t.Fatal("unavailable item should not enqueue")
	}
}

func TestCacheFlushGate(t *testing.T) {
	f := newFixture(t)

	f.cache.Set(fingerprint.Compute(sites.YouTube, media.KindVideo, "x", "mp4", "360p"),
		pending.Job{URL: "u", Site: sites.YouTube, Kind: media.KindVideo, Format: "mp4"}, time.Hour)

	rec, env := f.get(t, "/cache/flush?key=wrong")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if env.Message != "Access denied, wrong key" {
		t.Fatalf("unexpected message: %q", env.Message)
	}
	if f.cache.Len() != 1 {
		t.Fatal("wrong key must not flush")
	}

	rec, env = f.get(t, "/cache/flush?key=sekret")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	var data map[string]int
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data["flushed"] != 1 {
		t.Fatalf("unexpected flush count: %d", data["flushed"])
	}
}

func TestCookieUploadAndClear(t *testing.T) {
	f := newFixture(t)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("cookies", "cookies.txt")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte("# Netscape HTTP Cookie File")); err != nil {
		t.Fatalf("write part: %v", err)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/cookies/upload?site=youtube", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("upload failed: %d (%s)", rec.Code, rec.Body.String())
	}

	latest, err := f.supplier.Latest("youtube")
	if err != nil || latest == "" {
		t.Fatalf("expected stored cookie file, got %q err=%v", latest, err)
	}

	rec2, _ := f.get(t, "/cookies/clear?key=wrong")
	if rec2.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: %d", rec2.Code)
	}
	rec2, _ = f.get(t, "/cookies/clear?key=sekret")
	if rec2.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec2.Code)
	}
	latest, err = f.supplier.Latest("youtube")
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if latest != "" {
		t.Fatal("expected cookies cleared")
	}
}

func TestStaticServingAndAdminViews(t *testing.T) {
	f := newFixture(t)

	if err := os.WriteFile(filepath.Join(f.audioDir, "track.mp3"), []byte("audio-bytes"), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	rec, _ := f.get(t, "/audio/track.mp3")
	if rec.Code != http.StatusOK || rec.Body.String() != "audio-bytes" {
		t.Fatalf("static serving failed: %d %q", rec.Code, rec.Body.String())
	}

	f.cache.Set(fingerprint.Compute(sites.YouTube, media.KindVideo, "p1", "mp4", "360p"),
		pending.Job{URL: "u", Site: sites.YouTube, Kind: media.KindVideo, Format: "mp4"}, time.Hour)

	rec, env := f.get(t, "/api/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("status failed: %d", rec.Code)
	}
	var report map[string]any
	if err := json.Unmarshal(env.Data, &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report["pending"].(float64) != 1 {
		t.Fatalf("unexpected pending count: %v", report["pending"])
	}

	rec, env = f.get(t, "/api/pending")
	if rec.Code != http.StatusOK {
		t.Fatalf("pending failed: %d", rec.Code)
	}
	var jobs []map[string]any
	if err := json.Unmarshal(env.Data, &jobs); err != nil {
		t.Fatalf("decode jobs: %v", err)
	}
	if len(jobs) != 1 || jobs[0]["site"] != "youtube" {
		t.Fatalf("unexpected jobs: %v", jobs)
	}

	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatal("expected request id header")
	}
}

func TestInfoEndpointSplitsFormats(t *testing.T) {
	f := newFixture(t)
	f.exec.output = []byte(`{
		"id": "dQw4w9WgXcQ",
		"title": "Test",
		"duration": 212,
		"formats": [
			{"format_id": "140", "ext": "m4a", "abr": 129.5, "vcodec": "none"},
			{"format_id": "22", "ext": "mp4", "resolution": "1280x720", "vcodec": "avc1"}
		]
	}`)

	rec, env := f.get(t, "/yt/info?url=https://youtube.com/watch?v=dQw4w9WgXcQ")
	if rec.Code != http.StatusOK {
		t.Fatalf("info failed: %d (%s)", rec.Code, rec.Body.String())
	}
	var result api.InfoResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("decode info: %v", err)
	}
	if result.Title != "Test" || len(result.AudioFormats) != 1 || len(result.VideoFormats) != 1 {
		t.Fatalf("unexpected info: %+v", result)
	}
	if result.AudioFormats[0].FormatID != "140" {
		t.Fatalf("unexpected audio format: %+v", result.AudioFormats[0])
	}
}
