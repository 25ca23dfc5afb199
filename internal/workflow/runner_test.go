package workflow_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lens/internal/blob"
	"lens/internal/callback"
	"lens/internal/fault"
	"lens/internal/logging"
	"lens/internal/objectstore"
	"lens/internal/recognition"
	"lens/internal/recognizer"
	"lens/internal/result"
	"lens/internal/store"
	"lens/internal/testsupport"
	"lens/internal/upload"
	"lens/internal/workflow"
)

type countingInvoker struct {
	delivery callback.Delivery
	calls    int
}

func (c *countingInvoker) Send(context.Context, string, []byte) callback.Delivery {
	c.calls++
	return c.delivery
}

type env struct {
	store   *store.Store
	objects *objectstore.Local
	runner  *workflow.Runner
	reader  *result.Reader
}

func newEnv(t *testing.T, invoker callback.Invoker, opts ...testsupport.ConfigOption) *env {
	t.Helper()

	opts = append([]testsupport.ConfigOption{testsupport.WithUploadWindow(1)}, opts...)
	cfg := testsupport.NewConfig(t, opts...)
	st := testsupport.MustOpenStore(t, cfg)
	objects, err := objectstore.NewLocal(cfg)
	if err != nil {
		t.Fatalf("NewLocal failed: %v", err)
	}

	logger := logging.NewNop()
	if invoker == nil {
		invoker = callback.NewHTTPInvoker(cfg)
	}
	runner := workflow.NewRunner(cfg, st, workflow.Steps{
		Watchdog:   upload.NewWatchdog(st, objects, logger),
		Extractor:  recognition.NewExtractor(st, recognizer.NewSniff(cfg, objects), logger),
		Persister:  recognition.NewPersister(st, logger),
		Dispatcher: callback.NewDispatcher(st, invoker, logger),
		Fallback:   recognition.NewFailureHandler(st, logger),
	}, logger)

	return &env{store: st, objects: objects, runner: runner, reader: result.NewReader(st)}
}

func (e *env) start(t *testing.T) {
	t.Helper()
	if err := e.runner.Start(context.Background()); err != nil {
		t.Fatalf("runner.Start: %v", err)
	}
	t.Cleanup(e.runner.Stop)
}

func waitForStatus(t *testing.T, st *store.Store, id string, expected blob.Status, timeout time.Duration) {
	t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case <-deadline:
			record, _ := st.Get(context.Background(), id)
			t.Fatalf("timed out waiting for %s, blob is %#v", expected, record)
		default:
		}

		record, err := st.Get(context.Background(), id)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if record != nil && record.Status == expected {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestRunnerLifecycle(t *testing.T) {
	e := newEnv(t, &countingInvoker{})

	if e.runner.Running() {
		t.Fatal("expected runner to start stopped")
	}
	if err := e.runner.WatchUpload(context.Background(), "b-1"); err == nil {
		t.Fatal("expected launch before Start to fail")
	}

	if err := e.runner.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := e.runner.Start(context.Background()); err == nil {
		t.Fatal("expected second Start to fail")
	}
	if !e.runner.Running() {
		t.Fatal("expected runner to be running")
	}

	e.runner.Stop()
	if e.runner.Running() {
		t.Fatal("expected runner to be stopped")
	}
	if err := e.runner.RunRecognition(context.Background(), "b-1"); err == nil {
		t.Fatal("expected launch after Stop to fail")
	}
}

func TestUploadWatchTimesOutBlob(t *testing.T) {
	invoker := &countingInvoker{}
	e := newEnv(t, invoker)
	e.start(t)

	registrar := upload.NewRegistrar(e.store, e.objects,
		upload.LauncherFunc(e.runner.WatchUpload), upload.SchemeValidator{}, logging.NewNop())
	registration, err := registrar.Register(context.Background(), "https://example.com/cb")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	record, err := e.store.Get(context.Background(), registration.BlobID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if record.Status != blob.StatusWaitingForUpload {
		t.Fatalf("expected WAITING_FOR_UPLOAD after registration, got %s", record.Status)
	}

	waitForStatus(t, e.store, registration.BlobID, blob.StatusUploadTimedOut, 5*time.Second)

	_, err = e.reader.Read(context.Background(), registration.BlobID)
	if !fault.IsKind(err, fault.KindBlobUploadTimedOut) {
		t.Fatalf("expected BlobUploadTimedOut, got %v", err)
	}
	if invoker.calls != 0 {
		t.Fatalf("expected no callback for a timed out upload, got %d", invoker.calls)
	}
}

func TestUploadWatchSparesUploadedBlob(t *testing.T) {
	e := newEnv(t, &countingInvoker{})
	e.start(t)

	testsupport.CreateBlob(t, e.store, "b-1")
	if err := e.objects.Put(context.Background(), "b-1", bytes.NewReader([]byte("content"))); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := e.runner.WatchUpload(context.Background(), "b-1"); err != nil {
		t.Fatalf("WatchUpload failed: %v", err)
	}

	time.Sleep(1500 * time.Millisecond)

	record, err := e.store.Get(context.Background(), "b-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if record.Status != blob.StatusWaitingForUpload {
		t.Fatalf("expected uploaded blob left for the trigger, got %s", record.Status)
	}
}

func TestRecognitionPipelineDeliversResult(t *testing.T) {
	type received struct {
		BlobID string       `json:"blob_id"`
		Labels []blob.Label `json:"labels"`
	}
	bodies := make(chan received, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload received
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode callback body: %v", err)
		}
		bodies <- payload
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	e := newEnv(t, nil)
	e.start(t)

	ctx := context.Background()
	if _, err := e.store.Create(ctx, "b-1", server.URL); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := e.objects.Put(ctx, "b-1", bytes.NewReader(testsupport.EncodePNG(t, 4, 2))); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	trigger := recognition.NewTrigger(e.store,
		recognition.LauncherFunc(e.runner.RunRecognition), logging.NewNop())
	if err := trigger.Fire(ctx, "b-1"); err != nil {
		t.Fatalf("Fire failed: %v", err)
	}

	waitForStatus(t, e.store, "b-1", blob.StatusSuccess, 5*time.Second)

	select {
	case payload := <-bodies:
		if payload.BlobID != "b-1" {
			t.Fatalf("expected blob id in callback, got %q", payload.BlobID)
		}
		if len(payload.Labels) != 2 || payload.Labels[0].Label != "PNG" {
			t.Fatalf("unexpected callback labels %#v", payload.Labels)
		}
	case <-time.After(time.Second):
		t.Fatal("callback endpoint never received the result")
	}

	res, err := e.reader.Read(ctx, "b-1")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(res.Labels) != 2 || res.Labels[0].Label != "PNG" {
		t.Fatalf("unexpected stored labels %#v", res.Labels)
	}
}

func TestRecognitionPipelineRejectsOversizedContent(t *testing.T) {
	invoker := &countingInvoker{}
	e := newEnv(t, invoker, testsupport.WithMaxBlobMiB(1))
	e.start(t)

	ctx := context.Background()
	testsupport.CreateBlob(t, e.store, "b-1")
	oversized := bytes.Repeat([]byte{0x42}, 1<<20+1)
	if err := e.objects.Put(ctx, "b-1", bytes.NewReader(oversized)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	trigger := recognition.NewTrigger(e.store,
		recognition.LauncherFunc(e.runner.RunRecognition), logging.NewNop())
	if err := trigger.Fire(ctx, "b-1"); err != nil {
		t.Fatalf("Fire failed: %v", err)
	}

	waitForStatus(t, e.store, "b-1", blob.StatusTooLargeBlob, 5*time.Second)

	_, err := e.reader.Read(ctx, "b-1")
	if !fault.IsKind(err, fault.KindTooLargeBlobUploaded) {
		t.Fatalf("expected TooLargeBlobHasBeenUploaded, got %v", err)
	}
	if invoker.calls != 0 {
		t.Fatalf("expected no callback for rejected content, got %d", invoker.calls)
	}
}

func TestCallbackTimeoutRecordedAsData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(10 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	e := newEnv(t, nil, testsupport.WithCallbackTimeout(1))
	e.start(t)

	ctx := context.Background()
	if _, err := e.store.Create(ctx, "b-1", server.URL); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := e.objects.Put(ctx, "b-1", bytes.NewReader(testsupport.EncodePNG(t, 4, 2))); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	trigger := recognition.NewTrigger(e.store,
		recognition.LauncherFunc(e.runner.RunRecognition), logging.NewNop())
	if err := trigger.Fire(ctx, "b-1"); err != nil {
		t.Fatalf("Fire failed: %v", err)
	}

	waitForStatus(t, e.store, "b-1", blob.StatusCallbackTimeOut, 10*time.Second)

	_, err := e.reader.Read(ctx, "b-1")
	if !fault.IsKind(err, fault.KindCallbackDeliveryFailed) {
		t.Fatalf("expected CallbackDeliveryHasBeenFailed, got %v", err)
	}
}

func TestPipelineFallsBackOnUnclassifiedFailure(t *testing.T) {
	e := newEnv(t, &countingInvoker{})
	e.start(t)

	testsupport.CreateBlob(t, e.store, "b-1")
	testsupport.AdvanceBlob(t, e.store, "b-1", blob.StatusInProgress)

	// No content uploaded: extraction fails without classifying the blob.
	if err := e.runner.RunRecognition(context.Background(), "b-1"); err != nil {
		t.Fatalf("RunRecognition failed: %v", err)
	}

	waitForStatus(t, e.store, "b-1", blob.StatusUnexpectedError, 5*time.Second)

	_, err := e.reader.Read(context.Background(), "b-1")
	if !fault.IsKind(err, fault.KindUnexpectedError) {
		t.Fatalf("expected UnexpectedErrorOccurred, got %v", err)
	}
}

func TestRecoverReArmsUploadWatches(t *testing.T) {
	e := newEnv(t, &countingInvoker{})
	e.start(t)

	testsupport.CreateBlob(t, e.store, "b-1")

	if err := e.runner.Recover(context.Background()); err != nil {
		t.Fatalf("Recover failed: %v", err)
	}

	waitForStatus(t, e.store, "b-1", blob.StatusUploadTimedOut, 5*time.Second)
}

func TestRecoverResumesInProgressPipelines(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	e := newEnv(t, nil)
	e.start(t)

	ctx := context.Background()
	if _, err := e.store.Create(ctx, "b-1", server.URL); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	testsupport.AdvanceBlob(t, e.store, "b-1", blob.StatusInProgress)
	if err := e.objects.Put(ctx, "b-1", bytes.NewReader(testsupport.EncodePNG(t, 4, 2))); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if err := e.runner.Recover(ctx); err != nil {
		t.Fatalf("Recover failed: %v", err)
	}

	waitForStatus(t, e.store, "b-1", blob.StatusSuccess, 5*time.Second)
}
