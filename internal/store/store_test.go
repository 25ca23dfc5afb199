package store_test

import (
	"context"
	"errors"
	"testing"

	"lens/internal/blob"
	"lens/internal/store"
	"lens/internal/testsupport"
)

func TestCreateAndGetRoundtrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	record, err := st.Create(ctx, "b-1", "https://example.com/cb")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if record.Status != blob.StatusWaitingForUpload {
		t.Fatalf("expected WAITING_FOR_UPLOAD, got %s", record.Status)
	}
	if record.CallbackURL != "https://example.com/cb" {
		t.Fatalf("unexpected callback url: %q", record.CallbackURL)
	}
	if record.CreatedAt.IsZero() || record.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps to be set")
	}
	if record.HasLabels() {
		t.Fatal("expected no labels on a fresh record")
	}

	fetched, err := st.Get(ctx, "b-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if fetched == nil || fetched.ID != "b-1" {
		t.Fatalf("unexpected fetched record: %#v", fetched)
	}
}

func TestGetMissingReturnsNil(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	record, err := st.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if record != nil {
		t.Fatalf("expected nil record, got %#v", record)
	}
}

func TestCreateRejectsDuplicateID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	if _, err := st.Create(ctx, "b-1", "https://example.com/cb"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := st.Create(ctx, "b-1", "https://example.com/other"); err == nil {
		t.Fatal("expected duplicate id to be rejected")
	}
}

func TestUpdateStatusFollowsTransitions(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	testsupport.CreateBlob(t, st, "b-1")

	record, err := st.UpdateStatus(ctx, "b-1", blob.StatusInProgress)
	if err != nil {
		t.Fatalf("UpdateStatus to IN_PROGRESS failed: %v", err)
	}
	if record.Status != blob.StatusInProgress {
		t.Fatalf("expected IN_PROGRESS, got %s", record.Status)
	}

	record, err = st.UpdateStatus(ctx, "b-1", blob.StatusSuccess)
	if err != nil {
		t.Fatalf("UpdateStatus to SUCCESS failed: %v", err)
	}
	if record.Status != blob.StatusSuccess {
		t.Fatalf("expected SUCCESS, got %s", record.Status)
	}
}

func TestUpdateStatusIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	testsupport.CreateBlob(t, st, "b-1")

	if _, err := st.UpdateStatus(ctx, "b-1", blob.StatusInProgress); err != nil {
		t.Fatalf("first transition failed: %v", err)
	}
	record, err := st.UpdateStatus(ctx, "b-1", blob.StatusInProgress)
	if err != nil {
		t.Fatalf("repeated transition must not fail: %v", err)
	}
	if record.Status != blob.StatusInProgress {
		t.Fatalf("expected IN_PROGRESS, got %s", record.Status)
	}
}

func TestUpdateStatusConflicts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	testsupport.CreateBlob(t, st, "b-1")

	// SUCCESS is only reachable from IN_PROGRESS.
	if _, err := st.UpdateStatus(ctx, "b-1", blob.StatusSuccess); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	// Once recognition started, the watchdog's timeout write must lose.
	if _, err := st.UpdateStatus(ctx, "b-1", blob.StatusInProgress); err != nil {
		t.Fatalf("transition to IN_PROGRESS failed: %v", err)
	}
	if _, err := st.UpdateStatus(ctx, "b-1", blob.StatusUploadTimedOut); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected ErrConflict for late watchdog, got %v", err)
	}
}

func TestUpdateStatusNotFound(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	_, err := st.UpdateStatus(context.Background(), "missing", blob.StatusInProgress)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateStatusRejectsInitialState(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	testsupport.CreateBlob(t, st, "b-1")
	if _, err := st.UpdateStatus(context.Background(), "b-1", blob.StatusWaitingForUpload); err == nil {
		t.Fatal("expected error: nothing transitions back to WAITING_FOR_UPLOAD")
	}
}

func TestSaveLabels(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	testsupport.CreateBlob(t, st, "b-1")
	if _, err := st.UpdateStatus(ctx, "b-1", blob.StatusInProgress); err != nil {
		t.Fatalf("transition to IN_PROGRESS failed: %v", err)
	}

	labels := []blob.Label{
		{Label: "Cat", Confidence: 98.1, Parents: []string{"Animal"}},
		{Label: "Pet", Confidence: 97.5, Parents: []string{}},
	}
	record, err := st.SaveLabels(ctx, "b-1", labels)
	if err != nil {
		t.Fatalf("SaveLabels failed: %v", err)
	}
	if !record.HasLabels() {
		t.Fatal("expected labels to be stored")
	}
	if len(record.Labels) != 2 || record.Labels[0].Label != "Cat" {
		t.Fatalf("unexpected labels: %#v", record.Labels)
	}
	if record.Labels[1].Parents == nil {
		t.Fatal("expected empty parents to round-trip as empty slice")
	}

	// A repeated save returns the stored labels untouched.
	again, err := st.SaveLabels(ctx, "b-1", []blob.Label{{Label: "Dog", Confidence: 1}})
	if err != nil {
		t.Fatalf("repeated SaveLabels must not fail: %v", err)
	}
	if len(again.Labels) != 2 || again.Labels[0].Label != "Cat" {
		t.Fatalf("expected first write to win, got %#v", again.Labels)
	}
}

func TestSaveLabelsRequiresInProgress(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	testsupport.CreateBlob(t, st, "b-1")

	if _, err := st.SaveLabels(ctx, "b-1", []blob.Label{{Label: "Cat"}}); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if _, err := st.SaveLabels(ctx, "missing", []blob.Label{{Label: "Cat"}}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveLabelsNormalizesNil(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	testsupport.CreateBlob(t, st, "b-1")
	if _, err := st.UpdateStatus(ctx, "b-1", blob.StatusInProgress); err != nil {
		t.Fatalf("transition to IN_PROGRESS failed: %v", err)
	}

	record, err := st.SaveLabels(ctx, "b-1", nil)
	if err != nil {
		t.Fatalf("SaveLabels failed: %v", err)
	}
	if !record.HasLabels() {
		t.Fatal("expected empty label list to be stored, not dropped")
	}
	if len(record.Labels) != 0 {
		t.Fatalf("expected zero labels, got %#v", record.Labels)
	}
}

func TestListSupportsStatusFilter(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	testsupport.CreateBlob(t, st, "b-1")
	testsupport.CreateBlob(t, st, "b-2")
	if _, err := st.UpdateStatus(ctx, "b-2", blob.StatusInProgress); err != nil {
		t.Fatalf("transition failed: %v", err)
	}

	waiting, err := st.List(ctx, blob.StatusWaitingForUpload)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(waiting) != 1 || waiting[0].ID != "b-1" {
		t.Fatalf("unexpected waiting records: %#v", waiting)
	}

	all, err := st.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected two records, got %d", len(all))
	}
	if all[0].ID != "b-1" || all[1].ID != "b-2" {
		t.Fatalf("expected creation order, got %s then %s", all[0].ID, all[1].ID)
	}
}

func TestStats(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	testsupport.CreateBlob(t, st, "b-1")
	testsupport.CreateBlob(t, st, "b-2")
	testsupport.AdvanceBlob(t, st, "b-2", blob.StatusSuccess)

	stats, err := st.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats[blob.StatusWaitingForUpload] != 1 {
		t.Fatalf("expected one waiting blob, got %d", stats[blob.StatusWaitingForUpload])
	}
	if stats[blob.StatusSuccess] != 1 {
		t.Fatalf("expected one successful blob, got %d", stats[blob.StatusSuccess])
	}
}
