package fault_test

import (
	"errors"
	"strings"
	"testing"

	"lens/internal/fault"
)

func TestWrapRetainsCause(t *testing.T) {
	base := errors.New("decode failed")
	err := fault.Wrap(fault.KindRecognitionStepFailed, "recognition step failed", map[string]any{"blob_id": "b-1"}, base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	if !fault.IsKind(err, fault.KindRecognitionStepFailed) {
		t.Fatalf("expected recognition step kind, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"RecognitionStepHasBeenFailed", "recognition step failed", "decode failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestKindOf(t *testing.T) {
	err := fault.New(fault.KindBlobNotFound, "Blob not found.", map[string]any{"blob_id": "b-2"})
	kind, ok := fault.KindOf(err)
	if !ok || kind != fault.KindBlobNotFound {
		t.Fatalf("expected BlobWasNotFound, got %q (ok=%v)", kind, ok)
	}

	if _, ok := fault.KindOf(errors.New("plain")); ok {
		t.Fatal("expected plain error to carry no kind")
	}
	if _, ok := fault.KindOf(nil); ok {
		t.Fatal("expected nil error to carry no kind")
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	inner := fault.New(fault.KindTooLargeBlobUploaded, "too large", nil)
	outer := fault.Wrap(fault.KindRecognitionStepFailed, "step halted", nil, inner)

	// errors.As finds the outermost classified error first.
	kind, ok := fault.KindOf(outer)
	if !ok || kind != fault.KindRecognitionStepFailed {
		t.Fatalf("expected outer kind, got %q", kind)
	}
	if !errors.Is(outer, inner) {
		t.Fatal("expected inner error to remain reachable")
	}
}

func TestPayloadOf(t *testing.T) {
	err := fault.New(fault.KindCallbackURLNotValid, "Invalid callback url supplied.", map[string]any{"callback_url": "not-a-url"})
	payload := fault.PayloadOf(err)
	if payload == nil {
		t.Fatal("expected payload")
	}
	if payload["callback_url"] != "not-a-url" {
		t.Fatalf("expected offending url in payload, got %v", payload)
	}
	if fault.PayloadOf(errors.New("plain")) != nil {
		t.Fatal("expected nil payload for plain error")
	}
}

func TestMessageOf(t *testing.T) {
	err := fault.New(fault.KindBlobNotUploadedYet, "Blob hasn't been uploaded yet.", nil)
	if got := fault.MessageOf(err); got != "Blob hasn't been uploaded yet." {
		t.Fatalf("expected classified message, got %q", got)
	}
	if got := fault.MessageOf(errors.New("plain failure")); got != "plain failure" {
		t.Fatalf("expected plain error text, got %q", got)
	}
	if got := fault.MessageOf(nil); got != "" {
		t.Fatalf("expected empty message for nil error, got %q", got)
	}
}
