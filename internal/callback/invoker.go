package callback

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"lens/internal/config"
)

const userAgent = "Lens/0.1.0"

// Delivery reports how a single attempt concluded. StatusCode is set only
// when a response was received; Err carries the transport error behind the
// timeout and connection outcomes.
type Delivery struct {
	Outcome    Outcome
	StatusCode int
	Err        error
}

// Invoker sends a result payload to a callback endpoint. Send never fails;
// every attempt classifies into exactly one Outcome.
type Invoker interface {
	Send(ctx context.Context, url string, body []byte) Delivery
}

// HTTPInvoker delivers callbacks over HTTP POST with a bounded timeout.
type HTTPInvoker struct {
	client *http.Client
}

// NewHTTPInvoker builds an invoker honoring the configured request timeout.
func NewHTTPInvoker(cfg *config.Config) *HTTPInvoker {
	timeout := time.Duration(cfg.Callback.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPInvoker{client: &http.Client{Timeout: timeout}}
}

// Send posts body to url as JSON and classifies the result. A 204 response
// is the only acknowledgement; any other response code counts as a callback
// failure even when the body was consumed by the endpoint.
func (h *HTTPInvoker) Send(ctx context.Context, url string, body []byte) Delivery {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Delivery{Outcome: ConnectionError, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return Delivery{Outcome: classifyTransportError(err), Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode == http.StatusNoContent {
		return Delivery{Outcome: Success, StatusCode: resp.StatusCode}
	}
	return Delivery{Outcome: CallbackFailure, StatusCode: resp.StatusCode}
}

func classifyTransportError(err error) Outcome {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ConnectionTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ConnectionTimeout
	}
	return ConnectionError
}
