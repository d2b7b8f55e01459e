package httpx

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/nyris/nyris-go/internal/domain"
	"github.com/nyris/nyris-go/internal/metrics"
)

func newClient(retries int) *Client {
	return New(Config{RetryCount: retries, RetryInterval: time.Millisecond})
}

func TestDo_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Options") != "exact" {
			t.Errorf("X-Options = %q", r.Header.Get("X-Options"))
		}
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("X-Matching-Request", "req-1")
		_, _ = w.Write(append([]byte("echo:"), body...))
	}))
	defer srv.Close()

	resp, err := newClient(3).Do(context.Background(), &Request{
		Method: http.MethodPost,
		URL:    srv.URL,
		Header: http.Header{"X-Options": []string{"exact"}},
		Body:   []byte("img"),
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if resp.StatusCode != http.StatusOK || string(resp.Body) != "echo:img" {
		t.Errorf("resp = %d %q", resp.StatusCode, resp.Body)
	}
	if got := resp.Header.Get("X-Matching-Request"); got != "req-1" {
		t.Errorf("X-Matching-Request = %q", got)
	}
}

func TestDo_RetriesUntilSuccess(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if string(body) != "payload" {
			t.Errorf("attempt %d body = %q", calls.Load()+1, body)
		}
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	resp, err := newClient(3).Do(context.Background(), &Request{
		Method: http.MethodPost, URL: srv.URL, Body: []byte("payload"),
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestDo_ExhaustedReturnsLastResponse(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	resp, err := newClient(2).Do(context.Background(), &Request{Method: http.MethodGet, URL: srv.URL})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if resp.StatusCode != http.StatusBadGateway || string(resp.Body) != "upstream down" {
		t.Errorf("resp = %d %q", resp.StatusCode, resp.Body)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestDo_SingleAttemptWhenRetryCountBelowOne(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := newClient(0).Do(context.Background(), &Request{Method: http.MethodGet, URL: srv.URL}); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestDo_OversizedBodyFails(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	c := New(Config{RetryCount: 3, RetryInterval: time.Millisecond, MaxResponseBytes: 8})
	resp, err := c.Do(context.Background(), &Request{Method: http.MethodGet, URL: srv.URL})
	if !errors.Is(err, domain.ErrTransportFailure) || !errors.Is(err, errBodyTooLarge) {
		t.Fatalf("err = %v, want ErrTransportFailure wrapping errBodyTooLarge", err)
	}
	if resp != nil {
		t.Errorf("resp = %+v, want nil", resp)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}

	c = New(Config{RetryCount: 1, MaxResponseBytes: int64(len(`{"results":[]}`))})
	resp, err = c.Do(context.Background(), &Request{Method: http.MethodGet, URL: srv.URL})
	if err != nil {
		t.Fatalf("body at the limit: %v", err)
	}
	if string(resp.Body) != `{"results":[]}` {
		t.Errorf("body = %q", resp.Body)
	}
}

func TestDo_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newClient(2).Do(context.Background(), &Request{Method: http.MethodGet, URL: url})
	if !errors.Is(err, domain.ErrTransportFailure) {
		t.Fatalf("err = %v, want ErrTransportFailure", err)
	}
}

func TestDo_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := newClient(5).Do(ctx, &Request{Method: http.MethodGet, URL: srv.URL})
	if !errors.Is(err, domain.ErrTransportFailure) {
		t.Errorf("err = %v, want ErrTransportFailure", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestDo_InvalidRequestNotRetried(t *testing.T) {
	_, err := newClient(3).Do(context.Background(), &Request{Method: "BAD METHOD", URL: "http://localhost"})
	if !errors.Is(err, domain.ErrTransportFailure) {
		t.Fatalf("err = %v, want ErrTransportFailure", err)
	}
}

func TestDo_RecordsMetricsAndRetryLogs(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	reg := prometheus.NewRegistry()
	tm, err := metrics.NewTransport(reg)
	if err != nil {
		t.Fatalf("NewTransport: %v", err)
	}
	core, logs := observer.New(zap.DebugLevel)
	c := New(Config{
		RetryCount:    3,
		RetryInterval: time.Millisecond,
		Debug:         true,
		Logger:        zap.New(core),
		Metrics:       tm,
	})

	_, err = c.Do(context.Background(), &Request{
		Method: http.MethodPost,
		URL:    srv.URL,
		Header: http.Header{"X-Api-Key": []string{"secret"}},
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}

	if n := logs.FilterMessage("retrying request").Len(); n != 1 {
		t.Errorf("retry logs = %d, want 1", n)
	}
	for _, e := range logs.All() {
		for _, f := range e.Context {
			if f.String == "secret" {
				t.Errorf("log %q leaks api key in field %s", e.Message, f.Key)
			}
		}
	}

	n, err := testutil.GatherAndCount(reg, "nyris_http_attempts_total")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if n != 2 {
		t.Errorf("attempt series = %d, want 2 (429 and 200)", n)
	}
}
