package errors

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestRecoverMiddleware(t *testing.T) {
	h := NewErrorHandler("", nil)
	prev := handler
	handler = h
	defer func() { handler = prev }()

	func() {
		defer RecoverMiddleware()()
		panic("boom")
	}()

	if h.Count() != 1 {
		t.Errorf("Count() = %v, want %v", h.Count(), 1)
	}
}

func TestHandleCountsOnlyUnexpected(t *testing.T) {
	h := NewErrorHandler("", nil)
	prev := handler
	handler = h
	defer func() { handler = prev }()

	Handle(PermissionDenied("ban"), "Test")
	Handle(NotFound("member"), "Test")
	Handle(Platform("ban", New("missing access")), "Test")
	if h.Count() != 0 {
		t.Errorf("Count() = %v, want %v", h.Count(), 0)
	}

	Handle(Storage("save", New("disk full")), "Test")
	Handle(New("unexpected"), "Test")
	if h.Count() != 2 {
		t.Errorf("Count() = %v, want %v", h.Count(), 2)
	}
}

func TestReportPostsToWebhook(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %v, want application/json", ct)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	h := NewErrorHandler(srv.URL, nil)
	h.Report(ReportErrorOptions{Error: "Test", Message: "hello"})

	if atomic.LoadInt32(&hits) != 1 {
		t.Errorf("webhook hits = %v, want %v", hits, 1)
	}
}

func TestGoRecovers(t *testing.T) {
	done := make(chan struct{})
	Go(func() {
		defer close(done)
		panic("inside goroutine")
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("goroutine did not finish")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	h := NewErrorHandler("", nil)
	h.start()
	h.Stop()
	h.Stop()
}
