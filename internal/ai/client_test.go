package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"syscall"
	"testing"
	"time"
)

type ipv4Server struct {
	URL string
	srv *http.Server
}

// newIPv4Server serves handler on 127.0.0.1 and skips the test when the
// sandbox forbids listening.
func newIPv4Server(t *testing.T, handler http.Handler) *ipv4Server {
	t.Helper()
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		if errors.Is(err, syscall.EACCES) || errors.Is(err, syscall.EPERM) {
			t.Skipf("skipping test: cannot open local listener (%v)", err)
		}
		t.Fatalf("listen tcp4: %v", err)
	}
	s := &ipv4Server{URL: "http://" + ln.Addr().String(), srv: &http.Server{Handler: handler}}
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			panic(fmt.Sprintf("test server serve: %v", err))
		}
	}()
	return s
}

func (s *ipv4Server) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = s.srv.Shutdown(ctx)
}

func datasetQuestion() GenerateRequest {
	return GenerateRequest{
		Model:    "openai/gpt-4o-mini",
		Messages: NewChatContext(harvest(), nil).Messages("Which plot has the highest yield?"),
	}
}

func TestGenerateSendsHeadersAndRetriesRateLimit(t *testing.T) {
	var calls int32
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" || r.Header.Get("X-Title") != appTitle {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"message": "slow down"}})
			return
		}
		_ = json.NewEncoder(w).Encode(GenerateResponse{Choices: []Choice{{Message: Message{Role: "assistant", Content: "Plot B3"}}}})
	}))
	defer srv.Close()

	c := NewClientWithBaseURL("sk-test", 2*time.Second, 3, 10*time.Millisecond, 50*time.Millisecond, srv.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	resp, err := c.Generate(ctx, datasetQuestion())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if resp.Content() != "Plot B3" || atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("content %q after %d calls", resp.Content(), calls)
	}
}

func TestGenerateClassifiesProviderErrors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   map[string]any
		check  func(error) bool
	}{
		{"auth", http.StatusUnauthorized, map[string]any{"error": map[string]any{"message": "invalid key"}},
			func(err error) bool { var e *AuthError; return errors.As(err, &e) }},
		{"model", http.StatusNotFound, map[string]any{"error": map[string]any{"message": "no such model", "code": "model_not_found"}},
			func(err error) bool { var e *ModelNotFoundError; return errors.As(err, &e) }},
		{"bad request", http.StatusBadRequest, map[string]any{"message": "context too long"},
			func(err error) bool { var e *BadRequestError; return errors.As(err, &e) }},
		{"quota", http.StatusPaymentRequired, map[string]any{"error": map[string]any{"message": "billing quota reached"}},
			func(err error) bool { var e *QuotaExceededError; return errors.As(err, &e) }},
		{"server", http.StatusBadGateway, map[string]any{"error": "upstream down"},
			func(err error) bool { var e *ServerError; return errors.As(err, &e) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("X-Request-Id", "req_"+strings.ReplaceAll(tc.name, " ", "_"))
				w.WriteHeader(tc.status)
				_ = json.NewEncoder(w).Encode(tc.body)
			}))
			defer srv.Close()
			c := NewClientWithBaseURL("sk-test", 2*time.Second, 1, 0, 0, srv.URL)
			_, err := c.Generate(context.Background(), datasetQuestion())
			if err == nil || !tc.check(err) {
				t.Fatalf("err = %v (%T)", err, err)
			}
			if !strings.Contains(err.Error(), "req_") {
				t.Fatalf("expected request id in %q", err)
			}
		})
	}
}

func TestGenerateValidatesBeforeSending(t *testing.T) {
	c := NewClientWithBaseURL("", time.Second, 1, 0, 0, "http://127.0.0.1:1")
	if _, err := c.Generate(context.Background(), datasetQuestion()); err == nil || !strings.Contains(err.Error(), "OPENROUTER_API_KEY") {
		t.Fatalf("missing key err = %v", err)
	}
	c = NewClientWithBaseURL("sk-test", time.Second, 1, 0, 0, "http://127.0.0.1:1")
	if _, err := c.Generate(context.Background(), GenerateRequest{Model: "m"}); err == nil {
		t.Fatalf("expected error for empty messages")
	}
}

func TestAskStreamOverServerSentEvents(t *testing.T) {
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req GenerateRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Temperature != DefaultChatTemperature {
			http.Error(w, "unexpected temperature", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, ": keep-alive\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"Yield peaks \"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"on B3.\"}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	c := NewClientWithBaseURL("sk-test", 2*time.Second, 1, 0, 0, srv.URL)
	var deltas []string
	reply, err := AskStream(context.Background(), c, "openai/gpt-4o-mini", "Where does yield peak?", NewChatContext(harvest(), nil), 64, func(d string) {
		deltas = append(deltas, d)
	})
	if err != nil {
		t.Fatalf("AskStream: %v", err)
	}
	if reply != "Yield peaks on B3." || len(deltas) != 2 {
		t.Fatalf("reply %q deltas %q", reply, deltas)
	}
}
