package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestOllamaAskForwardsContextAndOptions(t *testing.T) {
	var got ollamaChatRequest
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/chat" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]any{"role": "assistant", "content": "Alpha acids average 12.2."},
			"done":    true,
		})
	}))
	defer srv.Close()

	c := NewOllamaClient(srv.URL, 2*time.Second, 1, 0, 0)
	reply, err := Ask(context.Background(), c, "llama3:latest", "Average alpha acids?", NewChatContext(harvest(), nil), 128)
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if reply != "Alpha acids average 12.2." {
		t.Fatalf("reply = %q", reply)
	}
	if got.Stream || got.Model != "llama3:latest" || len(got.Messages) != 2 {
		t.Fatalf("request = %+v", got)
	}
	if got.Messages[0].Role != "system" || !strings.Contains(got.Messages[0].Content, "Available Columns:") {
		t.Fatalf("system message = %+v", got.Messages[0])
	}
	if !strings.HasPrefix(got.Messages[1].Content, "Average alpha acids?") {
		t.Fatalf("user message = %+v", got.Messages[1])
	}
	if got.Options["num_predict"] != 128.0 || got.Options["temperature"] != DefaultChatTemperature {
		t.Fatalf("options = %v", got.Options)
	}
}

func TestOllamaMissingModelAndServerErrors(t *testing.T) {
	status := http.StatusNotFound
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": "model 'mistral' not found"})
	}))
	defer srv.Close()
	c := NewOllamaClient(srv.URL, 2*time.Second, 1, 0, 0)

	_, err := Ask(context.Background(), c, "mistral", "hi", ChatContext{}, 0)
	var nf *ModelNotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("err = %v, want ModelNotFoundError", err)
	}
	if hint := Explain(err, ProviderOllama, "mistral"); !strings.Contains(hint.Error(), "ollama pull mistral") {
		t.Fatalf("hint = %v", hint)
	}

	status = http.StatusInternalServerError
	_, err = Ask(context.Background(), c, "mistral", "hi", ChatContext{}, 0)
	var se *ServerError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want ServerError", err)
	}
}

func TestOllamaRejectsEmptyRequests(t *testing.T) {
	c := NewOllamaClient("http://localhost:11434", 2*time.Second, 1, 0, 0)
	if _, err := c.Generate(context.Background(), GenerateRequest{Model: "llama3:latest"}); err == nil || err.Error() != "messages cannot be empty" {
		t.Fatalf("Generate err = %v", err)
	}
	err := c.GenerateStream(context.Background(), GenerateRequest{Messages: []Message{{Role: "user", Content: "hi"}}}, func(string) {})
	if err == nil || err.Error() != "model cannot be empty" {
		t.Fatalf("GenerateStream err = %v", err)
	}
}

func TestOllamaUnreachableHost(t *testing.T) {
	c := NewOllamaClient("http://127.0.0.1:1", time.Second, 1, 0, 0)
	_, err := c.Generate(context.Background(), GenerateRequest{Model: "llama3", Messages: []Message{{Role: "user", Content: "hi"}}})
	var ue *UnreachableError
	if !errors.As(err, &ue) || ue.Host != "http://127.0.0.1:1" {
		t.Fatalf("err = %v, want UnreachableError", err)
	}
}

func TestOllamaStreamJoinsLines(t *testing.T) {
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaChatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if !req.Stream {
			http.Error(w, "expected stream", http.StatusBadRequest)
			return
		}
		fmt.Fprintln(w, `{"message":{"role":"assistant","content":"Two "},"done":false}`)
		fmt.Fprintln(w, `{"message":{"role":"assistant","content":"outliers."},"done":false}`)
		fmt.Fprintln(w, `{"message":{"role":"assistant","content":""},"done":true}`)
		fmt.Fprintln(w, `{"message":{"role":"assistant","content":"ignored"},"done":false}`)
	}))
	defer srv.Close()

	c := NewOllamaClient(srv.URL, 2*time.Second, 1, 0, 0)
	reply, err := AskStream(context.Background(), c, "llama3", "Any outliers?", NewChatContext(harvest(), nil), 0, nil)
	if err != nil || reply != "Two outliers." {
		t.Fatalf("reply %q err %v", reply, err)
	}
}
