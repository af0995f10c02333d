package ai

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/KaramelBytes/dataclinic-cli/internal/analysis"
	"github.com/KaramelBytes/dataclinic-cli/internal/table"
)

type recordingRuntime struct {
	req   GenerateRequest
	reply string
	err   error
}

func (r *recordingRuntime) Generate(_ context.Context, req GenerateRequest) (*GenerateResponse, error) {
	r.req = req
	if r.err != nil {
		return nil, r.err
	}
	return &GenerateResponse{Choices: []Choice{{Message: Message{Role: "assistant", Content: r.reply}}}}, nil
}

func harvest() *table.Table {
	return table.NewWithColumns([]string{"plot", "yield"}, []table.Row{
		{"plot": "A1", "yield": 10.5},
		{"plot": "B3", "yield": 12.0},
	})
}

func TestNewChatContextKeepsOneSampleRow(t *testing.T) {
	cc := NewChatContext(harvest(), nil)
	if len(cc.Sample) != 1 || cc.Sample[0]["plot"] != "A1" {
		t.Fatalf("sample = %v", cc.Sample)
	}
	if strings.Join(cc.Columns, ",") != "plot,yield" {
		t.Fatalf("columns = %v", cc.Columns)
	}
	empty := NewChatContext(table.New(nil), nil)
	if len(empty.Sample) != 0 {
		t.Fatalf("empty table should have no sample")
	}
}

func TestChatContextMessages(t *testing.T) {
	tbl := harvest()
	in := analysis.ComputeInsights(tbl, analysis.DescriptiveStats(tbl))
	cc := NewChatContext(tbl, &in)
	msgs := cc.Messages("which plot did best?")
	if len(msgs) != 2 || msgs[0].Role != "system" || msgs[1].Role != "user" {
		t.Fatalf("messages = %+v", msgs)
	}
	sys := msgs[0].Content
	if !strings.HasPrefix(sys, systemPreamble) || !strings.Contains(sys, "Available Columns: plot, yield") {
		t.Fatalf("system = %q", sys)
	}
	if !strings.Contains(sys, "Existing Insights: {") {
		t.Fatalf("system content misses insights: %q", sys)
	}
	user := msgs[1].Content
	if !strings.HasPrefix(user, "which plot did best?\nColumns: plot, yield\nSample Row: ") {
		t.Fatalf("user = %q", user)
	}
	if !strings.Contains(user, `"totalRows":2`) {
		t.Fatalf("user content misses insights: %q", user)
	}
}

func TestSystemContentClipsPreviews(t *testing.T) {
	row := table.Row{"notes": strings.Repeat("x", 2000)}
	cc := ChatContext{Columns: []string{"notes"}, Sample: []table.Row{row}}
	sys := cc.SystemContent()
	_, preview, _ := strings.Cut(sys, "Sample Data: ")
	if len([]rune(preview)) != 300 {
		t.Fatalf("sample preview length = %d", len([]rune(preview)))
	}
	_, userPreview, _ := strings.Cut(cc.UserContent("q"), "Sample Row: ")
	if len([]rune(userPreview)) != 1000 {
		t.Fatalf("user preview length = %d", len([]rune(userPreview)))
	}
}

func TestAsk(t *testing.T) {
	rt := &recordingRuntime{reply: "Plot B3 yields more."}
	got, err := Ask(context.Background(), rt, "test-model", "compare plots", NewChatContext(harvest(), nil), 128)
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if got != "Plot B3 yields more." {
		t.Fatalf("reply = %q", got)
	}
	if rt.req.Temperature != DefaultChatTemperature || rt.req.Model != "test-model" || rt.req.MaxTokens != 128 {
		t.Fatalf("request = %+v", rt.req)
	}
	if _, err := Ask(context.Background(), rt, "m", "  ", ChatContext{}, 0); err == nil {
		t.Fatalf("blank prompt should fail")
	}
	empty := &recordingRuntime{}
	if _, err := Ask(context.Background(), empty, "m", "q", ChatContext{}, 0); err == nil {
		t.Fatalf("empty reply should fail")
	}
}

func TestAskAgainstOpenRouterServer(t *testing.T) {
	var got GenerateRequest
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(GenerateResponse{Choices: []Choice{{Message: Message{Role: "assistant", Content: "ok"}}}})
	}))
	defer srv.Close()
	c := NewClientWithBaseURL("test", 2*time.Second, 1, 0, 0, srv.URL)
	reply, err := Ask(context.Background(), c, "m", "hi", NewChatContext(harvest(), nil), 0)
	if err != nil || reply != "ok" {
		t.Fatalf("reply=%q err=%v", reply, err)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" {
		t.Fatalf("server saw %+v", got.Messages)
	}
}

func TestExplainKeepsCause(t *testing.T) {
	base := &APIError{StatusCode: 401, Message: "no key"}
	err := Explain(&AuthError{APIError: base}, ProviderOpenRouter, "m")
	var auth *AuthError
	if !errors.As(err, &auth) || !strings.Contains(err.Error(), "OPENROUTER_API_KEY") {
		t.Fatalf("err = %v", err)
	}
	err = Explain(&UnreachableError{Host: "http://h", Err: errors.New("refused")}, ProviderOllama, "llama3")
	if !strings.Contains(err.Error(), "Ollama not reachable at http://h") {
		t.Fatalf("err = %v", err)
	}
	if Explain(nil, "", "") != nil {
		t.Fatalf("nil in, nil out")
	}
}

func TestNormalizeProviderAndRegistry(t *testing.T) {
	cases := map[string]string{"Local": ProviderOllama, "openai": ProviderOpenRouter, "": "", "OpenRouter": ProviderOpenRouter}
	for in, want := range cases {
		if got := NormalizeProvider(in); got != want {
			t.Errorf("NormalizeProvider(%q) = %q, want %q", in, got, want)
		}
	}
	if _, ok := GetRuntime("local", RuntimeConfig{}); !ok {
		t.Fatalf("local should resolve to the ollama runtime")
	}
	if _, ok := GetRuntime("nope", RuntimeConfig{}); ok {
		t.Fatalf("unknown provider resolved")
	}
	if strings.Join(Providers(), ",") != "ollama,openrouter" {
		t.Fatalf("providers = %v", Providers())
	}
}

func TestFitsContextAndCost(t *testing.T) {
	if FitsContext("phi3:mini-4k-instruct", 4000, 200) {
		t.Fatalf("4200 tokens should not fit a 4096 window")
	}
	if !FitsContext("unknown/model", 1<<30, 0) {
		t.Fatalf("unknown models always fit")
	}
	if cost, ok := EstimateCostUSD("openai/gpt-4o", 1000, 1000); !ok || math.Abs(cost-0.02) > 1e-12 {
		t.Fatalf("cost = %v ok=%v", cost, ok)
	}
}

type chunkRuntime struct {
	chunks []string
	req    GenerateRequest
}

func (r *chunkRuntime) GenerateStream(_ context.Context, req GenerateRequest, onDelta func(string)) error {
	r.req = req
	for _, c := range r.chunks {
		onDelta(c)
	}
	return nil
}

func TestAskStreamJoinsChunks(t *testing.T) {
	rt := &chunkRuntime{chunks: []string{"Plot ", "B3 ", "leads."}}
	var seen []string
	got, err := AskStream(context.Background(), rt, "m", "which plot leads", NewChatContext(harvest(), nil), 64, func(d string) {
		seen = append(seen, d)
	})
	if err != nil {
		t.Fatalf("AskStream: %v", err)
	}
	if got != "Plot B3 leads." || len(seen) != 3 {
		t.Fatalf("got %q, deltas %v", got, seen)
	}
	if rt.req.Temperature != DefaultChatTemperature || len(rt.req.Messages) != 2 {
		t.Fatalf("request = %+v", rt.req)
	}
	if _, err := AskStream(context.Background(), &chunkRuntime{}, "m", "q", NewChatContext(harvest(), nil), 64, nil); err == nil {
		t.Fatalf("expected error for empty stream")
	}
}
