package mcpserver

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"codeberg.org/snonux/wordhoard/internal/cache"
	"codeberg.org/snonux/wordhoard/internal/lookup"
	"codeberg.org/snonux/wordhoard/internal/testutil"
)

func newTestServer(t *testing.T) (*Server, *testutil.FakeLookuper, cache.Store) {
	t.Helper()
	store, err := cache.NewFileStore(testutil.CreateTestDataDirectory(t))
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	client := testutil.NewFakeLookuper()
	srv := New(Deps{
		Client: client,
		Store:  store,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return srv, client, store
}

func connect(t *testing.T, srv *Server) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	serverSession, err := srv.MCP().Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server Connect() error = %v", err)
	}
	t.Cleanup(func() { _ = serverSession.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client Connect() error = %v", err)
	}
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func decodeStructured(t *testing.T, res *mcp.CallToolResult, out any) {
	t.Helper()
	if res.IsError {
		t.Fatalf("tool returned error: %+v", res.Content)
	}
	data, err := json.Marshal(res.StructuredContent)
	if err != nil {
		t.Fatalf("failed to marshal structured content: %v", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		t.Fatalf("failed to decode structured content: %v", err)
	}
}

func TestListTools(t *testing.T) {
	srv, _, _ := newTestServer(t)
	session := connect(t, srv)

	res, err := session.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListTools() error = %v", err)
	}

	names := map[string]bool{}
	for _, tool := range res.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{"wordhoard_extract_words", "wordhoard_lookup_word"} {
		if !names[want] {
			t.Errorf("tool %s not registered", want)
		}
	}
}

func TestExtractWordsTool(t *testing.T) {
	srv, _, _ := newTestServer(t)
	session := connect(t, srv)

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name: "wordhoard_extract_words",
		Arguments: map[string]any{
			"text": "[[module CSS]] .title { color: red; } [[/module]] The **quick** brown fox",
		},
	})
	if err != nil {
		t.Fatalf("CallTool() error = %v", err)
	}

	var out ExtractResult
	decodeStructured(t, res, &out)

	want := "brown,color,fox,quick,red,the,title"
	if got := strings.Join(out.Words, ","); got != want {
		t.Errorf("words = %s, want %s", got, want)
	}
	if out.Count != 7 {
		t.Errorf("count = %d, want 7", out.Count)
	}
}

func TestLookupWordToolUsesCache(t *testing.T) {
	srv, client, store := newTestServer(t)
	session := connect(t, srv)
	ctx := context.Background()

	if err := store.Save(ctx, lookup.Thesaurus, "apple", lookup.NotFound([]string{"ample"})); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "wordhoard_lookup_word",
		Arguments: map[string]any{"word": "Apple"},
	})
	if err != nil {
		t.Fatalf("CallTool() error = %v", err)
	}

	var out LookupResult
	decodeStructured(t, res, &out)

	if out.Word != "apple" || len(out.Entries) != 2 {
		t.Fatalf("result = %+v, want two entries for apple", out)
	}

	dict, thes := out.Entries[0], out.Entries[1]
	if dict.Kind != "dictionary" || dict.Cached || dict.Status != "success" || dict.Payload == nil {
		t.Errorf("dictionary entry = %+v, want fresh success with payload", dict)
	}
	if thes.Kind != "thesaurus" || !thes.Cached || thes.Status != "not_found" || len(thes.Suggestions) != 1 {
		t.Errorf("thesaurus entry = %+v, want cached not found with suggestions", thes)
	}

	if calls := client.CallList(); len(calls) != 1 || calls[0] != "dictionary:apple" {
		t.Errorf("calls = %v, want only the dictionary lookup", calls)
	}

	exists, err := store.Exists(ctx, lookup.Dictionary, "apple")
	if err != nil || !exists {
		t.Errorf("fresh dictionary result was not cached: %v, %v", exists, err)
	}
}

func TestLookupWordRefresh(t *testing.T) {
	srv, client, store := newTestServer(t)
	ctx := context.Background()

	if err := store.Save(ctx, lookup.Dictionary, "apple", lookup.RateLimited()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	_, out, err := srv.lookupWord(ctx, nil, LookupArgs{Word: "apple", Kind: "dictionary", Refresh: true})
	if err != nil {
		t.Fatalf("lookupWord() error = %v", err)
	}
	if len(out.Entries) != 1 || out.Entries[0].Cached || out.Entries[0].Status != "success" {
		t.Errorf("entries = %+v, want one fresh success", out.Entries)
	}
	if len(client.CallList()) != 1 {
		t.Errorf("calls = %v, want 1", client.CallList())
	}
}

func TestLookupWordErrors(t *testing.T) {
	srv, client, _ := newTestServer(t)
	ctx := context.Background()

	tests := []struct {
		name string
		args LookupArgs
	}{
		{"empty word", LookupArgs{Word: "  "}},
		{"unknown kind", LookupArgs{Word: "apple", Kind: "encyclopedia"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := srv.lookupWord(ctx, nil, tt.args); err == nil {
				t.Error("expected error")
			}
		})
	}
	if len(client.CallList()) != 0 {
		t.Errorf("invalid requests reached the client: %v", client.CallList())
	}
}

func TestLookupWordErrorResult(t *testing.T) {
	srv, client, _ := newTestServer(t)
	client.Set(lookup.Thesaurus, "apple", lookup.TransientError(lookup.MsgMaxRetries, lookup.CodeExhausted))

	_, out, err := srv.lookupWord(context.Background(), nil, LookupArgs{Word: "apple", Kind: "thes"})
	if err != nil {
		t.Fatalf("lookupWord() error = %v", err)
	}
	entry := out.Entries[0]
	if entry.Status != "transient_error" || entry.Message != lookup.MsgMaxRetries || entry.StatusCode != -1 {
		t.Errorf("entry = %+v, want transient max retries", entry)
	}
}

func TestExtractWordsMinLength(t *testing.T) {
	srv, _, _ := newTestServer(t)

	_, out, err := srv.extractWords(context.Background(), nil, ExtractArgs{Text: "a an ant ants", MinLength: 3})
	if err != nil {
		t.Fatalf("extractWords() error = %v", err)
	}
	if got := strings.Join(out.Words, ","); got != "ant,ants" {
		t.Errorf("words = %s, want ant,ants", got)
	}

	_, out, err = srv.extractWords(context.Background(), nil, ExtractArgs{Text: "a an ant"})
	if err != nil {
		t.Fatalf("extractWords() error = %v", err)
	}
	if got := strings.Join(out.Words, ","); got != "an,ant" {
		t.Errorf("words with default length = %s, want an,ant", got)
	}
}
