// Package mcpserver exposes word extraction and cached lookups as Model
// Context Protocol tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"codeberg.org/snonux/wordhoard/internal"
	"codeberg.org/snonux/wordhoard/internal/cache"
	"codeberg.org/snonux/wordhoard/internal/extract"
	"codeberg.org/snonux/wordhoard/internal/lookup"
	"codeberg.org/snonux/wordhoard/internal/processor"
)

const ServerName = "wordhoard"

const instructions = `wordhoard extracts vocabulary from Wikidot page source and looks words up
in the Merriam-Webster collegiate dictionary and thesaurus.

Available tools:
- wordhoard_extract_words: Sorted unique lowercase words of Wikidot markup
- wordhoard_lookup_word: Dictionary and thesaurus entries of one word, served from the cache when present`

// Deps are the collaborators shared with the command line run
type Deps struct {
	Client        processor.Lookuper
	Store         cache.Store
	Logger        *slog.Logger
	MinWordLength int
}

// Server is the wordhoard MCP server
type Server struct {
	client processor.Lookuper
	store  cache.Store
	logger *slog.Logger
	minLen int
	mcp    *mcp.Server
}

// ExtractArgs are the arguments of wordhoard_extract_words
type ExtractArgs struct {
	Text      string `json:"text" jsonschema:"Wikidot page source to extract words from"`
	MinLength int    `json:"min_length,omitempty" jsonschema:"Minimum word length (default from configuration)"`
}

// ExtractResult is the output of wordhoard_extract_words
type ExtractResult struct {
	Words []string `json:"words"`
	Count int      `json:"count"`
}

// LookupArgs are the arguments of wordhoard_lookup_word
type LookupArgs struct {
	Word    string `json:"word" jsonschema:"Word to look up"`
	Kind    string `json:"kind,omitempty" jsonschema:"dictionary, thesaurus or both (default both)"`
	Refresh bool   `json:"refresh,omitempty" jsonschema:"Ignore cached records and query the API again"`
}

// LookupEntry is the outcome of one lookup kind
type LookupEntry struct {
	Kind        string   `json:"kind"`
	Status      string   `json:"status"`
	Cached      bool     `json:"cached"`
	Message     string   `json:"message,omitempty"`
	StatusCode  int      `json:"status_code,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
	Payload     any      `json:"payload,omitempty"`
}

// LookupResult is the output of wordhoard_lookup_word
type LookupResult struct {
	Word    string        `json:"word"`
	Entries []LookupEntry `json:"entries"`
}

// New creates the server and registers its tools
func New(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	minLen := deps.MinWordLength
	if minLen < 1 {
		minLen = extract.DefaultMinWordLength
	}

	s := &Server{
		client: deps.Client,
		store:  deps.Store,
		logger: logger.With("component", "mcpserver"),
		minLen: minLen,
	}

	s.mcp = mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: internal.Version,
	}, &mcp.ServerOptions{
		Logger:       s.logger,
		Instructions: instructions,
	})
	s.registerTools()

	return s
}

// MCP returns the underlying protocol server
func (s *Server) MCP() *mcp.Server {
	return s.mcp
}

// Run serves the tools on stdin and stdout until ctx is done
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("Starting MCP server", "name", ServerName, "version", internal.Version)
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "wordhoard_extract_words",
		Description: "Extract the sorted unique lowercase words of Wikidot page source. CSS module blocks contribute only their property, value, selector and comment words.",
		Annotations: &mcp.ToolAnnotations{
			Title:          "Extract Words",
			ReadOnlyHint:   true,
			IdempotentHint: true,
			OpenWorldHint:  ptr(false),
		},
	}, s.extractWords)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "wordhoard_lookup_word",
		Description: "Look a word up in the Merriam-Webster dictionary and thesaurus. Cached records are returned without an API call unless refresh is set; fresh results are cached.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Look Up Word",
			OpenWorldHint: ptr(true),
		},
	}, s.lookupWord)
}

func (s *Server) extractWords(ctx context.Context, req *mcp.CallToolRequest, args ExtractArgs) (*mcp.CallToolResult, ExtractResult, error) {
	defer recoverPanic(s.logger, "extract_words")

	minLen := args.MinLength
	if minLen < 1 {
		minLen = s.minLen
	}

	words := extract.Extract(args.Text, minLen)
	s.logger.Info("Tool executed",
		"tool", "wordhoard_extract_words",
		"input_chars", len(args.Text),
		"words", len(words))

	return nil, ExtractResult{Words: words, Count: len(words)}, nil
}

func (s *Server) lookupWord(ctx context.Context, req *mcp.CallToolRequest, args LookupArgs) (*mcp.CallToolResult, LookupResult, error) {
	defer recoverPanic(s.logger, "lookup_word")

	word := strings.ToLower(strings.TrimSpace(args.Word))
	if word == "" {
		return nil, LookupResult{}, fmt.Errorf("word is required")
	}

	kinds, err := parseKinds(args.Kind)
	if err != nil {
		return nil, LookupResult{}, err
	}

	out := LookupResult{Word: word}
	for _, kind := range kinds {
		entry, err := s.lookupKind(ctx, word, kind, args.Refresh)
		if err != nil {
			return nil, LookupResult{}, err
		}
		out.Entries = append(out.Entries, entry)
	}

	s.logger.Info("Tool executed",
		"tool", "wordhoard_lookup_word",
		"word", word,
		"kinds", len(kinds),
		"refresh", args.Refresh)

	return nil, out, nil
}

func (s *Server) lookupKind(ctx context.Context, word string, kind lookup.Kind, refresh bool) (LookupEntry, error) {
	if !refresh {
		cached, err := s.store.Exists(ctx, kind, word)
		if err != nil {
			return LookupEntry{}, fmt.Errorf("cache check failed: %w", err)
		}
		if cached {
			result, err := s.store.Load(ctx, kind, word)
			if err != nil {
				return LookupEntry{}, fmt.Errorf("cache load failed: %w", err)
			}
			return toEntry(kind, result, true), nil
		}
	}

	result := s.client.Lookup(ctx, word, kind)
	if err := s.store.Save(context.WithoutCancel(ctx), kind, word, result); err != nil {
		return LookupEntry{}, fmt.Errorf("cache save failed: %w", err)
	}
	return toEntry(kind, result, false), nil
}

func toEntry(kind lookup.Kind, result lookup.Result, cached bool) LookupEntry {
	entry := LookupEntry{
		Kind:        kind.String(),
		Status:      result.Status.String(),
		Cached:      cached,
		Suggestions: result.Suggestions,
	}
	if result.Status == lookup.StatusSuccess {
		var payload any
		if err := json.Unmarshal(result.Payload, &payload); err == nil {
			entry.Payload = payload
		}
		return entry
	}
	entry.Message = result.Message
	entry.StatusCode = result.StatusCode
	return entry
}

func parseKinds(s string) ([]lookup.Kind, error) {
	if s == "" || strings.EqualFold(strings.TrimSpace(s), "both") {
		return lookup.Kinds, nil
	}
	kind, err := lookup.ParseKind(s)
	if err != nil {
		return nil, err
	}
	return []lookup.Kind{kind}, nil
}

func recoverPanic(logger *slog.Logger, operation string) {
	if r := recover(); r != nil {
		logger.Error("Panic recovered",
			"operation", operation,
			"panic", r,
			"stack", string(debug.Stack()))
	}
}

func ptr[T any](v T) *T {
	return &v
}
