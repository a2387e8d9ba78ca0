package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"codeberg.org/snonux/wordhoard/internal/lookup"
)

// FakeLookuper stands in for the lookup client. Results are scripted per
// kind and word; unscripted lookups succeed with a small payload.
type FakeLookuper struct {
	mu        sync.Mutex
	Results   map[string]lookup.Result
	Default   *lookup.Result
	CallLimit int64
	Calls     []string
}

// NewFakeLookuper returns a fake with the production call limit
func NewFakeLookuper() *FakeLookuper {
	return &FakeLookuper{
		Results:   map[string]lookup.Result{},
		CallLimit: lookup.DefaultCallLimit,
	}
}

// Set scripts the result for word and kind
func (f *FakeLookuper) Set(kind lookup.Kind, word string, result lookup.Result) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Results[callKey(kind, word)] = result
}

// Lookup records the call and returns the scripted result
func (f *FakeLookuper) Lookup(ctx context.Context, word string, kind lookup.Kind) lookup.Result {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := callKey(kind, word)
	f.Calls = append(f.Calls, key)

	if result, ok := f.Results[key]; ok {
		return result
	}
	if f.Default != nil {
		return *f.Default
	}
	return lookup.Success(json.RawMessage(fmt.Sprintf(`[{"meta":{"id":%q}}]`, word)))
}

// Stats reports one API call per lookup
func (f *FakeLookuper) Stats() lookup.Stats {
	f.mu.Lock()
	defer f.mu.Unlock()

	count := int64(len(f.Calls))
	return lookup.Stats{
		CallCount:      count,
		RemainingCalls: f.CallLimit - count,
	}
}

// CallList returns a copy of the recorded calls as "kind:word"
func (f *FakeLookuper) CallList() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.Calls...)
}

func callKey(kind lookup.Kind, word string) string {
	return kind.String() + ":" + word
}
