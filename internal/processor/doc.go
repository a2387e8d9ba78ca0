// Package processor runs a lookup session. It walks the extracted word
// list in order and, for every word, fetches the dictionary and thesaurus
// entries that are not cached yet. Every result is saved. The run stops
// early on a rate limit, an exhausted call budget, an open circuit
// breaker or cancellation, and always reports the word to resume from.
package processor
