// Package extract pulls candidate English words out of Wikidot markup.
// It neutralises CSS module blocks, directives and inline formatting
// before matching words, and returns a sorted, deduplicated, lowercase
// word list suitable for resumable iteration.
package extract
