package processor

import (
	"log/slog"
	"strings"

	"codeberg.org/snonux/wordhoard/internal/lookup"
)

// StopReason tells why a run ended
type StopReason string

const (
	StopCompleted          StopReason = "completed"
	StopRateLimited        StopReason = "rate_limited"
	StopBudgetExhausted    StopReason = "call_budget_exhausted"
	StopServiceUnavailable StopReason = "service_unavailable"
	StopInterrupted        StopReason = "interrupted"
	StopCacheFailure       StopReason = "cache_failure"
)

// Summary reports a finished or stopped run
type Summary struct {
	SessionID      string
	TotalWords     int
	StartIndex     int
	WordsProcessed int
	Success        int
	Errors         int
	Skipped        int
	Calls          map[lookup.Kind]int
	Stats          lookup.Stats
	// NextWord is the word to pass as the start word of the next run.
	// Empty when the run completed.
	NextWord   string
	StopReason StopReason
}

// Complete reports whether every word was processed
func (s Summary) Complete() bool {
	return s.NextWord == ""
}

// ResumeHint returns the command line fragment that resumes the run
func (s Summary) ResumeHint() string {
	if s.Complete() {
		return ""
	}
	return "--start-word " + s.NextWord
}

// Log writes the summary the way the end of a run reports it
func (s Summary) Log(logger *slog.Logger) {
	logger.Info("=== Processing Complete ===",
		"session_id", s.SessionID,
		"stop_reason", string(s.StopReason))
	logger.Info("Words",
		"total_unique", s.TotalWords,
		"processed_this_session", s.WordsProcessed)
	logger.Info("API calls",
		"total", s.Stats.CallCount,
		"dictionary", s.Calls[lookup.Dictionary],
		"thesaurus", s.Calls[lookup.Thesaurus],
		"remaining", s.Stats.RemainingCalls)
	logger.Info("Results",
		"success", s.Success,
		"errors", s.Errors,
		"skipped", s.Skipped)
	logger.Info("Timing",
		"elapsed_seconds", s.Stats.Elapsed.Seconds(),
		"calls_per_minute", s.Stats.CallsPerMinute)

	if s.Complete() {
		logger.Info("All words processed successfully")
		return
	}
	logger.Info("To resume, run with: " + s.ResumeHint())
}

// ResumeIndex returns the position of start in words. Unknown words
// resume from the beginning.
func ResumeIndex(words []string, start string) (int, bool) {
	start = strings.ToLower(strings.TrimSpace(start))
	for i, w := range words {
		if w == start {
			return i, true
		}
	}
	return 0, false
}
