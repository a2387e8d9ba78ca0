package processor

import (
	"context"
	"log/slog"

	"codeberg.org/snonux/wordhoard/internal/batch"
	"codeberg.org/snonux/wordhoard/internal/extract"
	"codeberg.org/snonux/wordhoard/internal/metrics"
)

// LoadWords reads the source fragments and returns their sorted unique words
func LoadWords(ctx context.Context, paths []string, minLen int, logger *slog.Logger, recorder *metrics.Recorder) ([]string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	content, err := batch.LoadFragments(ctx, paths)
	if err != nil {
		return nil, err
	}

	logger.Info("Extracting unique words from source content", "files", len(paths), "bytes", len(content))
	words := extract.Extract(content, minLen)
	logger.Info("Extracted unique words", "count", len(words))
	recorder.SetWordsExtracted(len(words))

	return words, nil
}
