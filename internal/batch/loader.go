// Package batch loads the source markup fragments a run extracts words from.
package batch

import (
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"
)

// LoadFragments reads every file in paths concurrently and joins their
// contents in argument order, each fragment followed by a newline.
func LoadFragments(ctx context.Context, paths []string) (string, error) {
	if len(paths) == 0 {
		return "", fmt.Errorf("no source files given")
	}

	fragments := make([]string, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			content, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read source file: %w", err)
			}
			fragments[i] = string(content)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, fragment := range fragments {
		sb.WriteString(fragment)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}
