package extract

import (
	"context"
	"os"
)

// Text passes plain-text exports through unchanged.
type Text struct{}

func (Text) Extract(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", unreadable(path, err)
	}
	return string(raw), nil
}
