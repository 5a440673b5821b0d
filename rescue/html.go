package rescue

import (
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// HTML converts a rendered rescue package (markdown) to sanitized HTML,
// suitable for embedding in a web view. The output passes through a UGC
// policy, so conversation content can be displayed without script
// injection risk.
func HTML(markdown string) (string, error) {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
	)

	var buf strings.Builder
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("convert rescue package to HTML: %w", err)
	}

	return bluemonday.UGCPolicy().Sanitize(buf.String()), nil
}
