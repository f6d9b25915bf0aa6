package postprocess

import (
	"context"
	"strings"

	"markestedt/clippath/paths"
)

// TerminalPath converts a saved file's path to the style the focused window
// expects.
func TerminalPath(r *paths.Resolver) Step {
	return Step{Name: StepTerminalPath, Run: func(ctx context.Context, text string) (string, error) {
		return r.Resolve(text), nil
	}}
}

// QuoteSpaces wraps paths containing spaces in quotes when enabled returns
// true. POSIX paths get single quotes, Windows paths double quotes.
func QuoteSpaces(enabled func() bool) Step {
	return Step{Name: StepQuoteSpaces, Run: func(ctx context.Context, text string) (string, error) {
		if !enabled() || !strings.ContainsRune(text, ' ') {
			return text, nil
		}
		if strings.HasPrefix(text, "/") {
			return "'" + strings.ReplaceAll(text, "'", `'\''`) + "'", nil
		}
		return `"` + text + `"`, nil
	}}
}
