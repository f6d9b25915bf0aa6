package postprocess

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"markestedt/clippath/paths"
)

func step(name string, fn func(string) (string, error)) Step {
	return Step{Name: name, Run: func(ctx context.Context, s string) (string, error) { return fn(s) }}
}

func TestPipelineRunsInOrder(t *testing.T) {
	p := NewPipeline(
		step("a", func(s string) (string, error) { return s + "a", nil }),
		step("same", func(s string) (string, error) { return s, nil }),
		step("upper", func(s string) (string, error) { return strings.ToUpper(s), nil }),
	)

	res, err := p.Process(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "XA", res.Text)
	assert.Equal(t, []string{"a", "upper"}, res.Changed)
	assert.True(t, res.ChangedBy("upper"))
	assert.False(t, res.ChangedBy("same"))
}

func TestPipelineStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	called := false
	p := NewPipeline(
		step("bang", func(s string) (string, error) { return s + "!", nil }),
		step("broken", func(s string) (string, error) { return "", boom }),
		step("after", func(s string) (string, error) {
			called = true
			return s, nil
		}),
	)
	res, err := p.Process(context.Background(), "x")
	assert.ErrorIs(t, err, boom)
	assert.EqualError(t, err, "broken: boom")
	assert.Equal(t, "x!", res.Text)
	assert.Equal(t, []string{"bang"}, res.Changed)
	assert.False(t, called)
}

func TestEmptyPipelineKeepsPath(t *testing.T) {
	res, err := NewPipeline().Process(context.Background(), `C:\Temp\a.bmp`)
	require.NoError(t, err)
	assert.Equal(t, `C:\Temp\a.bmp`, res.Text)
	assert.Empty(t, res.Changed)
}

func TestTerminalPathAndQuoting(t *testing.T) {
	quote := false
	r := paths.NewResolver(paths.ModeWSL, nil)
	p := NewPipeline(TerminalPath(r), QuoteSpaces(func() bool { return quote }))

	ctx := context.Background()
	const spaced = `C:\Users\Jo Doe\AppData\Local\Temp\clippath\clipboard-1-0.bmp`

	res, err := p.Process(ctx, spaced)
	require.NoError(t, err)
	assert.Equal(t, "/mnt/c/Users/Jo Doe/AppData/Local/Temp/clippath/clipboard-1-0.bmp", res.Text)
	assert.Equal(t, []string{StepTerminalPath}, res.Changed)

	quote = true
	res, err = p.Process(ctx, spaced)
	require.NoError(t, err)
	assert.Equal(t, "'/mnt/c/Users/Jo Doe/AppData/Local/Temp/clippath/clipboard-1-0.bmp'", res.Text)
	assert.Equal(t, []string{StepTerminalPath, StepQuoteSpaces}, res.Changed)

	r.SetMode(paths.ModeWindows)
	res, err = p.Process(ctx, spaced)
	require.NoError(t, err)
	assert.Equal(t, `"`+spaced+`"`, res.Text)
	assert.False(t, res.ChangedBy(StepTerminalPath))

	res, err = p.Process(ctx, `C:\Temp\a.bmp`)
	require.NoError(t, err)
	assert.Equal(t, `C:\Temp\a.bmp`, res.Text)
	assert.Empty(t, res.Changed)
}

func TestQuoteSpacesEscapesSingleQuote(t *testing.T) {
	q := QuoteSpaces(func() bool { return true })
	out, err := q.Run(context.Background(), "/mnt/c/it's here.bmp")
	require.NoError(t, err)
	assert.Equal(t, `'/mnt/c/it'\''s here.bmp'`, out)
}
