package ansi

import "strings"

const (
	codeReset = 0
	codeBold  = 1

	boldOpen  = `<span style="font-weight:bold">`
	spanClose = `</span>`
)

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// frame is one open style scope.
type frame struct {
	close string
}

// Renderer converts SGR-coloured text to HTML using a fixed palette.
// A Renderer holds no per-call state and is safe for concurrent use.
type Renderer struct {
	palette Palette
}

var defaultRenderer = New(DefaultPalette())

// New creates a renderer over the given palette.
func New(p Palette) *Renderer {
	if p == nil {
		p = DefaultPalette()
	}
	return &Renderer{palette: p}
}

// Render renders text with the default palette.
func Render(text string) string {
	return defaultRenderer.Render(text)
}

// Render escapes literal runs and turns recognised codes into nested spans.
// A second colour code while a colour span is open nests a new span rather
// than replacing the first; only code 0 closes scopes.
func (r *Renderer) Render(text string) string {
	var b strings.Builder
	b.Grow(len(text) + len(text)/4)

	var stack []frame
	for _, tok := range Tokenize(text) {
		if !tok.Control {
			escaper.WriteString(&b, tok.Text)
			continue
		}
		for _, code := range tok.Codes {
			stack = r.apply(&b, stack, code)
		}
	}

	unwind(&b, stack)
	return b.String()
}

// apply executes a single code against the stack.
func (r *Renderer) apply(b *strings.Builder, stack []frame, code int) []frame {
	switch code {
	case codeReset:
		unwind(b, stack)
		return stack[:0]
	case codeBold:
		b.WriteString(boldOpen)
		return append(stack, frame{close: spanClose})
	}

	color, ok := r.palette.Lookup(code)
	if !ok {
		return stack
	}
	b.WriteString(`<span style="color:`)
	b.WriteString(color)
	b.WriteString(`">`)
	return append(stack, frame{close: spanClose})
}

// unwind closes every frame, last opened first.
func unwind(b *strings.Builder, stack []frame) {
	for i := len(stack) - 1; i >= 0; i-- {
		b.WriteString(stack[i].close)
	}
}

// Escape escapes the five markup-significant characters and nothing else.
func Escape(s string) string {
	return escaper.Replace(s)
}
