package ansi

import (
	"io"
	"strings"
	"testing"

	"github.com/antchfx/htmlquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

const (
	red   = `<span style="color:var(--ansi-red)">`
	green = `<span style="color:var(--ansi-green)">`
	bold  = `<span style="font-weight:bold">`
	end   = `</span>`
)

func TestRenderPlainText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "no specials", input: "FortiOS 7.2.4", want: "FortiOS 7.2.4"},
		{name: "markup characters", input: `a < b & "c" 'd' > e`, want: "a &lt; b &amp; &quot;c&quot; &#39;d&#39; &gt; e"},
		{name: "whitespace preserved", input: "line1\n\tline2\r\n", want: "line1\n\tline2\r\n"},
		{name: "unicode untouched", input: "naïve €", want: "naïve €"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Render(tt.input))
		})
	}
}

func TestRenderStyles(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "colour scope closed before trailing text",
			input: "\x1b[31mhello\x1b[0m world",
			want:  red + "hello" + end + " world",
		},
		{
			name:  "bold then colour closed by one reset",
			input: "\x1b[1m\x1b[32mX\x1b[0m",
			want:  bold + green + "X" + end + end,
		},
		{
			name:  "combined codes in one sequence",
			input: "\x1b[1;31mX\x1b[0m",
			want:  bold + red + "X" + end + end,
		},
		{
			name:  "second colour nests",
			input: "\x1b[31ma\x1b[32mb",
			want:  red + "a" + green + "b" + end + end,
		},
		{
			name:  "bright colour",
			input: "\x1b[91mwarn",
			want:  `<span style="color:var(--ansi-bright-red)">warn` + end,
		},
		{
			name:  "unknown codes ignored",
			input: "\x1b[4;38;5;196mx\x1b[0m",
			want:  "x",
		},
		{
			name:  "empty field skipped",
			input: "\x1b[;31mx",
			want:  red + "x" + end,
		},
		{
			name:  "leading zeros parse as integers",
			input: "\x1b[01mx",
			want:  bold + "x" + end,
		},
		{
			name:  "reset with nothing open",
			input: "\x1b[0ma\x1b[0m",
			want:  "a",
		},
		{
			name:  "text inside scope is escaped",
			input: "\x1b[31m<b>&\x1b[0m",
			want:  red + "&lt;b&gt;&amp;" + end,
		},
		{
			name:  "reset in the middle of a sequence",
			input: "\x1b[1;0;32mx",
			want:  bold + end + green + "x" + end,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Render(tt.input))
		})
	}
}

func TestRenderMalformedInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "truncated introducer",
			input: "\x1b[31mred\x1b[",
			want:  red + "red\x1b[" + end,
		},
		{
			name:  "missing final byte",
			input: "\x1b[31",
			want:  "\x1b[31",
		},
		{
			name:  "empty parameter list is literal",
			input: "\x1b[mx",
			want:  "\x1b[mx",
		},
		{
			name:  "non sgr csi is literal",
			input: "\x1b[2Jx",
			want:  "\x1b[2Jx",
		},
		{
			name:  "overflowing code ignored",
			input: "\x1b[99999999999999999999999mx",
			want:  "x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() { Render(tt.input) })
			assert.Equal(t, tt.want, Render(tt.input))
		})
	}
}

// spanDepth walks the rendered markup and reports the final depth and
// whether it ever went negative.
func spanDepth(t *testing.T, markup string) (int, bool) {
	t.Helper()

	z := html.NewTokenizer(strings.NewReader(markup))
	depth, underflow := 0, false
	for {
		switch z.Next() {
		case html.ErrorToken:
			require.ErrorIs(t, z.Err(), io.EOF)
			return depth, underflow
		case html.StartTagToken:
			depth++
		case html.EndTagToken:
			depth--
			if depth < 0 {
				underflow = true
			}
		}
	}
}

func TestRenderAlwaysBalanced(t *testing.T) {
	inputs := []string{
		"\x1b[1m\x1b[1m\x1b[1mdeep",
		"\x1b[31;32;33;34;35;36;37mrainbow",
		"\x1b[1mA\x1b[0m\x1b[0m\x1b[0mB",
		"\x1b[31m\x1b[",
		"\x1b[90;1m" + strings.Repeat("\x1b[97mx", 50),
		"plain <span> text </span>",
		"\x1b[1;;;31m\x1b[;m\x1b[",
	}

	for _, in := range inputs {
		depth, underflow := spanDepth(t, Render(in))
		assert.Zero(t, depth, "unbalanced output for %q", in)
		assert.False(t, underflow, "close before open for %q", in)
	}
}

func TestRenderNestingStructure(t *testing.T) {
	doc, err := htmlquery.Parse(strings.NewReader(Render("\x1b[1m\x1b[32mX\x1b[0m tail")))
	require.NoError(t, err)

	inner := htmlquery.Find(doc, `//span[@style="font-weight:bold"]/span[@style="color:var(--ansi-green)"]`)
	require.Len(t, inner, 1)
	assert.Equal(t, "X", htmlquery.InnerText(inner[0]))

	outer := htmlquery.FindOne(doc, `//span[@style="font-weight:bold"]`)
	require.NotNil(t, outer)
	assert.Equal(t, "X", htmlquery.InnerText(outer))
}

func TestRendererCustomPalette(t *testing.T) {
	r := New(Palette{31: "#ff0000"})

	assert.Equal(t, `<span style="color:#ff0000">x</span>`, r.Render("\x1b[31mx"))
	assert.Equal(t, "x", r.Render("\x1b[32mx"), "codes outside the palette are ignored")
	assert.Equal(t, bold+"x"+end, r.Render("\x1b[1mx"))
}

func TestDefaultPalette(t *testing.T) {
	p := DefaultPalette()
	assert.Len(t, p, 16)

	v, ok := p.Lookup(37)
	assert.True(t, ok)
	assert.Equal(t, "var(--ansi-white)", v)

	v, ok = p.Lookup(94)
	assert.True(t, ok)
	assert.Equal(t, "var(--ansi-bright-blue)", v)

	_, ok = p.Lookup(38)
	assert.False(t, ok)
}

func TestEscape(t *testing.T) {
	assert.Equal(t, "&amp;&lt;&gt;&quot;&#39;\x1b", Escape(`&<>"'`+"\x1b"))
}

func TestPolicyKeepsRenderedMarkup(t *testing.T) {
	p := Policy()

	out := p.Sanitize(`<span style="color:var(--ansi-red)">hello</span><script>alert(1)</script>`)
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "<span")
	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "alert(1)")
}

func TestPolicyDropsForeignAttributes(t *testing.T) {
	out := Policy().Sanitize(`<span onclick="steal()">x</span><a href="http://example.com">link</a>`)
	assert.NotContains(t, out, "onclick")
	assert.NotContains(t, out, "<a")
	assert.Contains(t, out, "link")
}
