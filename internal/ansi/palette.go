package ansi

import "fmt"

// Palette maps foreground SGR codes to CSS colour values.
type Palette map[int]string

var colorNames = [8]string{"black", "red", "green", "yellow", "blue", "magenta", "cyan", "white"}

// DefaultPalette returns the 16-colour foreground table.
// Codes 30-37 map to var(--ansi-<name>), 90-97 to var(--ansi-bright-<name>).
func DefaultPalette() Palette {
	p := make(Palette, 16)
	for i, name := range colorNames {
		p[30+i] = fmt.Sprintf("var(--ansi-%s)", name)
		p[90+i] = fmt.Sprintf("var(--ansi-bright-%s)", name)
	}
	return p
}

// Lookup returns the colour for code, if the palette defines one.
func (p Palette) Lookup(code int) (string, bool) {
	v, ok := p[code]
	return v, ok
}
