/*
Package ansi renders terminal text carrying SGR escape sequences as
markup-safe HTML.

# Overview

Module output is coloured with Select Graphic Rendition sequences of the
form ESC [ codes m. The renderer scans the text, escapes every literal run
and maps the codes it understands onto nested span elements:

  - 0 closes every open span
  - 1 opens a bold span
  - 30-37 and 90-97 open a colour span bound to a CSS variable
  - every other code is ignored

Spans are tracked on a stack and closed last-opened first. Whatever is still
open when the input ends is closed too, so the output is always balanced,
even for truncated or malformed input. Sequences that do not match the
pattern pass through as escaped text.

# Usage

	html := ansi.Render("\x1b[31mhello\x1b[0m world")
	// <span style="color:var(--ansi-red)">hello</span> world

Colours are emitted as var(--ansi-<name>) so the host stylesheet decides the
actual values for light and dark themes.
*/
package ansi
