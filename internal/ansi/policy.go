package ansi

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

var cssVarPattern = regexp.MustCompile(`^var\(--ansi-[a-z-]+\)$`)

// Policy returns a sanitization policy that admits exactly what Render
// produces: span elements styled with a palette variable or bold weight.
// Everything else is stripped or escaped.
func Policy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("span")
	p.AllowStyles("color").Matching(cssVarPattern).OnElements("span")
	p.AllowStyles("font-weight").MatchingEnum("bold").OnElements("span")
	return p
}
