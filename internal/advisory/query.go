package advisory

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/GriffinCanCode/modhost/internal/shared/utils"
)

// Command and subcommands the module expects ahead of the filters.
var baseArgs = []string{"fortinet", "affected"}

// leadingNumber matches the numeric prefix a form field is read as.
var leadingNumber = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`)

// Query is the advisory search form.
type Query struct {
	Product  string `json:"product" form:"product"`
	Version  string `json:"version" form:"version"`
	Severity string `json:"severity" form:"severity"`
	MinCVSS  string `json:"min_cvss" form:"min_cvss"`
	MaxCVSS  string `json:"max_cvss" form:"max_cvss"`
	JSON     bool   `json:"json" form:"json"`
	NoBorder bool   `json:"no_border" form:"no_border"`
}

// Validate rejects fields that are too long or carry control characters.
// Empty fields are allowed; the module decides what they mean.
func (q Query) Validate() error {
	fields := []struct {
		name, value string
		max         int
	}{
		{"product", q.Product, utils.MaxFieldLength},
		{"version", q.Version, utils.MaxFieldLength},
		{"severity", q.Severity, utils.MaxScoreLength},
		{"min_cvss", q.MinCVSS, utils.MaxScoreLength},
		{"max_cvss", q.MaxCVSS, utils.MaxScoreLength},
	}
	for _, f := range fields {
		if err := utils.ValidateString(f.value, f.name, f.max, false); err != nil {
			return err
		}
	}
	return nil
}

// WithPresetBounds fills empty score bounds from the selected preset, the
// way choosing a severity populates both fields on the form.
func (q Query) WithPresetBounds(p Presets) Query {
	r, ok := p.Lookup(q.Severity)
	if !ok {
		return q
	}
	if strings.TrimSpace(q.MinCVSS) == "" && strings.TrimSpace(q.MaxCVSS) == "" {
		q.MinCVSS = FormatScore(r.Min)
		q.MaxCVSS = FormatScore(r.Max)
	}
	return q
}

// Args builds the module arguments. --severity is passed only when the
// bounds equal the named preset exactly; otherwise each bound that reads as
// a number is passed on its own.
func (q Query) Args(p Presets) []string {
	args := append([]string{}, baseArgs...)
	args = append(args, "--product", q.Product, "--version", q.Version)

	min, minOK := ParseScore(q.MinCVSS)
	max, maxOK := ParseScore(q.MaxCVSS)

	severity := strings.TrimSpace(q.Severity)
	if r, ok := p.Lookup(severity); ok && minOK && maxOK && r.Matches(min, max) {
		args = append(args, "--severity", severity)
	} else {
		if minOK {
			args = append(args, "--min-cvss-score", FormatScore(min))
		}
		if maxOK {
			args = append(args, "--max-cvss-score", FormatScore(max))
		}
	}

	if q.JSON {
		args = append(args, "--json")
	}
	if q.NoBorder {
		args = append(args, "--disable-border")
	}
	return args
}

// ParseScore reads the leading number of a form value, ignoring leading
// whitespace and any trailing text. "Infinity" is accepted.
func ParseScore(s string) (float64, bool) {
	s = strings.TrimLeft(s, " \t\r\n\f\v")
	for _, inf := range []string{"Infinity", "+Infinity", "-Infinity"} {
		if strings.HasPrefix(s, inf) {
			if inf[0] == '-' {
				return math.Inf(-1), true
			}
			return math.Inf(1), true
		}
	}

	m := leadingNumber.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		// Exponent overflow still yields ±Inf with a range error.
		if errors.Is(err, strconv.ErrRange) {
			return v, true
		}
		return 0, false
	}
	return v, true
}

// FormatScore renders a score the way a browser stringifies a number:
// shortest digits (9, 8.9, 0.1), plain notation for magnitudes in
// [1e-6, 1e21) and exponent notation (1e-7, 1e+21) outside it. Negative
// zero prints as 0.
func FormatScore(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case v == 0:
		return "0"
	case v < 0:
		return "-" + FormatScore(-v)
	}

	// d.ddde±XX with the shortest round-tripping digits.
	e := strconv.FormatFloat(v, 'e', -1, 64)
	mant, exp, _ := strings.Cut(e, "e")
	digits := strings.Replace(mant, ".", "", 1)
	x, _ := strconv.Atoi(exp)
	n := x + 1 // position of the decimal point relative to digits
	k := len(digits)

	switch {
	case k <= n && n <= 21:
		return digits + strings.Repeat("0", n-k)
	case 0 < n && n <= 21:
		return digits[:n] + "." + digits[n:]
	case -6 < n && n <= 0:
		return "0." + strings.Repeat("0", -n) + digits
	}

	sign := "+"
	if x < 0 {
		sign = "-"
		x = -x
	}
	if k == 1 {
		return digits + "e" + sign + strconv.Itoa(x)
	}
	return digits[:1] + "." + digits[1:] + "e" + sign + strconv.Itoa(x)
}
