package artifact

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Text returns the artifact source as UTF-8 text. Sources that are not
// valid UTF-8 are transcoded from the charset chardet detects.
func (a *Artifact) Text() (string, error) {
	src := bytes.TrimPrefix(a.Source, utf8BOM)
	if utf8.Valid(src) {
		return string(src), nil
	}

	label := detectCharset(src)
	enc, err := htmlindex.Get(label)
	if err != nil {
		return "", fmt.Errorf("unsupported source charset %q: %w", label, err)
	}

	out, _, err := transform.Bytes(enc.NewDecoder(), src)
	if err != nil {
		return "", fmt.Errorf("decode %s source: %w", label, err)
	}
	return string(out), nil
}

func detectCharset(data []byte) string {
	result, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil || result == nil {
		return "windows-1252"
	}
	return strings.ToLower(result.Charset)
}
