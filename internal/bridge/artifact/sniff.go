package artifact

import (
	"fmt"
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const wasmMediaType = "application/wasm"

var scriptMediaTypes = map[string]struct{}{
	"application/javascript":   {},
	"application/x-javascript": {},
	"application/ecmascript":   {},
	"text/javascript":          {},
	"text/ecmascript":          {},
}

// KindFromContentType maps a declared Content-Type header to a kind.
// Anything other than wasm or a JavaScript type is ErrContentType.
func KindFromContentType(contentType string) (Kind, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return KindUnknown, fmt.Errorf("%w: %q", ErrContentType, contentType)
	}
	mediaType = strings.ToLower(mediaType)

	if mediaType == wasmMediaType {
		return KindWasm, nil
	}
	if _, ok := scriptMediaTypes[mediaType]; ok {
		return KindScript, nil
	}
	return KindUnknown, fmt.Errorf("%w: %q", ErrContentType, mediaType)
}

// Sniff detects the kind from the bytes themselves and returns the
// detected media type alongside it.
func Sniff(source []byte) (Kind, string, error) {
	if len(source) == 0 {
		return KindUnknown, "", ErrEmpty
	}

	detected := mimetype.Detect(source)
	if detected.Is(wasmMediaType) {
		return KindWasm, detected.String(), nil
	}

	for m := detected; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return KindScript, detected.String(), nil
		}
	}
	return KindUnknown, detected.String(), fmt.Errorf("%w: %s", ErrUnknownKind, detected.String())
}
