package advisory

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/bytedance/sonic"
)

// Products is the list of known product names offered as suggestions.
type Products []string

// LoadProducts reads a JSON array of product names. Blank and duplicate
// names are dropped; order is preserved.
func LoadProducts(path string) (Products, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read products: %w", err)
	}
	return ParseProducts(data)
}

// ParseProducts decodes a JSON array of product names.
func ParseProducts(data []byte) (Products, error) {
	var names []string
	if err := sonic.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("parse products: %w", err)
	}

	seen := make(map[string]struct{}, len(names))
	out := make(Products, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out, nil
}

// Search returns up to limit names containing q, case-insensitively.
// Names starting with q sort first. A limit <= 0 means no limit.
func (p Products) Search(q string, limit int) Products {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		if limit > 0 && limit < len(p) {
			return append(Products{}, p[:limit]...)
		}
		return append(Products{}, p...)
	}

	var prefix, infix Products
	for _, name := range p {
		lower := strings.ToLower(name)
		switch {
		case strings.HasPrefix(lower, q):
			prefix = append(prefix, name)
		case strings.Contains(lower, q):
			infix = append(infix, name)
		}
	}
	sort.SliceStable(prefix, func(i, j int) bool { return len(prefix[i]) < len(prefix[j]) })

	out := append(prefix, infix...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
