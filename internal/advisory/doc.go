// Package advisory turns the advisory search form into the argument
// vector for the review module: product and version filters, a severity
// preset or explicit CVSS bounds, and output flags. It also loads the
// product suggestion list and the severity presets.
package advisory
