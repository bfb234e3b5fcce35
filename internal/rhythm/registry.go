package rhythm

import (
	"fmt"
	"strings"
)

// UnsupportedStyleError reports a style name with no registered pattern.
type UnsupportedStyleError struct {
	Style string
}

func (e *UnsupportedStyleError) Error() string {
	return fmt.Sprintf("unsupported style %q (available: %s)", e.Style, strings.Join(Styles(), ", "))
}

// DefaultStyle is used when a style name cannot be resolved.
const DefaultStyle = "folk"

var canonical = []string{"folk", "pop", "jazz", "rock"}

var patterns = map[string]Pattern{
	"folk": Folk{},
	"pop":  Pop{},
	"jazz": Jazz{},
	"rock": Rock{},
}

var aliases = map[string]string{
	"folk":               "folk",
	"folk arpeggio":      "folk",
	"arpeggio":           "folk",
	"folk fingerpicking": "folk",
	"fingerpicking":      "folk",
	"pop":                "pop",
	"pop strum":          "pop",
	"strum":              "pop",
	"pop strumming":      "pop",
	"strumming":          "pop",
	"jazz":               "jazz",
	"jazz comping":       "jazz",
	"comping":            "jazz",
	"rock":               "rock",
	"rock power":         "rock",
	"power":              "rock",
}

// Canonical maps a style name or alias, in any case, to its canonical name.
func Canonical(name string) (string, error) {
	key := strings.ToLower(strings.Join(strings.Fields(name), " "))
	if c, ok := aliases[key]; ok {
		return c, nil
	}
	return "", &UnsupportedStyleError{Style: name}
}

// Lookup resolves a style name or alias to its pattern.
func Lookup(name string) (Pattern, error) {
	c, err := Canonical(name)
	if err != nil {
		return nil, err
	}
	return patterns[c], nil
}

// Styles lists the canonical style names.
func Styles() []string {
	return append([]string(nil), canonical...)
}

func IsSupported(name string) bool {
	_, err := Canonical(name)
	return err == nil
}
