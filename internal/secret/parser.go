package secret

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// refPattern matches ${type:name} references.
var refPattern = regexp.MustCompile(`\$\{([^:}]+):([^}]+)\}`)

// ParseRef parses a single secret reference.
func ParseRef(input string) (*Ref, error) {
	matches := refPattern.FindStringSubmatch(input)
	if len(matches) != 3 {
		return nil, fmt.Errorf("invalid secret reference format: %s", input)
	}
	return &Ref{
		Type:     strings.TrimSpace(matches[1]),
		Name:     strings.TrimSpace(matches[2]),
		Original: input,
	}, nil
}

// IsRef reports whether the string contains a secret reference.
func IsRef(input string) bool {
	return refPattern.MatchString(input)
}

// FindRefs returns every secret reference in a string.
func FindRefs(input string) []*Ref {
	matches := refPattern.FindAllStringSubmatch(input, -1)
	refs := make([]*Ref, 0, len(matches))
	for _, match := range matches {
		refs = append(refs, &Ref{
			Type:     strings.TrimSpace(match[1]),
			Name:     strings.TrimSpace(match[2]),
			Original: match[0],
		})
	}
	return refs
}

// Expand replaces every secret reference in input with its resolved value.
// Strings without references pass through untouched.
func (r *Resolver) Expand(ctx context.Context, input string) (string, error) {
	if !IsRef(input) {
		return input, nil
	}

	result := input
	for _, ref := range FindRefs(input) {
		value, err := r.Resolve(ctx, *ref)
		if err != nil {
			return "", fmt.Errorf("failed to resolve secret %s: %w", ref.Original, err)
		}
		result = strings.ReplaceAll(result, ref.Original, value)
	}
	return result, nil
}

// MaskValue masks a secret value for display.
func MaskValue(value string) string {
	if len(value) <= 4 {
		return "****"
	}
	if len(value) <= 8 {
		return value[:2] + "****"
	}
	return value[:3] + "****" + value[len(value)-2:]
}
