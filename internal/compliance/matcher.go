// Package compliance implements the work item traceability checks: the
// reference matcher, the work item linker and validator, the commit and
// pull request checkers, and the status comment upsert they share.
package compliance

import (
	"regexp"
	"strconv"
)

// referencePattern matches work item references like AB#123. The prefix is
// case-insensitive, the payload is one or more digits.
var referencePattern = regexp.MustCompile(`(?i)AB#[0-9]+`)

// Reference is a single work item reference found in text.
type Reference struct {
	// Raw is the token as it appeared, prefix case preserved.
	Raw string
	// ID is the numeric work item id with the prefix stripped.
	ID int
}

// HasReference reports whether text contains at least one work item reference.
func HasReference(text string) bool {
	return referencePattern.MatchString(text)
}

// FindReferences returns every reference in text in order of appearance.
// Each call performs a fresh scan; no matcher state is shared between calls.
// Identical references are not deduplicated here, that is the caller's call.
func FindReferences(text string) []Reference {
	matches := referencePattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}
	refs := make([]Reference, 0, len(matches))
	for _, raw := range matches {
		id, err := strconv.Atoi(raw[len("AB#"):])
		if err != nil {
			continue
		}
		refs = append(refs, Reference{Raw: raw, ID: id})
	}
	return refs
}

// dedupeByRaw keeps the first occurrence of each raw token. Tokens that
// differ only in prefix case stay distinct.
func dedupeByRaw(refs []Reference) []Reference {
	seen := make(map[string]struct{}, len(refs))
	out := make([]Reference, 0, len(refs))
	for _, ref := range refs {
		if _, ok := seen[ref.Raw]; ok {
			continue
		}
		seen[ref.Raw] = struct{}{}
		out = append(out, ref)
	}
	return out
}
