package categories

import (
	"strings"

	"github.com/CharfiNour/enstarobots-server/models"
)

// Canonicalize resolves any accepted identifier form (slug, UUID, legacy id,
// display name) to one canonical slug. Resolution order, first match wins:
//
//  1. exact match against the static catalog's slug or type code,
//  2. case-insensitive match against the known (remote) category list,
//  3. reverse lookup through the legacy-id table,
//  4. fallback: the lowercased, trimmed input unchanged.
//
// The function is total: it never fails and never returns empty for
// non-empty input. Every component compares categories through it, so a
// false negative here would silently split one category's data in two.
func Canonicalize(raw string, known []models.CompetitionCategory) models.CategoryID {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	for _, c := range Catalog {
		if string(c.ID) == trimmed || c.Type == trimmed {
			return c.ID
		}
	}

	lower := strings.ToLower(trimmed)
	for _, c := range known {
		if strings.ToLower(string(c.ID)) == lower ||
			strings.ToLower(c.Type) == lower ||
			strings.ToLower(c.DisplayName) == lower ||
			(c.UUID != nil && strings.EqualFold(*c.UUID, trimmed)) {
			// The remote entry's own id may itself be a legacy form;
			// resolve it through the catalog before trusting it.
			if resolved := Canonicalize(string(c.ID), nil); resolved != "" {
				return resolved
			}
		}
	}

	if slug, ok := legacyIDs[lower]; ok {
		return slug
	}

	// Display names of the static catalog are accepted too; this covers raw
	// inputs that were typed by hand in early team records.
	for _, c := range Catalog {
		if strings.ToLower(c.DisplayName) == lower {
			return c.ID
		}
	}

	return models.CategoryID(lower)
}

// Resolver returns a closure over a known category list, convenient for the
// per-call resolve funcs the aggregation and draw paths take.
func Resolver(known []models.CompetitionCategory) func(string) models.CategoryID {
	return func(raw string) models.CategoryID {
		return Canonicalize(raw, known)
	}
}
