package models

import (
	"slices"
	"strings"

	pstrings "scp-gateway/pkg/platform/strings"
)

// Scope is a named permission carried on every grant.
type Scope string

const (
	ScopeOrders       Scope = "orders"
	ScopeLoyalty      Scope = "loyalty"
	ScopeOffers       Scope = "offers"
	ScopePreferences  Scope = "preferences"
	ScopeIntentRead   Scope = "intent:read"
	ScopeIntentCreate Scope = "intent:create"
	ScopeIntentWrite  Scope = "intent:write"
	ScopeIntentDelete Scope = "intent:delete"
)

// SupportedScopes lists every grantable scope in advertised order.
var SupportedScopes = []Scope{
	ScopeOrders,
	ScopeLoyalty,
	ScopeOffers,
	ScopePreferences,
	ScopeIntentRead,
	ScopeIntentCreate,
	ScopeIntentWrite,
	ScopeIntentDelete,
}

// IsValid reports whether s belongs to the fixed scope set.
func (s Scope) IsValid() bool {
	return slices.Contains(SupportedScopes, s)
}

func (s Scope) String() string {
	return string(s)
}

// SupportedScopeStrings returns SupportedScopes as plain strings.
func SupportedScopeStrings() []string {
	out := make([]string, len(SupportedScopes))
	for i, s := range SupportedScopes {
		out[i] = string(s)
	}
	return out
}

// NormalizeScopes trims, deduplicates and preserves order.
func NormalizeScopes(scopes []string) []string {
	return pstrings.TrimUnique(scopes)
}

// ParseScopeString splits a space-delimited scope parameter.
func ParseScopeString(raw string) []string {
	return NormalizeScopes(strings.Fields(raw))
}

// JoinScopes renders scopes in the space-delimited wire format.
func JoinScopes(scopes []string) string {
	return strings.Join(scopes, " ")
}

// HasScope reports whether granted contains required.
func HasScope(granted []string, required Scope) bool {
	return slices.Contains(granted, string(required))
}
