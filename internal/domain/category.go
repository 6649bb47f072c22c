package domain

import "github.com/google/uuid"

// Category is a user-facing spending category. Loop is the life-domain
// bucket the category belongs to (e.g. Health, Wealth); the sync engine
// only propagates it.
type Category struct {
	ID   uuid.UUID
	Name string
	Loop string
}

// PatternType selects how a categorization rule's pattern is tested
// against a transaction's clean description.
type PatternType string

const (
	PatternTypeContains   PatternType = "contains"
	PatternTypeStartsWith PatternType = "starts_with"
	PatternTypeRegex      PatternType = "regex"
)

// CategoryRule assigns a category to transactions whose clean description
// matches the pattern. Rules are evaluated in descending Priority order;
// the first match wins.
type CategoryRule struct {
	ID          uuid.UUID
	Pattern     string
	PatternType PatternType
	CategoryID  uuid.UUID
	Subcategory string
	Priority    int
}
