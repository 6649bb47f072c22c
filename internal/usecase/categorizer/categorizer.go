// Package categorizer applies ordered pattern rules to uncategorized
// transactions. It is pure and idempotent: the same rule set and input
// always produce the same output, and it never fails a sync — a bad
// rule is simply a non-match.
package categorizer

import (
	"log"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/nrmontgomery1984-cell/looops-app-sub006/internal/domain"
)

// Engine evaluates categorization rules against clean descriptions.
type Engine struct {
	rules      []domain.CategoryRule // descending priority
	categories map[uuid.UUID]domain.Category
	logger     *log.Logger

	compiled map[string]*regexp.Regexp
	badRules map[string]bool
}

// New builds an Engine from a rule set and category definitions. The
// logger receives one diagnostic per malformed regex pattern so rule
// authors can spot them; pass nil to silence it.
func New(rules []domain.CategoryRule, categories []domain.Category, logger *log.Logger) *Engine {
	sorted := make([]domain.CategoryRule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority > sorted[j].Priority
	})

	byID := make(map[uuid.UUID]domain.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	return &Engine{
		rules:      sorted,
		categories: byID,
		logger:     logger,
		compiled:   make(map[string]*regexp.Regexp),
		badRules:   make(map[string]bool),
	}
}

// Apply categorizes each eligible transaction with the first matching
// rule and returns a new slice; the input is not modified. Transactions
// the user has reviewed are never touched. A rule whose category no
// longer exists leaves the transaction as-is.
func (e *Engine) Apply(txs []domain.Transaction) []domain.Transaction {
	out := make([]domain.Transaction, len(txs))
	copy(out, txs)

	for i := range out {
		if out[i].User.IsReviewed {
			continue
		}

		desc := strings.ToLower(out[i].Provider.CleanDescription)
		for _, rule := range e.rules {
			if !e.matches(rule, desc) {
				continue
			}
			category, ok := e.categories[rule.CategoryID]
			if !ok {
				// Rule points at a deleted category; leave the
				// transaction untouched.
				break
			}
			categoryID := rule.CategoryID
			out[i].User.CategoryID = &categoryID
			out[i].User.Loop = category.Loop
			out[i].User.Subcategory = rule.Subcategory
			break
		}
	}

	return out
}

func (e *Engine) matches(rule domain.CategoryRule, desc string) bool {
	pattern := strings.ToLower(rule.Pattern)
	switch rule.PatternType {
	case domain.PatternTypeContains:
		return strings.Contains(desc, pattern)
	case domain.PatternTypeStartsWith:
		return strings.HasPrefix(desc, pattern)
	case domain.PatternTypeRegex:
		re := e.regex(rule.Pattern)
		return re != nil && re.MatchString(desc)
	default:
		return false
	}
}

// regex returns the compiled case-insensitive pattern, or nil for a
// malformed one. Each bad pattern is logged once per Engine.
func (e *Engine) regex(pattern string) *regexp.Regexp {
	if re, ok := e.compiled[pattern]; ok {
		return re
	}
	if e.badRules[pattern] {
		return nil
	}

	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		e.badRules[pattern] = true
		if e.logger != nil {
			e.logger.Printf("categorizer: ignoring malformed rule pattern %q: %v", pattern, err)
		}
		return nil
	}

	e.compiled[pattern] = re
	return re
}
