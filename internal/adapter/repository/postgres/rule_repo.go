package postgres

import (
	"context"
	"fmt"

	"github.com/nrmontgomery1984-cell/looops-app-sub006/internal/domain"
)

// ruleRepository implements domain.RuleRepository
type ruleRepository struct {
	db *DB
}

// NewRuleRepository creates a new rule repository
func NewRuleRepository(db *DB) domain.RuleRepository {
	return &ruleRepository{db: db}
}

func (r *ruleRepository) ListRules(ctx context.Context) ([]domain.CategoryRule, error) {
	query := `
		SELECT id, pattern, pattern_type, category_id, subcategory, priority
		FROM category_rules
		ORDER BY priority DESC, id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	defer rows.Close()

	var rules []domain.CategoryRule
	for rows.Next() {
		var rule domain.CategoryRule
		var patternType string
		if err := rows.Scan(&rule.ID, &rule.Pattern, &patternType, &rule.CategoryID, &rule.Subcategory, &rule.Priority); err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		rule.PatternType = domain.PatternType(patternType)
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

func (r *ruleRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	query := `SELECT id, name, loop FROM categories ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Loop); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
