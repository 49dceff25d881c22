package services

import (
	"strings"

	"stashbox/models"
	"stashbox/repositories"
)

// DefaultSort is applied by the list operation when the caller does not
// ask for an order.
const DefaultSort = "created_at-desc"

var sortFieldAliases = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

// BuildFileQueries translates a logical file search into the ordered
// predicate list the file repository consumes. Pure function: the
// ownership-or-shared predicate always comes first, the order predicate
// (if any) last.
//
// sort has the form "<field>-<direction>"; a missing or unknown
// direction means descending. limit <= 0 means no limit.
func BuildFileQueries(ownerID uint, ownerEmail string, categories []models.FileCategory, searchText string, sort string, limit int) []repositories.Predicate {
	queries := []repositories.Predicate{{
		Kind:       repositories.PredicateOwnership,
		OwnerID:    ownerID,
		OwnerEmail: ownerEmail,
	}}

	if len(categories) > 0 {
		queries = append(queries, repositories.Predicate{
			Kind:       repositories.PredicateCategoryIn,
			Categories: categories,
		})
	}
	if searchText != "" {
		queries = append(queries, repositories.Predicate{
			Kind:   repositories.PredicateNameContains,
			Search: searchText,
		})
	}
	if limit > 0 {
		queries = append(queries, repositories.Predicate{
			Kind:  repositories.PredicateLimit,
			Limit: limit,
		})
	}
	if sort != "" {
		field, direction, _ := strings.Cut(sort, "-")
		if alias, ok := sortFieldAliases[field]; ok {
			field = alias
		}
		queries = append(queries, repositories.Predicate{
			Kind:       repositories.PredicateOrder,
			OrderField: field,
			Descending: direction != "asc",
		})
	}

	return queries
}
