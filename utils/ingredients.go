package utils

import (
	"sort"
	"strings"

	"cookNestAPI/internal/types/recipe"
)

// ConsolidateIngredients merges ingredient lines from several recipes into a
// single shopping list. Lines merge when name and unit match (case-insensitive
// on the name); quantities are scaled per entry and summed. Output is sorted
// by name so the list is stable for the client.
func ConsolidateIngredients(lines []ScaledIngredients) []recipe.Ingredient {
	type key struct {
		name string
		unit string
	}

	merged := make(map[key]*recipe.Ingredient)
	for _, scaled := range lines {
		factor := scaled.Factor
		if factor <= 0 {
			factor = 1
		}
		for _, ing := range scaled.Ingredients {
			name := strings.TrimSpace(ing.Name)
			if name == "" {
				continue
			}
			k := key{name: strings.ToLower(name), unit: ing.Unit}
			if existing, ok := merged[k]; ok {
				existing.Quantity += ing.Quantity * factor
				continue
			}
			merged[k] = &recipe.Ingredient{
				Name:     name,
				Quantity: ing.Quantity * factor,
				Unit:     ing.Unit,
			}
		}
	}

	out := make([]recipe.Ingredient, 0, len(merged))
	for _, ing := range merged {
		out = append(out, *ing)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].Unit < out[j].Unit
		}
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

// ScaledIngredients is one recipe's ingredient list with a serving multiplier.
type ScaledIngredients struct {
	Ingredients []recipe.Ingredient
	Factor      float64
}
