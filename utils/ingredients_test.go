package utils

import (
	"testing"

	"cookNestAPI/internal/types/recipe"
)

func TestConsolidateIngredientsMergesByNameAndUnit(t *testing.T) {
	lines := []ScaledIngredients{
		{
			Ingredients: []recipe.Ingredient{
				{Name: "Onion", Quantity: 2, Unit: ""},
				{Name: "Olive Oil", Quantity: 30, Unit: "ml"},
			},
			Factor: 1,
		},
		{
			Ingredients: []recipe.Ingredient{
				{Name: "onion", Quantity: 1, Unit: ""},
				{Name: "Olive Oil", Quantity: 15, Unit: "ml"},
			},
			Factor: 1,
		},
	}

	out := ConsolidateIngredients(lines)
	if len(out) != 2 {
		t.Fatalf("got %d items, want 2: %+v", len(out), out)
	}

	// Sorted by name: Olive Oil then Onion.
	if out[0].Name != "Olive Oil" || out[0].Quantity != 45 {
		t.Errorf("olive oil = %+v, want 45 ml", out[0])
	}
	if out[1].Quantity != 3 {
		t.Errorf("onion quantity = %v, want 3", out[1].Quantity)
	}
}

func TestConsolidateIngredientsKeepsDifferentUnitsApart(t *testing.T) {
	lines := []ScaledIngredients{
		{Ingredients: []recipe.Ingredient{{Name: "Flour", Quantity: 500, Unit: "g"}}},
		{Ingredients: []recipe.Ingredient{{Name: "Flour", Quantity: 2, Unit: "cups"}}},
	}

	out := ConsolidateIngredients(lines)
	if len(out) != 2 {
		t.Fatalf("got %d items, want 2 (g and cups must not merge): %+v", len(out), out)
	}
}

func TestConsolidateIngredientsScalesByFactor(t *testing.T) {
	lines := []ScaledIngredients{
		{
			Ingredients: []recipe.Ingredient{{Name: "Rice", Quantity: 100, Unit: "g"}},
			Factor:      2.5,
		},
	}

	out := ConsolidateIngredients(lines)
	if len(out) != 1 || out[0].Quantity != 250 {
		t.Fatalf("got %+v, want 250 g of rice", out)
	}
}

func TestConsolidateIngredientsSkipsBlankNames(t *testing.T) {
	lines := []ScaledIngredients{
		{Ingredients: []recipe.Ingredient{{Name: "  ", Quantity: 1}, {Name: "Salt", Quantity: 1, Unit: "tsp"}}},
	}

	out := ConsolidateIngredients(lines)
	if len(out) != 1 || out[0].Name != "Salt" {
		t.Fatalf("got %+v, want only Salt", out)
	}
}
