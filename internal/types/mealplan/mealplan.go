package mealplan

import "time"

type MealSlot string

const (
	SlotBreakfast MealSlot = "breakfast"
	SlotLunch     MealSlot = "lunch"
	SlotDinner    MealSlot = "dinner"
	SlotSnack     MealSlot = "snack"
)

// MealPlan is one user's plan for a Monday-anchored week.
type MealPlan struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	WeekStart time.Time `json:"weekStart"`
	CreatedAt time.Time `json:"createdAt"`
	Entries   []Entry   `json:"entries,omitempty"`
}

type Entry struct {
	ID          string    `json:"id"`
	MealPlanID  string    `json:"mealPlanId"`
	RecipeID    string    `json:"recipeId"`
	RecipeTitle string    `json:"recipeTitle,omitempty"`
	Date        time.Time `json:"date"`
	Slot        MealSlot  `json:"slot"`
	Servings    int       `json:"servings"`
	CreatedAt   time.Time `json:"createdAt"`
}

type AddEntryRequest struct {
	RecipeID string   `json:"recipeId" validate:"required"`
	Date     string   `json:"date" validate:"required"` // YYYY-MM-DD
	Slot     MealSlot `json:"slot" validate:"required"`
	Servings int      `json:"servings,omitempty"`
}

type MoveEntryRequest struct {
	EntryID string   `json:"entryId" validate:"required"`
	Date    string   `json:"date" validate:"required"` // YYYY-MM-DD
	Slot    MealSlot `json:"slot" validate:"required"`
}

type ShoppingList struct {
	ID         string             `json:"id"`
	MealPlanID string             `json:"mealPlanId"`
	CreatedAt  time.Time          `json:"createdAt"`
	Items      []ShoppingListItem `json:"items"`
}

type ShoppingListItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit,omitempty"`
	Checked  bool    `json:"checked"`
}
