package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cookNestAPI/internal/types/mealplan"
	"cookNestAPI/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cookNestAPI/internal/types/recipe"
)

type MealPlanService struct {
	db  *pgxpool.Pool
	now func() time.Time
}

func NewMealPlanService(db *pgxpool.Pool) *MealPlanService {
	return &MealPlanService{db: db, now: time.Now}
}

// WeekStart returns the Monday of the week containing t, at midnight UTC.
// Shares the Monday-anchored week convention used by weekly challenges.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	daysBack := (int(t.Weekday()) + 6) % 7
	monday := t.AddDate(0, 0, -daysBack)
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *MealPlanService) requirePlanAccess(ctx context.Context, clerkID string) (uuid.UUID, error) {
	var userID uuid.UUID
	var plan string
	err := s.db.QueryRow(ctx, `SELECT id, current_plan FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID, &plan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, fmt.Errorf("user not found")
		}
		return uuid.Nil, fmt.Errorf("failed to resolve user: %w", err)
	}
	if !HasMealPlanning(plan) {
		return uuid.Nil, fmt.Errorf("meal planning requires a paid plan")
	}
	return userID, nil
}

// GetOrCreateCurrentPlan returns this week's plan, creating an empty one on
// first access.
func (s *MealPlanService) GetOrCreateCurrentPlan(ctx context.Context, clerkID string) (*mealplan.MealPlan, error) {
	userID, err := s.requirePlanAccess(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	weekStart := WeekStart(s.now())

	plan := &mealplan.MealPlan{}
	err = s.db.QueryRow(ctx, `
		INSERT INTO meal_plans (id, user_id, week_start, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, week_start) DO UPDATE SET week_start = EXCLUDED.week_start
		RETURNING id, user_id, week_start, created_at
	`, uuid.New().String(), userID, weekStart).Scan(&plan.ID, &plan.UserID, &plan.WeekStart, &plan.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create meal plan: %w", err)
	}

	plan.Entries, err = s.listEntries(ctx, plan.ID)
	if err != nil {
		return nil, err
	}

	return plan, nil
}

func (s *MealPlanService) listEntries(ctx context.Context, mealPlanID string) ([]mealplan.Entry, error) {
	rows, err := s.db.Query(ctx, `
		SELECT e.id, e.meal_plan_id, e.recipe_id, r.title, e.entry_date, e.slot, e.servings, e.created_at
		FROM meal_plan_entries e
		JOIN recipes r ON r.id = e.recipe_id
		WHERE e.meal_plan_id = $1
		ORDER BY e.entry_date, e.slot
	`, mealPlanID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	entries := []mealplan.Entry{}
	for rows.Next() {
		var e mealplan.Entry
		if err := rows.Scan(&e.ID, &e.MealPlanID, &e.RecipeID, &e.RecipeTitle, &e.Date, &e.Slot, &e.Servings, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func (s *MealPlanService) AddEntry(ctx context.Context, clerkID string, req *mealplan.AddEntryRequest) (*mealplan.Entry, error) {
	userID, err := s.requirePlanAccess(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	date, err := time.ParseInLocation("2006-01-02", req.Date, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("invalid date, expected YYYY-MM-DD")
	}

	servings := req.Servings
	if servings <= 0 {
		servings = 1
	}

	// The entry lands in the plan for whatever week its date falls in.
	weekStart := WeekStart(date)

	var planID string
	err = s.db.QueryRow(ctx, `
		INSERT INTO meal_plans (id, user_id, week_start, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, week_start) DO UPDATE SET week_start = EXCLUDED.week_start
		RETURNING id
	`, uuid.New().String(), userID, weekStart).Scan(&planID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve meal plan: %w", err)
	}

	e := &mealplan.Entry{
		ID:         uuid.New().String(),
		MealPlanID: planID,
		RecipeID:   req.RecipeID,
		Date:       date,
		Slot:       req.Slot,
		Servings:   servings,
	}

	err = s.db.QueryRow(ctx, `
		INSERT INTO meal_plan_entries (id, meal_plan_id, recipe_id, entry_date, slot, servings, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING created_at
	`, e.ID, e.MealPlanID, e.RecipeID, e.Date, e.Slot, e.Servings).Scan(&e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to add entry: %w", err)
	}

	return e, nil
}

// MoveEntry handles the planner's drag-and-drop: same entry, new day or slot.
func (s *MealPlanService) MoveEntry(ctx context.Context, clerkID string, req *mealplan.MoveEntryRequest) error {
	userID, err := s.requirePlanAccess(ctx, clerkID)
	if err != nil {
		return err
	}

	date, err := time.ParseInLocation("2006-01-02", req.Date, time.UTC)
	if err != nil {
		return fmt.Errorf("invalid date, expected YYYY-MM-DD")
	}

	result, err := s.db.Exec(ctx, `
		UPDATE meal_plan_entries e
		SET entry_date = $3, slot = $4
		FROM meal_plans p
		WHERE e.id = $1 AND e.meal_plan_id = p.id AND p.user_id = $2
	`, req.EntryID, userID, date, req.Slot)
	if err != nil {
		return fmt.Errorf("failed to move entry: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("entry not found")
	}
	return nil
}

func (s *MealPlanService) RemoveEntry(ctx context.Context, clerkID string, entryID string) error {
	userID, err := s.requirePlanAccess(ctx, clerkID)
	if err != nil {
		return err
	}

	result, err := s.db.Exec(ctx, `
		DELETE FROM meal_plan_entries e
		USING meal_plans p
		WHERE e.id = $1 AND e.meal_plan_id = p.id AND p.user_id = $2
	`, entryID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove entry: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("entry not found")
	}
	return nil
}

// DuplicatePlan copies a plan's entries into the week starting targetWeek,
// keeping each entry's weekday and slot.
func (s *MealPlanService) DuplicatePlan(ctx context.Context, clerkID string, mealPlanID string, targetWeek string) (*mealplan.MealPlan, error) {
	userID, err := s.requirePlanAccess(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	target, err := time.ParseInLocation("2006-01-02", targetWeek, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("invalid target week, expected YYYY-MM-DD")
	}
	targetStart := WeekStart(target)

	var sourceStart time.Time
	err = s.db.QueryRow(ctx, `
		SELECT week_start FROM meal_plans WHERE id = $1 AND user_id = $2
	`, mealPlanID, userID).Scan(&sourceStart)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("meal plan not found")
		}
		return nil, fmt.Errorf("failed to get meal plan: %w", err)
	}

	var newPlanID string
	err = s.db.QueryRow(ctx, `
		INSERT INTO meal_plans (id, user_id, week_start, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, week_start) DO UPDATE SET week_start = EXCLUDED.week_start
		RETURNING id
	`, uuid.New().String(), userID, targetStart).Scan(&newPlanID)
	if err != nil {
		return nil, fmt.Errorf("failed to create target plan: %w", err)
	}

	shiftDays := int(targetStart.Sub(sourceStart).Hours() / 24)
	_, err = s.db.Exec(ctx, `
		INSERT INTO meal_plan_entries (id, meal_plan_id, recipe_id, entry_date, slot, servings, created_at)
		SELECT gen_random_uuid(), $2, recipe_id, entry_date + $3 * INTERVAL '1 day', slot, servings, NOW()
		FROM meal_plan_entries
		WHERE meal_plan_id = $1
	`, mealPlanID, newPlanID, shiftDays)
	if err != nil {
		return nil, fmt.Errorf("failed to copy entries: %w", err)
	}

	plan := &mealplan.MealPlan{ID: newPlanID, UserID: userID.String(), WeekStart: targetStart}
	plan.Entries, err = s.listEntries(ctx, newPlanID)
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// GenerateShoppingList builds (or rebuilds) the consolidated shopping list
// for a plan from its entries' recipe ingredients. Regenerating replaces
// unchecked state: the list reflects the plan as it stands now.
func (s *MealPlanService) GenerateShoppingList(ctx context.Context, clerkID string, mealPlanID string) (*mealplan.ShoppingList, error) {
	userID, err := s.requirePlanAccess(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, `
		SELECT r.ingredients, r.servings, e.servings
		FROM meal_plan_entries e
		JOIN recipes r ON r.id = e.recipe_id
		JOIN meal_plans p ON p.id = e.meal_plan_id
		WHERE e.meal_plan_id = $1 AND p.user_id = $2
	`, mealPlanID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan entries: %w", err)
	}
	defer rows.Close()

	lines := []utils.ScaledIngredients{}
	for rows.Next() {
		var ingredientsJSON []byte
		var recipeServings, entryServings int
		if err := rows.Scan(&ingredientsJSON, &recipeServings, &entryServings); err != nil {
			return nil, fmt.Errorf("failed to scan entry ingredients: %w", err)
		}

		var ingredients []recipe.Ingredient
		if len(ingredientsJSON) > 0 {
			if err := json.Unmarshal(ingredientsJSON, &ingredients); err != nil {
				return nil, fmt.Errorf("failed to decode ingredients: %w", err)
			}
		}

		factor := 1.0
		if recipeServings > 0 && entryServings > 0 {
			factor = float64(entryServings) / float64(recipeServings)
		}
		lines = append(lines, utils.ScaledIngredients{Ingredients: ingredients, Factor: factor})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	consolidated := utils.ConsolidateIngredients(lines)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	list := &mealplan.ShoppingList{MealPlanID: mealPlanID}
	err = tx.QueryRow(ctx, `
		INSERT INTO shopping_lists (id, meal_plan_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (meal_plan_id) DO UPDATE SET created_at = NOW()
		RETURNING id, created_at
	`, uuid.New().String(), mealPlanID).Scan(&list.ID, &list.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create shopping list: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM shopping_list_items WHERE shopping_list_id = $1`, list.ID); err != nil {
		return nil, fmt.Errorf("failed to clear shopping list: %w", err)
	}

	for _, ing := range consolidated {
		item := mealplan.ShoppingListItem{
			ID:       uuid.New().String(),
			Name:     ing.Name,
			Quantity: ing.Quantity,
			Unit:     ing.Unit,
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO shopping_list_items (id, shopping_list_id, name, quantity, unit, checked)
			VALUES ($1, $2, $3, $4, $5, FALSE)
		`, item.ID, list.ID, item.Name, item.Quantity, item.Unit)
		if err != nil {
			return nil, fmt.Errorf("failed to insert shopping list item: %w", err)
		}
		list.Items = append(list.Items, item)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit shopping list: %w", err)
	}

	return list, nil
}

func (s *MealPlanService) ToggleShoppingListItem(ctx context.Context, clerkID string, itemID string) (bool, error) {
	userID, err := s.requirePlanAccess(ctx, clerkID)
	if err != nil {
		return false, err
	}

	var checked bool
	err = s.db.QueryRow(ctx, `
		UPDATE shopping_list_items i
		SET checked = NOT i.checked
		FROM shopping_lists l, meal_plans p
		WHERE i.id = $1
		  AND i.shopping_list_id = l.id
		  AND l.meal_plan_id = p.id
		  AND p.user_id = $2
		RETURNING i.checked
	`, itemID, userID).Scan(&checked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, fmt.Errorf("item not found")
		}
		return false, fmt.Errorf("failed to toggle item: %w", err)
	}

	return checked, nil
}
