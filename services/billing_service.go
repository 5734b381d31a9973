package services

import (
	"context"
	"fmt"
	"log"

	"cookNestAPI/internal/types/billing"

	"github.com/jackc/pgx/v5/pgxpool"
)

// tierCatalog is static; plans are sold through Stripe and the webhook keeps
// the users table in sync.
var tierCatalog = []billing.Tier{
	{
		Name:              billing.PlanFree,
		MonthlyPriceGBP:   0,
		MaxRecipes:        10,
		CanJoinChallenges: false,
		MealPlanning:      false,
		Description:       "Browse the community, save favourites and keep up to 10 recipes.",
	},
	{
		Name:              billing.PlanHomeCook,
		MonthlyPriceGBP:   3.99,
		MaxRecipes:        100,
		CanJoinChallenges: true,
		MealPlanning:      true,
		Description:       "Meal planning, shopping lists and community challenges.",
	},
	{
		Name:              billing.PlanHeadChef,
		MonthlyPriceGBP:   7.99,
		MaxRecipes:        -1,
		CanJoinChallenges: true,
		MealPlanning:      true,
		Description:       "Everything unlimited, for serious home chefs.",
	},
}

func tierByName(name string) (billing.Tier, bool) {
	for _, t := range tierCatalog {
		if t.Name == name {
			return t, true
		}
	}
	return billing.Tier{}, false
}

// CanJoinChallenges gates challenge participation by plan. Unknown plans are
// treated as free.
func CanJoinChallenges(plan string) bool {
	t, ok := tierByName(plan)
	if !ok {
		return false
	}
	return t.CanJoinChallenges
}

// MaxRecipesForPlan returns the recipe cap for a plan, -1 for unlimited.
func MaxRecipesForPlan(plan string) int {
	t, ok := tierByName(plan)
	if !ok {
		return tierCatalog[0].MaxRecipes
	}
	return t.MaxRecipes
}

// HasMealPlanning gates the meal planner and shopping lists.
func HasMealPlanning(plan string) bool {
	t, ok := tierByName(plan)
	if !ok {
		return false
	}
	return t.MealPlanning
}

type BillingService struct {
	db *pgxpool.Pool
}

func NewBillingService(db *pgxpool.Pool) *BillingService {
	return &BillingService{db: db}
}

func (s *BillingService) ListTiers() []billing.Tier {
	return tierCatalog
}

func (s *BillingService) GetSubscriptionState(ctx context.Context, clerkID string) (*billing.SubscriptionState, error) {
	state := &billing.SubscriptionState{}

	err := s.db.QueryRow(ctx, `
		SELECT current_plan, COALESCE(subscription_status, 'inactive'), COALESCE(stripe_customer_id, '')
		FROM users WHERE clerk_id = $1
	`, clerkID).Scan(&state.Plan, &state.SubscriptionStatus, &state.StripeCustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription state: %w", err)
	}

	return state, nil
}

// SyncSubscription applies a Stripe subscription event to the matching user.
// Customers are matched on stripe_customer_id, set at checkout time.
func (s *BillingService) SyncSubscription(ctx context.Context, stripeCustomerID string, status string, plan string) error {
	if _, ok := tierByName(plan); !ok {
		log.Printf("BillingService: unknown plan %q from Stripe, keeping current plan", plan)
		plan = ""
	}

	query := `
	UPDATE users
	SET
		subscription_status = $2,
		current_plan = CASE
			WHEN $2 IN ('active', 'trialing') AND $3 != '' THEN $3
			WHEN $2 IN ('canceled', 'unpaid', 'incomplete_expired') THEN 'Free'
			ELSE current_plan
		END,
		updated_at = NOW()
	WHERE stripe_customer_id = $1
	`

	result, err := s.db.Exec(ctx, query, stripeCustomerID, status, plan)
	if err != nil {
		return fmt.Errorf("failed to sync subscription: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("no user with stripe customer id %s", stripeCustomerID)
	}

	log.Printf("BillingService: customer %s -> status=%s plan=%s", stripeCustomerID, status, plan)
	return nil
}

// AttachStripeCustomer links a Stripe customer to a user after checkout.
func (s *BillingService) AttachStripeCustomer(ctx context.Context, clerkID string, stripeCustomerID string) error {
	result, err := s.db.Exec(ctx, `
		UPDATE users SET stripe_customer_id = $2, updated_at = NOW() WHERE clerk_id = $1
	`, clerkID, stripeCustomerID)
	if err != nil {
		return fmt.Errorf("failed to attach stripe customer: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user not found")
	}
	return nil
}
