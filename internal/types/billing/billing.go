package billing

// Tier names mirror the plans sold on the marketing site. Keep the strings
// stable: they are stored on the users row and compared in feature gates.
const (
	PlanFree     = "Free"
	PlanHomeCook = "Home Cook"
	PlanHeadChef = "Head Chef"
)

type Tier struct {
	Name              string  `json:"name"`
	MonthlyPriceGBP   float64 `json:"monthlyPriceGbp"`
	MaxRecipes        int     `json:"maxRecipes"` // -1 = unlimited
	CanJoinChallenges bool    `json:"canJoinChallenges"`
	MealPlanning      bool    `json:"mealPlanning"`
	Description       string  `json:"description"`
}

type SubscriptionState struct {
	Plan               string `json:"plan"`
	SubscriptionStatus string `json:"subscriptionStatus"`
	StripeCustomerID   string `json:"stripeCustomerId,omitempty"`
}
