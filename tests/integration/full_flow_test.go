package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cookNestAPI/handlers"
	"cookNestAPI/internal/types/recipe"
	modelUser "cookNestAPI/internal/types/user"
	"cookNestAPI/middleware"
	"cookNestAPI/services"
	"cookNestAPI/tests/helpers"
)

// TestFullSignUpAndPublishFlow simulates the complete flow: Clerk webhook
// creates the account, the user fetches their profile and publishes a recipe.
func TestFullSignUpAndPublishFlow(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	notificationService := services.NewNotificationService(pool)
	defer notificationService.Stop()
	userService := services.NewUserService(pool, notificationService)
	recipeService := services.NewRecipeService(pool, notificationService)
	billingService := services.NewBillingService(pool)

	userHandler := handlers.NewUserHandler(userService)
	recipeHandler := handlers.NewRecipeHandler(recipeService)
	webhookHandler := handlers.NewWebhookHandler(userService, billingService)

	os.Setenv("CLERK_WEBHOOK_SECRET", "")
	defer os.Unsetenv("CLERK_WEBHOOK_SECRET")

	clerkID := "user_test_" + time.Now().Format("20060102150405")

	// Step 1: Simulate user signing up via Clerk
	t.Log("Step 1: User signs up")

	createPayload := helpers.MockClerkWebhookPayload("user.created", clerkID)
	req1 := httptest.NewRequest(http.MethodPost, "/webhooks/clerk", bytes.NewReader(createPayload))
	rr1 := httptest.NewRecorder()

	webhookHandler.HandleClerkWebhook(rr1, req1)
	assert.Equal(t, http.StatusOK, rr1.Code, "Webhook should succeed")

	// Step 2: Verify user exists in database
	t.Log("Step 2: Verify user in database")

	ctx := context.Background()
	created, err := userService.GetUserByClerkID(ctx, clerkID)
	require.NoError(t, err)
	assert.Equal(t, "test.user@example.com", created.Email)
	assert.True(t, created.EmailVerified)
	assert.Equal(t, "Free", created.CurrentPlan)

	// Step 3: User fetches profile
	t.Log("Step 3: User gets profile")

	req2 := httptest.NewRequest(http.MethodGet, "/api/v1/user", nil)
	ctx2 := context.WithValue(req2.Context(), middleware.ClerkIDKey, clerkID)
	req2 = req2.WithContext(ctx2)
	rr2 := httptest.NewRecorder()

	userHandler.GetProfile(rr2, req2)
	assert.Equal(t, http.StatusOK, rr2.Code)

	var profile modelUser.User
	err = json.Unmarshal(rr2.Body.Bytes(), &profile)
	require.NoError(t, err)
	assert.Equal(t, created.Email, profile.Email)

	// Step 4: User publishes a recipe
	t.Log("Step 4: User publishes a recipe")

	recipeData := `{
		"title": "Midnight Shakshuka",
		"description": "Eggs poached in spiced tomato sauce",
		"ingredients": [{"name": "eggs", "quantity": 4, "unit": "pcs"}],
		"method": "Simmer the sauce, crack in the eggs, cover.",
		"servings": 2,
		"isPublic": true
	}`
	req3 := httptest.NewRequest(http.MethodPost, "/api/v1/recipes", strings.NewReader(recipeData))
	req3.Header.Set("Content-Type", "application/json")
	ctx3 := context.WithValue(req3.Context(), middleware.ClerkIDKey, clerkID)
	req3 = req3.WithContext(ctx3)
	rr3 := httptest.NewRecorder()

	recipeHandler.CreateRecipe(rr3, req3)
	assert.Equal(t, http.StatusCreated, rr3.Code)

	var published recipe.Recipe
	err = json.Unmarshal(rr3.Body.Bytes(), &published)
	require.NoError(t, err)
	assert.Equal(t, "Midnight Shakshuka", published.Title)
	assert.True(t, published.IsPublic)

	// Step 5: Recipe shows up in their list
	t.Log("Step 5: Recipe appears in the user's list")

	mine, err := recipeService.ListUserRecipes(ctx, clerkID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, published.ID, mine[0].ID)
}

// TestChallengeJoinGating verifies that free members are rejected and paid
// members get a participation row for the current cycle.
func TestChallengeJoinGating(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	notificationService := services.NewNotificationService(pool)
	defer notificationService.Stop()
	userService := services.NewUserService(pool, notificationService)
	challengeService := services.NewChallengeService(pool)
	challengeHandler := handlers.NewChallengeHandler(challengeService)

	clerkID := "user_test_" + time.Now().Format("20060102150405")
	ctx := context.Background()

	created, err := userService.CreateUser(ctx, &modelUser.CreateUserRequest{
		ClerkID:   clerkID,
		Email:     "testchallenge@example.com",
		Username:  "testchallenge",
		FirstName: "Test",
		LastName:  "Challenge",
	})
	require.NoError(t, err)

	joinBody := `{"title": "Global Cuisine - Weekly"}`

	// Free plan: rejected
	req1 := httptest.NewRequest(http.MethodPost, "/api/v1/challenges/join", strings.NewReader(joinBody))
	ctx1 := context.WithValue(req1.Context(), middleware.ClerkIDKey, clerkID)
	req1 = req1.WithContext(ctx1)
	rr1 := httptest.NewRecorder()

	challengeHandler.JoinChallenge(rr1, req1)
	assert.Equal(t, http.StatusForbidden, rr1.Code)

	// Upgrade to Home Cook and try again
	_, err = pool.Exec(ctx, `UPDATE users SET current_plan = 'Home Cook' WHERE id = $1`, created.ID)
	require.NoError(t, err)

	req2 := httptest.NewRequest(http.MethodPost, "/api/v1/challenges/join", strings.NewReader(joinBody))
	ctx2 := context.WithValue(req2.Context(), middleware.ClerkIDKey, clerkID)
	req2 = req2.WithContext(ctx2)
	rr2 := httptest.NewRecorder()

	challengeHandler.JoinChallenge(rr2, req2)
	assert.Equal(t, http.StatusCreated, rr2.Code)

	participants, err := challengeService.GetParticipants(ctx, "Global Cuisine - Weekly")
	require.NoError(t, err)

	found := false
	for _, p := range participants {
		if p.UserID == created.ID {
			found = true
		}
	}
	assert.True(t, found, "user should be in the current cycle's participant list")
}
