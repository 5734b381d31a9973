package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	clerk "github.com/clerk/clerk-sdk-go/v2"
	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cookNestAPI/handlers"
	"cookNestAPI/internal/notification"
	"cookNestAPI/middleware"
	"cookNestAPI/services"

	_ "net/http/pprof"
)

var (
	dbPool              *pgxpool.Pool
	notificationService *services.NotificationService
	userService         *services.UserService
	recipeService       *services.RecipeService
	challengeService    *services.ChallengeService
	challengeReminder   *services.ChallengeReminder
	billingService      *services.BillingService
	mealPlanService     *services.MealPlanService
	communityService    *services.CommunityService
	fcmService          *notification.FCMService
	cookAlongManager    *services.CookAlongManager
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	clerkSecretKey := os.Getenv("CLERK_SECRET_KEY")
	if clerkSecretKey == "" {
		log.Fatal("CLERK_SECRET_KEY environment variable is not set")
	}
	clerk.SetKey(clerkSecretKey)
	log.Println("Clerk initialized successfully")

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		log.Fatal("Failed to parse database URL:", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	dbPool, err = pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Fatal("Failed to create connection pool:", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	log.Println("Successfully connected to Postgres")

	notificationService = services.NewNotificationService(dbPool)
	userService = services.NewUserService(dbPool, notificationService)
	recipeService = services.NewRecipeService(dbPool, notificationService)
	challengeService = services.NewChallengeService(dbPool)
	challengeReminder = services.NewChallengeReminder(challengeService, notificationService)
	billingService = services.NewBillingService(dbPool)
	mealPlanService = services.NewMealPlanService(dbPool)
	communityService = services.NewCommunityService(dbPool)
	cookAlongManager = services.NewCookAlongManager()

	fcmService, err = notification.NewFCMService("./serviceAccountKey.json")
	if err != nil {
		log.Printf("Warning: Could not initialize FCM: %v", err)
	} else {
		notificationService.SetPushProvider(fcmService)
		log.Println("FCM Push Provider initialized successfully")
	}

	middleware.InitPrometheus()
}

func main() {
	defer func() {
		log.Println("Closing database connection pool...")
		dbPool.Close()
	}()

	challengeReminder.Start()

	userHandler := handlers.NewUserHandler(userService)
	recipeHandler := handlers.NewRecipeHandler(recipeService)
	challengeHandler := handlers.NewChallengeHandler(challengeService)
	billingHandler := handlers.NewBillingHandler(billingService)
	mealPlanHandler := handlers.NewMealPlanHandler(mealPlanService)
	communityHandler := handlers.NewCommunityHandler(communityService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	webhookHandler := handlers.NewWebhookHandler(userService, billingService)
	cookAlongHandler := handlers.NewCookAlongHandler(cookAlongManager)

	r := mux.NewRouter()

	// Websocket endpoint skips the rate limiter; long-lived connections do
	// their own keepalive.
	r.HandleFunc("/api/v1/cook-along/ws/{sessionID}", cookAlongHandler.JoinSession)

	standardRouter := r.PathPrefix("/").Subrouter()

	go middleware.CleanupVisitors()

	standardRouter.Use(middleware.RateLimitMiddleware)
	standardRouter.Use(middleware.MonitorMiddleware)

	standardRouter.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))
	standardRouter.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(http.DefaultServeMux))

	standardRouter.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := dbPool.Ping(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "cookNest-api"}`))
	}).Methods("GET")

	standardRouter.HandleFunc("/webhooks/clerk", webhookHandler.HandleClerkWebhook).Methods("POST")
	standardRouter.HandleFunc("/webhooks/stripe", webhookHandler.HandleStripeWebhook).Methods("POST")

	// -------------------------------------------------------------------------
	// API V1 SUBROUTER
	// -------------------------------------------------------------------------
	api := standardRouter.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/challenges", challengeHandler.GetCurrentChallenges).Methods("GET")
	api.HandleFunc("/billing/tiers", billingHandler.GetTiers).Methods("GET")
	api.HandleFunc("/community/top-contributors", communityHandler.GetTopContributors).Methods("GET")
	api.HandleFunc("/community/stats", communityHandler.GetCommunityStats).Methods("GET")
	api.HandleFunc("/recipes/featured", recipeHandler.ListFeaturedRecipes).Methods("GET")
	api.HandleFunc("/cook-along/public", cookAlongHandler.ListSessions).Methods("GET")

	// Public browsing knows who you are when a token is present.
	browse := api.PathPrefix("").Subrouter()
	browse.Use(middleware.OptionalAuthMiddleware)
	browse.HandleFunc("/recipes", recipeHandler.ListPublicRecipes).Methods("GET")
	browse.HandleFunc("/recipes/{recipeID}", recipeHandler.GetRecipe).Methods("GET")
	browse.HandleFunc("/recipes/{recipeID}/votes", recipeHandler.GetVoteSummary).Methods("GET")
	browse.HandleFunc("/recipes/{recipeID}/reviews", recipeHandler.ListReviews).Methods("GET")
	browse.HandleFunc("/user/{userID}/profile", userHandler.GetPublicProfile).Methods("GET")

	// -------------------------------------------------------------------------
	// PROTECTED ROUTES (REQUIRE AUTH HEADER)
	// -------------------------------------------------------------------------
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.ClerkAuthMiddleware)

	protected.HandleFunc("/user", userHandler.GetProfile).Methods("GET")
	protected.HandleFunc("/user/update-profile", userHandler.UpdateProfile).Methods("PUT")
	protected.HandleFunc("/user/delete-account", userHandler.DeleteAccount).Methods("DELETE")
	protected.HandleFunc("/user/search", userHandler.SearchUsers).Methods("GET")
	protected.HandleFunc("/user/follow", userHandler.FollowUser).Methods("POST")
	protected.HandleFunc("/user/follow/{userID}", userHandler.UnfollowUser).Methods("DELETE")
	protected.HandleFunc("/user/followers", userHandler.GetFollowers).Methods("GET")
	protected.HandleFunc("/user/following", userHandler.GetFollowing).Methods("GET")

	protected.HandleFunc("/recipes", recipeHandler.CreateRecipe).Methods("POST")
	protected.HandleFunc("/user/recipes", recipeHandler.ListMyRecipes).Methods("GET")
	protected.HandleFunc("/recipes/{recipeID}", recipeHandler.UpdateRecipe).Methods("PUT")
	protected.HandleFunc("/recipes/{recipeID}", recipeHandler.DeleteRecipe).Methods("DELETE")
	protected.HandleFunc("/recipes/{recipeID}/vote", recipeHandler.VoteRecipe).Methods("POST")
	protected.HandleFunc("/recipes/{recipeID}/vote", recipeHandler.UnvoteRecipe).Methods("DELETE")
	protected.HandleFunc("/recipes/{recipeID}/favourite", recipeHandler.AddFavourite).Methods("POST")
	protected.HandleFunc("/recipes/{recipeID}/favourite", recipeHandler.RemoveFavourite).Methods("DELETE")
	protected.HandleFunc("/user/favourites", recipeHandler.ListFavourites).Methods("GET")
	protected.HandleFunc("/recipes/{recipeID}/reviews", recipeHandler.AddReview).Methods("POST")

	protected.HandleFunc("/challenges/join", challengeHandler.JoinChallenge).Methods("POST")
	protected.HandleFunc("/challenges/{title}/participants", challengeHandler.GetParticipants).Methods("GET")

	protected.HandleFunc("/meal-plan", mealPlanHandler.GetCurrentPlan).Methods("GET")
	protected.HandleFunc("/meal-plan/entries", mealPlanHandler.AddEntry).Methods("POST")
	protected.HandleFunc("/meal-plan/entries/move", mealPlanHandler.MoveEntry).Methods("PUT")
	protected.HandleFunc("/meal-plan/entries/{entryID}", mealPlanHandler.RemoveEntry).Methods("DELETE")
	protected.HandleFunc("/meal-plan/{planID}/duplicate", mealPlanHandler.DuplicatePlan).Methods("POST")
	protected.HandleFunc("/meal-plan/{planID}/shopping-list", mealPlanHandler.GenerateShoppingList).Methods("POST")
	protected.HandleFunc("/shopping-list/items/{itemID}/toggle", mealPlanHandler.ToggleShoppingListItem).Methods("PUT")

	protected.HandleFunc("/billing/subscription", billingHandler.GetSubscription).Methods("GET")

	protected.HandleFunc("/notifications", notificationHandler.GetNotifications).Methods("GET")
	protected.HandleFunc("/notifications/unread-count", notificationHandler.GetUnreadCount).Methods("GET")
	protected.HandleFunc("/notifications/{notificationID}/read", notificationHandler.MarkAsRead).Methods("PUT")
	protected.HandleFunc("/notifications/read-all", notificationHandler.MarkAllAsRead).Methods("PUT")
	protected.HandleFunc("/notifications/{notificationID}", notificationHandler.DeleteNotification).Methods("DELETE")
	protected.HandleFunc("/notifications/preferences", notificationHandler.GetPreferences).Methods("GET")
	protected.HandleFunc("/notifications/preferences", notificationHandler.UpdatePreferences).Methods("PUT")
	protected.HandleFunc("/notifications/register-device", notificationHandler.RegisterDevice).Methods("POST")

	protected.HandleFunc("/cook-along/create", cookAlongHandler.CreateSession).Methods("POST")

	// CORS configuration
	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Pprof-Secret"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorilllaHandlers.AllowCredentials(),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3333"
	}
	port = ":" + port

	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	challengeReminder.Stop()
	notificationService.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}
