package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"alcyxob/planforge/internal/api"
	"alcyxob/planforge/internal/config"
	"alcyxob/planforge/internal/repository/mongo"
	"alcyxob/planforge/internal/schedule"
	"alcyxob/planforge/internal/service"
	"alcyxob/planforge/internal/storage"

	"github.com/gin-gonic/gin"
)

// @title PlanForge API
// @version 1.0
// @description API for building, activating, and maintaining periodized training plans.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	log.Println("Starting PlanForge server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to MongoDB: %v", err)
	}
	defer func() {
		log.Println("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Println("Database connection established.")

	// --- Ensure Indexes ---
	log.Println("Ensuring database indexes...")
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		mongo.EnsurePlanIndexes(ctx, appDB.Collection("plans"))
		mongo.EnsureProgramIndexes(ctx, appDB.Collection("programs"))
		mongo.EnsureWorkoutIndexes(ctx, appDB.Collection("workouts"))
		mongo.EnsureInstanceIndexes(ctx, appDB.Collection("exercise_instances"))
		mongo.EnsureSetIndexes(ctx, appDB.Collection("exercise_sets"))
		log.Println("Index creation process completed.")
	}()

	// --- Initialize Storage ---
	log.Println("Initializing snapshot storage...")
	archive, err := storage.NewS3Storage(cfg.S3)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize S3 storage: %v", err)
	}

	// --- Initialize Repositories ---
	log.Println("Initializing repositories...")
	userRepo := mongo.NewMongoUserRepository(appDB)
	planRepo := mongo.NewMongoPlanRepository(appDB)
	programRepo := mongo.NewMongoProgramRepository(appDB)
	workoutRepo := mongo.NewMongoWorkoutRepository(appDB)
	instanceRepo := mongo.NewMongoInstanceRepository(appDB)
	setRepo := mongo.NewMongoSetRepository(appDB)

	// --- Initialize Services ---
	log.Println("Initializing services...")
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)

	mirror := service.NewSnapshotMirror(archive, planRepo, programRepo, workoutRepo, instanceRepo, setRepo)
	locks := service.NewOwnerLocks()
	generator := schedule.NewWeekdayGenerator()
	populator := schedule.NewLibraryPopulator(userRepo)
	protocols := schedule.NewLibraryProtocolAssigner(userRepo)

	cascadeService := service.NewCascadeService(
		planRepo, programRepo, workoutRepo, instanceRepo, setRepo,
		generator, populator, protocols, locks, mirror,
	)
	lifecycleService := service.NewLifecycleService(
		planRepo, programRepo, workoutRepo, instanceRepo, userRepo,
		cascadeService, locks, mirror,
	)
	planService := service.NewPlanService(
		planRepo, programRepo, workoutRepo, userRepo,
		generator, populator, protocols, cascadeService, mirror,
	)
	analyzer := service.NewScheduleAnalyzer(workoutRepo)

	// --- Initialize Gin Engine ---
	router := gin.Default()

	// --- Setup Routes ---
	log.Println("Setting up API routes...")
	planHandler := api.NewPlanHandler(planService, lifecycleService, cascadeService, analyzer, mirror)
	api.SetupRoutes(router, cfg.JWT.Secret, authService, planHandler)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
