package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"

	"github.com/worklinkgh/tasker-onboarding/adapters/backend"
	"github.com/worklinkgh/tasker-onboarding/adapters/event"
	httpAdapter "github.com/worklinkgh/tasker-onboarding/adapters/http"
	"github.com/worklinkgh/tasker-onboarding/adapters/media_storage"
	"github.com/worklinkgh/tasker-onboarding/adapters/persistence"
	"github.com/worklinkgh/tasker-onboarding/internal/application/service"
	onboardingUC "github.com/worklinkgh/tasker-onboarding/internal/application/usecase/onboarding"
	"github.com/worklinkgh/tasker-onboarding/internal/config"
	"github.com/worklinkgh/tasker-onboarding/internal/domain/onboarding"
	"github.com/worklinkgh/tasker-onboarding/pkg/auth"
	"github.com/worklinkgh/tasker-onboarding/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: cannot load config: %v", err)
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	defer appLogger.Sync()

	redisClient, err := persistence.NewRedisClient(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("cannot connect Redis", err)
	}
	defer redisClient.Close()

	// Draft store backend is a deployment choice; redis is the default.
	var draftStore onboarding.DraftStore
	switch cfg.Draft.Backend {
	case "postgres":
		dbPool, err := persistence.NewPostgresPool(cfg, appLogger)
		if err != nil {
			appLogger.Fatal("cannot connect Postgres", err)
		}
		defer dbPool.Close()
		draftStore = persistence.NewPostgresDraftStore(dbPool)
	case "memory":
		draftStore = persistence.NewInmemDraftStore()
	default:
		draftStore = persistence.NewRedisDraftStore(redisClient, cfg.Draft.TTL)
	}

	kafkaClient, err := event.NewKafkaProducerClient(cfg)
	if err != nil {
		appLogger.Fatal("cannot init Kafka", err)
	}
	defer kafkaClient.Close()

	apiClient, err := backend.NewClient(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("cannot init marketplace API client", err)
	}

	var uploader service.Uploader
	if cfg.Media.Provider == "cloudinary" {
		uploader, err = media_storage.NewCloudinaryUploader(cfg, afero.NewOsFs(), appLogger)
		if err != nil {
			appLogger.Fatal("cannot init Cloudinary uploader", err)
		}
	} else {
		uploader = media_storage.NewPresignedUploader(apiClient, afero.NewOsFs(), nil, appLogger)
	}

	profileCache := persistence.NewRedisProfileCache(redisClient)
	manager := onboarding.NewManager(draftStore, appLogger)

	// Use Cases
	resumeUseCase := onboardingUC.NewResumeUseCase(manager)
	stepsUseCase := onboardingUC.NewStepsUseCase(manager)
	submitUseCase := onboardingUC.NewSubmitUseCase(manager, uploader, apiClient, profileCache, kafkaClient, appLogger)

	// HTTP
	jwtSvc := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenLifespan)
	onboardingHandler := httpAdapter.NewOnboardingHandler(resumeUseCase, stepsUseCase, submitUseCase, appLogger)
	authMiddleware := httpAdapter.AuthMiddleware(jwtSvc)
	errorMiddleware := httpAdapter.ErrorMiddleware(appLogger)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), errorMiddleware)

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "UP"}) })

		flow := api.Group("/taskers/onboarding")
		flow.Use(authMiddleware)
		{
			flow.GET("", onboardingHandler.GetDraft)
			flow.PUT("/basic-info", onboardingHandler.UpdateBasicInfo)
			flow.PUT("/location", onboardingHandler.UpdateLocation)
			flow.PUT("/skills", onboardingHandler.UpdateSkills)
			flow.PUT("/profile-image", onboardingHandler.UpdateProfileImage)
			flow.PUT("/id-card", onboardingHandler.UpdateIDCard)
			flow.POST("/next", onboardingHandler.NextStep)
			flow.POST("/previous", onboardingHandler.PreviousStep)
			flow.POST("/step", onboardingHandler.GoToStep)
			flow.POST("/validate", onboardingHandler.Validate)
			flow.POST("/submit", onboardingHandler.Submit)
			flow.DELETE("", onboardingHandler.Abandon)
		}
	}

	appLogger.Info("Onboarding service running on port " + cfg.App.Port)
	if err := router.Run(":" + cfg.App.Port); err != nil {
		appLogger.Fatal("cannot run server", err)
	}
}
