package api

import (
	"net/http"

	"alcyxob/planforge/internal/domain"
	"alcyxob/planforge/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	planHandler *PlanHandler,
) {
	authHandler := NewAuthHandler(authService)
	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userIDStr, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			role, _ := getUserRoleFromContext(c)
			c.JSON(http.StatusOK, gin.H{"userId": userIDStr, "role": role})
		})

		planGroup := protected.Group("/plans")
		{
			planGroup.POST("", planHandler.CreatePlan)
			planGroup.GET("", planHandler.ListPlans)
			planGroup.POST("/preview", planHandler.PreviewPhases)

			planGroup.GET("/:planId", planHandler.GetPlan)
			planGroup.DELETE("/:planId", planHandler.Delete)
			planGroup.GET("/:planId/delete-preview", planHandler.DeletePreview)

			// Lifecycle transitions. Activation accepts ?autoDeactivate=true
			// to abandon an overlapping active plan instead of failing.
			planGroup.POST("/:planId/activate", planHandler.Activate)
			planGroup.POST("/:planId/complete", planHandler.Complete)
			planGroup.POST("/:planId/abandon", planHandler.Abandon)
			planGroup.POST("/:planId/reschedule", planHandler.Reschedule)

			planGroup.GET("/:planId/schedule-status", planHandler.ScheduleStatus)
			planGroup.GET("/:planId/snapshot-url", planHandler.SnapshotURL)
		}

		// Trainer co-owner surface.
		coachedGroup := protected.Group("/coached-plans")
		coachedGroup.Use(RoleMiddleware(domain.RoleTrainer))
		{
			coachedGroup.GET("", planHandler.ListCoachedPlans)
		}
	}
}
