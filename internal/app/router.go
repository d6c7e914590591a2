package app

import (
	"interview_prep_backend/docs"
	"interview_prep_backend/internal/config"
	"interview_prep_backend/internal/middleware"
	"interview_prep_backend/internal/model"
	"interview_prep_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	registerPublicRoutes(router, c)

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		registerLearnerRoutes(authGroup, c)
	}

	adminGroup := router.Group("/api/admin")
	adminGroup.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Admin))
	{
		registerAdminRoutes(adminGroup, c)
	}
}

func registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
		public.GET("/questions", c.question.ListPublic)
		public.GET("/plans", c.plan.ListPublished)
	}
}

func registerLearnerRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/profile", c.auth.Profile)

	g := rg.Group("/guided")
	{
		g.GET("/my-plans", c.guided.MyPlans)
		g.GET("/plans/:id", c.guided.GetPlan)
		g.POST("/plans/:id/start", c.guided.StartPlan)
		g.POST("/plans/:id/answers", c.guided.SubmitAnswer)
		g.POST("/plans/:id/reset", c.guided.ResetPlan)
	}
}

func registerAdminRoutes(rg *gin.RouterGroup, c *controllers) {
	plans := rg.Group("/plans")
	{
		plans.GET("", c.plan.List)
		plans.POST("", c.plan.Create)
		plans.GET("/:id", c.plan.Get)
		plans.GET("/:id/preview", c.plan.Preview)
		plans.PUT("/:id", c.plan.Update)
		plans.PUT("/:id/structure", c.plan.ReplaceStructure)
		plans.PUT("/:id/publish", c.plan.Publish)
		plans.DELETE("/:id", c.plan.Delete)
	}

	questions := rg.Group("/questions")
	{
		questions.GET("", c.question.List)
		questions.POST("", c.question.Create)
		questions.POST("/import", c.question.Import)
		questions.GET("/import/template", c.question.ImportTemplate)
		questions.GET("/:id", c.question.Get)
		questions.PUT("/:id", c.question.Update)
		questions.DELETE("/:id", c.question.Delete)
	}
}
