package api

import (
	"github.com/gin-gonic/gin"

	"resumeHub/internal/api/middleware"
	"resumeHub/internal/resume"
)

// Dependencies 汇总 API 路由所需的依赖，Scanner 与 Counter 可选。
type Dependencies struct {
	Manager        *resume.Manager
	Analyzer       Analyzer
	Model          string
	Verifier       middleware.RequestVerifier
	Scanner        Scanner
	Counter        RateCounter
	MaxUploadBytes int64
	UploadsPerDay  int
	AnalysesPerDay int
}

// RegisterRoutes 注册全部 /api 路由，统一经过 AuthMiddleware。
func RegisterRoutes(router *gin.Engine, deps Dependencies) {
	userHandler := NewUserHandler(deps.Manager)
	categoryHandler := NewCategoryHandler(deps.Manager)
	resumeHandler := NewResumeHandler(deps.Manager, deps.Scanner, deps.MaxUploadBytes)
	matchHandler := NewMatchHandler(deps.Manager, deps.Analyzer, deps.Model)

	api := router.Group("/api")
	api.Use(middleware.AuthMiddleware(deps.Verifier))
	{
		api.GET("/userId", userHandler.GetUserID)

		api.GET("/user", userHandler.GetUser)
		api.POST("/user", userHandler.CreateUser)
		api.PUT("/user", userHandler.UpdateUser)
		api.DELETE("/user", userHandler.DeleteUser)
		api.POST("/onboarding", userHandler.CompleteOnboarding)

		api.POST("/resume-upload", DailyQuota(deps.Counter, "upload", deps.UploadsPerDay), resumeHandler.UploadResume)

		categoryGroup := api.Group("/categories")
		{
			categoryGroup.GET("", categoryHandler.ListCategories)
			categoryGroup.POST("", categoryHandler.CreateCategory)
			categoryGroup.GET("/:id", categoryHandler.GetCategory)
			categoryGroup.PUT("/:id", categoryHandler.UpdateCategory)
			categoryGroup.DELETE("/:id", categoryHandler.DeleteCategory)
			categoryGroup.GET("/:id/resumes", categoryHandler.ListResumes)
		}

		resumeGroup := api.Group("/resumes")
		{
			resumeGroup.DELETE("/:id", resumeHandler.DeleteResume)
			resumeGroup.PUT("/:id/move", resumeHandler.MoveResume)
		}

		api.POST("/job-description", DailyQuota(deps.Counter, "analysis", deps.AnalysesPerDay), matchHandler.CompareJobDescription)
		api.GET("/analyses", matchHandler.ListAnalyses)
	}
}
