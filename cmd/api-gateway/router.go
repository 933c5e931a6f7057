package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/OnlyAmFo/LMSWithAIFinal/internal/handler"
	"github.com/OnlyAmFo/LMSWithAIFinal/internal/middleware"
	"github.com/OnlyAmFo/LMSWithAIFinal/internal/models"
	"github.com/OnlyAmFo/LMSWithAIFinal/internal/service"
	"github.com/OnlyAmFo/LMSWithAIFinal/pkg/config"
	"github.com/OnlyAmFo/LMSWithAIFinal/pkg/logger"
	corsmiddleware "github.com/OnlyAmFo/LMSWithAIFinal/pkg/middleware/cors"
	reqidmiddleware "github.com/OnlyAmFo/LMSWithAIFinal/pkg/middleware/requestid"
)

type routerDeps struct {
	cfg      *config.Config
	logger   *zap.Logger
	metrics  *service.MetricsService
	students *handler.InsightsHandler
	classes  *handler.ClassHandler
	ops      *handler.MetricsHandler
	// auth is nil when AUTH_ENABLED is off.
	auth middleware.TokenValidator
}

var (
	staffRoles   = []string{string(models.RoleSuperAdmin), string(models.RoleAdmin), string(models.RoleTeacher)}
	studentRoles = append(append([]string{}, staffRoles...), middleware.SelfParam)
)

func newRouter(d routerDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(d.cfg.Tracing.ServiceName))
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(d.logger))
	r.Use(corsmiddleware.New(d.cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(d.metrics))
	r.Use(middleware.NewRateLimiter(d.cfg.RateLimit.RPS, d.cfg.RateLimit.Burst).Middleware())
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", d.ops.Health)
	r.GET("/ready", d.ops.Ready)
	r.GET("/metrics", d.ops.Prometheus)
	if d.cfg.Env != config.EnvProduction {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(d.cfg.APIPrefix)
	api.GET("/insights/health", d.ops.ScoringHealth)
	// The signed token is the credential for downloads.
	api.GET("/insights/exports/download", d.classes.Download)

	secured := api.Group("")
	if d.auth != nil {
		secured.Use(middleware.JWT(d.auth))
	}
	guard := func(roles ...string) gin.HandlerFunc {
		if d.auth == nil {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RBAC(roles...)
	}

	secured.GET("/metrics/summary", guard(staffRoles...), d.ops.Summary)

	students := secured.Group("/insights/students/:studentId", guard(studentRoles...))
	students.GET("/performance", d.students.Performance)
	students.GET("/trends", d.students.Trends)
	students.GET("/content-recommendations", d.students.ContentRecommendations)
	students.GET("/learning-path", d.students.LearningPath)
	students.GET("/behavior", d.students.Behavior)
	students.GET("/predictions", d.students.Predictions)
	students.GET("/study-plan", d.students.StudyPlan)
	students.GET("/tutoring", d.students.Tutoring)
	students.GET("/adaptive-learning", d.students.Adaptive)
	students.GET("/comprehensive", d.students.Comprehensive)

	classes := secured.Group("/insights/classes/:classId", guard(staffRoles...))
	classes.GET("/performance", d.classes.Performance)
	classes.GET("/at-risk", d.classes.AtRisk)
	classes.POST("/at-risk/export", d.classes.ExportAtRisk)

	return r
}
