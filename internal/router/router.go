package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/examdesk/examdesk-backend/internal/config"
	"github.com/examdesk/examdesk-backend/internal/handler"
	"github.com/examdesk/examdesk-backend/internal/middleware"
	"github.com/examdesk/examdesk-backend/internal/response"
	"github.com/examdesk/examdesk-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth     *handler.AuthHandler
	Exam     *handler.ExamHandler
	Account  *handler.AccountHandler
	Question *handler.QuestionHandler
	Report   *handler.ReportHandler
	Monitor  *handler.MonitorHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/login", handlers.Auth.Login)

		// Authenticated profile routes
		auth.POST("/logout", middleware.RequireJWT(authService), handlers.Auth.Logout)
		auth.GET("/me", middleware.RequireJWT(authService), handlers.Auth.GetProfile)
	}

	// ─── 2. Exam Group (Examinee JWT + Single Device) ──────────────────
	examAPI := router.Group("/api/v1/exam")
	examAPI.Use(
		middleware.RequireExamineeJWT(authService),
		middleware.CheckAccountSession(authService),
	)
	{
		examAPI.POST("/attempts", handlers.Exam.StartAttempt)
		examAPI.GET("/attempts", handlers.Exam.ListAttempts)
		examAPI.GET("/attempts/:attempt_id", handlers.Exam.GetAttempt)
		examAPI.POST("/attempts/:attempt_id/submit", handlers.Exam.SubmitAttempt)
		examAPI.GET("/attempts/:attempt_id/result", handlers.Exam.GetAttemptResult)
		examAPI.GET("/attempts/:attempt_id/wrong-answers.csv", handlers.Exam.ExportWrongAnswers)
	}

	// ─── 3. WebSocket Group (Admin WS Auth) ────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireAdminWSAuth(authService))
	{
		ws.GET("/admin/monitor", handlers.Monitor.MonitorSubmissions)
	}

	// ─── 4. Admin Group (JWT + Role) ───────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(
		middleware.RequireAdminJWT(authService),
		middleware.CheckAccountSession(authService),
	)
	{
		// Account management
		adminAPI.GET("/accounts", handlers.Account.ListAccounts)
		adminAPI.POST("/accounts", handlers.Account.CreateAccount)
		adminAPI.PUT("/accounts/:id", handlers.Account.UpdateAccount)
		adminAPI.DELETE("/accounts/:id", handlers.Account.DeleteAccount)
		adminAPI.POST("/accounts/:id/reset-session", handlers.Account.ResetSession)
		adminAPI.GET("/accounts/:id/wrong-answers.csv", handlers.Report.ExportAccountWrongAnswers)

		// Question bank management
		adminAPI.GET("/questions", handlers.Question.ListQuestions)
		adminAPI.POST("/questions", handlers.Question.CreateQuestion)
		adminAPI.GET("/questions/:id", handlers.Question.GetQuestion)
		adminAPI.PUT("/questions/:id", handlers.Question.UpdateQuestion)
		adminAPI.DELETE("/questions/:id", handlers.Question.DeleteQuestion)
		adminAPI.DELETE("/questions", handlers.Question.ClearQuestions)

		// Results and analytics
		adminAPI.GET("/attempts", handlers.Report.ListAttempts)
		adminAPI.GET("/attempts/:id/result", handlers.Report.GetAttemptResult)
		adminAPI.GET("/attempts/:id/wrong-answers.csv", handlers.Report.ExportAttemptWrongAnswers)
		adminAPI.GET("/reports/most-missed", handlers.Report.GetMostMissed)
		adminAPI.GET("/reports/most-missed.csv", handlers.Report.ExportMostMissed)
	}

	return router
}
