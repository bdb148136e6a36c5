package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/somang-edu/eduportal-backend/internal/config"
	"github.com/somang-edu/eduportal-backend/internal/handler"
	"github.com/somang-edu/eduportal-backend/internal/middleware"
	"github.com/somang-edu/eduportal-backend/internal/response"
	"github.com/somang-edu/eduportal-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth     *handler.AuthHandler
	User     *handler.UserHandler
	Exam     *handler.ExamHandler
	Attempt  *handler.AttemptHandler
	Notice   *handler.NoticeHandler
	Course   *handler.CourseHandler
	Resource *handler.ResourceHandler
	Video    *handler.VideoHandler
	Qna      *handler.QnaHandler
	Media    *handler.MediaHandler
	WS       *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// If AllowedOrigins is set, restrict to that list; otherwise allow all
	// so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
		corsConfig.AllowCredentials = true
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.Brotli())

	// Serve uploaded files statically with aggressive caching (1 year);
	// filenames are UUIDs, so stale content is impossible.
	uploadsGroup := router.Group("/uploads")
	uploadsGroup.Use(middleware.CacheControl(31536000))
	{
		uploadsGroup.Static("/", cfg.UploadDir)
	}

	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Public portal pages: notices and curriculum need no account.
	publicAPI := router.Group("/api/v1")
	{
		publicAPI.GET("/notices", handlers.Notice.List)
		publicAPI.GET("/notices/:id", handlers.Notice.Get)
		publicAPI.GET("/courses", handlers.Course.List)
		publicAPI.GET("/courses/:id", handlers.Course.Get)
	}

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/login", handlers.Auth.Login)

		auth.POST("/logout", middleware.RequireAnyJWT(authService, cfg), handlers.Auth.Logout)
		auth.GET("/me", middleware.RequireAnyJWT(authService, cfg), handlers.Auth.Me)
	}

	// Student group: JWT plus the Redis session check, so approval
	// revocation and newer logins cut access immediately.
	studentAPI := router.Group("/api/v1/student")
	studentAPI.Use(
		middleware.RequireStudentJWT(authService, cfg),
		middleware.CheckSession(authService),
	)
	{
		studentAPI.GET("/exams", handlers.Attempt.List)
		studentAPI.GET("/exams/:exam_id/paper", handlers.Attempt.Paper)
		studentAPI.GET("/exams/:exam_id/status", handlers.Attempt.Status)
		studentAPI.POST("/exams/:exam_id/enter", handlers.Attempt.Enter)
		studentAPI.GET("/exams/:exam_id/state", handlers.Attempt.State)
		studentAPI.POST("/exams/:exam_id/submit", handlers.Attempt.Submit)

		studentAPI.GET("/resources", handlers.Resource.List)
		studentAPI.GET("/videos", handlers.Video.List)

		studentAPI.GET("/qna", handlers.Qna.List)
		studentAPI.GET("/qna/:id", handlers.Qna.Get)
		studentAPI.POST("/qna", handlers.Qna.Create)
		studentAPI.DELETE("/qna/:id", handlers.Qna.DeleteOwn)
	}

	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireStudentWSAuth(authService, cfg))
	{
		ws.GET("/student/exams/:exam_id/attempt", handlers.WS.AttemptStream)
	}

	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminJWT(authService, cfg))
	{
		adminAPI.GET("/users", handlers.User.List)
		adminAPI.PATCH("/users/:id/approval", handlers.User.Approve)
		adminAPI.DELETE("/users/:id", handlers.User.Delete)

		adminAPI.GET("/exams", handlers.Exam.List)
		adminAPI.POST("/exams", handlers.Exam.Create)
		adminAPI.GET("/exams/:exam_id", handlers.Exam.Get)
		adminAPI.PUT("/exams/:exam_id", handlers.Exam.Update)
		adminAPI.DELETE("/exams/:exam_id", handlers.Exam.Delete)
		adminAPI.GET("/exams/:exam_id/report", handlers.Exam.Report)
		adminAPI.DELETE("/exams/:exam_id/results/:result_id", handlers.Exam.DeleteResult)

		adminAPI.POST("/notices", handlers.Notice.Create)
		adminAPI.PUT("/notices/:id", handlers.Notice.Update)
		adminAPI.DELETE("/notices/:id", handlers.Notice.Delete)

		adminAPI.POST("/courses", handlers.Course.Create)
		adminAPI.PUT("/courses/:id", handlers.Course.Update)
		adminAPI.DELETE("/courses/:id", handlers.Course.Delete)

		adminAPI.GET("/resources", handlers.Resource.List)
		adminAPI.POST("/resources", handlers.Resource.Create)
		adminAPI.PUT("/resources/:id", handlers.Resource.Update)
		adminAPI.DELETE("/resources/:id", handlers.Resource.Delete)

		adminAPI.GET("/videos", handlers.Video.List)
		adminAPI.POST("/videos", handlers.Video.Create)
		adminAPI.PUT("/videos/:id", handlers.Video.Update)
		adminAPI.DELETE("/videos/:id", handlers.Video.Delete)

		adminAPI.GET("/qna", handlers.Qna.List)
		adminAPI.PATCH("/qna/:id/answer", handlers.Qna.Answer)
		adminAPI.DELETE("/qna/:id", handlers.Qna.Delete)

		adminAPI.POST("/media/images", handlers.Media.UploadImage)
		adminAPI.POST("/media/documents", handlers.Media.UploadDocument)
	}

	return router
}
