package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/bizdesk/internal/domain/models"
	"github.com/mamadbah2/bizdesk/internal/server/handlers"
	"github.com/mamadbah2/bizdesk/internal/server/middleware"
	"github.com/mamadbah2/bizdesk/internal/service/auth"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth    *handlers.AuthHandler
	Logs    *handlers.LogHandler
	Payees  *handlers.PayeeHandler
	Cheques *handlers.ChequeHandler
	Bills   *handlers.BillHandler
	Users   *handlers.UserHandler
	Reports *handlers.ReportHandler
}

// Options tunes the engine.
type Options struct {
	AllowedOrigins []string
	Development    bool
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, authSvc auth.AuthService, opts Options, logger *zap.Logger) *gin.Engine {
	if opts.Development {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	_ = r.SetTrustedProxies(nil)
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(zapLoggerMiddleware(logger))
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     opts.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	r.Use(middleware.Errors(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	elevated := middleware.RequireAccess(models.AccessManager, models.AccessAdmin)
	adminOnly := middleware.RequireAccess(models.AccessAdmin)

	api := r.Group("/api/v1")
	api.POST("/auth/login", h.Auth.Login)

	secured := api.Group("")
	secured.Use(middleware.RequireAuth(authSvc))
	secured.POST("/auth/logout", h.Auth.Logout)

	logs := secured.Group("/logs")
	logs.GET("", h.Logs.List)
	logs.GET("/export", h.Logs.Export)
	logs.GET("/:logID", h.Logs.Get)
	logs.POST("", elevated, h.Logs.Create)
	logs.PATCH("/:logID", elevated, h.Logs.Update)
	logs.DELETE("/:logID", elevated, h.Logs.Delete)

	payees := secured.Group("/payees", elevated)
	payees.GET("", h.Payees.List)
	payees.GET("/:payeeID", h.Payees.Get)
	payees.POST("", h.Payees.Create)
	payees.PATCH("/:payeeID", h.Payees.Update)
	payees.DELETE("/:payeeID", h.Payees.Delete)

	cheques := secured.Group("/cheques", elevated)
	cheques.GET("", h.Cheques.List)
	cheques.GET("/:chequeID", h.Cheques.Get)
	cheques.POST("", h.Cheques.Create)
	cheques.PATCH("/:chequeID", h.Cheques.Update)
	cheques.DELETE("/:chequeID", h.Cheques.Delete)

	bills := secured.Group("/bills", elevated)
	bills.GET("", h.Bills.List)
	bills.GET("/:billID", h.Bills.Get)
	bills.POST("", h.Bills.Create)
	bills.PATCH("/:billID", h.Bills.Update)
	bills.DELETE("/:billID", h.Bills.Delete)

	secured.PATCH("/users/me/password", h.Users.ChangeOwnPassword)
	users := secured.Group("/users", elevated)
	users.GET("", h.Users.List)
	users.GET("/check-username", h.Users.CheckUsername)
	users.GET("/:userID", h.Users.Get)
	users.POST("", h.Users.Register)
	users.PATCH("/:userID", h.Users.UpdateProfile)
	users.DELETE("/:userID", h.Users.Delete)
	users.PATCH("/:userID/password", h.Users.ResetPassword)
	users.PATCH("/:userID/access-level", adminOnly, h.Users.SetAccessLevel)
	users.PATCH("/:userID/active", h.Users.SetActive)

	reports := secured.Group("/reports", elevated)
	reports.GET("/weekly", h.Reports.WeeklyDigest)
	reports.POST("/weekly/send", adminOnly, h.Reports.SendWeeklyDigest)
	if h.Reports.MessagingEnabled() {
		secured.POST("/notifications/whatsapp", adminOnly, h.Reports.SendMessage)
	}

	logger.Info("router initialized")

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("request_id", c.GetString(middleware.CtxRequestIDKey)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
