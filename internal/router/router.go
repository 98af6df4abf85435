package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"innoportal/internal/auth"
	"innoportal/internal/config"
	"innoportal/internal/handlers"
	"innoportal/internal/middleware"
	"innoportal/internal/models"
	"innoportal/internal/services"
)

const sessionName = "innoportal_session"

type Options struct {
	Config config.AppConfig
	DB     *gorm.DB
	Log    zerolog.Logger
	// Mailer defaults to the SMTP service built from Config.
	Mailer services.Mailer
}

// New wires services and handlers onto a gin engine.
func New(opts Options) (*gin.Engine, error) {
	cfg, conn, log := opts.Config, opts.DB, opts.Log

	mailer := opts.Mailer
	if mailer == nil {
		mailer = services.NewMailService(cfg, log)
	}
	renderer, err := services.NewRenderer(500, time.Hour)
	if err != nil {
		return nil, err
	}
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, time.Duration(cfg.JWTExpireHours)*time.Hour)

	stats := services.NewStatisticsService(conn, log)
	users := services.NewUserService(conn, stats, cfg.AllowedEmailDomains, log)
	verify := services.NewVerificationService(conn, mailer, cfg.VerifyTokenTTL, cfg.SiteURL, log)
	categories := services.NewCategoryService(conn)
	articles := services.NewArticleService(conn, stats, renderer, log)
	news := services.NewNewsService(conn, stats, renderer, log)
	innovations := services.NewInnovationService(conn, stats, renderer, log)
	discussion := services.NewDiscussionService(conn, log)
	files := services.NewFileService(conn, cfg.UploadDir, cfg.UploadMaxBytes, log)

	authHandler := handlers.NewAuthHandler(users, verify, tokens, log)
	userHandler := handlers.NewUserHandler(users, log)
	categoryHandler := handlers.NewCategoryHandler(categories, log)
	articleHandler := handlers.NewArticleHandler(articles, log)
	newsHandler := handlers.NewContentHandler(news, log)
	innovationHandler := handlers.NewInnovationHandler(innovations, log)
	commentHandler := handlers.NewCommentHandler(discussion, log)
	uploadHandler := handlers.NewUploadHandler(files, log)
	statisticsHandler := handlers.NewStatisticsHandler(stats, conn, log)

	r := gin.New()
	r.Use(gin.Recovery())
	r.MaxMultipartMemory = cfg.UploadMaxBytes

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   cfg.JWTExpireHours * 3600,
		HttpOnly: true,
		Secure:   cfg.Production(),
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))
	r.Use(middleware.LoadUser(users, tokens))
	r.Use(middleware.RequestLogger(log))

	r.Static("/uploads", cfg.UploadDir)
	if cfg.MetricsEnabled {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	authRequired := middleware.AuthRequired()
	api := r.Group("/api")
	{
		api.GET("/health", statisticsHandler.Health)
		api.GET("/statistics", statisticsHandler.Get)

		authGroup := api.Group("/auth")
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/logout", authHandler.Logout)
		authGroup.POST("/verify-email", authHandler.VerifyEmail)
		authGroup.GET("/me", authRequired, authHandler.Me)
		authGroup.POST("/resend-verification", authRequired, authHandler.ResendVerification)

		usersGroup := api.Group("/users", authRequired)
		usersGroup.GET("", middleware.RoleRequired(models.RoleAdmin), userHandler.List)
		usersGroup.GET("/:id", userHandler.Get)
		usersGroup.PATCH("/:id", userHandler.Update)
		usersGroup.DELETE("/:id", userHandler.Delete)

		api.GET("/categories", categoryHandler.List)
		api.GET("/categories/:slug", categoryHandler.GetBySlug)
		api.POST("/categories", authRequired, categoryHandler.Create)
		api.DELETE("/categories/:id", authRequired, categoryHandler.Delete)

		articlesGroup := api.Group("/articles")
		articleHandler.Register(articlesGroup, authRequired)
		articlesGroup.POST("/:id/view", articleHandler.View)

		newsHandler.Register(api.Group("/news"), authRequired)

		innovationsGroup := api.Group("/innovations")
		innovationHandler.Register(innovationsGroup, authRequired)
		innovationsGroup.POST("/:id/like", innovationHandler.Like)

		api.GET("/comments", commentHandler.List)
		api.POST("/comments", authRequired, commentHandler.Create)
		api.PATCH("/comments/:id/approve", authRequired, commentHandler.Approve)
		api.POST("/comments/:id/like", commentHandler.Like)
		api.DELETE("/comments/:id", authRequired, commentHandler.Delete)
		api.GET("/discussions", commentHandler.Discussions)

		api.POST("/upload", authRequired, uploadHandler.Upload)
		api.GET("/files", uploadHandler.List)
		api.DELETE("/files/:id", authRequired, uploadHandler.Delete)
	}

	return r, nil
}
