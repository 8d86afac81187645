package http

import (
	"time"

	"trail_miniapp/internal/config"
	"trail_miniapp/internal/http/handlers"
	"trail_miniapp/internal/http/middleware"
	"trail_miniapp/internal/service"
	"trail_miniapp/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

func RegisterRoutes(r *gin.Engine, db *pgxpool.Pool, cfg *config.Config, version string) {
	hub := ws.NewHub()
	referrals := service.NewReferralService(db, cfg.BotUsername, cfg.WebAppShortName)
	h := handlers.NewHandler(db, cfg.BotToken, referrals, hub)
	health := handlers.NewHealthHandler(db, version)

	apiWindow := time.Duration(cfg.APIRateWindowSeconds) * time.Second
	authWindow := time.Duration(cfg.AuthRateWindowSeconds) * time.Second

	r.GET("/health", health.Health)
	r.GET("/healthz", health.Liveness)
	r.GET("/readyz", health.Readiness)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RedisRateLimit(cfg.APIRateLimit, apiWindow))
	{
		v1.POST("/auth", middleware.RedisRateLimit(cfg.AuthRateLimit, authWindow), h.Auth)

		v1.GET("/me", middleware.JWT(), h.Me)
		v1.GET("/profile/:id", h.Profile)
		v1.GET("/achievements", middleware.JWT(), h.MyAchievements)

		// Settlement routes get an extra per-account window on top of the IP one.
		settleRL := middleware.AccountRateLimit(cfg.APIRateLimit, apiWindow)

		v1.POST("/mining/claim", middleware.JWT(), settleRL, h.Claim)
		v1.POST("/mining/upgrade", middleware.JWT(), settleRL, h.Upgrade)
		v1.GET("/mining/status", middleware.JWT(), h.MiningStatus)
		v1.POST("/login/bonus", middleware.JWT(), settleRL, h.LoginBonus)

		v1.GET("/tasks", h.ListTasks)
		v1.GET("/me/tasks", middleware.JWT(), h.MyTasks)
		v1.POST("/tasks/:id/complete", middleware.JWT(), settleRL, h.CompleteTask)
		v1.POST("/tasks/:id/decline", middleware.JWT(), settleRL, h.DeclineTask)

		referral := v1.Group("/referral")
		referral.Use(middleware.JWT())
		{
			referral.GET("/link", h.GetReferralLink)
			referral.GET("/list", h.ListReferrals)
			referral.POST("/track", h.TrackReferral)
		}

		v1.GET("/leaderboard", h.GetLeaderboard)
	}

	r.GET("/ws", ws.HandleWS(hub))
}
