package handlers

import (
	"trail_miniapp/internal/repository"
	"trail_miniapp/internal/service"
	"trail_miniapp/internal/ws"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Handler struct {
	DB       *pgxpool.Pool
	BotToken string

	Accounts     *repository.AccountRepository
	Achievements *repository.AchievementRepository
	Progression  *service.ProgressionService
	Tasks        *service.TaskService
	Referrals    *service.ReferralService

	Hub *ws.Hub
}

func NewHandler(db *pgxpool.Pool, botToken string, referrals *service.ReferralService, hub *ws.Hub) *Handler {
	return &Handler{
		DB:           db,
		BotToken:     botToken,
		Accounts:     repository.NewAccountRepository(db),
		Achievements: repository.NewAchievementRepository(db),
		Progression:  service.NewProgressionService(db),
		Tasks:        service.NewTaskService(db),
		Referrals:    referrals,
		Hub:          hub,
	}
}

// getAccountID reads the authenticated account id set by the JWT middleware.
func getAccountID(c interface{ Get(string) (any, bool) }) (int64, bool) {
	val, ok := c.Get("account_id")
	if !ok {
		return 0, false
	}
	switch v := val.(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}
