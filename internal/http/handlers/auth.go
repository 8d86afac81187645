package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"os"
	"time"

	"trail_miniapp/internal/domain"
	"trail_miniapp/internal/engine"
	"trail_miniapp/internal/logger"
	"trail_miniapp/internal/service"
	"trail_miniapp/internal/telegram"

	"github.com/gin-gonic/gin"
)

type AuthRequest struct {
	InitData string `json:"init_data"`
}

// Auth validates the Telegram launch payload, upserts the account, settles
// the daily login bonus, applies a pending referral from start_param and
// returns a session token.
func (h *Handler) Auth(c *gin.Context) {
	var req AuthRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	if len(req.InitData) > 4096 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "init_data too long"})
		return
	}

	var values url.Values
	if os.Getenv("DEV_MODE") == "true" {
		// validation skipped for local development
		var err error
		values, err = url.ParseQuery(req.InitData)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid init_data"})
			return
		}
	} else {
		var ok bool
		values, ok = service.ValidateTelegramInitData(req.InitData, h.BotToken)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or stale telegram data"})
			return
		}
	}

	tgUser, err := telegram.UserFromValues(values)
	if err != nil || tgUser.ID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user json"})
		return
	}

	ctx := c.Request.Context()

	acc := &domain.Account{
		TgID:      tgUser.ID,
		Username:  tgUser.Username,
		FirstName: tgUser.FirstName,
		LastName:  tgUser.LastName,
		PhotoURL:  tgUser.PhotoURL,
		Status:    engine.DefaultTier,
	}
	if err := h.Accounts.Upsert(ctx, acc); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create account"})
		return
	}

	login, err := h.Progression.DailyLogin(ctx, acc.ID, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to settle login"})
		return
	}
	acc.Balance = login.NewBalance
	acc.Status = login.NewStatus

	if referrerID := telegram.ReferrerFromStartParam(values); referrerID != 0 {
		if err := h.Referrals.Track(ctx, referrerID, acc.ID); err != nil {
			switch {
			case errors.Is(err, service.ErrAlreadyReferred), errors.Is(err, service.ErrSelfReferral):
				// repeat launch through the same link, nothing to do
			case errors.Is(err, service.ErrReferrerNotFound):
				logger.Warn("referral start_param points to unknown account",
					"referrer_id", referrerID, "account_id", acc.ID)
			default:
				logger.Error("referral tracking failed",
					"referrer_id", referrerID, "account_id", acc.ID, "error", err)
			}
		}
	}

	token, err := service.GenerateJWT(acc.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":       token,
		"daily_bonus": login.IsNewDay,
		"account": gin.H{
			"id":           acc.ID,
			"tg_id":        acc.TgID,
			"username":     acc.Username,
			"first_name":   acc.FirstName,
			"last_name":    acc.LastName,
			"balance":      acc.Balance,
			"mining_level": acc.MiningLevel,
			"status":       acc.Status,
		},
	})
}
