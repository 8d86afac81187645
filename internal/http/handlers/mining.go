package handlers

import (
	"errors"
	"net/http"
	"time"

	"trail_miniapp/internal/engine"
	"trail_miniapp/internal/service"
	"trail_miniapp/internal/ws"

	"github.com/gin-gonic/gin"
)

// Claim settles a mining claim for the authenticated account.
func (h *Handler) Claim(c *gin.Context) {
	accountID, ok := getAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	now := time.Now()
	res, err := h.Progression.Claim(c.Request.Context(), accountID, now)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrClaimTooEarly):
			acc, accErr := h.Accounts.GetByID(c.Request.Context(), accountID)
			resp := gin.H{"error": "claim too early"}
			if accErr == nil {
				resp["claimable_in"] = int64(engine.ClaimableIn(acc.LastClaimed, now).Seconds())
			}
			c.JSON(http.StatusBadRequest, resp)
		case errors.Is(err, service.ErrAccountNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to claim"})
		}
		return
	}

	h.publishAccountUpdate(accountID, res.NewBalance, res.NewStatus)

	c.JSON(http.StatusOK, gin.H{
		"reward":          res.Reward,
		"balance":         res.NewBalance,
		"status":          res.NewStatus,
		"next_claim_time": res.NextClaimTime,
		"claimable_in":    int64(engine.ClaimCooldown.Seconds()),
	})
}

// Upgrade settles a mining level upgrade for the authenticated account.
func (h *Handler) Upgrade(c *gin.Context) {
	accountID, ok := getAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	res, err := h.Progression.Upgrade(c.Request.Context(), accountID)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrInsufficientBalance):
			c.JSON(http.StatusBadRequest, gin.H{"error": "insufficient balance"})
		case errors.Is(err, service.ErrAccountNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to upgrade"})
		}
		return
	}

	h.publishAccountUpdate(accountID, res.NewBalance, res.NewStatus)

	resp := gin.H{
		"cost":              res.Cost,
		"balance":           res.NewBalance,
		"mining_level":      res.NewMiningLevel,
		"status":            res.NewStatus,
		"next_upgrade_cost": engine.UpgradeCost(res.NewMiningLevel),
	}
	if res.Milestone != "" {
		resp["milestone"] = res.Milestone
	}
	c.JSON(http.StatusOK, resp)
}

// MiningStatus reports claim eligibility and costs without mutating anything.
func (h *Handler) MiningStatus(c *gin.Context) {
	accountID, ok := getAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	acc, err := h.Accounts.GetByID(c.Request.Context(), accountID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		return
	}

	now := time.Now()
	c.JSON(http.StatusOK, gin.H{
		"claimable":    engine.IsClaimable(acc.LastClaimed, now),
		"claimable_in": int64(engine.ClaimableIn(acc.LastClaimed, now).Seconds()),
		"claim_reward": engine.ClaimReward(acc.MiningLevel),
		"upgrade_cost": engine.UpgradeCost(acc.MiningLevel),
		"mining_level": acc.MiningLevel,
		"balance":      acc.Balance,
		"status":       acc.Status,
	})
}

// LoginBonus settles the daily login bonus for the authenticated account.
func (h *Handler) LoginBonus(c *gin.Context) {
	accountID, ok := getAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	res, err := h.Progression.DailyLogin(c.Request.Context(), accountID, time.Now())
	if err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to settle login"})
		return
	}

	if res.IsNewDay {
		h.publishAccountUpdate(accountID, res.NewBalance, res.NewStatus)
	}

	c.JSON(http.StatusOK, gin.H{
		"balance":    res.NewBalance,
		"status":     res.NewStatus,
		"is_new_day": res.IsNewDay,
	})
}

// publishAccountUpdate pushes the fresh snapshot to the account's websocket
// connections and pokes leaderboard watchers.
func (h *Handler) publishAccountUpdate(accountID, balance int64, status string) {
	if h.Hub == nil {
		return
	}
	h.Hub.Notify(accountID, ws.Event{
		Type: ws.EventAccountUpdate,
		Data: gin.H{"balance": balance, "status": status},
	})
	h.Hub.Broadcast(ws.Event{Type: ws.EventLeaderboard})
}
