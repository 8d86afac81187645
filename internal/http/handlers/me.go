package handlers

import (
	"net/http"
	"time"

	"trail_miniapp/internal/engine"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Me(c *gin.Context) {
	accountID, ok := getAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	ctx := c.Request.Context()
	acc, err := h.Accounts.GetByID(ctx, accountID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		return
	}

	now := time.Now()
	c.JSON(http.StatusOK, gin.H{
		"id":           acc.ID,
		"tg_id":        acc.TgID,
		"username":     acc.Username,
		"first_name":   acc.FirstName,
		"last_name":    acc.LastName,
		"photo_url":    acc.PhotoURL,
		"balance":      acc.Balance,
		"mining_level": acc.MiningLevel,
		"status":       acc.Status,
		"last_claimed": acc.LastClaimed,
		"created_at":   acc.CreatedAt,
		"claimable":    engine.IsClaimable(acc.LastClaimed, now),
		"claimable_in": int64(engine.ClaimableIn(acc.LastClaimed, now).Seconds()),
		"claim_reward": engine.ClaimReward(acc.MiningLevel),
		"upgrade_cost": engine.UpgradeCost(acc.MiningLevel),
	})
}
