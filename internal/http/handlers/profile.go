package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Profile returns the public part of an account.
func (h *Handler) Profile(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	acc, err := h.Accounts.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":           acc.ID,
		"username":     acc.Username,
		"first_name":   acc.FirstName,
		"balance":      acc.Balance,
		"mining_level": acc.MiningLevel,
		"status":       acc.Status,
		"created_at":   acc.CreatedAt,
	})
}

// MyAchievements returns the authenticated account's milestone records.
func (h *Handler) MyAchievements(c *gin.Context) {
	accountID, ok := getAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	achievements, err := h.Achievements.ListByAccount(c.Request.Context(), accountID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list achievements"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"achievements": achievements})
}
