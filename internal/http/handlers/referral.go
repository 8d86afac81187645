package handlers

import (
	"errors"
	"net/http"

	"trail_miniapp/internal/service"

	"github.com/gin-gonic/gin"
)

// GetReferralLink returns the deterministic share link for the account.
func (h *Handler) GetReferralLink(c *gin.Context) {
	accountID, ok := getAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"link": h.Referrals.Link(accountID)})
}

// ListReferrals returns the accounts this account brought in.
func (h *Handler) ListReferrals(c *gin.Context) {
	accountID, ok := getAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	ctx := c.Request.Context()
	referrals, err := h.Referrals.List(ctx, accountID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list referrals"})
		return
	}

	count, err := h.Referrals.Count(ctx, accountID)
	if err != nil {
		count = len(referrals)
	}

	c.JSON(http.StatusOK, gin.H{
		"referrals": referrals,
		"count":     count,
	})
}

type TrackReferralRequest struct {
	ReferrerID int64 `json:"referrer_id" binding:"required"`
}

// TrackReferral applies a referral for the authenticated account and grants
// the referrer reward.
func (h *Handler) TrackReferral(c *gin.Context) {
	accountID, ok := getAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req TrackReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "referrer_id is required"})
		return
	}

	err := h.Referrals.Track(c.Request.Context(), req.ReferrerID, accountID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReferrerNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "referrer not found"})
		case errors.Is(err, service.ErrAlreadyReferred):
			c.JSON(http.StatusConflict, gin.H{"error": "already referred"})
		case errors.Is(err, service.ErrSelfReferral):
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot use your own link"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to track referral"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
