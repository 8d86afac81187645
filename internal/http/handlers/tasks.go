package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"trail_miniapp/internal/engine"
	"trail_miniapp/internal/service"

	"github.com/gin-gonic/gin"
)

// ListTasks returns the public task catalog.
func (h *Handler) ListTasks(c *gin.Context) {
	tasks, err := h.Tasks.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list tasks"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

// MyTasks returns the catalog annotated with the account's completions.
func (h *Handler) MyTasks(c *gin.Context) {
	accountID, ok := getAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	ctx := c.Request.Context()
	tasks, err := h.Tasks.List(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list tasks"})
		return
	}

	completedIDs, err := h.Tasks.CompletedTaskIDs(ctx, accountID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list completed tasks"})
		return
	}
	completed := make(map[int64]bool, len(completedIDs))
	for _, id := range completedIDs {
		completed[id] = true
	}

	type taskView struct {
		ID          int64  `json:"id"`
		Description string `json:"description"`
		Details     string `json:"details,omitempty"`
		Link        string `json:"link"`
		Points      int64  `json:"points"`
		Completed   bool   `json:"completed"`
	}

	res := make([]taskView, 0, len(tasks))
	for _, t := range tasks {
		res = append(res, taskView{
			ID:          t.ID,
			Description: t.Description,
			Details:     t.Details,
			Link:        t.Link,
			Points:      t.Points,
			Completed:   completed[t.ID],
		})
	}
	c.JSON(http.StatusOK, gin.H{"tasks": res})
}

// CompleteTask credits the task's points, once per account and task.
func (h *Handler) CompleteTask(c *gin.Context) {
	accountID, ok := getAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	taskID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	res, err := h.Tasks.Complete(c.Request.Context(), accountID, taskID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTaskNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		case errors.Is(err, service.ErrTaskAlreadyCompleted):
			c.JSON(http.StatusConflict, gin.H{"error": "task already completed"})
		case errors.Is(err, service.ErrAccountNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to complete task"})
		}
		return
	}

	h.publishAccountUpdate(accountID, res.NewBalance, res.NewStatus)

	c.JSON(http.StatusOK, gin.H{
		"balance": res.NewBalance,
		"status":  res.NewStatus,
	})
}

// DeclineTask deducts the task's points without recording a completion.
func (h *Handler) DeclineTask(c *gin.Context) {
	accountID, ok := getAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	taskID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	res, err := h.Tasks.Decline(c.Request.Context(), accountID, taskID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTaskNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		case errors.Is(err, engine.ErrInsufficientBalance):
			c.JSON(http.StatusBadRequest, gin.H{"error": "insufficient balance"})
		case errors.Is(err, service.ErrAccountNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to decline task"})
		}
		return
	}

	h.publishAccountUpdate(accountID, res.NewBalance, res.NewStatus)

	c.JSON(http.StatusOK, gin.H{
		"balance": res.NewBalance,
		"status":  res.NewStatus,
	})
}
