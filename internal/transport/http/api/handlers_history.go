package apihttp

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func (r *Router) handleHistory(c *gin.Context) {
	if r.deps.History == nil {
		unavailable(c, "history")
		return
	}
	list, err := r.deps.History.List(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "history": list})
}

func (r *Router) handleClearHistory(c *gin.Context) {
	if r.deps.History == nil {
		unavailable(c, "history")
		return
	}
	if err := r.deps.History.Clear(c.Request.Context()); err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (r *Router) handleLastCheck(c *gin.Context) {
	if r.deps.History == nil {
		unavailable(c, "history")
		return
	}
	res, ok, err := r.deps.History.LastCheck(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	if !ok {
		c.JSON(http.StatusOK, gin.H{"success": true, "found": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "found": true, "ai_percent": res.AIPercent, "message": res.Message})
}

func (r *Router) handleNotification(c *gin.Context) {
	if r.deps.Notifications == nil {
		unavailable(c, "notifications")
		return
	}
	n, ok := r.deps.Notifications.Latest()
	if !ok {
		c.JSON(http.StatusOK, gin.H{"success": true, "found": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "found": true, "notification": n})
}

func (r *Router) handleCalls(c *gin.Context) {
	if r.deps.Calls == nil {
		unavailable(c, "call log")
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 {
		limit = 50
	}
	recs, err := r.deps.Calls.Recent(c.Request.Context(), limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "calls": recs})
}
