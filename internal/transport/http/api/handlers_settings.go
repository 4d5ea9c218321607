package apihttp

import (
	"net/http"
	"strconv"
	"strings"

	"vectora/internal/logger"
	"vectora/internal/types"

	"github.com/gin-gonic/gin"
)

const apiKeyHeader = "X-Api-Key"

func (r *Router) handleGetSettings(c *gin.Context) {
	if r.deps.Settings == nil {
		unavailable(c, "settings store")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "settings": r.deps.Settings.Snapshot().Masked()})
}

// handlePutSettings 保存设置。客户端回传的掩码 key（GET 时拿到的 ****abcd）视为未修改。
func (r *Router) handlePutSettings(c *gin.Context) {
	if r.deps.Settings == nil {
		unavailable(c, "settings store")
		return
	}
	var next types.Settings
	if err := c.ShouldBindJSON(&next); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	cur := r.deps.Settings.Snapshot()
	next.CerebrasAPIKey = keepIfMasked(next.CerebrasAPIKey, cur.CerebrasAPIKey)
	next.GeminiAPIKey = keepIfMasked(next.GeminiAPIKey, cur.GeminiAPIKey)
	next.GroqAPIKey = keepIfMasked(next.GroqAPIKey, cur.GroqAPIKey)
	if err := r.deps.Settings.Save(next); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	logger.Infof("settings saved (provider=%s)", next.Provider)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Settings saved"})
}

func keepIfMasked(incoming, current string) string {
	incoming = strings.TrimSpace(incoming)
	if strings.HasPrefix(incoming, "****") && incoming == types.MaskSecret(current) {
		return current
	}
	return incoming
}

// handleSettingsUpdated 对应 settingsUpdated 消息：强制从磁盘重新读取。
func (r *Router) handleSettingsUpdated(c *gin.Context) {
	if r.deps.Settings == nil {
		unavailable(c, "settings store")
		return
	}
	if err := r.deps.Settings.Reload(); err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// handleModels 列出可用模型。带 provider 时只查该 provider，
// key 优先取 X-Api-Key（选项页的“测试连接”），否则用已保存的 key。
func (r *Router) handleModels(c *gin.Context) {
	if r.deps.Models == nil || r.deps.Settings == nil {
		unavailable(c, "model listing")
		return
	}
	settings := r.deps.Settings.Snapshot()
	raw := strings.TrimSpace(c.Query("provider"))
	if raw == "" {
		c.JSON(http.StatusOK, gin.H{"success": true, "models": r.deps.Models.ListAllModels(c.Request.Context(), settings)})
		return
	}
	p, ok := types.ParseProvider(raw)
	if !ok {
		fail(c, http.StatusBadRequest, "unknown provider "+strconv.Quote(raw))
		return
	}
	key := strings.TrimSpace(c.GetHeader(apiKeyHeader))
	if key == "" {
		key, _ = settings.Credentials(p)
	}
	models, err := r.deps.Models.ListModels(c.Request.Context(), p, key)
	if err != nil {
		fail(c, http.StatusBadGateway, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "provider": p, "models": models})
}
