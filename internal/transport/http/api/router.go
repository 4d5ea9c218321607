package apihttp

import (
	"context"
	"net/http"

	"vectora/internal/analysis"
	"vectora/internal/gateway/notifier"
	"vectora/internal/gateway/provider"
	"vectora/internal/store"
	"vectora/internal/store/calllog"
	"vectora/internal/types"

	"github.com/gin-gonic/gin"
)

// Analyzer 由 analysis.Service 实现。
type Analyzer interface {
	AnalyzeText(ctx context.Context, req analysis.TextRequest) (types.AnalysisResult, error)
	AnalyzeImage(ctx context.Context, req analysis.ImageRequest) (types.AnalysisResult, error)
	AnalyzeScreen(ctx context.Context, req analysis.ScreenRequest) (types.AnalysisResult, error)
	Capabilities(provider, model string) (analysis.CapabilityReport, error)
}

type SettingsStore interface {
	Snapshot() types.Settings
	Reload() error
	Save(s types.Settings) error
}

type ModelLister interface {
	ListModels(ctx context.Context, p types.Provider, apiKey string) ([]provider.ModelInfo, error)
	ListAllModels(ctx context.Context, s types.Settings) map[types.Provider][]provider.ModelInfo
}

type CallLog interface {
	Recent(ctx context.Context, limit int) ([]calllog.Record, error)
}

type NotificationSource interface {
	Latest() (notifier.Notification, bool)
}

// Deps 汇总 Router 的依赖；除 Analyzer 外均可为空，对应接口返回 503。
type Deps struct {
	Analyzer      Analyzer
	Settings      SettingsStore
	Models        ModelLister
	History       store.HistoryStore
	Calls         CallLog
	Notifications NotificationSource
}

// Router 把扩展的 message action 映射为 REST 接口。
type Router struct {
	deps Deps
}

func NewRouter(deps Deps) *Router {
	return &Router{deps: deps}
}

// Register 将 /api 路由挂载到给定分组下。
func (r *Router) Register(group *gin.RouterGroup) {
	if group == nil {
		return
	}
	group.POST("/analyze/text", r.handleAnalyzeText)
	group.POST("/analyze/image", r.handleAnalyzeImage)
	group.POST("/capture", r.handleCapture)
	group.GET("/capabilities", r.handleCapabilities)

	group.GET("/settings", r.handleGetSettings)
	group.PUT("/settings", r.handlePutSettings)
	group.POST("/settings/updated", r.handleSettingsUpdated)
	group.GET("/models", r.handleModels)

	group.GET("/history", r.handleHistory)
	group.DELETE("/history", r.handleClearHistory)
	group.GET("/last-check", r.handleLastCheck)
	group.GET("/notification", r.handleNotification)
	group.GET("/calls", r.handleCalls)
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"success": false, "message": msg})
}

func unavailable(c *gin.Context, what string) {
	fail(c, http.StatusServiceUnavailable, what+" is not enabled")
}

// respondAnalysis 对应扩展的回复约定：分析失败也返回 200，success=false。
func respondAnalysis(c *gin.Context, res types.AnalysisResult, err error) {
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "ai_percent": res.AIPercent, "message": res.Message})
}
