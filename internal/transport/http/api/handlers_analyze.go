package apihttp

import (
	"net/http"
	"strings"

	"vectora/internal/analysis"
	"vectora/internal/gateway/capture"

	"github.com/gin-gonic/gin"
)

func (r *Router) handleAnalyzeText(c *gin.Context) {
	var req analysis.TextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	res, err := r.deps.Analyzer.AnalyzeText(c.Request.Context(), req)
	respondAnalysis(c, res, err)
}

func (r *Router) handleAnalyzeImage(c *gin.Context) {
	var req analysis.ImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	res, err := r.deps.Analyzer.AnalyzeImage(c.Request.Context(), req)
	respondAnalysis(c, res, err)
}

// captureRequest 支持两种形态：扩展已截好的图（image 为 data URI），
// 或者只给出 url + crop，由服务端用无头浏览器截图。
type captureRequest struct {
	URL   string        `json:"url"`
	Crop  *capture.Crop `json:"crop"`
	Image string        `json:"image"`
}

func (r *Router) handleCapture(c *gin.Context) {
	var req captureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	screen := analysis.ScreenRequest{PageURL: req.URL, Image: strings.TrimSpace(req.Image)}
	switch {
	case screen.Image != "":
	case req.Crop != nil:
		screen.Crop = *req.Crop
	default:
		fail(c, http.StatusBadRequest, "crop or image is required")
		return
	}
	res, err := r.deps.Analyzer.AnalyzeScreen(c.Request.Context(), screen)
	respondAnalysis(c, res, err)
}

func (r *Router) handleCapabilities(c *gin.Context) {
	rep, err := r.deps.Analyzer.Capabilities(c.Query("provider"), c.Query("model"))
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"provider":     rep.Provider,
		"model":        rep.Model,
		"capabilities": rep.Capabilities,
	})
}
