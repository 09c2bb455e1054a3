package apihttp

import (
	"bytes"
	"net/http"

	"netscope/internal/report"

	"github.com/gin-gonic/gin"
)

const maxTrendWindow = 50

func (r *Router) handleStats(c *gin.Context) {
	if !r.requireHistory(c) {
		return
	}
	entries, err := r.History.List(c.Request.Context(), queryInt(c, "limit", 0, 0))
	if err != nil {
		respondFailure(c, "list statistics", err)
		return
	}
	respondOK(c, entries, "")
}

func (r *Router) handleTrend(c *gin.Context) {
	if !r.requireHistory(c) {
		return
	}
	entries, err := r.History.List(c.Request.Context(), queryInt(c, "limit", 0, 0))
	if err != nil {
		respondFailure(c, "list statistics", err)
		return
	}
	respondOK(c, report.BuildTrend(entries, queryInt(c, "window", r.trendWindow(), maxTrendWindow)), "")
}

// handleChart 返回 go-echarts 渲染的 HTML 页面，而不是 JSON envelope。
func (r *Router) handleChart(c *gin.Context) {
	if !r.requireHistory(c) {
		return
	}
	entries, err := r.History.List(c.Request.Context(), queryInt(c, "limit", 0, 0))
	if err != nil {
		respondFailure(c, "list statistics", err)
		return
	}
	var buf bytes.Buffer
	if err := report.RenderTypeChart(&buf, entries, queryInt(c, "window", r.trendWindow(), maxTrendWindow)); err != nil {
		respondFailure(c, "render chart", err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (r *Router) trendWindow() int {
	if r.TrendWindow >= 2 {
		return r.TrendWindow
	}
	return report.DefaultWindow
}
