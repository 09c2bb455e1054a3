package apihttp

import (
	"fmt"
	"net/http"
	"strings"

	"netscope/internal/advisor"
	"netscope/internal/pkg/text"

	"github.com/gin-gonic/gin"
)

const (
	sentimentMinChars   = 1
	sentimentMaxChars   = 5000
	summaryMinChars     = 50
	summaryMaxChars     = 10000
	descriptionMinChars = 10
	descriptionMaxChars = 1000
	maxLogLimit         = 500
)

type textRequest struct {
	Text   string `json:"text"`
	Origin string `json:"origin"`
}

type recommendationRequest struct {
	Description string `json:"description"`
	Origin      string `json:"origin"`
}

func checkLength(field, value string, min, max int) error {
	n := text.Length(strings.TrimSpace(value))
	if n < min || n > max {
		return fmt.Errorf("%s must be between %d and %d characters", field, min, max)
	}
	return nil
}

// handleDefaultOrigin 返回配置的默认 origin 以及模型通道状态。
func (r *Router) handleDefaultOrigin(c *gin.Context) {
	info := r.Advisor.DefaultOrigin().Info()
	respondOK(c, gin.H{
		"origin":      info.Origin,
		"name":        info.Name,
		"description": info.Description,
		"model":       r.Advisor.ModelStatus(),
	}, "")
}

func (r *Router) handleOrigins(c *gin.Context) {
	respondOK(c, advisor.Origins(), "")
}

func (r *Router) handleSentiment(c *gin.Context) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := checkLength("text", req.Text, sentimentMinChars, sentimentMaxChars); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	res, meta, err := r.Advisor.Sentiment(c.Request.Context(), req.Text, r.originParam(c, req.Origin))
	if err != nil {
		respondFailure(c, "sentiment analysis", err)
		return
	}
	respondOK(c, res, meta.Warning)
}

func (r *Router) handleSummary(c *gin.Context) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := checkLength("text", req.Text, summaryMinChars, summaryMaxChars); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	res, meta, err := r.Advisor.Summarize(c.Request.Context(), req.Text, r.originParam(c, req.Origin))
	if err != nil {
		respondFailure(c, "summary", err)
		return
	}
	respondOK(c, res, meta.Warning)
}

func (r *Router) handleRecommendations(c *gin.Context) {
	var req recommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := checkLength("description", req.Description, descriptionMinChars, descriptionMaxChars); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	res, meta, err := r.Advisor.Recommend(c.Request.Context(), req.Description, r.originParam(c, req.Origin))
	if err != nil {
		respondFailure(c, "recommendations", err)
		return
	}
	respondOK(c, res, meta.Warning)
}

func (r *Router) handleAILogs(c *gin.Context) {
	if r.CallLog == nil {
		respondError(c, http.StatusServiceUnavailable, "ai call log disabled")
		return
	}
	records, err := r.CallLog.Recent(c.Request.Context(), queryInt(c, "limit", 0, maxLogLimit))
	if err != nil {
		respondFailure(c, "list ai calls", err)
		return
	}
	respondOK(c, records, "")
}
