package apihttp

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"netscope/internal/advisor"
	"netscope/internal/logger"
	"netscope/internal/network"
	"netscope/internal/store/ailog"
	"netscope/internal/store/history"

	"github.com/gin-gonic/gin"
)

// Router 暴露网络分析、统计历史与 AI 代理接口。
type Router struct {
	Advisor     *advisor.Advisor
	History     *history.Store
	CallLog     *ailog.Store
	ScanFile    string
	TrendWindow int

	now func() time.Time
}

// NewRouter 构造 API router；History 与 CallLog 可以为 nil，对应接口返回 503。
func NewRouter(adv *advisor.Advisor, hist *history.Store, calls *ailog.Store, scanFile string) *Router {
	return &Router{Advisor: adv, History: hist, CallLog: calls, ScanFile: scanFile, now: time.Now}
}

// Register 将 /api 路由挂载到给定分组下。
func (r *Router) Register(group *gin.RouterGroup) {
	if group == nil {
		return
	}
	group.GET("/network_status", r.handleNetworkStatus)
	group.GET("/wifi", r.handleWiFi)

	networks := group.Group("/networks")
	networks.POST("/classify", r.handleClassify)
	networks.POST("/device", r.handleDevice)
	networks.POST("/analyze", r.handleAnalyze)
	networks.POST("/predict", r.handlePredict)
	networks.GET("/stats", r.handleStats)
	networks.GET("/stats/trend", r.handleTrend)
	networks.GET("/stats/chart", r.handleChart)

	ai := group.Group("/ai")
	ai.GET("/config/origin", r.handleDefaultOrigin)
	ai.GET("/origins", r.handleOrigins)
	ai.POST("/sentiment", r.handleSentiment)
	ai.POST("/summary", r.handleSummary)
	ai.POST("/recommendations", r.handleRecommendations)
	ai.GET("/logs", r.handleAILogs)
}

func (r *Router) handleNetworkStatus(c *gin.Context) {
	entries, err := network.LoadScanFile(r.ScanFile)
	if err != nil && !errors.Is(err, network.ErrScanFileMissing) {
		logger.Warnf("[api] network status: scan file unusable path=%s err=%v", r.ScanFile, err)
	}
	respondOK(c, network.BuildStatus(entries), "")
}

func (r *Router) handleWiFi(c *gin.Context) {
	entries, err := network.LoadScanFile(r.ScanFile)
	if err != nil {
		logger.Errorf("[api] wifi analysis failed path=%s err=%v", r.ScanFile, err)
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if len(entries) == 0 {
		logger.Warnf("[api] wifi analysis: no network found")
		respondError(c, http.StatusNotFound, "no network found")
		return
	}
	logger.Infof("[api] wifi analysis done: %d networks", len(entries))
	respondOK(c, network.Report(entries), "")
}

func (r *Router) readObservation(c *gin.Context) (network.Observation, bool) {
	raw, err := c.GetRawData()
	if err != nil {
		respondError(c, http.StatusBadRequest, "read body failed: "+err.Error())
		return network.Observation{}, false
	}
	obs, err := network.ParseObservation(raw)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return network.Observation{}, false
	}
	return obs, true
}

func (r *Router) handleClassify(c *gin.Context) {
	obs, ok := r.readObservation(c)
	if !ok {
		return
	}
	respondOK(c, gin.H{"type": network.Classify(obs)}, "")
}

// handleDevice 分析单条记录并附带建议文本；origin 可通过查询参数覆盖。
func (r *Router) handleDevice(c *gin.Context) {
	obs, ok := r.readObservation(c)
	if !ok {
		return
	}
	result := network.Analyze(obs)
	enriched, meta, err := r.Advisor.NetworkAdvice(c.Request.Context(), result, c.Query("origin"))
	if err != nil {
		respondFailure(c, "network advice", err)
		return
	}
	respondOK(c, enriched, meta.Warning)
}

func (r *Router) handleAnalyze(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		respondError(c, http.StatusBadRequest, "read body failed: "+err.Error())
		return
	}
	observations, err := network.ParseObservations(raw)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	ctx := c.Request.Context()
	stats := network.Aggregate(observations, r.now())
	if withAdvice, _ := strconv.ParseBool(c.DefaultQuery("advice", "false")); withAdvice {
		enriched, err := r.Advisor.AdviseAll(ctx, stats.DetailedAnalysis, c.Query("origin"))
		if err != nil {
			respondFailure(c, "network advice", err)
			return
		}
		stats.DetailedAnalysis = enriched
	}

	warning := ""
	if r.History != nil {
		if _, err := r.History.Append(ctx, stats); err != nil {
			logger.Warnf("[api] save statistics failed: %v", err)
			warning = "statistics were not saved to history"
		}
	}
	respondOK(c, stats, warning)
}

func (r *Router) handlePredict(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		respondError(c, http.StatusBadRequest, "read body failed: "+err.Error())
		return
	}
	byType, err := network.ParsePredictionInput(raw)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	prediction := network.PredictQuality(byType)
	warning := ""
	if prediction.Fallbacks > 0 {
		warning = strconv.Itoa(prediction.Fallbacks) + " signal reading(s) could not be parsed and were ignored"
	}
	respondOK(c, prediction, warning)
}

func (r *Router) requireHistory(c *gin.Context) bool {
	if r.History == nil {
		respondError(c, http.StatusServiceUnavailable, "statistics history disabled")
		return false
	}
	return true
}

func (r *Router) originParam(c *gin.Context, bodyOrigin string) string {
	if o := strings.TrimSpace(bodyOrigin); o != "" {
		return o
	}
	return c.Query("origin")
}
