package app

import (
	"fmt"
	"strings"

	"netscope/internal/catalog"
	"netscope/internal/config"
	"netscope/internal/gateway/provider"
)

type StartupSummary struct {
	HTTPAddr      string
	DefaultOrigin string
	Provider      string
	Catalog       CatalogSummary
	Storage       StorageSummary
	ScanFile      string
}

type CatalogSummary struct {
	Source        string
	Version       int64
	AdviceTypes   []string
	ProductRules  int
	PositiveWords int
	NegativeWords int
}

type StorageSummary struct {
	HistoryDB  string
	MaxEntries int
	AILogDB    string
}

func newStartupSummary(cfg *config.Config, snap catalog.Snapshot, p provider.ModelProvider) *StartupSummary {
	providerName := "(local only)"
	if p != nil {
		providerName = p.ID()
	}
	adviceTypes := make([]string, 0, len(snap.Catalog.NetworkAdvice))
	for _, t := range []string{"wifi", "bluetooth", "lte", "esim"} {
		if _, ok := snap.Catalog.NetworkAdvice[t]; ok {
			adviceTypes = append(adviceTypes, t)
		}
	}
	return &StartupSummary{
		HTTPAddr:      cfg.App.HTTPAddr,
		DefaultOrigin: cfg.AI.DefaultOrigin,
		Provider:      providerName,
		Catalog: CatalogSummary{
			Source:        snap.Source,
			Version:       snap.Version,
			AdviceTypes:   adviceTypes,
			ProductRules:  len(snap.Catalog.Products.Rules),
			PositiveWords: len(snap.Catalog.Sentiment.Positive),
			NegativeWords: len(snap.Catalog.Sentiment.Negative),
		},
		Storage: StorageSummary{
			HistoryDB:  absPath(cfg.History.DBPath),
			MaxEntries: cfg.History.MaxEntries,
			AILogDB:    absPath(cfg.AILog.DBPath),
		},
		ScanFile: cfg.Network.ScanFile,
	}
}

func (s *StartupSummary) Print() {
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("%*s\n", 40+len("启动配置摘要 (STARTUP SUMMARY)")/2, "启动配置摘要 (STARTUP SUMMARY)")
	fmt.Println(strings.Repeat("=", 80))

	fmt.Println("[服务 (SERVICE)]")
	fmt.Printf("  监听地址: %s\n", s.HTTPAddr)
	fmt.Printf("  扫描文件: %s\n", s.ScanFile)
	fmt.Println()

	fmt.Println("[AI 代理 (AI PROXY)]")
	fmt.Printf("  默认 origin: %s\n", s.DefaultOrigin)
	fmt.Printf("  模型 provider: %s\n", s.Provider)
	fmt.Println()

	fmt.Println("[兜底内容 (CATALOG)]")
	fmt.Printf("  来源: %s (version %d)\n", s.Catalog.Source, s.Catalog.Version)
	fmt.Printf("  网络建议: %s\n", formatList(s.Catalog.AdviceTypes))
	fmt.Printf("  商品规则: %d\n", s.Catalog.ProductRules)
	fmt.Printf("  情感词表: +%d / -%d\n", s.Catalog.PositiveWords, s.Catalog.NegativeWords)
	fmt.Println()

	fmt.Println("[存储 (STORAGE)]")
	fmt.Printf("  统计历史: %s (最多 %d 条)\n", s.Storage.HistoryDB, s.Storage.MaxEntries)
	fmt.Printf("  AI 调用日志: %s\n", s.Storage.AILogDB)
	fmt.Println(strings.Repeat("=", 80))
}

func formatList(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}
