package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"netscope/internal/logger"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultCatalog []byte

// ProductRule 命中任一关键词时返回对应的商品列表。
type ProductRule struct {
	Name     string   `mapstructure:"name" yaml:"name"`
	Keywords []string `mapstructure:"keywords" yaml:"keywords"`
	Items    []string `mapstructure:"items" yaml:"items"`
}

type Products struct {
	Rules   []ProductRule `mapstructure:"rules" yaml:"rules"`
	Default []string      `mapstructure:"default" yaml:"default"`
}

// Lexicon 是本地情感分析使用的词表，加载时统一转为小写。
type Lexicon struct {
	Positive []string `mapstructure:"positive" yaml:"positive"`
	Negative []string `mapstructure:"negative" yaml:"negative"`
}

// Catalog 映射 catalog 文件。
type Catalog struct {
	NetworkAdvice     map[string]string `mapstructure:"network_advice" yaml:"network_advice"`
	UnavailableAdvice string            `mapstructure:"unavailable_advice" yaml:"unavailable_advice"`
	Products          Products          `mapstructure:"products" yaml:"products"`
	Sentiment         Lexicon           `mapstructure:"sentiment" yaml:"sentiment"`
}

// Snapshot 是某次加载结果的只读副本。
type Snapshot struct {
	Version  int64
	LoadedAt time.Time
	Source   string
	Catalog  Catalog
}

// ChangeListener 在 registry 重载后触发。
type ChangeListener func(Snapshot)

// Registry 持有当前 catalog，配置了文件路径时随文件变更热加载。
type Registry struct {
	path string
	v    *viper.Viper

	mu        sync.RWMutex
	snapshot  Snapshot
	listeners []ChangeListener
}

// NewRegistry loads the catalog at path and watches it. An empty path uses
// the embedded default and nothing is watched. The file is always parsed as
// YAML whatever its extension. The watcher lives as long as the process;
// viper offers no way to stop it.
func NewRegistry(path string) (*Registry, error) {
	path = strings.TrimSpace(path)
	r := &Registry{path: path}
	if path == "" {
		cat, err := Parse(defaultCatalog)
		if err != nil {
			return nil, fmt.Errorf("parse embedded catalog failed: %w", err)
		}
		r.store(cat, "embedded")
		return r, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read catalog failed: %w", err)
	}
	r.v = v
	if err := r.reload(); err != nil {
		return nil, err
	}
	v.OnConfigChange(func(evt fsnotify.Event) {
		if err := r.reload(); err != nil {
			logger.Errorf("catalog reload failed (%s): %v", evt.Op, err)
			return
		}
		r.notifyListeners()
	})
	v.WatchConfig()
	return r, nil
}

// Default returns a registry backed by the embedded catalog.
func Default() *Registry {
	r, err := NewRegistry("")
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneSnapshot(r.snapshot)
}

// OnChange 注册重载回调。
func (r *Registry) OnChange(fn ChangeListener) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	r.listeners = append(r.listeners, fn)
	r.mu.Unlock()
}

// NetworkAdvice returns the canned advice for a network type, or the
// generic unavailable text.
func (r *Registry) NetworkAdvice(networkType string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cat := r.snapshot.Catalog
	if text, ok := cat.NetworkAdvice[strings.ToLower(strings.TrimSpace(networkType))]; ok {
		return text
	}
	return cat.UnavailableAdvice
}

// Recommend 按规则顺序匹配描述中的关键词（子串、不区分大小写），未命中时返回默认列表。
func (r *Registry) Recommend(description string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	desc := strings.ToLower(description)
	products := r.snapshot.Catalog.Products
	for _, rule := range products.Rules {
		for _, kw := range rule.Keywords {
			if kw != "" && strings.Contains(desc, kw) {
				return append([]string(nil), rule.Items...)
			}
		}
	}
	return append([]string(nil), products.Default...)
}

// Lexicon returns lookup sets for the sentiment word lists.
func (r *Registry) Lexicon() (positive, negative map[string]struct{}) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return toSet(r.snapshot.Catalog.Sentiment.Positive), toSet(r.snapshot.Catalog.Sentiment.Negative)
}

func (r *Registry) reload() error {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		return fmt.Errorf("read catalog failed: %w", err)
	}
	cat, err := Parse(raw)
	if err != nil {
		return err
	}
	r.store(cat, filepath.Base(r.path))
	return nil
}

func (r *Registry) store(cat Catalog, source string) {
	r.mu.Lock()
	r.snapshot = Snapshot{
		Version:  r.snapshot.Version + 1,
		LoadedAt: time.Now(),
		Source:   source,
		Catalog:  cat,
	}
	r.mu.Unlock()
	logger.Infof("Catalog loaded from %s: %d advice texts, %d product rules, %d/%d lexicon words",
		source, len(cat.NetworkAdvice), len(cat.Products.Rules), len(cat.Sentiment.Positive), len(cat.Sentiment.Negative))
}

func (r *Registry) notifyListeners() {
	r.mu.RLock()
	snap := cloneSnapshot(r.snapshot)
	listeners := append([]ChangeListener(nil), r.listeners...)
	r.mu.RUnlock()
	for _, fn := range listeners {
		go func(cb ChangeListener) {
			defer safeRecover("catalog listener")
			cb(snap)
		}(fn)
	}
}

// Parse strictly decodes a catalog document; unknown fields are rejected.
func Parse(raw []byte) (Catalog, error) {
	var cat Catalog
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cat); err != nil {
		return Catalog{}, fmt.Errorf("parse catalog failed: %w", err)
	}
	cat = normalize(cat)
	if err := validate(cat); err != nil {
		return Catalog{}, err
	}
	return cat, nil
}

func normalize(cat Catalog) Catalog {
	advice := make(map[string]string, len(cat.NetworkAdvice))
	for k, v := range cat.NetworkAdvice {
		advice[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}
	cat.NetworkAdvice = advice
	cat.UnavailableAdvice = strings.TrimSpace(cat.UnavailableAdvice)
	for i := range cat.Products.Rules {
		cat.Products.Rules[i].Keywords = lowerAll(cat.Products.Rules[i].Keywords)
	}
	cat.Sentiment.Positive = lowerAll(cat.Sentiment.Positive)
	cat.Sentiment.Negative = lowerAll(cat.Sentiment.Negative)
	return cat
}

func validate(cat Catalog) error {
	if cat.UnavailableAdvice == "" {
		return fmt.Errorf("catalog: unavailable_advice is required")
	}
	if len(cat.Products.Default) == 0 {
		return fmt.Errorf("catalog: products.default must not be empty")
	}
	for i, rule := range cat.Products.Rules {
		if len(rule.Keywords) == 0 || len(rule.Items) == 0 {
			return fmt.Errorf("catalog: products.rules[%d] (%s) needs keywords and items", i, rule.Name)
		}
	}
	return nil
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func cloneSnapshot(src Snapshot) Snapshot {
	dst := src
	dst.Catalog.NetworkAdvice = make(map[string]string, len(src.Catalog.NetworkAdvice))
	for k, v := range src.Catalog.NetworkAdvice {
		dst.Catalog.NetworkAdvice[k] = v
	}
	dst.Catalog.Products.Rules = append([]ProductRule(nil), src.Catalog.Products.Rules...)
	dst.Catalog.Products.Default = append([]string(nil), src.Catalog.Products.Default...)
	dst.Catalog.Sentiment.Positive = append([]string(nil), src.Catalog.Sentiment.Positive...)
	dst.Catalog.Sentiment.Negative = append([]string(nil), src.Catalog.Sentiment.Negative...)
	return dst
}

func safeRecover(tag string) {
	if r := recover(); r != nil {
		logger.Errorf("%s panic: %v", tag, r)
	}
}
