package catalog

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ResponseKind 标识需要校验的模型输出类型。
type ResponseKind string

const (
	KindSentiment       ResponseKind = "sentiment"
	KindRecommendations ResponseKind = "recommendations"
)

var responseSchemas = map[ResponseKind]string{
	KindSentiment: `{
		"type": "object",
		"required": ["rating", "confidence"],
		"properties": {
			"rating": {"type": "number"},
			"confidence": {"type": "number"}
		}
	}`,
	KindRecommendations: `{
		"type": "object",
		"required": ["recommendations"],
		"properties": {
			"recommendations": {
				"type": "array",
				"minItems": 1,
				"items": {"type": "string"}
			}
		}
	}`,
}

var (
	compileOnce sync.Once
	compiled    map[ResponseKind]*jsonschema.Schema
	compileErr  error
)

// ValidateResponse checks a decoded model response against the schema for
// kind. Numeric strings are coerced first, so {"rating":"4"} passes.
func ValidateResponse(kind ResponseKind, payload map[string]any) error {
	compileOnce.Do(compileAll)
	if compileErr != nil {
		return compileErr
	}
	schema, ok := compiled[kind]
	if !ok {
		return fmt.Errorf("unknown response kind: %s", kind)
	}
	return schema.Validate(Sanitize(payload))
}

func compileAll() {
	compiled = make(map[ResponseKind]*jsonschema.Schema, len(responseSchemas))
	for kind, raw := range responseSchemas {
		s, err := compileSchema(string(kind)+".json", raw)
		if err != nil {
			compileErr = fmt.Errorf("compile %s schema: %w", kind, err)
			return
		}
		compiled[kind] = s
	}
}

func compileSchema(name, raw string) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, strings.NewReader(raw)); err != nil {
		return nil, err
	}
	return compiler.Compile(name)
}

// Sanitize 递归遍历 payload，将字符串形式的数字转为 float64，兼容模型返回 "4" 而非 4 的情况。
func Sanitize(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, child := range val {
			out[k] = Sanitize(child)
		}
		return out
	case []any:
		// 列表元素保持原样，商品名可能是纯数字
		return val
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return val
		}
		if num, err := strconv.ParseFloat(s, 64); err == nil {
			return num
		}
		return val
	default:
		return val
	}
}
