package nodes

import (
	"fmt"
	"strconv"
)

// 推荐阶段名，记录在 workflow.Context.Stage 中
const (
	StageStrict            = "strict"
	StageRelaxedAttribute  = "relaxed_attribute"
	StageRelaxedPreference = "relaxed_preference"
	StageRandom            = "random"
)

// intOption 读取节点配置中的整数参数
// YAML 解析出来是 int，JSON 解析出来是 float64，环境变量是字符串
func intOption(cfg map[string]interface{}, key string, def int) (int, error) {
	raw, ok := cfg[key]
	if !ok || raw == nil {
		return def, nil
	}
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("option %s: %w", key, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("option %s: unsupported type %T", key, raw)
	}
}
