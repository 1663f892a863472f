package main

import (
	"fmt"

	"moodmusic/internal/nodes"
	"moodmusic/internal/workflow"
)

// NewRegistry 注册所有推荐阶段节点
func NewRegistry() *workflow.Registry {
	registry := workflow.NewRegistry()
	nodes.Register(registry)
	return registry
}

// BuildPipeline 根据配置构建推荐流程
// 未配置 pipeline 时使用默认流程，fallback_size 作用于没有显式 size 的随机兜底节点
func BuildPipeline(cfg RecommendConfig) (*workflow.Engine, error) {
	pipeline := cfg.Pipeline
	if len(pipeline) == 0 {
		pipeline = nodes.DefaultPipeline()
	}

	resolved := make([]workflow.NodeConfig, len(pipeline))
	for i, node := range pipeline {
		// 复制一份，避免修改调用方的配置
		nodeCfg := workflow.NodeConfig{Name: node.Name, Type: node.Type, Config: map[string]interface{}{}}
		for k, v := range node.Config {
			nodeCfg.Config[k] = v
		}
		if node.Type == "fallback_random" && cfg.FallbackSize > 0 {
			if _, ok := node.Config["size"]; !ok || len(cfg.Pipeline) == 0 {
				nodeCfg.Config["size"] = cfg.FallbackSize
			}
		}
		resolved[i] = nodeCfg
	}

	engine, err := workflow.NewEngine(resolved, NewRegistry())
	if err != nil {
		return nil, fmt.Errorf("failed to build recommend pipeline: %w", err)
	}
	return engine, nil
}
