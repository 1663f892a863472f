package workflow

import (
	"errors"
	"fmt"
)

// ErrEmptyPipeline pipeline 中没有任何节点
var ErrEmptyPipeline = errors.New("pipeline has no nodes")

// NodeConfig 节点的配置片段
type NodeConfig struct {
	Name   string                 `koanf:"name" yaml:"name"`
	Type   string                 `koanf:"type" yaml:"type"`
	Config map[string]interface{} `koanf:"config" yaml:"config"`
}

// NodeFactory 创建 Node 的函数签名
type NodeFactory func(config NodeConfig) (Node, error)

// Registry 节点注册表
type Registry struct {
	factories map[string]NodeFactory
}

func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]NodeFactory),
	}
}

// Register 注册一个新的节点类型
func (r *Registry) Register(nodeType string, factory NodeFactory) {
	r.factories[nodeType] = factory
}

// CreateNode 根据配置创建节点实例
func (r *Registry) CreateNode(cfg NodeConfig) (Node, error) {
	factory, ok := r.factories[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("unknown node type: %s", cfg.Type)
	}
	if cfg.Name == "" {
		cfg.Name = cfg.Type
	}
	return factory(cfg)
}

// Engine 流程引擎，按顺序执行一条 pipeline
type Engine struct {
	nodes []Node
}

// NewEngine 根据节点配置创建引擎
func NewEngine(pipeline []NodeConfig, registry *Registry) (*Engine, error) {
	if len(pipeline) == 0 {
		return nil, ErrEmptyPipeline
	}

	engine := &Engine{}
	for _, nodeCfg := range pipeline {
		node, err := registry.CreateNode(nodeCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create node '%s': %w", nodeCfg.Name, err)
		}
		engine.nodes = append(engine.nodes, node)
	}

	return engine, nil
}

// Nodes 返回 pipeline 中的节点
func (e *Engine) Nodes() []Node {
	result := make([]Node, len(e.nodes))
	copy(result, e.nodes)
	return result
}

// Run 执行 pipeline，节点 panic 会被转换为错误返回
func (e *Engine) Run(ctx *Context) error {
	ctx.AddLog("Starting pipeline execution")

	for _, node := range e.nodes {
		if err := ctx.Ctx.Err(); err != nil {
			return err
		}
		ctx.AddLog(fmt.Sprintf("Executing node: %s (%s)", node.Name(), node.Type()))
		if err := runNode(ctx, node); err != nil {
			ctx.AddLog(fmt.Sprintf("Node execution failed: %v", err))
			return err
		}
	}

	ctx.AddLog("Pipeline execution completed")
	return nil
}

func runNode(ctx *Context, node Node) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("node %s panic: %v", node.Name(), r)
		}
	}()
	return node.Execute(ctx)
}
