package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"moodmusic/internal/model"
	"moodmusic/internal/textnorm"

	"gopkg.in/yaml.v3"
)

//go:embed songs.yaml
var defaultSongs []byte

// ErrInvalidItem 曲库条目缺少字段或标签不合法
var ErrInvalidItem = errors.New("catalog: invalid item")

// Repository 只读曲库接口
type Repository interface {
	// All 按曲库原始顺序返回全部条目 (副本)
	All() []model.Item
	// Len 曲库条目数
	Len() int
}

// StaticRepository 基于 YAML 数据的静态曲库，启动时加载，之后不再修改
type StaticRepository struct {
	items []model.Item
}

type staticConfig struct {
	Songs []model.Item `yaml:"songs"`
}

// NewStaticRepository 从 YAML 文件加载曲库
// path 为空时使用内置曲库
func NewStaticRepository(path string) (*StaticRepository, error) {
	data := defaultSongs
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog file: %w", err)
		}
		data = raw
	}
	return Parse(data)
}

// Parse 解析 YAML 曲库数据并校验每个条目
func Parse(data []byte) (*StaticRepository, error) {
	var cfg staticConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return NewRepository(cfg.Songs)
}

// NewRepository 直接用给定条目构建曲库 (会复制切片)
// 参与匹配的字段按查询相同的规则规范化，"Ed Sheeran" 与查询 "ed sheeran" 相等
func NewRepository(items []model.Item) (*StaticRepository, error) {
	normalized := make([]model.Item, len(items))
	for i, item := range items {
		item = normalize(item)
		if err := validate(item); err != nil {
			return nil, fmt.Errorf("item %d (%q): %w", i, item.Title, err)
		}
		normalized[i] = item
	}
	return &StaticRepository{items: normalized}, nil
}

// normalize 标题只做 NFKC 和去空白，保留原有大小写用于展示
func normalize(item model.Item) model.Item {
	return model.Item{
		Title:  textnorm.Text(item.Title),
		Artist: textnorm.Field(item.Artist),
		Mood:   model.Mood(textnorm.Enum(string(item.Mood))),
		Region: model.Region(textnorm.Enum(string(item.Region))),
		Genre:  textnorm.Field(item.Genre),
	}
}

func validate(item model.Item) error {
	switch {
	case item.Title == "":
		return fmt.Errorf("%w: empty title", ErrInvalidItem)
	case item.Artist == "":
		return fmt.Errorf("%w: empty artist", ErrInvalidItem)
	case item.Genre == "":
		return fmt.Errorf("%w: empty genre", ErrInvalidItem)
	case !item.Mood.Valid():
		return fmt.Errorf("%w: unknown mood %q", ErrInvalidItem, item.Mood)
	case !item.Region.Valid():
		return fmt.Errorf("%w: unknown region %q", ErrInvalidItem, item.Region)
	}
	return nil
}

// All 返回曲库副本，调用方可以随意排序或截断
func (r *StaticRepository) All() []model.Item {
	result := make([]model.Item, len(r.items))
	copy(result, r.items)
	return result
}

// Len 曲库条目数
func (r *StaticRepository) Len() int {
	return len(r.items)
}
