// Package sentiment 情感分类适配层
//
// 外部分类能力抽象为 Classifier 接口，Adapter 负责输入校验、
// 标签到情绪的映射、超时以及错误归类
package sentiment

import (
	"context"
	"errors"
	"strings"

	"moodmusic/internal/model"
)

var (
	// ErrValidation 输入文本为空
	ErrValidation = errors.New("text is required")
	// ErrModelUnavailable 分类模型初始化失败，不会按请求重试
	ErrModelUnavailable = errors.New("model not loaded")
	// ErrClassification 分类调用本身失败
	ErrClassification = errors.New("classification failed")
)

// 分类器使用的标签词表
const (
	LabelPositive = "POSITIVE"
	LabelNegative = "NEGATIVE"
	LabelNeutral  = "NEUTRAL"
)

// Classifier 外部情感分类能力
type Classifier interface {
	Classify(ctx context.Context, text string) (label string, score float64, err error)
}

// ClassifierFunc 让普通函数实现 Classifier
type ClassifierFunc func(ctx context.Context, text string) (string, float64, error)

func (f ClassifierFunc) Classify(ctx context.Context, text string) (string, float64, error) {
	return f(ctx, text)
}

var labelMoods = map[string]model.Mood{
	LabelPositive: model.MoodHappy,
	LabelNegative: model.MoodSad,
	LabelNeutral:  model.MoodNeutral,
}

// MoodForLabel 把分类标签映射为情绪，未知标签一律为 neutral
func MoodForLabel(label string) model.Mood {
	if mood, ok := labelMoods[strings.ToUpper(strings.TrimSpace(label))]; ok {
		return mood
	}
	return model.MoodNeutral
}
