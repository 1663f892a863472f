package sentiment

import (
	"context"
	"strings"
	"unicode"
)

var positiveWords = wordSet(
	"love", "loved", "loving", "like", "liked", "enjoy", "enjoyed", "great", "good", "nice",
	"awesome", "amazing", "wonderful", "fantastic", "excellent", "happy", "glad", "joy",
	"joyful", "delighted", "excited", "exciting", "fun", "beautiful", "best", "brilliant",
	"perfect", "pleased", "cheerful", "grateful", "thankful", "thanks", "calm", "peaceful",
	"relaxed", "hopeful", "proud", "fine", "cool", "sunny", "smile", "smiling", "laugh",
	"laughing", "celebrate", "win", "won", "yay",
)

var negativeWords = wordSet(
	"hate", "hated", "dislike", "bad", "awful", "terrible", "horrible", "worst", "sad",
	"unhappy", "depressed", "depressing", "miserable", "angry", "mad", "upset", "annoyed",
	"annoying", "boring", "bored", "lonely", "alone", "tired", "cry", "crying", "cried",
	"hurt", "pain", "painful", "broken", "heartbroken", "sorry", "afraid", "scared", "fear",
	"worried", "anxious", "stress", "stressed", "lost", "lose", "fail", "failed", "sick",
	"disappointed", "disappointing", "gloomy", "rainy",
)

var negators = wordSet("not", "no", "never", "dont", "don't", "didnt", "didn't", "isnt", "isn't", "wasnt", "wasn't", "cant", "can't", "cannot", "hardly")

func wordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// LexiconClassifier 基于词表的英文情感分类，不依赖外部模型，总是可用
// 否定词翻转其后两个词以内的第一个情感词，分句标点和转折词会提前结束否定
type LexiconClassifier struct{}

// NewLexiconClassifier 创建词表分类器
func NewLexiconClassifier() *LexiconClassifier {
	return &LexiconClassifier{}
}

// negationScope 否定词最多影响其后第几个词
const negationScope = 2

// clauseBreak 分句标点在 token 序列中的占位
const clauseBreak = ""

// contrastWords 转折词同样结束否定范围
var contrastWords = wordSet("but", "though", "although", "however", "yet")

func (c *LexiconClassifier) Classify(ctx context.Context, text string) (string, float64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	pos, neg := 0, 0
	// scope > 0 表示仍处于否定范围内
	scope := 0
	for _, tok := range tokenize(text) {
		if tok == clauseBreak {
			scope = 0
			continue
		}
		if _, ok := contrastWords[tok]; ok {
			scope = 0
			continue
		}
		if _, ok := negators[tok]; ok {
			scope = negationScope
			continue
		}
		_, isPos := positiveWords[tok]
		_, isNeg := negativeWords[tok]
		if !isPos && !isNeg {
			if scope > 0 {
				scope--
			}
			continue
		}
		if isPos != (scope > 0) {
			pos++
		} else {
			neg++
		}
		scope = 0
	}

	total := pos + neg
	switch {
	case total == 0 || pos == neg:
		return LabelNeutral, 0.5, nil
	case pos > neg:
		return LabelPositive, confidence(pos-neg, total), nil
	default:
		return LabelNegative, confidence(neg-pos, total), nil
	}
}

func confidence(margin, total int) float64 {
	return 0.5 + 0.5*float64(margin)/float64(total)
}

// tokenize 小写分词，分句标点输出为 clauseBreak
func tokenize(text string) []string {
	var tokens []string
	var word strings.Builder
	flush := func() {
		if word.Len() > 0 {
			tokens = append(tokens, word.String())
			word.Reset()
		}
	}
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || r == '\'':
			word.WriteRune(r)
		case r == '’':
			word.WriteRune('\'')
		case strings.ContainsRune(",.;:!?()", r):
			flush()
			tokens = append(tokens, clauseBreak)
		default:
			flush()
		}
	}
	flush()
	return tokens
}
