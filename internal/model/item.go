package model

// Item 代表曲库中的一首歌曲
// 曲库中没有唯一 ID，标题/歌手相同但标签不同的条目视为不同的条目
type Item struct {
	Title  string `json:"title" yaml:"title"`
	Artist string `json:"artist" yaml:"artist"`
	Mood   Mood   `json:"mood" yaml:"mood"`
	Region Region `json:"region" yaml:"region"`
	Genre  string `json:"genre" yaml:"genre"`
}

// ScoredItem 是单次推荐计算过程中的临时打分结果，不对外序列化
type ScoredItem struct {
	Item      Item
	Relevance int
}

// Query 推荐查询条件，三个字段均可为空
// Preference 既可以匹配流派 (genre)，也可以匹配歌手 (artist)
type Query struct {
	Mood       Mood
	Region     Region
	Preference string
}

// IsEmpty 判断是否未设置任何过滤条件
func (q Query) IsEmpty() bool {
	return q.Mood == "" && q.Region == "" && q.Preference == ""
}

// SentimentResult 情感分类结果 (每次请求生成，不持久化)
type SentimentResult struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
	Mood  Mood    `json:"-"`
}
