package model

// Mood 情绪标签，同时用于曲库标签和情感分类的输出
type Mood string

const (
	MoodHappy   Mood = "happy"
	MoodSad     Mood = "sad"
	MoodNeutral Mood = "neutral"
)

// Moods 所有合法的情绪取值
var Moods = []Mood{MoodHappy, MoodSad, MoodNeutral}

// Valid 是否为已知情绪
func (m Mood) Valid() bool {
	switch m {
	case MoodHappy, MoodSad, MoodNeutral:
		return true
	}
	return false
}

// Region 地区标签
type Region string

const (
	RegionAsia         Region = "asia"
	RegionEurope       Region = "europe"
	RegionNorthAmerica Region = "north_america"
	RegionSouthAmerica Region = "south_america"
	RegionAfrica       Region = "africa"
	RegionOceania      Region = "oceania"
)

// Regions 所有合法的地区取值
var Regions = []Region{
	RegionAsia,
	RegionEurope,
	RegionNorthAmerica,
	RegionSouthAmerica,
	RegionAfrica,
	RegionOceania,
}

// Valid 是否为已知地区
func (r Region) Valid() bool {
	for _, known := range Regions {
		if r == known {
			return true
		}
	}
	return false
}
