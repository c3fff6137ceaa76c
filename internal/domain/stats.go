package domain

import "time"

// Buckets de distribución de scores, en orden de presentación.
var ScoreBuckets = []string{"0-5", "6-10", "11-15", "16-20", "20+"}

type PlatformAgg struct {
	Count int     `json:"count"`
	Avg   float64 `json:"avg"`
	Max   int     `json:"max"`
}

type CountryAgg struct {
	Count int     `json:"count"`
	Avg   float64 `json:"avg"`
}

type Engagement struct {
	OneTimePlayers   int `json:"one_time_players"`
	ReturningPlayers int `json:"returning_players"`
	SuperEngaged     int `json:"super_engaged"` // 10+ partidas
}

type HighScoreInfo struct {
	Location string    `json:"location"`
	Platform string    `json:"platform"`
	PlayedAt time.Time `json:"timestamp"`
}

type PlayerGames struct {
	UserCode string `json:"user_code"`
	Scores   []int  `json:"scores"`
}

type PlayerScore struct {
	UserCode string `json:"user_code"`
	Score    int    `json:"score"`
}

type DailyStat struct {
	Date          string `json:"date"` // YYYY-MM-DD (UTC)
	Games         int    `json:"games"`
	UniquePlayers int    `json:"unique_players"`
}

// Stats es el agregado completo sobre un conjunto de partidas.
type Stats struct {
	TotalGames     int     `json:"total_games"`
	UniquePlayers  int     `json:"unique_players"`
	HighScoreGames int     `json:"high_score_games"`
	AvgScore       float64 `json:"avg_score"`
	MedianScore    float64 `json:"median_score"`
	MaxScore       int     `json:"max_score"`
	MinScore       int     `json:"min_score"`

	CityCounts     map[string]int         `json:"city_counts"`
	CountryCounts  map[string]int         `json:"country_counts"`
	PlatformCounts map[string]int         `json:"platform_counts"`
	PlatformScores map[string]PlatformAgg `json:"platform_scores"`
	LocationScores map[string]CountryAgg  `json:"location_scores"`

	Engagement Engagement `json:"engagement"`

	PlayerCities         map[string]int           `json:"player_cities"`    // ciudades distintas por jugador
	PlayerPlatforms      map[string]int           `json:"player_platforms"` // plataformas distintas por jugador
	PlayerMostCommonCity map[string]string        `json:"player_most_common_city"`
	PlayerHighScoreInfo  map[string]HighScoreInfo `json:"player_high_score_info"`

	TopPlayersByGames []PlayerGames `json:"top_players_by_games"`
	TopPlayersByScore []PlayerScore `json:"top_players_by_score"`

	ScoreDistribution map[string]int `json:"score_distribution"`
	DailyStats        []DailyStat    `json:"daily_stats"`
}
