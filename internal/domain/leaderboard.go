package domain

// Tipos del modo multijugador (mobee-8), leídos de Redis.

// VariantEvent es un evento de sala tal como lo guarda el juego:
// mapas por código de jugador.
type VariantEvent struct {
	RoomID         string              `json:"roomId"`
	SymbolsPerCard int                 `json:"symbolsPerCard"` // 7 => nivel 1, 12 => nivel 2
	StartedAt      int64               `json:"startedAt"`      // epoch ms
	EndedAt        int64               `json:"endedAt"`
	Scores         map[string]int      `json:"scores"`
	Avatars        map[string]string   `json:"avatars"` // coords "col,row"
	Locations      map[string]Location `json:"locations"`
}

type Location struct {
	City string `json:"city"`
}

type LeaderboardGame struct {
	UserCode  string  `json:"user_code"`
	Score     int     `json:"score"`
	Level     int     `json:"level"`
	Timestamp float64 `json:"timestamp"` // epoch segundos
	City      string  `json:"city"`
	Room      string  `json:"room"`
}

type LeaderboardMeta struct {
	L1Count    int `json:"l1_count"`
	L2Count    int `json:"l2_count"`
	TotalGames int `json:"total_games"`
	Players    int `json:"players"`
}

// Leaderboard es la respuesta de /api/leaderboard. legacy_summary y
// symbols quedan vacíos pero se mantienen por compat con el dashboard.
type Leaderboard struct {
	RecentGames   []LeaderboardGame `json:"recent_games"`
	PlayerAvatars map[string]string `json:"player_avatars"`
	LegacySummary map[string]any    `json:"legacy_summary"`
	Symbols       []string          `json:"symbols"`
	Meta          LeaderboardMeta   `json:"meta"`
}

// Agregado por variante para el reporte mobee-8.

type VariantPlayerScore struct {
	PlayerID     string `json:"playerId"`
	Score        int    `json:"score"`
	AvatarCoords string `json:"avatarCoords,omitempty"`
	AvatarURL    string `json:"avatar_url,omitempty"`
	Name         string `json:"name,omitempty"`
}

type VariantPlayerGames struct {
	PlayerID     string  `json:"playerId"`
	Games        int     `json:"games"`
	AvgScore     float64 `json:"avgScore"`
	AvatarCoords string  `json:"avatarCoords,omitempty"`
	AvatarURL    string  `json:"avatar_url,omitempty"`
}

type VariantStats struct {
	Variant           string               `json:"variant"`
	TotalGames        int                  `json:"total_games"`
	UniquePlayers     int                  `json:"unique_players"`
	AvgScore          float64              `json:"avg_score"`
	MaxScore          int                  `json:"max_score"`
	ScoreDistribution map[string]int       `json:"score_distribution"`
	DailyStats        []DailyStat          `json:"daily_stats"`
	TopPlayersByScore []VariantPlayerScore `json:"top_players_by_score"`
	TopPlayersByGames []VariantPlayerGames `json:"top_players_by_games"`
}
