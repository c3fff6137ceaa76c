package domain

import "time"

// Game es una partida parseada de una notificación del canal de Slack.
type Game struct {
	IsHighScore bool      `json:"is_high_score"`
	Score       int       `json:"score"`
	City        string    `json:"city"`
	Country     string    `json:"country"`
	Platform    string    `json:"platform"`
	UserCode    string    `json:"user_code"`
	GameNumber  int       `json:"game_number"`
	GameCode    string    `json:"game_code"`
	PlayedAt    time.Time `json:"timestamp"`

	// ts crudo del mensaje de Slack; lo usamos como clave de dedup en DB.
	MsgTS string `json:"-"`
}

// ChannelMessage es lo mínimo que necesitamos de un mensaje del canal.
type ChannelMessage struct {
	TS   string
	Text string
	At   time.Time
}
