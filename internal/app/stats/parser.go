package stats

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/trippplecard/mobee-stats/internal/domain"
)

// Formato de las notificaciones del juego:
//   🎮 Score: 14 | Barcelona, Spain | iPhone Safari | a3F9 #12 | Code: MOBEE-XY12-3
//   🏆 HIGH SCORE: 23 | ...
var (
	scoreRe    = regexp.MustCompile(`(?:HIGH SCORE|Score):\s*(\d+)`)
	locationRe = regexp.MustCompile(`\|\s*([^|]+),\s*([^|]+)\s*\|`)
	platformRe = regexp.MustCompile(`\|\s*([^|]+)\s*\|\s*[a-zA-Z0-9]+\s*#`)
	userRe     = regexp.MustCompile(`\|\s*([a-zA-Z0-9]+)\s*#\d+`)
	gameNumRe  = regexp.MustCompile(`#(\d+)`)
	gameCodeRe = regexp.MustCompile(`Code:\s*(MOBEE-[0-9A-Z-]+)`)
)

// IsGameNotification filtra rápido antes de intentar el parseo completo.
func IsGameNotification(text string) bool {
	return strings.Contains(text, "Score:") || strings.Contains(text, "HIGH SCORE:")
}

// ParseNotification extrae los datos de una notificación. Devuelve false
// si el mensaje no trae score (no es una partida). Los campos opcionales
// que no matchean quedan en "Unknown".
func ParseNotification(text string, at time.Time) (domain.Game, bool) {
	m := scoreRe.FindStringSubmatch(text)
	if m == nil {
		return domain.Game{}, false
	}
	score, _ := strconv.Atoi(m[1])

	g := domain.Game{
		Score:    score,
		City:     "Unknown",
		Country:  "Unknown",
		Platform: "Unknown",
		UserCode: "Unknown",
		GameCode: "Unknown",
		PlayedAt: at,
	}

	// el emoji 🏆 puede llegar como unicode o como :trophy:
	g.IsHighScore = strings.Contains(text, "HIGH SCORE:")

	if lm := locationRe.FindStringSubmatch(text); lm != nil {
		g.City = strings.TrimSpace(lm[1])
		g.Country = strings.TrimSpace(lm[2])
	}
	if pm := platformRe.FindStringSubmatch(text); pm != nil {
		g.Platform = strings.TrimSpace(pm[1])
	}
	if um := userRe.FindStringSubmatch(text); um != nil {
		g.UserCode = strings.TrimSpace(um[1])
	}
	if nm := gameNumRe.FindStringSubmatch(text); nm != nil {
		g.GameNumber, _ = strconv.Atoi(nm[1])
	}
	if cm := gameCodeRe.FindStringSubmatch(text); cm != nil {
		g.GameCode = cm[1]
	}
	return g, true
}

// ParseMessages aplica filtro + parseo sobre el historial completo.
// maxScore descarta basura (mensajes que matchean pero no son partidas).
func ParseMessages(msgs []domain.ChannelMessage, maxScore int) []domain.Game {
	var games []domain.Game
	for _, msg := range msgs {
		if !IsGameNotification(msg.Text) {
			continue
		}
		g, ok := ParseNotification(msg.Text, msg.At)
		if !ok || g.Score > maxScore {
			continue
		}
		g.MsgTS = msg.TS
		games = append(games, g)
	}
	return games
}
