package httpapi

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/trippplecard/mobee-stats/internal/app/service"
)

type Server struct {
	secret  string // CRON_SECRET; vacío => endpoints del cron abiertos
	reports *service.ReportService
	board   *service.LeaderboardService // opcional (requiere Redis)
	mux     *http.ServeMux
}

func New(secret string, reports *service.ReportService, board *service.LeaderboardService) *Server {
	s := &Server{secret: secret, reports: reports, board: board, mux: http.NewServeMux()}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/daily-report", s.handleReport(false))
	s.mux.HandleFunc("/api/generate-report", s.handleReport(true))
	s.mux.HandleFunc("/api/stats", s.handleStats)
	s.mux.HandleFunc("/api/leaderboard", s.handleLeaderboard)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// authorized valida el Bearer del cron. Con secret vacío dejamos pasar
// (deploy de dev); la comparación es en tiempo constante.
func (s *Server) authorized(r *http.Request) bool {
	if s.secret == "" {
		return true
	}
	got := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	return subtle.ConstantTimeCompare([]byte(got), []byte(s.secret)) == 1
}

func (s *Server) handleReport(withPDF bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if !s.authorized(r) {
			log.Printf("report: unauthorized (missing/invalid bearer)")
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "Unauthorized"})
			return
		}

		sum, err := s.reports.Run(r.Context(), withPDF)
		if err != nil {
			log.Printf("report run: %v", err)
			status := http.StatusInternalServerError
			msg := err.Error()
			if errors.Is(err, service.ErrNoData) {
				msg = "No game data found"
			}
			writeJSON(w, status, map[string]any{"error": msg})
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"stats_summary": map[string]any{
				"total_games":    sum.TotalGames,
				"unique_players": sum.UniquePlayers,
				"avg_score":      math.Round(sum.AvgScore*100) / 100,
			},
			"slack_ok":   sum.SlackOK,
			"email_sent": sum.EmailSent,
			"timestamp":  sum.GeneratedAt.Format(time.RFC3339),
		})
	}
}

// handleStats expone el análisis para el dashboard (CORS abierto).
// ?platform=a,b y ?days=N filtran contra el histórico en DB.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	cors(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var platforms []string
	if raw := r.URL.Query().Get("platform"); raw != "" {
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				platforms = append(platforms, p)
			}
		}
	}
	days := 0
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid days parameter"})
			return
		}
		days = n
	}

	st, err := s.reports.Stats(r.Context(), platforms, days)
	if err != nil {
		log.Printf("stats: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}
	// sin partidas devolvemos null, el front ya lo maneja
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	cors(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.board == nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Redis credentials not configured"})
		return
	}

	// ?variant=7|12 devuelve el agregado de esa variante en vez del
	// tablero aplanado
	if v := r.URL.Query().Get("variant"); v != "" {
		if v != "7" && v != "12" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "variant must be 7 or 12"})
			return
		}
		vs, err := s.board.VariantStats(r.Context(), v)
		if err != nil {
			log.Printf("variant %s: %v", v, err)
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
			return
		}
		w.Header().Set("Cache-Control", "s-maxage=60, stale-while-revalidate=30")
		writeJSON(w, http.StatusOK, vs)
		return
	}

	lb, err := s.board.Leaderboard(r.Context())
	if err != nil {
		log.Printf("leaderboard: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}
	// el dashboard pega seguido, cache corto en el edge
	w.Header().Set("Cache-Control", "s-maxage=60, stale-while-revalidate=30")
	writeJSON(w, http.StatusOK, lb)
}

func cors(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write json: %v", err)
	}
}

func (s *Server) Start(addr string) {
	log.Printf("🌐 HTTP listening on %s", addr)
	if err := http.ListenAndServe(addr, s.mux); err != nil {
		log.Fatalf("http server: %v", err)
	}
}
