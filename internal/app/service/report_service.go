package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/trippplecard/mobee-stats/internal/app/stats"
	"github.com/trippplecard/mobee-stats/internal/domain"
	"github.com/trippplecard/mobee-stats/internal/infra/storage"
)

var (
	ErrNoData  = errors.New("no game data found")
	ErrNeedsDB = errors.New("stats filters require a database")
)

type ReportConfig struct {
	ChannelID       string // canal de notificaciones del juego
	ReportChannelID string // canal donde publicamos el reporte
	DashboardURL    string
	MaxScore        int
}

type ReportService struct {
	chat ChatAPI
	mail Mailer // opcional
	pdf  PDFRenderer
	// los stores son opcionales: en los lambdas podemos correr sin DB
	games   GameStore
	reports ReportStore
	cfg     ReportConfig
}

func NewReportService(chat ChatAPI, pdf PDFRenderer, cfg ReportConfig) *ReportService {
	return &ReportService{chat: chat, pdf: pdf, cfg: cfg}
}

func (s *ReportService) WithMailer(m Mailer) *ReportService {
	s.mail = m
	return s
}

func (s *ReportService) WithStores(games GameStore, reports ReportStore) *ReportService {
	s.games = games
	s.reports = reports
	return s
}

// Summary es lo que devuelve una corrida del reporte (y lo que expone
// el endpoint del cron).
type Summary struct {
	TotalGames    int       `json:"total_games"`
	UniquePlayers int       `json:"unique_players"`
	AvgScore      float64   `json:"avg_score"`
	SlackOK       bool      `json:"-"`
	EmailSent     bool      `json:"-"`
	GeneratedAt   time.Time `json:"-"`
}

// Analyze baja el historial y calcula stats, sin entregar nada.
// Es el corazón de /api/stats.
func (s *ReportService) Analyze(ctx context.Context) (*domain.Stats, []domain.Game, error) {
	msgs, err := s.chat.FetchHistory(ctx, s.cfg.ChannelID)
	if err != nil {
		return nil, nil, err
	}
	games := stats.ParseMessages(msgs, s.cfg.MaxScore)
	return stats.Analyze(games), games, nil
}

// Stats responde las consultas del dashboard. Con filtros (plataformas
// o ventana de días) lee del histórico en DB; sin filtros analiza el
// canal en vivo y, si Slack falla, cae al último snapshot guardado.
func (s *ReportService) Stats(ctx context.Context, platforms []string, days int) (*domain.Stats, error) {
	if len(platforms) > 0 || days > 0 {
		if s.games == nil {
			return nil, ErrNeedsDB
		}
		var (
			games []domain.Game
			err   error
		)
		if len(platforms) > 0 {
			games, err = s.games.ListByPlatforms(ctx, platforms)
		} else {
			games, err = s.games.ListSince(ctx, time.Now().UTC().AddDate(0, 0, -days))
		}
		if err != nil {
			return nil, err
		}
		return stats.Analyze(games), nil
	}

	st, _, err := s.Analyze(ctx)
	if err != nil {
		if s.reports != nil {
			if snap, serr := s.reports.LatestSnapshot(ctx); serr == nil {
				log.Printf("historial de Slack falló (%v), sirviendo snapshot", err)
				return snap, nil
			}
		}
		return nil, err
	}
	return st, nil
}

// Run ejecuta el pipeline completo: fetch → parse → analyze →
// persistir → entregar. Con withPDF también sube el PDF al canal y lo
// manda por mail si hay mailer configurado.
func (s *ReportService) Run(ctx context.Context, withPDF bool) (*Summary, error) {
	started := time.Now().UTC()

	st, games, err := s.Analyze(ctx)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, ErrNoData
	}
	log.Printf("reporte: %d partidas, %d jugadores", st.TotalGames, st.UniquePlayers)

	if s.games != nil {
		if n, err := s.games.InsertBatch(ctx, games); err != nil {
			log.Printf("persistencia de partidas: %v", err)
		} else if n > 0 {
			log.Printf("persistencia: %d partidas nuevas", n)
		}
	}
	if s.reports != nil {
		if err := s.reports.SaveSnapshot(ctx, st); err != nil {
			log.Printf("snapshot: %v", err)
		}
	}

	sum := &Summary{
		TotalGames:    st.TotalGames,
		UniquePlayers: st.UniquePlayers,
		AvgScore:      st.AvgScore,
		GeneratedAt:   started,
	}

	if err := s.chat.PostReport(ctx, s.cfg.ReportChannelID, st, s.cfg.DashboardURL); err != nil {
		return sum, err
	}
	sum.SlackOK = true

	if withPDF {
		pdfBytes, err := s.pdf.Render(st)
		if err != nil {
			return sum, err
		}
		filename := fmt.Sprintf("mobee_stats_report_%s.pdf", started.Format("2006-01-02"))
		comment := fmt.Sprintf(":bar_chart: *Mobee Stats Report*\n\n*Total*: %d games, %d players, top score %d",
			st.TotalGames, st.UniquePlayers, st.MaxScore)
		if err := s.chat.UploadPDF(ctx, s.cfg.ReportChannelID, filename, pdfBytes, comment); err != nil {
			return sum, err
		}

		if s.mail != nil {
			if err := s.mail.SendReport(ctx, st, pdfBytes, started); err != nil {
				// el mail no voltea la corrida
				log.Printf("email: %v", err)
			} else {
				sum.EmailSent = true
			}
		}
	}

	if s.reports != nil {
		err := s.reports.LogRun(ctx, storage.ReportRun{
			StartedAt:     started,
			FinishedAt:    time.Now().UTC(),
			TotalGames:    st.TotalGames,
			UniquePlayers: st.UniquePlayers,
			AvgScore:      st.AvgScore,
			SlackOK:       sum.SlackOK,
			EmailSent:     sum.EmailSent,
			PDFUploaded:   withPDF,
		})
		if err != nil {
			log.Printf("log de corrida: %v", err)
		}
	}
	return sum, nil
}
