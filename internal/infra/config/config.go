package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/robfig/cron/v3"
)

type Config struct {
	SlackToken      string
	ChannelID       string // canal con las notificaciones del juego
	ReportChannelID string // dónde publicamos el reporte; default ChannelID
	CronSecret      string // bearer para los endpoints del cron (vacío = abierto)
	HTTPAddr        string // opcional, default :8080
	ReportCron      string // cron UTC de 5 campos, default 9:00
	DashboardURL    string
	MaxScore        int // scores mayores se descartan como basura

	DatabaseURL string // opcional: sin DB no persistimos histórico

	// mail (opcionales; los tres o ninguno)
	SendGridKey string
	EmailFrom   string
	EmailTo     string

	// leaderboard mobee-8 (opcionales)
	RedisURL   string
	RedisToken string
}

func Load() Config {
	get := func(k string, req bool) string {
		v := os.Getenv(k)
		if v == "" && req {
			log.Fatalf("faltante env %s", k)
		}
		return v
	}

	cfg := Config{
		SlackToken:      get("SLACK_TOKEN", true),
		ChannelID:       get("CHANNEL_ID", true),
		ReportChannelID: get("REPORT_CHANNEL_ID", false),
		CronSecret:      get("CRON_SECRET", false),
		HTTPAddr:        get("HTTP_ADDR", false),
		ReportCron:      get("REPORT_CRON", false),
		DashboardURL:    get("DASHBOARD_URL", false),
		DatabaseURL:     get("DATABASE_URL", false),
		SendGridKey:     get("SENDGRID_API_KEY", false),
		EmailFrom:       get("EMAIL_FROM", false),
		EmailTo:         get("EMAIL_TO", false),
		RedisURL:        get("UPSTASH_REDIS_REST_URL", false),
		RedisToken:      get("UPSTASH_REDIS_REST_TOKEN", false),
	}
	if cfg.ReportChannelID == "" {
		cfg.ReportChannelID = cfg.ChannelID
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if cfg.ReportCron == "" {
		cfg.ReportCron = "0 9 * * *"
	}
	if err := ValidateCron(cfg.ReportCron); err != nil {
		log.Fatalf("REPORT_CRON inválido: %v", err)
	}

	cfg.MaxScore = 30
	if v := os.Getenv("MAX_SCORE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			log.Fatalf("MAX_SCORE inválido: %q", v)
		}
		cfg.MaxScore = n
	}
	return cfg
}

// MailEnabled dice si hay credenciales completas para mandar el reporte
// por mail.
func (c Config) MailEnabled() bool {
	return c.SendGridKey != "" && c.EmailFrom != "" && c.EmailTo != ""
}

func (c Config) RedisEnabled() bool {
	return c.RedisURL != "" && c.RedisToken != ""
}

// ValidateCron valida una expresión cron estándar de 5 campos (UTC).
func ValidateCron(expr string) error {
	if _, err := cron.ParseStandard(expr); err != nil {
		return fmt.Errorf("cron %q: %w", expr, err)
	}
	return nil
}
