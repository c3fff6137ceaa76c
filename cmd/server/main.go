package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/joho/godotenv"

	"github.com/trippplecard/mobee-stats/internal/adapters/httpapi"
	"github.com/trippplecard/mobee-stats/internal/adapters/sendgridmail"
	slackapi "github.com/trippplecard/mobee-stats/internal/adapters/slack"
	"github.com/trippplecard/mobee-stats/internal/adapters/upstash"
	"github.com/trippplecard/mobee-stats/internal/app/service"
	"github.com/trippplecard/mobee-stats/internal/infra/config"
	"github.com/trippplecard/mobee-stats/internal/infra/storage"
	"github.com/trippplecard/mobee-stats/internal/report"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	_ = godotenv.Load()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg := config.Load()

	chat := slackapi.New(cfg.SlackToken)

	reportSvc := service.NewReportService(chat, report.NewRenderer(), service.ReportConfig{
		ChannelID:       cfg.ChannelID,
		ReportChannelID: cfg.ReportChannelID,
		DashboardURL:    cfg.DashboardURL,
		MaxScore:        cfg.MaxScore,
	})

	if cfg.MailEnabled() {
		to := strings.Split(cfg.EmailTo, ",")
		for i := range to {
			to[i] = strings.TrimSpace(to[i])
		}
		reportSvc.WithMailer(sendgridmail.New(cfg.SendGridKey, cfg.EmailFrom, to))
		log.Printf("✉️  mail habilitado (%d destinatarios)", len(to))
	}

	// DB opcional: sin DATABASE_URL corremos sin histórico
	var gameRepo *storage.GameRepo
	var reportRepo *storage.ReportRepo
	if cfg.DatabaseURL != "" {
		db, err := storage.Open(context.Background(), cfg.DatabaseURL)
		if err != nil {
			log.Fatal(err)
		}
		defer db.Close()
		if err := storage.Migrate(db); err != nil {
			log.Fatal("migrate:", err)
		}
		log.Println("✅ DB lista y migrada")

		gameRepo = storage.NewGameRepo(db)
		reportRepo = storage.NewReportRepo(db)
		reportSvc.WithStores(gameRepo, reportRepo)
	}

	var boardSvc *service.LeaderboardService
	if cfg.RedisEnabled() {
		boardSvc = service.NewLeaderboardService(upstash.New(cfg.RedisURL, cfg.RedisToken))
		log.Println("✅ leaderboard mobee-8 habilitado")
	}

	web := httpapi.New(cfg.CronSecret, reportSvc, boardSvc)
	go web.Start(cfg.HTTPAddr)

	// Cron del reporte diario (UTC) + limpieza del histórico
	sched := gocron.NewScheduler(time.UTC)
	_, err := sched.Cron(cfg.ReportCron).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := reportSvc.Run(ctx, true); err != nil {
			log.Printf("reporte programado: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("cron %q: %v", cfg.ReportCron, err)
	}
	if gameRepo != nil {
		_, _ = sched.Every(24).Hours().Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			n, err := gameRepo.Prune(ctx, 180*24*time.Hour)
			if err != nil {
				log.Printf("prune games: %v", err)
			} else if n > 0 {
				log.Printf("🧹 %d partidas viejas borradas", n)
			}
			if _, err := reportRepo.PruneRuns(ctx, 90*24*time.Hour); err != nil {
				log.Printf("prune runs: %v", err)
			}
		})
	}
	sched.StartAsync()
	log.Printf("⏰ reporte programado: %q (UTC)", cfg.ReportCron)

	// Esperar señal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-stop
}
