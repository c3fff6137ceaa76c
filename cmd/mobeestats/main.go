package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	slackapi "github.com/trippplecard/mobee-stats/internal/adapters/slack"
	"github.com/trippplecard/mobee-stats/internal/app/stats"
	"github.com/trippplecard/mobee-stats/internal/infra/config"
	"github.com/trippplecard/mobee-stats/internal/report"
)

const usage = `uso: mobeestats <directorio-salida>

Baja el historial del canal, calcula las estadísticas y escribe en el
directorio: mobee_games_raw.json, mobee_stats.json y el reporte PDF.
Requiere SLACK_TOKEN y CHANNEL_ID en el entorno (o en .env).`

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

// run valida los argumentos; el directorio de salida es obligatorio.
func run(args []string, stderr io.Writer) int {
	if len(args) < 1 {
		fmt.Fprintln(stderr, usage)
		return 1
	}
	generate(args[0])
	return 0
}

func generate(outDir string) {
	_ = godotenv.Load()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg := config.Load()

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		log.Fatalf("creando %s: %v", outDir, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	chat := slackapi.New(cfg.SlackToken)
	msgs, err := chat.FetchHistory(ctx, cfg.ChannelID)
	if err != nil {
		log.Fatalf("historial: %v", err)
	}
	log.Printf("📥 %d mensajes bajados", len(msgs))

	games := stats.ParseMessages(msgs, cfg.MaxScore)
	if len(games) == 0 {
		log.Fatal("sin partidas en el canal, nada que reportar")
	}
	st := stats.Analyze(games)

	fmt.Println(stats.Format(st))

	writeJSON(filepath.Join(outDir, "mobee_games_raw.json"), games)
	writeJSON(filepath.Join(outDir, "mobee_stats.json"), st)

	pdf, err := report.NewRenderer().Render(st)
	if err != nil {
		log.Fatalf("pdf: %v", err)
	}
	pdfPath := filepath.Join(outDir, "mobee_stats_report.pdf")
	if err := os.WriteFile(pdfPath, pdf, 0o644); err != nil {
		log.Fatalf("escribiendo %s: %v", pdfPath, err)
	}
	log.Printf("✅ reporte en %s (%d partidas)", outDir, len(games))
}

func writeJSON(path string, v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("serializando %s: %v", path, err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		log.Fatalf("escribiendo %s: %v", path, err)
	}
}
