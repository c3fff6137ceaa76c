package main

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/trippplecard/mobee-stats/internal/adapters/sendgridmail"
	slackapi "github.com/trippplecard/mobee-stats/internal/adapters/slack"
	"github.com/trippplecard/mobee-stats/internal/app/service"
	"github.com/trippplecard/mobee-stats/internal/infra/storage"
	"github.com/trippplecard/mobee-stats/internal/report"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var (
	secret = os.Getenv("CRON_SECRET")
	svc    *service.ReportService
)

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func init() {
	maxScore := 30
	if v := os.Getenv("MAX_SCORE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			maxScore = n
		}
	}
	channel := os.Getenv("CHANNEL_ID")
	svc = service.NewReportService(
		slackapi.New(os.Getenv("SLACK_TOKEN")),
		report.NewRenderer(),
		service.ReportConfig{
			ChannelID:       channel,
			ReportChannelID: getenv("REPORT_CHANNEL_ID", channel),
			DashboardURL:    os.Getenv("DASHBOARD_URL"),
			MaxScore:        maxScore,
		},
	)

	if key, from, to := os.Getenv("SENDGRID_API_KEY"), os.Getenv("EMAIL_FROM"), os.Getenv("EMAIL_TO"); key != "" && from != "" && to != "" {
		addrs := strings.Split(to, ",")
		for i := range addrs {
			addrs[i] = strings.TrimSpace(addrs[i])
		}
		svc.WithMailer(sendgridmail.New(key, from, addrs))
	}

	// DB opcional (sin DATABASE_URL igual generamos el reporte)
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		fmt.Println("DATABASE_URL empty; running without DB")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	db, err := storage.Open(ctx, dsn)
	if err != nil {
		fmt.Println("db open:", err)
		return
	}
	if err := storage.Migrate(db); err != nil {
		fmt.Println("migrate:", err)
		return
	}
	svc.WithStores(storage.NewGameRepo(db), storage.NewReportRepo(db))
}

func authorized(req events.APIGatewayV2HTTPRequest) bool {
	if secret == "" {
		return true
	}
	auth := req.Headers["authorization"]
	if auth == "" {
		auth = req.Headers["Authorization"]
	}
	got := strings.TrimPrefix(auth, "Bearer ")
	return subtle.ConstantTimeCompare([]byte(got), []byte(secret)) == 1
}

func respond(status int, body any) events.APIGatewayV2HTTPResponse {
	b, _ := json.Marshal(body)
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(b),
	}
}

func handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	fmt.Printf("report hit | path=%s method=%s ip=%s\n",
		req.RawPath, req.RequestContext.HTTP.Method, req.RequestContext.HTTP.SourceIP)

	if !authorized(req) {
		fmt.Println("auth: unauthorized (missing/invalid bearer)")
		return respond(401, map[string]any{"error": "Unauthorized"}), nil
	}

	// /api/generate-report adjunta el PDF; /api/daily-report solo bloques
	withPDF := strings.Contains(req.RawPath, "generate-report")

	sum, err := svc.Run(ctx, withPDF)
	if err != nil {
		fmt.Println("report run:", err)
		msg := err.Error()
		if errors.Is(err, service.ErrNoData) {
			msg = "No game data found"
		}
		return respond(500, map[string]any{"error": msg}), nil
	}

	return respond(200, map[string]any{
		"success": true,
		"stats_summary": map[string]any{
			"total_games":    sum.TotalGames,
			"unique_players": sum.UniquePlayers,
			"avg_score":      math.Round(sum.AvgScore*100) / 100,
		},
		"slack_ok":   sum.SlackOK,
		"email_sent": sum.EmailSent,
		"timestamp":  sum.GeneratedAt.Format(time.RFC3339),
	}), nil
}

func main() { lambda.Start(handler) }
