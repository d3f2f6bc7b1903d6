package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"yt-summary-bot/project/domain"
	"yt-summary-bot/project/handler"
	"yt-summary-bot/project/infrastructure/completion"
	"yt-summary-bot/project/infrastructure/config"
	"yt-summary-bot/project/infrastructure/slack"
	"yt-summary-bot/project/infrastructure/store"
	"yt-summary-bot/project/infrastructure/tasks"
	"yt-summary-bot/project/infrastructure/transcript"
	"yt-summary-bot/project/service"
	"yt-summary-bot/project/summarize"
)

func main() {
	ctx := context.Background()

	// 1. 設定を読み込む
	cfg, err := config.NewConfig(ctx)
	if err != nil {
		log.Fatalf("設定読み込み失敗: %v", err)
	}

	// 2. 依存関係を初期化
	// Slack API ポート実装
	slackClient := slack.NewSlackClient(cfg.SlackBotToken)

	// 字幕取得クライアント
	transcriptClient := transcript.NewClient()

	// OpenAI 補完クライアント
	completionClient := completion.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)

	// Firestore 重複排除リポジトリ（未設定なら無効化）
	var eventRepo domain.EventRepository
	if cfg.FirestoreProjectID != "" {
		repo, err := store.NewFirestoreRepo(ctx, cfg)
		if err != nil {
			log.Fatalf("Firestore 初期化失敗: %v", err)
		}
		defer repo.Close()
		eventRepo = repo
	} else {
		log.Printf("FIRESTORE_PROJECT_ID 未設定: イベント重複排除を無効化します")
	}

	// Cloud Tasks ポート実装（未設定なら同期実行にフォールバック）
	var taskPort service.TaskPort
	if cfg.TasksAudience != "" {
		tasksClient, err := tasks.NewCloudTasksClient(ctx, cfg)
		if err != nil {
			log.Fatalf("Cloud Tasks クライアント初期化失敗: %v", err)
		}
		defer tasksClient.Close()
		taskPort = tasksClient
	} else {
		log.Printf("TASKS_AUDIENCE 未設定: 要約を Webhook 内で同期実行します")
	}

	// 3. 要約パイプラインとサービス層を初期化
	pipeline := summarize.NewPipeline(
		summarize.NewRetriever(transcriptClient),
		summarize.NewSummarizer(completionClient),
	)
	summaryService := service.NewSummaryService(eventRepo, slackClient, taskPort, pipeline)

	// 4. HTTP ハンドラーを設定
	mux := http.NewServeMux()

	// Slack イベント受信
	mux.Handle("/slack/events", handler.NewEventsHandler(cfg.SlackSigningSecret, summaryService))

	// Cloud Tasks からのコールバック
	mux.Handle("/tasks/summarize", handler.NewSummarizeHandler(summaryService))

	// ヘルスチェック
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// 5. サーバー起動
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	addr := fmt.Sprintf(":%s", port)
	log.Printf("サーバー起動: %s", addr)

	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		log.Fatalf("サーバーエラー: %v", err)
	}
}
