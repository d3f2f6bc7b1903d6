package config

import (
	"context"
	"fmt"
	"os"

	"yt-summary-bot/project/infrastructure/secret"
)

// デフォルト値
const (
	defaultOpenAIModel      = "gpt-4o-mini"
	defaultCollectionEvents = "processed_events"
	defaultTasksQueue       = "summarize-queue"
)

// Secret Manager 上のシークレット名（環境変数未設定時のフォールバック先）
const (
	secretNameSlackBotToken = "slack-bot-token"
	secretNameOpenAIAPIKey  = "openai-api-key"
)

// Config は環境変数から読み込まれるアプリケーション設定を表します
type Config struct {
	// Slack API設定
	SlackBotToken      string // 必須。環境変数 or Secret Manager
	SlackSigningSecret string // 空の場合は署名検証を行わない（ローカル実行用）

	// OpenAI 設定
	OpenAIAPIKey string // 必須。環境変数 or Secret Manager
	OpenAIModel  string

	// GCP 基本設定（空の場合は GCP 連携機能を無効化）
	GcpProject string
	Region     string

	// Firestore設定（FirestoreProjectID が空の場合は重複排除を無効化）
	FirestoreProjectID string
	CollectionEvents   string

	// Cloud Tasks設定（TasksAudience が空の場合は同期実行にフォールバック）
	TasksQueue          string
	TasksAudience       string
	TasksServiceAccount string
}

// NewConfig は環境変数から設定を読み込み、Config構造体を返します。
// 必須の認証情報（Slackトークン・OpenAI APIキー）は環境変数を優先し、
// 未設定で GCP_PROJECT がある場合は Secret Manager から取得します
func NewConfig(ctx context.Context) (*Config, error) {
	gcpProject := os.Getenv("GCP_PROJECT")

	slackBotToken, err := getCredential(ctx, "SLACK_BOT_TOKEN", gcpProject, secretNameSlackBotToken)
	if err != nil {
		return nil, fmt.Errorf("SLACK_BOT_TOKEN 取得失敗: %w", err)
	}

	openAIAPIKey, err := getCredential(ctx, "OPENAI_API_KEY", gcpProject, secretNameOpenAIAPIKey)
	if err != nil {
		return nil, fmt.Errorf("OPENAI_API_KEY 取得失敗: %w", err)
	}

	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = defaultOpenAIModel // デフォルト値
	}

	eventsCol := os.Getenv("FS_COLLECTION_EVENTS")
	if eventsCol == "" {
		eventsCol = defaultCollectionEvents
	}

	tasksQueue := os.Getenv("TASKS_QUEUE")
	if tasksQueue == "" {
		tasksQueue = defaultTasksQueue
	}

	config := &Config{
		// Slack API設定
		SlackBotToken:      slackBotToken,
		SlackSigningSecret: os.Getenv("SLACK_SIGNING_SECRET"),

		// OpenAI 設定
		OpenAIAPIKey: openAIAPIKey,
		OpenAIModel:  model,

		// GCP 基本設定
		GcpProject: gcpProject,
		Region:     os.Getenv("REGION"),

		// Firestore設定
		FirestoreProjectID: os.Getenv("FIRESTORE_PROJECT_ID"),
		CollectionEvents:   eventsCol,

		// Cloud Tasks設定
		TasksQueue:          tasksQueue,
		TasksAudience:       os.Getenv("TASKS_AUDIENCE"),
		TasksServiceAccount: os.Getenv("TASKS_SERVICE_ACCOUNT"),
	}

	return config, nil
}

// getCredential は必須の認証情報を取得します。
// 環境変数を優先し、未設定なら Secret Manager へフォールバックします
func getCredential(ctx context.Context, envKey, gcpProject, secretName string) (string, error) {
	if value := os.Getenv(envKey); value != "" {
		return value, nil
	}

	if gcpProject == "" {
		return "", fmt.Errorf("環境変数 %s が設定されていません（GCP_PROJECT 未設定のため Secret Manager も使用不可）", envKey)
	}

	mgr, err := secret.NewManager(ctx, gcpProject)
	if err != nil {
		return "", err
	}
	defer mgr.Close()

	return mgr.GetSecret(ctx, secretName)
}
