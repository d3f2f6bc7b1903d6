package service

import "context"

// SlackPort は Slack API 呼び出しのポートです
type SlackPort interface {
	// PostMessage は指定チャンネルにメッセージを投稿します
	PostMessage(ctx context.Context, channelID, text string) error
}

// TaskPort はタスクキューへのジョブ登録のポートです
type TaskPort interface {
	// EnqueueSummarize は要約ジョブをキューに登録します
	EnqueueSummarize(ctx context.Context, payload *TaskPayload) error
}
