package service

// MentionEvent はSlackメンションイベントを表します
type MentionEvent struct {
	// EventID は Slack Events API のイベントID（重複排除に使用）
	EventID string

	// ChannelID はメンションが投稿されたチャンネルのID
	ChannelID string

	// UserID はメンションを投稿したユーザーID（使い方案内の宛先に使用）
	UserID string

	// Text はメッセージのテキスト（URL検知に使用）
	Text string

	// NowUnix はイベント発生時刻（Unix秒）
	NowUnix int64
}

// TaskPayload は要約タスクのジョブペイロードを表します
type TaskPayload struct {
	// EventID は元イベントのID
	EventID string `json:"event_id"`

	// ChannelID はレポート投稿先のチャンネルID
	ChannelID string `json:"channel_id"`

	// UserID はメンションを投稿したユーザーID
	UserID string `json:"user_id"`

	// VideoURL はメンションから検知したYouTube URL
	VideoURL string `json:"video_url"`
}
