package slack

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"
)

// SlackClient は service.SlackPort の Slack SDK 実装です。
// 単一ワークスペース用に固定の Bot トークンでクライアントを保持します
type SlackClient struct {
	cli *slack.Client
}

// NewSlackClient は Slack クライアントを初期化します
func NewSlackClient(botToken string) *SlackClient {
	return &SlackClient{
		cli: slack.New(botToken),
	}
}

// PostMessage は指定チャンネルにメッセージを投稿します
func (sc *SlackClient) PostMessage(ctx context.Context, channelID, text string) error {
	_, _, err := sc.cli.PostMessageContext(
		ctx,
		channelID,
		slack.MsgOptionText(text, false),
	)
	if err != nil {
		return fmt.Errorf("slack: メッセージ投稿失敗 (channel=%s): %w", channelID, err)
	}

	return nil
}
