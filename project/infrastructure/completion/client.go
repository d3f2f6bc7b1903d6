package completion

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// 補完リクエストの固定パラメータ。
// 出力トークンを制限し、低温度で決定的な要約を優先します
const (
	maxOutputTokens = 2000
	temperature     = 0.3
)

// Client は summarize.CompletionPort の OpenAI API 実装です
type Client struct {
	cli   openai.Client
	model string
}

// NewClient は OpenAI 補完クライアントを初期化します
func NewClient(apiKey, model string) *Client {
	return &Client{
		cli:   openai.NewClient(option.WithAPIKey(apiKey)),
		model: model,
	}
}

// Complete はプロンプトを送信して生成テキストを返します
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.cli.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		MaxTokens:   openai.Int(maxOutputTokens),
		Temperature: openai.Float(temperature),
	})
	if err != nil {
		return "", fmt.Errorf("openai: 補完リクエスト失敗 (model=%s): %w", c.model, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: 補完レスポンスに選択肢がありません (model=%s)", c.model)
	}

	return resp.Choices[0].Message.Content, nil
}
