package summarize

import (
	"context"
	"errors"
	"fmt"
	"time"

	"yt-summary-bot/project/domain"
)

// パイプラインの終端メッセージ。
// どの分岐もユーザー向け文字列を返し、パイプラインはエラーを外へ出しません
const (
	msgInvalidURL = "❌ Invalid YouTube URL format. Please send a link like https://www.youtube.com/watch?v=... or https://youtu.be/..."
	msgNoCaptions = "Could not retrieve transcript for this video. The video might not have captions available."
	msgTooShort   = "⚠️ The transcript of this video is too short to summarize."
)

// reportTemplate は要約レポートの整形テンプレートです
// （ヘッダー: 元URL とタイムスタンプ、本文、フッター）
const reportTemplate = `📺 *YouTube Video Summary*
🔗 %s
🕒 Generated: %s

%s

_Summary generated automatically from the video transcript._`

// Pipeline は 字幕取得 → 要約 → レポート整形 を統括します
type Pipeline struct {
	retriever  *Retriever
	summarizer *Summarizer
	now        func() time.Time
}

// NewPipeline は Pipeline のインスタンスを作成します
func NewPipeline(retriever *Retriever, summarizer *Summarizer) *Pipeline {
	return &Pipeline{
		retriever:  retriever,
		summarizer: summarizer,
		now:        time.Now,
	}
}

// Process は検知されたURLテキストを処理し、投稿用のレポート文字列を返します。
// すべての終端分岐がユーザー向け文字列になるため、呼び出し側は常に
// 何かしらのメッセージを投稿できます
func (p *Pipeline) Process(ctx context.Context, urlText string) string {
	transcript, err := p.retriever.Retrieve(ctx, urlText)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidURLFormat):
			return msgInvalidURL
		case errors.Is(err, domain.ErrNoCaptions):
			return msgNoCaptions
		case errors.Is(err, domain.ErrTranscriptTooShort):
			return msgTooShort
		default:
			return fmt.Sprintf("⚠️ Failed to retrieve the transcript: %v", err)
		}
	}

	summary, err := p.summarizer.Summarize(ctx, transcript, urlText)
	if err != nil {
		// 要約失敗はレポート形式に包まず、失敗専用のテンプレートで返す
		return fmt.Sprintf("⚠️ Failed to generate a summary for this video: %v", err)
	}

	timestamp := p.now().UTC().Format(time.RFC3339)
	return fmt.Sprintf(reportTemplate, urlText, timestamp, summary)
}
