package summarize

import (
	"context"
	"fmt"
	"strings"
)

// CompletionPort は言語モデル補完サービス呼び出しのポートです
type CompletionPort interface {
	// Complete はプロンプトを送信し、生成されたテキストを返します
	Complete(ctx context.Context, prompt string) (string, error)
}

// summaryPromptTemplate は要約プロンプトの固定テンプレートです。
// 構造化された markdown 出力（見出し・箇条書き・実践ポイント・
// 言及リソース・まとめ）を指示します
const summaryPromptTemplate = `You are a helpful assistant that summarizes YouTube videos from their transcripts.

Summarize the following video transcript as a structured markdown document with:
- A short heading describing the topic
- Bullet points covering the main points
- A "Practical Takeaways" section with actionable advice
- A "Resources Mentioned" section listing any tools, books, or links referenced (omit if none)
- A one-paragraph conclusion

Video URL: %s

Transcript:
%s`

// Summarizer は字幕テキストから markdown 要約を生成します
type Summarizer struct {
	completion CompletionPort
}

// NewSummarizer は Summarizer のインスタンスを作成します
func NewSummarizer(completion CompletionPort) *Summarizer {
	return &Summarizer{completion: completion}
}

// Summarize は固定テンプレートのプロンプトを組み立てて補完サービスへ送信します。
// 依存先の失敗はエラーとして返します（成功値へのエラー文字列埋め込みはしない）
func (s *Summarizer) Summarize(ctx context.Context, transcript, sourceURL string) (string, error) {
	prompt := fmt.Sprintf(summaryPromptTemplate, sourceURL, transcript)

	text, err := s.completion.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("summarize: 要約生成失敗: %w", err)
	}

	summary := stripFences(text)
	if summary == "" {
		return "", fmt.Errorf("summarize: 補完サービスが空の応答を返しました")
	}

	return summary, nil
}

// stripFences はモデル出力から markdown コードフェンスを除去します
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```markdown")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
