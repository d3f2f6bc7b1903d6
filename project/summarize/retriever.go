package summarize

import (
	"context"
	"strings"
	"unicode/utf8"

	"yt-summary-bot/project/domain"
)

// MinTranscriptLength は要約対象として受理する字幕の最小文字数です
const MinTranscriptLength = 50

// TranscriptPort は字幕取得のポートです
type TranscriptPort interface {
	// Fetch は動画ID（またはURL）を指定して字幕断片を出現順で返します
	Fetch(ctx context.Context, urlOrID string) ([]string, error)
}

// Retriever は2段階フォールバック付きの字幕取得を担当します
type Retriever struct {
	transcripts TranscriptPort
}

// NewRetriever は Retriever のインスタンスを作成します
func NewRetriever(transcripts TranscriptPort) *Retriever {
	return &Retriever{transcripts: transcripts}
}

// Retrieve は字幕テキストを取得します。
// 手順（短絡評価）:
//  1. 入力をそのまま使って取得を試行
//  2. 失敗したら入力から動画IDを抽出。抽出できなければ domain.ErrInvalidURLFormat
//  3. 裸のIDで再試行
//  4. 両方失敗なら domain.ErrNoCaptions
//  5. 断片を半角スペースで結合し、50文字未満なら domain.ErrTranscriptTooShort
func (r *Retriever) Retrieve(ctx context.Context, urlOrID string) (string, error) {
	fragments := r.tryFetch(ctx, urlOrID)

	if len(fragments) == 0 {
		videoID, ok := ExtractVideoID(urlOrID)
		if !ok {
			return "", domain.ErrInvalidURLFormat
		}
		fragments = r.tryFetch(ctx, videoID)
	}

	if len(fragments) == 0 {
		return "", domain.ErrNoCaptions
	}

	joined := strings.Join(fragments, " ")
	if utf8.RuneCountInString(joined) < MinTranscriptLength {
		return "", domain.ErrTranscriptTooShort
	}

	return joined, nil
}

// tryFetch は1回の取得試行を行います。
// 依存先のエラーは「結果なし」として扱い、呼び出し元へ伝播させません。
// これにより一時的な取得失敗があってもフォールバックが継続できます
func (r *Retriever) tryFetch(ctx context.Context, urlOrID string) []string {
	fragments, err := r.transcripts.Fetch(ctx, urlOrID)
	if err != nil {
		return nil
	}
	return fragments
}
