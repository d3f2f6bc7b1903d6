package domain

import (
	"fmt"
	"strings"
)

// 処理済み Slack イベントの重複排除レコード
type ProcessedEvent struct {
	// EventID は Slack Events API のイベントID（重複排除キー）
	EventID string

	// ChannelID はイベントが発生したチャンネルのID
	ChannelID string

	// UserID はメンションを投稿したユーザーのID
	UserID string

	// ProcessedAt はレコードの作成日時（Unix秒）
	ProcessedAt int64

	// ExpiresAt は重複排除ウィンドウの期限（Unix秒）。
	// Firestore の TTL ポリシーがこのフィールドを見て自動削除します
	ExpiresAt int64
}

// Validate はProcessedEventの必須項目を検証します
func (e ProcessedEvent) Validate() error {
	if strings.TrimSpace(e.EventID) == "" {
		return fmt.Errorf("%w: EventIDは必須項目です", ErrInvalid)
	}
	if e.ProcessedAt <= 0 {
		return fmt.Errorf("%w: ProcessedAtは0より大きい必要があります", ErrInvalid)
	}
	if e.ExpiresAt < e.ProcessedAt {
		return fmt.Errorf("%w: ExpiresAtはProcessedAt以降である必要があります", ErrInvalid)
	}
	return nil
}
