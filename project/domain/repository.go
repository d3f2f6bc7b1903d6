package domain

import (
	"context"
)

// EventRepository は処理済みイベントの重複排除レコードの永続化を担当します
type EventRepository interface {
	// Save は処理済みイベントレコードを保存します
	// 同一 EventID の既存レコードがある場合は上書きします
	// バリデーションエラー時は domain.ErrInvalid を返します
	Save(ctx context.Context, e *ProcessedEvent) error

	// Find は指定イベントIDのレコードを取得します
	// 存在しない場合は domain.ErrNotFound を返します
	Find(ctx context.Context, eventID string) (*ProcessedEvent, error)
}
