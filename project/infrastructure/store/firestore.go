package store

import (
	"context"
	"fmt"

	"yt-summary-bot/project/domain"
	"yt-summary-bot/project/infrastructure/config"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// isNotFound は Firestore の NotFound エラーを判定するヘルパー関数です
func isNotFound(err error) bool {
	st, ok := status.FromError(err)
	return ok && st.Code() == codes.NotFound
}

// FirestoreRepo は domain.EventRepository の Firestore 実装です。
// Webhook の at-least-once 配送に対する重複排除レコードを保持します
type FirestoreRepo struct {
	cli       *firestore.Client
	eventsCol string
}

// NewFirestoreRepo は Firestore リポジトリを初期化します
func NewFirestoreRepo(ctx context.Context, cfg *config.Config) (*FirestoreRepo, error) {
	client, err := firestore.NewClient(ctx, cfg.FirestoreProjectID)
	if err != nil {
		return nil, fmt.Errorf("firestore: クライアント初期化失敗: %w", err)
	}

	return &FirestoreRepo{
		cli:       client,
		eventsCol: cfg.CollectionEvents,
	}, nil
}

// eventDoc は ProcessedEvent の Firestore ドキュメント表現です。
// expires_at は TTL ポリシーの対象フィールド
type eventDoc struct {
	EventID     string `firestore:"event_id"`
	ChannelID   string `firestore:"channel_id"`
	UserID      string `firestore:"user_id"`
	ProcessedAt int64  `firestore:"processed_at"`
	ExpiresAt   int64  `firestore:"expires_at"`
}

// Save は処理済みイベントレコードを保存します（新規作成または上書き）
func (repo *FirestoreRepo) Save(ctx context.Context, e *domain.ProcessedEvent) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("firestore: Save検証失敗: %w", err)
	}

	docRef := repo.cli.Collection(repo.eventsCol).Doc(e.EventID)

	doc := eventDoc{
		EventID:     e.EventID,
		ChannelID:   e.ChannelID,
		UserID:      e.UserID,
		ProcessedAt: e.ProcessedAt,
		ExpiresAt:   e.ExpiresAt,
	}

	if _, err := docRef.Set(ctx, doc); err != nil {
		return fmt.Errorf("firestore: イベント保存失敗 (eventID=%s): %w", e.EventID, err)
	}

	return nil
}

// Find は指定イベントIDの処理済みレコードを取得します
func (repo *FirestoreRepo) Find(ctx context.Context, eventID string) (*domain.ProcessedEvent, error) {
	docRef := repo.cli.Collection(repo.eventsCol).Doc(eventID)

	snapshot, err := docRef.Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("firestore: イベント取得失敗 (eventID=%s): %w", eventID, err)
	}

	var doc eventDoc
	if err := snapshot.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore: イベント構造体変換失敗: %w", err)
	}

	return &domain.ProcessedEvent{
		EventID:     doc.EventID,
		ChannelID:   doc.ChannelID,
		UserID:      doc.UserID,
		ProcessedAt: doc.ProcessedAt,
		ExpiresAt:   doc.ExpiresAt,
	}, nil
}

// Close は Firestore クライアントを閉じます
func (repo *FirestoreRepo) Close() error {
	if repo.cli != nil {
		return repo.cli.Close()
	}
	return nil
}
