package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"yt-summary-bot/project/domain"
	"yt-summary-bot/project/summarize"
)

// DedupWindow は同一イベントIDの再処理をスキップする期間です
const DedupWindow = 24 * time.Hour

// ユーザー向け定型メッセージ
const (
	msgUsageHint  = "<@%s> Please provide a YouTube URL to summarize!"
	msgProcessing = "🔍 Got it! Fetching the transcript and generating a summary..."
	msgError      = "⚠️ An error occurred while processing the video: %v"
)

// mentionURLPattern はメンション本文からYouTube URLを探す簡易パターンです。
// watch?v= と youtu.be/ の2形状のみを対象とします（判定の厳密な抽出は
// summarize.ExtractVideoID が担当し、ここは要約依頼かどうかの検知のみ）
var mentionURLPattern = regexp.MustCompile(
	`(?:https?://)?(?:www\.)?(?:youtube\.com/watch\?v=|youtu\.be/)[0-9A-Za-z_-]+[^\s<>|]*`)

// SummaryService はメンション検知から要約レポート投稿までを管理するサービスです
type SummaryService interface {
	// OnMention はメンション検知時に呼ばれ、重複排除とURL検知を行い、
	// 要約ジョブを登録（またはインライン実行）します
	OnMention(ctx context.Context, ev *MentionEvent) error

	// RunSummarize は要約ジョブの実行本体です。パイプラインを実行し、
	// 結果レポートをチャンネルへ投稿します
	RunSummarize(ctx context.Context, p *TaskPayload) error
}

// summaryService は SummaryService の実装です
type summaryService struct {
	events   domain.EventRepository // nil の場合は重複排除を行わない
	sp       SlackPort
	tp       TaskPort // nil の場合はインラインで同期実行
	pipeline *summarize.Pipeline
}

// NewSummaryService は SummaryService のインスタンスを作成します。
// events と tp は省略可能（nil）で、それぞれ重複排除・非同期実行を無効化します
func NewSummaryService(
	events domain.EventRepository,
	sp SlackPort,
	tp TaskPort,
	pipeline *summarize.Pipeline,
) SummaryService {
	return &summaryService{
		events:   events,
		sp:       sp,
		tp:       tp,
		pipeline: pipeline,
	}
}

// OnMention はメンション検知時の入口です
func (ss *summaryService) OnMention(ctx context.Context, ev *MentionEvent) error {
	// 重複排除: 処理済みイベントはスキップ（at-least-once 配送対策）
	seen, err := ss.alreadyProcessed(ctx, ev)
	if err != nil {
		return fmt.Errorf("OnMention: 重複排除チェック失敗: %w", err)
	}
	if seen {
		return nil
	}

	// メンション本文からYouTube URLを検知（最初のマッチのみ採用）
	videoURL := mentionURLPattern.FindString(ev.Text)
	if videoURL == "" {
		// URLなし: 使い方案内を投稿して終了
		text := fmt.Sprintf(msgUsageHint, ev.UserID)
		if err := ss.sp.PostMessage(ctx, ev.ChannelID, text); err != nil {
			return fmt.Errorf("OnMention: 使い方案内投稿失敗: %w", err)
		}
		return nil
	}

	// 処理中メッセージを投稿
	if err := ss.sp.PostMessage(ctx, ev.ChannelID, msgProcessing); err != nil {
		return fmt.Errorf("OnMention: 処理中メッセージ投稿失敗: %w", err)
	}

	payload := &TaskPayload{
		EventID:   ev.EventID,
		ChannelID: ev.ChannelID,
		UserID:    ev.UserID,
		VideoURL:  videoURL,
	}

	// タスクキューが構成されていれば非同期実行（Webhook応答を遅らせない）
	if ss.tp != nil {
		if err := ss.tp.EnqueueSummarize(ctx, payload); err != nil {
			return fmt.Errorf("OnMention: 要約タスク登録失敗: %w", err)
		}
		return nil
	}

	// キュー未構成の場合はインラインで同期実行
	if err := ss.RunSummarize(ctx, payload); err != nil {
		// ベストエフォートでエラーメッセージを投稿
		text := fmt.Sprintf(msgError, err)
		if postErr := ss.sp.PostMessage(ctx, ev.ChannelID, text); postErr != nil {
			return fmt.Errorf("OnMention: エラーメッセージ投稿失敗: %w", postErr)
		}
		return fmt.Errorf("OnMention: 要約実行失敗: %w", err)
	}

	return nil
}

// RunSummarize は要約パイプラインを実行し、結果を投稿します。
// パイプライン自体はエラーを返さない（全分岐がユーザー向け文字列）ため、
// ここでのエラーは投稿失敗のみです
func (ss *summaryService) RunSummarize(ctx context.Context, p *TaskPayload) error {
	report := ss.pipeline.Process(ctx, p.VideoURL)

	if err := ss.sp.PostMessage(ctx, p.ChannelID, report); err != nil {
		return fmt.Errorf("RunSummarize: レポート投稿失敗 (channel=%s): %w", p.ChannelID, err)
	}

	return nil
}

// alreadyProcessed はイベントが重複排除ウィンドウ内で処理済みかを判定し、
// 未処理であればレコードを保存します
func (ss *summaryService) alreadyProcessed(ctx context.Context, ev *MentionEvent) (bool, error) {
	if ss.events == nil || ev.EventID == "" {
		return false, nil
	}

	_, err := ss.events.Find(ctx, ev.EventID)
	if err == nil {
		// 処理済みレコードあり
		return true, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return false, fmt.Errorf("処理済みイベント取得失敗: %w", err)
	}

	record := &domain.ProcessedEvent{
		EventID:     ev.EventID,
		ChannelID:   ev.ChannelID,
		UserID:      ev.UserID,
		ProcessedAt: ev.NowUnix,
		ExpiresAt:   ev.NowUnix + int64(DedupWindow/time.Second),
	}
	if err := record.Validate(); err != nil {
		return false, fmt.Errorf("処理済みイベント検証失敗: %w", err)
	}
	if err := ss.events.Save(ctx, record); err != nil {
		return false, fmt.Errorf("処理済みイベント保存失敗: %w", err)
	}

	return false, nil
}
