package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"yt-summary-bot/project/domain"
	"yt-summary-bot/project/summarize"
)

// ===== テスト用スタブ =====

type postedMessage struct {
	channelID string
	text      string
}

type fakeSlack struct {
	posted  []postedMessage
	postErr error
}

func (f *fakeSlack) PostMessage(ctx context.Context, channelID, text string) error {
	if f.postErr != nil {
		return f.postErr
	}
	f.posted = append(f.posted, postedMessage{channelID: channelID, text: text})
	return nil
}

type fakeTasks struct {
	enqueued []*TaskPayload
}

func (f *fakeTasks) EnqueueSummarize(ctx context.Context, payload *TaskPayload) error {
	f.enqueued = append(f.enqueued, payload)
	return nil
}

type fakeEventRepo struct {
	records map[string]*domain.ProcessedEvent
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{records: make(map[string]*domain.ProcessedEvent)}
}

func (f *fakeEventRepo) Save(ctx context.Context, e *domain.ProcessedEvent) error {
	f.records[e.EventID] = e
	return nil
}

func (f *fakeEventRepo) Find(ctx context.Context, eventID string) (*domain.ProcessedEvent, error) {
	if e, ok := f.records[eventID]; ok {
		return e, nil
	}
	return nil, domain.ErrNotFound
}

type fetchFunc func(ctx context.Context, urlOrID string) ([]string, error)

func (f fetchFunc) Fetch(ctx context.Context, urlOrID string) ([]string, error) {
	return f(ctx, urlOrID)
}

type completeFunc func(ctx context.Context, prompt string) (string, error)

func (f completeFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// newTestPipeline は字幕取得と要約が常に成功するパイプラインを返します
func newTestPipeline() *summarize.Pipeline {
	transcripts := fetchFunc(func(ctx context.Context, urlOrID string) ([]string, error) {
		return []string{strings.Repeat("caption text ", 10)}, nil
	})
	completion := completeFunc(func(ctx context.Context, prompt string) (string, error) {
		return "## Summary\n- main point", nil
	})
	return summarize.NewPipeline(
		summarize.NewRetriever(transcripts),
		summarize.NewSummarizer(completion),
	)
}

func newMention(text string) *MentionEvent {
	return &MentionEvent{
		EventID:   "Ev12345678",
		ChannelID: "C123",
		UserID:    "U456",
		Text:      text,
		NowUnix:   1717243200,
	}
}

// ===== OnMention =====

func TestOnMention_NoURLPostsUsageHint(t *testing.T) {
	sp := &fakeSlack{}
	ss := NewSummaryService(nil, sp, nil, newTestPipeline())

	err := ss.OnMention(context.Background(), newMention("<@UBOT> hello there"))
	if err != nil {
		t.Fatalf("OnMention() error = %v", err)
	}

	if len(sp.posted) != 1 {
		t.Fatalf("posted messages = %d, want 1", len(sp.posted))
	}
	if !strings.Contains(sp.posted[0].text, "Please provide a YouTube URL to summarize!") {
		t.Errorf("usage hint = %q, want the literal hint", sp.posted[0].text)
	}
	if !strings.Contains(sp.posted[0].text, "<@U456>") {
		t.Errorf("usage hint = %q, want it addressed to the user", sp.posted[0].text)
	}
}

func TestOnMention_URLRunsInlineWithoutQueue(t *testing.T) {
	sp := &fakeSlack{}
	ss := NewSummaryService(nil, sp, nil, newTestPipeline())

	err := ss.OnMention(context.Background(), newMention("<@UBOT> https://youtu.be/dQw4w9WgXcQ"))
	if err != nil {
		t.Fatalf("OnMention() error = %v", err)
	}

	// 処理中メッセージ + レポートの2件
	if len(sp.posted) != 2 {
		t.Fatalf("posted messages = %d, want 2", len(sp.posted))
	}
	if !strings.Contains(sp.posted[0].text, "Fetching the transcript") {
		t.Errorf("first message = %q, want the processing acknowledgment", sp.posted[0].text)
	}
	if !strings.Contains(sp.posted[1].text, "## Summary") {
		t.Errorf("second message = %q, want the report", sp.posted[1].text)
	}
}

func TestOnMention_URLEnqueuesWhenQueueConfigured(t *testing.T) {
	sp := &fakeSlack{}
	tp := &fakeTasks{}
	ss := NewSummaryService(nil, sp, tp, newTestPipeline())

	err := ss.OnMention(context.Background(), newMention("<@UBOT> check https://www.youtube.com/watch?v=dQw4w9WgXcQ"))
	if err != nil {
		t.Fatalf("OnMention() error = %v", err)
	}

	// 処理中メッセージのみ投稿され、レポートはジョブに委譲されること
	if len(sp.posted) != 1 {
		t.Fatalf("posted messages = %d, want 1", len(sp.posted))
	}
	if len(tp.enqueued) != 1 {
		t.Fatalf("enqueued jobs = %d, want 1", len(tp.enqueued))
	}
	p := tp.enqueued[0]
	if p.ChannelID != "C123" || p.EventID != "Ev12345678" {
		t.Errorf("payload = %+v, want channel/event carried over", p)
	}
	if !strings.Contains(p.VideoURL, "watch?v=dQw4w9WgXcQ") {
		t.Errorf("payload VideoURL = %q", p.VideoURL)
	}
}

// 同一メッセージ内に複数URLがある場合、最初のマッチのみ処理されること
func TestOnMention_FirstURLWins(t *testing.T) {
	sp := &fakeSlack{}
	tp := &fakeTasks{}
	ss := NewSummaryService(nil, sp, tp, newTestPipeline())

	text := "<@UBOT> https://youtu.be/aaaaaaaaaaa and https://youtu.be/bbbbbbbbbbb"
	if err := ss.OnMention(context.Background(), newMention(text)); err != nil {
		t.Fatalf("OnMention() error = %v", err)
	}

	if len(tp.enqueued) != 1 {
		t.Fatalf("enqueued jobs = %d, want 1", len(tp.enqueued))
	}
	if !strings.Contains(tp.enqueued[0].VideoURL, "aaaaaaaaaaa") {
		t.Errorf("VideoURL = %q, want the first URL", tp.enqueued[0].VideoURL)
	}
}

// メンション検知の簡易パターンは watch?v= と youtu.be/ の2形状のみを対象とする
// （shorts などは抽出器は理解するが、検知対象にはならない）
func TestOnMention_ScanRecognizesOnlyWatchAndShortLink(t *testing.T) {
	sp := &fakeSlack{}
	tp := &fakeTasks{}
	ss := NewSummaryService(nil, sp, tp, newTestPipeline())

	text := "<@UBOT> https://www.youtube.com/shorts/dQw4w9WgXcQ"
	if err := ss.OnMention(context.Background(), newMention(text)); err != nil {
		t.Fatalf("OnMention() error = %v", err)
	}

	if len(tp.enqueued) != 0 {
		t.Fatalf("enqueued jobs = %d, want 0 for a shorts link", len(tp.enqueued))
	}
	if len(sp.posted) != 1 || !strings.Contains(sp.posted[0].text, "Please provide a YouTube URL") {
		t.Errorf("posted = %+v, want the usage hint", sp.posted)
	}
}

func TestOnMention_DuplicateEventSkipped(t *testing.T) {
	sp := &fakeSlack{}
	repo := newFakeEventRepo()
	ss := NewSummaryService(repo, sp, nil, newTestPipeline())

	ev := newMention("<@UBOT> https://youtu.be/dQw4w9WgXcQ")
	if err := ss.OnMention(context.Background(), ev); err != nil {
		t.Fatalf("first OnMention() error = %v", err)
	}
	first := len(sp.posted)
	if first == 0 {
		t.Fatal("first delivery posted nothing")
	}

	// 再配送: 投稿が増えないこと
	if err := ss.OnMention(context.Background(), ev); err != nil {
		t.Fatalf("second OnMention() error = %v", err)
	}
	if len(sp.posted) != first {
		t.Errorf("posted messages after redelivery = %d, want %d", len(sp.posted), first)
	}

	if _, err := repo.Find(context.Background(), ev.EventID); err != nil {
		t.Errorf("dedup record not saved: %v", err)
	}
}

// ===== RunSummarize =====

func TestRunSummarize_PostsReport(t *testing.T) {
	sp := &fakeSlack{}
	ss := NewSummaryService(nil, sp, nil, newTestPipeline())

	payload := &TaskPayload{
		EventID:   "Ev12345678",
		ChannelID: "C123",
		UserID:    "U456",
		VideoURL:  "https://youtu.be/dQw4w9WgXcQ",
	}
	if err := ss.RunSummarize(context.Background(), payload); err != nil {
		t.Fatalf("RunSummarize() error = %v", err)
	}

	if len(sp.posted) != 1 {
		t.Fatalf("posted messages = %d, want 1", len(sp.posted))
	}
	if sp.posted[0].channelID != "C123" {
		t.Errorf("posted channel = %q, want C123", sp.posted[0].channelID)
	}
	if !strings.Contains(sp.posted[0].text, "## Summary") {
		t.Errorf("posted report = %q", sp.posted[0].text)
	}
}

func TestRunSummarize_PostFailureReturnsError(t *testing.T) {
	sp := &fakeSlack{postErr: errors.New("channel_not_found")}
	ss := NewSummaryService(nil, sp, nil, newTestPipeline())

	payload := &TaskPayload{ChannelID: "C123", VideoURL: "https://youtu.be/dQw4w9WgXcQ"}
	if err := ss.RunSummarize(context.Background(), payload); err == nil {
		t.Error("RunSummarize() error = nil, want posting error")
	}
}
