package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"yt-summary-bot/project/dto"
	"yt-summary-bot/project/infrastructure/httpsec"
	"yt-summary-bot/project/service"
)

// EventsHandler は Slack Events API からのイベントを処理します
type EventsHandler struct {
	signingSecret  string
	summaryService service.SummaryService
}

// NewEventsHandler はイベントハンドラーを作成します。
// signingSecret が空の場合は署名検証をスキップします（ローカル実行用）
func NewEventsHandler(signingSecret string, summaryService service.SummaryService) *EventsHandler {
	return &EventsHandler{
		signingSecret:  signingSecret,
		summaryService: summaryService,
	}
}

// ServeHTTP は Slack イベント受信エンドポイントです。
// 分類: url_verification → challenge 応答 / event_callback の app_mention →
// 要約処理 / その他の整形済みペイロード → "ok" 応答
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// 想定外の内部障害は最外殻で捕捉してサーバーエラー応答に変換する
	defer func() {
		if rec := recover(); rec != nil {
			fmt.Printf("イベント処理で予期しない障害: %v\n", rec)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		}
	}()

	// リクエスト本体を読み込む
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
		return
	}
	defer r.Body.Close()

	// まず url_verification かどうかを確認（署名検証の前に）
	var preCheck struct {
		Type      string `json:"type"`
		Challenge string `json:"challenge"`
	}
	if err := json.Unmarshal(body, &preCheck); err == nil {
		if preCheck.Type == "url_verification" {
			// URL 検証に challenge をそのまま返す（署名検証をスキップ）
			writeJSON(w, http.StatusOK, map[string]string{"challenge": preCheck.Challenge})
			return
		}
	}

	// Slack 署名検証（url_verification 以外のリクエスト）
	if h.signingSecret != "" {
		signature := r.Header.Get("X-Slack-Signature")
		timestamp := r.Header.Get("X-Slack-Request-Timestamp")
		if err := httpsec.VerifySlackSignature(h.signingSecret, signature, timestamp, string(body)); err != nil {
			http.Error(w, "署名検証失敗", http.StatusUnauthorized)
			return
		}
	}

	// ペイロード解析: JSON → form-encoded の payload フィールド の順で試す
	req, ok := parseEventRequest(body)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
		return
	}

	// event_callback のみ処理、それ以外の整形済みペイロードは ok 応答
	if req.Type != "event_callback" {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	// イベント処理
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := h.handleEvent(ctx, req); err != nil {
		fmt.Printf("イベント処理エラー: %v\n", err)
		// サービス層がベストエフォートでエラーメッセージを投稿済み。
		// Slack側への応答は成功にして再配送を避ける
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleEvent は個別のイベントを処理します
func (h *EventsHandler) handleEvent(ctx context.Context, req *dto.SlackEventRequest) error {
	// app_mention 以外は対象外
	if req.Event.Type != "app_mention" {
		return nil
	}

	// Bot 自身のメッセージや bot_message は無視（自己トリガー防止）
	if req.Event.BotID != "" || req.Event.SubType == "bot_message" {
		return nil
	}

	// 重複排除キー: イベントIDがない場合はチーム:チャンネル:TS で代替
	eventID := req.EventID
	if eventID == "" {
		eventID = fmt.Sprintf("%s:%s:%s", req.TeamID, req.Event.Channel, req.Event.Timestamp)
	}

	event := service.MentionEvent{
		EventID:   eventID,
		ChannelID: req.Event.Channel,
		UserID:    req.Event.User,
		Text:      req.Event.Text,
		NowUnix:   time.Now().Unix(),
	}

	return h.summaryService.OnMention(ctx, &event)
}

// parseEventRequest はリクエスト本体を解析します。
// JSON として解析できない場合は form-encoded とみなし、payload フィールドを
// JSON として解析します。どちらも失敗したら ok=false
func parseEventRequest(body []byte) (*dto.SlackEventRequest, bool) {
	var req dto.SlackEventRequest
	if err := json.Unmarshal(body, &req); err == nil {
		return &req, true
	}

	values := parseFormFromBytes(body)
	payload := values.Get("payload")
	if payload == "" {
		return nil, false
	}
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return nil, false
	}
	return &req, true
}

// parseFormFromBytes はバイト列からURLエンコードされたフォームをパースします
func parseFormFromBytes(b []byte) formValues {
	values := make(formValues)
	for _, pair := range strings.Split(string(b), "&") {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) == 2 {
			key, _ := url.QueryUnescape(parts[0])
			val, _ := url.QueryUnescape(parts[1])
			values[key] = append(values[key], val)
		}
	}
	return values
}

// formValues はurl.Valuesと同じインターフェースを提供
type formValues map[string][]string

func (v formValues) Get(key string) string {
	if vals, ok := v[key]; ok && len(vals) > 0 {
		return vals[0]
	}
	return ""
}

// writeJSON は JSON 応答を書き込みます
func writeJSON(w http.ResponseWriter, status int, body map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
