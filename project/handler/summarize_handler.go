package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"yt-summary-bot/project/service"
)

// SummarizeHandler は Cloud Tasks から呼び出される要約ジョブを実行します
type SummarizeHandler struct {
	summaryService service.SummaryService
}

// NewSummarizeHandler は要約ジョブハンドラーを作成します
func NewSummarizeHandler(summaryService service.SummaryService) *SummarizeHandler {
	return &SummarizeHandler{
		summaryService: summaryService,
	}
}

// ServeHTTP は /tasks/summarize エンドポイント
func (h *SummarizeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// リクエスト本体を読み込む
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "リクエスト本体の読み込み失敗", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	// JSON パース
	var payload service.TaskPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		http.Error(w, "JSON パース失敗", http.StatusBadRequest)
		return
	}

	// 要約実行（字幕取得 + LLM 呼び出しを含むため長めのタイムアウト）
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	if err := h.summaryService.RunSummarize(ctx, &payload); err != nil {
		fmt.Printf("要約ジョブ処理エラー: %v\n", err)
		// Cloud Tasks 側へは 200 で応答（再試行回避）
		w.WriteHeader(http.StatusOK)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
