package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"yt-summary-bot/project/service"
	"yt-summary-bot/project/summarize"
)

func newSummarizeTestHandler(sp *fakeSlack) *SummarizeHandler {
	transcripts := fetchFunc(func(ctx context.Context, urlOrID string) ([]string, error) {
		return []string{strings.Repeat("caption text ", 10)}, nil
	})
	completion := completeFunc(func(ctx context.Context, prompt string) (string, error) {
		return "## Summary\n- main point", nil
	})
	pipeline := summarize.NewPipeline(
		summarize.NewRetriever(transcripts),
		summarize.NewSummarizer(completion),
	)
	ss := service.NewSummaryService(nil, sp, nil, pipeline)
	return NewSummarizeHandler(ss)
}

func TestSummarizeHandler_RunsJobAndPostsReport(t *testing.T) {
	sp := &fakeSlack{}
	h := newSummarizeTestHandler(sp)

	body := `{"event_id":"Ev1","channel_id":"C123","user_id":"U456","video_url":"https://youtu.be/dQw4w9WgXcQ"}`
	req := httptest.NewRequest(http.MethodPost, "/tasks/summarize", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if len(sp.posted) != 1 {
		t.Fatalf("posted = %d messages, want 1", len(sp.posted))
	}
	if !strings.Contains(sp.posted[0], "## Summary") {
		t.Errorf("report = %q", sp.posted[0])
	}
}

func TestSummarizeHandler_RejectsNonPost(t *testing.T) {
	h := newSummarizeTestHandler(&fakeSlack{})

	req := httptest.NewRequest(http.MethodGet, "/tasks/summarize", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", w.Code)
	}
}

func TestSummarizeHandler_MalformedPayloadIs400(t *testing.T) {
	h := newSummarizeTestHandler(&fakeSlack{})

	req := httptest.NewRequest(http.MethodPost, "/tasks/summarize", strings.NewReader("not json"))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}
