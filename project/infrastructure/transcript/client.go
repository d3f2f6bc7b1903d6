package transcript

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"
)

// playerEndpoint は YouTube innertube player API のエンドポイントです
const playerEndpoint = "https://www.youtube.com/youtubei/v1/player"

// innertube クライアント情報。ANDROID クライアントは字幕トラックの
// baseUrl を認証なしで返します
const (
	innertubeClientName    = "ANDROID"
	innertubeClientVersion = "20.10.38"
)

// Client は summarize.TranscriptPort の YouTube API 実装です
type Client struct {
	httpClient *http.Client
}

// NewClient は字幕取得クライアントを初期化します
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// playerRequest は innertube player API のリクエストボディです
type playerRequest struct {
	Context struct {
		Client struct {
			ClientName    string `json:"clientName"`
			ClientVersion string `json:"clientVersion"`
		} `json:"client"`
	} `json:"context"`
	VideoID string `json:"videoId"`
}

// playerResponse は player API レスポンスのうち字幕トラック部分のみを写し取ります
type playerResponse struct {
	Captions struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	PlayabilityStatus struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
}

// captionTrack は1本の字幕トラックを表します
type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind,omitempty"` // "asr" = 自動生成
}

// timedTextDocument は timedtext XML レスポンスを表します
type timedTextDocument struct {
	XMLName xml.Name        `xml:"transcript"`
	Texts   []timedTextLine `xml:"text"`
}

// timedTextLine は1つの字幕断片（タイミング付きテキスト）です
type timedTextLine struct {
	Start string `xml:"start,attr"`
	Dur   string `xml:"dur,attr"`
	Body  string `xml:",chardata"`
}

// Fetch は指定動画の字幕断片を出現順で返します。
// urlOrID はそのまま videoId として送信するため、URL を渡した場合は
// API 側で不正な動画IDとして失敗します（フォールバックは呼び出し側が担当）
func (c *Client) Fetch(ctx context.Context, urlOrID string) ([]string, error) {
	track, err := c.findCaptionTrack(ctx, urlOrID)
	if err != nil {
		return nil, err
	}

	return c.fetchTrack(ctx, track.BaseURL)
}

// findCaptionTrack は player API を呼び出して最初の字幕トラックを返します
func (c *Client) findCaptionTrack(ctx context.Context, videoID string) (*captionTrack, error) {
	var reqBody playerRequest
	reqBody.Context.Client.ClientName = innertubeClientName
	reqBody.Context.Client.ClientVersion = innertubeClientVersion
	reqBody.VideoID = videoID

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("transcript: リクエスト JSON 化失敗: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, playerEndpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("transcript: リクエスト作成失敗: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transcript: player API 呼び出し失敗 (videoId=%s): %w", videoID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("transcript: player API エラー (status=%d): %s", resp.StatusCode, string(body))
	}

	var player playerResponse
	if err := json.NewDecoder(resp.Body).Decode(&player); err != nil {
		return nil, fmt.Errorf("transcript: player レスポンス解析失敗: %w", err)
	}

	if player.PlayabilityStatus.Status != "" && player.PlayabilityStatus.Status != "OK" {
		return nil, fmt.Errorf("transcript: 動画が再生不可です (videoId=%s, status=%s, reason=%s)",
			videoID, player.PlayabilityStatus.Status, player.PlayabilityStatus.Reason)
	}

	tracks := player.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	if len(tracks) == 0 {
		return nil, fmt.Errorf("transcript: 字幕トラックがありません (videoId=%s)", videoID)
	}

	// 手動字幕を優先し、なければ先頭（自動生成を含む）を使う
	for i := range tracks {
		if tracks[i].Kind != "asr" {
			return &tracks[i], nil
		}
	}
	return &tracks[0], nil
}

// fetchTrack は字幕トラックの baseUrl から timedtext XML を取得して
// テキスト断片に分解します
func (c *Client) fetchTrack(ctx context.Context, baseURL string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("transcript: timedtext リクエスト作成失敗: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transcript: timedtext 取得失敗: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("transcript: timedtext エラー (status=%d)", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("transcript: timedtext 読み込み失敗: %w", err)
	}

	return parseTimedText(body)
}

// parseTimedText は timedtext XML を字幕断片のスライスに変換します。
// テキストは HTML エスケープされているため復号し、空断片は除外します
func parseTimedText(data []byte) ([]string, error) {
	var doc timedTextDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("transcript: timedtext XML 解析失敗: %w", err)
	}

	fragments := make([]string, 0, len(doc.Texts))
	for _, line := range doc.Texts {
		text := strings.TrimSpace(html.UnescapeString(line.Body))
		if text == "" {
			continue
		}
		fragments = append(fragments, text)
	}

	return fragments, nil
}
