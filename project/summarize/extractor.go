package summarize

import (
	"regexp"
	"strings"
)

// videoIDPattern は11文字の動画ID本体の形式です
const videoIDPattern = `([0-9A-Za-z_-]{11})`

// videoIDMatchers は URL 形状のパターンを優先順に並べたリストです。
// 先頭から順に試し、最初にマッチしたパターンのキャプチャを即座に返します。
// 厳密な watch?v= パターンを緩い「v= を含む」パターンより先に置くことで、
// 完全一致が常に優先されます。末尾の裸ID パターンは最終フォールバックです
var videoIDMatchers = []*regexp.Regexp{
	regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube\.com/watch\?v=` + videoIDPattern),
	regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube\.com/watch\?.*v=` + videoIDPattern),
	regexp.MustCompile(`(?:https?://)?youtu\.be/` + videoIDPattern),
	regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube\.com/embed/` + videoIDPattern),
	regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube\.com/v/` + videoIDPattern),
	regexp.MustCompile(`(?:https?://)?m\.youtube\.com/watch\?v=` + videoIDPattern),
	regexp.MustCompile(`(?:https?://)?music\.youtube\.com/watch\?v=` + videoIDPattern),
	regexp.MustCompile(`(?:https?://)?gaming\.youtube\.com/watch\?v=` + videoIDPattern),
	regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube\.com/shorts/` + videoIDPattern),
	regexp.MustCompile(`^` + videoIDPattern + `$`),
}

// ExtractVideoID はテキストから11文字のYouTube動画IDを抽出します。
// 入力は前後の空白を除去してからマッチングします。
// どのパターンにもマッチしない場合は ("", false) を返します
func ExtractVideoID(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", false
	}

	for _, re := range videoIDMatchers {
		if m := re.FindStringSubmatch(trimmed); len(m) >= 2 {
			return m[1], true
		}
	}

	return "", false
}
