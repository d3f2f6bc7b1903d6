package domain

import "errors"

// ドメインエラー定義
var (
	// ErrInvalid は不正な値が設定された場合のエラー
	ErrInvalid = errors.New("ドメイン: 不正な値です")

	// ErrNotFound は要求されたリソースが見つからない場合のエラー
	ErrNotFound = errors.New("ドメイン: リソースが見つかりません")

	// ErrInvalidURLFormat は入力テキストから動画IDを導出できない場合のエラー
	ErrInvalidURLFormat = errors.New("ドメイン: YouTube URL の形式が不正です")

	// ErrNoCaptions は両方の取得試行で字幕が得られなかった場合のエラー
	ErrNoCaptions = errors.New("ドメイン: 字幕が取得できません")

	// ErrTranscriptTooShort は結合後の字幕が要約に足る長さに満たない場合のエラー
	ErrTranscriptTooShort = errors.New("ドメイン: 字幕が短すぎます")
)
