package domain

import (
	"fmt"
	"sync/atomic"
	"time"
)

// ImageStatus は入力画像の表示用ステータスです。
// オーケストレーターはこの値で分岐しません（表示専用）。
type ImageStatus string

const (
	StatusPending    ImageStatus = "pending"
	StatusGenerating ImageStatus = "generating"
	StatusCompleted  ImageStatus = "completed"
	StatusError      ImageStatus = "error"
)

// ImageItem は編集対象として添付された1枚の入力画像を表します。
// Payload と MimeType は取り込み後に変更されない前提です。
type ImageItem struct {
	ID       string
	Payload  []byte
	MimeType string
	Filename string
	Status   ImageStatus
}

var imageSeq atomic.Int64

// NewImageID は画像取り込み時に採番する一意な不透明IDを生成するのだ。
// プロセス内カウンタと時刻を組み合わせるため、同一バッチ内でも衝突しないのだ。
func NewImageID() string {
	return fmt.Sprintf("img-%d-%d", imageSeq.Add(1), time.Now().UnixNano())
}
