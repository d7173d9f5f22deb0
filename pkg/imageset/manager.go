package imageset

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shouni/gemini-image-kit/pkg/imgutil"
	"github.com/shouni/go-image-edit-kit/pkg/domain"
)

const (
	// UseImageCompression は取り込み時に JPEG 圧縮をかけるかどうかです。
	UseImageCompression = true
	// ImageCompressionQuality は圧縮時の JPEG 品質です。
	ImageCompressionQuality = 75
)

// Candidate は取り込み候補の1ファイルです。MimeType が空の場合は
// 内容からスニッフィングします。
type Candidate struct {
	Filename string
	Data     []byte
	MimeType string
}

// Manager は添付画像の順序付きコレクションを保持します。
// 追加された順序がAPIへの送信順であり、image_N マーカーの参照順でもあります。
// 書き込みは離散的なUIイベント（CLIではコマンド処理）からのみ行われる
// 単一ライター前提で、ロックは持ちません。
type Manager struct {
	items    []domain.ImageItem
	compress bool
}

// NewManager は Manager を生成します。compress を有効にすると
// 取り込み時に JPEG 再圧縮を試みます（失敗時は元データのまま）。
func NewManager(compress bool) *Manager {
	return &Manager{compress: compress}
}

// Add は候補のバッチを検証して取り込みます。1つでも画像でない候補が
// あればバッチ全体を失敗させ、部分的な取り込みは行いません。
func (m *Manager) Add(candidates []Candidate) error {
	// 先に全件を検証してから取り込む（アトミック性の担保）
	resolved := make([]domain.ImageItem, 0, len(candidates))
	for _, c := range candidates {
		mimeType := c.MimeType
		if mimeType == "" {
			mimeType = http.DetectContentType(c.Data)
		}
		if !strings.HasPrefix(mimeType, "image/") {
			return fmt.Errorf("'%s' は画像ファイルではありません (%s)。バッチ全体を取り込まずに中断します", c.Filename, mimeType)
		}

		data := c.Data
		if m.compress {
			if compressed, err := imgutil.CompressToJPEG(c.Data, ImageCompressionQuality); err == nil {
				data = compressed
				mimeType = http.DetectContentType(data)
			}
		}

		resolved = append(resolved, domain.ImageItem{
			ID:       domain.NewImageID(),
			Payload:  data,
			MimeType: mimeType,
			Filename: c.Filename,
			Status:   domain.StatusPending,
		})
	}

	m.items = append(m.items, resolved...)
	return nil
}

// Remove は指定IDの画像を取り除きます。見つからない場合は何もしません。
func (m *Manager) Remove(id string) {
	for i, item := range m.items {
		if item.ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return
		}
	}
}

// Promote は生成結果を新しい入力画像として昇格させます。
// 新しいIDと、ユーザーのアップロード名と衝突しない合成ファイル名を割り当てます。
func (m *Manager) Promote(data []byte, mimeType string) domain.ImageItem {
	item := domain.ImageItem{
		ID:       domain.NewImageID(),
		Payload:  data,
		MimeType: mimeType,
		Filename: fmt.Sprintf("generated_%d%s", time.Now().Unix(), extensionFor(mimeType)),
		Status:   domain.StatusPending,
	}
	m.items = append(m.items, item)
	return item
}

// Items は送信順のスナップショットを返します。実行中のリクエストは
// この写しを使うため、以後の追加・削除の影響を受けません。
func (m *Manager) Items() []domain.ImageItem {
	out := make([]domain.ImageItem, len(m.items))
	copy(out, m.items)
	return out
}

// Len は現在の画像数を返します。
func (m *Manager) Len() int {
	return len(m.items)
}

// SetStatus は表示用ステータスを更新します。存在しないIDは無視します。
func (m *Manager) SetStatus(id string, status domain.ImageStatus) {
	for i := range m.items {
		if m.items[i].ID == id {
			m.items[i].Status = status
			return
		}
	}
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}
