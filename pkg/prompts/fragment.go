package prompts

import "strings"

// SegmentKind は、編集面の1行がどの種類かを示すタグです。
type SegmentKind int

const (
	// KindPlain はカテゴリ指定のない自由記述行です。
	KindPlain SegmentKind = iota
	// KindFragment は "category:value" 形式のテンプレート断片行です。
	KindFragment
	// KindImageRef は画像参照マーカー行（![image_N](filename)）です。
	KindImageRef
)

// Segment は1行のパース結果です。KindFragment のときのみ
// Category / Value が有効になります。
type Segment struct {
	Kind     SegmentKind
	Raw      string
	Category string
	Value    string
}

const (
	listMarker     = "- "
	imageRefPrefix = "![image_"
)

// ParseSegment は1行をタグ付きの構造に分類します。
// 呼び出し側で場当たり的に文字列分割をせず、解釈はここに集約するのだ。
func ParseSegment(line string) Segment {
	trimmed := strings.TrimSpace(line)
	content := strings.TrimPrefix(trimmed, listMarker)

	if strings.HasPrefix(content, imageRefPrefix) {
		return Segment{Kind: KindImageRef, Raw: trimmed}
	}

	// 最初のコロンで category と value を分ける（値側のコロンは保持）
	if i := strings.Index(content, ":"); i > 0 {
		category := strings.TrimSpace(content[:i])
		value := strings.TrimSpace(content[i+1:])
		if category != "" && value != "" {
			return Segment{Kind: KindFragment, Raw: trimmed, Category: category, Value: value}
		}
	}

	return Segment{Kind: KindPlain, Raw: trimmed}
}
