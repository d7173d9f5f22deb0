package prompts

import (
	"fmt"
	"strings"
)

const (
	// SystemPreamble は空でない本文の先頭に必ず1回だけ付く固定の前置きです。
	SystemPreamble = "Please follow the instructions below to change the image:"
	// NegativePreamble は分離モードでネガティブ指示の先頭に付く前置きです。
	NegativePreamble = "[NEGATIVE PROMPT] Do not include the following elements in the generated image:"
	// negativeInlineMarker は結合モードで本文末尾に付くマーカーです。
	negativeInlineMarker = "[NEGATIVE PROMPT] "
)

// NegativeMode はネガティブ指示の伝送方法です。
type NegativeMode int

const (
	// NegativeCombined はポジティブ側の末尾に1行で合流させるモードです。
	NegativeCombined NegativeMode = iota
	// NegativeSeparate は独立した第2の指示文として組み立てるモードです。
	NegativeSeparate
)

// Draft は編集面の内容を行単位で保持する下書きです。
// 最終テキストは保持せず、Assembler が毎回導出します。
type Draft struct {
	lines []string
}

// NewDraft は自由記述テキストから下書きを作ります。行区切りは改行です。
func NewDraft(text string) *Draft {
	d := &Draft{}
	d.SetText(text)
	return d
}

// SetText は下書き全体を置き換えます。
func (d *Draft) SetText(text string) {
	if text == "" {
		d.lines = nil
		return
	}
	d.lines = strings.Split(text, "\n")
}

// InsertTemplate はテンプレート断片をリスト項目として末尾に挿入します。
// 挿入後の正規化は Assemble 側で改めて行われるため、ここで重複整形はしないのだ。
func (d *Draft) InsertTemplate(t Template) {
	d.lines = append(d.lines, listMarker+t.Text)
}

// InsertImageRef は画像参照マーカーをリスト項目として末尾に挿入します。
// index は画像セット内の現在位置（1始まり）です。挿入後に画像を並べ替えたり
// 先頭側を削除するとマーカーの指す先はずれますが、これは仕様どおりの挙動です。
func (d *Draft) InsertImageRef(index int, filename string) {
	d.lines = append(d.lines, fmt.Sprintf("%s![image_%d](%s)", listMarker, index, filename))
}

// Lines は現在の行の写しを返します。
func (d *Draft) Lines() []string {
	out := make([]string, len(d.lines))
	copy(out, d.lines)
	return out
}

// Assembled は組み立て結果です。結合モードでは Negative は常に空で、
// ネガティブ指示は Prompt 側に合流しています。
type Assembled struct {
	Prompt   string
	Negative string
}

// Assembler はUI状態から送信用の指示テキストを決定的に導出します。
// 同じ入力からは常に同じ出力が得られ、失敗することはありません。
type Assembler struct {
	mode NegativeMode
}

// NewAssembler は指定モードの Assembler を生成します。
func NewAssembler(mode NegativeMode) *Assembler {
	return &Assembler{mode: mode}
}

// Assemble は下書き・ディレクティブ・ネガティブ下書きから最終テキストを導出します。
// 本文が空なら空文字列を返し、前置きは付きません（空の下書きから
// 空でないAPIリクエストを作ってはいけないため）。結合モードでは合流先が
// 無いため、本文が空だとネガティブ側も捨てて完全に空の結果を返します。
func (a *Assembler) Assemble(draft *Draft, directive SizeDirective, negative *Draft) Assembled {
	prompt := assembleBlock(SystemPreamble, draft, directive)

	negLines := canonicalizeLines(negative)
	if len(negLines) == 0 {
		return Assembled{Prompt: prompt}
	}

	switch a.mode {
	case NegativeSeparate:
		return Assembled{
			Prompt:   prompt,
			Negative: assembleBlock(NegativePreamble, negative, SizeUnspecified),
		}
	default:
		if prompt == "" {
			return Assembled{}
		}
		return Assembled{Prompt: prompt + "\n\n" + negativeInlineMarker + inlineNegativeText(negLines)}
	}
}

// assembleBlock は正規化手順（トリム、空行除去、リスト化、前置き、
// ディレクティブ挿入）を1ブロック分適用します。
func assembleBlock(preamble string, draft *Draft, directive SizeDirective) string {
	lines := canonicalizeLines(draft)
	if len(lines) == 0 {
		return ""
	}

	body := strings.Join(lines, "\n")
	if directive != SizeUnspecified && !strings.Contains(body, string(directive)) {
		// ディレクティブは前置き直後の先頭行に1回だけ入れる
		body = listMarker + string(directive) + "\n" + body
	}

	return preamble + "\n\n" + body
}

// canonicalizeLines は各行をトリムし、空行を落とし、リスト項目でも
// 画像参照でもない行に "- " を付けます。行種別の判定は ParseSegment に
// 集約し、再組み立てしても二重に付かないことが不変条件です。
func canonicalizeLines(draft *Draft) []string {
	if draft == nil {
		return nil
	}

	var out []string
	for _, line := range draft.lines {
		seg := ParseSegment(line)
		if seg.Raw == "" {
			continue
		}
		t := seg.Raw
		if seg.Kind != KindImageRef && !strings.HasPrefix(t, listMarker) {
			t = listMarker + t
		}
		out = append(out, t)
	}
	return out
}

// inlineNegativeText は結合モード用にネガティブ行を1行へ畳みます。
func inlineNegativeText(lines []string) string {
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		parts = append(parts, strings.TrimPrefix(l, listMarker))
	}
	return strings.Join(parts, ", ")
}
