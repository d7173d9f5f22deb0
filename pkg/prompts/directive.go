package prompts

import "fmt"

// SizeDirective はアスペクト比のディレクティブです。固定語彙からちょうど1つだけ
// 有効にでき、組み立て時に本文へ1回だけ挿入されます。
type SizeDirective string

const (
	SizeWide16x9    SizeDirective = "wide rectangular image with 16:9 aspect ratio"
	SizeTall9x16    SizeDirective = "wide rectangular image with 9:16 aspect ratio"
	SizeStandard4x3 SizeDirective = "rectangular image with 4:3 aspect ratio"
	SizePortrait3x4 SizeDirective = "rectangular image with 3:4 aspect ratio"
	SizeSquare1x1   SizeDirective = "square image with 1:1 aspect ratio"
	SizeUnspecified SizeDirective = ""
)

// sizeLabels は CLI フラグで使う短縮表記との対応表なのだ。
var sizeLabels = map[string]SizeDirective{
	"16:9": SizeWide16x9,
	"9:16": SizeTall9x16,
	"4:3":  SizeStandard4x3,
	"3:4":  SizePortrait3x4,
	"1:1":  SizeSquare1x1,
}

// ParseSizeDirective は "1:1" のような短縮表記をディレクティブに解決します。
// 空文字列はディレクティブなしとして許容します。
func ParseSizeDirective(label string) (SizeDirective, error) {
	if label == "" {
		return SizeUnspecified, nil
	}
	if d, ok := sizeLabels[label]; ok {
		return d, nil
	}
	return SizeUnspecified, fmt.Errorf("サポートされていないサイズ指定: '%s'。指定できるのは [16:9, 9:16, 4:3, 3:4, 1:1] です", label)
}

// SizeLabels は指定可能な短縮表記を定義順で返します。
func SizeLabels() []string {
	return []string{"16:9", "9:16", "4:3", "3:4", "1:1"}
}
