package domain

// EditRequest は1回の生成アクションに渡す入力のスナップショットです。
// Images はオーケストレーター呼び出し時点の画像セットの写しであり、
// 実行中にセットが書き換えられても影響を受けません。
type EditRequest struct {
	Prompt         string
	NegativePrompt string
	Model          string
	SizeDirective  string
	Images         []ImageItem
}

// EditResponse は生成された画像データとそのメタデータです。
type EditResponse struct {
	Data        []byte
	MimeType    string
	Description string // 画像と一緒に返されたテキスト（任意）
}
