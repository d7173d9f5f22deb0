package prompts

// Template は挿入可能なプロンプト断片です。
// Text は "カテゴリ:値" 形式で、挿入後は通常の行と同じ正規化を通ります。
type Template struct {
	Label string // 表示用ラベル
	Text  string // 挿入される断片（category:value）
}

// Category はテンプレートカタログの1分類です。純粋な静的データで、ロジックは持ちません。
type Category struct {
	Name      string
	Templates []Template
}

// カタログ本体。表示順を保証するためマップではなくスライスで保持するのだ。
var catalog = []Category{
	{
		Name: "aspect",
		Templates: []Template{
			{Label: "横長", Text: "aspect:landscape"},
			{Label: "縦長", Text: "aspect:portrait"},
			{Label: "正方形", Text: "aspect:square"},
		},
	},
	{
		Name: "view",
		Templates: []Template{
			{Label: "正面", Text: "view:front view"},
			{Label: "俯瞰", Text: "view:bird's eye view"},
			{Label: "アオリ", Text: "view:low angle"},
			{Label: "斜め", Text: "view:45 degree angle"},
			{Label: "クローズアップ", Text: "view:close-up shot"},
			{Label: "引き", Text: "view:full body shot"},
		},
	},
	{
		Name: "pose",
		Templates: []Template{
			{Label: "立ち", Text: "pose:standing"},
			{Label: "座り", Text: "pose:sitting"},
			{Label: "寝転び", Text: "pose:lying down"},
			{Label: "歩き", Text: "pose:walking"},
			{Label: "走り", Text: "pose:running"},
			{Label: "ジャンプ", Text: "pose:jumping"},
		},
	},
	{
		Name: "accessory",
		Templates: []Template{
			{Label: "メガネ", Text: "accessory:wearing glasses"},
			{Label: "サングラス", Text: "accessory:wearing sunglasses"},
			{Label: "帽子", Text: "accessory:wearing a hat"},
			{Label: "キャップ", Text: "accessory:wearing a cap"},
			{Label: "ベレー帽", Text: "accessory:wearing a beret"},
			{Label: "マフラー", Text: "accessory:wearing a scarf"},
			{Label: "ネックレス", Text: "accessory:wearing a necklace"},
			{Label: "イヤリング", Text: "accessory:wearing earrings"},
			{Label: "バッグ", Text: "accessory:holding a bag"},
			{Label: "傘", Text: "accessory:holding an umbrella"},
		},
	},
	{
		Name: "background",
		Templates: []Template{
			{Label: "自然", Text: "background:nature scene"},
			{Label: "都会", Text: "background:urban cityscape"},
			{Label: "室内", Text: "background:indoor room"},
			{Label: "海", Text: "background:beach and ocean"},
			{Label: "山", Text: "background:mountain landscape"},
			{Label: "公園", Text: "background:park"},
			{Label: "カフェ", Text: "background:cafe interior"},
			{Label: "オフィス", Text: "background:office space"},
			{Label: "学校", Text: "background:school campus"},
			{Label: "夜景", Text: "background:night city view"},
			{Label: "夕暮れ", Text: "background:sunset sky"},
			{Label: "森林", Text: "background:forest"},
		},
	},
	{
		Name: "generate style",
		Templates: []Template{
			{Label: "写真調", Text: "generate style:photorealistic"},
			{Label: "絵画調", Text: "generate style:oil painting"},
			{Label: "水彩画", Text: "generate style:watercolor"},
			{Label: "鉛筆画", Text: "generate style:pencil sketch"},
			{Label: "パステル", Text: "generate style:pastel art"},
			{Label: "アニメ調", Text: "generate style:anime"},
			{Label: "漫画調", Text: "generate style:manga"},
			{Label: "ピクサー風", Text: "generate style:pixar"},
			{Label: "ジブリ風", Text: "generate style:ghibli"},
			{Label: "モノクロ", Text: "generate style:black and white"},
			{Label: "セピア", Text: "generate style:sepia"},
			{Label: "ネオン", Text: "generate style:neon"},
			{Label: "サイバーパンク", Text: "generate style:cyberpunk"},
			{Label: "レトロ", Text: "generate style:retro"},
			{Label: "ミニマル", Text: "generate style:minimal"},
			{Label: "抽象的", Text: "generate style:abstract"},
		},
	},
}

// Catalog はカタログ全体を定義順で返します。
func Catalog() []Category {
	return catalog
}

// LookupCategory は名前でカテゴリを検索します。見つからない場合は ok=false です。
func LookupCategory(name string) (Category, bool) {
	for _, c := range catalog {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}
