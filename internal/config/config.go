package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/shouni/go-utils/envutil"
)

// デフォルト値の定義なのだ
const (
	DefaultImageModel   = "gemini-2.0-flash-exp-image-generation"
	DefaultHTTPTimeout  = 30 * time.Second
	DefaultCacheTTL     = 10 * time.Minute
	DefaultRateLimit    = 10 * time.Second // --each モードで連続リクエストにかける間隔
	DefaultOutputDir    = "output"         // 生成画像のデフォルト保存先なのだ
	DefaultNegativeMode = "combined"
	// DefaultCryptoSalt は keystore 用のソルト（16進数）。本番では環境変数で差し替える前提なのだ。
	DefaultCryptoSalt = "7f3a9c51e8b2d604"
)

// Config はアプリケーション全体の環境設定（APIキーやモデル設定）を保持する構造体なのだ。
type Config struct {
	GeminiAPIKey     string // 環境変数由来のキー。存在する場合は keystore より優先され、保存もされない
	GeminiImageModel string
	CryptoSalt       string
	CryptoPass       string
	KeystorePath     string

	Options EditOptions
}

// LoadConfig は環境変数から設定を読み込み、構造体を返すのだ！
func LoadConfig() *Config {
	cfg := &Config{
		GeminiAPIKey:     envutil.GetEnv("GEMINI_API_KEY", ""),
		GeminiImageModel: envutil.GetEnv("IMAGE_GEMINI_MODEL", DefaultImageModel),
		CryptoSalt:       envutil.GetEnv("IMAGE_EDIT_CRYPTO_SALT", DefaultCryptoSalt),
		CryptoPass:       envutil.GetEnv("IMAGE_EDIT_CRYPTO_PASS", defaultPassphrase()),
		KeystorePath:     envutil.GetEnv("IMAGE_EDIT_KEYSTORE", defaultKeystorePath()),
	}
	return cfg
}

// defaultPassphrase は実行ホスト名を鍵導出のパスフレーズに使うのだ。
// 環境ごとに異なる鍵になり、ファイルを持ち出しただけでは復号できないのだよ。
func defaultPassphrase() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "go-image-edit-kit"
	}
	return host
}

func defaultKeystorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".image-edit-kit", "credential.bin")
	}
	return filepath.Join(home, ".config", "image-edit-kit", "credential.bin")
}

// EditOptions は CLI フラグから渡される実行時のパラメータなのだ。
type EditOptions struct {
	// プロンプト入力関連
	PromptText   string   // --prompt: 編集指示の自由記述
	PromptFile   string   // --prompt-file: ファイル（ローカル or gs://...）から読む
	NegativeText string   // --negative: 含めたくない要素
	NegativeMode string   // --negative-mode: combined / separate
	Size         string   // --size: 16:9 / 9:16 / 4:3 / 3:4 / 1:1
	Templates    []string // --template: "pose:standing" 形式の断片（複数可）
	InsertRefs   bool     // --insert-refs: 添付画像ごとの参照マーカーを末尾に挿入

	// 入力画像関連
	Sources    []string // --image: ローカルパス / gs://... / http(s)://...（複数可）
	NoCompress bool     // --no-compress: 取り込み時のJPEG再圧縮を無効化

	// 出力関連
	OutputFile string // --output-file: 省略時は時刻から合成したファイル名
	LogFile    string // --log-file: 最新の試行レコードをJSONで保存

	// AI挙動・実行制御
	Model       string        // --model
	Each        bool          // --each: 画像1枚ごとに個別生成するバッチモード
	Refine      int           // --refine: 生成結果を入力に昇格させて繰り返す回数
	HTTPTimeout time.Duration // --http-timeout
}
