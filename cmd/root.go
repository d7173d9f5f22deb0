package cmd

import (
	"log/slog"
	"os"

	"github.com/shouni/go-image-edit-kit/internal/config"

	"github.com/joho/godotenv"
	clibase "github.com/shouni/go-cli-base"
	"github.com/spf13/cobra"
)

// opts は CLI フラグの値を受け取る共有の実行時設定なのだ。
// addAppFlags で各フラグと紐付けられるのだよ。
var opts config.EditOptions

// addAppFlags は、アプリケーション全般に適用されるグローバルフラグを定義するのだ。
func addAppFlags(rootCmd *cobra.Command) {
	// --- プロンプト入力関連 ---
	rootCmd.PersistentFlags().StringVarP(&opts.PromptText, "prompt", "p", "", "編集指示の自由記述テキストなのだ。")
	rootCmd.PersistentFlags().StringVarP(&opts.PromptFile, "prompt-file", "f", "", "編集指示を書いたファイルのパス（ローカル or gs://...）なのだ。")
	rootCmd.PersistentFlags().StringVarP(&opts.NegativeText, "negative", "n", "", "生成画像に含めたくない要素なのだ。")
	rootCmd.PersistentFlags().StringVar(&opts.NegativeMode, "negative-mode", config.DefaultNegativeMode, "ネガティブ指示の送信方式（combined / separate）なのだ。")
	rootCmd.PersistentFlags().StringVarP(&opts.Size, "size", "s", "", "出力サイズの比率（16:9 / 9:16 / 4:3 / 3:4 / 1:1）なのだ。")
	rootCmd.PersistentFlags().StringArrayVarP(&opts.Templates, "template", "t", nil, "挿入するテンプレート断片（'カテゴリ:値' 形式、複数可）なのだ。")
	rootCmd.PersistentFlags().BoolVar(&opts.InsertRefs, "insert-refs", false, "添付画像ごとの参照マーカーを指示の末尾に挿入するのだ。")

	// --- 入力画像関連 ---
	rootCmd.PersistentFlags().StringArrayVarP(&opts.Sources, "image", "i", nil, "入力画像のパス（ローカル / gs://... / http(s)://...、複数可）なのだ。")
	rootCmd.PersistentFlags().BoolVar(&opts.NoCompress, "no-compress", false, "取り込み時のJPEG再圧縮を無効化するのだ。")

	// --- 生成結果の出力設定 ---
	rootCmd.PersistentFlags().StringVarP(&opts.OutputFile, "output-file", "o", "", "保存パス（ローカル or gs://...、省略時は時刻から合成）なのだ。")
	rootCmd.PersistentFlags().StringVar(&opts.LogFile, "log-file", "", "最新の試行レコードをJSONで保存するパスなのだ。")

	// --- AIモデル・挙動設定 ---
	rootCmd.PersistentFlags().StringVar(&opts.Model, "model", "", "使用する Gemini 画像モデル名なのだ。")
	rootCmd.PersistentFlags().BoolVar(&opts.Each, "each", false, "画像1枚ごとに同じ指示を個別適用するバッチモードなのだ。")
	rootCmd.PersistentFlags().IntVar(&opts.Refine, "refine", 0, "生成結果を入力に昇格させて指示を繰り返す回数なのだ。")
	rootCmd.PersistentFlags().DurationVar(&opts.HTTPTimeout, "http-timeout", config.DefaultHTTPTimeout, "Webリクエストのタイムアウトなのだ。")
}

// preRunAppE は、コマンド実行前の共通処理なのだ。
// APIキーは環境変数か keystore のどちらかにあればよいので、ここでは必須チェックはしないのだ。
func preRunAppE(cmd *cobra.Command, args []string) error {
	// カレントディレクトリの .env があれば読み込む（無ければ何もしない）
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Debug(".env の読み込みをスキップしたのだ", "error", err)
	}
	return nil
}

// Execute は、アプリケーションのメインエントリポイントなのだ。
// main.go から呼び出されて、cobra のコマンドライン解析を開始するのだよ。
func Execute() {
	clibase.Execute(
		"image-edit-kit",
		addAppFlags,
		preRunAppE,
		editCmd,
		templatesCmd,
		keyCmd,
	)
}
