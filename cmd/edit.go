package cmd

import (
	"fmt"
	"log/slog"

	"github.com/shouni/go-image-edit-kit/internal/config"
	"github.com/shouni/go-image-edit-kit/internal/pipeline"

	"github.com/spf13/cobra"
)

// editCmd は、添付画像と編集指示から画像生成を実行するメインのサブコマンドなのだ。
var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "添付画像と編集指示からAIに画像を生成させるのだ。",
	Long: `編集指示テキスト・テンプレート断片・ネガティブ指示を1つのプロンプトに組み立て、
添付画像と一緒に Gemini へ送信して編集結果の画像を保存するのだ。
--each を付けると画像1枚ごとに同じ指示を個別適用するバッチモードになるのだよ。`,
	Example: "  image-edit-kit edit -i cat.png -p \"猫を犬に変えて\" -s 1:1 -o output/dog.png",
	RunE:    editCommand,
}

// editCommand は、edit サブコマンドの実行ロジック本体なのだ。
func editCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// 1. 指示の必須チェック（自由記述・ファイル・テンプレートのいずれかは必要なのだ）
	if opts.PromptText == "" && opts.PromptFile == "" && len(opts.Templates) == 0 {
		return fmt.Errorf("編集指示（--prompt / --prompt-file / --template のいずれか）を指定してほしいのだ")
	}
	if opts.Refine > 0 && opts.Each {
		return fmt.Errorf("--refine と --each は同時に指定できないのだ")
	}

	// 2. 環境変数から基本設定をロードし、コマンドライン引数の値を反映
	cfg := config.LoadConfig()
	cfg.Options = opts

	slog.Info("画像編集パイプラインを起動するのだ！",
		"images", len(opts.Sources),
		"each", opts.Each,
		"size", opts.Size,
		"output", opts.OutputFile)

	// 3. パイプライン実行
	return pipeline.ExecuteEdit(ctx, cfg)
}
