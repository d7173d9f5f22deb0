package cmd

import (
	"fmt"
	"log/slog"

	"github.com/shouni/go-image-edit-kit/internal/builder"
	"github.com/shouni/go-image-edit-kit/internal/config"

	"github.com/spf13/cobra"
)

// keyCmd は、APIキーの暗号化保存まわりを束ねる親コマンドなのだ。
var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "APIキーの暗号化保存と削除を行うのだ。",
	Long: `Gemini APIキーを暗号化してローカルに保存するのだ。
保存したキーは環境変数 GEMINI_API_KEY が無いときのフォールバックとして使われるのだよ。
環境変数にキーがある場合はそちらが優先され、保存も行われないのだ。`,
}

var keySaveCmd = &cobra.Command{
	Use:   "save <api-key>",
	Short: "APIキーを暗号化して保存するのだ。",
	Args:  cobra.ExactArgs(1),
	RunE:  keySaveCommand,
}

var keyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "保存済みのAPIキーを削除するのだ。",
	Args:  cobra.NoArgs,
	RunE:  keyClearCommand,
}

func init() {
	keyCmd.AddCommand(keySaveCmd, keyClearCmd)
}

func keySaveCommand(cmd *cobra.Command, args []string) error {
	cfg := config.LoadConfig()

	// 環境変数にキーがある間は保存しても参照されないので、先に知らせておくのだ
	if cfg.GeminiAPIKey != "" {
		slog.Warn("環境変数 GEMINI_API_KEY が設定されているのだ。保存したキーは環境変数が無いときだけ使われるのだよ")
	}

	store, err := builder.InitializeKeystore(cfg)
	if err != nil {
		return err
	}
	if err := store.Save(args[0]); err != nil {
		return fmt.Errorf("APIキーの保存に失敗したのだ: %w", err)
	}

	slog.Info("APIキーを暗号化して保存したのだ", "path", cfg.KeystorePath)
	return nil
}

func keyClearCommand(cmd *cobra.Command, args []string) error {
	cfg := config.LoadConfig()

	store, err := builder.InitializeKeystore(cfg)
	if err != nil {
		return err
	}
	if err := store.Clear(); err != nil {
		return fmt.Errorf("APIキーの削除に失敗したのだ: %w", err)
	}

	slog.Info("保存済みのAPIキーを削除したのだ", "path", cfg.KeystorePath)
	return nil
}
