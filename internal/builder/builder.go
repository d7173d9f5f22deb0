package builder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shouni/go-image-edit-kit/internal/config"
	"github.com/shouni/go-image-edit-kit/internal/runner"
	"github.com/shouni/go-image-edit-kit/pkg/generator"
	"github.com/shouni/go-image-edit-kit/pkg/imageset"
	"github.com/shouni/go-image-edit-kit/pkg/keystore"
	"github.com/shouni/go-image-edit-kit/pkg/prompts"

	gocache "github.com/patrickmn/go-cache"
	"github.com/shouni/go-gemini-client/pkg/gemini"
	"google.golang.org/genai"
)

// InitializeAIClient は gemini クライアントを初期化します。
func InitializeAIClient(ctx context.Context, apiKey string) (gemini.GenerativeModel, error) {
	const defaultGeminiTemperature = float32(0.2)
	clientConfig := gemini.Config{
		APIKey:      apiKey,
		Temperature: genai.Ptr(defaultGeminiTemperature),
	}
	aiClient, err := gemini.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("AIクライアントの初期化に失敗しました: %w", err)
	}
	return aiClient, nil
}

// InitializeKeystore は設定から keystore を構築します。
func InitializeKeystore(cfg *config.Config) (*keystore.Store, error) {
	store, err := keystore.New(cfg.KeystorePath, cfg.CryptoPass, cfg.CryptoSalt)
	if err != nil {
		return nil, fmt.Errorf("keystoreの初期化に失敗したのだ: %w", err)
	}
	return store, nil
}

// ResolveCredential は環境変数と keystore からAPIキーを解決します。
// 環境変数由来のキーが優先され、その場合 keystore は参照すらしません。
// どちらにも無ければ空文字列を返します（終端判定はオーケストレーターの責務）。
func ResolveCredential(cfg *config.Config, store *keystore.Store) string {
	if cfg.GeminiAPIKey != "" {
		return cfg.GeminiAPIKey
	}
	if store == nil {
		return ""
	}

	secret, err := store.Load()
	if err != nil {
		if !errors.Is(err, keystore.ErrNotFound) {
			slog.Warn("保存済みAPIキーの読み込みに失敗したのだ", "error", err)
		}
		return ""
	}
	return secret
}

// BuildImageLoader は入力画像のローダーを構築します。
// HTTP取得の結果は go-cache でTTLキャッシュされるのだ。
func BuildImageLoader(appCtx *AppContext) (*imageset.Loader, error) {
	cache := gocache.New(config.DefaultCacheTTL, 2*config.DefaultCacheTTL)
	loader, err := imageset.NewLoader(appCtx.Reader, appCtx.httpClient, cache, config.DefaultCacheTTL)
	if err != nil {
		return nil, fmt.Errorf("画像ローダーの初期化に失敗したのだ: %w", err)
	}
	return loader, nil
}

// BuildEditRunner は単一の編集アクションを担当する Runner を構築します。
func BuildEditRunner(appCtx *AppContext, set *imageset.Manager, assembler *prompts.Assembler) (*runner.EditRunner, error) {
	orch, err := generator.New(appCtx.aiClient, appCtx.Recorder)
	if err != nil {
		return nil, fmt.Errorf("オーケストレーターの初期化に失敗したのだ: %w", err)
	}

	return runner.NewEditRunner(orch, set, assembler, appCtx.Writer, appCtx.Config.GeminiImageModel, appCtx.Options), nil
}

// BuildBatchRunner は画像1枚ごとの個別生成を担当する Runner を構築します。
func BuildBatchRunner(appCtx *AppContext, set *imageset.Manager, assembler *prompts.Assembler) (*runner.BatchRunner, error) {
	orch, err := generator.New(appCtx.aiClient, appCtx.Recorder)
	if err != nil {
		return nil, fmt.Errorf("オーケストレーターの初期化に失敗したのだ: %w", err)
	}

	return runner.NewBatchRunner(orch, set, assembler, appCtx.Writer, appCtx.Config.GeminiImageModel, appCtx.Options), nil
}

// ParseNegativeMode は CLI の文字列指定をアセンブラのモードに解決します。
func ParseNegativeMode(mode string) (prompts.NegativeMode, error) {
	switch mode {
	case "", config.DefaultNegativeMode:
		return prompts.NegativeCombined, nil
	case "separate":
		return prompts.NegativeSeparate, nil
	default:
		return prompts.NegativeCombined, fmt.Errorf("サポートされていないネガティブモード: '%s'。combined か separate を指定してほしいのだ", mode)
	}
}
