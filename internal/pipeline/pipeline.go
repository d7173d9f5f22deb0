package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/shouni/go-image-edit-kit/internal/builder"
	"github.com/shouni/go-image-edit-kit/internal/config"
	"github.com/shouni/go-image-edit-kit/pkg/imageset"
	"github.com/shouni/go-image-edit-kit/pkg/prompts"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/go-remote-io/pkg/gcsfactory"
)

// ExecuteEdit は1回の編集アクション全体（入力取り込み → 組み立て → 生成 → 保存）を
// 駆動するのだ。--each 指定時は画像ごとの個別生成バッチに切り替わるのだ。
func ExecuteEdit(ctx context.Context, cfg *config.Config) error {
	appCtx, err := setupAppContext(ctx, cfg)
	if err != nil {
		return err
	}

	set, err := loadImageSet(ctx, appCtx)
	if err != nil {
		return err
	}

	draft, negative, err := buildDrafts(ctx, appCtx, set)
	if err != nil {
		return err
	}

	directive, err := prompts.ParseSizeDirective(cfg.Options.Size)
	if err != nil {
		return err
	}
	mode, err := builder.ParseNegativeMode(cfg.Options.NegativeMode)
	if err != nil {
		return err
	}
	assembler := prompts.NewAssembler(mode)

	// 生成の成否にかかわらず試行レコードは残るので、ログ書き出しは実行後に必ず試みる
	runErr := runEdit(ctx, appCtx, set, assembler, draft, negative, directive)
	if err := exportLog(ctx, appCtx); err != nil {
		slog.Warn("試行ログの書き出しに失敗したのだ", "error", err)
	}
	if runErr != nil {
		return runErr
	}

	slog.Info("編集アクションが完了したのだ！")
	return nil
}

// runEdit はモードに応じた Runner を構築して実行するのだ。
func runEdit(
	ctx context.Context,
	appCtx *builder.AppContext,
	set *imageset.Manager,
	assembler *prompts.Assembler,
	draft, negative *prompts.Draft,
	directive prompts.SizeDirective,
) error {
	if appCtx.Options.Each {
		batchRunner, err := builder.BuildBatchRunner(appCtx, set, assembler)
		if err != nil {
			return fmt.Errorf("BatchRunnerの構築に失敗したのだ: %w", err)
		}
		_, err = batchRunner.Run(ctx, draft, negative, directive)
		return err
	}

	editRunner, err := builder.BuildEditRunner(appCtx, set, assembler)
	if err != nil {
		return fmt.Errorf("EditRunnerの構築に失敗したのだ: %w", err)
	}
	_, err = editRunner.Run(ctx, draft, negative, directive)
	return err
}

// setupAppContext は、提供された設定と共有コンポーネントを使用して、アプリケーションコンテキストを初期化して返すのだ。
// APIキーが環境変数にも keystore にも無い場合、AIクライアントは nil のまま進み、
// 生成の実行前チェックで終端エラーとして記録されるのだ。
func setupAppContext(ctx context.Context, cfg *config.Config) (*builder.AppContext, error) {
	if cfg.Options.Model != "" {
		cfg.GeminiImageModel = cfg.Options.Model
	}
	timeout := cfg.Options.HTTPTimeout
	if timeout <= 0 {
		timeout = config.DefaultHTTPTimeout
	}
	httpClient := httpkit.New(timeout)

	store, err := builder.InitializeKeystore(cfg)
	if err != nil {
		// keystore が使えなくても環境変数キーでの実行は妨げない
		slog.Warn("keystoreの初期化に失敗したのだ", "error", err)
		store = nil
	}

	var aiClient gemini.GenerativeModel
	if apiKey := builder.ResolveCredential(cfg, store); apiKey != "" {
		aiClient, err = builder.InitializeAIClient(ctx, apiKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create ai client: %w", err)
		}
	}

	gcsFactory, err := gcsfactory.NewGCSClientFactory(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client factory: %w", err)
	}
	reader, err := gcsFactory.NewInputReader()
	if err != nil {
		return nil, err
	}
	writer, err := gcsFactory.NewOutputWriter()
	if err != nil {
		return nil, err
	}

	appCtx := builder.NewAppContext(cfg, httpClient, aiClient, reader, writer, store)
	return &appCtx, nil
}

// loadImageSet は --image で指定された入力元をまとめて取り込むのだ。
// 1つでも画像でないファイルが混ざっていればセット全体を変更せずに失敗するのだ。
func loadImageSet(ctx context.Context, appCtx *builder.AppContext) (*imageset.Manager, error) {
	compress := imageset.UseImageCompression && !appCtx.Options.NoCompress
	set := imageset.NewManager(compress)

	if len(appCtx.Options.Sources) == 0 {
		return set, nil
	}

	loader, err := builder.BuildImageLoader(appCtx)
	if err != nil {
		return nil, err
	}
	candidates, err := loader.LoadBatch(ctx, appCtx.Options.Sources)
	if err != nil {
		return nil, fmt.Errorf("入力画像の取得に失敗したのだ: %w", err)
	}
	if err := set.Add(candidates); err != nil {
		return nil, fmt.Errorf("入力画像の取り込みに失敗したのだ: %w", err)
	}

	slog.Info("入力画像を取り込んだのだ", "count", set.Len())
	return set, nil
}

// buildDrafts は指示テキストとネガティブ指示の下書きを構築するのだ。
func buildDrafts(ctx context.Context, appCtx *builder.AppContext, set *imageset.Manager) (*prompts.Draft, *prompts.Draft, error) {
	opts := appCtx.Options

	text := opts.PromptText
	if text == "" && opts.PromptFile != "" {
		loaded, err := readPromptFile(ctx, appCtx, opts.PromptFile)
		if err != nil {
			return nil, nil, err
		}
		text = loaded
	}

	draft := prompts.NewDraft(text)
	for _, spec := range opts.Templates {
		tmpl, err := resolveTemplate(spec)
		if err != nil {
			return nil, nil, err
		}
		draft.InsertTemplate(tmpl)
	}
	if opts.InsertRefs {
		for i, item := range set.Items() {
			draft.InsertImageRef(i+1, item.Filename)
		}
	}

	var negative *prompts.Draft
	if opts.NegativeText != "" {
		negative = prompts.NewDraft(opts.NegativeText)
	}
	return draft, negative, nil
}

// readPromptFile はローカル / gs:// のプロンプトファイルを読み込むのだ。
func readPromptFile(ctx context.Context, appCtx *builder.AppContext, path string) (string, error) {
	rc, err := appCtx.Reader.Open(ctx, path)
	if err != nil {
		return "", fmt.Errorf("プロンプトファイル '%s' の読み込みに失敗したのだ: %w", path, err)
	}
	defer rc.Close()

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, rc); err != nil {
		return "", fmt.Errorf("プロンプトファイル '%s' の読み込みに失敗したのだ: %w", path, err)
	}
	return buf.String(), nil
}

// resolveTemplate は "カテゴリ:値" 形式の指定をカタログの断片に解決するのだ。
// 行の解釈は prompts.ParseSegment に集約していて、"- " 付きの指定も
// 編集面の行と同じ規則で受け付けるのだ。値は断片テキストの値部でも
// 表示ラベルでも一致するのだよ。
func resolveTemplate(spec string) (prompts.Template, error) {
	seg := prompts.ParseSegment(spec)
	if seg.Kind != prompts.KindFragment {
		return prompts.Template{}, fmt.Errorf("--template は 'カテゴリ:値' 形式で指定してほしいのだ: %q", spec)
	}
	category, found := prompts.LookupCategory(seg.Category)
	if !found {
		return prompts.Template{}, fmt.Errorf("未知のテンプレートカテゴリなのだ: %q", seg.Category)
	}
	for _, tmpl := range category.Templates {
		frag := prompts.ParseSegment(tmpl.Text)
		if frag.Value == seg.Value || tmpl.Label == seg.Value {
			return tmpl, nil
		}
	}
	return prompts.Template{}, fmt.Errorf("カテゴリ '%s' に '%s' は見つからないのだ", seg.Category, seg.Value)
}

// exportLog は --log-file 指定時に最新の試行レコードをJSONで保存するのだ。
func exportLog(ctx context.Context, appCtx *builder.AppContext) error {
	path := appCtx.Options.LogFile
	if path == "" {
		return nil
	}

	data, err := appCtx.Recorder.ExportLatestJSON()
	if err != nil {
		return err
	}
	if data == nil {
		return nil
	}
	if err := appCtx.Writer.Write(ctx, path, bytes.NewReader(data), "application/json"); err != nil {
		return err
	}
	slog.Info("試行ログを保存したのだ", "path", path)
	return nil
}
