package runner

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shouni/go-image-edit-kit/internal/config"
	"github.com/shouni/go-image-edit-kit/pkg/domain"
	"github.com/shouni/go-image-edit-kit/pkg/imageset"
	"github.com/shouni/go-image-edit-kit/pkg/prompts"

	"github.com/shouni/go-utils/urlpath"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// BatchRunner は添付画像1枚ごとに同じ指示を個別適用するバッチモードの実体。
// 各画像の生成は独立したアクションで、内部のリトライはそれぞれ完結するのだ。
type BatchRunner struct {
	generator Generator
	set       *imageset.Manager
	assembler *prompts.Assembler
	writer    OutputWriter
	model     string
	opts      config.EditOptions
}

// NewBatchRunner は BatchRunner の新しいインスタンスを生成して返す。
func NewBatchRunner(
	gen Generator,
	set *imageset.Manager,
	assembler *prompts.Assembler,
	writer OutputWriter,
	model string,
	opts config.EditOptions,
) *BatchRunner {
	return &BatchRunner{
		generator: gen,
		set:       set,
		assembler: assembler,
		writer:    writer,
		model:     model,
		opts:      opts,
	}
}

// Run は並列処理を用いて、各画像に対する生成を実行するメインロジックなのだ。
func (r *BatchRunner) Run(ctx context.Context, draft, negative *prompts.Draft, directive prompts.SizeDirective) ([]*domain.EditResponse, error) {
	items := r.set.Items()
	if len(items) == 0 {
		return nil, fmt.Errorf("バッチモードには画像が1枚以上必要なのだ（--image で指定してほしいのだ）")
	}

	assembled := r.assembler.Assemble(draft, directive, negative)

	// ステータス更新はゴルーチン起動前後の単一ライターで行う
	for _, item := range items {
		r.set.SetStatus(item.ID, domain.StatusGenerating)
	}

	results := make([]*domain.EditResponse, len(items))
	eg, egCtx := errgroup.WithContext(ctx)

	// 設定された間隔でレートリミット（流量制限）をかけるのだ
	// Burst 2 により、開始直後に2枚までは同時にリクエストを開始できるのだ
	limiter := rate.NewLimiter(rate.Every(config.DefaultRateLimit), 2)
	slog.Info("画像ごとの個別生成を開始するのだ", "count", len(items), "interval", config.DefaultRateLimit)

	for i, item := range items {
		i, item := i, item // ゴルーチンのクロージャ対策なのだ

		eg.Go(func() error {
			if err := limiter.Wait(egCtx); err != nil {
				return err
			}

			req := domain.EditRequest{
				Prompt:         assembled.Prompt,
				NegativePrompt: assembled.Negative,
				Model:          r.model,
				SizeDirective:  string(directive),
				Images:         []domain.ImageItem{item},
			}

			slog.Info("画像を個別生成中...", "index", i+1, "filename", item.Filename)

			out, err := r.generator.Generate(egCtx, req)
			if err != nil {
				return fmt.Errorf("'%s' の生成に失敗したのだ: %w", item.Filename, err)
			}
			results[i] = out
			return nil
		})
	}

	err := eg.Wait()
	for i, item := range items {
		if results[i] != nil {
			r.set.SetStatus(item.ID, domain.StatusCompleted)
		} else {
			r.set.SetStatus(item.ID, domain.StatusError)
		}
	}
	if err != nil {
		return nil, err
	}

	if err := r.saveAll(ctx, results); err != nil {
		return nil, err
	}
	return results, nil
}

// saveAll は結果を連番付きパスへ順に保存するのだ。
func (r *BatchRunner) saveAll(ctx context.Context, results []*domain.EditResponse) error {
	base := r.opts.OutputFile
	if base == "" {
		name := fmt.Sprintf("edited_%s.png", time.Now().Format("20060102_150405"))
		resolved, err := urlpath.ResolveOutputPath(config.DefaultOutputDir, name)
		if err != nil {
			return fmt.Errorf("出力パスの解決に失敗したのだ: %w", err)
		}
		base = resolved
	}

	for i, out := range results {
		path, err := urlpath.GenerateIndexedPath(base, i+1)
		if err != nil {
			return fmt.Errorf("連番付き出力パスの生成に失敗したのだ: %w", err)
		}
		if err := r.writer.Write(ctx, path, bytes.NewReader(out.Data), out.MimeType); err != nil {
			return fmt.Errorf("生成画像の保存に失敗したのだ: %w", err)
		}
		slog.Info("生成画像を保存したのだ", "path", path)
	}
	return nil
}
