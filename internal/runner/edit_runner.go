package runner

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/shouni/go-image-edit-kit/internal/config"
	"github.com/shouni/go-image-edit-kit/pkg/domain"
	"github.com/shouni/go-image-edit-kit/pkg/imageset"
	"github.com/shouni/go-image-edit-kit/pkg/prompts"

	"github.com/shouni/go-utils/urlpath"
)

// Generator は編集リクエストを実行する契約です。
type Generator interface {
	Generate(ctx context.Context, req domain.EditRequest) (*domain.EditResponse, error)
}

// OutputWriter はデータを外部ストレージに保存するためのインターフェースです。
// remoteio.OutputWriter がこれを満たします。
type OutputWriter interface {
	Write(ctx context.Context, path string, data io.Reader, mimeType string) error
}

// EditRunner は1回の編集アクション（組み立て→生成→保存）を駆動する実体。
// --refine 指定時は生成結果を入力に昇格させて同じ指示を繰り返し適用するのだ。
type EditRunner struct {
	generator Generator
	set       *imageset.Manager
	assembler *prompts.Assembler
	writer    OutputWriter
	model     string
	opts      config.EditOptions
}

// NewEditRunner は EditRunner の新しいインスタンスを生成して返す。
func NewEditRunner(
	gen Generator,
	set *imageset.Manager,
	assembler *prompts.Assembler,
	writer OutputWriter,
	model string,
	opts config.EditOptions,
) *EditRunner {
	return &EditRunner{
		generator: gen,
		set:       set,
		assembler: assembler,
		writer:    writer,
		model:     model,
		opts:      opts,
	}
}

// Run は編集アクションを実行し、最後に生成された画像を返すのだ。
func (r *EditRunner) Run(ctx context.Context, draft, negative *prompts.Draft, directive prompts.SizeDirective) (*domain.EditResponse, error) {
	rounds := 1
	if r.opts.Refine > 0 {
		rounds += r.opts.Refine
	}

	// 組み立ては純粋関数なので、全ラウンドで同じ指示テキストになる
	assembled := r.assembler.Assemble(draft, directive, negative)

	set := r.set
	var last *domain.EditResponse

	for round := 1; round <= rounds; round++ {
		items := set.Items()
		for _, item := range items {
			set.SetStatus(item.ID, domain.StatusGenerating)
		}

		req := domain.EditRequest{
			Prompt:         assembled.Prompt,
			NegativePrompt: assembled.Negative,
			Model:          r.model,
			SizeDirective:  string(directive),
			Images:         items,
		}

		slog.Info("編集アクションを開始するのだ", "round", round, "rounds", rounds, "images", len(items))

		out, err := r.generator.Generate(ctx, req)
		if err != nil {
			for _, item := range items {
				set.SetStatus(item.ID, domain.StatusError)
			}
			return nil, err
		}
		for _, item := range items {
			set.SetStatus(item.ID, domain.StatusCompleted)
		}

		outputPath, err := r.resolveOutputPath(out.MimeType, round, rounds)
		if err != nil {
			return nil, err
		}
		if err := r.writer.Write(ctx, outputPath, bytes.NewReader(out.Data), out.MimeType); err != nil {
			return nil, fmt.Errorf("生成画像の保存に失敗したのだ: %w", err)
		}
		slog.Info("生成画像を保存したのだ", "path", outputPath, "round", round)

		last = out
		if round < rounds {
			// 生成結果だけを入力とする新しいセットで次のラウンドへ
			set = imageset.NewManager(false)
			set.Promote(out.Data, out.MimeType)
		}
	}

	return last, nil
}

// resolveOutputPath は保存先パスを決めます。指定がなければ時刻から合成し、
// 複数ラウンドのときは拡張子の前に連番を挟みます。
func (r *EditRunner) resolveOutputPath(mimeType string, round, rounds int) (string, error) {
	base := r.opts.OutputFile
	if base == "" {
		name := fmt.Sprintf("edited_%s%s", time.Now().Format("20060102_150405"), extensionFor(mimeType))
		resolved, err := urlpath.ResolveOutputPath(config.DefaultOutputDir, name)
		if err != nil {
			return "", fmt.Errorf("出力パスの解決に失敗したのだ: %w", err)
		}
		base = resolved
	}

	if rounds == 1 {
		return base, nil
	}
	indexed, err := urlpath.GenerateIndexedPath(base, round)
	if err != nil {
		return "", fmt.Errorf("連番付き出力パスの生成に失敗したのだ: %w", err)
	}
	return indexed, nil
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}
