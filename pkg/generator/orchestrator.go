package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"google.golang.org/genai"

	"github.com/shouni/go-image-edit-kit/pkg/domain"
)

const (
	// DefaultMaxAttempts は1アクションあたりの呼び出し上限です（初回+リトライ2回）。
	DefaultMaxAttempts = 3
	// baseBackoff はリトライ間隔の初期値、maxBackoff はその上限です。
	baseBackoff = 1000 * time.Millisecond
	maxBackoff  = 5000 * time.Millisecond
)

// 事前検証の終端エラー。ネットワーク呼び出しの前に返され、リトライもされません。
var (
	ErrCredentialRequired = errors.New("APIキーが設定されていません。環境変数 GEMINI_API_KEY か key save で設定してください")
	ErrPromptRequired     = errors.New("プロンプトが入力されていません。編集指示を書いてから実行してください")
)

// AttemptSink は試行レコードの書き込み先です。一方向で、ここからの読み戻しはしません。
type AttemptSink interface {
	Record(rec domain.AttemptRecord)
	SetOutput(resp *domain.EditResponse)
	SetTerminalError(msg string)
}

// Orchestrator は組み立て済みプロンプトと画像ペイロードを生成APIの呼び出しに
// 変換し、応答の形を検証し、失敗を分類して有限リトライを駆動します。
// 呼び出し side は同時に1アクションのみという規約です（内部で排他はしません）。
type Orchestrator struct {
	aiClient    gemini.GenerativeModel
	sink        AttemptSink
	maxAttempts int

	// sleep はテストで差し替えるためのフックです。
	sleep func(ctx context.Context, d time.Duration) error
}

// New は Orchestrator を初期化します。sink は必須です。
// aiClient は nil を許容し、その場合は Generate が事前検証で失敗します
// （資格情報なしはネットワークに出る前の終端エラーであるため）。
func New(aiClient gemini.GenerativeModel, sink AttemptSink) (*Orchestrator, error) {
	if sink == nil {
		return nil, fmt.Errorf("sink (AttemptSink) is required")
	}

	return &Orchestrator{
		aiClient:    aiClient,
		sink:        sink,
		maxAttempts: DefaultMaxAttempts,
		sleep:       sleepContext,
	}, nil
}

// Generate は1回の生成アクションを実行します。試行のたびに同じレコードを
// RetryCount を進めて記録し、成功時は生成結果スロットを上書きします。
// 終端失敗時は前回の生成結果には触れず、エラーテキストだけを記録します。
func (o *Orchestrator) Generate(ctx context.Context, req domain.EditRequest) (*domain.EditResponse, error) {
	rec := domain.AttemptRecord{
		Status:                 domain.AttemptGenerating,
		Timestamp:              time.Now(),
		PromptSnapshot:         req.Prompt,
		NegativePromptSnapshot: req.NegativePrompt,
		SizeSnapshot:           req.SizeDirective,
		MaxRetries:             o.maxAttempts,
	}

	// 事前検証（ネットワーク呼び出しなし・リトライなし）
	if o.aiClient == nil {
		return nil, o.terminal(rec, ErrCredentialRequired.Error(), ErrCredentialRequired)
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, o.terminal(rec, ErrPromptRequired.Error(), ErrPromptRequired)
	}

	parts := buildParts(req)

	var lastErr error
	for attempt := 1; attempt <= o.maxAttempts; attempt++ {
		rec.RetryCount = attempt - 1
		rec.Status = domain.AttemptGenerating
		o.sink.Record(rec)
		slog.Info("画像生成を試行中なのだ", "attempt", attempt, "max", o.maxAttempts, "model", req.Model)

		resp, err := o.aiClient.GenerateWithParts(ctx, req.Model, parts, gemini.GenerateOptions{})
		if err != nil {
			class := Classify(err)
			if !class.IsRetryable() {
				msg := class.UserMessage(err)
				return nil, o.terminal(rec, msg, fmt.Errorf("%s: %w", msg, err))
			}
			lastErr = err
		} else {
			out, perr := extractResponse(resp)
			if perr == nil {
				rec.Status = domain.AttemptSuccess
				rec.Description = out.Description
				rec.RawResponseSnapshot = snapshotRaw(resp)
				o.sink.Record(rec)
				o.sink.SetOutput(out)
				slog.Info("画像生成に成功したのだ", "retries", rec.RetryCount, "mime", out.MimeType)
				return out, nil
			}
			// 構造的に不正な応答は一時エラーと同じ扱いでリトライする
			lastErr = perr
		}

		if attempt < o.maxAttempts {
			delay := backoffDelay(attempt)
			slog.Warn("生成に失敗したのでリトライするのだ", "attempt", attempt, "delay", delay, "error", lastErr)
			if serr := o.sleep(ctx, delay); serr != nil {
				return nil, o.terminal(rec, serr.Error(), serr)
			}
		}
	}

	msg := fmt.Sprintf("%d回試行しましたが画像を生成できませんでした。画像やプロンプトを変えて再試行してください", o.maxAttempts)
	return nil, o.terminal(rec, msg, fmt.Errorf("%s: %w", msg, lastErr))
}

// terminal は終端失敗のレコードを確定させ、呼び出し元へ返すエラーを作ります。
func (o *Orchestrator) terminal(rec domain.AttemptRecord, msg string, err error) error {
	rec.Status = domain.AttemptError
	rec.ErrorMessage = msg
	o.sink.Record(rec)
	o.sink.SetTerminalError(msg)
	return err
}

// buildParts はテキストパート（ポジティブ、続いて分離モードのネガティブ）と、
// 画像セットの順序どおりのインラインデータパートを組み立てます。
func buildParts(req domain.EditRequest) []*genai.Part {
	parts := []*genai.Part{{Text: req.Prompt}}
	if req.NegativePrompt != "" {
		parts = append(parts, &genai.Part{Text: req.NegativePrompt})
	}
	for _, img := range req.Images {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: img.MimeType, Data: img.Payload},
		})
	}
	return parts
}

// extractResponse は応答の形を検証し、最初の画像パートと任意のテキストを取り出します。
// 候補ゼロ、または候補はあるが画像パートを含まない場合はエラーです
// （呼び出し側でリトライ可能な空応答として扱われます）。
func extractResponse(resp *gemini.Response) (*domain.EditResponse, error) {
	if resp == nil || resp.RawResponse == nil || len(resp.RawResponse.Candidates) == 0 {
		return nil, fmt.Errorf("応答に候補が含まれていません")
	}

	for _, candidate := range resp.RawResponse.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}

		out := &domain.EditResponse{}
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && out.Data == nil {
				out.Data = part.InlineData.Data
				out.MimeType = part.InlineData.MIMEType
			}
			if part.Text != "" && out.Description == "" {
				out.Description = strings.TrimSpace(part.Text)
			}
		}
		if out.Data != nil {
			return out, nil
		}
	}

	return nil, fmt.Errorf("応答に画像データが含まれていません")
}

// backoffDelay は attempt 回目の失敗後の待機時間を返します。
// min(1000 * 2^(retry-1), 5000) ミリ秒の指数バックオフです。
func backoffDelay(attempt int) time.Duration {
	delay := baseBackoff << (attempt - 1)
	if delay > maxBackoff {
		return maxBackoff
	}
	return delay
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// snapshotRaw は成功応答の生データをログ表示用にJSON化します。
func snapshotRaw(resp *gemini.Response) string {
	if resp == nil || resp.RawResponse == nil {
		return ""
	}
	data, err := json.Marshal(resp.RawResponse)
	if err != nil {
		return ""
	}
	return string(data)
}
