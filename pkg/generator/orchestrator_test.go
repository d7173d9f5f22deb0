package generator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shouni/go-image-edit-kit/pkg/domain"
)

// newTestOrchestrator はスリープを実時間待ちなしに差し替えた Orchestrator を作る。
func newTestOrchestrator(t *testing.T, client *mockAIClient, sink *mockSink) (*Orchestrator, *[]time.Duration) {
	t.Helper()
	o, err := New(client, sink)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var delays []time.Duration
	o.sleep = func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}
	return o, &delays
}

func editRequest(prompt string) domain.EditRequest {
	return domain.EditRequest{Prompt: prompt, Model: "gemini-2.0-flash-exp-image-generation"}
}

func TestOrchestrator_Preflight(t *testing.T) {
	t.Run("空プロンプトはネットワーク呼び出しゼロで終端エラー", func(t *testing.T) {
		client := &mockAIClient{}
		sink := &mockSink{}
		o, _ := newTestOrchestrator(t, client, sink)

		_, err := o.Generate(context.Background(), editRequest("   \n\t"))
		if !errors.Is(err, ErrPromptRequired) {
			t.Fatalf("got %v, want ErrPromptRequired", err)
		}
		if client.calls != 0 {
			t.Errorf("ネットワーク呼び出しが発生した: %d回", client.calls)
		}
		if sink.last().Status != domain.AttemptError {
			t.Errorf("終端レコードが記録されていない: %+v", sink.last())
		}
	})

	t.Run("資格情報なしはネットワーク呼び出しゼロで終端エラー", func(t *testing.T) {
		sink := &mockSink{}
		o, err := New(nil, sink)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if _, err := o.Generate(context.Background(), editRequest("hello")); !errors.Is(err, ErrCredentialRequired) {
			t.Fatalf("got %v, want ErrCredentialRequired", err)
		}
	})

	t.Run("sinkなしではコンストラクタが失敗する", func(t *testing.T) {
		if _, err := New(&mockAIClient{}, nil); err == nil {
			t.Error("expected error for nil sink")
		}
	})
}

func TestOrchestrator_Success(t *testing.T) {
	t.Run("画像とテキストの抽出", func(t *testing.T) {
		imgData := []byte("png-data")
		client := &mockAIClient{steps: []step{{resp: imageResponse(imgData, "  a blue cat  ")}}}
		sink := &mockSink{}
		o, _ := newTestOrchestrator(t, client, sink)

		out, err := o.Generate(context.Background(), editRequest("hello"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !bytes.Equal(out.Data, imgData) || out.MimeType != "image/png" {
			t.Errorf("画像データの抽出が不正: %+v", out)
		}
		if out.Description != "a blue cat" {
			t.Errorf("説明テキストがトリムされていない: %q", out.Description)
		}

		last := sink.last()
		if last.Status != domain.AttemptSuccess || last.RetryCount != 0 {
			t.Errorf("成功レコードが不正: %+v", last)
		}
		if last.RawResponseSnapshot == "" {
			t.Error("成功時の生レスポンススナップショットが空")
		}
		if sink.output == nil {
			t.Error("生成結果スロットが更新されていない")
		}
	})

	t.Run("503が2回続いても3回目の成功で完了しRetryCountは2", func(t *testing.T) {
		serviceErr := errors.New("503 Service Unavailable")
		client := &mockAIClient{steps: []step{
			{err: serviceErr},
			{err: serviceErr},
			{resp: imageResponse([]byte("ok"), "")},
		}}
		sink := &mockSink{}
		o, delays := newTestOrchestrator(t, client, sink)

		out, err := o.Generate(context.Background(), editRequest("hello"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out == nil || client.calls != 3 {
			t.Fatalf("呼び出し回数=%d, want 3", client.calls)
		}

		last := sink.last()
		if last.Status != domain.AttemptSuccess || last.RetryCount != 2 {
			t.Errorf("成功レコードが不正: %+v", last)
		}
		if sink.terminalErr != "" {
			t.Errorf("成功したのに終端エラーが残っている: %q", sink.terminalErr)
		}

		// 指数バックオフ: 1回目の失敗後は1秒、2回目は2秒
		want := []time.Duration{1000 * time.Millisecond, 2000 * time.Millisecond}
		if len(*delays) != len(want) || (*delays)[0] != want[0] || (*delays)[1] != want[1] {
			t.Errorf("バックオフ間隔が不正: %v", *delays)
		}
	})
}

func TestOrchestrator_RetryBound(t *testing.T) {
	t.Run("リトライ可能エラーが続くと上限ちょうどで打ち切る", func(t *testing.T) {
		serviceErr := errors.New("503 Service Unavailable")
		client := &mockAIClient{steps: []step{
			{err: serviceErr}, {err: serviceErr}, {err: serviceErr}, {err: serviceErr},
		}}
		sink := &mockSink{}
		o, _ := newTestOrchestrator(t, client, sink)

		_, err := o.Generate(context.Background(), editRequest("hello"))
		if err == nil {
			t.Fatal("expected terminal error")
		}
		if client.calls != DefaultMaxAttempts {
			t.Errorf("呼び出し回数=%d, want %d", client.calls, DefaultMaxAttempts)
		}
		if !strings.Contains(err.Error(), fmt.Sprintf("%d回", DefaultMaxAttempts)) {
			t.Errorf("終端メッセージに試行回数が含まれない: %v", err)
		}
		if sink.last().Status != domain.AttemptError {
			t.Errorf("終端レコードが不正: %+v", sink.last())
		}
	})

	t.Run("空応答もリトライ可能として同じ上限を消費する", func(t *testing.T) {
		client := &mockAIClient{steps: []step{
			{resp: textOnlyResponse()},
			{resp: nil},
			{resp: textOnlyResponse()},
		}}
		sink := &mockSink{}
		o, _ := newTestOrchestrator(t, client, sink)

		_, err := o.Generate(context.Background(), editRequest("hello"))
		if err == nil {
			t.Fatal("expected terminal error")
		}
		if client.calls != DefaultMaxAttempts {
			t.Errorf("呼び出し回数=%d, want %d", client.calls, DefaultMaxAttempts)
		}
	})
}

func TestOrchestrator_FatalClassification(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		keyword string
	}{
		{"401はリトライせず認証メッセージ", errors.New("401 Unauthorized"), "APIキー"},
		{"api keyはリトライせず認証メッセージ", errors.New("invalid API key provided"), "APIキー"},
		{"404はリトライせずモデルメッセージ", errors.New("404 model not found"), "モデル"},
		{"safetyはリトライせずポリシーメッセージ", errors.New("blocked due to safety settings"), "ポリシー"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := &mockAIClient{steps: []step{{err: tc.err}}}
			sink := &mockSink{}
			o, _ := newTestOrchestrator(t, client, sink)

			_, err := o.Generate(context.Background(), editRequest("hello"))
			if err == nil {
				t.Fatal("expected fatal error")
			}
			if client.calls != 1 {
				t.Errorf("致命エラーで%d回呼ばれた（期待は1回）", client.calls)
			}
			if !strings.Contains(sink.terminalErr, tc.keyword) {
				t.Errorf("カテゴリ別メッセージが不正: %q（%q を期待）", sink.terminalErr, tc.keyword)
			}
		})
	}
}

func TestBackoffDelay(t *testing.T) {
	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 1000 * time.Millisecond},
		{2, 2000 * time.Millisecond},
		{3, 4000 * time.Millisecond},
		{4, 5000 * time.Millisecond}, // 上限で頭打ち
		{10, 5000 * time.Millisecond},
	}
	for _, tc := range cases {
		if got := backoffDelay(tc.attempt); got != tc.want {
			t.Errorf("backoffDelay(%d) = %v, want %v", tc.attempt, got, tc.want)
		}
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want ErrorClass
	}{
		{"429はリトライ可能", errors.New("429 Too Many Requests"), ClassRetryable},
		{"quotaはリトライ可能", errors.New("Quota exceeded for requests"), ClassRetryable},
		{"timeoutはリトライ可能", errors.New("context deadline exceeded (Client.Timeout)"), ClassRetryable},
		{"未知のエラーは楽観的にリトライ可能", errors.New("something inexplicable happened"), ClassRetryable},
		{"authenticationは致命", errors.New("Authentication failed"), ClassFatalAuth},
		{"403は致命", errors.New("HTTP 403 Forbidden"), ClassFatalAuth},
		{"not foundは致命", errors.New("model gemini-x not found"), ClassFatalModel},
		{"content policyは致命", errors.New("rejected by content policy"), ClassFatalSafety},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.err); got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}
