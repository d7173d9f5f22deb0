// Package recorder は生成アクションの診断ログを保持する一方向のデータシンクです。
// オーケストレーターは記録を書き込むだけで、ここを制御判断に使うことはありません。
package recorder

import (
	"encoding/json"
	"sync"

	"github.com/shouni/go-image-edit-kit/pkg/domain"
)

// Recorder は最新の試行レコードと、直近の生成結果・終端エラーを保持します。
// バッチモードでは複数ゴルーチンから記録されるため、内部でロックを取ります。
type Recorder struct {
	mu          sync.Mutex
	latest      *domain.AttemptRecord
	output      *domain.EditResponse
	terminalErr string
}

// New は空の Recorder を生成します。
func New() *Recorder {
	return &Recorder{}
}

// Record は試行レコードを記録します。前のレコードはマージせずに置き換えます。
// 同一アクション内のリトライは RetryCount を進めた同じレコードで上書きされます。
func (r *Recorder) Record(rec domain.AttemptRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.latest = &rec
}

// Latest は最新の試行レコードを返します。未記録なら ok=false です。
func (r *Recorder) Latest() (domain.AttemptRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.latest == nil {
		return domain.AttemptRecord{}, false
	}
	return *r.latest, true
}

// SetOutput は生成結果のスロットを上書きします。成功時のみ呼ばれ、
// 終端エラー時には前回の結果が残ります。
func (r *Recorder) SetOutput(resp *domain.EditResponse) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.output = resp
	r.terminalErr = ""
}

// Output は現在の生成結果を返します。未生成なら nil です。
func (r *Recorder) Output() *domain.EditResponse {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.output
}

// SetTerminalError は終端エラーの表示用テキストを記録します。
func (r *Recorder) SetTerminalError(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.terminalErr = msg
}

// TerminalError は直近の終端エラーテキストを返します。なければ空文字列です。
func (r *Recorder) TerminalError() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.terminalErr
}

// ExportLatestJSON は最新レコードをJSONで書き出します。ログファイル保存用です。
func (r *Recorder) ExportLatestJSON() ([]byte, error) {
	rec, ok := r.Latest()
	if !ok {
		return nil, nil
	}
	return json.MarshalIndent(rec, "", "  ")
}
