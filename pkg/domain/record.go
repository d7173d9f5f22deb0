package domain

import "time"

// AttemptStatus は生成アクション1回分の進行状態です。
type AttemptStatus string

const (
	AttemptGenerating AttemptStatus = "generating"
	AttemptSuccess    AttemptStatus = "success"
	AttemptError      AttemptStatus = "error"
)

// AttemptRecord は1回の生成アクションの診断ログです。
// リトライのたびに新しいレコードを積むのではなく、同じアクションの
// レコードを RetryCount を進めて上書きします。
type AttemptRecord struct {
	Status                 AttemptStatus `json:"status"`
	Timestamp              time.Time     `json:"timestamp"`
	PromptSnapshot         string        `json:"prompt"`
	NegativePromptSnapshot string        `json:"negative_prompt,omitempty"`
	SizeSnapshot           string        `json:"size,omitempty"`
	RetryCount             int           `json:"retry_count"`
	MaxRetries             int           `json:"max_retries"`
	RawResponseSnapshot    string        `json:"raw_response,omitempty"` // 成功時のみ
	ErrorMessage           string        `json:"error,omitempty"`        // 失敗時のみ
	Description            string        `json:"description,omitempty"`
}
