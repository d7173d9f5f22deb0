package generator

import (
	"context"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"google.golang.org/genai"

	"github.com/shouni/go-image-edit-kit/pkg/domain"
)

// --- Mocks ---

// step はモッククライアントの1回分の応答シナリオ。
type step struct {
	resp *gemini.Response
	err  error
}

type mockAIClient struct {
	steps []step
	calls int
}

func (m *mockAIClient) GenerateContent(ctx context.Context, model string, prompt string) (*gemini.Response, error) {
	return nil, nil
}

func (m *mockAIClient) GenerateWithParts(ctx context.Context, model string, parts []*genai.Part, opts gemini.GenerateOptions) (*gemini.Response, error) {
	i := m.calls
	m.calls++
	if i >= len(m.steps) {
		return nil, nil
	}
	return m.steps[i].resp, m.steps[i].err
}

func (m *mockAIClient) UploadFile(ctx context.Context, data []byte, mimeType, displayName string) (string, string, error) {
	return "", "", nil
}

func (m *mockAIClient) DeleteFile(ctx context.Context, name string) error {
	return nil
}

func (m *mockAIClient) GetFile(ctx context.Context, name string) (*genai.File, error) {
	return nil, nil
}

type mockSink struct {
	records     []domain.AttemptRecord
	output      *domain.EditResponse
	terminalErr string
}

func (m *mockSink) Record(rec domain.AttemptRecord) {
	m.records = append(m.records, rec)
}

func (m *mockSink) SetOutput(resp *domain.EditResponse) {
	m.output = resp
}

func (m *mockSink) SetTerminalError(msg string) {
	m.terminalErr = msg
}

func (m *mockSink) last() domain.AttemptRecord {
	return m.records[len(m.records)-1]
}

// imageResponse は画像1枚とテキスト1つを含む正常な応答を作る。
func imageResponse(data []byte, text string) *gemini.Response {
	parts := []*genai.Part{
		{InlineData: &genai.Blob{MIMEType: "image/png", Data: data}},
	}
	if text != "" {
		parts = append(parts, &genai.Part{Text: text})
	}
	return &gemini.Response{
		RawResponse: &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{
				{Content: &genai.Content{Parts: parts}},
			},
		},
	}
}

// textOnlyResponse は画像パートを含まない「成功に見える」応答を作る。
func textOnlyResponse() *gemini.Response {
	return &gemini.Response{
		RawResponse: &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{
				{Content: &genai.Content{Parts: []*genai.Part{{Text: "just text"}}}},
			},
		},
	}
}
