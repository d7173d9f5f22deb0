package runner

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/shouni/go-image-edit-kit/pkg/domain"
)

// mockGenerator はスクリプト化された応答を返す Generator のモックです。
// バッチモードでは複数ゴルーチンから呼ばれるためロックを持ちます。
type mockGenerator struct {
	mu        sync.Mutex
	responses []*domain.EditResponse
	err       error
	failOn    string // この Filename を含むリクエストだけ失敗させる
	requests  []domain.EditRequest
}

func (m *mockGenerator) Generate(_ context.Context, req domain.EditRequest) (*domain.EditResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := len(m.requests)
	m.requests = append(m.requests, req)

	if m.failOn != "" {
		for _, img := range req.Images {
			if img.Filename == m.failOn {
				return nil, fmt.Errorf("mock generate failure for %s", img.Filename)
			}
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	if idx < len(m.responses) {
		return m.responses[idx], nil
	}
	return &domain.EditResponse{Data: []byte("generated"), MimeType: "image/png"}, nil
}

func (m *mockGenerator) Requests() []domain.EditRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.EditRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// writtenFile はモックライターが記録した1回の保存内容です。
type writtenFile struct {
	path     string
	mimeType string
	data     []byte
}

type mockWriter struct {
	mu     sync.Mutex
	err    error
	writes []writtenFile
}

func (m *mockWriter) Write(_ context.Context, path string, data io.Reader, mimeType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	payload, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	m.writes = append(m.writes, writtenFile{path: path, mimeType: mimeType, data: payload})
	return nil
}
