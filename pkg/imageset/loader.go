package imageset

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/go-remote-io/pkg/remoteio"
)

const cacheKeySource = "source_bytes:"

// SourceCacher は取得済みバイト列のキャッシュ操作を抽象化するインターフェースです。
type SourceCacher interface {
	Get(key string) (any, bool)
	Set(key string, value any, d time.Duration)
}

// Loader はローカルパス・gs://・http(s):// のいずれからも取り込み候補を
// 読み込むリーダーです。HTTP経由の取得結果はTTL付きでキャッシュします。
type Loader struct {
	reader     remoteio.InputReader
	httpClient httpkit.ClientInterface
	cache      SourceCacher
	expiration time.Duration
}

// NewLoader は依存関係を注入して Loader を初期化します。cache は nil を許容します。
func NewLoader(reader remoteio.InputReader, httpClient httpkit.ClientInterface, cache SourceCacher, cacheTTL time.Duration) (*Loader, error) {
	if reader == nil {
		return nil, fmt.Errorf("reader is required")
	}
	if httpClient == nil {
		return nil, fmt.Errorf("httpClient is required")
	}

	return &Loader{
		reader:     reader,
		httpClient: httpClient,
		cache:      cache,
		expiration: cacheTTL,
	}, nil
}

// Load は1つのソースから取り込み候補を読み込みます。
// MIME検証はここでは行わず、Manager.Add のバッチ検証に委ねます。
func (l *Loader) Load(ctx context.Context, source string) (Candidate, error) {
	data, err := l.fetchBytes(ctx, source)
	if err != nil {
		return Candidate{}, fmt.Errorf("ソース '%s' の読み込みに失敗しました: %w", source, err)
	}

	return Candidate{
		Filename: path.Base(source),
		Data:     data,
	}, nil
}

// LoadBatch は複数ソースを順に読み込みます。1つでも失敗したら
// その時点でエラーを返します（部分的な結果は返しません）。
func (l *Loader) LoadBatch(ctx context.Context, sources []string) ([]Candidate, error) {
	candidates := make([]Candidate, 0, len(sources))
	for _, src := range sources {
		c, err := l.Load(ctx, src)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}

func (l *Loader) fetchBytes(ctx context.Context, source string) ([]byte, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		if l.cache != nil {
			if val, ok := l.cache.Get(cacheKeySource + source); ok {
				if data, ok := val.([]byte); ok {
					return data, nil
				}
			}
		}

		data, err := l.httpClient.FetchBytes(ctx, source)
		if err != nil {
			return nil, err
		}
		if l.cache != nil {
			l.cache.Set(cacheKeySource+source, data, l.expiration)
		}
		return data, nil
	}

	// ローカルパスと gs:// は InputReader に委ねる
	rc, err := l.reader.Open(ctx, source)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
