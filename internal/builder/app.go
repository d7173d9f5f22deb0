package builder

import (
	"github.com/shouni/go-image-edit-kit/internal/config"
	"github.com/shouni/go-image-edit-kit/pkg/keystore"
	"github.com/shouni/go-image-edit-kit/pkg/recorder"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/go-remote-io/pkg/remoteio"
)

// AppContext は、アプリケーション実行に必要な共通コンテキストを保持する
// これを各Build関数に渡すことで、依存関係の注入を簡素化します。
// 資格情報やログの置き場をグローバル変数にせず、ここに集約するのだ。
type AppContext struct {
	Config   *config.Config        // Configは、環境変数から読み込まれたグローバルな設定です
	Options  config.EditOptions    // Optionsは、コマンドラインから渡された実行時の設定です
	Reader   remoteio.InputReader  // Readerは、入力画像やプロンプトファイルの読み込み元です
	Writer   remoteio.OutputWriter // Writerは、生成画像とログの保存先です
	Recorder *recorder.Recorder    // Recorderは、試行レコードと生成結果を保持する診断ログです
	Keystore *keystore.Store       // Keystoreは、暗号化されたAPIキーの永続化先です

	aiClient   gemini.GenerativeModel  // aiClient はGeminiの通信に使う共通クライアント
	httpClient httpkit.ClientInterface // httpClient は外部画像の取得に使う共通クライアント
}

// NewAppContext は AppContext の新しいインスタンスを生成する
func NewAppContext(
	cfg *config.Config,
	httpClient httpkit.ClientInterface,
	aiClient gemini.GenerativeModel,
	reader remoteio.InputReader,
	writer remoteio.OutputWriter,
	store *keystore.Store,
) AppContext {
	return AppContext{
		Config:     cfg,
		Options:    cfg.Options,
		Reader:     reader,
		Writer:     writer,
		Recorder:   recorder.New(),
		Keystore:   store,
		aiClient:   aiClient,
		httpClient: httpClient,
	}
}
