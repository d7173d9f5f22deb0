// Package keystore はAPIキーを暗号化してローカルに永続化する協調コンポーネントです。
// PBKDF2-SHA256 で導出した鍵による AES-256-GCM を使います。
package keystore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/pbkdf2"
)

const (
	keyIterations = 100000
	keyLength     = 32 // AES-256
	nonceLength   = 12
)

// ErrNotFound は保存済みのキーが存在しないことを示します。
var ErrNotFound = errors.New("保存されたAPIキーが見つかりません")

// Store は1つの秘密文字列を暗号化ファイルとして保存・復元します。
type Store struct {
	path       string
	passphrase string
	salt       []byte
}

// New は Store を初期化します。salt は16進数文字列で、偶数長である必要があります。
func New(path, passphrase, saltHex string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("path is required")
	}
	if passphrase == "" {
		return nil, fmt.Errorf("passphrase is required")
	}

	salt, err := hex.DecodeString(saltHex)
	if err != nil || len(salt) == 0 {
		return nil, fmt.Errorf("ソルトの形式が不正です（16進数文字列を指定してください）: %w", err)
	}

	return &Store{path: path, passphrase: passphrase, salt: salt}, nil
}

// Save は秘密を暗号化して保存します。既存のファイルは上書きされます。
func (s *Store) Save(secret string) error {
	gcm, err := s.cipher()
	if err != nil {
		return err
	}

	nonce := make([]byte, nonceLength)
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("nonceの生成に失敗しました: %w", err)
	}

	sealed := gcm.Seal(nonce, nonce, []byte(secret), nil)

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("保存先ディレクトリの作成に失敗しました: %w", err)
	}
	if err := os.WriteFile(s.path, sealed, 0o600); err != nil {
		return fmt.Errorf("暗号化キーの保存に失敗しました: %w", err)
	}
	return nil
}

// Load は保存済みの秘密を復号して返します。未保存なら ErrNotFound です。
func (s *Store) Load() (string, error) {
	sealed, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("暗号化キーの読み込みに失敗しました: %w", err)
	}
	if len(sealed) < nonceLength {
		return "", fmt.Errorf("暗号化キーのファイルが壊れています")
	}

	gcm, err := s.cipher()
	if err != nil {
		return "", err
	}

	nonce, ciphertext := sealed[:nonceLength], sealed[nonceLength:]
	plain, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("復号に失敗しました。ソルトやパスフレーズが変わっていないか確認してください: %w", err)
	}
	return string(plain), nil
}

// Clear は保存済みの秘密を削除します。未保存でもエラーにしません。
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("暗号化キーの削除に失敗しました: %w", err)
	}
	return nil
}

func (s *Store) cipher() (cipher.AEAD, error) {
	key := pbkdf2.Key([]byte(s.passphrase), s.salt, keyIterations, keyLength, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("暗号の初期化に失敗しました: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("暗号の初期化に失敗しました: %w", err)
	}
	return gcm, nil
}
