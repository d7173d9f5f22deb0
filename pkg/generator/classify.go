package generator

import (
	"fmt"
	"strings"
)

// ErrorClass は生成呼び出しの失敗分類です。リトライ判断にのみ使います。
type ErrorClass int

const (
	// ClassRetryable は一時的とみなしてリトライする失敗です。
	// 分類できない未知の失敗も楽観的にこちらへ倒します。
	ClassRetryable ErrorClass = iota
	// ClassFatalAuth は認証・APIキー起因の失敗です。リトライしません。
	ClassFatalAuth
	// ClassFatalModel はモデルが見つからない失敗です。リトライしません。
	ClassFatalModel
	// ClassFatalSafety はコンテンツポリシーによる拒否です。リトライしません。
	ClassFatalSafety
)

// 分類は大文字小文字を無視した部分一致で行う。致命カテゴリを先に判定し、
// どれにも該当しなければリトライ可能とみなす。
var (
	authSignals      = []string{"401", "403", "api key", "authentication", "unauthorized"}
	modelSignals     = []string{"404", "not found"}
	safetySignals    = []string{"safety", "content policy", "blocked", "prohibited"}
	retryableSignals = []string{
		"network", "timeout", "connection", "fetch",
		"500", "502", "503", "429",
		"quota", "rate limit", "resource_exhausted", "unavailable", "deadline",
	}
)

// Classify はエラーの説明文からリトライ可否を分類します。
func Classify(err error) ErrorClass {
	if err == nil {
		return ClassRetryable
	}
	msg := strings.ToLower(err.Error())

	if containsAny(msg, authSignals) {
		return ClassFatalAuth
	}
	if containsAny(msg, modelSignals) {
		return ClassFatalModel
	}
	if containsAny(msg, safetySignals) {
		return ClassFatalSafety
	}
	if containsAny(msg, retryableSignals) {
		return ClassRetryable
	}

	// 未知の形のエラーは一時的なものとみなす
	return ClassRetryable
}

// IsRetryable は分類がリトライ可能かどうかを返します。
func (c ErrorClass) IsRetryable() bool {
	return c == ClassRetryable
}

// UserMessage はカテゴリごとに異なる利用者向けメッセージを返します。
// キー・モデル・プロンプトのどれを直せばよいかが分かるようにするのだ。
func (c ErrorClass) UserMessage(err error) string {
	switch c {
	case ClassFatalAuth:
		return fmt.Sprintf("認証に失敗しました。APIキーが正しいか確認してください: %v", err)
	case ClassFatalModel:
		return fmt.Sprintf("指定されたモデルが見つかりません。モデル名を確認してください: %v", err)
	case ClassFatalSafety:
		return fmt.Sprintf("コンテンツポリシーによりリクエストが拒否されました。プロンプトを見直してください: %v", err)
	default:
		return fmt.Sprintf("一時的なエラーが発生しました: %v", err)
	}
}

func containsAny(msg string, signals []string) bool {
	for _, s := range signals {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
