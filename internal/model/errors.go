// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, not_found, crypto, storage, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeProviderNotFound     = "PROVIDER_NOT_FOUND"
	ErrCodeInvalidProvider      = "INVALID_PROVIDER"
	ErrCodeInvalidModel         = "INVALID_MODEL"
	ErrCodeAPIKeyNotFound       = "API_KEY_NOT_FOUND"
	ErrCodeCredentialUnreadable = "CREDENTIAL_UNREADABLE"
	ErrCodePartialFailure       = "SETTINGS_PARTIAL_FAILURE"
)

// NewProviderNotFoundError はカタログ参照でプロバイダーが見つからない場合のエラーを生成する。
func NewProviderNotFoundError(providerID string) *APIError {
	return &APIError{
		Code:     ErrCodeProviderNotFound,
		Message:  fmt.Sprintf("指定されたプロバイダーが見つかりません: %s", providerID),
		Category: "not_found",
		Action:   "プロバイダーIDを確認してください。",
	}
}

// NewInvalidProviderError は保存リクエストに未知のプロバイダーが指定された場合のエラーを生成する。
func NewInvalidProviderError(providerID string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidProvider,
		Message:  fmt.Sprintf("無効なプロバイダーです: %s", providerID),
		Category: "validation",
		Action:   "プロバイダー一覧から有効なプロバイダーを選択してください。",
	}
}

// NewInvalidModelError はモデルが未知、またはプロバイダーに属さない場合のエラーを生成する。
func NewInvalidModelError(providerID, modelID string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidModel,
		Message:  fmt.Sprintf("プロバイダー %s に属さないモデルです: %s", providerID, modelID),
		Category: "validation",
		Action:   "プロバイダーのモデル一覧から有効なモデルを選択してください。",
	}
}

// NewAPIKeyNotFoundError はAPIキーが保存されていない場合のエラーを生成する。
// 削除済みキーの再削除もこのエラーになる。
func NewAPIKeyNotFoundError(providerID string) *APIError {
	return &APIError{
		Code:     ErrCodeAPIKeyNotFound,
		Message:  fmt.Sprintf("プロバイダー %s のAPIキーは保存されていません。", providerID),
		Category: "not_found",
		Action:   "APIキーの保存状態を確認してください。",
	}
}

// NewCredentialUnreadableError は保存済みの暗号文が復号できない場合のエラーを生成する。
// レコードが存在するのに読めない状態はデータ完全性の障害であり、不存在とは区別する。
func NewCredentialUnreadableError(providerID string) *APIError {
	return &APIError{
		Code:     ErrCodeCredentialUnreadable,
		Message:  fmt.Sprintf("プロバイダー %s の保存済みAPIキーを復号できません。", providerID),
		Category: "crypto",
		Action:   "APIキーを再度保存してください。",
	}
}

// NewPartialFailureError は選択の保存は成功したがAPIキーの保存に失敗した場合のエラーを生成する。
// どちらの書き込みが成功したかを明示し、黙って失敗を握りつぶさない。
func NewPartialFailureError(providerID string) *APIError {
	return &APIError{
		Code:     ErrCodePartialFailure,
		Message:  fmt.Sprintf("モデル選択は保存されましたが、プロバイダー %s のAPIキーの保存に失敗しました。", providerID),
		Category: "storage",
		Action:   "APIキーのみを再度保存してください。",
	}
}
