// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/waffle/internal/model"
)

// SelectionRepository はモデル選択データの永続化インターフェース。
type SelectionRepository interface {
	// FindByUserID は指定ユーザーの選択レコードを取得する。見つからない場合はnilを返す。
	FindByUserID(ctx context.Context, userID string) (*model.Selection, error)

	// Upsert はユーザーの選択レコードを作成または上書き更新し、updated_atを更新する。
	// UNIQUE(user_id)制約を利用した単一ステートメントで実装し、
	// 同一ユーザーへの並行呼び出しはlast-commit-winsで解決される。
	Upsert(ctx context.Context, userID, providerID, modelID string) error
}

// CredentialRepository はプロバイダーAPIキーデータの永続化インターフェース。
// ciphertextは暗号化済みの不透明な文字列であり、このレイヤーでは復号しない。
type CredentialRepository interface {
	// Upsert は(user_id, provider)のレコードを作成または暗号文を差し替え、updated_atを更新する。
	// UNIQUE(user_id, provider)制約とON CONFLICTにより、同一ペアへの並行した
	// 初回挿入が重複行を作ることはなく、負けた挿入は更新に転化する。
	Upsert(ctx context.Context, userID, providerID, ciphertext string) error

	// Exists は(user_id, provider)に空でない暗号文が保存されているかを返す。復号は行わない。
	Exists(ctx context.Context, userID, providerID string) (bool, error)

	// Delete は(user_id, provider)のレコードを削除し、削除が発生したかを返す。
	Delete(ctx context.Context, userID, providerID string) (bool, error)

	// ListByUserID はユーザーがAPIキーを保存しているプロバイダーの集合を返す。
	// 保存のないプロバイダーはマップに含まれない。
	ListByUserID(ctx context.Context, userID string) (map[string]bool, error)

	// FindByUserAndProvider は(user_id, provider)のレコードを取得する。見つからない場合はnilを返す。
	FindByUserAndProvider(ctx context.Context, userID, providerID string) (*model.Credential, error)
}

// SelectionAndCredentialUpserter は選択とAPIキーを同一トランザクションで書き込むインターフェース。
// トランザクションをサポートするストレージの実装が提供する。
// 提供されない場合、オーケストレーターは二相書き込みにフォールバックする。
type SelectionAndCredentialUpserter interface {
	// UpsertWithCredential は選択レコードと(user_id, provider)のAPIキーレコードを
	// 単一トランザクションでUPSERTする。どちらかが失敗した場合は両方ロールバックされる。
	UpsertWithCredential(ctx context.Context, userID, providerID, modelID, ciphertext string) error
}
