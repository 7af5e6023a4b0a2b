package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/waffle/internal/model"
)

// PostgresCredentialRepo はPostgreSQLを使用したプロバイダーAPIキーリポジトリ。
// api_keyカラムには暗号文のみを格納する。
type PostgresCredentialRepo struct {
	db *sql.DB
}

// NewPostgresCredentialRepo はPostgresCredentialRepoを生成する。
func NewPostgresCredentialRepo(db *sql.DB) *PostgresCredentialRepo {
	return &PostgresCredentialRepo{db: db}
}

// upsertCredentialQuery は(user_id, provider)のUNIQUE制約とON CONFLICTにより、
// 同一ペアへの並行した初回挿入を単一行に収束させる。
// 負けた挿入は既存行の更新に転化し、last-commit-winsとなる。
const upsertCredentialQuery = `
	INSERT INTO credential_records (id, user_id, provider, api_key, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (user_id, provider) DO UPDATE SET
	    api_key = EXCLUDED.api_key,
	    updated_at = EXCLUDED.updated_at`

// Upsert は(user_id, provider)のレコードを作成または暗号文を差し替える。
func (r *PostgresCredentialRepo) Upsert(ctx context.Context, userID, providerID, ciphertext string) error {
	now := time.Now().UTC()

	_, err := r.db.ExecContext(ctx, upsertCredentialQuery,
		uuid.New().String(), userID, providerID, ciphertext, now, now,
	)
	if err != nil {
		return fmt.Errorf("APIキーの保存に失敗しました: %w", err)
	}

	return nil
}

// Exists は(user_id, provider)に空でない暗号文が保存されているかを返す。
// 復号は行わず、暗号文の存在のみを確認する。
func (r *PostgresCredentialRepo) Exists(ctx context.Context, userID, providerID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(
		     SELECT 1 FROM credential_records
		     WHERE user_id = $1 AND provider = $2 AND api_key <> ''
		 )`,
		userID, providerID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("APIキーの存在確認に失敗しました: %w", err)
	}

	return exists, nil
}

// Delete は(user_id, provider)のレコードを削除し、削除が発生したかを返す。
func (r *PostgresCredentialRepo) Delete(ctx context.Context, userID, providerID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM credential_records WHERE user_id = $1 AND provider = $2`,
		userID, providerID,
	)
	if err != nil {
		return false, fmt.Errorf("APIキーの削除に失敗しました: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// ListByUserID はユーザーがAPIキーを保存しているプロバイダーの集合を返す。
func (r *PostgresCredentialRepo) ListByUserID(ctx context.Context, userID string) (map[string]bool, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT provider FROM credential_records WHERE user_id = $1 AND api_key <> ''`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("APIキー一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	result := make(map[string]bool)
	for rows.Next() {
		var provider string
		if err := rows.Scan(&provider); err != nil {
			return nil, fmt.Errorf("failed to scan provider: %w", err)
		}
		result[provider] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate credentials: %w", err)
	}

	return result, nil
}

// FindByUserAndProvider は(user_id, provider)のレコードを取得する。見つからない場合はnilを返す。
func (r *PostgresCredentialRepo) FindByUserAndProvider(ctx context.Context, userID, providerID string) (*model.Credential, error) {
	cred := &model.Credential{}

	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, provider, api_key, created_at, updated_at
		 FROM credential_records WHERE user_id = $1 AND provider = $2`,
		userID, providerID,
	).Scan(&cred.ID, &cred.UserID, &cred.Provider, &cred.Ciphertext, &cred.CreatedAt, &cred.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("APIキーの取得に失敗しました: %w", err)
	}

	return cred, nil
}

// compile-time interface check
var _ CredentialRepository = (*PostgresCredentialRepo)(nil)
