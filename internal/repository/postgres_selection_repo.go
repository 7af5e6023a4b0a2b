package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/waffle/internal/model"
)

// PostgresSelectionRepo はPostgreSQLを使用したモデル選択リポジトリ。
type PostgresSelectionRepo struct {
	db *sql.DB
}

// NewPostgresSelectionRepo はPostgresSelectionRepoを生成する。
func NewPostgresSelectionRepo(db *sql.DB) *PostgresSelectionRepo {
	return &PostgresSelectionRepo{db: db}
}

// FindByUserID は指定ユーザーの選択レコードを取得する。見つからない場合はnilを返す。
func (r *PostgresSelectionRepo) FindByUserID(ctx context.Context, userID string) (*model.Selection, error) {
	sel := &model.Selection{}
	var provider, modelID sql.NullString

	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, current_provider, current_model, created_at, updated_at
		 FROM selection_records WHERE user_id = $1`,
		userID,
	).Scan(&sel.ID, &sel.UserID, &provider, &modelID, &sel.CreatedAt, &sel.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find selection by user ID: %w", err)
	}

	if provider.Valid {
		sel.CurrentProvider = &provider.String
	}
	if modelID.Valid {
		sel.CurrentModel = &modelID.String
	}

	return sel, nil
}

// Upsert はユーザーの選択レコードを作成または上書き更新する。
// UNIQUE(user_id)制約を利用したINSERT ON CONFLICTで実装する。
func (r *PostgresSelectionRepo) Upsert(ctx context.Context, userID, providerID, modelID string) error {
	now := time.Now().UTC()

	_, err := r.db.ExecContext(ctx, upsertSelectionQuery,
		uuid.New().String(), userID, providerID, modelID, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert selection: %w", err)
	}

	return nil
}

// UpsertWithCredential は選択レコードとAPIキーレコードを単一トランザクションでUPSERTする。
// どちらかの書き込みが失敗した場合は両方ロールバックされる。
func (r *PostgresSelectionRepo) UpsertWithCredential(ctx context.Context, userID, providerID, modelID, ciphertext string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	// 選択レコードをUPSERT
	_, err = tx.ExecContext(ctx, upsertSelectionQuery,
		uuid.New().String(), userID, providerID, modelID, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert selection: %w", err)
	}

	// APIキーレコードをUPSERT
	_, err = tx.ExecContext(ctx, upsertCredentialQuery,
		uuid.New().String(), userID, providerID, ciphertext, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert credential: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

const upsertSelectionQuery = `
	INSERT INTO selection_records (id, user_id, current_provider, current_model, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (user_id) DO UPDATE SET
	    current_provider = EXCLUDED.current_provider,
	    current_model = EXCLUDED.current_model,
	    updated_at = EXCLUDED.updated_at`

// compile-time interface check
var _ SelectionRepository = (*PostgresSelectionRepo)(nil)
var _ SelectionAndCredentialUpserter = (*PostgresSelectionRepo)(nil)
