package repository

import (
	"strings"
	"testing"
)

// PostgresSelectionRepoはSelectionRepositoryインターフェースを満たすことを検証
func TestPostgresSelectionRepo_ImplementsInterface(t *testing.T) {
	var _ SelectionRepository = (*PostgresSelectionRepo)(nil)
}

// PostgresSelectionRepoはトランザクション書き込みインターフェースも満たすことを検証
func TestPostgresSelectionRepo_ImplementsTransactionalUpserter(t *testing.T) {
	var _ SelectionAndCredentialUpserter = (*PostgresSelectionRepo)(nil)
}

// PostgresCredentialRepoはCredentialRepositoryインターフェースを満たすことを検証
func TestPostgresCredentialRepo_ImplementsInterface(t *testing.T) {
	var _ CredentialRepository = (*PostgresCredentialRepo)(nil)
}

// NewPostgresSelectionRepoが正しく初期化されることを検証
func TestNewPostgresSelectionRepo_Initializes(t *testing.T) {
	repo := NewPostgresSelectionRepo(nil)
	if repo == nil {
		t.Fatal("expected non-nil repo")
	}
}

// NewPostgresCredentialRepoが正しく初期化されることを検証
func TestNewPostgresCredentialRepo_Initializes(t *testing.T) {
	repo := NewPostgresCredentialRepo(nil)
	if repo == nil {
		t.Fatal("expected non-nil repo")
	}
}

// ユニットテスト: UPSERTクエリがON CONFLICTで一意性制約を利用していること
// （並行した初回挿入が重複行を作らないための前提条件）
func TestUpsertQueries_UseOnConflict(t *testing.T) {
	if !strings.Contains(upsertSelectionQuery, "ON CONFLICT (user_id)") {
		t.Error("selection upsert should resolve conflicts on user_id")
	}
	if !strings.Contains(upsertCredentialQuery, "ON CONFLICT (user_id, provider)") {
		t.Error("credential upsert should resolve conflicts on (user_id, provider)")
	}
	if !strings.Contains(upsertCredentialQuery, "EXCLUDED.api_key") {
		t.Error("losing credential insert should turn into an update of api_key")
	}
	if !strings.Contains(upsertSelectionQuery, "EXCLUDED.updated_at") {
		t.Error("selection upsert should refresh updated_at")
	}
}
