// Package settings はユーザー設定の読み書きを統合するドメインロジックを提供する。
package settings

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/waffle/internal/catalog"
	"github.com/hitoshi/waffle/internal/model"
	"github.com/hitoshi/waffle/internal/repository"
	"github.com/hitoshi/waffle/internal/security"
)

// View は設定画面表示用の統合ビュー。
// ProviderHasKeyはカタログの全プロバイダーを明示的なtrue/falseで含む。
type View struct {
	CurrentProvider *string
	CurrentModel    *string
	ProviderHasKey  map[string]bool
}

// CredentialStore はオーケストレーターが必要とするAPIキー保管のインターフェース。
// credential.Serviceの部分集合として定義する。
type CredentialStore interface {
	// Upsert はAPIキーを暗号化して保存・更新する。
	Upsert(ctx context.Context, userID, providerID, plaintextKey string) error
	// StatusOf はAPIキーの保存有無を返す。
	StatusOf(ctx context.Context, userID, providerID string) (bool, error)
	// Delete はAPIキーを削除する。未保存ならNotFoundエラーを返す。
	Delete(ctx context.Context, userID, providerID string) error
	// ListForUser はAPIキーを保存済みのプロバイダー集合を返す。
	ListForUser(ctx context.Context, userID string) (map[string]bool, error)
}

// Service は設定のオーケストレーター。
// カタログによるバリデーションの後、選択ストアとAPIキーストアを組み合わせて
// 境界が必要とする読み書き操作を提供する。
type Service struct {
	catalog *catalog.Catalog
	cipher  *security.Cipher
	selRepo repository.SelectionRepository
	creds   CredentialStore
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	cat *catalog.Catalog,
	cipher *security.Cipher,
	selRepo repository.SelectionRepository,
	creds CredentialStore,
) *Service {
	return &Service{
		catalog: cat,
		cipher:  cipher,
		selRepo: selRepo,
		creds:   creds,
	}
}

// GetSettings はユーザーの設定ビューを返す。
// 選択レコードが存在しない場合、CurrentProvider/CurrentModelはnilになる。
// ProviderHasKeyはカタログの全プロバイダーをfalseで埋めた上で、
// 保存済みキーのあるプロバイダーをtrueに上書きする。
func (s *Service) GetSettings(ctx context.Context, userID string) (*View, error) {
	sel, err := s.selRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("設定の取得に失敗しました: %w", err)
	}

	stored, err := s.creds.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("APIキー状態の取得に失敗しました: %w", err)
	}

	hasKey := make(map[string]bool)
	for _, p := range s.catalog.ListProviders() {
		hasKey[p.ID] = stored[p.ID]
	}

	view := &View{ProviderHasKey: hasKey}
	if sel != nil {
		view.CurrentProvider = sel.CurrentProvider
		view.CurrentModel = sel.CurrentModel
	}

	return view, nil
}

// SaveSelection はユーザーの選択を保存し、apiKeyが指定されていれば
// 同一プロバイダーのAPIキーも保存する。
// プロバイダーとモデルはカタログで検証し、失敗時は何も書き込まない。
//
// ストレージが選択とAPIキーの同一トランザクション書き込みをサポートする場合は
// それを使用する。サポートしない場合は二相書き込みにフォールバックし、
// 選択の保存後にAPIキーの保存が失敗したときは、どちらが成功したかを明示する
// 部分失敗エラーを返す（黙って握りつぶさない）。
func (s *Service) SaveSelection(ctx context.Context, userID, providerID, modelID string, apiKey *string) error {
	if !s.catalog.Exists(providerID) {
		return model.NewInvalidProviderError(providerID)
	}
	if !s.catalog.ModelExists(providerID, modelID) {
		return model.NewInvalidModelError(providerID, modelID)
	}

	if apiKey == nil || *apiKey == "" {
		if err := s.selRepo.Upsert(ctx, userID, providerID, modelID); err != nil {
			return fmt.Errorf("選択の保存に失敗しました: %w", err)
		}
		return nil
	}

	if txRepo, ok := s.selRepo.(repository.SelectionAndCredentialUpserter); ok {
		ciphertext, err := s.cipher.Encrypt(*apiKey)
		if err != nil {
			return fmt.Errorf("APIキーの暗号化に失敗しました: %w", err)
		}
		if err := txRepo.UpsertWithCredential(ctx, userID, providerID, modelID, ciphertext); err != nil {
			return fmt.Errorf("設定の保存に失敗しました: %w", err)
		}
		return nil
	}

	// 二相書き込みフォールバック
	if err := s.selRepo.Upsert(ctx, userID, providerID, modelID); err != nil {
		return fmt.Errorf("選択の保存に失敗しました: %w", err)
	}
	if err := s.creds.Upsert(ctx, userID, providerID, *apiKey); err != nil {
		slog.Error("credential write failed after selection write",
			slog.String("provider", providerID),
			slog.String("error", err.Error()),
		)
		return model.NewPartialFailureError(providerID)
	}

	return nil
}

// SaveKey は指定プロバイダーのAPIキーを保存・更新する。
func (s *Service) SaveKey(ctx context.Context, userID, providerID, plaintextKey string) error {
	return s.creds.Upsert(ctx, userID, providerID, plaintextKey)
}

// KeyStatus は指定プロバイダーのAPIキー保存有無を返す。
func (s *Service) KeyStatus(ctx context.Context, userID, providerID string) (bool, error) {
	return s.creds.StatusOf(ctx, userID, providerID)
}

// DeleteKey は指定プロバイダーのAPIキーを削除する。
// 未保存の場合はNotFoundエラーになる。
func (s *Service) DeleteKey(ctx context.Context, userID, providerID string) error {
	return s.creds.Delete(ctx, userID, providerID)
}
