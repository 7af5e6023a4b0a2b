// Package credential はプロバイダーAPIキー保管のドメインロジックを提供する。
package credential

import (
	"context"
	"errors"
	"fmt"

	"github.com/hitoshi/waffle/internal/catalog"
	"github.com/hitoshi/waffle/internal/metrics"
	"github.com/hitoshi/waffle/internal/model"
	"github.com/hitoshi/waffle/internal/repository"
	"github.com/hitoshi/waffle/internal/security"
)

// Service はAPIキー保管のサービス層。
// 平文キーは暗号化してからリポジトリに渡し、復号はRevealでのみ行う。
type Service struct {
	catalog   *catalog.Catalog
	cipher    *security.Cipher
	repo      repository.CredentialRepository
	collector metrics.MetricsCollector
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	cat *catalog.Catalog,
	cipher *security.Cipher,
	repo repository.CredentialRepository,
	collector metrics.MetricsCollector,
) *Service {
	return &Service{
		catalog:   cat,
		cipher:    cipher,
		repo:      repo,
		collector: collector,
	}
}

// Upsert は(user, provider)のAPIキーを暗号化して保存する。
// 既存キーがある場合は同一レコードの暗号文を差し替える（ローテーション）。
// 未知のプロバイダーに対してはバリデーションエラーを返す。
func (s *Service) Upsert(ctx context.Context, userID, providerID, plaintextKey string) error {
	if !s.catalog.Exists(providerID) {
		return model.NewInvalidProviderError(providerID)
	}

	ciphertext, err := s.cipher.Encrypt(plaintextKey)
	if err != nil {
		return fmt.Errorf("APIキーの暗号化に失敗しました: %w", err)
	}

	if err := s.repo.Upsert(ctx, userID, providerID, ciphertext); err != nil {
		return err
	}

	s.collector.RecordKeyUpsert(providerID)
	return nil
}

// StatusOf は(user, provider)にAPIキーが保存されているかを返す。
// 暗号文の存在確認のみで答え、復号は行わない。
func (s *Service) StatusOf(ctx context.Context, userID, providerID string) (bool, error) {
	if !s.catalog.Exists(providerID) {
		return false, model.NewInvalidProviderError(providerID)
	}

	return s.repo.Exists(ctx, userID, providerID)
}

// Delete は(user, provider)のAPIキーを削除する。
// キーが保存されていない場合はNotFoundエラーを返す。
// 呼び出し側が「既に不在」と「削除した」を区別できるよう、no-opにはしない。
func (s *Service) Delete(ctx context.Context, userID, providerID string) error {
	if !s.catalog.Exists(providerID) {
		return model.NewInvalidProviderError(providerID)
	}

	deleted, err := s.repo.Delete(ctx, userID, providerID)
	if err != nil {
		return err
	}
	if !deleted {
		return model.NewAPIKeyNotFoundError(providerID)
	}

	s.collector.RecordKeyDelete(providerID)
	return nil
}

// ListForUser はユーザーがAPIキーを保存しているプロバイダーの集合を返す。
// 保存のないプロバイダーは含まれない。全カタログの補完はオーケストレーターが行う。
func (s *Service) ListForUser(ctx context.Context, userID string) (map[string]bool, error) {
	return s.repo.ListByUserID(ctx, userID)
}

// Reveal は(user, provider)のAPIキーを復号して平文で返す。
// AIプロバイダーへのアウトバウンド呼び出しでのみ使用すること。
// キーが未保存の場合はNotFoundエラー、暗号文が復号できない場合は
// データ完全性エラーを返す（不存在とは区別される）。
func (s *Service) Reveal(ctx context.Context, userID, providerID string) (string, error) {
	if !s.catalog.Exists(providerID) {
		return "", model.NewInvalidProviderError(providerID)
	}

	cred, err := s.repo.FindByUserAndProvider(ctx, userID, providerID)
	if err != nil {
		return "", err
	}
	if cred == nil {
		return "", model.NewAPIKeyNotFoundError(providerID)
	}

	plaintext, err := s.cipher.Decrypt(cred.Ciphertext)
	if err != nil {
		if errors.Is(err, security.ErrCiphertextInvalid) {
			s.collector.RecordCryptoFailure()
			return "", model.NewCredentialUnreadableError(providerID)
		}
		return "", fmt.Errorf("APIキーの復号に失敗しました: %w", err)
	}

	return plaintext, nil
}
