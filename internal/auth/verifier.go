// Package auth は外部IDプロバイダーへのトークン検証を提供する。
// 認証自体は外部IdPに委譲しており、本パッケージは検証エンドポイントの
// 呼び出しとユーザー情報の取り出しのみを行う。
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hitoshi/waffle/internal/model"
)

// ErrTokenInvalid はトークンがIdPに拒否されたことを示す。
// 呼び出し側は401として扱うこと。
var ErrTokenInvalid = errors.New("token rejected by identity provider")

// HTTPVerifier は外部IdPの検証エンドポイントを呼び出すトークン検証器。
type HTTPVerifier struct {
	verifyURL string
	client    *http.Client
}

// NewHTTPVerifier はHTTPVerifierを生成する。
// timeoutが0の場合は10秒を使用する。
func NewHTTPVerifier(verifyURL string, timeout time.Duration) *HTTPVerifier {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &HTTPVerifier{
		verifyURL: verifyURL,
		client:    &http.Client{Timeout: timeout},
	}
}

// verifyResponse はIdP検証エンドポイントのレスポンス。
type verifyResponse struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Verify はBearerトークンをIdPに送って検証し、ユーザー情報を返す。
// IdPがトークンを拒否した場合はErrTokenInvalidをラップしたエラーを返す。
func (v *HTTPVerifier) Verify(ctx context.Context, token string) (*model.UserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.verifyURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create verify request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call verify endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("verify endpoint returned status %d: %w", resp.StatusCode, ErrTokenInvalid)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("verify endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read verify response: %w", err)
	}

	var vr verifyResponse
	if err := json.Unmarshal(body, &vr); err != nil {
		return nil, fmt.Errorf("failed to parse verify response: %w", err)
	}
	if vr.UID == "" {
		return nil, fmt.Errorf("verify response has no uid: %w", ErrTokenInvalid)
	}

	return &model.UserInfo{
		UserID: vr.UID,
		Email:  vr.Email,
		Name:   vr.Name,
	}, nil
}
