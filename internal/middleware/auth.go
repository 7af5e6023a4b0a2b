// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/waffle/internal/auth"
	"github.com/hitoshi/waffle/internal/model"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// userInfoContextKey はリクエストコンテキストに検証済みユーザー情報を格納するためのキー。
var userInfoContextKey = contextKey("user_info")

// TokenVerifier はBearerトークンの検証に必要なインターフェース。
// auth.HTTPVerifierの部分集合として定義する。
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*model.UserInfo, error)
}

// NewAuthMiddleware はAuthorizationヘッダーのBearerトークンを外部IdPで検証し、
// 検証済みユーザー情報をリクエストコンテキストに注入するミドルウェアを返す。
// トークンが欠如・無効なリクエストには401 Unauthorizedを返す。
func NewAuthMiddleware(verifier TokenVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. AuthorizationヘッダーからBearerトークンを取得
			token := bearerToken(r)
			if token == "" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			// 2. 外部IdPでトークンを検証
			info, err := verifier.Verify(r.Context(), token)
			if err != nil {
				if !errors.Is(err, auth.ErrTokenInvalid) {
					slog.Error("token verification failed",
						slog.String("error", err.Error()),
					)
				}
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			// 3. 検証済みユーザー情報をコンテキストに注入
			ctx := context.WithValue(r.Context(), userInfoContextKey, info)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken はAuthorizationヘッダーからBearerトークンを取り出す。
// Bearer形式でない場合は空文字列を返す。
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// UserInfoFromContext はリクエストコンテキストから検証済みユーザー情報を取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。
func UserInfoFromContext(ctx context.Context) (*model.UserInfo, error) {
	info, ok := ctx.Value(userInfoContextKey).(*model.UserInfo)
	if !ok || info == nil {
		return nil, fmt.Errorf("user info not found in context")
	}
	return info, nil
}

// UserIDFromContext はリクエストコンテキストからユーザーIDを取得する。
func UserIDFromContext(ctx context.Context) (string, error) {
	info, err := UserInfoFromContext(ctx)
	if err != nil {
		return "", err
	}
	if info.UserID == "" {
		return "", fmt.Errorf("user ID not found in context")
	}
	return info.UserID, nil
}

// ContextWithUserInfo はコンテキストに検証済みユーザー情報を注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithUserInfo(ctx context.Context, info *model.UserInfo) context.Context {
	return context.WithValue(ctx, userInfoContextKey, info)
}
