package handler

import (
	"net/http"

	"github.com/hitoshi/waffle/internal/middleware"
)

// AuthHandler は認証確認とプロフィールのHTTPハンドラー。
// トークン検証自体は認証ミドルウェアで完了しているため、
// ここではコンテキストのユーザー情報を返すだけでよい。
type AuthHandler struct{}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

// userResponse は検証済みユーザー情報のAPIレスポンス。
type userResponse struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Verify はトークンの検証結果を返す。
// GET /auth/verify
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	info, err := middleware.UserInfoFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "認証に成功しました。",
		"user": userResponse{
			UID:   info.UserID,
			Email: info.Email,
			Name:  info.Name,
		},
	})
}

// Profile は認証済みユーザーのプロフィールを返す。
// GET /api/profile
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	info, err := middleware.UserInfoFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	writeJSON(w, http.StatusOK, map[string]userResponse{
		"profile": {
			UID:   info.UserID,
			Email: info.Email,
			Name:  info.Name,
		},
	})
}
