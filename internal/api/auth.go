package api

import (
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// SignupRequest は /v1/signup のリクエストボディです。
type SignupRequest struct {
	Email    openapi_types.Email `json:"email" binding:"required,email"`
	Password string              `json:"password" binding:"required,min=8"`
}

// LoginRequest は /v1/login のリクエストボディです。
type LoginRequest struct {
	Email    openapi_types.Email `json:"email" binding:"required,email"`
	Password string              `json:"password" binding:"required"`
}

// TokenPairResponse はログイン・リフレッシュ成功時のレスポンスです。
type TokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// RefreshRequest は /v1/refresh のリクエストボディです。
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// CredentialRequest は生成モデルのAPIキーを保管するリクエストボディです。
// キーは保存前に暗号化されます。
type CredentialRequest struct {
	APIKey string `json:"api_key" binding:"required"`
}
