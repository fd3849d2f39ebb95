// Package api はHTTPトランスポート層で共有されるリクエスト/レスポンス型を定義します。
package api

// ErrorResponse はエラー時の共通レスポンスです。
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse は本文を持たない操作の成功レスポンスです。
type MessageResponse struct {
	Message string `json:"message"`
}
