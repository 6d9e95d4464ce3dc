// Package middleware はGinベースのHTTP APIで使用する共通ミドルウェアを提供する。
//
// セッショントークンの検証、パニックリカバリ、CORS設定を含む。
// 認証ゲートはトークンの署名検証に加えてサーバー側セッションストアへの
// 照会を行い、ログアウト済みセッションを確実に無効化する。
package middleware
