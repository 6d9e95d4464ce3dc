package todo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	tododb "github.com/CocaColaCat/to-with-auth/internal/todo/db"
	"github.com/CocaColaCat/to-with-auth/pkg/middleware"
)

// sessionTTL はセッションの有効期間。ログイン時に固定で設定され、
// ログアウトまたは期限切れで無効になる。
const sessionTTL = 7 * 24 * time.Hour

// sessionManager はサーバー側セッションの確立・解決・破棄を担当する。
// トークン自体はセッションIDを運ぶだけで、本体はsessionsテーブルにある。
// 行を消せばトークンの残存期間に関係なくセッションは即座に失効する。
type sessionManager struct {
	// queries はsqlcが生成したクエリ実行オブジェクト。
	queries *tododb.Queries
	// secret はセッショントークンの署名鍵。
	secret string
	// ttl はセッションの有効期間。
	ttl time.Duration
}

// newSessionManager は新しいセッションマネージャを生成する。
func newSessionManager(queries *tododb.Queries, secret string) *sessionManager {
	return &sessionManager{
		queries: queries,
		secret:  secret,
		ttl:     sessionTTL,
	}
}

// Establish は認証済みユーザーに新しいセッションを紐付け、
// クライアントに渡すセッショントークンを返す。
// 呼び出し前にパスワード照合が完了していること。
func (m *sessionManager) Establish(ctx context.Context, userID string) (string, error) {
	sessionID := uuid.New().String()
	if err := m.queries.CreateSession(ctx, tododb.CreateSessionParams{
		ID:        sessionID,
		UserID:    userID,
		ExpiresAt: time.Now().UTC().Add(m.ttl),
	}); err != nil {
		return "", fmt.Errorf("セッションの作成に失敗: %w", err)
	}

	token, err := middleware.SignSessionToken(m.secret, sessionID, m.ttl)
	if err != nil {
		return "", err
	}
	return token, nil
}

// ResolveSession はセッションIDを認証済みユーザーに解決する。
// middleware.SessionResolverの実装。セッションが存在しない、
// 期限切れ、またはユーザーが存在しない場合はfalseを返す。
func (m *sessionManager) ResolveSession(ctx context.Context, sessionID string) (middleware.Identity, bool, error) {
	row, err := m.queries.GetSessionUser(ctx, sessionID)
	if err == sql.ErrNoRows {
		return middleware.Identity{}, false, nil
	}
	if err != nil {
		return middleware.Identity{}, false, fmt.Errorf("セッションの取得に失敗: %w", err)
	}

	if time.Now().After(row.ExpiresAt) {
		// 期限切れの行はこの場で掃除する
		_ = m.queries.DeleteSession(ctx, sessionID)
		return middleware.Identity{}, false, nil
	}

	return middleware.Identity{UserID: row.UserID, Username: row.Username}, true, nil
}

// Teardown はトークンに紐付いたセッションを破棄する。
// 冪等であり、無効なトークンや既に消えたセッションでも成功する。
func (m *sessionManager) Teardown(ctx context.Context, tokenString string) error {
	sessionID, err := middleware.ParseSessionToken(m.secret, tokenString)
	if err != nil {
		// 検証できないトークンのログアウトは何もしない
		return nil
	}
	if err := m.queries.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("セッションの削除に失敗: %w", err)
	}
	return nil
}

// PurgeExpired は期限切れセッションをまとめて削除する。
// ログイン時に都度呼び出される軽い掃除処理。
func (m *sessionManager) PurgeExpired(ctx context.Context) error {
	return m.queries.DeleteExpiredSessions(ctx, time.Now().UTC())
}
