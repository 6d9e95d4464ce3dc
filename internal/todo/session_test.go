package todo

import (
	"testing"
	"time"

	tododb "github.com/CocaColaCat/to-with-auth/internal/todo/db"
	"github.com/CocaColaCat/to-with-auth/pkg/middleware"
)

// newTestSessionManager はテスト用のセッションマネージャを構築する。
func newTestSessionManager(t *testing.T) (*sessionManager, *tododb.Queries) {
	t.Helper()

	queries := tododb.New(newTestDB(t))
	return newSessionManager(queries, testSecret), queries
}

// TestSessionEstablishAndResolve はセッション確立と解決のテスト。
func TestSessionEstablishAndResolve(t *testing.T) {
	t.Parallel()

	t.Run("確立したセッションをトークン経由で解決できる", func(t *testing.T) {
		t.Parallel()
		m, queries := newTestSessionManager(t)

		err := queries.CreateUser(t.Context(), tododb.CreateUserParams{
			ID:           "user-1",
			Username:     "tanaka",
			PasswordHash: "hash",
		})
		if err != nil {
			t.Fatalf("テスト用ユーザーの作成に失敗: %v", err)
		}

		token, err := m.Establish(t.Context(), "user-1")
		if err != nil {
			t.Fatalf("セッション確立に失敗: %v", err)
		}

		sessionID, err := middleware.ParseSessionToken(testSecret, token)
		if err != nil {
			t.Fatalf("トークンの検証に失敗: %v", err)
		}

		identity, ok, err := m.ResolveSession(t.Context(), sessionID)
		if err != nil {
			t.Fatalf("セッション解決に失敗: %v", err)
		}
		if !ok {
			t.Fatal("確立したばかりのセッションが解決できません")
		}
		if identity.UserID != "user-1" {
			t.Errorf("UserID: got %s, want user-1", identity.UserID)
		}
		if identity.Username != "tanaka" {
			t.Errorf("Username: got %s, want tanaka", identity.Username)
		}
	})

	t.Run("存在しないセッションIDは解決できない", func(t *testing.T) {
		t.Parallel()
		m, _ := newTestSessionManager(t)

		_, ok, err := m.ResolveSession(t.Context(), "nonexistent-session")
		if err != nil {
			t.Fatalf("セッション解決でエラー: %v", err)
		}
		if ok {
			t.Error("存在しないセッションが解決されています")
		}
	})

	t.Run("期限切れセッションは解決できず行も削除される", func(t *testing.T) {
		t.Parallel()
		m, queries := newTestSessionManager(t)

		err := queries.CreateUser(t.Context(), tododb.CreateUserParams{
			ID:           "user-1",
			Username:     "tanaka",
			PasswordHash: "hash",
		})
		if err != nil {
			t.Fatalf("テスト用ユーザーの作成に失敗: %v", err)
		}

		// 期限が過去のセッションを直接挿入する
		err = queries.CreateSession(t.Context(), tododb.CreateSessionParams{
			ID:        "expired-session",
			UserID:    "user-1",
			ExpiresAt: time.Now().UTC().Add(-time.Hour),
		})
		if err != nil {
			t.Fatalf("テスト用セッションの作成に失敗: %v", err)
		}

		_, ok, err := m.ResolveSession(t.Context(), "expired-session")
		if err != nil {
			t.Fatalf("セッション解決でエラー: %v", err)
		}
		if ok {
			t.Error("期限切れセッションが解決されています")
		}

		// 行が掃除されていることを確認する
		if _, err := queries.GetSessionUser(t.Context(), "expired-session"); err == nil {
			t.Error("期限切れセッションの行が残っています")
		}
	})
}

// TestSessionTeardown はセッション破棄のテスト。
func TestSessionTeardown(t *testing.T) {
	t.Parallel()

	t.Run("破棄したセッションは解決できない", func(t *testing.T) {
		t.Parallel()
		m, queries := newTestSessionManager(t)

		err := queries.CreateUser(t.Context(), tododb.CreateUserParams{
			ID:           "user-1",
			Username:     "tanaka",
			PasswordHash: "hash",
		})
		if err != nil {
			t.Fatalf("テスト用ユーザーの作成に失敗: %v", err)
		}

		token, err := m.Establish(t.Context(), "user-1")
		if err != nil {
			t.Fatalf("セッション確立に失敗: %v", err)
		}

		if err := m.Teardown(t.Context(), token); err != nil {
			t.Fatalf("セッション破棄に失敗: %v", err)
		}

		sessionID, err := middleware.ParseSessionToken(testSecret, token)
		if err != nil {
			t.Fatalf("トークンの検証に失敗: %v", err)
		}

		_, ok, err := m.ResolveSession(t.Context(), sessionID)
		if err != nil {
			t.Fatalf("セッション解決でエラー: %v", err)
		}
		if ok {
			t.Error("破棄したセッションが解決されています")
		}
	})

	t.Run("無効なトークンの破棄はエラーにならない", func(t *testing.T) {
		t.Parallel()
		m, _ := newTestSessionManager(t)

		if err := m.Teardown(t.Context(), "invalid-token"); err != nil {
			t.Errorf("無効なトークンの破棄でエラー: %v", err)
		}
	})

	t.Run("同じトークンを二度破棄しても成功する", func(t *testing.T) {
		t.Parallel()
		m, queries := newTestSessionManager(t)

		err := queries.CreateUser(t.Context(), tododb.CreateUserParams{
			ID:           "user-1",
			Username:     "tanaka",
			PasswordHash: "hash",
		})
		if err != nil {
			t.Fatalf("テスト用ユーザーの作成に失敗: %v", err)
		}

		token, err := m.Establish(t.Context(), "user-1")
		if err != nil {
			t.Fatalf("セッション確立に失敗: %v", err)
		}

		if err := m.Teardown(t.Context(), token); err != nil {
			t.Fatalf("1回目の破棄に失敗: %v", err)
		}
		if err := m.Teardown(t.Context(), token); err != nil {
			t.Errorf("2回目の破棄でエラー: %v", err)
		}
	})
}

// TestSessionPurgeExpired は期限切れセッションの一括削除のテスト。
func TestSessionPurgeExpired(t *testing.T) {
	t.Parallel()

	m, queries := newTestSessionManager(t)

	err := queries.CreateUser(t.Context(), tododb.CreateUserParams{
		ID:           "user-1",
		Username:     "tanaka",
		PasswordHash: "hash",
	})
	if err != nil {
		t.Fatalf("テスト用ユーザーの作成に失敗: %v", err)
	}

	// 期限切れと有効なセッションを1つずつ用意する
	err = queries.CreateSession(t.Context(), tododb.CreateSessionParams{
		ID:        "expired-session",
		UserID:    "user-1",
		ExpiresAt: time.Now().UTC().Add(-time.Hour),
	})
	if err != nil {
		t.Fatalf("テスト用セッションの作成に失敗: %v", err)
	}
	err = queries.CreateSession(t.Context(), tododb.CreateSessionParams{
		ID:        "valid-session",
		UserID:    "user-1",
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("テスト用セッションの作成に失敗: %v", err)
	}

	if err := m.PurgeExpired(t.Context()); err != nil {
		t.Fatalf("期限切れセッションの削除に失敗: %v", err)
	}

	if _, err := queries.GetSessionUser(t.Context(), "expired-session"); err == nil {
		t.Error("期限切れセッションが削除されていません")
	}
	if _, err := queries.GetSessionUser(t.Context(), "valid-session"); err != nil {
		t.Errorf("有効なセッションまで削除されています: %v", err)
	}
}
