package todo

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	_ "modernc.org/sqlite"

	tododb "github.com/CocaColaCat/to-with-auth/internal/todo/db"
	"github.com/CocaColaCat/to-with-auth/pkg/password"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testSecret はテスト用のセッショントークン署名鍵。
const testSecret = "test-secret-key"

// newTestDB はテスト用のインメモリSQLiteを構築し、スキーマを適用する。
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	sqlDB, err := sql.Open("sqlite", ":memory:?_foreign_keys=ON")
	if err != nil {
		t.Fatalf("インメモリDBの作成に失敗: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	// インメモリDBは接続ごとに別のデータベースになるため1接続に固定する
	sqlDB.SetMaxOpenConns(1)

	if err := initSchema(sqlDB); err != nil {
		t.Fatalf("スキーマ初期化に失敗: %v", err)
	}
	return sqlDB
}

// setupTestServer はテスト用のTodoサーバーをインメモリSQLiteで構築する。
// 認証必須エンドポイントにはセッションミドルウェアの代わりに
// X-User-IDヘッダーからユーザーIDを設定するテスト用ミドルウェアを使用する。
func setupTestServer(t *testing.T) (*Server, *gin.Engine) {
	t.Helper()

	sqlDB := newTestDB(t)
	queries := tododb.New(sqlDB)

	router := gin.New()
	s := &Server{
		router:   router,
		port:     "0",
		queries:  queries,
		db:       sqlDB,
		sessions: newSessionManager(queries, testSecret),
	}

	api := router.Group("/api/v1")
	{
		api.POST("/users", s.handleRegister())
		api.POST("/login", s.handleLogin())
		api.DELETE("/logout", s.handleLogout())
	}

	authed := api.Group("")
	authed.Use(func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID != "" {
			c.Set("user_id", userID)
		}
		c.Next()
	})
	{
		authed.GET("/me", s.handleGetCurrentUser())
		authed.PUT("/users/:id", s.handleUpdateProfile())
		authed.GET("/events", s.handleListEvents())

		todos := authed.Group("/todos")
		{
			todos.POST("", s.handleCreateTodo())
			todos.GET("", s.handleListTodos())
			todos.GET("/:id", s.handleGetTodo())
			todos.PUT("/:id", s.handleUpdateTodo())
			todos.DELETE("/:id", s.handleDeleteTodo())
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "todo"})
	})

	return s, router
}

// setupIntegrationServer は本番同様のルーティング（実セッション認証付き）で
// テスト用サーバーを構築する。ログインからログアウトまでの一連の
// セッションフローを検証するテストで使用する。
func setupIntegrationServer(t *testing.T) (*Server, *gin.Engine) {
	t.Helper()

	sqlDB := newTestDB(t)
	queries := tododb.New(sqlDB)

	router := gin.New()
	s := &Server{
		router:   router,
		port:     "0",
		queries:  queries,
		db:       sqlDB,
		sessions: newSessionManager(queries, testSecret),
	}
	s.setupRoutes()

	return s, router
}

// createTestUser はテスト用にユーザーをDBに直接挿入するヘルパー関数。
// パスワードは本番同様bcryptでハッシュ化して保存する。
func createTestUser(t *testing.T, s *Server, id, username, plainPassword string) {
	t.Helper()

	hashed, err := password.Hash(plainPassword)
	if err != nil {
		t.Fatalf("パスワードハッシュ化に失敗: %v", err)
	}

	err = s.queries.CreateUser(t.Context(), tododb.CreateUserParams{
		ID:           id,
		Username:     username,
		PasswordHash: hashed,
		AvatarUrl:    "",
	})
	if err != nil {
		t.Fatalf("テスト用ユーザーの作成に失敗: %v", err)
	}
}

// createTestTodo はテスト用にTodoをDBに直接挿入するヘルパー関数。
func createTestTodo(t *testing.T, s *Server, id, userID, title, remark string, isFinished bool) {
	t.Helper()

	err := s.queries.CreateTodo(t.Context(), tododb.CreateTodoParams{
		ID:         id,
		UserID:     userID,
		Title:      title,
		Remark:     remark,
		IsFinished: isFinished,
	})
	if err != nil {
		t.Fatalf("テスト用Todoの作成に失敗: %v", err)
	}
}

// doRequest はテスト用のHTTPリクエストを実行し、レスポンスを返すヘルパー関数。
// userIDが空でない場合、X-User-IDヘッダーとして設定される。
func doRequest(router *gin.Engine, method, path, userID string, body any) *httptest.ResponseRecorder {
	var reqBody *bytes.Reader
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewReader(jsonBytes)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// doAuthRequest はBearerトークン付きのHTTPリクエストを実行するヘルパー関数。
func doAuthRequest(router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var reqBody *bytes.Reader
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewReader(jsonBytes)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// parseJSON はレスポンスボディをmapにデコードするヘルパー関数。
func parseJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var result map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("JSONのデコードに失敗: %v, body=%s", err, w.Body.String())
	}
	return result
}

// parseJSONArray はレスポンスボディをスライスにデコードするヘルパー関数。
func parseJSONArray(t *testing.T, w *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var result []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("JSON配列のデコードに失敗: %v, body=%s", err, w.Body.String())
	}
	return result
}

// TestHealthCheck はヘルスチェックエンドポイントの正常動作を検証する。
func TestHealthCheck(t *testing.T) {
	t.Parallel()

	_, router := setupTestServer(t)

	w := doRequest(router, http.MethodGet, "/health", "", nil)

	if w.Code != http.StatusOK {
		t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusOK)
	}

	result := parseJSON(t, w)
	if result["status"] != "ok" {
		t.Errorf("status: got %v, want ok", result["status"])
	}
	if result["service"] != "todo" {
		t.Errorf("service: got %v, want todo", result["service"])
	}
}

// TestSessionLifecycle はログインからログアウトまでの一連のセッション
// フローを実ルーティングで検証する。
func TestSessionLifecycle(t *testing.T) {
	t.Parallel()

	t.Run("ログインで得たトークンで認証必須エンドポイントにアクセスできる", func(t *testing.T) {
		t.Parallel()
		s, router := setupIntegrationServer(t)

		createTestUser(t, s, "user-1", "tanaka", "password123")

		login := doRequest(router, http.MethodPost, "/api/v1/login", "", map[string]string{
			"username": "tanaka",
			"password": "password123",
		})
		if login.Code != http.StatusOK {
			t.Fatalf("ログインステータスコード: got %d, want %d, body=%s", login.Code, http.StatusOK, login.Body.String())
		}

		token, ok := parseJSON(t, login)["token"].(string)
		if !ok || token == "" {
			t.Fatal("トークンが返されていません")
		}

		me := doAuthRequest(router, http.MethodGet, "/api/v1/me", token, nil)
		if me.Code != http.StatusOK {
			t.Errorf("meステータスコード: got %d, want %d, body=%s", me.Code, http.StatusOK, me.Body.String())
		}

		result := parseJSON(t, me)
		if result["username"] != "tanaka" {
			t.Errorf("username: got %v, want tanaka", result["username"])
		}
	})

	t.Run("ログアウト後は同じトークンでアクセスできない", func(t *testing.T) {
		t.Parallel()
		s, router := setupIntegrationServer(t)

		createTestUser(t, s, "user-1", "tanaka", "password123")

		login := doRequest(router, http.MethodPost, "/api/v1/login", "", map[string]string{
			"username": "tanaka",
			"password": "password123",
		})
		token := parseJSON(t, login)["token"].(string)

		logout := doAuthRequest(router, http.MethodDelete, "/api/v1/logout", token, nil)
		if logout.Code != http.StatusOK {
			t.Fatalf("ログアウトステータスコード: got %d, want %d", logout.Code, http.StatusOK)
		}

		// トークン自体は期限内だが、セッション行が消えているため401になる
		me := doAuthRequest(router, http.MethodGet, "/api/v1/me", token, nil)
		if me.Code != http.StatusUnauthorized {
			t.Errorf("ログアウト後のステータスコード: got %d, want %d", me.Code, http.StatusUnauthorized)
		}
	})

	t.Run("トークンなしで認証必須エンドポイントにアクセスするとUnauthorized", func(t *testing.T) {
		t.Parallel()
		_, router := setupIntegrationServer(t)

		w := doAuthRequest(router, http.MethodGet, "/api/v1/me", "", nil)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusUnauthorized)
		}
	})

	t.Run("でたらめなトークンはUnauthorized", func(t *testing.T) {
		t.Parallel()
		_, router := setupIntegrationServer(t)

		w := doAuthRequest(router, http.MethodGet, "/api/v1/me", "invalid-token", nil)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusUnauthorized)
		}
	})

	t.Run("トークンなしのログアウトは成功扱い", func(t *testing.T) {
		t.Parallel()
		_, router := setupIntegrationServer(t)

		w := doRequest(router, http.MethodDelete, "/api/v1/logout", "", nil)
		if w.Code != http.StatusOK {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusOK)
		}
	})
}
