package todo

import (
	"database/sql"
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	_ "modernc.org/sqlite"

	tododb "github.com/CocaColaCat/to-with-auth/internal/todo/db"
	"github.com/CocaColaCat/to-with-auth/pkg/middleware"
)

// Server はTodoサービスのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// queries はsqlcが生成したクエリ実行オブジェクト。
	queries *tododb.Queries
	// db はSQLiteデータベース接続。
	db *sql.DB
	// sessions はセッションの確立・解決・破棄を担当する。
	sessions *sessionManager
}

// NewServer は新しいTodoサーバーを生成する。
// SQLiteデータベースの初期化とマイグレーション適用を行う。
func NewServer(port string) (*Server, error) {
	dbPath := getEnvOr("DB_PATH", "/data/todo.db")
	sqlDB, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=ON")
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}

	if err := initSchema(sqlDB); err != nil {
		return nil, fmt.Errorf("スキーマ初期化に失敗: %w", err)
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "dev-secret-key"
	}

	frontendURL := getEnvOr("FRONTEND_URL", "http://localhost:3000")

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORS([]string{frontendURL}))

	queries := tododb.New(sqlDB)
	s := &Server{
		router:   router,
		port:     port,
		queries:  queries,
		db:       sqlDB,
		sessions: newSessionManager(queries, jwtSecret),
	}
	s.setupRoutes()

	return s, nil
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.port))
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	api := s.router.Group("/api/v1")
	{
		// 認証不要のエンドポイント
		// ユーザー登録
		api.POST("/users", s.handleRegister())
		// ログイン
		api.POST("/login", s.handleLogin())
		// ログアウト（セッションが無くても成功する）
		api.DELETE("/logout", s.handleLogout())
	}

	// 認証必須のエンドポイント。セッション解決に失敗したリクエストは
	// ハンドラに到達する前に401で中断される。
	authed := api.Group("")
	authed.Use(middleware.SessionAuth(s.sessions.secret, s.sessions))
	{
		// ログイン中のユーザー情報
		authed.GET("/me", s.handleGetCurrentUser())
		// プロフィール更新
		authed.PUT("/users/:id", s.handleUpdateProfile())
		// アクティビティログ
		authed.GET("/events", s.handleListEvents())

		todos := authed.Group("/todos")
		{
			// Todo作成
			todos.POST("", s.handleCreateTodo())
			// Todo一覧取得
			todos.GET("", s.handleListTodos())
			// Todo詳細取得
			todos.GET("/:id", s.handleGetTodo())
			// Todo更新
			todos.PUT("/:id", s.handleUpdateTodo())
			// Todo削除
			todos.DELETE("/:id", s.handleDeleteTodo())
		}
	}

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "todo"})
	})
}

// getEnvOr は環境変数を取得し、設定されていない場合はデフォルト値を返す。
func getEnvOr(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
