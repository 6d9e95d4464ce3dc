package todo

import (
	"database/sql"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	tododb "github.com/CocaColaCat/to-with-auth/internal/todo/db"
	"github.com/CocaColaCat/to-with-auth/pkg/event"
	"github.com/CocaColaCat/to-with-auth/pkg/middleware"
)

// msgTodoNotFound はTodoが存在しない場合と他人のTodoである場合の
// 共通メッセージ。所有状況を外部に漏らさないため区別しない。
const msgTodoNotFound = "Todoが見つかりません"

// todoRequest はTodo作成リクエストのJSON構造。
// 所有者やIDはクライアントから指定できない。
type todoRequest struct {
	// Title はTodoのタイトル。必須。
	Title string `json:"title"`
	// Remark は備考。省略可能。
	Remark string `json:"remark"`
	// IsFinished は完了フラグ。
	IsFinished bool `json:"is_finished"`
}

// todoUpdateRequest はTodo更新リクエストのJSON構造。
// 部分更新であり、省略されたフィールドは保存済みの値を維持する。
type todoUpdateRequest struct {
	// Title はTodoのタイトル。指定する場合は空にできない。
	Title *string `json:"title"`
	// Remark は備考。
	Remark *string `json:"remark"`
	// IsFinished は完了フラグ。
	IsFinished *bool `json:"is_finished"`
}

// todoResponse はTodoのJSONレスポンス構造。
type todoResponse struct {
	// ID はTodoの一意識別子。
	ID string `json:"id"`
	// UserID は所有者のユーザーID。
	UserID string `json:"user_id"`
	// Title はタイトル。
	Title string `json:"title"`
	// Remark は備考。
	Remark string `json:"remark"`
	// IsFinished は完了フラグ。
	IsFinished bool `json:"is_finished"`
	// CreatedAt は作成日時。
	CreatedAt string `json:"created_at"`
	// UpdatedAt は更新日時。
	UpdatedAt string `json:"updated_at"`
}

// toTodoResponse はDB行をJSONレスポンスに変換する。
func toTodoResponse(t tododb.Todo) todoResponse {
	return todoResponse{
		ID:         t.ID,
		UserID:     t.UserID,
		Title:      t.Title,
		Remark:     t.Remark,
		IsFinished: t.IsFinished,
		CreatedAt:  t.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:  t.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// loadOwnedTodo はIDでTodoを取得し、所有者がuserIDであることを確認する。
// 存在しない場合と他人のTodoの場合はどちらも404を返し、falseを返す。
func (s *Server) loadOwnedTodo(c *gin.Context, userID string) (tododb.Todo, bool) {
	todo, err := s.queries.GetTodoByID(c.Request.Context(), c.Param("id"))
	if err == sql.ErrNoRows || (err == nil && todo.UserID != userID) {
		c.JSON(http.StatusNotFound, gin.H{"error": msgTodoNotFound})
		return tododb.Todo{}, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Todoの取得に失敗しました"})
		log.Printf("Todo取得エラー: %v", err)
		return tododb.Todo{}, false
	}
	return todo, true
}

// handleCreateTodo はTodo作成を処理するハンドラを返す。
// 作成されたTodoの所有者は常にログイン中のユーザーになる。
func (s *Server) handleCreateTodo() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.GetUserID(c)
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "ユーザーIDが取得できません"})
			return
		}

		var req todoRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "リクエストが不正です"})
			return
		}

		req.Title = strings.TrimSpace(req.Title)
		if req.Title == "" {
			validationError(c, map[string]string{"title": "タイトルを入力してください"})
			return
		}

		todoID := uuid.New().String()
		if err := s.queries.CreateTodo(c.Request.Context(), tododb.CreateTodoParams{
			ID:         todoID,
			UserID:     userID,
			Title:      req.Title,
			Remark:     req.Remark,
			IsFinished: req.IsFinished,
		}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Todoの作成に失敗しました"})
			log.Printf("Todo作成エラー: %v", err)
			return
		}

		s.recordEvent(c, userID, todoID, event.AggregateTypeTodo, event.TypeTodoCreated, event.TodoCreatedData{
			Title: req.Title,
		})

		created, err := s.queries.GetTodoByID(c.Request.Context(), todoID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "作成したTodoの取得に失敗しました"})
			log.Printf("Todo取得エラー: %v", err)
			return
		}

		c.JSON(http.StatusCreated, toTodoResponse(created))
	}
}

// handleListTodos はログイン中のユーザーのTodo一覧を返すハンドラを返す。
// 他のユーザーのTodoは一覧に含まれない。
func (s *Server) handleListTodos() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.GetUserID(c)
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "ユーザーIDが取得できません"})
			return
		}

		todos, err := s.queries.ListTodosByUserID(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Todo一覧の取得に失敗しました"})
			log.Printf("Todo一覧取得エラー: %v", err)
			return
		}

		// 0件でもnullではなく空配列を返す
		response := make([]todoResponse, 0, len(todos))
		for _, t := range todos {
			response = append(response, toTodoResponse(t))
		}

		c.JSON(http.StatusOK, response)
	}
}

// handleGetTodo はTodoの単体取得を処理するハンドラを返す。
func (s *Server) handleGetTodo() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.GetUserID(c)
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "ユーザーIDが取得できません"})
			return
		}

		todo, ok := s.loadOwnedTodo(c, userID)
		if !ok {
			return
		}

		c.JSON(http.StatusOK, toTodoResponse(todo))
	}
}

// handleUpdateTodo はTodo更新を処理するハンドラを返す。
func (s *Server) handleUpdateTodo() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.GetUserID(c)
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "ユーザーIDが取得できません"})
			return
		}

		todo, ok := s.loadOwnedTodo(c, userID)
		if !ok {
			return
		}

		var req todoUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "リクエストが不正です"})
			return
		}

		// 省略されたフィールドは保存済みの値を引き継ぐ
		title := todo.Title
		if req.Title != nil {
			title = strings.TrimSpace(*req.Title)
			if title == "" {
				validationError(c, map[string]string{"title": "タイトルを入力してください"})
				return
			}
		}
		remark := todo.Remark
		if req.Remark != nil {
			remark = *req.Remark
		}
		isFinished := todo.IsFinished
		if req.IsFinished != nil {
			isFinished = *req.IsFinished
		}

		if err := s.queries.UpdateTodo(c.Request.Context(), tododb.UpdateTodoParams{
			Title:      title,
			Remark:     remark,
			IsFinished: isFinished,
			ID:         todo.ID,
		}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Todoの更新に失敗しました"})
			log.Printf("Todo更新エラー: %v", err)
			return
		}

		s.recordEvent(c, userID, todo.ID, event.AggregateTypeTodo, event.TypeTodoUpdated, event.TodoUpdatedData{
			Title:      title,
			IsFinished: isFinished,
		})

		updated, err := s.queries.GetTodoByID(c.Request.Context(), todo.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "更新後のTodoの取得に失敗しました"})
			log.Printf("Todo取得エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, toTodoResponse(updated))
	}
}

// handleDeleteTodo はTodo削除を処理するハンドラを返す。
func (s *Server) handleDeleteTodo() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.GetUserID(c)
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "ユーザーIDが取得できません"})
			return
		}

		todo, ok := s.loadOwnedTodo(c, userID)
		if !ok {
			return
		}

		if err := s.queries.DeleteTodo(c.Request.Context(), todo.ID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Todoの削除に失敗しました"})
			log.Printf("Todo削除エラー: %v", err)
			return
		}

		s.recordEvent(c, userID, todo.ID, event.AggregateTypeTodo, event.TypeTodoDeleted, event.TodoDeletedData{
			Title: todo.Title,
		})

		c.JSON(http.StatusOK, gin.H{"message": "Todoを削除しました"})
	}
}
