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
	"github.com/CocaColaCat/to-with-auth/pkg/password"
)

// msgInvalidLogin はログイン失敗時の共通メッセージ。
// ユーザー名の存在有無を区別しないことで列挙攻撃を防ぐ。
const msgInvalidLogin = "ユーザー名またはパスワードが正しくありません"

// registerRequest はユーザー登録リクエストのJSON構造。
// 受け付けるフィールドはこの構造体が定義するものに限られ、
// その他の入力（IDや権限等）はデコード時に破棄される。
type registerRequest struct {
	// Username はログインに使用するユーザー名。
	Username string `json:"username"`
	// Password は平文パスワード。ハッシュ化してのみ保存される。
	Password string `json:"password"`
	// PasswordConfirmation は確認用パスワード。
	PasswordConfirmation string `json:"password_confirmation"`
	// AvatarURL はアバター画像への参照URL。
	AvatarURL string `json:"avatar_url"`
}

// updateProfileRequest はプロフィール更新リクエストのJSON構造。
// 部分更新であり、省略されたフィールドは保存済みの値を維持する。
// アバターだけの変更やパスワードだけの変更ができる。
type updateProfileRequest struct {
	// Username はログインに使用するユーザー名。指定する場合は空にできない。
	Username *string `json:"username"`
	// Password は新しい平文パスワード。省略または空なら変更しない。
	Password string `json:"password"`
	// PasswordConfirmation は確認用パスワード。
	PasswordConfirmation string `json:"password_confirmation"`
	// AvatarURL はアバター画像への参照URL。
	AvatarURL *string `json:"avatar_url"`
}

// loginRequest はログインリクエストのJSON構造。
type loginRequest struct {
	// Username はユーザー名。
	Username string `json:"username"`
	// Password は平文パスワード。
	Password string `json:"password"`
}

// userResponse はユーザーのJSONレスポンス構造。
// パスワードハッシュは構造上含まれない。
type userResponse struct {
	// ID はユーザーの一意識別子。
	ID string `json:"id"`
	// Username はユーザー名。
	Username string `json:"username"`
	// AvatarURL はアバター画像への参照URL。
	AvatarURL string `json:"avatar_url"`
	// CreatedAt は作成日時。
	CreatedAt string `json:"created_at"`
	// UpdatedAt は更新日時。
	UpdatedAt string `json:"updated_at"`
}

// toUserResponse はDB行をJSONレスポンスに変換する。
func toUserResponse(u tododb.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		AvatarURL: u.AvatarUrl,
		CreatedAt: u.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt: u.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// isUniqueViolation はSQLiteのUNIQUE制約違反かどうかを判定する。
// usersテーブルのユーザー名重複はこのエラーとして現れる。
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// validationError はフィールド単位のエラーを付けて400を返す。
func validationError(c *gin.Context, fields map[string]string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":  "入力内容に誤りがあります",
		"fields": fields,
	})
}

// handleRegister はユーザー登録を処理するハンドラを返す。
// パスワードはbcryptでハッシュ化され、平文は保存されない。
func (s *Server) handleRegister() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "リクエストが不正です"})
			return
		}

		fields := map[string]string{}
		req.Username = strings.TrimSpace(req.Username)
		if req.Username == "" {
			fields["username"] = "ユーザー名を入力してください"
		}
		if req.Password == "" {
			fields["password"] = "パスワードを入力してください"
		} else if len(req.Password) > password.MaxLength {
			fields["password"] = "パスワードが長すぎます"
		}
		if req.Password != req.PasswordConfirmation {
			fields["password_confirmation"] = "パスワードと確認用パスワードが一致しません"
		}

		if req.Username != "" {
			_, err := s.queries.GetUserByUsername(c.Request.Context(), req.Username)
			if err == nil {
				fields["username"] = "このユーザー名は既に使われています"
			} else if err != sql.ErrNoRows {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "ユーザーの確認に失敗しました"})
				log.Printf("ユーザー名重複確認エラー: %v", err)
				return
			}
		}

		if len(fields) > 0 {
			validationError(c, fields)
			return
		}

		hashed, err := password.Hash(req.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ユーザーの作成に失敗しました"})
			log.Printf("パスワードハッシュ化エラー: %v", err)
			return
		}

		userID := uuid.New().String()
		if err := s.queries.CreateUser(c.Request.Context(), tododb.CreateUserParams{
			ID:           userID,
			Username:     req.Username,
			PasswordHash: hashed,
			AvatarUrl:    req.AvatarURL,
		}); err != nil {
			// 重複チェックと挿入の間に同名ユーザーが登録された場合
			if isUniqueViolation(err) {
				validationError(c, map[string]string{"username": "このユーザー名は既に使われています"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ユーザーの作成に失敗しました"})
			log.Printf("ユーザー作成エラー: %v", err)
			return
		}

		s.recordEvent(c, userID, userID, event.AggregateTypeUser, event.TypeUserRegistered, event.UserRegisteredData{
			Username: req.Username,
		})

		created, err := s.queries.GetUserByID(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "作成したユーザーの取得に失敗しました"})
			log.Printf("ユーザー取得エラー: %v", err)
			return
		}

		c.JSON(http.StatusCreated, toUserResponse(created))
	}
}

// handleLogin はログインを処理するハンドラを返す。
// ユーザー名が存在しない場合もパスワードが誤っている場合も、
// レスポンスは同一の失敗になる。
func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "リクエストが不正です"})
			return
		}

		user, err := s.queries.GetUserByUsername(c.Request.Context(), req.Username)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusUnauthorized, gin.H{"error": msgInvalidLogin})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ログインに失敗しました"})
			log.Printf("ユーザー取得エラー: %v", err)
			return
		}

		if !password.Verify(user.PasswordHash, req.Password) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": msgInvalidLogin})
			return
		}

		// 期限切れセッションの掃除。失敗してもログインは続行する。
		if err := s.sessions.PurgeExpired(c.Request.Context()); err != nil {
			log.Printf("期限切れセッションの削除エラー: %v", err)
		}

		token, err := s.sessions.Establish(c.Request.Context(), user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "セッションの確立に失敗しました"})
			log.Printf("セッション確立エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"token": token,
			"user":  toUserResponse(user),
		})
	}
}

// handleLogout はログアウトを処理するハンドラを返す。
// セッションが無い・既に無効な場合も成功として扱う。
func (s *Server) handleLogout() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if tokenString, found := strings.CutPrefix(authHeader, "Bearer "); found {
			if err := s.sessions.Teardown(c.Request.Context(), tokenString); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "ログアウトに失敗しました"})
				log.Printf("セッション破棄エラー: %v", err)
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{"message": "ログアウトしました"})
	}
}

// handleGetCurrentUser はログイン中のユーザー情報を返すハンドラを返す。
func (s *Server) handleGetCurrentUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.GetUserID(c)
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "ユーザーIDが取得できません"})
			return
		}

		user, err := s.queries.GetUserByID(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "ユーザーが見つかりません"})
			return
		}

		c.JSON(http.StatusOK, toUserResponse(user))
	}
}

// handleUpdateProfile はプロフィール更新を処理するハンドラを返す。
// 更新できるのは本人のみ。他人のIDを指定した場合は、そのユーザーの
// 存在有無に関わらず404を返す。
func (s *Server) handleUpdateProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.GetUserID(c)
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "ユーザーIDが取得できません"})
			return
		}

		if c.Param("id") != userID {
			c.JSON(http.StatusNotFound, gin.H{"error": "ユーザーが見つかりません"})
			return
		}

		user, err := s.queries.GetUserByID(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "ユーザーが見つかりません"})
			return
		}

		var req updateProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "リクエストが不正です"})
			return
		}

		// 省略されたフィールドは保存済みの値を引き継ぐ
		fields := map[string]string{}
		username := user.Username
		if req.Username != nil {
			username = strings.TrimSpace(*req.Username)
			if username == "" {
				fields["username"] = "ユーザー名を入力してください"
			}
		}
		avatarURL := user.AvatarUrl
		if req.AvatarURL != nil {
			avatarURL = *req.AvatarURL
		}

		passwordChanged := req.Password != ""
		if passwordChanged {
			if len(req.Password) > password.MaxLength {
				fields["password"] = "パスワードが長すぎます"
			}
			if req.Password != req.PasswordConfirmation {
				fields["password_confirmation"] = "パスワードと確認用パスワードが一致しません"
			}
		}

		if username != "" && username != user.Username {
			_, err := s.queries.GetUserByUsername(c.Request.Context(), username)
			if err == nil {
				fields["username"] = "このユーザー名は既に使われています"
			} else if err != sql.ErrNoRows {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "ユーザーの確認に失敗しました"})
				log.Printf("ユーザー名重複確認エラー: %v", err)
				return
			}
		}

		if len(fields) > 0 {
			validationError(c, fields)
			return
		}

		passwordHash := user.PasswordHash
		if passwordChanged {
			hashed, err := password.Hash(req.Password)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "プロフィールの更新に失敗しました"})
				log.Printf("パスワードハッシュ化エラー: %v", err)
				return
			}
			passwordHash = hashed
		}

		if err := s.queries.UpdateUser(c.Request.Context(), tododb.UpdateUserParams{
			Username:     username,
			PasswordHash: passwordHash,
			AvatarUrl:    avatarURL,
			ID:           userID,
		}); err != nil {
			if isUniqueViolation(err) {
				validationError(c, map[string]string{"username": "このユーザー名は既に使われています"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "プロフィールの更新に失敗しました"})
			log.Printf("プロフィール更新エラー: %v", err)
			return
		}

		s.recordEvent(c, userID, userID, event.AggregateTypeUser, event.TypeUserUpdated, event.UserUpdatedData{
			Username:        username,
			PasswordChanged: passwordChanged,
		})

		updated, err := s.queries.GetUserByID(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "更新後のユーザーの取得に失敗しました"})
			log.Printf("ユーザー取得エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, toUserResponse(updated))
	}
}
