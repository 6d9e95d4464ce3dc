package todo

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	tododb "github.com/CocaColaCat/to-with-auth/internal/todo/db"
	"github.com/CocaColaCat/to-with-auth/pkg/event"
	"github.com/CocaColaCat/to-with-auth/pkg/middleware"
)

// recordEvent は操作イベントをアクティビティログに記録する。
// イベントの記録失敗で元の操作を失敗させないため、エラーはログ出力に留める。
func (s *Server) recordEvent(c *gin.Context, userID, aggregateID string, aggregateType event.AggregateType, eventType event.Type, data any) {
	ev, err := event.New(userID, aggregateID, aggregateType, eventType, data)
	if err != nil {
		log.Printf("イベント生成エラー: %v", err)
		return
	}

	if err := s.queries.CreateEvent(c.Request.Context(), tododb.CreateEventParams{
		ID:            ev.ID,
		UserID:        ev.UserID,
		AggregateID:   ev.AggregateID,
		AggregateType: string(ev.AggregateType),
		EventType:     string(ev.EventType),
		Data:          string(ev.Data),
		CreatedAt:     ev.CreatedAt,
	}); err != nil {
		log.Printf("イベント記録エラー: %v", err)
	}
}

// eventResponse はアクティビティログのJSONレスポンス構造。
type eventResponse struct {
	// ID はイベントの一意識別子。
	ID string `json:"id"`
	// AggregateID は対象エンティティの識別子。
	AggregateID string `json:"aggregate_id"`
	// AggregateType は対象エンティティの種類。
	AggregateType string `json:"aggregate_type"`
	// EventType はイベントの種類。
	EventType string `json:"event_type"`
	// Data はイベント固有のデータ。
	Data json.RawMessage `json:"data"`
	// CreatedAt は記録日時。
	CreatedAt string `json:"created_at"`
}

// handleListEvents はログイン中のユーザーのアクティビティログを返す
// ハンドラを返す。新しい順で最大100件。
func (s *Server) handleListEvents() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.GetUserID(c)
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "ユーザーIDが取得できません"})
			return
		}

		events, err := s.queries.ListEventsByUserID(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "アクティビティログの取得に失敗しました"})
			log.Printf("イベント一覧取得エラー: %v", err)
			return
		}

		response := make([]eventResponse, 0, len(events))
		for _, ev := range events {
			response = append(response, eventResponse{
				ID:            ev.ID,
				AggregateID:   ev.AggregateID,
				AggregateType: ev.AggregateType,
				EventType:     ev.EventType,
				Data:          json.RawMessage(ev.Data),
				CreatedAt:     ev.CreatedAt.Format("2006-01-02T15:04:05Z"),
			})
		}

		c.JSON(http.StatusOK, response)
	}
}
