package event

import (
	"encoding/json"
	"time"
)

// AggregateType はイベントの対象となるエンティティの種類を表す。
type AggregateType string

const (
	// AggregateTypeUser はユーザーエンティティを表す。
	AggregateTypeUser AggregateType = "User"
	// AggregateTypeTodo はTodoエンティティを表す。
	AggregateTypeTodo AggregateType = "Todo"
)

// Type はイベントの種類を表す。
type Type string

const (
	// TypeUserRegistered はユーザーが登録されたことを表す。
	TypeUserRegistered Type = "UserRegistered"
	// TypeUserUpdated はユーザープロフィールが更新されたことを表す。
	TypeUserUpdated Type = "UserUpdated"

	// TypeTodoCreated はTodoが作成されたことを表す。
	TypeTodoCreated Type = "TodoCreated"
	// TypeTodoUpdated はTodoが更新されたことを表す。
	TypeTodoUpdated Type = "TodoUpdated"
	// TypeTodoDeleted はTodoが削除されたことを表す。
	TypeTodoDeleted Type = "TodoDeleted"
)

// Event はアクティビティログの1レコードを表す。
// UserIDは操作を行った本人のIDであり、イベントの閲覧はこのIDで絞り込まれる。
type Event struct {
	// ID はイベントの一意識別子（UUID）。
	ID string `json:"id"`
	// UserID は操作を行ったユーザーのID。
	UserID string `json:"user_id"`
	// AggregateID は対象エンティティの識別子。
	AggregateID string `json:"aggregate_id"`
	// AggregateType は対象エンティティの種類。
	AggregateType AggregateType `json:"aggregate_type"`
	// EventType はイベントの種類。
	EventType Type `json:"event_type"`
	// Data はイベント固有のデータ（JSON形式）。
	Data json.RawMessage `json:"data"`
	// CreatedAt はイベントが記録された日時。
	CreatedAt time.Time `json:"created_at"`
}

// UserRegisteredData はUserRegisteredイベントのデータ。
type UserRegisteredData struct {
	// Username は登録されたユーザー名。
	Username string `json:"username"`
}

// UserUpdatedData はUserUpdatedイベントのデータ。
type UserUpdatedData struct {
	// Username は更新後のユーザー名。
	Username string `json:"username"`
	// PasswordChanged はパスワードが変更されたかどうか。
	PasswordChanged bool `json:"password_changed"`
}

// TodoCreatedData はTodoCreatedイベントのデータ。
type TodoCreatedData struct {
	// Title は作成されたTodoのタイトル。
	Title string `json:"title"`
}

// TodoUpdatedData はTodoUpdatedイベントのデータ。
type TodoUpdatedData struct {
	// Title は更新後のタイトル。
	Title string `json:"title"`
	// IsFinished は更新後の完了フラグ。
	IsFinished bool `json:"is_finished"`
}

// TodoDeletedData はTodoDeletedイベントのデータ。
type TodoDeletedData struct {
	// Title は削除されたTodoのタイトル。
	Title string `json:"title"`
}
