// Package event はアクティビティログに記録するドメインイベントを定義する。
//
// ユーザー登録やTodoの作成・更新・削除といった状態変更は、
// このパッケージのイベントとしてデータベースに記録され、
// APIを通じて本人のみが閲覧できる。
package event
