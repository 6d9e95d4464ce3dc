// Package todo はマルチユーザーTodoサービスの内部実装を提供する。
//
// ユーザー登録・ログイン・ログアウトと、認証済みユーザー本人の
// Todoに限定したCRUD操作を担当する。すべてのリソース操作は
// セッション認証を通過した後にのみ実行され、所有者以外のTodoは
// 存在しないものとして扱われる。
package todo
