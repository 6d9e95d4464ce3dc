// Package password はパスワードの一方向ハッシュ化と照合を提供する。
//
// bcryptを使用する。平文パスワードは永続化されず、照合はハッシュ同士の
// 比較で行われる。ユーザー登録・ログイン・プロフィール更新で使用する。
package password
