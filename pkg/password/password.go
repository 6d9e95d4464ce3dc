package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MaxLength はbcryptが受け付けるパスワードの最大バイト数。
// これを超える入力はハッシュ化前に拒否する。
const MaxLength = 72

// Hash は平文パスワードをbcryptでハッシュ化する。
// 登録時とプロフィール更新時に呼び出す。
func Hash(plain string) (string, error) {
	if len(plain) > MaxLength {
		return "", fmt.Errorf("パスワードが長すぎます: 最大%dバイト", MaxLength)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("パスワードのハッシュ化に失敗: %w", err)
	}
	return string(hashed), nil
}

// Verify は平文パスワードが保存済みハッシュと一致するかを返す。
// bcryptの比較は導出鍵に対して一定時間で行われる。
func Verify(hashed, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}
