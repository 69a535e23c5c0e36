// Package security はパスワードのソルト生成とハッシュ化を提供します。
package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// SaltSize はソルトのバイト長です。
const SaltSize = 32

// GenerateSalt は暗号論的乱数で32バイトのソルトを生成し、base64で返します。
func GenerateSalt() (string, error) {
	b := make([]byte, SaltSize)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// SaltPassword はパスワードのUTF-8バイト列の後ろにソルトのUTF-8バイト列を連結し、base64で返します。
// これはハッシュではなく、PasswordHasherに渡す入力の整形です。
func SaltPassword(password, salt string) string {
	b := make([]byte, 0, len(password)+len(salt))
	b = append(b, password...)
	b = append(b, salt...)
	return base64.StdEncoding.EncodeToString(b)
}
