package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
)

// NewSessionToken 生成不透明会话令牌。
// 令牌本身不携带任何信息，服务端以它为键保存会话。
func NewSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// NewCardCode 生成卡密兑换码，形如 XXXX-XXXX-XXXX-XXXX。
// 字符集去掉了易混淆的 0/O/1/I。
func NewCardCode() (string, error) {
	const alphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate card code: %w", err)
	}

	var b strings.Builder
	for i, c := range buf {
		if i > 0 && i%4 == 0 {
			b.WriteByte('-')
		}
		b.WriteByte(alphabet[int(c)%len(alphabet)])
	}
	return b.String(), nil
}
