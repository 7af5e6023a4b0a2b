// Package security はAPIキー暗号化のセキュリティ機能を提供する。
package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

// KeySize はAES-256-GCMで要求される鍵長（バイト）。
const KeySize = 32

// ErrCiphertextInvalid は対応する鍵・方式で生成されていない暗号文
// （改ざん、破損、鍵違い）の復号失敗を示す。
// 呼び出し側はレコード不存在とは区別して扱うこと。
var ErrCiphertextInvalid = errors.New("ciphertext is invalid or was not produced by this key")

// Cipher はプロセス全体で共有する対称鍵によるAES-256-GCM暗号化を提供する。
// 鍵は起動時に1回読み込まれ、以降イミュータブル。並行呼び出しに対して安全。
// 鍵を交換すると既存の全暗号文は復号不能になる（運用上の制約、コードでは扱わない）。
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher はbase64エンコードされた32バイト鍵からCipherを生成する。
// 鍵が復号できない、または長さが不正な場合はエラーを返す。
// 起動時に呼び出し、エラーは致命的として扱うこと。
func NewCipher(base64Key string) (*Cipher, error) {
	key, err := base64.StdEncoding.DecodeString(base64Key)
	if err != nil {
		return nil, fmt.Errorf("failed to decode encryption key: %w", err)
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("encryption key must be %d bytes, got %d", KeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &Cipher{aead: aead}, nil
}

// Encrypt は平文をAES-256-GCMで暗号化し、
// nonce || ciphertext || tag をbase64エンコードした文字列を返す。
// nonceは毎回ランダム生成されるため、同一平文でも暗号文は一致しない。
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt はEncryptが生成した暗号文を復号して平文を返す。
// 復号できない入力に対してはErrCiphertextInvalidをラップしたエラーを返し、
// パニックや不正な平文の返却は発生しない。
func (c *Cipher) Decrypt(ciphertext string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("failed to decode ciphertext: %w", ErrCiphertextInvalid)
	}

	nonceSize := c.aead.NonceSize()
	if len(data) < nonceSize {
		return "", fmt.Errorf("ciphertext shorter than nonce: %w", ErrCiphertextInvalid)
	}

	nonce, sealed := data[:nonceSize], data[nonceSize:]
	plaintext, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("failed to open ciphertext: %w", ErrCiphertextInvalid)
	}

	return string(plaintext), nil
}
