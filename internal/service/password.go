// File: internal/service/password.go
package service

import (
	"crypto/rand"
	"errors"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword 接收明文密碼，回傳 bcrypt 哈希字串
func HashPassword(password string) (string, error) {
	hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashBytes), nil
}

// ComparePassword 比對明文密碼與 bcrypt 哈希，成功回傳 nil，失敗則回傳錯誤
func ComparePassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// AuthenticateUser 驗證使用者密碼；未設密碼的帳號只接受空密碼
func AuthenticateUser(passwordHash, password string) error {
	if passwordHash == "" {
		if password == "" {
			return nil
		}
		return errors.New("invalid password")
	}
	if err := ComparePassword(passwordHash, password); err != nil {
		return errors.New("invalid password")
	}
	return nil
}

// GenerateSecurityToken 產生 15 位隨機數字字串並以 bcrypt 哈希
// 哈希後的字串即為存放於使用者記錄的 bearer 憑證
func GenerateSecurityToken() (string, error) {
	digits := make([]byte, 15)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + n.Int64())
	}
	hashBytes, err := bcrypt.GenerateFromPassword(digits, bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashBytes), nil
}
