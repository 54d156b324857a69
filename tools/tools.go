package tools

import (
	"golang.org/x/crypto/bcrypt"
)

func PanicOnErr(err error) {
	if err != nil {
		panic(err)
	}
}

// PasswordHash 生成 bcrypt 密码哈希
func PasswordHash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// PasswordCompare 校验明文密码与哈希是否匹配
func PasswordCompare(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
