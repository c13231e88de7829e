package service

import (
	"crypto/rand"
	"math/big"
)

// 排除容易混淆的字符：0、O、1、I、L
const roomIDAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const roomIDLength = 8

// GenerateRoomID 生成一個隨機房間代碼
func GenerateRoomID() (string, error) {
	code := make([]byte, roomIDLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(roomIDAlphabet))))
		if err != nil {
			return "", err
		}
		code[i] = roomIDAlphabet[n.Int64()]
	}
	return string(code), nil
}
