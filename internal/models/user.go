package models

import (
	"gorm.io/gorm"
)

// User 表示系統中的用戶，以信箱作為登入帳號
type User struct {
	gorm.Model
	FirstName string   `gorm:"not null" json:"firstName"`
	LastName  string   `json:"lastName"`
	Email     string   `gorm:"uniqueIndex;not null" json:"email"` // 信箱必須唯一，儲存前轉為小寫，建立後不再更改
	Role      UserRole `gorm:"type:varchar(20);not null" json:"role"`
	Age       int      `json:"age"`
	Password  string   `gorm:"not null" json:"-"` // 密碼雜湊，json 序列化時會被忽略
}

// UserRole 定義用戶角色的類型
type UserRole string

const (
	RoleUser  UserRole = "user"  // 一般用戶
	RoleAdmin UserRole = "admin" // 管理員
)
