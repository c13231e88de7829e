package models

import (
	"gorm.io/gorm"
)

// Problem 表示題庫中的一道題目，挑戰房間創建時隨機選定
type Problem struct {
	gorm.Model
	Title       string `gorm:"not null" json:"title"`
	Difficulty  string `gorm:"type:varchar(20)" json:"difficulty"` // easy / medium / hard
	Description string `gorm:"type:text" json:"description"`
	Tags        string `json:"tags"`
}
