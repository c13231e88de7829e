package models

import (
	"time"

	"gorm.io/gorm"
)

// ChallengeRoom 表示一場 1v1 挑戰對戰房間
type ChallengeRoom struct {
	gorm.Model
	RoomID      string    `gorm:"uniqueIndex;not null" json:"roomId"` // 房間代碼，查詢時不分大小寫，儲存原始大小寫
	Creator     uint      `json:"creator"`                            // 創建者，最多綁定一次，0 表示尚未綁定
	Opponent    uint      `json:"opponent"`                           // 對手，最多綁定一次，0 表示尚未加入
	ProblemID   uint      `json:"problemId"`
	Problem     Problem   `gorm:"foreignKey:ProblemID" json:"problem"`
	State       RoomState `gorm:"type:varchar(20);not null" json:"state"`
	StartAt     time.Time `json:"startAt"` // 對手加入時設置，且只設置一次
	DurationSec int       `json:"durationSec"`
	Winner      uint      `json:"winner"` // 只在 finished 狀態下設置，設置後不再更改
}

// RoomState 定義房間狀態的類型
type RoomState string

const (
	RoomStateWaiting  RoomState = "waiting"  // 等待對手加入
	RoomStateRunning  RoomState = "running"  // 對戰進行中
	RoomStateFinished RoomState = "finished" // 對戰結束（終態）
)

// Started 回報房間的計時是否已經開始
func (r *ChallengeRoom) Started() bool {
	return r.State == RoomStateRunning || r.State == RoomStateFinished
}

// OtherParticipant 返回 userID 以外已綁定的另一位參與者，沒有則返回 0
func (r *ChallengeRoom) OtherParticipant(userID uint) uint {
	if r.Creator == userID {
		return r.Opponent
	}
	return r.Creator
}
