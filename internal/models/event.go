package models

import (
	"encoding/json"
	"time"
)

// Event 是發往客戶端的即時事件封包，Name 為事件名稱，Data 為對應的固定載荷
type Event struct {
	Name string      `json:"event"`
	Data interface{} `json:"data"`
}

// 事件名稱的封閉集合，對外協議的一部分，不可隨意增減
const (
	EventOpponentJoined   = "opponentJoined"
	EventChallengeStarted = "challengeStarted"
	EventWaiting          = "waiting"
	EventWinner           = "winner"
	EventUserLeft         = "userLeft"
	EventError            = "error"
)

// OpponentJoinedData 對手加入通知，先於 challengeStarted 送出
type OpponentJoinedData struct {
	OpponentID  uint `json:"opponentId"`
	DurationSec int  `json:"durationSec"`
}

// ChallengeStartedData 對戰開始（或重連時的完整對戰狀態）
type ChallengeStartedData struct {
	Problem     Problem   `json:"problem"`
	StartAt     time.Time `json:"startAt"`
	DurationSec int       `json:"durationSec"`
	State       RoomState `json:"state"`
	Message     string    `json:"message"`
}

// WaitingData 等待對手時回給請求者的房間快照
type WaitingData struct {
	Problem     Problem `json:"problem"`
	RoomID      string  `json:"roomId"`
	DurationSec int     `json:"durationSec"`
	Message     string  `json:"message"`
}

// WinnerData 勝負已定
type WinnerData struct {
	Winner uint `json:"winner"`
}

// UserLeftData 參與者中途離線，無額外載荷
type UserLeftData struct{}

// ErrorData 操作失敗時回給請求者的錯誤訊息
type ErrorData struct {
	Message string `json:"message"`
}

// NewOpponentJoinedEvent 創建對手加入事件
func NewOpponentJoinedEvent(opponentID uint, durationSec int) Event {
	return Event{
		Name: EventOpponentJoined,
		Data: OpponentJoinedData{OpponentID: opponentID, DurationSec: durationSec},
	}
}

// NewChallengeStartedEvent 創建對戰開始事件
func NewChallengeStartedEvent(room *ChallengeRoom, message string) Event {
	return Event{
		Name: EventChallengeStarted,
		Data: ChallengeStartedData{
			Problem:     room.Problem,
			StartAt:     room.StartAt,
			DurationSec: room.DurationSec,
			State:       room.State,
			Message:     message,
		},
	}
}

// NewWaitingEvent 創建等待對手事件
func NewWaitingEvent(room *ChallengeRoom, message string) Event {
	return Event{
		Name: EventWaiting,
		Data: WaitingData{
			Problem:     room.Problem,
			RoomID:      room.RoomID,
			DurationSec: room.DurationSec,
			Message:     message,
		},
	}
}

// NewWinnerEvent 創建勝負事件
func NewWinnerEvent(winner uint) Event {
	return Event{Name: EventWinner, Data: WinnerData{Winner: winner}}
}

// NewUserLeftEvent 創建參與者離線事件
func NewUserLeftEvent() Event {
	return Event{Name: EventUserLeft, Data: UserLeftData{}}
}

// NewErrorEvent 創建錯誤事件
func NewErrorEvent(message string) Event {
	return Event{Name: EventError, Data: ErrorData{Message: message}}
}

// InboundEvent 是客戶端發來的即時事件封包，載荷先保留原始 JSON，
// 按事件名稱再解析成對應的固定結構
type InboundEvent struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data"`
}

// 客戶端可發送的事件名稱
const (
	InboundJoinRoom   = "joinRoom"
	InboundSubmitCode = "submitCode"
)

// JoinRoomData 加入房間請求。
// userId 是協議保留欄位，伺服器不讀取它，身份一律取自連接驗證過的用戶。
type JoinRoomData struct {
	RoomID string `json:"roomId"`
	UserID uint   `json:"userId"`
}

// SubmitCodeData 評測結果通知，status 為 accepted 時結算勝負。
// userId 同樣只是協議保留欄位，勝利者以連接驗證過的身份為準。
type SubmitCodeData struct {
	RoomID string `json:"roomId"`
	UserID uint   `json:"userId"`
	Status string `json:"status"`
}
