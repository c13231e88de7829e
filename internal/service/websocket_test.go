package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"challenge_web/internal/models"
)

// 測試不啟動讀寫協程，直接從 SendChan 驗證投遞結果

func TestWebSocketManager_JoinRoomAndBroadcast(t *testing.T) {
	req := require.New(t)
	m := NewWebSocketManager()

	creator := NewClient(nil, 1)
	opponent := NewClient(nil, 2)
	m.JoinRoom(creator, "AbC123")
	m.JoinRoom(opponent, "AbC123")
	req.Equal(2, m.RoomClientCount("AbC123"))

	m.BroadcastToRoom("AbC123", models.NewUserLeftEvent())

	req.Equal(models.EventUserLeft, (<-creator.SendChan).Name)
	req.Equal(models.EventUserLeft, (<-opponent.SendChan).Name)
}

func TestWebSocketManager_BroadcastPreservesOrder(t *testing.T) {
	req := require.New(t)
	m := NewWebSocketManager()

	client := NewClient(nil, 1)
	m.JoinRoom(client, "AbC123")

	room := &models.ChallengeRoom{RoomID: "AbC123", State: models.RoomStateRunning, DurationSec: 1800}
	m.BroadcastToRoom("AbC123", models.NewOpponentJoinedEvent(2, 1800))
	m.BroadcastToRoom("AbC123", models.NewChallengeStartedEvent(room, "挑戰開始！"))

	// 同一個訂閱者必須先收到 opponentJoined 再收到 challengeStarted
	req.Equal(models.EventOpponentJoined, (<-client.SendChan).Name)
	req.Equal(models.EventChallengeStarted, (<-client.SendChan).Name)
}

func TestWebSocketManager_BroadcastScopedToRoom(t *testing.T) {
	req := require.New(t)
	m := NewWebSocketManager()

	inRoom := NewClient(nil, 1)
	elsewhere := NewClient(nil, 2)
	m.JoinRoom(inRoom, "AbC123")
	m.JoinRoom(elsewhere, "XyZ789")

	m.BroadcastToRoom("AbC123", models.NewUserLeftEvent())

	req.Len(inRoom.SendChan, 1)
	req.Empty(elsewhere.SendChan)
}

func TestWebSocketManager_RemoveClientReturnsJoinedRooms(t *testing.T) {
	req := require.New(t)
	m := NewWebSocketManager()

	client := NewClient(nil, 1)
	m.JoinRoom(client, "AbC123")
	m.JoinRoom(client, "XyZ789") // 重連過程中可能短暫同時掛在兩個房間

	joined := m.removeClient(client)
	req.ElementsMatch([]string{"AbC123", "XyZ789"}, joined)
	req.Zero(m.RoomClientCount("AbC123"))
	req.Zero(m.RoomClientCount("XyZ789"))

	// SendChan 已關閉，寫協程會隨之退出
	_, open := <-client.SendChan
	req.False(open)
}

func TestWebSocketManager_FullQueueDropsInsteadOfBlocking(t *testing.T) {
	req := require.New(t)
	m := NewWebSocketManager()

	client := NewClient(nil, 1)
	// 填滿發送隊列
	for i := 0; i < cap(client.SendChan); i++ {
		client.Send(models.NewUserLeftEvent())
	}
	m.JoinRoom(client, "AbC123")

	// 廣播不能因為一個慢客戶端堵住
	m.BroadcastToRoom("AbC123", models.NewWinnerEvent(1))
	req.Len(client.SendChan, cap(client.SendChan))
}
