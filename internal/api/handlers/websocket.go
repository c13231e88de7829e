package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"challenge_web/internal/models"
	"challenge_web/internal/service"
)

// 定義 WebSocket 升級器
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // 注意：在生產環境中，應該檢查 origin
	},
}

// WebSocketHandler 是挑戰房間的即時入口，
// 把收到的事件轉成和 HTTP 入口完全相同的 ChallengeService 呼叫
type WebSocketHandler struct {
	wsManager        *service.WebSocketManager
	challengeService *service.ChallengeService
}

// NewWebSocketHandler 創建一個新的 WebSocketHandler 實例
func NewWebSocketHandler(wsManager *service.WebSocketManager, challengeService *service.ChallengeService) *WebSocketHandler {
	return &WebSocketHandler{
		wsManager:        wsManager,
		challengeService: challengeService,
	}
}

// HandleWebSocket 處理 WebSocket 連接請求
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	// 從上下文中獲取用戶 ID，升級前先確認身份
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	// 升級 HTTP 連接為 WebSocket 連接
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "升級WebSocket失敗"})
		return
	}
	defer conn.Close()

	client := service.NewClient(conn, userID.(uint))

	// 阻塞處理這條連線；返回時連線已關閉，拿到它加入過的房間
	joinedRooms := h.wsManager.HandleClient(client, h.dispatch)

	// 斷線結算：進行中的房間視為棄賽
	for _, roomID := range joinedRooms {
		if err := h.challengeService.HandleDisconnect(roomID); err != nil {
			log.Printf("disconnect settlement error: room=%s err=%v", roomID, err)
		}
	}
}

// dispatch 按事件名稱分發客戶端事件
func (h *WebSocketHandler) dispatch(client *service.Client, event models.InboundEvent) {
	switch event.Name {
	case models.InboundJoinRoom:
		var data models.JoinRoomData
		if err := json.Unmarshal(event.Data, &data); err != nil {
			client.Send(models.NewErrorEvent("無法解析事件"))
			return
		}
		h.handleJoinRoom(client, data.RoomID)

	case models.InboundSubmitCode:
		var data models.SubmitCodeData
		if err := json.Unmarshal(event.Data, &data); err != nil {
			client.Send(models.NewErrorEvent("無法解析事件"))
			return
		}
		h.handleSubmitCode(client, data)

	default:
		client.Send(models.NewErrorEvent("未知的事件類型"))
	}
}

// handleJoinRoom 處理加入房間事件。
// 先用規範化的房間代碼訂閱廣播，再套用加入規則，
// 這樣自己觸發的 waiting→running 廣播自己也收得到。
func (h *WebSocketHandler) handleJoinRoom(client *service.Client, roomID string) {
	room, err := h.challengeService.GetRoom(roomID)
	if err != nil {
		client.Send(models.NewErrorEvent(h.errorMessage(err)))
		return
	}

	h.wsManager.JoinRoom(client, room.RoomID)

	result, err := h.challengeService.Join(room.RoomID, client.UserID)
	if err != nil {
		client.Send(models.NewErrorEvent(h.errorMessage(err)))
		return
	}

	switch result.Outcome {
	case service.JoinedAsCreator:
		client.Send(models.NewWaitingEvent(result.Room, "等待對手加入中..."))

	case service.JoinedAsOpponent:
		// 服務層已向房間廣播 opponentJoined 和 challengeStarted，
		// 自己也在訂閱者之列，不需要額外的直接回覆

	case service.Rejoined:
		switch result.Room.State {
		case models.RoomStateFinished:
			client.Send(models.NewWinnerEvent(result.Room.Winner))
		case models.RoomStateRunning:
			client.Send(models.NewChallengeStartedEvent(result.Room, "重新連上挑戰！"))
		default:
			client.Send(models.NewWaitingEvent(result.Room, "等待對手加入中..."))
		}
	}
}

// handleSubmitCode 處理評測結果事件，只有通過的提交會結算勝負
func (h *WebSocketHandler) handleSubmitCode(client *service.Client, data models.SubmitCodeData) {
	if data.Status != "accepted" {
		return
	}

	if _, err := h.challengeService.NotifyAccepted(data.RoomID, client.UserID); err != nil {
		client.Send(models.NewErrorEvent(h.errorMessage(err)))
	}
}

// errorMessage 把服務層錯誤轉成回給客戶端的訊息
func (h *WebSocketHandler) errorMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrRoomNotFound),
		errors.Is(err, service.ErrRoomFull),
		errors.Is(err, service.ErrInvalidTransition):
		return err.Error()
	default:
		return "伺服器內部錯誤"
	}
}
