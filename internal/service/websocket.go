package service

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"challenge_web/internal/models"
)

// Client 代表一個 WebSocket 客戶端連接
type Client struct {
	ID       string            // 連接識別碼
	Conn     *websocket.Conn   // WebSocket 連接
	UserID   uint              // 用戶 ID
	SendChan chan models.Event // 事件發送通道，緩衝保證同一連接內的事件順序
	rooms    map[string]bool   // 這條連接加入過的房間（規範化的房間代碼）
}

// NewClient 創建一個新的客戶端連接
func NewClient(conn *websocket.Conn, userID uint) *Client {
	return &Client{
		ID:       uuid.NewString(),
		Conn:     conn,
		UserID:   userID,
		SendChan: make(chan models.Event, 256),
	}
}

// Send 把事件排入這條連接的發送隊列，隊列滿時直接丟棄
func (c *Client) Send(event models.Event) {
	select {
	case c.SendChan <- event:
	default:
	}
}

// WebSocketManager 管理所有的 WebSocket 連接和房間訂閱
type WebSocketManager struct {
	clients    map[string]map[*Client]bool // 兩層 map: roomID -> client -> bool
	clientsMux sync.RWMutex                // 用於保護 clients map 的讀寫鎖
}

// NewWebSocketManager 創建並初始化新的 WebSocket 管理器
func NewWebSocketManager() *WebSocketManager {
	return &WebSocketManager{
		clients: make(map[string]map[*Client]bool),
	}
}

// HandleClient 接管一條連線：啟動寫協程並在當前協程處理讀取，直到連線關閉。
// 解析出的事件交給 dispatch 處理；返回時連線已清理，
// 返回值是這條連線加入過的房間，供斷線結算使用。
func (m *WebSocketManager) HandleClient(client *Client, dispatch func(*Client, models.InboundEvent)) []string {
	go m.writePump(client)
	m.readPump(client, dispatch)
	return m.removeClient(client)
}

// JoinRoom 訂閱房間的廣播。roomID 必須是資料庫中的規範化代碼。
func (m *WebSocketManager) JoinRoom(client *Client, roomID string) {
	m.clientsMux.Lock()
	defer m.clientsMux.Unlock()

	if m.clients[roomID] == nil {
		m.clients[roomID] = make(map[*Client]bool)
	}
	m.clients[roomID][client] = true

	if client.rooms == nil {
		client.rooms = make(map[string]bool)
	}
	client.rooms[roomID] = true
}

// BroadcastToRoom 向房間內的所有客戶端廣播事件。
// 對同一個訂閱者，兩次連續呼叫的事件會按呼叫順序送達。
func (m *WebSocketManager) BroadcastToRoom(roomID string, event models.Event) {
	m.clientsMux.RLock()
	defer m.clientsMux.RUnlock()

	for client := range m.clients[roomID] {
		select {
		case client.SendChan <- event:
			// 事件成功加入發送隊列
		default:
			// 客戶端隊列已滿，放棄這個事件，由客戶端自行重連補狀態
		}
	}
}

// RoomClientCount 獲取指定房間的在線客戶端數量
func (m *WebSocketManager) RoomClientCount(roomID string) int {
	m.clientsMux.RLock()
	defer m.clientsMux.RUnlock()

	return len(m.clients[roomID])
}

// readPump 持續監聽並分發從客戶端接收的事件
func (m *WebSocketManager) readPump(client *Client, dispatch func(*Client, models.InboundEvent)) {
	client.Conn.SetReadLimit(4096) // 設置最大消息大小為 4KB
	client.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	client.Conn.SetPongHandler(func(string) error {
		client.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket unexpected close error: %v", err)
			}
			break
		}

		var event models.InboundEvent
		if err := json.Unmarshal(message, &event); err != nil {
			log.Printf("event parse error: %v", err)
			client.Send(models.NewErrorEvent("無法解析事件"))
			continue
		}

		dispatch(client, event)
	}
}

// writePump 處理向客戶端發送事件的邏輯
func (m *WebSocketManager) writePump(client *Client) {
	// 設置心跳檢查計時器
	ticker := time.NewTicker(54 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-client.SendChan:
			// 設置寫入超時
			client.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			eventBytes, err := json.Marshal(event)
			if err != nil {
				log.Printf("event encoding error: %v", err)
				continue
			}

			if err := client.Conn.WriteMessage(websocket.TextMessage, eventBytes); err != nil {
				return
			}

		case <-ticker.C:
			// 發送心跳包
			client.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// removeClient 安全地移除客戶端連接，返回它加入過的房間
func (m *WebSocketManager) removeClient(client *Client) []string {
	m.clientsMux.Lock()
	defer m.clientsMux.Unlock()

	var joined []string
	for roomID := range client.rooms {
		joined = append(joined, roomID)
		if clients, ok := m.clients[roomID]; ok {
			delete(clients, client)
			// 如果房間空了，刪除房間
			if len(clients) == 0 {
				delete(m.clients, roomID)
			}
		}
	}
	client.rooms = nil
	close(client.SendChan)
	return joined
}
