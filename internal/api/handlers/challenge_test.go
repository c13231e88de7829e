package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"challenge_web/internal/models"
	"challenge_web/internal/service"
)

// memoryRoomRepo 以記憶體實現房間儲存的條件寫入語義，供入口層測試使用
type memoryRoomRepo struct {
	mu    sync.Mutex
	rooms map[string]*models.ChallengeRoom
}

func newMemoryRoomRepo() *memoryRoomRepo {
	return &memoryRoomRepo{rooms: make(map[string]*models.ChallengeRoom)}
}

func (m *memoryRoomRepo) Create(room *models.ChallengeRoom) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *room
	m.rooms[strings.ToLower(room.RoomID)] = &copied
	return nil
}

func (m *memoryRoomRepo) FindByRoomID(roomID string) (*models.ChallengeRoom, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[strings.ToLower(roomID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *room
	return &copied, nil
}

func (m *memoryRoomRepo) BindCreator(roomID string, userID uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[strings.ToLower(roomID)]
	if !ok || room.Creator != 0 {
		return false, nil
	}
	room.Creator = userID
	room.State = models.RoomStateWaiting
	return true, nil
}

func (m *memoryRoomRepo) BindOpponent(roomID string, userID uint, startAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[strings.ToLower(roomID)]
	if !ok || room.Opponent != 0 || room.State != models.RoomStateWaiting {
		return false, nil
	}
	room.Opponent = userID
	room.State = models.RoomStateRunning
	room.StartAt = startAt
	return true, nil
}

func (m *memoryRoomRepo) FinishWithWinner(roomID string, winner uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[strings.ToLower(roomID)]
	if !ok || room.State != models.RoomStateRunning {
		return false, nil
	}
	room.State = models.RoomStateFinished
	room.Winner = winner
	return true, nil
}

func (m *memoryRoomRepo) FinishAbandoned(roomID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[strings.ToLower(roomID)]
	if !ok || room.State != models.RoomStateRunning {
		return false, nil
	}
	room.State = models.RoomStateFinished
	return true, nil
}

func (m *memoryRoomRepo) FinishResigned(roomID string, winner uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[strings.ToLower(roomID)]
	if !ok || room.State == models.RoomStateFinished {
		return false, nil
	}
	room.State = models.RoomStateFinished
	room.Winner = winner
	return true, nil
}

type stubProblemRepo struct{}

func (stubProblemRepo) Create(problem *models.Problem) error { return nil }

func (stubProblemRepo) FindByID(id uint) (*models.Problem, error) {
	return &models.Problem{Title: "Two Sum"}, nil
}

func (stubProblemRepo) PickRandom() (*models.Problem, error) {
	return &models.Problem{Title: "Two Sum"}, nil
}

// newTestHandlers 用真實的服務層和 WebSocket 管理器組出兩個入口
func newTestHandlers() (*ChallengeHandler, *WebSocketHandler, *memoryRoomRepo) {
	repo := newMemoryRoomRepo()
	wsManager := service.NewWebSocketManager()
	challengeService := service.NewChallengeService(repo, stubProblemRepo{}, wsManager, 1800)
	return NewChallengeHandler(challengeService), NewWebSocketHandler(wsManager, challengeService), repo
}

func seedWaitingRoom(repo *memoryRoomRepo, roomID string) {
	repo.Create(&models.ChallengeRoom{
		RoomID:      roomID,
		State:       models.RoomStateWaiting,
		DurationSec: 1800,
		Problem:     models.Problem{Title: "Two Sum"},
	})
}

// newTestContext 準備一個帶身份和路徑參數的請求上下文
func newTestContext(userID uint, roomID string, body string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Params = gin.Params{{Key: "id", Value: roomID}}
	c.Set("userID", userID)
	return c, w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestJoinRoomHTTP_RoomNotFound(t *testing.T) {
	req := require.New(t)
	handler, _, _ := newTestHandlers()

	c, w := newTestContext(1, "missing", "")
	handler.JoinRoom(c)

	req.Equal(http.StatusNotFound, w.Code)
	req.Contains(decodeBody(t, w), "error")
}

func TestJoinRoomHTTP_ThirdUserRejected(t *testing.T) {
	req := require.New(t)
	handler, _, repo := newTestHandlers()
	seedWaitingRoom(repo, "AbC123")

	c, _ := newTestContext(1, "AbC123", "")
	handler.JoinRoom(c)
	c, _ = newTestContext(2, "AbC123", "")
	handler.JoinRoom(c)

	// 第三位用戶被拒絕，而不是拿到房間狀態
	c, w := newTestContext(3, "AbC123", "")
	handler.JoinRoom(c)
	req.Equal(http.StatusBadRequest, w.Code)
}

func TestJoinRoomHTTP_RejoinTagged(t *testing.T) {
	req := require.New(t)
	handler, _, repo := newTestHandlers()
	seedWaitingRoom(repo, "AbC123")

	c, _ := newTestContext(1, "AbC123", "")
	handler.JoinRoom(c)
	c, _ = newTestContext(2, "AbC123", "")
	handler.JoinRoom(c)

	// 創建者重連：同樣的快照，rejoin 標記為 true
	c, w := newTestContext(1, "AbC123", "")
	handler.JoinRoom(c)
	req.Equal(http.StatusOK, w.Code)
	body := decodeBody(t, w)
	req.Equal(true, body["rejoin"])
	req.Equal(string(models.RoomStateRunning), body["state"])
}

func TestLeaveRoomHTTP_FinishedRoomRejected(t *testing.T) {
	req := require.New(t)
	handler, _, repo := newTestHandlers()
	seedWaitingRoom(repo, "AbC123")

	c, _ := newTestContext(1, "AbC123", "")
	handler.JoinRoom(c)
	c, _ = newTestContext(2, "AbC123", "")
	handler.JoinRoom(c)
	c, _ = newTestContext(2, "AbC123", `{"status":"accepted"}`)
	handler.SubmitResult(c)

	c, w := newTestContext(1, "AbC123", "")
	handler.LeaveRoom(c)
	req.Equal(http.StatusBadRequest, w.Code)
}

func TestGetRoomStatusHTTP_NotFound(t *testing.T) {
	handler, _, _ := newTestHandlers()

	c, w := newTestContext(1, "missing", "")
	handler.GetRoomStatus(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubmitResultHTTP_NotAcceptedRecordedOnly(t *testing.T) {
	req := require.New(t)
	handler, _, repo := newTestHandlers()
	seedWaitingRoom(repo, "AbC123")

	c, _ := newTestContext(1, "AbC123", "")
	handler.JoinRoom(c)
	c, _ = newTestContext(2, "AbC123", "")
	handler.JoinRoom(c)

	// 沒通過的提交不結算勝負
	c, w := newTestContext(1, "AbC123", `{"status":"wrong_answer"}`)
	handler.SubmitResult(c)
	req.Equal(http.StatusOK, w.Code)

	room, err := repo.FindByRoomID("AbC123")
	req.NoError(err)
	req.Equal(models.RoomStateRunning, room.State)
}

// 以下直接驅動 WebSocket 入口的事件分發，不啟動讀寫協程，
// 從 SendChan 驗證回給請求者的事件

func TestJoinRoomWS_RoomNotFound(t *testing.T) {
	req := require.New(t)
	_, wsHandler, _ := newTestHandlers()

	client := service.NewClient(nil, 1)
	wsHandler.handleJoinRoom(client, "missing")

	event := <-client.SendChan
	req.Equal(models.EventError, event.Name)
}

func TestJoinRoomWS_ThirdUserGetsErrorEvent(t *testing.T) {
	req := require.New(t)
	_, wsHandler, repo := newTestHandlers()
	seedWaitingRoom(repo, "AbC123")

	wsHandler.handleJoinRoom(service.NewClient(nil, 1), "AbC123")
	wsHandler.handleJoinRoom(service.NewClient(nil, 2), "AbC123")

	// 第三位用戶在即時入口同樣被拒絕，收到 error 事件而不是房間狀態
	third := service.NewClient(nil, 3)
	wsHandler.handleJoinRoom(third, "abc123")

	event := <-third.SendChan
	req.Equal(models.EventError, event.Name)
	data, ok := event.Data.(models.ErrorData)
	req.True(ok)
	req.Equal(service.ErrRoomFull.Error(), data.Message)
}

func TestDispatchWS_UnknownEvent(t *testing.T) {
	req := require.New(t)
	_, wsHandler, _ := newTestHandlers()

	client := service.NewClient(nil, 1)
	wsHandler.dispatch(client, models.InboundEvent{Name: "bogus"})

	event := <-client.SendChan
	req.Equal(models.EventError, event.Name)
}

func TestSubmitCodeWS_UsesAuthenticatedIdentity(t *testing.T) {
	req := require.New(t)
	_, wsHandler, repo := newTestHandlers()
	seedWaitingRoom(repo, "AbC123")

	wsHandler.handleJoinRoom(service.NewClient(nil, 1), "AbC123")
	wsHandler.handleJoinRoom(service.NewClient(nil, 2), "AbC123")

	// 載荷裡偽造的 userId 不採信，勝利者是連接驗證過的用戶
	client := service.NewClient(nil, 1)
	payload, err := json.Marshal(models.SubmitCodeData{RoomID: "AbC123", UserID: 99, Status: "accepted"})
	req.NoError(err)
	wsHandler.dispatch(client, models.InboundEvent{Name: models.InboundSubmitCode, Data: payload})

	room, err := repo.FindByRoomID("AbC123")
	req.NoError(err)
	req.Equal(models.RoomStateFinished, room.State)
	req.Equal(uint(1), room.Winner)
}
