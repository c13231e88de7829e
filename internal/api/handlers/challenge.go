package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"challenge_web/internal/service"
)

// ChallengeHandler 處理挑戰房間的 HTTP 請求。
// 狀態變更全部交給 ChallengeService，這裡只做請求解析和錯誤轉換。
type ChallengeHandler struct {
	challengeService *service.ChallengeService
}

// NewChallengeHandler 創建一個新的 ChallengeHandler 實例
func NewChallengeHandler(challengeService *service.ChallengeService) *ChallengeHandler {
	return &ChallengeHandler{challengeService: challengeService}
}

// CreateRoom 處理創建挑戰房間的請求
func (h *ChallengeHandler) CreateRoom(c *gin.Context) {
	userID, _ := c.Get("userID")

	room, err := h.challengeService.CreateRoom(userID.(uint))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "創建房間失敗"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"roomId":      room.RoomID,
		"problem":     room.Problem,
		"durationSec": room.DurationSec,
		"state":       room.State,
		"creator":     room.Creator,
		"opponent":    room.Opponent,
	})
}

// JoinRoom 處理加入房間的請求。加入成功觸發開局時，
// 服務層已向房間的即時訂閱者廣播，這裡再同步返回同樣的狀態。
func (h *ChallengeHandler) JoinRoom(c *gin.Context) {
	roomID := c.Param("id")
	userID, _ := c.Get("userID")

	result, err := h.challengeService.Join(roomID, userID.(uint))
	if err != nil {
		h.writeError(c, err)
		return
	}

	room := result.Room
	c.JSON(http.StatusOK, gin.H{
		"roomId":      room.RoomID,
		"problem":     room.Problem,
		"durationSec": room.DurationSec,
		"state":       room.State,
		"creator":     room.Creator,
		"opponent":    room.Opponent,
		"startAt":     room.StartAt,
		"winner":      room.Winner,
		"rejoin":      result.Outcome == service.Rejoined,
	})
}

// LeaveRoom 處理主動認輸的請求
func (h *ChallengeHandler) LeaveRoom(c *gin.Context) {
	roomID := c.Param("id")
	userID, _ := c.Get("userID")

	winner, err := h.challengeService.Resign(roomID, userID.(uint))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "成功離開房間", "winner": winner})
}

// GetRoomStatus 返回房間的只讀快照
func (h *ChallengeHandler) GetRoomStatus(c *gin.Context) {
	roomID := c.Param("id")

	room, err := h.challengeService.GetRoom(roomID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"roomId":      room.RoomID,
		"state":       room.State,
		"creator":     room.Creator,
		"opponent":    room.Opponent,
		"startAt":     room.StartAt,
		"durationSec": room.DurationSec,
		"winner":      room.Winner,
	})
}

// SubmissionInput 定義評測結果回調的結構
type SubmissionInput struct {
	Status string `json:"status" binding:"required"`
}

// SubmitResult 處理評測服務的結果回調，通過的提交結算勝負
func (h *ChallengeHandler) SubmitResult(c *gin.Context) {
	roomID := c.Param("id")
	userID, _ := c.Get("userID")

	var input SubmissionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Status != "accepted" {
		c.JSON(http.StatusOK, gin.H{"message": "結果已記錄"})
		return
	}

	winner, err := h.challengeService.NotifyAccepted(roomID, userID.(uint))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"winner": winner})
}

// writeError 把服務層錯誤轉換成對應的 HTTP 響應
func (h *ChallengeHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRoomNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrRoomFull), errors.Is(err, service.ErrInvalidTransition):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "伺服器內部錯誤"})
	}
}
