package service

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"challenge_web/internal/models"
	"challenge_web/internal/repository"
)

var (
	ErrRoomNotFound      = errors.New("房間不存在")
	ErrRoomFull          = errors.New("房間已滿")
	ErrInvalidTransition = errors.New("房間狀態不允許此操作")
)

// RoomBroadcaster 向訂閱了指定房間的所有即時連接推送事件
type RoomBroadcaster interface {
	BroadcastToRoom(roomID string, event models.Event)
}

// JoinOutcome 表示一次加入請求的結果類型
type JoinOutcome int

const (
	JoinedAsCreator  JoinOutcome = iota // 綁定為創建者，繼續等待對手
	JoinedAsOpponent                    // 綁定為對手，對戰開始
	Rejoined                            // 已是參與者，重新連線
)

// JoinResult 攜帶加入結果和當前房間快照
type JoinResult struct {
	Outcome JoinOutcome
	Room    *models.ChallengeRoom
}

// ChallengeService 負責挑戰房間的全部狀態變更。
// HTTP 和 WebSocket 兩個入口都只透過這裡改變房間狀態，
// 避免兩條路徑各自實現加入規則而產生行為分歧。
type ChallengeService struct {
	roomRepo    repository.ChallengeRoomRepository
	problemRepo repository.ProblemRepository
	broadcaster RoomBroadcaster
	durationSec int // 新房間的對戰時長
}

func NewChallengeService(roomRepo repository.ChallengeRoomRepository, problemRepo repository.ProblemRepository, broadcaster RoomBroadcaster, durationSec int) *ChallengeService {
	return &ChallengeService{
		roomRepo:    roomRepo,
		problemRepo: problemRepo,
		broadcaster: broadcaster,
		durationSec: durationSec,
	}
}

// joinDecision 是加入規則對一份房間快照的判定結果
type joinDecision int

const (
	decisionBindCreator joinDecision = iota
	decisionBindOpponent
	decisionRejoin
	decisionFull
)

// resolveJoin 是加入規則本身：只看房間快照和請求者，不碰任何傳輸層。
// 創建者未綁定則綁定創建者；對手未綁定且請求者不是創建者則綁定對手；
// 已是參與者則視為重連；其餘情況房間已滿。
func resolveJoin(room *models.ChallengeRoom, userID uint) joinDecision {
	switch {
	case room.Creator == 0:
		return decisionBindCreator
	case room.Opponent == 0 && room.Creator != userID:
		return decisionBindOpponent
	case room.Creator == userID || room.Opponent == userID:
		return decisionRejoin
	default:
		return decisionFull
	}
}

const joinRetryLimit = 3

// Join 處理一次加入請求：讀取快照、套用加入規則、以帶條件的寫入落地。
// 條件寫入落空代表有併發請求者先一步，重讀快照後重新判定，
// 所以兩個用戶同時搶同一個角色時，輸的一方會正確落入另一個分支。
func (s *ChallengeService) Join(roomID string, userID uint) (*JoinResult, error) {
	for attempt := 0; attempt < joinRetryLimit; attempt++ {
		room, err := s.loadRoom(roomID)
		if err != nil {
			return nil, err
		}

		switch resolveJoin(room, userID) {
		case decisionBindCreator:
			ok, err := s.roomRepo.BindCreator(room.RoomID, userID)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			room.Creator = userID
			room.State = models.RoomStateWaiting
			return &JoinResult{Outcome: JoinedAsCreator, Room: room}, nil

		case decisionBindOpponent:
			startAt := time.Now()
			ok, err := s.roomRepo.BindOpponent(room.RoomID, userID, startAt)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			room.Opponent = userID
			room.State = models.RoomStateRunning
			room.StartAt = startAt
			// 先通知對手加入，再宣告開始，順序是對外協議的一部分
			s.broadcaster.BroadcastToRoom(room.RoomID, models.NewOpponentJoinedEvent(userID, room.DurationSec))
			s.broadcaster.BroadcastToRoom(room.RoomID, models.NewChallengeStartedEvent(room, "挑戰開始！"))
			return &JoinResult{Outcome: JoinedAsOpponent, Room: room}, nil

		case decisionRejoin:
			return &JoinResult{Outcome: Rejoined, Room: room}, nil

		default:
			return nil, ErrRoomFull
		}
	}
	return nil, errors.New("加入房間失敗，請重試")
}

// CreateRoom 創建一個新的挑戰房間：隨機抽一道題目，創建者即為請求者
func (s *ChallengeService) CreateRoom(creator uint) (*models.ChallengeRoom, error) {
	problem, err := s.problemRepo.PickRandom()
	if err != nil {
		return nil, err
	}

	// 碰撞時重新生成房間代碼
	for attempt := 0; attempt < 5; attempt++ {
		roomID, err := GenerateRoomID()
		if err != nil {
			return nil, err
		}
		if _, err := s.roomRepo.FindByRoomID(roomID); err == nil {
			// 代碼已被占用，重新生成
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			// 儲存層故障直接回報，不當成碰撞重試
			return nil, err
		}

		room := &models.ChallengeRoom{
			RoomID:      roomID,
			Creator:     creator,
			ProblemID:   problem.ID,
			Problem:     *problem,
			State:       models.RoomStateWaiting,
			DurationSec: s.durationSec,
		}
		if err := s.roomRepo.Create(room); err != nil {
			return nil, err
		}
		return room, nil
	}
	return nil, errors.New("生成房間代碼失敗")
}

// GetRoom 返回房間的只讀快照，不產生任何副作用
func (s *ChallengeService) GetRoom(roomID string) (*models.ChallengeRoom, error) {
	return s.loadRoom(roomID)
}

// Resign 處理主動認輸：勝利者是認輸者以外已綁定的另一位參與者。
// 對手還沒加入時認輸，勝利者保持未設置。
func (s *ChallengeService) Resign(roomID string, userID uint) (uint, error) {
	room, err := s.loadRoom(roomID)
	if err != nil {
		return 0, err
	}
	if room.Creator != userID && room.Opponent != userID {
		return 0, ErrInvalidTransition
	}

	winner := room.OtherParticipant(userID)
	ok, err := s.roomRepo.FinishResigned(room.RoomID, winner)
	if err != nil {
		return 0, err
	}
	if !ok {
		// 房間已經結束，勝負不再更改
		return 0, ErrInvalidTransition
	}
	return winner, nil
}

// NotifyAccepted 處理評測服務的通過回調：第一個通過的提交者獲勝，
// 之後的通過不會改寫勝利者。
func (s *ChallengeService) NotifyAccepted(roomID string, userID uint) (uint, error) {
	room, err := s.loadRoom(roomID)
	if err != nil {
		return 0, err
	}

	ok, err := s.roomRepo.FinishWithWinner(room.RoomID, userID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrInvalidTransition
	}

	s.broadcaster.BroadcastToRoom(room.RoomID, models.NewWinnerEvent(userID))
	return userID, nil
}

// HandleDisconnect 處理參與者即時連線中斷：進行中的房間直接結束，
// 不指定勝利者（和主動認輸不同），並通知仍在線的參與者。
func (s *ChallengeService) HandleDisconnect(roomID string) error {
	ok, err := s.roomRepo.FinishAbandoned(roomID)
	if err != nil {
		return err
	}
	if ok {
		s.broadcaster.BroadcastToRoom(roomID, models.NewUserLeftEvent())
	}
	return nil
}

func (s *ChallengeService) loadRoom(roomID string) (*models.ChallengeRoom, error) {
	room, err := s.roomRepo.FindByRoomID(roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return room, nil
}
