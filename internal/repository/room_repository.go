package repository

import (
	"time"

	"challenge_web/internal/models"
	"challenge_web/internal/storage"
)

// ChallengeRoomRepository 是挑戰房間的唯一持久化入口。
// 所有狀態變更都走帶條件的單一 UPDATE，條件不成立時返回 false，
// 讓併發的請求者以「先寫先贏」的方式分出勝負，而不是各自讀後再寫。
type ChallengeRoomRepository interface {
	Create(room *models.ChallengeRoom) error
	// FindByRoomID 以不分大小寫的房間代碼查詢，並載入題目
	FindByRoomID(roomID string) (*models.ChallengeRoom, error)
	// BindCreator 綁定創建者，僅在 creator 尚未綁定時生效
	BindCreator(roomID string, userID uint) (bool, error)
	// BindOpponent 綁定對手並開始計時，僅在 opponent 未綁定且房間仍在等待時生效。
	// opponent、state、start_at 在同一條 UPDATE 中寫入。
	BindOpponent(roomID string, userID uint, startAt time.Time) (bool, error)
	// FinishWithWinner 結束對戰並指定勝利者，僅在 running 狀態生效
	FinishWithWinner(roomID string, winner uint) (bool, error)
	// FinishAbandoned 因離線結束對戰，不指定勝利者，僅在 running 狀態生效
	FinishAbandoned(roomID string) (bool, error)
	// FinishResigned 因主動認輸結束對戰，房間尚未結束即可生效
	FinishResigned(roomID string, winner uint) (bool, error)
}

type challengeRoomRepository struct {
	db *storage.PostgresDB
}

func NewChallengeRoomRepository(db *storage.PostgresDB) ChallengeRoomRepository {
	return &challengeRoomRepository{db: db}
}

func (r *challengeRoomRepository) Create(room *models.ChallengeRoom) error {
	return r.db.Create(room).Error
}

func (r *challengeRoomRepository) FindByRoomID(roomID string) (*models.ChallengeRoom, error) {
	var room models.ChallengeRoom
	err := r.db.Preload("Problem").
		Where("LOWER(room_id) = LOWER(?)", roomID).
		First(&room).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *challengeRoomRepository) BindCreator(roomID string, userID uint) (bool, error) {
	result := r.db.Model(&models.ChallengeRoom{}).
		Where("LOWER(room_id) = LOWER(?) AND creator = 0", roomID).
		Updates(map[string]interface{}{
			"creator": userID,
			"state":   models.RoomStateWaiting,
		})
	return result.RowsAffected > 0, result.Error
}

func (r *challengeRoomRepository) BindOpponent(roomID string, userID uint, startAt time.Time) (bool, error) {
	result := r.db.Model(&models.ChallengeRoom{}).
		Where("LOWER(room_id) = LOWER(?) AND opponent = 0 AND state = ?", roomID, models.RoomStateWaiting).
		Updates(map[string]interface{}{
			"opponent": userID,
			"state":    models.RoomStateRunning,
			"start_at": startAt,
		})
	return result.RowsAffected > 0, result.Error
}

func (r *challengeRoomRepository) FinishWithWinner(roomID string, winner uint) (bool, error) {
	result := r.db.Model(&models.ChallengeRoom{}).
		Where("LOWER(room_id) = LOWER(?) AND state = ?", roomID, models.RoomStateRunning).
		Updates(map[string]interface{}{
			"state":  models.RoomStateFinished,
			"winner": winner,
		})
	return result.RowsAffected > 0, result.Error
}

func (r *challengeRoomRepository) FinishAbandoned(roomID string) (bool, error) {
	result := r.db.Model(&models.ChallengeRoom{}).
		Where("LOWER(room_id) = LOWER(?) AND state = ?", roomID, models.RoomStateRunning).
		Update("state", models.RoomStateFinished)
	return result.RowsAffected > 0, result.Error
}

func (r *challengeRoomRepository) FinishResigned(roomID string, winner uint) (bool, error) {
	result := r.db.Model(&models.ChallengeRoom{}).
		Where("LOWER(room_id) = LOWER(?) AND state <> ?", roomID, models.RoomStateFinished).
		Updates(map[string]interface{}{
			"state":  models.RoomStateFinished,
			"winner": winner,
		})
	return result.RowsAffected > 0, result.Error
}
