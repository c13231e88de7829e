package repository

import (
	"challenge_web/internal/models"
	"challenge_web/internal/storage"
)

type ProblemRepository interface {
	Create(problem *models.Problem) error
	FindByID(id uint) (*models.Problem, error)
	// PickRandom 從題庫中隨機抽取一題，供創建房間時使用
	PickRandom() (*models.Problem, error)
}

type problemRepository struct {
	db *storage.PostgresDB
}

func NewProblemRepository(db *storage.PostgresDB) ProblemRepository {
	return &problemRepository{db: db}
}

func (r *problemRepository) Create(problem *models.Problem) error {
	return r.db.Create(problem).Error
}

func (r *problemRepository) FindByID(id uint) (*models.Problem, error) {
	var problem models.Problem
	err := r.db.First(&problem, id).Error
	if err != nil {
		return nil, err
	}
	return &problem, nil
}

func (r *problemRepository) PickRandom() (*models.Problem, error) {
	var problem models.Problem
	err := r.db.Order("RANDOM()").First(&problem).Error
	if err != nil {
		return nil, err
	}
	return &problem, nil
}
