package repository

import "challenge_web/internal/storage"

type Repositories struct {
	User    UserRepository
	Room    ChallengeRoomRepository
	Problem ProblemRepository
}

func NewRepositories(db *storage.PostgresDB) *Repositories {
	return &Repositories{
		User:    NewUserRepository(db),
		Room:    NewChallengeRoomRepository(db),
		Problem: NewProblemRepository(db),
	}
}
