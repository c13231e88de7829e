package service

import (
	"challenge_web/internal/repository"
)

type Services struct {
	User             *UserService
	Challenge        *ChallengeService
	WebSocketManager *WebSocketManager
}

func NewServices(repos *repository.Repositories, challengeDurationSec int) *Services {
	wsManager := NewWebSocketManager()

	userService := NewUserService(repos.User)
	challengeService := NewChallengeService(repos.Room, repos.Problem, wsManager, challengeDurationSec)
	return &Services{
		User:             userService,
		Challenge:        challengeService,
		WebSocketManager: wsManager,
	}
}
