package auth

import "mission-dispatch/internal/jwt"

type Service interface {
	GenerateToken(subject, role string) (string, error)
}

type authService struct {
	jwt *jwt.Service
}

func NewAuthService(jwt *jwt.Service) Service {
	return &authService{jwt: jwt}
}

func (s *authService) GenerateToken(subject, role string) (string, error) {
	return s.jwt.GenerateToken(subject, role)
}
