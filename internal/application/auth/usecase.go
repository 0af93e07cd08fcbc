// Package auth implementa autenticação por email+senha com emissão de JWT.
package auth

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/operaloja/operaloja-api/internal/application/dto"
	"github.com/operaloja/operaloja-api/internal/domain"
	"github.com/operaloja/operaloja-api/internal/domain/entity"
	"github.com/operaloja/operaloja-api/internal/domain/permission"
	"github.com/operaloja/operaloja-api/internal/domain/repository"
	"github.com/operaloja/operaloja-api/pkg/jwt"
)

// JWTConfig configuração para geração de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// UseCase casos de uso de autenticação: login e troca de senha.
type UseCase struct {
	profiles repository.ProfileRepository
	stores   repository.StoreRepository
	jwtCfg   JWTConfig
}

// NewUseCase constrói o caso de uso de auth.
func NewUseCase(profiles repository.ProfileRepository, stores repository.StoreRepository, jwtCfg JWTConfig) *UseCase {
	return &UseCase{profiles: profiles, stores: stores, jwtCfg: jwtCfg}
}

// Login verifica email/senha, gera o JWT e devolve token + perfil.
func (uc *UseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	profile, err := uc.profiles.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, domain.ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, profile.ID, profile.Role, profile.StoreID, profile.IsAdmin, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	resp, err := uc.toProfileResponse(ctx, profile)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{Token: token, User: *resp}, nil
}

// Me devolve o perfil do usuário autenticado com os rótulos de exibição.
func (uc *UseCase) Me(ctx context.Context, userID string) (*dto.ProfileResponse, error) {
	profile, err := uc.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, domain.ErrUserNotFound
	}
	return uc.toProfileResponse(ctx, profile)
}

// ChangePassword troca a senha do próprio usuário após conferir a atual.
func (uc *UseCase) ChangePassword(ctx context.Context, userID string, in dto.ChangePasswordRequest) error {
	profile, err := uc.profiles.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if profile == nil {
		return domain.ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(in.CurrentPassword)); err != nil {
		return domain.ErrUnauthorized
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	profile.PasswordHash = string(hash)
	return uc.profiles.Update(ctx, profile)
}

func (uc *UseCase) toProfileResponse(ctx context.Context, p *entity.Profile) (*dto.ProfileResponse, error) {
	stores := map[string]entity.Store{}
	if p.StoreID != nil {
		s, err := uc.stores.GetByID(ctx, *p.StoreID)
		if err != nil {
			return nil, err
		}
		if s != nil {
			stores[s.ID] = *s
		}
	}
	return dto.NewProfileResponse(p, permission.FunctionsLabel(p), permission.StoreLabel(p, stores)), nil
}
