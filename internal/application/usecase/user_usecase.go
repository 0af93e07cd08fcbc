// Package usecase concentra os casos de uso administrativos e de referência.
package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/operaloja/operaloja-api/internal/application/dto"
	"github.com/operaloja/operaloja-api/internal/domain"
	"github.com/operaloja/operaloja-api/internal/domain/entity"
	"github.com/operaloja/operaloja-api/internal/domain/permission"
	"github.com/operaloja/operaloja-api/internal/domain/repository"
	"github.com/operaloja/operaloja-api/pkg/logger"
)

// maxHandleAttempts limita a resolução de colisão de handle por sufixo numérico.
const maxHandleAttempts = 50

// UserUseCase operações administrativas sobre usuários. Toda operação exige
// chamador admin; o middleware HTTP espelha a checagem, mas a regra mora aqui.
type UserUseCase struct {
	profiles repository.ProfileRepository
	stores   repository.StoreRepository
	log      *logger.Logger
}

// NewUserUseCase constrói o caso de uso administrativo.
func NewUserUseCase(profiles repository.ProfileRepository, stores repository.StoreRepository, log *logger.Logger) *UserUseCase {
	return &UserUseCase{profiles: profiles, stores: stores, log: log}
}

// CreateUser cria um usuário com handle derivado do email e senha temporária.
// A senha em texto só aparece nesta resposta.
func (uc *UserUseCase) CreateUser(ctx context.Context, caller *entity.Profile, in dto.CreateUserRequest) (*dto.CreateUserResponse, error) {
	if caller == nil || !caller.IsAdmin {
		return nil, domain.ErrForbidden
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.profiles.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyInUse
	}

	grants, err := grantsFromRequest(in.Permissions)
	if err != nil {
		return nil, err
	}

	handle, err := uc.resolveHandle(ctx, email)
	if err != nil {
		return nil, err
	}

	tempPassword, err := generateTempPassword()
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	profile := &entity.Profile{
		ID:           uuid.New().String(),
		Handle:       handle,
		Email:        email,
		PasswordHash: string(hash),
		Name:         in.Name,
		Role:         in.Role,
		IsAdmin:      in.Role == entity.RoleAdmin,
		StoreID:      in.StoreID,
		Permissions:  grants,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.profiles.Create(ctx, profile); err != nil {
		return nil, err
	}
	uc.log.Info().Str("user_id", profile.ID).Str("handle", handle).Msg("usuário criado")

	resp, err := uc.toProfileResponse(ctx, profile)
	if err != nil {
		return nil, err
	}
	return &dto.CreateUserResponse{User: *resp, TempPassword: tempPassword}, nil
}

// resolveHandle deriva o handle da parte local do email e resolve colisão
// com sufixo numérico crescente, até o limite de tentativas.
func (uc *UserUseCase) resolveHandle(ctx context.Context, email string) (string, error) {
	base := sanitizeHandle(strings.SplitN(email, "@", 2)[0])
	if base == "" {
		return "", domain.ErrInvalidInput
	}
	candidate := base
	for i := 2; i <= maxHandleAttempts; i++ {
		taken, err := uc.profiles.GetByHandle(ctx, candidate)
		if err != nil {
			return "", err
		}
		if taken == nil {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, i)
	}
	return "", fmt.Errorf("gerar handle para %s: %w", email, domain.ErrConflict)
}

func sanitizeHandle(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '.' || r == '_' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func generateTempPassword() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// grantsFromRequest valida as chaves contra o conjunto fechado de módulos.
// Módulo desconhecido é erro: se entrasse, o parse de leitura descartaria a
// concessão em silêncio a cada carga.
func grantsFromRequest(in map[string]dto.GrantRequest) (map[entity.Module]entity.Grant, error) {
	out := make(map[entity.Module]entity.Grant, len(in))
	for module, g := range in {
		m := entity.Module(strings.ToLower(strings.TrimSpace(module)))
		if !permission.KnownModule(m) {
			return nil, fmt.Errorf("módulo desconhecido %q: %w", module, domain.ErrInvalidInput)
		}
		out[m] = entity.Grant{
			Function: g.Function,
			StoreID:  g.StoreID,
		}
	}
	return out, nil
}

// ListUsers lista perfis paginados.
func (uc *UserUseCase) ListUsers(ctx context.Context, caller *entity.Profile, page dto.PageRequest) ([]dto.ProfileResponse, error) {
	if caller == nil || !caller.IsAdmin {
		return nil, domain.ErrForbidden
	}
	page.DefaultPage()
	profiles, err := uc.profiles.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProfileResponse, 0, len(profiles))
	for _, p := range profiles {
		resp, err := uc.toProfileResponse(ctx, p)
		if err != nil {
			return nil, err
		}
		out = append(out, *resp)
	}
	return out, nil
}

// GetUser devolve um perfil por ID.
func (uc *UserUseCase) GetUser(ctx context.Context, caller *entity.Profile, id string) (*dto.ProfileResponse, error) {
	if caller == nil || !caller.IsAdmin {
		return nil, domain.ErrForbidden
	}
	p, err := uc.profiles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrUserNotFound
	}
	return uc.toProfileResponse(ctx, p)
}

// ReplacePermissions troca o mapa de permissões inteiro do usuário.
func (uc *UserUseCase) ReplacePermissions(ctx context.Context, caller *entity.Profile, userID string, in dto.ReplacePermissionsRequest) error {
	if caller == nil || !caller.IsAdmin {
		return domain.ErrForbidden
	}
	p, err := uc.profiles.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if p == nil {
		return domain.ErrUserNotFound
	}
	grants, err := grantsFromRequest(in.Permissions)
	if err != nil {
		return err
	}
	return uc.profiles.ReplacePermissions(ctx, userID, grants)
}

// DeleteUser remove o usuário. Admin não apaga a si mesmo.
func (uc *UserUseCase) DeleteUser(ctx context.Context, caller *entity.Profile, userID string) error {
	if caller == nil || !caller.IsAdmin {
		return domain.ErrForbidden
	}
	if caller.ID == userID {
		return domain.ErrConflict
	}
	p, err := uc.profiles.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if p == nil {
		return domain.ErrUserNotFound
	}
	uc.log.Info().Str("user_id", userID).Str("by", caller.ID).Msg("usuário removido")
	return uc.profiles.Delete(ctx, userID)
}

func (uc *UserUseCase) toProfileResponse(ctx context.Context, p *entity.Profile) (*dto.ProfileResponse, error) {
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
