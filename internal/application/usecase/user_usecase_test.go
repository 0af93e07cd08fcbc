package usecase

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/operaloja/operaloja-api/internal/application/dto"
	"github.com/operaloja/operaloja-api/internal/domain"
	"github.com/operaloja/operaloja-api/internal/domain/entity"
	"github.com/operaloja/operaloja-api/pkg/logger"
)

type fakeProfileRepo struct {
	mu       sync.Mutex
	byID     map[string]*entity.Profile
	byEmail  map[string]*entity.Profile
	byHandle map[string]*entity.Profile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{
		byID:     make(map[string]*entity.Profile),
		byEmail:  make(map[string]*entity.Profile),
		byHandle: make(map[string]*entity.Profile),
	}
}

func (f *fakeProfileRepo) Create(ctx context.Context, p *entity.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	f.byID[p.ID] = &cp
	f.byEmail[p.Email] = &cp
	f.byHandle[p.Handle] = &cp
	return nil
}

func (f *fakeProfileRepo) GetByID(ctx context.Context, id string) (*entity.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[id], nil
}

func (f *fakeProfileRepo) GetByEmail(ctx context.Context, email string) (*entity.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byEmail[email], nil
}

func (f *fakeProfileRepo) GetByHandle(ctx context.Context, handle string) (*entity.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byHandle[handle], nil
}

func (f *fakeProfileRepo) ListByIDs(ctx context.Context, ids []string) ([]*entity.Profile, error) {
	return nil, nil
}

func (f *fakeProfileRepo) List(ctx context.Context, limit, offset int) ([]*entity.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*entity.Profile, 0, len(f.byID))
	for _, p := range f.byID {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeProfileRepo) Update(ctx context.Context, p *entity.Profile) error { return nil }

func (f *fakeProfileRepo) ReplacePermissions(ctx context.Context, id string, grants map[entity.Module]entity.Grant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.byID[id]; ok {
		p.Permissions = grants
	}
	return nil
}

func (f *fakeProfileRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.byID[id]; ok {
		delete(f.byEmail, p.Email)
		delete(f.byHandle, p.Handle)
		delete(f.byID, id)
	}
	return nil
}

type fakeStoreRepo struct{}

func (fakeStoreRepo) GetByID(ctx context.Context, id string) (*entity.Store, error) {
	return nil, nil
}

func (fakeStoreRepo) ListByIDs(ctx context.Context, ids []string) ([]*entity.Store, error) {
	return nil, nil
}

func (fakeStoreRepo) List(ctx context.Context) ([]*entity.Store, error) { return nil, nil }

func admin() *entity.Profile {
	return &entity.Profile{ID: "admin-1", Role: entity.RoleAdmin, IsAdmin: true}
}

func newUC(repo *fakeProfileRepo) *UserUseCase {
	return NewUserUseCase(repo, fakeStoreRepo{}, logger.Nop())
}

func TestCreateUser(t *testing.T) {
	repo := newFakeProfileRepo()
	uc := newUC(repo)

	resp, err := uc.CreateUser(context.Background(), admin(), dto.CreateUserRequest{
		Email: "Maria.Silva@operaloja.com.br",
		Name:  "Maria Silva",
		Role:  entity.RoleConferente,
		Permissions: map[string]dto.GrantRequest{
			"validade": {Function: "conferente"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "maria.silva", resp.User.Handle)
	assert.Equal(t, "maria.silva@operaloja.com.br", resp.User.Email)
	assert.False(t, resp.User.IsAdmin)
	require.NotEmpty(t, resp.TempPassword)

	stored, _ := repo.GetByHandle(context.Background(), "maria.silva")
	require.NotNil(t, stored)
	// a senha temporária confere com o hash persistido
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(resp.TempPassword)))
	assert.Contains(t, stored.Permissions, entity.ModuleValidade)
}

func TestCreateUser_ColisaoDeHandle(t *testing.T) {
	repo := newFakeProfileRepo()
	uc := newUC(repo)
	ctx := context.Background()

	for _, email := range []string{"joao@a.com", "joao@b.com", "joao@c.com"} {
		resp, err := uc.CreateUser(ctx, admin(), dto.CreateUserRequest{
			Email: email, Name: "João", Role: entity.RoleConferente,
		})
		require.NoError(t, err)
		_ = resp
	}

	assert.NotNil(t, repo.byHandle["joao"])
	assert.NotNil(t, repo.byHandle["joao2"])
	assert.NotNil(t, repo.byHandle["joao3"])
}

func TestCreateUser_EmailJaUsado(t *testing.T) {
	repo := newFakeProfileRepo()
	uc := newUC(repo)
	ctx := context.Background()

	_, err := uc.CreateUser(ctx, admin(), dto.CreateUserRequest{Email: "ana@a.com", Name: "Ana", Role: entity.RoleConferente})
	require.NoError(t, err)

	_, err = uc.CreateUser(ctx, admin(), dto.CreateUserRequest{Email: "ana@a.com", Name: "Ana", Role: entity.RoleConferente})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyInUse)
}

func TestCreateUser_SoAdmin(t *testing.T) {
	uc := newUC(newFakeProfileRepo())
	viewer := &entity.Profile{ID: "u1", Role: entity.RoleEncarregado}
	_, err := uc.CreateUser(context.Background(), viewer, dto.CreateUserRequest{Email: "x@a.com"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestReplacePermissions(t *testing.T) {
	repo := newFakeProfileRepo()
	uc := newUC(repo)
	ctx := context.Background()

	resp, err := uc.CreateUser(ctx, admin(), dto.CreateUserRequest{
		Email: "p@a.com", Name: "P", Role: entity.RoleConferente,
		Permissions: map[string]dto.GrantRequest{"validade": {Function: "conferente"}},
	})
	require.NoError(t, err)

	err = uc.ReplacePermissions(ctx, admin(), resp.User.ID, dto.ReplacePermissionsRequest{
		Permissions: map[string]dto.GrantRequest{"acougue": {Function: "encarregado"}},
	})
	require.NoError(t, err)

	stored, _ := repo.GetByID(ctx, resp.User.ID)
	// substituição total do mapa, nunca merge
	assert.Len(t, stored.Permissions, 1)
	assert.Contains(t, stored.Permissions, entity.ModuleAcougue)
}

func TestPermissions_ModuloDesconhecidoRejeitado(t *testing.T) {
	repo := newFakeProfileRepo()
	uc := newUC(repo)
	ctx := context.Background()

	// Na escrita o módulo é validado contra o conjunto fechado; sem isso o
	// parse de leitura descartaria a concessão em silêncio a cada carga.
	_, err := uc.CreateUser(ctx, admin(), dto.CreateUserRequest{
		Email: "t@a.com", Name: "T", Role: entity.RoleConferente,
		Permissions: map[string]dto.GrantRequest{"validadee": {Function: "conferente"}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	resp, err := uc.CreateUser(ctx, admin(), dto.CreateUserRequest{
		Email: "t@a.com", Name: "T", Role: entity.RoleConferente,
		Permissions: map[string]dto.GrantRequest{"validade": {Function: "conferente"}},
	})
	require.NoError(t, err)

	err = uc.ReplacePermissions(ctx, admin(), resp.User.ID, dto.ReplacePermissionsRequest{
		Permissions: map[string]dto.GrantRequest{"planogramaa": {Function: "encarregado"}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	stored, _ := repo.GetByID(ctx, resp.User.ID)
	assert.Contains(t, stored.Permissions, entity.ModuleValidade)
}

func TestDeleteUser(t *testing.T) {
	repo := newFakeProfileRepo()
	uc := newUC(repo)
	ctx := context.Background()

	resp, err := uc.CreateUser(ctx, admin(), dto.CreateUserRequest{Email: "d@a.com", Name: "D", Role: entity.RoleConferente})
	require.NoError(t, err)

	// admin não apaga a si mesmo
	caller := admin()
	require.NoError(t, repo.Create(ctx, caller))
	err = uc.DeleteUser(ctx, caller, caller.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)

	require.NoError(t, uc.DeleteUser(ctx, caller, resp.User.ID))
	gone, _ := repo.GetByID(ctx, resp.User.ID)
	assert.Nil(t, gone)

	err = uc.DeleteUser(ctx, caller, resp.User.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
