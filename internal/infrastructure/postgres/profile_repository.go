package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/operaloja/operaloja-api/internal/domain"
	"github.com/operaloja/operaloja-api/internal/domain/entity"
	"github.com/operaloja/operaloja-api/internal/domain/permission"
	"github.com/operaloja/operaloja-api/internal/domain/repository"
)

var _ repository.ProfileRepository = (*ProfileRepo)(nil)

// ProfileRepo implementação do porto ProfileRepository sobre PostgreSQL.
// Permissions é persistido como JSONB e validado no parse (chaves desconhecidas caem).
type ProfileRepo struct {
	q Querier
}

// NewProfileRepository constrói o adaptador. Passar pool ou tx (Querier).
func NewProfileRepository(q Querier) *ProfileRepo {
	return &ProfileRepo{q: q}
}

const profileColumns = `id, handle, email, password_hash, name, role, is_admin, store_id, permissions, created_at, updated_at`

func scanProfile(row pgx.Row) (*entity.Profile, error) {
	var p entity.Profile
	var rawPerms []byte
	err := row.Scan(&p.ID, &p.Handle, &p.Email, &p.PasswordHash, &p.Name, &p.Role,
		&p.IsAdmin, &p.StoreID, &rawPerms, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Permissions = permission.ParseGrants(rawPerms)
	return &p, nil
}

func marshalGrants(grants map[entity.Module]entity.Grant) ([]byte, error) {
	raw := make(map[string]map[string]any, len(grants))
	for m, g := range grants {
		raw[string(m)] = map[string]any{"function": g.Function, "store_id": g.StoreID}
	}
	return json.Marshal(raw)
}

// Create persiste um novo perfil.
func (r *ProfileRepo) Create(ctx context.Context, p *entity.Profile) error {
	perms, err := marshalGrants(p.Permissions)
	if err != nil {
		return fmt.Errorf("marshal permissions: %w", err)
	}
	query := `
		INSERT INTO profiles (id, handle, email, password_hash, name, role, is_admin, store_id, permissions, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err = r.q.Exec(ctx, query,
		p.ID, p.Handle, p.Email, p.PasswordHash, p.Name, p.Role, p.IsAdmin, p.StoreID, perms, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

// GetByID busca um perfil por ID. Devolve nil, nil se não existir.
func (r *ProfileRepo) GetByID(ctx context.Context, id string) (*entity.Profile, error) {
	p, err := scanProfile(r.q.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

// GetByEmail busca um perfil pelo email (login / restauração de sessão).
func (r *ProfileRepo) GetByEmail(ctx context.Context, email string) (*entity.Profile, error) {
	p, err := scanProfile(r.q.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE lower(email) = lower($1)`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get profile by email: %w", err)
	}
	return p, nil
}

// GetByHandle busca um perfil pelo handle (resolução de colisão na criação de usuário).
func (r *ProfileRepo) GetByHandle(ctx context.Context, handle string) (*entity.Profile, error) {
	p, err := scanProfile(r.q.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE handle = $1`, handle))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get profile by handle: %w", err)
	}
	return p, nil
}

// ListByIDs busca perfis em lote (desnormalização das coleções).
func (r *ProfileRepo) ListByIDs(ctx context.Context, ids []string) ([]*entity.Profile, error) {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.q.Query(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("list profiles by ids: %w", err)
	}
	defer rows.Close()
	var list []*entity.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// List lista perfis com paginação (administração de usuários).
func (r *ProfileRepo) List(ctx context.Context, limit, offset int) ([]*entity.Profile, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+profileColumns+` FROM profiles ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()
	var list []*entity.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Update atualiza os campos mutáveis do perfil (não toca em permissions).
func (r *ProfileRepo) Update(ctx context.Context, p *entity.Profile) error {
	query := `
		UPDATE profiles SET name = $2, role = $3, is_admin = $4, store_id = $5, password_hash = $6, updated_at = $7
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, p.ID, p.Name, p.Role, p.IsAdmin, p.StoreID, p.PasswordHash, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

// ReplacePermissions troca o mapa de permissões inteiro.
func (r *ProfileRepo) ReplacePermissions(ctx context.Context, id string, grants map[entity.Module]entity.Grant) error {
	perms, err := marshalGrants(grants)
	if err != nil {
		return fmt.Errorf("marshal permissions: %w", err)
	}
	_, err = r.q.Exec(ctx, `UPDATE profiles SET permissions = $2, updated_at = now() WHERE id = $1`, id, perms)
	if err != nil {
		return fmt.Errorf("replace permissions: %w", err)
	}
	return nil
}

// Delete remove o perfil (operação privilegiada de administração).
func (r *ProfileRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	return nil
}
