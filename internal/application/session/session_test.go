package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/operaloja/operaloja-api/internal/application/session"
	"github.com/operaloja/operaloja-api/internal/domain"
	"github.com/operaloja/operaloja-api/internal/domain/entity"
	"github.com/operaloja/operaloja-api/pkg/logger"
)

// fakeLookup resolve perfis de um mapa em memória, com bloqueio opcional
// para simular resoluções concorrentes.
type fakeLookup struct {
	mu       sync.Mutex
	profiles map[string]*entity.Profile
	err      error
	gate     chan struct{} // se não nil, GetByEmail espera o canal fechar
}

func (f *fakeLookup) GetByEmail(ctx context.Context, email string) (*entity.Profile, error) {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.profiles[email], nil
}

func newProvider(lookup *fakeLookup) (*session.Provider, *session.MemoryIdentifierStore) {
	ids := &session.MemoryIdentifierStore{}
	return session.NewProvider(lookup, ids, logger.Nop()), ids
}

func TestProvider_EstadoInicialLoading(t *testing.T) {
	p, _ := newProvider(&fakeLookup{})
	assert.Equal(t, session.StateLoading, p.Current().State)
}

func TestLogin_Sucesso(t *testing.T) {
	lookup := &fakeLookup{profiles: map[string]*entity.Profile{
		"ana@loja.com": {ID: "U1", Email: "ana@loja.com"},
	}}
	p, ids := newProvider(lookup)

	profile, err := p.Login(context.Background(), "ana@loja.com")
	require.NoError(t, err)
	assert.Equal(t, "U1", profile.ID)

	snap := p.Current()
	assert.Equal(t, session.StateAuthenticated, snap.State)
	assert.Equal(t, "U1", snap.Profile.ID)

	saved, _ := ids.Load()
	assert.Equal(t, "ana@loja.com", saved, "login deve persistir o identificador")
}

func TestLogin_NaoEncontrado_PropagaErroELimpaIdentificador(t *testing.T) {
	p, ids := newProvider(&fakeLookup{})
	require.NoError(t, ids.Save("fantasma@loja.com"))

	_, err := p.Login(context.Background(), "fantasma@loja.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.Equal(t, session.StateAnonymous, p.Current().State)

	saved, _ := ids.Load()
	assert.Empty(t, saved, "falha de login deve limpar o identificador persistido")
}

func TestLogin_ErroDeLookup_Propaga(t *testing.T) {
	boom := errors.New("backend indisponível")
	p, _ := newProvider(&fakeLookup{err: boom})

	_, err := p.Login(context.Background(), "ana@loja.com")
	assert.ErrorIs(t, err, boom, "erro interativo nunca é engolido")
	assert.Equal(t, session.StateAnonymous, p.Current().State)
}

func TestRestore_SilenciosaEngoleFalha(t *testing.T) {
	p, ids := newProvider(&fakeLookup{err: errors.New("rede caiu")})
	require.NoError(t, ids.Save("ana@loja.com"))

	p.Restore(context.Background()) // não deve entrar em pânico nem propagar
	assert.Equal(t, session.StateAnonymous, p.Current().State)
}

func TestRestore_SemIdentificador_Anonymous(t *testing.T) {
	p, _ := newProvider(&fakeLookup{})
	p.Restore(context.Background())
	assert.Equal(t, session.StateAnonymous, p.Current().State)
}

func TestRestore_Sucesso(t *testing.T) {
	lookup := &fakeLookup{profiles: map[string]*entity.Profile{
		"ana@loja.com": {ID: "U1", Email: "ana@loja.com"},
	}}
	p, ids := newProvider(lookup)
	require.NoError(t, ids.Save("ana@loja.com"))

	p.Restore(context.Background())
	snap := p.Current()
	assert.Equal(t, session.StateAuthenticated, snap.State)
	assert.Equal(t, "U1", snap.Profile.ID)
}

// Dois logins em voo: o primeiro resolve por último e deve ser descartado,
// nunca sobrescrevendo o resultado do mais novo.
func TestLogin_ResolucaoObsoletaNaoSobrescreve(t *testing.T) {
	gate := make(chan struct{})
	slow := &fakeLookup{
		profiles: map[string]*entity.Profile{"antiga@loja.com": {ID: "OLD"}},
		gate:     gate,
	}
	p, _ := newProvider(slow)

	done := make(chan error, 1)
	go func() {
		_, err := p.Login(context.Background(), "antiga@loja.com")
		done <- err
	}()
	// Dar tempo do primeiro login registrar sua tentativa antes do segundo.
	time.Sleep(20 * time.Millisecond)

	// Segundo login dispara e resolve primeiro (destrava o gate só depois
	// de registrado). fakeLookup segura ambos no mesmo gate, então o
	// segundo também espera; liberamos os dois e o mais novo vence.
	fast := make(chan error, 1)
	go func() {
		time.Sleep(20 * time.Millisecond)
		_, err := p.Login(context.Background(), "antiga@loja.com")
		fast <- err
	}()
	time.Sleep(40 * time.Millisecond)
	close(gate)

	errSlow := <-done
	errFast := <-fast

	// Exatamente um dos dois venceu; o outro foi substituído.
	if errors.Is(errSlow, session.ErrSuperseded) {
		require.NoError(t, errFast)
	} else {
		require.NoError(t, errSlow)
		assert.ErrorIs(t, errFast, session.ErrSuperseded)
	}
	assert.Equal(t, session.StateAuthenticated, p.Current().State)
	assert.Equal(t, "OLD", p.Current().Profile.ID)
}

func TestLogout_SincronoELimpaTudo(t *testing.T) {
	lookup := &fakeLookup{profiles: map[string]*entity.Profile{
		"ana@loja.com": {ID: "U1"},
	}}
	p, ids := newProvider(lookup)
	_, err := p.Login(context.Background(), "ana@loja.com")
	require.NoError(t, err)

	p.Logout()

	snap := p.Current()
	assert.Equal(t, session.StateAnonymous, snap.State)
	assert.Nil(t, snap.Profile)
	saved, _ := ids.Load()
	assert.Empty(t, saved)
}

func TestFileIdentifierStore_CicloCompleto(t *testing.T) {
	path := t.TempDir() + "/sessao"
	s := session.NewFileIdentifierStore(path)

	// Ausente não é erro.
	v, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, s.Save("ana@loja.com"))
	v, err = s.Load()
	require.NoError(t, err)
	assert.Equal(t, "ana@loja.com", v)

	require.NoError(t, s.Clear())
	require.NoError(t, s.Clear(), "clear duplo não deve falhar")
	v, _ = s.Load()
	assert.Empty(t, v)
}
