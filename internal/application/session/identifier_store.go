package session

import (
	"errors"
	"os"
	"strings"
	"sync"
)

// FileIdentifierStore persiste o identificador em um arquivo local.
type FileIdentifierStore struct {
	path string
}

// NewFileIdentifierStore constrói o store apontando para o arquivo configurado.
func NewFileIdentifierStore(path string) *FileIdentifierStore {
	return &FileIdentifierStore{path: path}
}

// Load lê o identificador. Arquivo ausente não é erro: devolve vazio.
func (s *FileIdentifierStore) Load() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// Save grava o identificador, substituindo o anterior.
func (s *FileIdentifierStore) Save(identifier string) error {
	return os.WriteFile(s.path, []byte(identifier+"\n"), 0o600)
}

// Clear remove o arquivo. Ausência não é erro.
func (s *FileIdentifierStore) Clear() error {
	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// MemoryIdentifierStore guarda o identificador em memória (testes e embutidos).
type MemoryIdentifierStore struct {
	mu    sync.Mutex
	value string
}

func (s *MemoryIdentifierStore) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, nil
}

func (s *MemoryIdentifierStore) Save(identifier string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = identifier
	return nil
}

func (s *MemoryIdentifierStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = ""
	return nil
}
