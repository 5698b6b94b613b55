package keystore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"github.com/snehendu098/ghost/pkg/wallet"
)

// Store is a persistent keystore backend.
type Store interface {
	Put(ctx context.Context, address, secret string) error
	// Get returns ErrNotFound for unknown addresses.
	Get(ctx context.Context, address string) (string, error)
	// Delete returns ErrNotFound for unknown addresses.
	Delete(ctx context.Context, address string) error
	List(ctx context.Context) ([]string, error)
}

// LoadWallet rebuilds the identity stored under address in s.
func LoadWallet(ctx context.Context, s Store, address string) (*wallet.Wallet, error) {
	secret, err := s.Get(ctx, address)
	if err != nil {
		return nil, err
	}
	return wallet.FromBase64PrivateKey(secret)
}

// PutWallet stores w under its address.
func PutWallet(ctx context.Context, s Store, w *wallet.Wallet) error {
	return s.Put(ctx, w.Address(), w.ExportBase64PrivateKey())
}

var _ Store = (*FileStore)(nil)

// FileStore is a Store over a keystore file. Every write rewrites the file.
// Its mutex only serializes callers sharing this FileStore value.
type FileStore struct {
	path string
	mu   sync.Mutex
	ks   *Keystore
}

// OpenFileStore loads path, or starts empty when the file does not exist yet.
func OpenFileStore(path string) (*FileStore, error) {
	ks, err := Load(path)
	if err != nil {
		if !isNotExist(err) {
			return nil, err
		}
		ks = New()
	}
	return &FileStore{path: path, ks: ks}, nil
}

func (s *FileStore) Put(_ context.Context, address, secret string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ks.Add(address, secret)
	return s.ks.Save(s.path)
}

func (s *FileStore) Get(_ context.Context, address string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	secret, ok := s.ks.Get(address)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, address)
	}
	return secret, nil
}

func (s *FileStore) Delete(_ context.Context, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ks.Remove(address); !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, address)
	}
	return s.ks.Save(s.path)
}

func (s *FileStore) List(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ks.List(), nil
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
