// filestore предоставляет реализацию storage.CredentialStore поверх файловой
// системы. Каталог сессии принадлежит аккаунту целиком: криптографический
// материал протокольной библиотеки лежит в нём как непрозрачные файлы,
// наш снимок метаданных — в creds.json рядом.
//
// Гарантии:
//   - Ensure идемпотентна (os.MkdirAll) и не гонится при конкурентных вызовах;
//   - ApplyUpdate пишет полный снимок атомарно: tmp-файл + fsync + rename,
//     так что читатель никогда не видит частичную запись;
//   - обновления одного каталога сериализуются мьютексом в порядке прихода.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/pribylovaa/wa-pairing-service/internal/models"
	"github.com/pribylovaa/wa-pairing-service/internal/storage"
)

const snapshotFile = "creds.json"

// Store — файловый CredentialStore.
type Store struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex // по абсолютному пути каталога
}

func New() *Store {
	return &Store{locks: make(map[string]*sync.Mutex)}
}

// Проверка выполнения контракта верхнего уровня.
var _ storage.CredentialStore = (*Store)(nil)

// dirLock возвращает мьютекс каталога, создавая его при первом обращении.
func (s *Store) dirLock(dir string) *sync.Mutex {
	key := dir
	if abs, err := filepath.Abs(dir); err == nil {
		key = abs
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

// Ensure создает каталог сессии, если его нет.
func (s *Store) Ensure(_ context.Context, dir string) error {
	const op = "storage/filestore/Ensure"

	// MkdirAll атомарен в смысле "создай, если нет": повторный вызов и
	// конкурентное создание того же каталога не являются ошибкой.
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("%s: %w: %w", op, storage.ErrEnsureFailed, err)
	}

	return nil
}

// ApplyUpdate надёжно персистит полный снимок учётных данных.
func (s *Store) ApplyUpdate(ctx context.Context, dir string, snap models.CredentialSnapshot) error {
	const op = "storage/filestore/ApplyUpdate"

	l := s.dirLock(dir)
	l.Lock()
	defer l.Unlock()

	if err := s.Ensure(ctx, dir); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, storage.ErrPersistFailed, err)
	}

	if err := writeFileAtomic(filepath.Join(dir, snapshotFile), data); err != nil {
		return fmt.Errorf("%s: %w: %w", op, storage.ErrPersistFailed, err)
	}

	return nil
}

// Load возвращает сохранённый снимок или пустой, если файла ещё нет.
func (s *Store) Load(_ context.Context, dir string) (models.CredentialSnapshot, error) {
	const op = "storage/filestore/Load"

	l := s.dirLock(dir)
	l.Lock()
	defer l.Unlock()

	data, err := os.ReadFile(filepath.Join(dir, snapshotFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return models.CredentialSnapshot{}, nil
		}
		return models.CredentialSnapshot{}, fmt.Errorf("%s: %w", op, err)
	}

	var snap models.CredentialSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return models.CredentialSnapshot{}, fmt.Errorf("%s: %w", op, err)
	}

	return snap, nil
}

// writeFileAtomic пишет data во временный файл в том же каталоге, делает
// fsync и атомарно переименовывает поверх целевого пути.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	defer func() {
		// На успешном пути rename уже убрал tmp-файл; Remove тогда no-op.
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}

	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
