package tokenstore

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestFileStore_RoundTrip проверяет сохранение и чтение без шифрования.
func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store, err := NewFileStore(path, "")
	if err != nil {
		t.Fatalf("Ошибка создания FileStore: %v", err)
	}

	creds := Credentials{AccessToken: "access-1", RefreshToken: "refresh-1"}
	if err := store.Save(creds); err != nil {
		t.Fatalf("Save: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("файл токенов не создан: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("права файла = %o, ожидалось 600", perm)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != creds {
		t.Errorf("Load() = %+v, ожидалось %+v", got, creds)
	}
}

// TestFileStore_Encrypted проверяет, что токены не хранятся открытым текстом.
func TestFileStore_Encrypted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store, err := NewFileStore(path, "my-secret-key-for-testing")
	if err != nil {
		t.Fatalf("Ошибка создания FileStore: %v", err)
	}
	if !store.Encrypted() {
		t.Fatal("ожидалось шифрование при заданном секрете")
	}

	creds := Credentials{AccessToken: "plain-access", RefreshToken: "plain-refresh"}
	if err := store.Save(creds); err != nil {
		t.Fatalf("Save: %v", err)
	}

	raw, _ := os.ReadFile(path)
	if strings.Contains(string(raw), "plain-access") {
		t.Error("access token найден в файле открытым текстом")
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != creds {
		t.Errorf("Load() = %+v, ожидалось %+v", got, creds)
	}

	// Другой ключ не расшифрует файл
	other, _ := NewFileStore(path, "another-key")
	if _, err := other.Load(); err == nil {
		t.Error("ожидалась ошибка дешифрования с чужим ключом")
	}
}

// TestFileStore_MissingAndClear проверяет чтение отсутствующего файла и очистку.
func TestFileStore_MissingAndClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store, _ := NewFileStore(path, "")

	creds, err := store.Load()
	if err != nil {
		t.Fatalf("Load отсутствующего файла: %v", err)
	}
	if !creds.IsZero() {
		t.Errorf("ожидались пустые учётные данные, получено %+v", creds)
	}

	if err := store.Save(Credentials{AccessToken: "a", RefreshToken: "r"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("повторный Clear: %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("файл токенов должен быть удалён, stat: %v", err)
	}
}

// TestSave_RequiresAccessToken проверяет запрет сохранения без access token.
func TestSave_RequiresAccessToken(t *testing.T) {
	stores := []Store{
		NewMemoryStore(Credentials{}),
	}
	fileStore, _ := NewFileStore(filepath.Join(t.TempDir(), "s.json"), "")
	stores = append(stores, fileStore)

	for _, s := range stores {
		if err := s.Save(Credentials{RefreshToken: "r"}); !errors.Is(err, ErrEmptyCredentials) {
			t.Errorf("%T: ожидалась ErrEmptyCredentials, получено %v", s, err)
		}
	}
}

// TestMemoryStore проверяет хранилище в памяти.
func TestMemoryStore(t *testing.T) {
	m := NewMemoryStore(Credentials{AccessToken: "a", RefreshToken: "r"})
	if err := m.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	got, _ := m.Load()
	if !got.IsZero() {
		t.Errorf("после Clear ожидались пустые учётные данные, получено %+v", got)
	}
}

func TestNewFileStore_EmptyPath(t *testing.T) {
	if _, err := NewFileStore("", ""); err == nil {
		t.Error("ожидалась ошибка для пустого пути")
	}
}
