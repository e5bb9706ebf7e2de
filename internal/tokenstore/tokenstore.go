// Пакет tokenstore — долговременное хранение учётных данных сессии
// (access/refresh токены) между запусками консоли.
// Оба токена сохраняются и удаляются только вместе.
// Файловое хранилище опционально шифруется AES-256-GCM.
package tokenstore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// ErrEmptyCredentials — попытка сохранить учётные данные без access token.
var ErrEmptyCredentials = errors.New("учётные данные без access token не сохраняются")

// Credentials — пара токенов сессии.
type Credentials struct {
	AccessToken  string `json:"access_token"`  //nolint:gosec // G117: структура токена
	RefreshToken string `json:"refresh_token"` //nolint:gosec // G117: структура токена
}

// IsZero — учётные данные отсутствуют.
func (c Credentials) IsZero() bool {
	return c.AccessToken == "" && c.RefreshToken == ""
}

// Store — хранилище учётных данных.
type Store interface {
	// Load возвращает сохранённые учётные данные; пустые, если их нет.
	Load() (Credentials, error)
	// Save сохраняет оба токена целиком.
	Save(Credentials) error
	// Clear удаляет оба токена.
	Clear() error
}

// FileStore — хранилище в файле. Запись атомарная (temp + rename), права 0600.
type FileStore struct {
	path string
	// gcm — AEAD cipher; nil — файл хранится без шифрования.
	gcm cipher.AEAD
	mu  sync.Mutex
}

// NewFileStore создаёт файловое хранилище.
// secret — ключ шифрования: base64 от 32 байт или произвольная строка
// (хешируется SHA-256). Пустой secret — без шифрования.
func NewFileStore(path, secret string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("не задан путь файла токенов")
	}

	fsStore := &FileStore{path: path}
	if secret == "" {
		return fsStore, nil
	}

	keyBytes, err := base64.StdEncoding.DecodeString(secret)
	if err != nil || len(keyBytes) != 32 {
		// Не base64 — хешируем строку до 32 bytes через SHA-256
		h := sha256.Sum256([]byte(secret))
		keyBytes = h[:]
	}

	block, err := aes.NewCipher(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания AES cipher: %w", err)
	}
	fsStore.gcm, err = cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания GCM: %w", err)
	}

	return fsStore, nil
}

// Encrypted — включено ли шифрование файла.
func (s *FileStore) Encrypted() bool {
	return s.gcm != nil
}

// Path возвращает путь файла токенов.
func (s *FileStore) Path() string {
	return s.path
}

// Load читает учётные данные из файла.
// Отсутствующий файл — не ошибка, возвращаются пустые учётные данные.
func (s *FileStore) Load() (Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Credentials{}, nil
		}
		return Credentials{}, fmt.Errorf("чтение файла токенов: %w", err)
	}

	if s.gcm != nil {
		data, err = s.decrypt(data)
		if err != nil {
			return Credentials{}, err
		}
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return Credentials{}, fmt.Errorf("десериализация файла токенов: %w", err)
	}
	return creds, nil
}

// Save атомарно записывает учётные данные в файл.
func (s *FileStore) Save(creds Credentials) error {
	if creds.AccessToken == "" {
		return ErrEmptyCredentials
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("сериализация токенов: %w", err)
	}
	if s.gcm != nil {
		data, err = s.encrypt(data)
		if err != nil {
			return err
		}
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("создание каталога токенов: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("создание временного файла: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // после rename файла уже нет

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("установка прав файла токенов: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("запись файла токенов: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("закрытие файла токенов: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("замена файла токенов: %w", err)
	}
	return nil
}

// Clear удаляет файл токенов. Отсутствующий файл — не ошибка.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("удаление файла токенов: %w", err)
	}
	return nil
}

// encrypt шифрует данные; nonce добавляется перед ciphertext, результат в base64.
func (s *FileStore) encrypt(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, s.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("ошибка генерации nonce: %w", err)
	}
	sealed := s.gcm.Seal(nonce, nonce, plaintext, nil)

	out := make([]byte, base64.URLEncoding.EncodedLen(len(sealed)))
	base64.URLEncoding.Encode(out, sealed)
	return out, nil
}

// decrypt — обратная операция к encrypt.
func (s *FileStore) decrypt(encoded []byte) ([]byte, error) {
	ciphertext := make([]byte, base64.URLEncoding.DecodedLen(len(encoded)))
	n, err := base64.URLEncoding.Decode(ciphertext, encoded)
	if err != nil {
		return nil, fmt.Errorf("ошибка декодирования base64: %w", err)
	}
	ciphertext = ciphertext[:n]

	nonceSize := s.gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, errors.New("зашифрованные данные слишком короткие")
	}

	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := s.gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка дешифрования файла токенов: %w", err)
	}
	return plaintext, nil
}

// MemoryStore — хранилище в памяти (для тестов и одноразовых запусков).
type MemoryStore struct {
	mu    sync.Mutex
	creds Credentials
}

// NewMemoryStore создаёт хранилище в памяти с начальными учётными данными.
func NewMemoryStore(initial Credentials) *MemoryStore {
	return &MemoryStore{creds: initial}
}

// Load возвращает текущие учётные данные.
func (m *MemoryStore) Load() (Credentials, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.creds, nil
}

// Save заменяет учётные данные.
func (m *MemoryStore) Save(creds Credentials) error {
	if creds.AccessToken == "" {
		return ErrEmptyCredentials
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds = creds
	return nil
}

// Clear удаляет оба токена.
func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds = Credentials{}
	return nil
}
