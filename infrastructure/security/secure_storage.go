package security

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"

	"alfreds-toolbox/domain/model"
	"alfreds-toolbox/domain/repository"
	"alfreds-toolbox/infrastructure/configuration"
	"alfreds-toolbox/infrastructure/logger"

	"golang.org/x/crypto/hkdf"
)

// OptionPrefix namespaces encrypted entries inside the option store.
const OptionPrefix = "vierless_encrypted_"

const (
	keySize  = 32
	saltSize = 32
	ivSize   = 12
	tagSize  = 16
)

var errKeysMissing = errors.New("security keys are not configured")

// envelope is the JSON document stored (base64 encoded) for every entry.
type envelope struct {
	Salt string `json:"salt"`
	IV   string `json:"iv"`
	Tag  string `json:"tag"`
	Data string `json:"data"`
}

type SecureStorage struct {
	options repository.IOptionStore
	baseKey []byte
	random  io.Reader
}

// NewSecureStorage derives the base key from the host secrets. Without
// LoggedInKey and LoggedInSalt the storage fails closed.
func NewSecureStorage(options repository.IOptionStore, secrets configuration.Security) repository.ISecureStore {
	return newSecureStorage(options, secrets, rand.Reader)
}

func newSecureStorage(options repository.IOptionStore, secrets configuration.Security, random io.Reader) *SecureStorage {
	s := &SecureStorage{options: options, random: random}
	if secrets.LoggedInKey == "" || secrets.LoggedInSalt == "" {
		return s
	}
	material := secrets.LoggedInKey + secrets.LoggedInSalt
	if secrets.NonceKey != "" && secrets.NonceSalt != "" {
		material += secrets.NonceKey + secrets.NonceSalt
	}
	key, err := deriveKey([]byte(material), nil, "alfreds-toolbox/base")
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Deriving storage key failed")
		return s
	}
	s.baseKey = key
	return s
}

func deriveKey(secret, salt []byte, info string) ([]byte, error) {
	key := make([]byte, keySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, salt, []byte(info)), key); err != nil {
		return nil, err
	}
	return key, nil
}

func (s *SecureStorage) Store(ctx context.Context, key string, value interface{}) bool {
	if key == "" {
		return false
	}
	blob, err := s.seal(value)
	if err != nil {
		logger.GetLogger().WithField("key", key).WithField("error", err).Error("Encryption failed")
		return false
	}
	if err := s.options.UpdateOption(ctx, OptionPrefix+key, blob); err != nil {
		logger.GetLogger().WithField("key", key).WithField("error", err).Error("Storing encrypted option failed")
		return false
	}
	return true
}

func (s *SecureStorage) Get(ctx context.Context, key string, out interface{}) bool {
	stored, found, err := s.options.GetOption(ctx, OptionPrefix+key)
	if err != nil {
		logger.GetLogger().WithField("key", key).WithField("error", err).Error("Reading encrypted option failed")
		return false
	}
	if !found || stored == "" {
		return false
	}
	plain, err := s.open(stored)
	if err != nil {
		logger.GetLogger().WithField("key", key).WithField("error", err).Error("Decryption failed")
		return false
	}
	target := reflect.ValueOf(out)
	if target.Kind() != reflect.Pointer || target.IsNil() {
		logger.GetLogger().WithField("key", key).Error("Decoding target must be a non-nil pointer")
		return false
	}
	// out stays untouched unless the whole payload decodes.
	decoded := reflect.New(target.Elem().Type())
	if err := json.Unmarshal(plain, decoded.Interface()); err != nil {
		logger.GetLogger().WithField("key", key).WithField("error", err).Error("Decoding decrypted value failed")
		return false
	}
	target.Elem().Set(decoded.Elem())
	return true
}

func (s *SecureStorage) Delete(ctx context.Context, key string) bool {
	existed, err := s.options.DeleteOption(ctx, OptionPrefix+key)
	if err != nil {
		logger.GetLogger().WithField("key", key).WithField("error", err).Error("Deleting encrypted option failed")
		return false
	}
	return existed
}

func (s *SecureStorage) Has(ctx context.Context, key string) bool {
	_, found, err := s.options.GetOption(ctx, OptionPrefix+key)
	return err == nil && found
}

func (s *SecureStorage) seal(value interface{}) (string, error) {
	if s.baseKey == nil {
		return "", errKeysMissing
	}
	plain, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	salt := make([]byte, saltSize)
	iv := make([]byte, ivSize)
	if _, err := io.ReadFull(s.random, salt); err != nil {
		return "", err
	}
	if _, err := io.ReadFull(s.random, iv); err != nil {
		return "", err
	}
	gcm, err := s.cipherFor(salt)
	if err != nil {
		return "", err
	}
	sealed := gcm.Seal(nil, iv, plain, nil)
	data, tag := sealed[:len(sealed)-tagSize], sealed[len(sealed)-tagSize:]

	doc, err := json.Marshal(envelope{
		Salt: base64.StdEncoding.EncodeToString(salt),
		IV:   base64.StdEncoding.EncodeToString(iv),
		Tag:  base64.StdEncoding.EncodeToString(tag),
		Data: base64.StdEncoding.EncodeToString(data),
	})
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(doc), nil
}

func (s *SecureStorage) open(stored string) ([]byte, error) {
	if s.baseKey == nil {
		return nil, errKeysMissing
	}
	doc, err := base64.StdEncoding.DecodeString(stored)
	if err != nil {
		return nil, fmt.Errorf("%w: stored data is corrupt", model.ErrDecryption)
	}
	var env envelope
	if err := json.Unmarshal(doc, &env); err != nil {
		return nil, fmt.Errorf("%w: stored data is corrupt", model.ErrDecryption)
	}
	if env.Salt == "" || env.IV == "" || env.Tag == "" || env.Data == "" {
		return nil, fmt.Errorf("%w: stored data is incomplete", model.ErrDecryption)
	}
	salt, err1 := base64.StdEncoding.DecodeString(env.Salt)
	iv, err2 := base64.StdEncoding.DecodeString(env.IV)
	tag, err3 := base64.StdEncoding.DecodeString(env.Tag)
	data, err4 := base64.StdEncoding.DecodeString(env.Data)
	if err := errors.Join(err1, err2, err3, err4); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrDecryption, err)
	}
	if len(iv) != ivSize || len(tag) != tagSize {
		return nil, fmt.Errorf("%w: bad nonce or tag length", model.ErrDecryption)
	}
	gcm, err := s.cipherFor(salt)
	if err != nil {
		return nil, err
	}
	plain, err := gcm.Open(nil, iv, append(data, tag...), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrDecryption, err)
	}
	return plain, nil
}

func (s *SecureStorage) cipherFor(salt []byte) (cipher.AEAD, error) {
	entryKey, err := deriveKey(s.baseKey, salt, "alfreds-toolbox/entry")
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(entryKey)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
