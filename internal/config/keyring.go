package config

import (
	"errors"
	"fmt"

	"github.com/99designs/keyring"
)

// ErrKeyNotFound はキーリングに API キーが保存されていないことを示します。
var ErrKeyNotFound = errors.New("api key not found in keyring")

// KeyStore は OS のキーリングに生成プロバイダの API キーを保存します。
type KeyStore struct {
	ring keyring.Keyring
}

// OpenKeyStore は OS 既定のキーリングを開きます。
func OpenKeyStore() (*KeyStore, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: AppName,
	})
	if err != nil {
		return nil, fmt.Errorf("キーリングを開けませんでした: %w", err)
	}
	return NewKeyStore(ring), nil
}

// NewKeyStore は任意の keyring.Keyring を使って KeyStore を作ります。
func NewKeyStore(ring keyring.Keyring) *KeyStore {
	return &KeyStore{ring: ring}
}

func (s *KeyStore) Get(provider string) (string, error) {
	if provider == "" {
		return "", errors.New("provider is required")
	}
	item, err := s.ring.Get(provider)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", ErrKeyNotFound
	}
	if err != nil {
		return "", err
	}
	return string(item.Data), nil
}

func (s *KeyStore) Set(provider, apiKey string) error {
	if provider == "" {
		return errors.New("provider is required")
	}
	if apiKey == "" {
		return errors.New("API key is empty")
	}
	return s.ring.Set(keyring.Item{
		Key:         provider,
		Data:        []byte(apiKey),
		Label:       provider + " API key",
		Description: "API key for " + provider + " used by " + AppName,
	})
}

func (s *KeyStore) Delete(provider string) error {
	if provider == "" {
		return errors.New("provider is required")
	}
	err := s.ring.Remove(provider)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return ErrKeyNotFound
	}
	return err
}

// ResolveAPIKey は環境変数を優先し、無ければキーリングから API キーを取得します。
// store が nil の場合は環境変数だけを見ます。
func (c *Config) ResolveAPIKey(store *KeyStore) (string, error) {
	if key := c.EnvAPIKey(); key != "" {
		return key, nil
	}
	name := c.ProviderKeyName()
	if store == nil {
		return "", fmt.Errorf("%s の API キーが設定されていません", name)
	}
	key, err := store.Get(name)
	if err != nil {
		return "", fmt.Errorf("%s の API キーが設定されていません: %w", name, err)
	}
	return key, nil
}
