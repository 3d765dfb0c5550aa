package auth

import (
	"fmt"
	"sync"

	"github.com/ruleforge/ruleforge/pkg/config"
)

// KeyInfo describes one accepted API key and the rule owner it acts as.
type KeyInfo struct {
	Key      string
	Owner    string
	Disabled bool
}

// APIKeyValidator validates API keys against a configured set of keys.
type APIKeyValidator struct {
	mu   sync.RWMutex
	keys map[string]*KeyInfo
}

// NewAPIKeyValidator creates a validator holding the given keys.
func NewAPIKeyValidator(keys []*KeyInfo) *APIKeyValidator {
	keyMap := make(map[string]*KeyInfo, len(keys))
	for _, key := range keys {
		keyMap[key.Key] = key
	}
	return &APIKeyValidator{keys: keyMap}
}

// NewAPIKeyValidatorFromConfig builds a validator from the auth
// configuration section.
func NewAPIKeyValidatorFromConfig(cfg config.AuthConfig) *APIKeyValidator {
	keys := make([]*KeyInfo, 0, len(cfg.Keys))
	for _, k := range cfg.Keys {
		keys = append(keys, &KeyInfo{
			Key:      k.Key,
			Owner:    k.Owner,
			Disabled: k.Disabled,
		})
	}
	return NewAPIKeyValidator(keys)
}

// Validate checks the given API key and returns its info.
func (v *APIKeyValidator) Validate(key string) (*KeyInfo, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	info, ok := v.keys[key]
	if !ok {
		return nil, fmt.Errorf("invalid API key")
	}
	if info.Disabled {
		return nil, fmt.Errorf("API key disabled")
	}
	return info, nil
}

// Add adds a key to the validator.
func (v *APIKeyValidator) Add(info *KeyInfo) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.keys[info.Key] = info
}

// Remove removes a key from the validator.
func (v *APIKeyValidator) Remove(key string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.keys, key)
}
