package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	vault "github.com/hashicorp/vault/api"
)

// Secret is a reference to a secret value, e.g. "env:XCALL_SURI" or "vault:https://vault,secret/data/keys/suri".
type Secret string

type SecretType string

var Env SecretType = "env"
var Vault SecretType = "vault"
var Raw SecretType = "raw"
var File SecretType = "file"

var errInvalidSecret = errors.New("invalid secret source for: ***")

func (s Secret) Load() (string, error) {
	return GetSecret(string(s))
}

func (s Secret) LoadOrBlank() string {
	deref, _ := GetSecret(string(s))
	return deref
}

// LoadOrVerbatim dereferences the secret when it has a type prefix, otherwise returns it unchanged.
// Secret uris such as "//Alice" are used as given.
func (s Secret) LoadOrVerbatim() (string, error) {
	if !HasTypePrefix(string(s)) {
		return string(s), nil
	}
	return s.Load()
}

func NewRawSecret(secret string) Secret {
	return Secret(fmt.Sprintf("%s:%s", Raw, secret))
}

func HasTypePrefix(secretRef string) bool {
	kind, _, ok := strings.Cut(secretRef, ":")
	if !ok {
		return false
	}
	switch SecretType(kind) {
	case Env, Vault, Raw, File:
		return true
	}
	return false
}

// GetSecret dereferences "<type>:<location>". Loaded values are trimmed, raw ones are not.
func GetSecret(ref string) (string, error) {
	kind, location, ok := strings.Cut(ref, ":")
	if !ok {
		return "", errInvalidSecret
	}
	switch SecretType(kind) {
	case Raw:
		return location, nil
	case Env:
		return strings.TrimSpace(os.Getenv(location)), nil
	case File:
		return readSecretFile(location)
	case Vault:
		return readVaultSecret(location)
	}
	return "", errInvalidSecret
}

func readSecretFile(path string) (string, error) {
	if strings.HasPrefix(path, "~") && len(path) > 1 {
		path = os.Getenv("HOME") + path[1:]
	}
	bz, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(bz)), nil
}

type VaultLoader interface {
	LoadSecretData(path string) (*vault.Secret, error)
}

type DefaultVaultLoader struct {
	*vault.Client
}

var _ VaultLoader = &DefaultVaultLoader{}

func (v *DefaultVaultLoader) LoadSecretData(path string) (*vault.Secret, error) {
	secret, err := v.Logical().Read(path)
	// a missing path reads as a nil secret
	if err != nil || secret == nil {
		return &vault.Secret{}, err
	}
	return secret, nil
}

func newVaultClient(cfg *vault.Config) (VaultLoader, error) {
	cli, err := vault.NewClient(cfg)
	if err != nil {
		return &DefaultVaultLoader{}, err
	}
	return &DefaultVaultLoader{Client: cli}, nil
}

// replaced in tests
var NewVaultClient = newVaultClient

// readVaultSecret reads "<url>,<path>/<key>" from a kv v2 engine. VAULT_TOKEN is taken from the environment.
func readVaultSecret(location string) (string, error) {
	args := strings.Split(location, ",")
	if len(args) != 2 {
		return "", errors.New("vault secret has 2 comma separated arguments (url,path)")
	}
	address, fullPath := args[0], args[1]
	idx := strings.LastIndex(fullPath, "/")
	if idx <= 0 || idx == len(fullPath)-1 {
		return "", errors.New("malformed vault secret, expected <path>/<key>")
	}
	path, key := fullPath[:idx], fullPath[idx+1:]

	client, err := NewVaultClient(&vault.Config{Address: address})
	if err != nil {
		return "", err
	}
	secret, err := client.LoadSecretData(path)
	if err != nil {
		return "", err
	}
	data, _ := secret.Data["data"].(map[string]any)
	value, _ := data[key].(string)
	return strings.TrimSpace(value), nil
}
