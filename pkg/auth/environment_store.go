package auth

import (
	"os"
	"strings"
	"time"
)

// TokenEnvVar holds the bearer token when credentials come from the environment
const TokenEnvVar = "HASHCLIP_BEARER_TOKEN"

// EnvironmentStore is a read-only CredentialStore over TokenEnvVar
type EnvironmentStore struct{}

func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(cred *Credential) error {
	return ErrStoreUnavailable
}

// Retrieve returns the environment token under the requested profile name
func (e *EnvironmentStore) Retrieve(profile string) (*Credential, error) {
	token := strings.TrimSpace(os.Getenv(TokenEnvVar))
	if token == "" {
		return nil, ErrCredentialsNotFound
	}

	return &Credential{
		Profile:      profileName(profile),
		BearerToken:  token,
		LastModified: time.Now(),
	}, nil
}

func (e *EnvironmentStore) List() ([]*Credential, error) {
	cred, err := e.Retrieve("")
	if err != nil {
		return []*Credential{}, nil
	}
	return []*Credential{cred}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(profile string) error {
	return ErrStoreUnavailable
}

func (e *EnvironmentStore) Exists(profile string) bool {
	return strings.TrimSpace(os.Getenv(TokenEnvVar)) != ""
}
