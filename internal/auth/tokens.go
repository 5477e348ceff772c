// Package auth persists OAuth2 credentials for external providers in the
// state directory. Tokens are written with the same atomic-replace
// discipline as the settings document and are readable only by the owner.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/oauth2"

	"capa/internal/fileutil"
	"capa/internal/paths"
)

const credentialsFileName = "auth.json"

// ErrNoCredentials indicates no credentials are stored for the provider.
var ErrNoCredentials = errors.New("no stored credentials")

// Metadata describes the account a token belongs to.
type Metadata struct {
	Provider  string    `json:"provider"`
	AccountID string    `json:"account_id,omitempty"`
	Scopes    []string  `json:"scopes,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Credentials pairs an OAuth2 token with its account metadata.
type Credentials struct {
	Token    oauth2.Token `json:"token"`
	Metadata Metadata     `json:"metadata"`
}

// CredentialsPath returns the location of the credentials file.
func CredentialsPath() (string, error) {
	dir, err := paths.StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, credentialsFileName), nil
}

// Save persists credentials for their provider, replacing any stored
// entry for the same provider and leaving others untouched.
func Save(creds Credentials) error {
	if creds.Metadata.Provider == "" {
		return errors.New("provider is required")
	}
	if _, err := paths.EnsureStateDir(); err != nil {
		return err
	}
	path, err := CredentialsPath()
	if err != nil {
		return err
	}

	all, err := readAll(path)
	if err != nil {
		return err
	}
	creds.Metadata.UpdatedAt = time.Now().UTC()
	all[creds.Metadata.Provider] = creds

	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}
	data = append(data, '\n')

	// Tokens are secrets; never world readable.
	if err := fileutil.WriteFileAtomic(path, data, 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}

// Load returns the stored credentials for a provider.
func Load(provider string) (*Credentials, error) {
	if _, err := paths.EnsureStateDir(); err != nil {
		return nil, err
	}
	path, err := CredentialsPath()
	if err != nil {
		return nil, err
	}
	all, err := readAll(path)
	if err != nil {
		return nil, err
	}
	creds, ok := all[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoCredentials, provider)
	}
	return &creds, nil
}

// List returns all stored credentials ordered by provider name.
func List() ([]Credentials, error) {
	if _, err := paths.EnsureStateDir(); err != nil {
		return nil, err
	}
	path, err := CredentialsPath()
	if err != nil {
		return nil, err
	}
	all, err := readAll(path)
	if err != nil {
		return nil, err
	}
	list := make([]Credentials, 0, len(all))
	for _, creds := range all {
		list = append(list, creds)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Metadata.Provider < list[j].Metadata.Provider
	})
	return list, nil
}

// Delete removes stored credentials for a provider. Deleting an absent
// provider is a no-op.
func Delete(provider string) error {
	if _, err := paths.EnsureStateDir(); err != nil {
		return err
	}
	path, err := CredentialsPath()
	if err != nil {
		return err
	}
	all, err := readAll(path)
	if err != nil {
		return err
	}
	if _, ok := all[provider]; !ok {
		return nil
	}
	delete(all, provider)

	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}
	data = append(data, '\n')
	if err := fileutil.WriteFileAtomic(path, data, 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}

func readAll(path string) (map[string]Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]Credentials{}, nil
		}
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	all := map[string]Credentials{}
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	return all, nil
}
