package vault

import (
	"fmt"

	"github.com/hashicorp/vault/api"
)

// SecretManager resolves the platform credentials from Vault so they
// never have to live in the config file of a deployed syncer.
type SecretManager struct {
	client *api.Client
}

func NewSecretManager(address, token string) (*SecretManager, error) {
	config := api.DefaultConfig()
	config.Address = address

	client, err := api.NewClient(config)
	if err != nil {
		return nil, err
	}

	client.SetToken(token)

	return &SecretManager{client: client}, nil
}

// PlatformCredentials holds the four values of the credential exchange.
type PlatformCredentials struct {
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
}

// GetPlatformCredentials reads the fleet platform credentials from
// secret/data/fleet-platform.
func (sm *SecretManager) GetPlatformCredentials() (*PlatformCredentials, error) {
	secret, err := sm.client.Logical().Read("secret/data/fleet-platform")
	if err != nil {
		return nil, err
	}
	if secret == nil || secret.Data["data"] == nil {
		return nil, fmt.Errorf("fleet-platform secret not found")
	}

	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected fleet-platform secret shape")
	}

	creds := &PlatformCredentials{}
	fields := map[string]*string{
		"client_id":     &creds.ClientID,
		"client_secret": &creds.ClientSecret,
		"username":      &creds.Username,
		"password":      &creds.Password,
	}
	for key, dst := range fields {
		v, ok := data[key].(string)
		if !ok || v == "" {
			return nil, fmt.Errorf("fleet-platform secret missing %s", key)
		}
		*dst = v
	}

	return creds, nil
}
