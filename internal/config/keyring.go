/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"strings"

	"github.com/zalando/go-keyring"
)

// KeyringService is the service name under which secrets are stored.
const KeyringService = "venueplan"

// Secret names.
const (
	SecretServerToken = "server_token"
	SecretDBPassword  = "db_password"
	SecretRedisPass   = "redis_password"
	SecretAuthSecret  = "auth_secret"
)

// ErrNoSecret is returned when the keychain holds no value for a name.
var ErrNoSecret = errors.New("secret not found")

// SecretStore abstracts the OS keychain.
type SecretStore interface {
	Get(service, user string) (string, error)
	Set(service, user, password string) error
	Delete(service, user string) error
}

type osKeyring struct{}

func (osKeyring) Get(service, user string) (string, error) { return keyring.Get(service, user) }
func (osKeyring) Set(service, user, password string) error {
	return keyring.Set(service, user, password)
}
func (osKeyring) Delete(service, user string) error { return keyring.Delete(service, user) }

var secrets SecretStore = osKeyring{}

// SetSecretStore replaces the keychain backend and returns the previous one.
func SetSecretStore(s SecretStore) SecretStore {
	prev := secrets
	secrets = s
	return prev
}

// GetSecret reads a named secret from the keychain.
func GetSecret(name string) (string, error) {
	v, err := secrets.Get(KeyringService, name)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNoSecret
		}
		return "", err
	}
	return strings.TrimSpace(v), nil
}

// SetSecret stores a named secret. An empty value deletes it.
func SetSecret(name, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		err := secrets.Delete(KeyringService, name)
		if errors.Is(err, keyring.ErrNotFound) {
			return nil
		}
		return err
	}
	return secrets.Set(KeyringService, name, value)
}
