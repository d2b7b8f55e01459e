// Package header provides the identity headers attached to every request.
package header

import (
	"fmt"
	"net/http"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/nyris/nyris-go/internal/version"
)

// Header names.
const (
	APIKey       = "X-Api-Key"
	LegacyAPIKey = "apikey"
	UserAgent    = "User-Agent"
	ClientID     = "X-Nyris-ClientID"
)

// Identity is the authentication and client identity shared by all calls of
// one client. Safe for concurrent use.
type Identity struct {
	apiKey   atomic.Pointer[string]
	clientID string

	uaOnce sync.Once
	ua     string
}

// NewIdentity creates an identity for apiKey. clientID may be empty.
func NewIdentity(apiKey, clientID string) *Identity {
	id := &Identity{clientID: clientID}
	id.apiKey.Store(&apiKey)
	return id
}

// APIKey returns the current api key.
func (id *Identity) APIKey() string {
	return *id.apiKey.Load()
}

// SetAPIKey replaces the api key. Calls built afterwards use the new key.
func (id *Identity) SetAPIKey(key string) {
	id.apiKey.Store(&key)
}

// ClientID returns the configured client id.
func (id *Identity) ClientID() string { return id.clientID }

// UserAgent returns "{sdk}/{version} ({commit} Go {goversion} {os}/{arch})",
// computed on first use.
func (id *Identity) UserAgent() string {
	id.uaOnce.Do(func() {
		id.ua = fmt.Sprintf("%s/%s (%s Go %s %s/%s)",
			version.SDKID, version.Version, version.Commit,
			runtime.Version(), runtime.GOOS, runtime.GOARCH)
	})
	return id.ua
}

// Apply sets the identity headers on h.
func (id *Identity) Apply(h http.Header) {
	key := id.APIKey()
	h.Set(APIKey, key)
	h.Set(LegacyAPIKey, key)
	h.Set(UserAgent, id.UserAgent())
	if id.clientID != "" {
		h.Set(ClientID, id.clientID)
	}
}
