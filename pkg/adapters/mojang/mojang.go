// Package mojang implements AuthenticationAdapter against Mojang's
// session service.
package mojang

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/golang/groupcache/lru"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"github.com/scrayosnet/passage/pkg/adapters"
	"github.com/scrayosnet/passage/pkg/crypto"
	"github.com/scrayosnet/passage/pkg/profile"
)

// DefaultSessionServerURL is Mojang's published session service endpoint.
const DefaultSessionServerURL = "https://sessionserver.mojang.com/session/minecraft/hasJoined"

// DefaultCacheSize bounds the successful-lookup cache so a flood of
// distinct usernames can't grow it unbounded.
const DefaultCacheSize = 4096

// Adapter authenticates a tentative identity by issuing the Minecraft
// server-id hash to Mojang's session service.
type Adapter struct {
	client           *fasthttp.Client
	sessionServerURL string
	timeout          time.Duration

	cacheMu sync.Mutex
	cache   *lru.Cache
}

// New returns a Mojang authentication adapter backed by its own fasthttp
// client and a bounded LRU of recent successful lookups.
func New(sessionServerURL string, timeout time.Duration) *Adapter {
	if sessionServerURL == "" {
		sessionServerURL = DefaultSessionServerURL
	}
	return &Adapter{
		client:           &fasthttp.Client{},
		sessionServerURL: sessionServerURL,
		timeout:          timeout,
		cache:            lru.New(DefaultCacheSize),
	}
}

type hasJoinedResponse struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	Properties     []profile.Property `json:"properties"`
	ProfileActions []string           `json:"profileActions"`
}

// Authenticate computes the Minecraft server-id hash over the (always
// empty) server id, the decrypted shared secret, and the DER-encoded
// public key, then issues the hasJoined request. Any non-2xx response is
// a failure.
func (a *Adapter) Authenticate(ctx context.Context, ep adapters.Endpoint, tentative adapters.Identity, sharedSecret, publicKeyDER []byte) (profile.Profile, error) {
	hash := crypto.ServerIDHash("", sharedSecret, publicKeyDER)
	cacheKey := tentative.Name + ":" + hash

	if cached, ok := a.cacheGet(cacheKey); ok {
		return cached, nil
	}

	query := url.Values{}
	query.Set("username", tentative.Name)
	query.Set("serverId", hash)

	uri := a.sessionServerURL + "?" + query.Encode()

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(uri)
	req.Header.SetMethod(fasthttp.MethodGet)

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = a.client.DoDeadline(req, resp, deadline)
	} else if a.timeout > 0 {
		err = a.client.DoTimeout(req, resp, a.timeout)
	} else {
		err = a.client.Do(req, resp)
	}
	if err != nil {
		return profile.Profile{}, fmt.Errorf("mojang: hasJoined request: %w", err)
	}

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return profile.Profile{}, fmt.Errorf("mojang: hasJoined returned status %d", resp.StatusCode())
	}

	var parsed hasJoinedResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return profile.Profile{}, fmt.Errorf("mojang: decode hasJoined response: %w", err)
	}

	id, err := parseUUID(parsed.ID)
	if err != nil {
		return profile.Profile{}, fmt.Errorf("mojang: parse profile id: %w", err)
	}

	resolved := profile.Profile{
		ID:             id,
		Name:           parsed.Name,
		Properties:     parsed.Properties,
		ProfileActions: parsed.ProfileActions,
	}
	a.cacheSet(cacheKey, resolved)
	return resolved, nil
}

func (a *Adapter) cacheGet(key string) (profile.Profile, bool) {
	a.cacheMu.Lock()
	defer a.cacheMu.Unlock()
	v, ok := a.cache.Get(key)
	if !ok {
		return profile.Profile{}, false
	}
	return v.(profile.Profile), true
}

func (a *Adapter) cacheSet(key string, p profile.Profile) {
	a.cacheMu.Lock()
	defer a.cacheMu.Unlock()
	a.cache.Add(key, p)
}

// parseUUID accepts both the dashed and Mojang's dashless profile id form.
func parseUUID(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}

var _ adapters.AuthenticationAdapter = (*Adapter)(nil)
