// Package kmsengine implements the KMS thin store. Crypto is simulated
// per spec.md §4.4: Encrypt returns base64 of "<keyId>|<plaintext>";
// Decrypt parses it back out. Non-cryptographic, for emulation only.
package kmsengine

import (
	"encoding/base64"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"awslite/internal/uuid"
)

type Key struct {
	mu          sync.Mutex
	KeyID       string
	ARN         string
	Description string
	Enabled     bool
	Created     time.Time
	PendingDeletion bool
	RotationEnabled bool
	Policy      string
	Tags        map[string]string
	Aliases     map[string]bool
}

func newKey(now time.Time, region, account, description string) *Key {
	id := uuid.V4().String()
	return &Key{
		KeyID:       id,
		ARN:         fmt.Sprintf("arn:aws:kms:%s:%s:key/%s", region, account, id),
		Description: description,
		Enabled:     true,
		Created:     now,
		Policy:      "{}",
		Tags:        make(map[string]string),
		Aliases:     make(map[string]bool),
	}
}

func (k *Key) tagsSnapshot() map[string]string {
	k.mu.Lock()
	defer k.mu.Unlock()
	out := make(map[string]string, len(k.Tags))
	for key, v := range k.Tags {
		out[key] = v
	}
	return out
}

// Registry is the process-wide KMS key store.
type Registry struct {
	mu      sync.RWMutex
	region  string
	account string
	keys    map[string]*Key
	aliases map[string]string
}

func NewRegistry(region, account string) *Registry {
	return &Registry{region: region, account: account, keys: make(map[string]*Key), aliases: make(map[string]string)}
}

func (r *Registry) CreateKey(now time.Time, description string) *Key {
	k := newKey(now, r.region, r.account, description)
	r.mu.Lock()
	r.keys[k.KeyID] = k
	r.mu.Unlock()
	return k
}

// resolveKeyID accepts a bare key id, a key ARN, or an alias name/ARN.
func (r *Registry) resolveKeyID(idOrAlias string) string {
	if idx := strings.Index(idOrAlias, ":alias/"); idx >= 0 {
		idOrAlias = idOrAlias[idx+1:]
	}
	if strings.HasPrefix(idOrAlias, "alias/") {
		r.mu.RLock()
		defer r.mu.RUnlock()
		return r.aliases[idOrAlias]
	}
	if idx := strings.LastIndex(idOrAlias, "/"); idx >= 0 {
		return idOrAlias[idx+1:]
	}
	return idOrAlias
}

func (r *Registry) GetKey(idOrAlias string) (*Key, bool) {
	keyID := r.resolveKeyID(idOrAlias)
	r.mu.RLock()
	defer r.mu.RUnlock()
	k, ok := r.keys[keyID]
	return k, ok
}

func (r *Registry) ListKeys() []*Key {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Key, 0, len(r.keys))
	for _, k := range r.keys {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].KeyID < out[j].KeyID })
	return out
}

func (r *Registry) CreateAlias(aliasName, keyID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.aliases[aliasName]; ok {
		return false
	}
	r.aliases[aliasName] = keyID
	return true
}

func (r *Registry) DeleteAlias(aliasName string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.aliases[aliasName]; !ok {
		return false
	}
	delete(r.aliases, aliasName)
	return true
}

func (r *Registry) ListAliases() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.aliases))
	for name := range r.aliases {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func simulatedEncrypt(keyID string, plaintext []byte) string {
	return base64.StdEncoding.EncodeToString([]byte(keyID + "|" + string(plaintext)))
}

func simulatedDecrypt(ciphertext string) (keyID string, plaintext []byte, ok bool) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", nil, false
	}
	parts := strings.SplitN(string(raw), "|", 2)
	if len(parts) != 2 {
		return "", nil, false
	}
	return parts[0], []byte(parts[1]), true
}
