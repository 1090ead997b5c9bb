// Package sesengine implements a thin SES v2 store: verified identities
// and a send-email operation that records the message instead of
// delivering it, matching the emulator's no-external-egress rule.
package sesengine

import (
	"sort"
	"sync"
	"time"

	"awslite/internal/uuid"
)

type Identity struct {
	Name    string
	Type    string // EMAIL_ADDRESS or DOMAIN
	Verified bool
}

type SentEmail struct {
	MessageID   string
	FromAddress string
	To          []string
	Subject     string
	Body        string
	SentAt      time.Time
}

// Registry is the process-wide SES store.
type Registry struct {
	mu         sync.RWMutex
	identities map[string]*Identity
	sent       []*SentEmail
}

func NewRegistry() *Registry {
	return &Registry{identities: make(map[string]*Identity)}
}

func (r *Registry) CreateIdentity(name, identityType string) *Identity {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := &Identity{Name: name, Type: identityType, Verified: true}
	r.identities[name] = id
	return id
}

func (r *Registry) GetIdentity(name string) (*Identity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.identities[name]
	return id, ok
}

func (r *Registry) ListIdentities() []*Identity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Identity, 0, len(r.identities))
	for _, id := range r.identities {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *Registry) DeleteIdentity(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.identities[name]; !ok {
		return false
	}
	delete(r.identities, name)
	return true
}

func (r *Registry) SendEmail(now time.Time, from string, to []string, subject, body string) *SentEmail {
	msg := &SentEmail{
		MessageID:   uuid.V4().String(),
		FromAddress: from,
		To:          to,
		Subject:     subject,
		Body:        body,
		SentAt:      now,
	}
	r.mu.Lock()
	r.sent = append(r.sent, msg)
	r.mu.Unlock()
	return msg
}

func (r *Registry) SentEmails() []*SentEmail {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*SentEmail, len(r.sent))
	copy(out, r.sent)
	return out
}
