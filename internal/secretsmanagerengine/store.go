// Package secretsmanagerengine implements the Secrets Manager thin store.
// Secret values are encrypted with the same simulated, non-cryptographic
// scheme as kmsengine and ssmengine (spec.md §4.4): ciphertext is base64
// of "<keyId>|<plaintext>".
package secretsmanagerengine

import (
	"encoding/base64"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const defaultKeyID = "alias/aws/secretsmanager"

type SecretVersion struct {
	VersionID    string
	Ciphertext   string
	Stages       map[string]bool
	CreatedDate  time.Time
}

type Secret struct {
	mu sync.Mutex

	Name            string
	ARN             string
	Description     string
	KMSKeyID        string
	Tags            map[string]string
	Created         time.Time
	Deleted         bool
	DeletionDate    time.Time
	Versions        map[string]*SecretVersion
	currentVersion  string
}

func (s *Secret) versionsSorted() []*SecretVersion {
	out := make([]*SecretVersion, 0, len(s.Versions))
	for _, v := range s.Versions {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedDate.Before(out[j].CreatedDate) })
	return out
}

// Registry is the process-wide Secrets Manager store.
type Registry struct {
	mu      sync.RWMutex
	region  string
	account string
	secrets map[string]*Secret
}

func NewRegistry(region, account string) *Registry {
	return &Registry{region: region, account: account, secrets: make(map[string]*Secret)}
}

func simulatedEncrypt(keyID, plaintext string) string {
	if keyID == "" {
		keyID = defaultKeyID
	}
	return base64.StdEncoding.EncodeToString([]byte(keyID + "|" + plaintext))
}

func simulatedDecrypt(ciphertext string) (string, bool) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", false
	}
	parts := strings.SplitN(string(raw), "|", 2)
	if len(parts) != 2 {
		return "", false
	}
	return parts[1], true
}

func (r *Registry) CreateSecret(now time.Time, name, description, keyID, value string, tags map[string]string) (*Secret, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.secrets[name]; ok && !existing.Deleted {
		return nil, false
	}
	versionID := uuid.New().String()
	secret := &Secret{
		Name:        name,
		ARN:         fmt.Sprintf("arn:aws:secretsmanager:%s:%s:secret:%s-%s", r.region, r.account, name, uuid.New().String()[:6]),
		Description: description,
		KMSKeyID:    keyID,
		Tags:        tags,
		Created:     now,
		Versions: map[string]*SecretVersion{
			versionID: {
				VersionID:   versionID,
				Ciphertext:  simulatedEncrypt(keyID, value),
				Stages:      map[string]bool{"AWSCURRENT": true},
				CreatedDate: now,
			},
		},
		currentVersion: versionID,
	}
	if secret.Tags == nil {
		secret.Tags = make(map[string]string)
	}
	r.secrets[name] = secret
	return secret, true
}

func (r *Registry) GetSecret(name string) (*Secret, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.secrets[name]
	if !ok || s.Deleted {
		return nil, false
	}
	return s, true
}

func (r *Registry) ListSecrets() []*Secret {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Secret, 0, len(r.secrets))
	for _, s := range r.secrets {
		if !s.Deleted {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *Registry) PutSecretValue(now time.Time, name, value, keyID string) (*Secret, *SecretVersion, bool) {
	r.mu.RLock()
	s, ok := r.secrets[name]
	r.mu.RUnlock()
	if !ok || s.Deleted {
		return nil, nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if keyID == "" {
		keyID = s.KMSKeyID
	}
	if prev, ok := s.Versions[s.currentVersion]; ok {
		delete(prev.Stages, "AWSCURRENT")
		prev.Stages["AWSPREVIOUS"] = true
	}
	versionID := uuid.New().String()
	v := &SecretVersion{
		VersionID:   versionID,
		Ciphertext:  simulatedEncrypt(keyID, value),
		Stages:      map[string]bool{"AWSCURRENT": true},
		CreatedDate: now,
	}
	s.Versions[versionID] = v
	s.currentVersion = versionID
	return s, v, true
}

func (r *Registry) UpdateSecret(name, description, keyID string) (*Secret, bool) {
	r.mu.RLock()
	s, ok := r.secrets[name]
	r.mu.RUnlock()
	if !ok || s.Deleted {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if description != "" {
		s.Description = description
	}
	if keyID != "" {
		s.KMSKeyID = keyID
	}
	return s, true
}

func (r *Registry) DeleteSecret(now time.Time, name string) (*Secret, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.secrets[name]
	if !ok || s.Deleted {
		return nil, false
	}
	s.Deleted = true
	s.DeletionDate = now
	return s, true
}

func (r *Registry) RestoreSecret(name string) (*Secret, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.secrets[name]
	if !ok || !s.Deleted {
		return nil, false
	}
	s.Deleted = false
	s.DeletionDate = time.Time{}
	return s, true
}

func (s *Secret) CurrentVersion() (*SecretVersion, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.Versions[s.currentVersion]
	return v, ok
}

func (s *Secret) Version(versionID, versionStage string) (*SecretVersion, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if versionID != "" {
		v, ok := s.Versions[versionID]
		return v, ok
	}
	if versionStage != "" {
		for _, v := range s.Versions {
			if v.Stages[versionStage] {
				return v, true
			}
		}
		return nil, false
	}
	v, ok := s.Versions[s.currentVersion]
	return v, ok
}

func (s *Secret) tagsSnapshot() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.Tags))
	for k, v := range s.Tags {
		out[k] = v
	}
	return out
}

func (s *Secret) AddTags(tags map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range tags {
		s.Tags[k] = v
	}
}

func (s *Secret) RemoveTags(keys []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.Tags, k)
	}
}
