// Package ssmengine implements the SSM Parameter Store thin store.
// SecureString parameters are encrypted with the same simulated,
// non-cryptographic scheme as kmsengine (spec.md §4.4): ciphertext is
// base64 of "<keyId>|<plaintext>".
package ssmengine

import (
	"encoding/base64"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

const defaultKeyID = "alias/aws/ssm"

type Parameter struct {
	Name      string
	Value     string
	Type      types.ParameterType
	KeyID     string
	Version   int64
	Modified  time.Time
	Tags      map[string]string
}

// Registry is the process-wide SSM parameter store.
type Registry struct {
	mu         sync.RWMutex
	parameters map[string]*Parameter
}

func NewRegistry() *Registry {
	return &Registry{parameters: make(map[string]*Parameter)}
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

func (r *Registry) PutParameter(now time.Time, name, value string, typ types.ParameterType, keyID string, overwrite bool) (*Parameter, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.parameters[name]
	if ok && !overwrite {
		return nil, false
	}
	stored := value
	if typ == types.ParameterTypeSecureString {
		if keyID == "" {
			keyID = defaultKeyID
		}
		stored = simulatedEncrypt(keyID, value)
	}
	version := int64(1)
	tags := make(map[string]string)
	if ok {
		version = existing.Version + 1
		tags = existing.Tags
	}
	p := &Parameter{Name: name, Value: stored, Type: typ, KeyID: keyID, Version: version, Modified: now, Tags: tags}
	r.parameters[name] = p
	return p, true
}

func (r *Registry) GetParameter(name string) (*Parameter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.parameters[name]
	return p, ok
}

func (r *Registry) DeleteParameter(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.parameters[name]; !ok {
		return false
	}
	delete(r.parameters, name)
	return true
}

func (r *Registry) DescribeParameters() []*Parameter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Parameter, 0, len(r.parameters))
	for _, p := range r.parameters {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *Registry) ParametersByPath(path string) []*Parameter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Parameter
	for _, p := range r.parameters {
		if strings.HasPrefix(p.Name, strings.TrimSuffix(path, "/")+"/") {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// DecryptedValue returns the plaintext value, decrypting SecureString
// parameters with the simulated scheme when withDecryption is true.
func (p *Parameter) DecryptedValue(withDecryption bool) string {
	if p.Type != types.ParameterTypeSecureString || !withDecryption {
		return p.Value
	}
	if plaintext, ok := simulatedDecrypt(p.Value); ok {
		return plaintext
	}
	return p.Value
}

func (p *Parameter) tagsSnapshot() map[string]string {
	out := make(map[string]string, len(p.Tags))
	for k, v := range p.Tags {
		out[k] = v
	}
	return out
}
