// Package cognitoengine implements a representative subset of the
// Cognito Identity Provider thin store: user pool and user pool client
// CRUD, plus admin user lifecycle and a password-based auth flow that
// checks the user's stored password.
// Token issuance is a fixed-format opaque string, not a real JWT.
package cognitoengine

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"awslite/internal/uuid"
)

type UserPool struct {
	mu   sync.Mutex
	ID   string
	ARN  string
	Name string

	Created time.Time
	clients map[string]*UserPoolClient
	users   map[string]*User
}

type UserPoolClient struct {
	ID         string
	PoolID     string
	Name       string
	SecretHash string
}

type User struct {
	Username    string
	Attributes  map[string]string
	Status      string // UNCONFIRMED, CONFIRMED, FORCE_CHANGE_PASSWORD
	Enabled     bool
	Password    string
	Created     time.Time
	LastModified time.Time
}

// Registry is the process-wide Cognito store.
type Registry struct {
	mu      sync.RWMutex
	region  string
	account string
	pools   map[string]*UserPool
}

func NewRegistry(region, account string) *Registry {
	return &Registry{region: region, account: account, pools: make(map[string]*UserPool)}
}

func (r *Registry) CreateUserPool(now time.Time, name string) *UserPool {
	id := fmt.Sprintf("%s_%s", strings.ToUpper(r.region[:2]), uuid.V4().String()[:8])
	pool := &UserPool{
		ID:      id,
		ARN:     fmt.Sprintf("arn:aws:cognito-idp:%s:%s:userpool/%s", r.region, r.account, id),
		Name:    name,
		Created: now,
		clients: make(map[string]*UserPoolClient),
		users:   make(map[string]*User),
	}
	r.mu.Lock()
	r.pools[id] = pool
	r.mu.Unlock()
	return pool
}

func (r *Registry) GetUserPool(id string) (*UserPool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.pools[id]
	return p, ok
}

func (r *Registry) ListUserPools() []*UserPool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*UserPool, 0, len(r.pools))
	for _, p := range r.pools {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *Registry) DeleteUserPool(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.pools[id]; !ok {
		return false
	}
	delete(r.pools, id)
	return true
}

func (p *UserPool) CreateClient(name string) *UserPoolClient {
	p.mu.Lock()
	defer p.mu.Unlock()
	client := &UserPoolClient{
		ID:         uuid.V4().String(),
		PoolID:     p.ID,
		Name:       name,
		SecretHash: uuid.V4().String(),
	}
	p.clients[client.ID] = client
	return client
}

func (p *UserPool) GetClient(id string) (*UserPoolClient, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.clients[id]
	return c, ok
}

func (p *UserPool) ListClients() []*UserPoolClient {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*UserPoolClient, 0, len(p.clients))
	for _, c := range p.clients {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (p *UserPool) DeleteClient(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.clients[id]; !ok {
		return false
	}
	delete(p.clients, id)
	return true
}

func (p *UserPool) CreateUser(now time.Time, username string, attrs map[string]string, temporaryPassword string) (*User, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.users[username]; ok {
		return nil, false
	}
	u := &User{
		Username:     username,
		Attributes:   attrs,
		Status:       "FORCE_CHANGE_PASSWORD",
		Enabled:      true,
		Password:     temporaryPassword,
		Created:      now,
		LastModified: now,
	}
	if u.Attributes == nil {
		u.Attributes = make(map[string]string)
	}
	p.users[username] = u
	return u, true
}

func (p *UserPool) GetUser(username string) (*User, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	u, ok := p.users[username]
	return u, ok
}

func (p *UserPool) ListUsers() []*User {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*User, 0, len(p.users))
	for _, u := range p.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}

func (p *UserPool) DeleteUser(username string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.users[username]; !ok {
		return false
	}
	delete(p.users, username)
	return true
}

func (p *UserPool) SetUserEnabled(username string, enabled bool) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	u, ok := p.users[username]
	if !ok {
		return false
	}
	u.Enabled = enabled
	return true
}

func (p *UserPool) UpdateAttributes(username string, attrs map[string]string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	u, ok := p.users[username]
	if !ok {
		return false
	}
	for k, v := range attrs {
		u.Attributes[k] = v
	}
	return true
}

func (p *UserPool) SetPassword(now time.Time, username, password string, permanent bool) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	u, ok := p.users[username]
	if !ok {
		return false
	}
	u.Password = password
	u.LastModified = now
	if permanent {
		u.Status = "CONFIRMED"
	}
	return true
}

// Authenticate returns a fixed-format opaque token triple on success,
// matching the shape AdminInitiateAuth's USER_PASSWORD_AUTH flow returns
// without implementing real JWT signing.
func (p *UserPool) Authenticate(username, password string) (access, idToken, refresh string, ok bool) {
	p.mu.Lock()
	u, exists := p.users[username]
	p.mu.Unlock()
	if !exists || !u.Enabled || u.Password != password {
		return "", "", "", false
	}
	token := uuid.V4().String()
	return "access." + token, "id." + token, "refresh." + token, true
}
