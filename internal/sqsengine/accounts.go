package sqsengine

import (
	"context"
	"sync"

	"github.com/jonboulle/clockwork"
)

// NewAccounts returns a new, empty accounts set. Per-account [Queues] are
// created lazily by EnsureQueues.
func NewAccounts(clock clockwork.Clock) *Accounts {
	return &Accounts{
		clock:    clock,
		accounts: make(map[string]*Queues),
	}
}

type Accounts struct {
	clock clockwork.Clock

	mu       sync.Mutex
	accounts map[string]*Queues
}

// EnsureQueues returns the queues for a given account, creating and
// starting them if this is the first time the account has been seen.
func (a *Accounts) EnsureQueues(accountID string) *Queues {
	a.mu.Lock()
	defer a.mu.Unlock()
	if queues, ok := a.accounts[accountID]; ok {
		return queues
	}
	newQueues := NewQueues(a.clock, accountID)
	newQueues.Start(context.Background())
	a.accounts[accountID] = newQueues
	return newQueues
}

func (a *Accounts) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, queues := range a.accounts {
		queues.Close()
	}
}
