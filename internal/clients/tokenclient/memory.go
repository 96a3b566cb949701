package tokenclient

import (
	"context"
	"sync"

	"cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
)

// MemoryToken is an in-process token ledger implementing TokenPort. It backs
// local development (token backend "memory") and tests, with the standard
// transfer/approve semantics of the real token.
type MemoryToken struct {
	mu         sync.Mutex
	account    common.Address
	balances   map[common.Address]math.Int
	allowances map[common.Address]map[common.Address]math.Int
}

// NewMemoryToken creates an empty in-process token ledger. Methods that act
// on behalf of the caller (Approve, Transfer) act as the given account.
func NewMemoryToken(account common.Address) *MemoryToken {
	return &MemoryToken{
		account:    account,
		balances:   make(map[common.Address]math.Int),
		allowances: make(map[common.Address]map[common.Address]math.Int),
	}
}

// Mint credits freshly created units to an account. Test and development
// helper, not part of TokenPort.
func (m *MemoryToken) Mint(account common.Address, amount math.Int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[account] = m.balance(account).Add(amount)
}

// ApproveFrom sets the allowance owner->spender regardless of the client's
// configured account. Test and development helper, not part of TokenPort.
func (m *MemoryToken) ApproveFrom(owner, spender common.Address, amount math.Int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setAllowance(owner, spender, amount)
}

func (m *MemoryToken) BalanceOf(_ context.Context, account common.Address) (math.Int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balance(account), nil
}

func (m *MemoryToken) Allowance(_ context.Context, owner, spender common.Address) (math.Int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.allowance(owner, spender), nil
}

func (m *MemoryToken) Approve(_ context.Context, spender common.Address, amount math.Int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setAllowance(m.account, spender, amount)
	return nil
}

func (m *MemoryToken) Transfer(_ context.Context, to common.Address, amount math.Int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.move(m.account, to, amount)
}

func (m *MemoryToken) TransferFrom(_ context.Context, from, to common.Address, amount math.Int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	allowed := m.allowance(from, m.account)
	if allowed.LT(amount) {
		return ErrInsufficientAllowance
	}
	if err := m.move(from, to, amount); err != nil {
		return err
	}
	m.setAllowance(from, m.account, allowed.Sub(amount))
	return nil
}

func (m *MemoryToken) balance(account common.Address) math.Int {
	if b, ok := m.balances[account]; ok {
		return b
	}
	return math.ZeroInt()
}

func (m *MemoryToken) allowance(owner, spender common.Address) math.Int {
	if byOwner, ok := m.allowances[owner]; ok {
		if a, ok := byOwner[spender]; ok {
			return a
		}
	}
	return math.ZeroInt()
}

func (m *MemoryToken) setAllowance(owner, spender common.Address, amount math.Int) {
	byOwner, ok := m.allowances[owner]
	if !ok {
		byOwner = make(map[common.Address]math.Int)
		m.allowances[owner] = byOwner
	}
	byOwner[spender] = amount
}

func (m *MemoryToken) move(from, to common.Address, amount math.Int) error {
	if m.balance(from).LT(amount) {
		return ErrInsufficientBalance
	}
	m.balances[from] = m.balance(from).Sub(amount)
	m.balances[to] = m.balance(to).Add(amount)
	return nil
}
