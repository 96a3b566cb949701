package ledger

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"

	"github.com/pgold-labs/staking-ledger/internal/types"
)

// User is the registration record of one address. The referrer back-reference
// is depth one only; no traversal beyond it ever happens. A referrer does not
// have to be registered itself.
type User struct {
	Referrer     common.Address
	RefereeCount uint64
	Registered   bool
}

// UserRegistry tracks one-time registrations and the referral graph. It is
// not safe for concurrent use on its own; the Ledger serializes access.
type UserRegistry struct {
	users      map[common.Address]*User
	totalUsers uint64
}

func NewUserRegistry() *UserRegistry {
	return &UserRegistry{
		users: make(map[common.Address]*User),
	}
}

// Register marks caller registered with the given referrer (zero address for
// none). Registering twice fails without mutating anything.
func (r *UserRegistry) Register(caller, referrer common.Address) *types.Error {
	if u, ok := r.users[caller]; ok && u.Registered {
		return types.NewErrorWithMsg(
			http.StatusConflict, types.AlreadyRegistered,
			"you cannot register again",
		)
	}

	u := r.user(caller)
	u.Registered = true
	u.Referrer = referrer
	r.totalUsers++

	if referrer != (common.Address{}) {
		r.user(referrer).RefereeCount++
	}
	return nil
}

// revertRegister undoes a Register that could not be journaled.
func (r *UserRegistry) revertRegister(caller, referrer common.Address) {
	u, ok := r.users[caller]
	if !ok || !u.Registered {
		return
	}
	u.Registered = false
	u.Referrer = common.Address{}
	r.totalUsers--

	if referrer != (common.Address{}) {
		r.user(referrer).RefereeCount--
	}
}

// Get returns the user record for an address, zero-valued for unknown
// addresses. The returned value is a copy.
func (r *UserRegistry) Get(addr common.Address) User {
	if u, ok := r.users[addr]; ok {
		return *u
	}
	return User{}
}

func (r *UserRegistry) IsRegistered(addr common.Address) bool {
	u, ok := r.users[addr]
	return ok && u.Registered
}

// HasReferrer reports whether the address registered with a non-zero
// referrer; this is what grants the referral rate bonus.
func (r *UserRegistry) HasReferrer(addr common.Address) bool {
	u, ok := r.users[addr]
	return ok && u.Registered && u.Referrer != (common.Address{})
}

// TotalUsers returns the number of registrations since genesis.
func (r *UserRegistry) TotalUsers() uint64 {
	return r.totalUsers
}

func (r *UserRegistry) user(addr common.Address) *User {
	u, ok := r.users[addr]
	if !ok {
		u = &User{}
		r.users[addr] = u
	}
	return u
}
