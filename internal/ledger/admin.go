package ledger

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"

	"github.com/pgold-labs/staking-ledger/internal/types"
)

// AdminState is the persistable snapshot of pool, ownership and pause
// configuration.
type AdminState struct {
	Owner  common.Address
	Pool   common.Address
	Paused bool
}

// AdminControl gates the ledger's mutating entry points: pool address and
// pause flag, mutable only by the owner. Renounced ownership (zero owner)
// permanently disables every admin operation.
type AdminControl struct {
	owner  common.Address
	pool   common.Address
	paused bool
}

func NewAdminControl(owner, pool common.Address) *AdminControl {
	return &AdminControl{owner: owner, pool: pool}
}

func (a *AdminControl) Owner() common.Address { return a.owner }
func (a *AdminControl) Pool() common.Address  { return a.pool }
func (a *AdminControl) IsPaused() bool        { return a.paused }

func (a *AdminControl) State() AdminState {
	return AdminState{Owner: a.owner, Pool: a.pool, Paused: a.paused}
}

func (a *AdminControl) RestoreState(st AdminState) {
	a.owner = st.Owner
	a.pool = st.Pool
	a.paused = st.Paused
}

func (a *AdminControl) SetPoolAddress(caller, newPool common.Address) *types.Error {
	if err := a.ensureOwner(caller); err != nil {
		return err
	}
	if newPool == (common.Address{}) {
		return types.NewErrorWithMsg(
			http.StatusBadRequest, types.ValidationError,
			"pool address must not be the zero address",
		)
	}
	a.pool = newPool
	return nil
}

func (a *AdminControl) Pause(caller common.Address) *types.Error {
	if err := a.ensureOwner(caller); err != nil {
		return err
	}
	a.paused = true
	return nil
}

func (a *AdminControl) Unpause(caller common.Address) *types.Error {
	if err := a.ensureOwner(caller); err != nil {
		return err
	}
	a.paused = false
	return nil
}

func (a *AdminControl) TransferOwnership(caller, newOwner common.Address) *types.Error {
	if err := a.ensureOwner(caller); err != nil {
		return err
	}
	if newOwner == (common.Address{}) {
		return types.NewErrorWithMsg(
			http.StatusBadRequest, types.ValidationError,
			"new owner must not be the zero address",
		)
	}
	a.owner = newOwner
	return nil
}

// RenounceOwnership sets the owner to the zero address. Irreversible.
func (a *AdminControl) RenounceOwnership(caller common.Address) *types.Error {
	if err := a.ensureOwner(caller); err != nil {
		return err
	}
	a.owner = common.Address{}
	return nil
}

func (a *AdminControl) ensureOwner(caller common.Address) *types.Error {
	if a.owner == (common.Address{}) || caller != a.owner {
		return types.NewErrorWithMsg(
			http.StatusForbidden, types.Unauthorized,
			"caller is not the owner",
		)
	}
	return nil
}
