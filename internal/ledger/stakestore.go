package ledger

import (
	"iter"
	"net/http"

	"cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"

	"github.com/pgold-labs/staking-ledger/internal/types"
)

// Stake is one time-locked position. Rate and StakeEndTime are fixed at
// creation and never recomputed, even if global parameters change later.
type Stake struct {
	Owner        common.Address
	ID           uint64
	Amount       math.Int
	Option       types.StakeOption
	Rate         int64
	TimeStaked   int64
	StakeEndTime int64
	Claimed      bool
}

// StakeStore owns every stake keyed by (owner, id). Ids are sequential per
// owner starting at 1; claimed stakes are retained for history, never deleted
// or reused. Not safe for concurrent use on its own; the Ledger serializes
// access.
type StakeStore struct {
	stakes map[common.Address][]*Stake
	active map[common.Address]uint64

	totalActive uint64
	totalStaked math.Int // unclaimed principal across all owners
}

func NewStakeStore() *StakeStore {
	return &StakeStore{
		stakes:      make(map[common.Address][]*Stake),
		active:      make(map[common.Address]uint64),
		totalStaked: math.ZeroInt(),
	}
}

// CreateStake persists a new stake and increments the owner's active count.
// The caller supplies the already-fixed effective rate and creation time.
func (s *StakeStore) CreateStake(
	owner common.Address, amount math.Int, option types.StakeOption, rate int64, now int64,
) (*Stake, *types.Error) {
	if amount.IsNil() || !amount.IsPositive() {
		return nil, types.NewErrorWithMsg(
			http.StatusBadRequest, types.InvalidAmount,
			"stake amount must be positive",
		)
	}
	duration, err := Duration(option)
	if err != nil {
		return nil, err
	}

	stake := &Stake{
		Owner:        owner,
		ID:           uint64(len(s.stakes[owner])) + 1,
		Amount:       amount,
		Option:       option,
		Rate:         rate,
		TimeStaked:   now,
		StakeEndTime: now + duration,
	}
	s.stakes[owner] = append(s.stakes[owner], stake)
	s.active[owner]++
	s.totalActive++
	s.totalStaked = s.totalStaked.Add(amount)
	return stake, nil
}

// revertCreate undoes a CreateStake that could not be journaled. Only the
// most recently created stake of an owner can be reverted.
func (s *StakeStore) revertCreate(owner common.Address, id uint64) {
	stakes := s.stakes[owner]
	if len(stakes) == 0 || stakes[len(stakes)-1].ID != id {
		return
	}
	s.stakes[owner] = stakes[:len(stakes)-1]
	s.active[owner]--
	s.totalActive--
	s.totalStaked = s.totalStaked.Sub(stakes[len(stakes)-1].Amount)
}

// GetStake returns the stake with the given id. The returned pointer is the
// stored record; callers outside this package receive copies via the Ledger.
func (s *StakeStore) GetStake(owner common.Address, id uint64) (*Stake, *types.Error) {
	stakes := s.stakes[owner]
	if id == 0 || id > uint64(len(stakes)) {
		return nil, types.NewErrorWithMsg(
			http.StatusNotFound, types.NotFound,
			"stake not found",
		)
	}
	return stakes[id-1], nil
}

// MarkClaimed terminally marks a stake claimed and decrements the owner's
// active count. A second invocation fails; callers must have checked
// maturity and claim state beforehand.
func (s *StakeStore) MarkClaimed(owner common.Address, id uint64) *types.Error {
	stake, err := s.GetStake(owner, id)
	if err != nil {
		return err
	}
	if stake.Claimed {
		return types.NewErrorWithMsg(
			http.StatusConflict, types.AlreadyClaimed,
			"stake already claimed",
		)
	}
	stake.Claimed = true
	s.active[owner]--
	s.totalActive--
	s.totalStaked = s.totalStaked.Sub(stake.Amount)
	return nil
}

// revertClaim undoes a MarkClaimed whose payout could not complete.
func (s *StakeStore) revertClaim(owner common.Address, id uint64) {
	stake, err := s.GetStake(owner, id)
	if err != nil || !stake.Claimed {
		return
	}
	stake.Claimed = false
	s.active[owner]++
	s.totalActive++
	s.totalStaked = s.totalStaked.Add(stake.Amount)
}

// TotalActive returns the count of unclaimed stakes across all owners.
func (s *StakeStore) TotalActive() uint64 {
	return s.totalActive
}

// TotalStaked returns the unclaimed principal across all owners.
func (s *StakeStore) TotalStaked() math.Int {
	return s.totalStaked
}

// ActiveStakes returns the owner's count of stakes not yet claimed.
func (s *StakeStore) ActiveStakes(owner common.Address) uint64 {
	return s.active[owner]
}

// ListStakes yields copies of the owner's stakes in id order. The sequence is
// finite and restartable.
func (s *StakeStore) ListStakes(owner common.Address) iter.Seq[Stake] {
	return func(yield func(Stake) bool) {
		for _, stake := range s.stakes[owner] {
			if !yield(*stake) {
				return
			}
		}
	}
}
