package ledger

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"

	"github.com/pgold-labs/staking-ledger/internal/clients/tokenclient"
	"github.com/pgold-labs/staking-ledger/internal/types"
)

// EventSink receives every committed ledger event, in sequence order. Append
// is the commit point of a mutating operation: if it fails, the operation's
// in-memory mutation is unwound and the operation fails as a whole.
type EventSink interface {
	Append(ctx context.Context, event *types.Event) error
}

// UserInfo mirrors the original getUserInfo read: referral back-reference,
// live stake count, referee count and registration flag.
type UserInfo struct {
	Referrer     common.Address
	ActiveStakes uint64
	RefereeCount uint64
	IsRegistered bool
}

// StakeDetails is the live view of one stake. CurrentRewards and CanClaim are
// recomputed against "now" on every read, never stored.
type StakeDetails struct {
	StakeID        uint64
	AmountStaked   math.Int
	CurrentRewards math.Int
	StakeEndTime   int64
	TimeStaked     int64
	Rate           int64
	Claimed        bool
	CanClaim       bool
	Option         types.StakeOption
}

// Ledger is the staking ledger aggregate: user registry, stake store and
// admin control behind one mutual-exclusion boundary. Every mutating
// operation runs to completion or fails atomically under the write lock;
// reads run against committed state under the read lock. Cross-entity
// invariants (referee counts, active stake counts, pool capacity) span the
// whole aggregate, so no finer-grained locking is safe.
type Ledger struct {
	mu sync.RWMutex

	registry *UserRegistry
	stakes   *StakeStore
	admin    *AdminControl

	token tokenclient.TokenPort
	sink  EventSink

	// account is the address the ledger transacts as; stake deposits flow
	// caller -> pool and payouts pool -> caller through its allowances.
	account common.Address

	seq uint64
	now func() time.Time
}

type Option func(*Ledger)

// WithClock overrides the ledger clock. Tests use it to move time past stake
// maturity.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

func New(
	owner, pool, account common.Address,
	token tokenclient.TokenPort,
	sink EventSink,
	opts ...Option,
) *Ledger {
	l := &Ledger{
		registry: NewUserRegistry(),
		stakes:   NewStakeStore(),
		admin:    NewAdminControl(owner, pool),
		token:    token,
		sink:     sink,
		account:  account,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Register performs the one-time registration of caller, with the zero
// address meaning "no referrer". The referrer does not have to be registered.
func (l *Ledger) Register(ctx context.Context, caller, referrer common.Address) *types.Error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.registry.Register(caller, referrer); err != nil {
		return err
	}

	event := &types.Event{
		Seq:       l.seq + 1,
		Type:      types.EventNewUser,
		User:      caller,
		Referrer:  referrer,
		Amount:    math.ZeroInt(),
		Timestamp: l.now().Unix(),
	}
	if err := l.commit(ctx, event); err != nil {
		l.registry.revertRegister(caller, referrer)
		return err
	}

	log.Ctx(ctx).Info().
		Str("user", caller.Hex()).
		Str("referrer", referrer.Hex()).
		Msg("user registered")
	return nil
}

// Stake locks amount base units under the chosen option. The caller must
// have approved the ledger account for at least the amount; the deposit is
// pulled into the pool. The effective rate and end time are fixed here and
// never recomputed.
func (l *Ledger) Stake(
	ctx context.Context, caller common.Address, amount math.Int, option types.StakeOption,
) (uint64, *types.Error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.registry.IsRegistered(caller) {
		return 0, types.NewErrorWithMsg(
			http.StatusForbidden, types.NotRegistered,
			"caller must register before staking",
		)
	}
	if l.admin.IsPaused() {
		return 0, types.NewErrorWithMsg(
			http.StatusServiceUnavailable, types.ContractPaused,
			"staking is paused",
		)
	}
	if amount.IsNil() || !amount.IsPositive() {
		return 0, types.NewErrorWithMsg(
			http.StatusBadRequest, types.InvalidAmount,
			"stake amount must be positive",
		)
	}
	rate, err := EffectiveRate(option, l.registry.HasReferrer(caller))
	if err != nil {
		return 0, err
	}

	// Deposit before mutation: a token failure leaves the ledger untouched.
	if tokenErr := l.token.TransferFrom(ctx, caller, l.admin.Pool(), amount); tokenErr != nil {
		return 0, mapDepositError(tokenErr)
	}

	now := l.now().Unix()
	stake, err := l.stakes.CreateStake(caller, amount, option, rate, now)
	if err != nil {
		return 0, err
	}

	event := &types.Event{
		Seq:       l.seq + 1,
		Type:      types.EventStaked,
		User:      caller,
		StakeID:   stake.ID,
		Amount:    amount,
		Timestamp: now,
		Rate:      rate,
		Option:    option,
	}
	if err := l.commit(ctx, event); err != nil {
		l.stakes.revertCreate(caller, stake.ID)
		log.Ctx(ctx).Error().
			Str("user", caller.Hex()).
			Uint64("stake_id", stake.ID).
			Msg("journal append failed after stake deposit settled; deposit is in the pool")
		return 0, err
	}

	log.Ctx(ctx).Info().
		Str("user", caller.Hex()).
		Uint64("stake_id", stake.ID).
		Str("amount", amount.String()).
		Int64("rate", rate).
		Uint8("option", uint8(option)).
		Msg("stake created")
	return stake.ID, nil
}

// Unstake settles a matured stake: principal plus the reward accrued up to
// now, paid from the pool. The claim mark precedes the external transfer;
// a transfer failure unwinds the mark so the whole operation is
// all-or-nothing.
func (l *Ledger) Unstake(
	ctx context.Context, caller common.Address, stakeID uint64,
) (math.Int, *types.Error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	stake, err := l.stakes.GetStake(caller, stakeID)
	if err != nil {
		return math.ZeroInt(), err
	}
	if stake.Owner != caller {
		return math.ZeroInt(), types.NewErrorWithMsg(
			http.StatusForbidden, types.NotOwner,
			"stake belongs to another user",
		)
	}
	if stake.Claimed {
		return math.ZeroInt(), types.NewErrorWithMsg(
			http.StatusConflict, types.AlreadyClaimed,
			"stake already claimed",
		)
	}

	now := l.now().Unix()
	if !CanClaim(now, stake.StakeEndTime) {
		return math.ZeroInt(), types.NewErrorWithMsg(
			http.StatusUnprocessableEntity, types.TooEarly,
			"stake time not finished",
		)
	}

	reward := AccruedReward(stake.Amount, stake.Rate, now-stake.TimeStaked)
	payout := stake.Amount.Add(reward)

	capacity, capErr := l.poolCapacity(ctx)
	if capErr != nil {
		return math.ZeroInt(), types.NewInternalServiceError(
			fmt.Errorf("failed to read pool capacity: %w", capErr),
		)
	}
	if capacity.LT(payout) {
		return math.ZeroInt(), types.NewErrorWithMsg(
			http.StatusServiceUnavailable, types.PoolExhausted,
			"pool cannot cover the payout, administrator funding required",
		)
	}

	// Effects before interactions.
	if err := l.stakes.MarkClaimed(caller, stakeID); err != nil {
		return math.ZeroInt(), err
	}
	if tokenErr := l.token.TransferFrom(ctx, l.admin.Pool(), caller, payout); tokenErr != nil {
		l.stakes.revertClaim(caller, stakeID)
		if errors.Is(tokenErr, tokenclient.ErrInsufficientAllowance) ||
			errors.Is(tokenErr, tokenclient.ErrInsufficientBalance) {
			return math.ZeroInt(), types.NewErrorWithMsg(
				http.StatusServiceUnavailable, types.PoolExhausted,
				"pool cannot cover the payout, administrator funding required",
			)
		}
		return math.ZeroInt(), types.NewInternalServiceError(
			fmt.Errorf("pool payout transfer failed: %w", tokenErr),
		)
	}

	event := &types.Event{
		Seq:       l.seq + 1,
		Type:      types.EventUnstaked,
		User:      caller,
		StakeID:   stakeID,
		Amount:    payout,
		Timestamp: now,
	}
	if err := l.commit(ctx, event); err != nil {
		l.stakes.revertClaim(caller, stakeID)
		log.Ctx(ctx).Error().
			Str("user", caller.Hex()).
			Uint64("stake_id", stakeID).
			Msg("journal append failed after payout settled; manual reconciliation required")
		return math.ZeroInt(), err
	}

	log.Ctx(ctx).Info().
		Str("user", caller.Hex()).
		Uint64("stake_id", stakeID).
		Str("payout", payout.String()).
		Msg("stake settled")
	return payout, nil
}

// GetUserInfo returns zero-valued defaults for unknown addresses; it never
// fails.
func (l *Ledger) GetUserInfo(addr common.Address) UserInfo {
	l.mu.RLock()
	defer l.mu.RUnlock()

	u := l.registry.Get(addr)
	return UserInfo{
		Referrer:     u.Referrer,
		ActiveStakes: l.stakes.ActiveStakes(addr),
		RefereeCount: u.RefereeCount,
		IsRegistered: u.Registered,
	}
}

// GetStakeDetails recomputes CurrentRewards and CanClaim live on every call.
func (l *Ledger) GetStakeDetails(account common.Address, stakeID uint64) (*StakeDetails, *types.Error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	stake, err := l.stakes.GetStake(account, stakeID)
	if err != nil {
		return nil, err
	}
	details := l.details(stake, l.now().Unix())
	return &details, nil
}

// CalculateRewards returns the reward accrued by a stake up to now.
func (l *Ledger) CalculateRewards(account common.Address, stakeID uint64) (math.Int, *types.Error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	stake, err := l.stakes.GetStake(account, stakeID)
	if err != nil {
		return math.ZeroInt(), err
	}
	return AccruedReward(stake.Amount, stake.Rate, l.now().Unix()-stake.TimeStaked), nil
}

// GetStakeEndTime returns the maturity timestamp of a stake.
func (l *Ledger) GetStakeEndTime(account common.Address, stakeID uint64) (int64, *types.Error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	stake, err := l.stakes.GetStake(account, stakeID)
	if err != nil {
		return 0, err
	}
	return stake.StakeEndTime, nil
}

// ListStakes returns live views of every stake of an account, id ascending.
func (l *Ledger) ListStakes(account common.Address) []StakeDetails {
	l.mu.RLock()
	defer l.mu.RUnlock()

	now := l.now().Unix()
	var out []StakeDetails
	for stake := range l.stakes.ListStakes(account) {
		out = append(out, l.details(&stake, now))
	}
	return out
}

// TotalUsers returns the number of registrations since genesis.
func (l *Ledger) TotalUsers() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.registry.TotalUsers()
}

// Totals is the aggregate snapshot backing stats reads and gauges.
type Totals struct {
	TotalUsers   uint64
	ActiveStakes uint64
	TotalStaked  math.Int
}

func (l *Ledger) OverallTotals() Totals {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return Totals{
		TotalUsers:   l.registry.TotalUsers(),
		ActiveStakes: l.stakes.TotalActive(),
		TotalStaked:  l.stakes.TotalStaked(),
	}
}

func (l *Ledger) Owner() common.Address {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.admin.Owner()
}

func (l *Ledger) Pool() common.Address {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.admin.Pool()
}

func (l *Ledger) IsPaused() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.admin.IsPaused()
}

// SetPoolAddress changes the payout pool. Owner only.
func (l *Ledger) SetPoolAddress(caller, newPool common.Address) *types.Error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.admin.SetPoolAddress(caller, newPool)
}

// PauseContract stops stake creation. Unstaking stays permitted so user
// funds are never frozen.
func (l *Ledger) PauseContract(caller common.Address) *types.Error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.admin.Pause(caller)
}

func (l *Ledger) UnpauseContract(caller common.Address) *types.Error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.admin.Unpause(caller)
}

// TransferOwnership hands admin control to newOwner and journals the change.
func (l *Ledger) TransferOwnership(ctx context.Context, caller, newOwner common.Address) *types.Error {
	l.mu.Lock()
	defer l.mu.Unlock()

	previous := l.admin.Owner()
	if err := l.admin.TransferOwnership(caller, newOwner); err != nil {
		return err
	}

	event := &types.Event{
		Seq:           l.seq + 1,
		Type:          types.EventOwnershipTransferred,
		User:          caller,
		Amount:        math.ZeroInt(),
		Timestamp:     l.now().Unix(),
		PreviousOwner: previous,
		NewOwner:      newOwner,
	}
	if err := l.commit(ctx, event); err != nil {
		l.admin.RestoreState(AdminState{Owner: previous, Pool: l.admin.Pool(), Paused: l.admin.IsPaused()})
		return err
	}
	return nil
}

// RenounceOwnership permanently disables admin operations by transferring
// ownership to the zero address.
func (l *Ledger) RenounceOwnership(ctx context.Context, caller common.Address) *types.Error {
	l.mu.Lock()
	defer l.mu.Unlock()

	previous := l.admin.Owner()
	if err := l.admin.RenounceOwnership(caller); err != nil {
		return err
	}

	event := &types.Event{
		Seq:           l.seq + 1,
		Type:          types.EventOwnershipTransferred,
		User:          caller,
		Amount:        math.ZeroInt(),
		Timestamp:     l.now().Unix(),
		PreviousOwner: previous,
	}
	if err := l.commit(ctx, event); err != nil {
		l.admin.RestoreState(AdminState{Owner: previous, Pool: l.admin.Pool(), Paused: l.admin.IsPaused()})
		return err
	}
	return nil
}

// AdminState snapshots pool/ownership/pause configuration for persistence.
func (l *Ledger) AdminState() AdminState {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.admin.State()
}

// RestoreAdminState applies a persisted admin snapshot during bootstrap.
func (l *Ledger) RestoreAdminState(st AdminState) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.admin.RestoreState(st)
}

// Restore applies one journaled event during bootstrap replay. No token
// transfers or sink appends happen; the journal is the source of truth and
// its side effects have already settled.
func (l *Ledger) Restore(event *types.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if event.Seq != l.seq+1 {
		return fmt.Errorf("journal gap: expected seq %d, got %d", l.seq+1, event.Seq)
	}

	switch event.Type {
	case types.EventNewUser:
		if err := l.registry.Register(event.User, event.Referrer); err != nil {
			return fmt.Errorf("replaying NewUser seq %d: %w", event.Seq, err)
		}
	case types.EventStaked:
		principal := event.Amount
		if _, err := l.stakes.CreateStake(
			event.User, principal, event.Option, event.Rate, event.Timestamp,
		); err != nil {
			return fmt.Errorf("replaying Staked seq %d: %w", event.Seq, err)
		}
	case types.EventUnstaked:
		if err := l.stakes.MarkClaimed(event.User, event.StakeID); err != nil {
			return fmt.Errorf("replaying Unstaked seq %d: %w", event.Seq, err)
		}
	case types.EventOwnershipTransferred:
		l.admin.RestoreState(AdminState{
			Owner:  event.NewOwner,
			Pool:   l.admin.Pool(),
			Paused: l.admin.IsPaused(),
		})
	default:
		return fmt.Errorf("unknown event type %q at seq %d", event.Type, event.Seq)
	}

	l.seq = event.Seq
	return nil
}

// Seq returns the sequence number of the last committed event.
func (l *Ledger) Seq() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.seq
}

func (l *Ledger) details(stake *Stake, now int64) StakeDetails {
	return StakeDetails{
		StakeID:        stake.ID,
		AmountStaked:   stake.Amount,
		CurrentRewards: AccruedReward(stake.Amount, stake.Rate, now-stake.TimeStaked),
		StakeEndTime:   stake.StakeEndTime,
		TimeStaked:     stake.TimeStaked,
		Rate:           stake.Rate,
		Claimed:        stake.Claimed,
		CanClaim:       CanClaim(now, stake.StakeEndTime),
		Option:         stake.Option,
	}
}

// poolCapacity is what the pool can actually pay: the smaller of its balance
// and its allowance to the ledger account.
func (l *Ledger) poolCapacity(ctx context.Context) (math.Int, error) {
	pool := l.admin.Pool()
	balance, err := l.token.BalanceOf(ctx, pool)
	if err != nil {
		return math.ZeroInt(), err
	}
	allowance, err := l.token.Allowance(ctx, pool, l.account)
	if err != nil {
		return math.ZeroInt(), err
	}
	return math.MinInt(balance, allowance), nil
}

func (l *Ledger) commit(ctx context.Context, event *types.Event) *types.Error {
	if err := l.sink.Append(ctx, event); err != nil {
		return types.NewInternalServiceError(
			fmt.Errorf("failed to append event seq %d to the journal: %w", event.Seq, err),
		)
	}
	l.seq = event.Seq
	return nil
}

func mapDepositError(err error) *types.Error {
	if errors.Is(err, tokenclient.ErrInsufficientAllowance) ||
		errors.Is(err, tokenclient.ErrInsufficientBalance) {
		return types.NewErrorWithMsg(
			http.StatusPaymentRequired, types.InsufficientAllowance,
			"token transfer amount exceeds allowance",
		)
	}
	return types.NewInternalServiceError(fmt.Errorf("stake deposit transfer failed: %w", err))
}
