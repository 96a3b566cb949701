package services

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"

	"github.com/pgold-labs/staking-ledger/internal/types"
)

// SetPoolAddress points settlements at a new pool. Owner only.
func (s *Service) SetPoolAddress(ctx context.Context, caller, newPool common.Address) *types.Error {
	if err := s.ledger.SetPoolAddress(caller, newPool); err != nil {
		return err
	}
	s.persistAdminState(ctx)

	log.Ctx(ctx).Info().
		Str("pool", newPool.Hex()).
		Msg("pool address updated")
	return nil
}

// PauseContract stops new stakes. Settlements stay available.
func (s *Service) PauseContract(ctx context.Context, caller common.Address) *types.Error {
	if err := s.ledger.PauseContract(caller); err != nil {
		return err
	}
	s.persistAdminState(ctx)

	log.Ctx(ctx).Info().Msg("staking paused")
	return nil
}

func (s *Service) UnpauseContract(ctx context.Context, caller common.Address) *types.Error {
	if err := s.ledger.UnpauseContract(caller); err != nil {
		return err
	}
	s.persistAdminState(ctx)

	log.Ctx(ctx).Info().Msg("staking unpaused")
	return nil
}

// TransferOwnership hands the admin role to newOwner.
func (s *Service) TransferOwnership(ctx context.Context, caller, newOwner common.Address) *types.Error {
	if err := s.ledger.TransferOwnership(ctx, caller, newOwner); err != nil {
		return err
	}
	s.persistAdminState(ctx)

	log.Ctx(ctx).Info().
		Str("previous_owner", caller.Hex()).
		Str("new_owner", newOwner.Hex()).
		Msg("ownership transferred")
	return nil
}

// RenounceOwnership permanently disables the admin role.
func (s *Service) RenounceOwnership(ctx context.Context, caller common.Address) *types.Error {
	if err := s.ledger.RenounceOwnership(ctx, caller); err != nil {
		return err
	}
	s.persistAdminState(ctx)

	log.Ctx(ctx).Info().
		Str("previous_owner", caller.Hex()).
		Msg("ownership renounced")
	return nil
}

// persistAdminState mirrors the committed admin configuration into mongo.
// Failures are logged, not propagated: the in-memory state already changed
// and the next successful admin op or restart reconciles the doc.
func (s *Service) persistAdminState(ctx context.Context) {
	state := s.ledger.AdminState()
	err := s.db.UpsertAdminState(ctx, state.Owner.Hex(), state.Pool.Hex(), state.Paused)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to persist admin state")
	}
}
