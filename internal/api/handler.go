package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/pgold-labs/staking-ledger/internal/types"
	"github.com/pgold-labs/staking-ledger/pkg"
)

type errorResponse struct {
	ErrorCode string `json:"errorCode"`
	Message   string `json:"message"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("Failed to encode response body")
	}
}

func writeError(w http.ResponseWriter, err *types.Error) {
	writeJSON(w, err.StatusCode, errorResponse{
		ErrorCode: err.ErrorCode.String(),
		Message:   err.Error(),
	})
}

func decodeBody(r *http.Request, dst any) *types.Error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return types.NewError(
			http.StatusBadRequest, types.ValidationError,
			fmt.Errorf("invalid request body: %w", err),
		)
	}
	return nil
}

// parseAddress validates a hex address supplied in a request body or path.
func parseAddress(field, value string) (common.Address, *types.Error) {
	if err := pkg.ValidateAddress(value); err != nil {
		return common.Address{}, types.NewError(
			http.StatusBadRequest, types.ValidationError,
			fmt.Errorf("invalid %s: %w", field, err),
		)
	}
	return common.HexToAddress(value), nil
}

func pathAddress(r *http.Request) (common.Address, *types.Error) {
	return parseAddress("address", chi.URLParam(r, "address"))
}

func pathStakeID(r *http.Request) (uint64, *types.Error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, types.NewError(
			http.StatusBadRequest, types.ValidationError,
			fmt.Errorf("invalid stake id: %s", raw),
		)
	}
	return id, nil
}

// parseAmount accepts a decimal string so callers are not bound by the
// precision limits of JSON numbers.
func parseAmount(value string) (math.Int, *types.Error) {
	amount, ok := math.NewIntFromString(value)
	if !ok {
		return math.Int{}, types.NewError(
			http.StatusBadRequest, types.ValidationError,
			fmt.Errorf("invalid amount: %s", value),
		)
	}
	return amount, nil
}
