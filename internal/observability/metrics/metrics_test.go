package metrics

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pgold-labs/staking-ledger/internal/types"
)

// Init is deliberately never called here: recording before the collectors
// exist must be a no-op, since callers such as the service layer and the
// http middleware run in tests without a metrics server.
func TestRecordBeforeInitDoesNotPanic(t *testing.T) {
	require.NotPanics(t, func() {
		RecordTokenClientLatency(time.Millisecond, "TransferFrom", false)
		RecordDbLatency(time.Millisecond, "SaveEvent", true)
		RecordLedgerOpDuration(time.Millisecond, "register", false)
		RecordHttpRequestDuration(time.Millisecond, http.MethodPost, "/v1/stake", http.StatusCreated)
		RecordPoolBalance(1234)
		RecordPoolAllowance(1234)
		RecordTotalUsers(1)
		RecordActiveStakes(1)
		RecordQueueSendError()
	})

	wrapped := RecordPollerDuration("pool", func(ctx context.Context) *types.Error {
		return nil
	})
	require.NotPanics(t, func() {
		require.Nil(t, wrapped(context.Background()))
	})
}
