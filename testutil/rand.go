package testutil

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

// RandomAlphaNum generates random alphanumeric string
// in case length <= 0 it returns empty string
func RandomAlphaNum(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	if length <= 0 {
		return "", fmt.Errorf("length must be greater than 0")
	}

	randomString := make([]byte, length)
	for i := range randomString {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		randomString[i] = charset[num.Int64()]
	}

	return string(randomString), nil
}

// RandomAddress returns a random non-zero account address.
func RandomAddress(t *testing.T) common.Address {
	t.Helper()

	var addr common.Address
	_, err := rand.Read(addr[:])
	require.NoError(t, err)
	require.NotEqual(t, common.Address{}, addr)
	return addr
}

// RandomAmount returns a random positive token amount in base units, at most
// max whole tokens at the 4-decimal scale.
func RandomAmount(t *testing.T, max int64) sdkmath.Int {
	t.Helper()

	n, err := rand.Int(rand.Reader, big.NewInt(max))
	require.NoError(t, err)
	return sdkmath.NewInt(n.Int64() + 1).MulRaw(10_000)
}
