package cli

import (
	"fmt"

	"cosmossdk.io/math"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/pgold-labs/staking-ledger/internal/config"
)

// defaultPoolFunding is the reward pool size in base units: 35 million whole
// tokens at the 4-decimal scale.
const defaultPoolFunding = "350000000000"

func FundPoolCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fund-pool",
		Short: "Approves the ledger account to spend the reward pool",
		Long: "Signs an approval from the configured pool account so the ledger " +
			"account can settle payouts from it. The token private key in the " +
			"config must belong to the pool account.",
		Args: cobra.ExactArgs(0),
		RunE: fundPool,
	}

	cmd.Flags().String("amount", defaultPoolFunding, "Allowance to grant, in base units")

	return cmd
}

func fundPool(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.New(GetConfigPath())
	if err != nil {
		return err
	}

	raw, err := cmd.Flags().GetString("amount")
	if err != nil {
		return err
	}
	amount, ok := math.NewIntFromString(raw)
	if !ok || !amount.IsPositive() {
		return fmt.Errorf("invalid amount: %s", raw)
	}

	token, err := newTokenPort(cfg)
	if err != nil {
		return err
	}

	account := cfg.Ledger.Account()
	if err := token.Approve(ctx, account, amount); err != nil {
		return fmt.Errorf("failed to approve ledger account: %w", err)
	}

	allowance, err := token.Allowance(ctx, cfg.Ledger.Pool(), account)
	if err != nil {
		return fmt.Errorf("failed to read back allowance: %w", err)
	}

	log.Info().
		Str("account", account.Hex()).
		Str("allowance", allowance.String()).
		Msg("Reward pool funded")
	return nil
}
