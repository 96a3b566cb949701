package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pgold-labs/staking-ledger/internal/config"
	"github.com/pgold-labs/staking-ledger/internal/db"
	"github.com/pgold-labs/staking-ledger/internal/db/model"
)

func DumpEventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump-events",
		Short: "Prints the event journal as JSON lines, oldest first",
		Args:  cobra.ExactArgs(0),
		RunE:  dumpEvents,
	}

	cmd.Flags().Uint64("after-seq", 0, "Dump only events after this sequence number")

	return cmd
}

func dumpEvents(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.New(GetConfigPath())
	if err != nil {
		return err
	}

	afterSeq, err := cmd.Flags().GetUint64("after-seq")
	if err != nil {
		return err
	}

	dbClient, err := db.New(ctx, cfg.Db)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(os.Stdout)
	var count uint64
	err = dbClient.IterateEvents(ctx, afterSeq, func(doc *model.EventDocument) error {
		count++
		return encoder.Encode(doc)
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "dumped %d events\n", count)
	return nil
}
