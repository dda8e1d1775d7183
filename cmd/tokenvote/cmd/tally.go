package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tokenvote/tokenvote/lib/ballot"
	"github.com/tokenvote/tokenvote/lib/common"
	"github.com/tokenvote/tokenvote/lib/round"
	"github.com/tokenvote/tokenvote/lib/storage"
	"github.com/tokenvote/tokenvote/lib/tally"

	cmdcommon "github.com/tokenvote/tokenvote/cmd/tokenvote/common"
)

var (
	tallyCmd *cobra.Command

	flagTallyRound   uint64
	flagTallyPayouts bool
	flagTallyExport  bool
)

type tallyOutput struct {
	Result  tally.Result         `json:"result"`
	Ranked  []tally.ProjectScore `json:"ranked"`
	Payouts []tally.PayoutLine   `json:"payouts,omitempty"`
	Audit   []ballot.AuditRecord `json:"audit,omitempty"`
}

func init() {
	tallyCmd = &cobra.Command{
		Use:   "tally",
		Short: "Compute the results of a voting round from storage",
		Run: func(c *cobra.Command, args []string) {
			parseFlagsTally()

			runTally()
			return
		},
	}

	var currentDirectory, err = os.Getwd()
	if err != nil {
		cmdcommon.PrintFlagsError(tallyCmd, "--storage", err)
	}
	if currentDirectory, err = filepath.Abs(currentDirectory); err != nil {
		cmdcommon.PrintFlagsError(tallyCmd, "--storage", err)
	}
	flagStorageConfigString = common.GetENVValue("TOKENVOTE_STORAGE", fmt.Sprintf("file://%s/db", currentDirectory))

	tallyCmd.Flags().StringVar(&flagStorageConfigString, "storage", flagStorageConfigString, "storage uri")
	tallyCmd.Flags().Uint64Var(&flagTallyRound, "round", 1, "round to tally")
	tallyCmd.Flags().BoolVar(&flagTallyPayouts, "payouts", false, "include the payout distribution")
	tallyCmd.Flags().BoolVar(&flagTallyExport, "export", false, "include the signed ballot audit records")

	rootCmd.AddCommand(tallyCmd)
}

func parseFlagsTally() {
	var err error

	if flagTallyRound < 1 {
		cmdcommon.PrintFlagsError(tallyCmd, "--round", fmt.Errorf("round must be 1 or higher"))
	}

	if storageConfig, err = storage.NewConfigFromString(flagStorageConfigString); err != nil {
		cmdcommon.PrintFlagsError(tallyCmd, "--storage", err)
	}
}

func runTally() {
	st, err := storage.NewStorage(storageConfig)
	if err != nil {
		cmdcommon.PrintError(tallyCmd, err)
	}
	defer st.Close()

	config, err := round.GetConfig(st, flagTallyRound)
	if err != nil {
		cmdcommon.PrintError(tallyCmd, err)
	}

	result, err := tally.Compute(st, config)
	if err != nil {
		cmdcommon.PrintError(tallyCmd, err)
	}

	output := tallyOutput{
		Result: result,
		Ranked: tally.Rank(result),
	}

	if flagTallyPayouts {
		pool, err := config.Pool()
		if err != nil {
			cmdcommon.PrintError(tallyCmd, err)
		}
		output.Payouts = tally.Distribute(result, pool)
	}

	if flagTallyExport {
		store := ballot.NewStore(st, nil, nil)
		if output.Audit, err = store.ExportPublished(flagTallyRound); err != nil {
			cmdcommon.PrintError(tallyCmd, err)
		}
	}

	encoded, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		cmdcommon.PrintError(tallyCmd, err)
	}
	fmt.Fprintln(os.Stdout, string(encoded))
}
