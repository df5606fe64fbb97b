package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "reward [feedback text]",
		Short: "Apply dopaminergic-style feedback to recently accessed memories",
		Long:  "Detects positive/negative/neutral polarity in free text and nudges the most-recently-accessed memories accordingly.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runReward,
	}

	cmd.Flags().Int("recent", 0, "Number of recently-accessed memories to affect (default: configured)")
	cmd.Flags().Float64("magnitude", 0, "Reward magnitude (default: configured)")

	RootCmd.AddCommand(cmd)
}

func runReward(cmd *cobra.Command, args []string) {
	recent, _ := cmd.Flags().GetInt("recent")
	magnitude, _ := cmd.Flags().GetFloat64("magnitude")
	text := strings.Join(args, " ")

	m, err := openMemory()
	if err != nil {
		exitErr("open memory", err)
	}
	defer m.Close()

	polarity, err := m.Reward(cmd.Context(), text, recent, magnitude)
	if err != nil {
		exitErr("reward", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"polarity":%q}`+"\n", polarity)
}
