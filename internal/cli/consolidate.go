package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "consolidate",
		Short: "Run one Memory-Chain consolidation cycle",
		Long:  "Step working-trace entries, interleave-replay a sample of archived entries, decay core entries, and rebalance layers.",
		Run:   runConsolidate,
	}

	cmd.Flags().Float64("dt", 1.0, "Elapsed days this cycle represents")

	RootCmd.AddCommand(cmd)

	downscaleCmd := &cobra.Command{
		Use:   "downscale",
		Short: "Multiply every non-pinned memory's strengths by a factor",
		Run:   runDownscale,
	}
	downscaleCmd.Flags().Float64("factor", 0.95, "Multiplier in (0, 1]")
	RootCmd.AddCommand(downscaleCmd)
}

func runConsolidate(cmd *cobra.Command, args []string) {
	dt, _ := cmd.Flags().GetFloat64("dt")

	m, err := openMemory()
	if err != nil {
		exitErr("open memory", err)
	}
	defer m.Close()

	stats, err := m.Consolidate(cmd.Context(), dt)
	if err != nil {
		exitErr("consolidate", err)
	}

	b, _ := json.MarshalIndent(stats, "", "  ")
	fmt.Println(string(b))
}

func runDownscale(cmd *cobra.Command, args []string) {
	factor, _ := cmd.Flags().GetFloat64("factor")

	m, err := openMemory()
	if err != nil {
		exitErr("open memory", err)
	}
	defer m.Close()

	if err := m.Downscale(cmd.Context(), factor); err != nil {
		exitErr("downscale", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"factor":%v}`+"\n", factor)
}
