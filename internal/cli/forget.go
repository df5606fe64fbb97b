package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "forget [id]",
		Short: "Archive or delete a memory",
		Long:  "Archive a memory into L4_archive (the default), or pass --hard to remove it and its cascading rows permanently.",
		Args:  cobra.ExactArgs(1),
		Run:   runForget,
	}

	cmd.Flags().Bool("hard", false, "Permanently delete instead of archiving")

	RootCmd.AddCommand(cmd)

	pruneCmd := &cobra.Command{
		Use:   "prune",
		Short: "Archive every memory below the forget threshold",
		Run:   runPrune,
	}
	pruneCmd.Flags().Float64("threshold", 0, "Effective-strength threshold (default: the configured value)")
	RootCmd.AddCommand(pruneCmd)
}

func runForget(cmd *cobra.Command, args []string) {
	hard, _ := cmd.Flags().GetBool("hard")

	m, err := openMemory()
	if err != nil {
		exitErr("open memory", err)
	}
	defer m.Close()

	id := args[0]
	if hard {
		if err := m.Delete(cmd.Context(), id); err != nil {
			exitErr("forget --hard", err)
		}
	} else if err := m.Forget(cmd.Context(), id); err != nil {
		exitErr("forget", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"id":%q,"hard":%v}`+"\n", id, hard)
}

func runPrune(cmd *cobra.Command, args []string) {
	threshold, _ := cmd.Flags().GetFloat64("threshold")

	m, err := openMemory()
	if err != nil {
		exitErr("open memory", err)
	}
	defer m.Close()

	ids, err := m.Prune(cmd.Context(), threshold)
	if err != nil {
		exitErr("prune", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"archived":%d}`+"\n", len(ids))
}
