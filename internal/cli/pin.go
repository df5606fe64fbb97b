package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	pinCmd := &cobra.Command{
		Use:   "pin [id]",
		Short: "Pin a memory into the core layer",
		Args:  cobra.ExactArgs(1),
		Run:   runPin,
	}
	RootCmd.AddCommand(pinCmd)

	unpinCmd := &cobra.Command{
		Use:   "unpin [id]",
		Short: "Clear a memory's pinned flag",
		Args:  cobra.ExactArgs(1),
		Run:   runUnpin,
	}
	RootCmd.AddCommand(unpinCmd)
}

func runPin(cmd *cobra.Command, args []string) {
	m, err := openMemory()
	if err != nil {
		exitErr("open memory", err)
	}
	defer m.Close()

	if err := m.Pin(cmd.Context(), args[0]); err != nil {
		exitErr("pin", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"id":%q,"pinned":true}`+"\n", args[0])
}

func runUnpin(cmd *cobra.Command, args []string) {
	m, err := openMemory()
	if err != nil {
		exitErr("open memory", err)
	}
	defer m.Close()

	if err := m.Unpin(cmd.Context(), args[0]); err != nil {
		exitErr("unpin", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"id":%q,"pinned":false}`+"\n", args[0])
}
