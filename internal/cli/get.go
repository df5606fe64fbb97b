package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/engramhq/engram/internal/chunker"
)

func init() {
	cmd := &cobra.Command{
		Use:   "get [id]",
		Short: "Retrieve a memory by id",
		Args:  cobra.ExactArgs(1),
		Run:   runGet,
	}
	cmd.Flags().Bool("excerpt", false, "Print a short excerpt instead of the full content")

	RootCmd.AddCommand(cmd)
}

func runGet(cmd *cobra.Command, args []string) {
	m, err := openMemory()
	if err != nil {
		exitErr("open memory", err)
	}
	defer m.Close()

	entry, err := m.Get(cmd.Context(), args[0])
	if err != nil {
		exitErr("get", err)
	}
	if entry == nil {
		exitErr("get", fmt.Errorf("no memory with id %q", args[0]))
	}

	if excerpt, _ := cmd.Flags().GetBool("excerpt"); excerpt {
		entry.Content = chunker.Preview(entry.Content, 200)
	}

	b, _ := json.MarshalIndent(entry, "", "  ")
	fmt.Println(string(b))
}
