package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "link [memory-id] [node-id]",
		Short: "Record that a memory mentions an entity-graph node",
		Long:  "Entity extraction is the host's job; this records the resulting (memory, node, relation) edge for graph-expanded recall.",
		Args:  cobra.ExactArgs(2),
		Run:   runLink,
	}

	cmd.Flags().StringP("rel", "r", "", "Optional relation label")

	RootCmd.AddCommand(cmd)
}

func runLink(cmd *cobra.Command, args []string) {
	rel, _ := cmd.Flags().GetString("rel")
	memoryID, nodeID := args[0], args[1]

	m, err := openMemory()
	if err != nil {
		exitErr("open memory", err)
	}
	defer m.Close()

	if err := m.AddGraphLink(cmd.Context(), memoryID, nodeID, rel); err != nil {
		exitErr("link", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"memory_id":%q,"node_id":%q,"relation":%q}`+"\n", memoryID, nodeID, rel)
}
