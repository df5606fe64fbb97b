package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export memories",
		Long:  "With --db-file, VACUUM INTO a byte-for-byte database snapshot. Otherwise, print every memory as a JSON array.",
		Run:   runExport,
	}

	cmd.Flags().String("db-file", "", "Write a raw database snapshot to this path instead of JSON")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	dbFile, _ := cmd.Flags().GetString("db-file")

	m, err := openMemory()
	if err != nil {
		exitErr("open memory", err)
	}
	defer m.Close()

	if dbFile != "" {
		if err := m.Export(cmd.Context(), dbFile); err != nil {
			exitErr("export", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"path":%q}`+"\n", dbFile)
		return
	}

	entries, err := m.ExportEntries(cmd.Context())
	if err != nil {
		exitErr("export", err)
	}

	b, _ := json.MarshalIndent(entries, "", "  ")
	fmt.Println(string(b))
}
