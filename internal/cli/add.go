package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/engramhq/engram"
	"github.com/engramhq/engram/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "add [content]",
		Short: "Store a memory",
		Long:  "Store a memory. Content can be a positional arg or piped via stdin.",
		Run:   runAdd,
	}

	cmd.Flags().String("type", "factual", "Memory type: factual, episodic, relational, emotional, procedural, opinion")
	cmd.Flags().Float64("importance", 0, "Importance in [0,1] (default: the type's literature default)")
	cmd.Flags().StringSliceP("context", "c", nil, "Host-supplied context tags")
	cmd.Flags().Bool("pin", false, "Pin the memory into the core layer immediately")
	cmd.Flags().String("contradicts", "", "ID of a memory this one contradicts")

	RootCmd.AddCommand(cmd)
}

func runAdd(cmd *cobra.Command, args []string) {
	typ, _ := cmd.Flags().GetString("type")
	importance, _ := cmd.Flags().GetFloat64("importance")
	ctxTags, _ := cmd.Flags().GetStringSlice("context")
	pinned, _ := cmd.Flags().GetBool("pin")
	contradicts, _ := cmd.Flags().GetString("contradicts")

	var content string
	if len(args) > 0 {
		content = strings.Join(args, " ")
	} else {
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) == 0 {
			b, err := io.ReadAll(os.Stdin)
			if err != nil {
				exitErr("read stdin", err)
			}
			content = string(b)
		}
	}

	if strings.TrimSpace(content) == "" {
		exitErr("add", fmt.Errorf("content is required (positional arg or stdin)"))
	}

	m, err := openMemory()
	if err != nil {
		exitErr("open memory", err)
	}
	defer m.Close()

	entry, err := m.Add(cmd.Context(), strings.TrimSpace(content), engram.AddOptions{
		Type:        model.Type(typ),
		Importance:  importance,
		Context:     ctxTags,
		Pinned:      pinned,
		Contradicts: contradicts,
	})
	if err != nil {
		exitErr("add", err)
	}

	b, _ := json.MarshalIndent(entry, "", "  ")
	fmt.Println(string(b))
}
