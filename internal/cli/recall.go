package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/engramhq/engram"
)

func init() {
	cmd := &cobra.Command{
		Use:   "recall [query]",
		Short: "Retrieve and rank memories relevant to a query",
		Long:  "Run Engram's full retrieval procedure: candidate gathering, activation scoring, confidence filtering, ranking.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runRecall,
	}

	cmd.Flags().IntP("limit", "l", 0, "Max results (default: the configured recall limit)")
	cmd.Flags().Float64("min-confidence", 0, "Drop results below this combined confidence")
	cmd.Flags().Bool("no-graph", false, "Disable entity-graph and Hebbian-neighbor expansion")
	cmd.Flags().Bool("include-archive", false, "Include archived memories")
	cmd.Flags().Bool("allow-contradicted", false, "Include memories that have been contradicted")
	cmd.Flags().StringSlice("entity", nil, "Query entity ids to seed graph expansion")
	cmd.Flags().String("session", "", "Gate this recall through a session's working memory")

	RootCmd.AddCommand(cmd)
}

func runRecall(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")
	minConf, _ := cmd.Flags().GetFloat64("min-confidence")
	noGraph, _ := cmd.Flags().GetBool("no-graph")
	includeArchive, _ := cmd.Flags().GetBool("include-archive")
	allowContradicted, _ := cmd.Flags().GetBool("allow-contradicted")
	entities, _ := cmd.Flags().GetStringSlice("entity")
	sessionID, _ := cmd.Flags().GetString("session")
	query := strings.Join(args, " ")

	m, err := openMemory()
	if err != nil {
		exitErr("open memory", err)
	}
	defer m.Close()

	opts := engram.DefaultRecallOptions()
	opts.Limit = limit
	opts.MinConfidence = minConf
	opts.GraphExpand = !noGraph
	opts.IncludeArchive = includeArchive
	opts.AllowContradicted = allowContradicted
	opts.QueryEntities = entities

	if sessionID != "" {
		res, err := m.SessionRecall(cmd.Context(), sessionID, query, opts)
		if err != nil {
			exitErr("recall", err)
		}
		printRecallResults(res.Results)
		return
	}

	results, err := m.Recall(cmd.Context(), query, opts)
	if err != nil {
		exitErr("recall", err)
	}
	printRecallResults(results)
}

func printRecallResults(results interface{}) {
	b, _ := json.MarshalIndent(results, "", "  ")
	fmt.Println(string(b))
}
