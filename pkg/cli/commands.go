package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type datasetPayload struct {
	ID          string            `json:"id"`
	DisplayName string            `json:"display_name"`
	StorageKey  string            `json:"storage_key"`
	Schema      map[string]string `json:"schema"`
	SizeBytes   int64             `json:"size_bytes"`
	Rows        int               `json:"rows"`
}

func newUploadCmd(client func() *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "upload FILE...",
		Short: "Upload tabular files as datasets",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				var payload datasetPayload
				if err := client().UploadFile(path, &payload); err != nil {
					return fmt.Errorf("upload %s: %w", path, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "uploaded %s (%d rows, key %s)\n",
					payload.DisplayName, payload.Rows, payload.StorageKey)
			}
			return nil
		},
	}
}

type queryPayload struct {
	Columns  []string        `json:"columns"`
	Rows     [][]interface{} `json:"rows"`
	RowCount int             `json:"row_count"`
}

func newQueryCmd(client func() *Client) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "query [SQL]",
		Short: "Run SQL across all datasets",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sql := ""
			if len(args) == 1 {
				sql = args[0]
			} else if stat, err := os.Stdin.Stat(); err == nil && (stat.Mode()&os.ModeCharDevice) == 0 {
				// No argument: read the statement from a stdin pipe.
				data, err := io.ReadAll(os.Stdin)
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				sql = strings.TrimSpace(string(data))
			}
			if sql == "" {
				return fmt.Errorf("provide SQL as an argument or via stdin")
			}

			var payload queryPayload
			if err := client().doJSON("POST", "/query", map[string]string{"sql": sql}, &payload); err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), payload)
			}
			printTable(cmd.OutOrStdout(), payload.Columns, payload.Rows)
			fmt.Fprintf(cmd.OutOrStdout(), "(%d rows)\n", payload.RowCount)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw JSON response")
	return cmd
}

func newExportCmd(client func() *Client) *cobra.Command {
	var format, name string

	cmd := &cobra.Command{
		Use:   "export SQL",
		Short: "Store a query result as a new dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]string{"sql": args[0], "format": format, "name": name}
			var payload datasetPayload
			if err := client().doJSON("POST", "/export", body, &payload); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %s (key %s)\n", payload.DisplayName, payload.StorageKey)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "parquet", "output format: csv, json, or parquet")
	cmd.Flags().StringVar(&name, "name", "", "dataset name (defaults to a timestamped name)")
	return cmd
}

func newDatasetsCmd(client func() *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "datasets",
		Short: "List datasets with live storage sizes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var payload struct {
				Datasets []struct {
					DisplayName  string    `json:"display_name"`
					SizeBytes    int64     `json:"size_bytes"`
					LastModified time.Time `json:"last_modified"`
				} `json:"datasets"`
			}
			if err := client().doJSON("GET", "/datasets", nil, &payload); err != nil {
				return err
			}
			for _, ds := range payload.Datasets {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d bytes\t%s\n",
					ds.DisplayName, ds.SizeBytes, ds.LastModified.Format(time.RFC3339))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "(%d datasets)\n", len(payload.Datasets))
			return nil
		},
	}
}

func newReconcileCmd(client func() *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Trigger an immediate cleanup and backfill sweep",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var status struct {
				RecordsRemoved int    `json:"records_removed"`
				BlobsEmbedded  int    `json:"blobs_embedded"`
				Failures       int    `json:"failures"`
				LastError      string `json:"last_error"`
			}
			if err := client().doJSON("POST", "/reconcile", nil, &status); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d records, embedded %d blobs, %d failures\n",
				status.RecordsRemoved, status.BlobsEmbedded, status.Failures)
			if status.LastError != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "last error: %s\n", status.LastError)
			}
			return nil
		},
	}
}

func newSearchCmd(client func() *Client) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search QUESTION",
		Short: "Find dataset rows semantically close to a question",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := queryPath("/search", map[string]string{
				"q": args[0],
				"k": strconv.Itoa(limit),
			})
			var payload struct {
				Hits []struct {
					Source   string  `json:"source"`
					Text     string  `json:"text"`
					Distance float64 `json:"distance"`
				} `json:"hits"`
			}
			if err := client().doJSON("GET", path, nil, &payload); err != nil {
				return err
			}
			for _, hit := range payload.Hits {
				fmt.Fprintf(cmd.OutOrStdout(), "%.4f\t%s\t%s\n", hit.Distance, hit.Source, hit.Text)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 5, "number of hits to return")
	return cmd
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printTable renders a result set with fixed-width columns.
func printTable(w io.Writer, columns []string, rows [][]interface{}) {
	widths := make([]int, len(columns))
	cells := make([][]string, len(rows))
	for i, col := range columns {
		widths[i] = len(col)
	}
	for r, row := range rows {
		cells[r] = make([]string, len(columns))
		for c := range columns {
			s := ""
			if c < len(row) && row[c] != nil {
				s = fmt.Sprintf("%v", row[c])
			}
			cells[r][c] = s
			if len(s) > widths[c] {
				widths[c] = len(s)
			}
		}
	}

	printRow := func(vals []string) {
		for i, v := range vals {
			fmt.Fprintf(w, "%-*s", widths[i]+2, v)
		}
		fmt.Fprintln(w)
	}
	printRow(columns)
	for _, row := range cells {
		printRow(row)
	}
}
