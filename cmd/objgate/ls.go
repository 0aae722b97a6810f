package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"objgate/internal/service"
)

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List objects in the bucket",
	Long:  `Prints one page (up to 1000 keys) of the configured bucket.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer e.log.Sync()

		items, err := service.NewStorageService(e.store, e.log).ListFiles(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tSIZE\tLAST MODIFIED")
		for _, it := range items {
			fmt.Fprintf(w, "%s\t%d\t%s\n", it.Key, it.Size, it.LastModified.Format(time.RFC3339))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(lsCmd)
}
