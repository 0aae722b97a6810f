package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"objgate/internal/service"
)

var presignCmd = &cobra.Command{
	Use:   "presign <extension>",
	Short: "Print a presigned upload URL for a new key",
	Example: `  objgate presign .pdf
  curl -X PUT -H "Content-Type: application/pdf" --data-binary @doc.pdf "$(objgate presign .pdf | head -1)"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer e.log.Sync()

		res, err := service.NewStorageService(e.store, e.log).GetUploadURL(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, res.SignedURL)
		fmt.Fprintf(out, "key:          %s\n", res.FileKey)
		fmt.Fprintf(out, "content-type: %s\n", res.ContentType)
		fmt.Fprintf(out, "expires:      %s\n", res.ExpiresAt.Format("2006-01-02 15:04:05Z07:00"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(presignCmd)
}
