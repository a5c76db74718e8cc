package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newEditionsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "editions",
		Short: "列出全部届次",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			svc, err := openLedger(cfg, false)
			if err != nil {
				return err
			}
			list, err := svc.ListEditions(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, e := range list {
				created := time.UnixMilli(e.CreatedAt).Format("2006-01-02")
				fmt.Fprintf(out, "%s\t%s\t%s\n", e.ID, created, e.Name)
			}
			return nil
		},
	}
}
