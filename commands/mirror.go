package commands

import (
	"fmt"

	"eventledger/service"
	"eventledger/sink"

	"github.com/spf13/cobra"
)

func newMirrorCommand(opts *rootOptions) *cobra.Command {
	var out string
	var year int

	cmd := &cobra.Command{
		Use:   "mirror <届次ID>",
		Short: "把收支镜像到 JSON 文件或 Elasticsearch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := sink.Parse(out)
			if err != nil {
				return err
			}
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			svc, err := openLedger(cfg, false)
			if err != nil {
				return err
			}

			txs, err := svc.ListTransactions(cmd.Context(), args[0], service.TransactionFilter{Year: year})
			if err != nil {
				return err
			}
			if err := target.Write(sink.Pointers(txs)); err != nil {
				return fmt.Errorf("写入镜像失败: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已写入 %d 条收支\n", len(txs))
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "输出地址：jsonfile:/path/file.json 或 es8:http://elasticsearch:9200")
	_ = cmd.MarkFlagRequired("out")
	cmd.Flags().IntVar(&year, "year", 0, "只镜像该年份的收支，0 表示全部")

	return cmd
}
