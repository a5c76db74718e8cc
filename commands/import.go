package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newImportCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <届次ID> <对账单文件>",
		Short: "导入银行对账单",
		Long:  "导入分号或制表符分隔的银行对账单，不晚于最后对账日期的行会被跳过。",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("读取对账单失败: %w", err)
			}
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			svc, err := openLedger(cfg, false)
			if err != nil {
				return err
			}

			res, err := svc.ImportStatement(cmd.Context(), args[0], string(raw))
			if res != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "导入 %d 行，跳过 %d 行，重复 %d 行\n", res.Accepted, res.Skipped, res.Duplicates)
			}
			return err
		},
	}
}
