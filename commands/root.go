package commands

import (
	"fmt"

	"eventledger/buildinfo"
	"eventledger/config"
	"eventledger/database"
	"eventledger/repository"
	"eventledger/service"
	"eventledger/store"

	"github.com/spf13/cobra"
)

// openLedger 按配置打开存储并创建服务；memory 为 true 时不连接数据库
var openLedger = func(cfg *config.Config, memory bool) (*service.LedgerService, error) {
	var st store.Store
	if memory {
		st = store.NewMemoryStore()
	} else {
		if err := database.Init(cfg); err != nil {
			return nil, fmt.Errorf("数据库初始化失败: %w", err)
		}
		st = store.NewGormStore(database.GetDB())
	}
	return service.NewLedgerService(repository.New(st), &cfg.Ledger), nil
}

type rootOptions struct {
	configFile string
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(o.configFile)
	if err != nil {
		return nil, fmt.Errorf("加载配置失败: %w", err)
	}
	return cfg, nil
}

// NewRootCommand 创建根命令并注册全部子命令
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "eventledger",
		Short:   "活动协会记账：收支、银行对账、预算与赞助",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "外部配置文件路径（可选）")

	rootCmd.AddCommand(
		newServeCommand(opts),
		newEditionsCommand(opts),
		newImportCommand(opts),
		newMirrorCommand(opts),
		newVersionCommand(),
	)

	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "显示版本信息",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "eventledger %s (commit: %s, built: %s)\n", buildinfo.Version, buildinfo.Commit, buildinfo.Date)
		},
	}
}
