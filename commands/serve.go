package commands

import (
	"log"
	"strings"

	"eventledger/config"
	"eventledger/middleware"
	"eventledger/router"

	"github.com/spf13/cobra"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	var port string
	var memory bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "启动 HTTP 服务",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			// 命令行参数覆盖端口配置
			if port != "" {
				// 自动添加冒号前缀
				if !strings.HasPrefix(port, ":") {
					port = ":" + port
				}
				cfg.Server.Port = port
				log.Printf("命令行指定端口: %s", port)
			}

			config.PrintConfig()

			svc, err := openLedger(cfg, memory)
			if err != nil {
				return err
			}
			if memory {
				log.Println("警告: 使用内存存储，进程退出后数据丢失")
			}

			middleware.InitJWT(cfg)
			r := router.SetupRouter(cfg, svc)

			log.Printf("==========================================")
			log.Printf("  活动账本已启动")
			log.Printf("==========================================")
			log.Printf("  Swagger:  http://localhost%s/swagger/index.html", cfg.Server.Port)
			log.Printf("  API接口:  http://localhost%s/api/v1/", cfg.Server.Port)
			log.Printf("==========================================")

			return r.Run(cfg.Server.Port)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "监听端口，如: 8080 或 :8080")
	cmd.Flags().BoolVar(&memory, "memory", false, "使用内存存储（演示用，不连接数据库）")

	return cmd
}
