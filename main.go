package main

import (
	"os"

	"eventledger/commands"
)

// @title 活动账本 API
// @version 1.0
// @description 赛事/活动协会的收支、银行对账、预算与赞助管理 API
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
