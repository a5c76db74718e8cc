package router

import (
	"time"

	"eventledger/api"
	"eventledger/config"
	_ "eventledger/docs"
	"eventledger/middleware"
	"eventledger/service"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// 登录限流：每个 IP 每分钟最多 5 次
const (
	loginMaxAttempts = 5
	loginWindow      = time.Minute
)

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, svc *service.LedgerService) *gin.Engine {
	// 设置运行模式
	gin.SetMode(cfg.Server.Mode)

	r := gin.Default()

	// CORS 中间件
	r.Use(CORSMiddleware())

	// Swagger 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	{
		// 认证相关路由（无需登录）
		authHandler := api.NewAuthHandler(cfg)
		v1.POST("/auth/login", middleware.LoginRateLimit(loginMaxAttempts, loginWindow), authHandler.Login)

		// 需要 JWT 认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth())
		{
			authorized.GET("/auth/profile", authHandler.Profile)

			editionHandler := api.NewEditionHandler(svc)
			authorized.GET("/editions", editionHandler.List)
			authorized.POST("/editions", editionHandler.Create)

			edition := authorized.Group("/editions/:id")
			edition.GET("", editionHandler.Get)
			// EventSource 不能带请求头，token 走 query 参数
			edition.GET("/stream", editionHandler.Stream)

			// 收支
			txHandler := api.NewTransactionHandler(svc)
			transactions := edition.Group("/transactions")
			{
				transactions.GET("", txHandler.List)
				transactions.POST("", txHandler.Create)
				transactions.PUT("/:txId", txHandler.Update)
				transactions.DELETE("/:txId", txHandler.Delete)
			}

			// 银行对账
			bankHandler := api.NewBankHandler(svc)
			bank := edition.Group("/bank-lines")
			{
				bank.GET("", bankHandler.List)
				bank.POST("", bankHandler.Add)
				bank.POST("/import", bankHandler.Import)
				bank.POST("/clear", bankHandler.Clear)
				bank.DELETE("/:lineId", bankHandler.Delete)
				bank.GET("/:lineId/candidates", bankHandler.Candidates)
				bank.POST("/:lineId/link", bankHandler.Link)
				bank.POST("/:lineId/unlink", bankHandler.Unlink)
				bank.POST("/:lineId/create-transaction", bankHandler.CreateTransaction)
			}
			edition.PUT("/last-reconciled-date", bankHandler.SetLastReconciledDate)

			// 预算
			budgetHandler := api.NewBudgetHandler(svc)
			budget := edition.Group("/budget")
			{
				budget.GET("/comparison", budgetHandler.Comparison)
				budget.PUT("/year", budgetHandler.SetYear)
				budget.POST("/lines", budgetHandler.AddLine)
				budget.PUT("/lines/:lineId", budgetHandler.UpdateLine)
				budget.DELETE("/lines/:lineId", budgetHandler.DeleteLine)
				budget.POST("/categories", budgetHandler.AddCategory)
				budget.PUT("/categories", budgetHandler.RenameCategory)
				budget.DELETE("/categories", budgetHandler.DeleteCategory)
				budget.POST("/prior-year", budgetHandler.ImportPriorYear)
			}

			// 赞助商、通讯录、实物捐赠、志愿者、子活动、分类
			email := service.NewEmailService(&cfg.Email)
			api.NewDirectoryHandler(svc, email).RegisterCRUD(edition)

			// 归档、概览、备份
			archiveHandler := api.NewArchiveHandler(svc)
			edition.GET("/archives", archiveHandler.List)
			edition.POST("/archives", archiveHandler.Create)
			edition.DELETE("/archives/:archiveId", archiveHandler.Delete)
			edition.POST("/archives/:archiveId/load", archiveHandler.Load)
			edition.GET("/dashboard", archiveHandler.Dashboard)
			edition.GET("/backup", archiveHandler.Backup)
			edition.PUT("/backup", archiveHandler.Restore)

			// 导出
			exportHandler := api.NewExportHandler(svc, service.NewExportService())
			edition.GET("/export/:file", exportHandler.Export)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	return r
}

// CORSMiddleware CORS 跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Disposition")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
