package api

import (
	"context"
	"testing"

	"eventledger/models"
	"eventledger/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func archiveRouter(svc *service.LedgerService) *gin.Engine {
	h := NewArchiveHandler(svc)
	router := gin.New()
	g := router.Group("/editions/:id")
	g.GET("/archives", h.List)
	g.POST("/archives", h.Create)
	g.DELETE("/archives/:archiveId", h.Delete)
	g.POST("/archives/:archiveId/load", h.Load)
	g.GET("/dashboard", h.Dashboard)
	g.GET("/backup", h.Backup)
	g.PUT("/backup", h.Restore)
	return router
}

func addIncome(t *testing.T, svc *service.LedgerService, ed, date, amount string) {
	t.Helper()
	_, err := svc.CreateTransaction(context.Background(), ed, service.TransactionInput{
		Date: date, Description: "Inscriptions", Category: "Inscriptions",
		Amount: decimal.RequireFromString(amount), Type: models.TransactionIncome, BudgetLineID: "inc1",
	})
	require.NoError(t, err)
}

func TestArchiveHandler_ArchiveAndLoad(t *testing.T) {
	svc, ed := setupLedger(t)
	router := archiveRouter(svc)
	base := "/editions/" + ed + "/archives"
	addIncome(t, svc, ed, "2025-04-01", "100")

	w := doJSON(router, "POST", base, CreateArchiveRequest{Name: "Clôture"})
	require.Equal(t, 200, w.Code)
	var a models.Archive
	decodeData(t, w, &a)
	assert.Equal(t, "Clôture", a.Name)
	assert.Len(t, a.Data.Transactions, 1)

	addIncome(t, svc, ed, "2025-04-02", "50")

	w = doJSON(router, "POST", base+"/"+a.ID+"/load", nil)
	require.Equal(t, 200, w.Code)
	data, err := svc.Snapshot(context.Background(), ed)
	require.NoError(t, err)
	assert.Len(t, data.Transactions, 1)
	assert.Len(t, data.Archives, 1)

	w = doJSON(router, "GET", base, nil)
	var list []models.Archive
	decodeData(t, w, &list)
	assert.Len(t, list, 1)

	w = doJSON(router, "DELETE", base+"/"+a.ID, nil)
	assert.Equal(t, 200, w.Code)
	w = doJSON(router, "POST", base+"/"+a.ID+"/load", nil)
	assert.Equal(t, 404, w.Code)
}

func TestArchiveHandler_Dashboard(t *testing.T) {
	svc, ed := setupLedger(t)
	router := archiveRouter(svc)
	addIncome(t, svc, ed, "2025-04-01", "100")

	w := doJSON(router, "GET", "/editions/"+ed+"/dashboard?year=2025", nil)
	require.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), `"year":2025`)
}

func TestArchiveHandler_BackupRestore(t *testing.T) {
	svc, ed := setupLedger(t)
	router := archiveRouter(svc)
	base := "/editions/" + ed + "/backup"
	addIncome(t, svc, ed, "2025-04-01", "100")

	w := doJSON(router, "GET", base, nil)
	require.Equal(t, 200, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	backup := w.Body.String()

	addIncome(t, svc, ed, "2025-04-02", "50")

	// 结构不合法：拒绝且不写入
	w = doJSON(router, "PUT", base, `{"transactions":{"0":{"id":"x"}}}`)
	assert.Equal(t, 400, w.Code)
	data, err := svc.Snapshot(context.Background(), ed)
	require.NoError(t, err)
	assert.Len(t, data.Transactions, 2)

	w = doJSON(router, "PUT", base, "not json")
	assert.Equal(t, 400, w.Code)

	w = doJSON(router, "PUT", base, backup)
	require.Equal(t, 200, w.Code, w.Body.String())
	data, err = svc.Snapshot(context.Background(), ed)
	require.NoError(t, err)
	assert.Len(t, data.Transactions, 1)

	w = doJSON(router, "PUT", "/editions/missing/backup", backup)
	assert.Equal(t, 404, w.Code)
}
