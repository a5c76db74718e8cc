package api

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"eventledger/models"
	"eventledger/repository"
	"eventledger/service"
	"eventledger/store"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func editionRouter(svc *service.LedgerService) *gin.Engine {
	h := NewEditionHandler(svc)
	router := gin.New()
	router.GET("/editions", h.List)
	router.POST("/editions", h.Create)
	router.GET("/editions/:id", h.Get)
	router.GET("/editions/:id/stream", h.Stream)
	return router
}

func TestEditionHandler_CreateAndGet(t *testing.T) {
	svc := service.NewLedgerService(repository.New(store.NewMemoryStore()), nil)
	router := editionRouter(svc)

	w := doJSON(router, "POST", "/editions", CreateEditionRequest{Name: "Trail 2026"})
	require.Equal(t, 200, w.Code)
	var meta models.EditionMeta
	decodeData(t, w, &meta)
	require.NotEmpty(t, meta.ID)

	w = doJSON(router, "GET", "/editions/"+meta.ID, nil)
	require.Equal(t, 200, w.Code)
	var view EditionView
	decodeData(t, w, &view)
	assert.Equal(t, "Trail 2026", view.Edition.Name)
	assert.Len(t, view.Data.Budget, len(models.DefaultBudgetLines()))

	w = doJSON(router, "GET", "/editions", nil)
	var list []models.EditionMeta
	decodeData(t, w, &list)
	assert.Len(t, list, 1)
}

func TestEditionHandler_Errors(t *testing.T) {
	svc := service.NewLedgerService(repository.New(store.NewMemoryStore()), nil)
	router := editionRouter(svc)

	w := doJSON(router, "POST", "/editions", map[string]string{"name": ""})
	assert.Equal(t, 400, w.Code)

	w = doJSON(router, "POST", "/editions", map[string]string{"name": "   "})
	assert.Equal(t, 400, w.Code)

	w = doJSON(router, "GET", "/editions/missing", nil)
	assert.Equal(t, 404, w.Code)

	w = doJSON(router, "GET", "/editions/missing/stream", nil)
	assert.Equal(t, 404, w.Code)
}

func TestEditionHandler_ListFromDatabase(t *testing.T) {
	gormDB, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `documents` WHERE path LIKE").
		WithArgs(`events\_meta/%`).
		WillReturnRows(sqlmock.NewRows([]string{"path", "value", "updated_at"}).
			AddRow("events_meta/a", `{"id":"a","name":"Trail 2025","createdAt":1}`, time.Now()).
			AddRow("events_meta/b", `{"id":"b","name":"Trail 2026","createdAt":2}`, time.Now()))

	svc := service.NewLedgerService(repository.New(store.NewGormStore(gormDB)), nil)
	w := doJSON(editionRouter(svc), "GET", "/editions", nil)
	require.Equal(t, 200, w.Code)

	var list []models.EditionMeta
	decodeData(t, w, &list)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEditionHandler_ListDatabaseError(t *testing.T) {
	gormDB, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `documents`").WillReturnError(assert.AnError)

	svc := service.NewLedgerService(repository.New(store.NewGormStore(gormDB)), nil)
	w := doJSON(editionRouter(svc), "GET", "/editions", nil)
	assert.Equal(t, 500, w.Code)
}

// readEvent 读取一条 SSE 事件，返回事件名和数据
func readEvent(t *testing.T, r *bufio.Reader) (string, string) {
	t.Helper()
	var event, data string
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case line == "":
			if event != "" {
				return event, data
			}
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		}
	}
}

func TestEditionHandler_Stream(t *testing.T) {
	svc, editionID := setupLedger(t)
	srv := httptest.NewServer(editionRouter(svc))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, "GET", srv.URL+"/editions/"+editionID+"/stream", nil)
	require.NoError(t, err)
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	reader := bufio.NewReader(resp.Body)
	event, data := readEvent(t, reader)
	assert.Equal(t, "snapshot", event)
	assert.Contains(t, data, `"transactions":[]`)

	_, err = svc.CreateTransaction(context.Background(), editionID, service.TransactionInput{
		Date: "2025-05-01", Description: "Buvette", Category: "Ventes",
		Amount: decimal.NewFromInt(80), Type: models.TransactionIncome,
	})
	require.NoError(t, err)

	event, data = readEvent(t, reader)
	assert.Equal(t, "snapshot", event)
	assert.Contains(t, data, "Buvette")
}
