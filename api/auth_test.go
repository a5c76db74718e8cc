package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"eventledger/config"
	"eventledger/middleware"
	"eventledger/repository"
	"eventledger/service"
	"eventledger/store"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, func()) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock, func() {
		sqlDB.Close()
	}
}

// setupLedger 内存存储上的记账服务和一个新届次
func setupLedger(t *testing.T) (*service.LedgerService, string) {
	t.Helper()
	svc := service.NewLedgerService(repository.New(store.NewMemoryStore()), &config.LedgerConfig{VolunteerHourlyRate: "11.65"})
	meta, err := svc.CreateEdition(context.Background(), "Trail des Crêtes")
	require.NoError(t, err)
	return svc, meta.ID
}

func doJSON(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// decodeData 解析响应信封并把 data 解到 out
func decodeData(t *testing.T, w *httptest.ResponseRecorder, out interface{}) Response {
	t.Helper()
	var resp struct {
		Response
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	if out != nil && len(resp.Data) > 0 {
		require.NoError(t, json.Unmarshal(resp.Data, out))
	}
	return resp.Response
}

func authConfig(t *testing.T, password string) *config.Config {
	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "debug"},
		JWT:    config.JWTConfig{Secret: "test-secret", ExpireTime: time.Hour},
		Auth:   config.AuthConfig{Username: "tresorier"},
	}
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		require.NoError(t, err)
		cfg.Auth.PasswordHash = string(hash)
	}
	middleware.InitJWT(cfg)
	return cfg
}

func TestAuthHandler_Login(t *testing.T) {
	cfg := authConfig(t, "secret123")

	router := gin.New()
	router.POST("/auth/login", NewAuthHandler(cfg).Login)

	w := doJSON(router, "POST", "/auth/login", LoginRequest{Username: "tresorier", Password: "secret123"})
	assert.Equal(t, 200, w.Code)

	var data LoginResponse
	resp := decodeData(t, w, &data)
	assert.Equal(t, "登录成功", resp.Message)
	assert.Equal(t, "tresorier", data.Username)
	assert.Equal(t, int64(3600), data.ExpiresIn)

	claims, err := middleware.ParseToken(data.Token)
	require.NoError(t, err)
	assert.Equal(t, "tresorier", claims.Username)
}

func TestAuthHandler_Login_Rejected(t *testing.T) {
	cfg := authConfig(t, "secret123")
	router := gin.New()
	router.POST("/auth/login", NewAuthHandler(cfg).Login)

	tests := []struct {
		name string
		body interface{}
		code int
	}{
		{"密码错误", LoginRequest{Username: "tresorier", Password: "wrong"}, 401},
		{"用户名错误", LoginRequest{Username: "admin", Password: "secret123"}, 401},
		{"缺少密码", map[string]string{"username": "tresorier"}, 400},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(router, "POST", "/auth/login", tt.body)
			assert.Equal(t, tt.code, w.Code)
		})
	}
}

func TestAuthHandler_Login_NoPasswordConfigured(t *testing.T) {
	cfg := authConfig(t, "")
	router := gin.New()
	router.POST("/auth/login", NewAuthHandler(cfg).Login)

	w := doJSON(router, "POST", "/auth/login", LoginRequest{Username: "tresorier", Password: "anything"})
	assert.Equal(t, 401, w.Code)
}

func TestAuthHandler_Profile(t *testing.T) {
	cfg := authConfig(t, "secret123")
	token, err := middleware.GenerateToken("tresorier", time.Hour)
	require.NoError(t, err)

	router := gin.New()
	router.GET("/auth/profile", middleware.JWTAuth(), NewAuthHandler(cfg).Profile)

	req := httptest.NewRequest("GET", "/auth/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "tresorier")
}
