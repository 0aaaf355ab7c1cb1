package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/heladeria/order-form-api/models"
	"github.com/heladeria/order-form-api/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func setupFlavorTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := db.AutoMigrate(&models.Flavor{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

// useFlavorCatalog installs a seeded in-memory catalog for the duration of the test
func useFlavorCatalog(t *testing.T, names ...string) *gorm.DB {
	db := setupFlavorTestDB(t)
	for _, name := range names {
		if err := db.Create(&models.Flavor{Name: name}).Error; err != nil {
			t.Fatalf("Failed to seed flavor %q: %v", name, err)
		}
	}

	original := services.GetFlavorService()
	services.InitFlavorService(db)
	t.Cleanup(func() { services.SetFlavorService(original) })
	return db
}

// useMockSheets installs a mock appender for the duration of the test
func useMockSheets(t *testing.T) *services.MockSheetsService {
	mock := services.NewMockSheetsService()
	original := services.GetSheetsService()
	mock.SetAsMockForTesting()
	t.Cleanup(func() { services.SetSheetsService(original) })
	return mock
}

func doJSON(router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		encoded, _ := json.Marshal(b)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Response is not valid JSON: %v (%s)", err, w.Body.String())
	}
	return response
}

func errorCode(response map[string]interface{}) string {
	errorData, ok := response["error"].(map[string]interface{})
	if !ok {
		return ""
	}
	code, _ := errorData["code"].(string)
	return code
}
