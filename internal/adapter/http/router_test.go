package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YelzhanWeb/plates/internal/adapter/logger"
	"github.com/YelzhanWeb/plates/internal/adapter/memory"
	"github.com/YelzhanWeb/plates/internal/adapter/metrics"
	"github.com/YelzhanWeb/plates/internal/adapter/rabbitmq"
	"github.com/YelzhanWeb/plates/internal/app/catalog"
	"github.com/YelzhanWeb/plates/internal/app/nutrition"
	"github.com/YelzhanWeb/plates/internal/app/order"
	"github.com/YelzhanWeb/plates/internal/app/plate"
	"github.com/YelzhanWeb/plates/internal/app/user"
	"github.com/YelzhanWeb/plates/internal/domain"
)

func newTestRouter(t *testing.T, cfg RouterConfig) http.Handler {
	t.Helper()
	store := memory.NewStore()
	m := metrics.New()
	log := logger.Nop()

	cat := catalog.NewService(store.Ingredients(), log)
	require.NoError(t, cat.Seed(context.Background()))

	svc := Services{
		Catalog:   cat,
		Nutrition: nutrition.NewService(cat, domain.DefaultTarget),
		Plates:    plate.NewService(store.Plates(), store.Users(), cat, m, log),
		Orders:    order.NewService(store.Orders(), store.Plates(), rabbitmq.NewNopPublisher(), m, log),
		Users:     user.NewService(store.Users(), log),
	}
	cfg.Version = "test"
	return NewRouter(svc, m, log, cfg)
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func createPlate(t *testing.T, h http.Handler, body map[string]interface{}) PlateResponse {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/plates", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[PlateResponse](t, rec)
}

func orderBody(plateID int64) map[string]interface{} {
	return map[string]interface{}{
		"plateId":         plateID,
		"customerName":    "Jane Doe",
		"customerPhone":   "+15551234567",
		"deliveryAddress": "1 Main Street, Almaty",
		"latitude":        43.238,
		"longitude":       76.945,
		"paymentMethod":   "cash",
	}
}

func createOrder(t *testing.T, h http.Handler, plateID int64) OrderResponse {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/orders", orderBody(plateID))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[OrderResponse](t, rec)
}

func TestIngredients_SeededOnce(t *testing.T) {
	h := newTestRouter(t, RouterConfig{})

	for i := 0; i < 2; i++ {
		rec := do(t, h, http.MethodGet, "/api/ingredients", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		items := decode[[]IngredientResponse](t, rec)
		require.Len(t, items, 6)
		assert.Equal(t, IngredientResponse{
			ID: 1, Name: "Chicken Breast", Type: "protein", Calories: 165, Protein: 31, Price: 0.7,
			Icon: "fas fa-drumstick-bite", Color: "red",
		}, items[0])
		assert.Equal(t, int64(6), items[5].ID)
	}
}

func TestIngredients_ByType(t *testing.T) {
	h := newTestRouter(t, RouterConfig{})

	rec := do(t, h, http.MethodGet, "/api/ingredients/carbohydrate", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	items := decode[[]IngredientResponse](t, rec)
	require.Len(t, items, 2)
	assert.Equal(t, "Brown Rice", items[0].Name)
	assert.Equal(t, "Boiled Potato", items[1].Name)

	rec = do(t, h, http.MethodGet, "/api/ingredients/dessert", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestPlates_CreateAndGet(t *testing.T) {
	h := newTestRouter(t, RouterConfig{})

	created := createPlate(t, h, map[string]interface{}{
		"name":          "Chicken & rice",
		"ingredientIds": []string{"1", "3"},
	})
	assert.Equal(t, 380, created.TotalCalories)
	assert.InDelta(t, 36.0, created.TotalProtein, 1e-9)
	assert.InDelta(t, 1.1, created.TotalPrice, 1e-9)
	assert.Equal(t, []string{"1", "3"}, created.IngredientIDs)
	assert.False(t, created.IsFavorite)
	assert.Nil(t, created.UserID)

	rec := do(t, h, http.MethodGet, "/api/plate/"+strconv.FormatInt(created.ID, 10), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created, decode[PlateResponse](t, rec))
}

func TestPlates_GetMissing(t *testing.T) {
	h := newTestRouter(t, RouterConfig{})

	rec := do(t, h, http.MethodGet, "/api/plate/999", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	body := decode[ErrorResponse](t, rec)
	assert.NotEmpty(t, body.Error)

	rec = do(t, h, http.MethodGet, "/api/plate/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlates_CreateRejects(t *testing.T) {
	h := newTestRouter(t, RouterConfig{})

	tests := []struct {
		name      string
		body      interface{}
		wantField string
	}{
		{"malformed json", `{"name":`, "body"},
		{"unknown field", `{"name":"x","ingredientIds":["1"],"owner":1}`, "owner"},
		{"missing ingredients", map[string]interface{}{"name": "x"}, "ingredientIds"},
		{"empty id", map[string]interface{}{"name": "x", "ingredientIds": []string{""}}, "ingredientIds[0]"},
		{"missing name", map[string]interface{}{"ingredientIds": []string{"1"}}, "name"},
		{"unknown ingredient", map[string]interface{}{"name": "x", "ingredientIds": []string{"1", "42"}}, ""},
		{"non numeric ingredient", map[string]interface{}{"name": "x", "ingredientIds": []string{"chicken"}}, ""},
		{"partial totals", map[string]interface{}{"name": "x", "ingredientIds": []string{"1"}, "totalCalories": 165}, "totalCalories"},
		{"totals mismatch", map[string]interface{}{
			"name": "x", "ingredientIds": []string{"1", "3"},
			"totalCalories": 999, "totalProtein": 36, "totalPrice": 1.1,
		}, ""},
		{"unknown owner", map[string]interface{}{"name": "x", "ingredientIds": []string{"1"}, "userId": 5}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/plates", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			body := decode[ErrorResponse](t, rec)
			assert.NotEmpty(t, body.Error)
			if tt.wantField != "" {
				require.NotEmpty(t, body.Errors)
				assert.Equal(t, tt.wantField, body.Errors[0].Field)
			}
		})
	}
}

func TestPlates_MatchingClientTotalsAccepted(t *testing.T) {
	h := newTestRouter(t, RouterConfig{})

	created := createPlate(t, h, map[string]interface{}{
		"name":          "Tuna salad",
		"ingredientIds": []string{"2", "5"},
		"totalCalories": 145,
		"totalProtein":  26,
		"totalPrice":    0.8,
	})
	assert.Equal(t, 145, created.TotalCalories)
}

func TestUsersAndOwnedPlates(t *testing.T) {
	h := newTestRouter(t, RouterConfig{})

	rec := do(t, h, http.MethodPost, "/api/users", map[string]string{"username": "alice", "password": "correct-horse"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "password")
	assert.NotContains(t, rec.Body.String(), "correct-horse")
	u := decode[UserResponse](t, rec)
	assert.Equal(t, "alice", u.Username)

	rec = do(t, h, http.MethodPost, "/api/users", map[string]string{"username": "alice", "password": "another-one"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/users", map[string]string{"username": "al", "password": "x"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, decode[ErrorResponse](t, rec).Errors, 2)

	createPlate(t, h, map[string]interface{}{
		"userId": u.ID, "name": "Favorite bowl", "ingredientIds": []string{"1", "5"}, "isFavorite": true,
	})
	createPlate(t, h, map[string]interface{}{
		"userId": u.ID, "name": "Weekday bowl", "ingredientIds": []string{"2", "4"},
	})
	createPlate(t, h, map[string]interface{}{"name": "Anonymous", "ingredientIds": []string{"3"}})

	userPath := "/api/plates/" + strconv.FormatInt(u.ID, 10)
	rec = do(t, h, http.MethodGet, userPath, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	owned := decode[[]PlateResponse](t, rec)
	require.Len(t, owned, 2)
	require.NotNil(t, owned[0].UserID)
	assert.Equal(t, u.ID, *owned[0].UserID)

	rec = do(t, h, http.MethodGet, userPath+"/favorites", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	favorites := decode[[]PlateResponse](t, rec)
	require.Len(t, favorites, 1)
	assert.Equal(t, "Favorite bowl", favorites[0].Name)

	rec = do(t, h, http.MethodGet, "/api/plates/999", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestOrders_Create(t *testing.T) {
	h := newTestRouter(t, RouterConfig{})
	p := createPlate(t, h, map[string]interface{}{"name": "Lunch", "ingredientIds": []string{"1", "3"}})

	before := time.Now().UTC().Add(-time.Second)
	o := createOrder(t, h, p.ID)
	assert.Equal(t, "pending", o.Status)
	assert.True(t, o.CreatedAt.After(before))
	assert.Equal(t, p.ID, o.PlateID)
	assert.InDelta(t, p.TotalPrice, o.TotalAmount, 1e-9)
	assert.Nil(t, o.Notes)

	tests := []struct {
		name   string
		mutate func(map[string]interface{})
		field  string
	}{
		{"unknown plate", func(b map[string]interface{}) { b["plateId"] = 999 }, ""},
		{"missing phone", func(b map[string]interface{}) { delete(b, "customerPhone") }, "customerPhone"},
		{"bad payment", func(b map[string]interface{}) { b["paymentMethod"] = "card" }, "paymentMethod"},
		{"missing latitude", func(b map[string]interface{}) { delete(b, "latitude") }, "latitude"},
		{"longitude out of range", func(b map[string]interface{}) { b["longitude"] = 200 }, "longitude"},
		{"unknown status field", func(b map[string]interface{}) { b["status"] = "delivered" }, "status"},
		{"amount mismatch", func(b map[string]interface{}) { b["totalAmount"] = 99.0 }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := orderBody(p.ID)
			tt.mutate(body)
			rec := do(t, h, http.MethodPost, "/api/orders", body)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			if tt.field != "" {
				errs := decode[ErrorResponse](t, rec).Errors
				require.NotEmpty(t, errs)
				assert.Equal(t, tt.field, errs[0].Field)
			}
		})
	}
}

func TestOrders_StatusLifecycle(t *testing.T) {
	h := newTestRouter(t, RouterConfig{})
	p := createPlate(t, h, map[string]interface{}{"name": "Lunch", "ingredientIds": []string{"1", "3"}})
	o := createOrder(t, h, p.ID)
	statusPath := "/api/orders/" + strconv.FormatInt(o.ID, 10) + "/status"

	rec := do(t, h, http.MethodPatch, statusPath, map[string]string{"status": "confirmed"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[OrderResponse](t, rec)

	expected := o
	expected.Status = "confirmed"
	assert.Equal(t, expected.Status, updated.Status)
	assert.True(t, expected.CreatedAt.Equal(updated.CreatedAt))
	updated.CreatedAt = expected.CreatedAt
	assert.Equal(t, expected, updated)

	cases := []struct {
		body map[string]string
		code int
	}{
		{map[string]string{"status": "confirmed"}, http.StatusBadRequest},
		{map[string]string{"status": "delivered"}, http.StatusBadRequest},
		{map[string]string{"status": "pending"}, http.StatusBadRequest},
		{map[string]string{"status": "shipped"}, http.StatusBadRequest},
		{map[string]string{}, http.StatusBadRequest},
	}
	for _, c := range cases {
		rec := do(t, h, http.MethodPatch, statusPath, c.body)
		assert.Equal(t, c.code, rec.Code, "body %v", c.body)
	}

	rec = do(t, h, http.MethodPatch, "/api/orders/999/status", map[string]string{"status": "confirmed"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	for _, next := range []string{"preparing", "delivered"} {
		rec := do(t, h, http.MethodPatch, statusPath, map[string]string{"status": next, "changedBy": "kitchen"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodGet, "/api/orders/"+strconv.FormatInt(o.ID, 10)+"/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	history := decode[[]StatusLogResponse](t, rec)
	require.Len(t, history, 4)
	assert.Equal(t, []string{"pending", "confirmed", "preparing", "delivered"},
		[]string{history[0].Status, history[1].Status, history[2].Status, history[3].Status})
	assert.Equal(t, "kitchen", history[3].ChangedBy)

	rec = do(t, h, http.MethodGet, "/api/orders/999/history", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOrders_ListGetAndStats(t *testing.T) {
	h := newTestRouter(t, RouterConfig{})
	p := createPlate(t, h, map[string]interface{}{"name": "Lunch", "ingredientIds": []string{"1", "3"}})

	first := createOrder(t, h, p.ID)
	second := createOrder(t, h, p.ID)
	rec := do(t, h, http.MethodPatch, "/api/orders/"+strconv.FormatInt(first.ID, 10)+"/status",
		map[string]string{"status": "confirmed"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/orders", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	all := decode[[]OrderResponse](t, rec)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)

	rec = do(t, h, http.MethodGet, "/api/orders?status=confirmed", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	confirmed := decode[[]OrderResponse](t, rec)
	require.Len(t, confirmed, 1)
	assert.Equal(t, first.ID, confirmed[0].ID)

	rec = do(t, h, http.MethodGet, "/api/orders?status=lost", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/orders/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"pending":1,"confirmed":1,"preparing":0,"delivered":0}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/orders/"+strconv.FormatInt(second.ID, 10), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	withPlate := decode[OrderWithPlateResponse](t, rec)
	assert.Equal(t, second.ID, withPlate.ID)
	assert.Equal(t, "Lunch", withPlate.Plate.Name)
	assert.Equal(t, 380, withPlate.Plate.TotalCalories)

	rec = do(t, h, http.MethodGet, "/api/orders/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNutritionPreview(t *testing.T) {
	h := newTestRouter(t, RouterConfig{})

	rec := do(t, h, http.MethodPost, "/api/nutrition/preview", map[string]interface{}{"ingredientIds": []string{"1", "3"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	preview := decode[NutritionPreviewResponse](t, rec)
	assert.Equal(t, 380, preview.Totals.Calories)
	assert.InDelta(t, 47.5, preview.Progress.CaloriesPercent, 1e-9)
	assert.InDelta(t, 72.0, preview.Progress.ProteinPercent, 1e-9)
	assert.Equal(t, TargetResponse{Calories: 800, Protein: 50}, preview.Target)
	assert.Len(t, preview.Ingredients, 2)

	rec = do(t, h, http.MethodPost, "/api/nutrition/preview", map[string]interface{}{"ingredientIds": []string{"7"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthMetricsAndRequestID(t *testing.T) {
	h := newTestRouter(t, RouterConfig{})

	rec := do(t, h, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	health := decode[HealthResponse](t, rec)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "test", health.Version)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", "trace-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "trace-123", rec.Header().Get("X-Request-Id"))

	rec = do(t, h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `plates_http_requests_total{method="GET",route="/health",status="200"} 2`)

	rec = do(t, h, http.MethodGet, "/api/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, h, http.MethodDelete, "/api/ingredients", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRateLimitOnWrites(t *testing.T) {
	h := newTestRouter(t, RouterConfig{RequestsPerSecond: 0.001, Burst: 1})

	body := map[string]interface{}{"ingredientIds": []string{"1"}}
	rec := do(t, h, http.MethodPost, "/api/nutrition/preview", body)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/nutrition/preview", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// Reads are not limited.
	rec = do(t, h, http.MethodGet, "/api/ingredients", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func previewFrom(t *testing.T, h http.Handler, headers map[string]string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/nutrition/preview", bytes.NewReader([]byte(`{"ingredientIds":["1"]}`)))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestRateLimit_IgnoresForwardedHeaders(t *testing.T) {
	h := newTestRouter(t, RouterConfig{RequestsPerSecond: 0.001, Burst: 1})

	codes := make([]int, 0, 20)
	for i := 0; i < 20; i++ {
		codes = append(codes, previewFrom(t, h, map[string]string{
			"X-Forwarded-For": "203.0.113." + strconv.Itoa(i+1),
			"X-Real-IP":       "198.51.100." + strconv.Itoa(i+1),
		}))
	}

	assert.Equal(t, http.StatusOK, codes[0])
	for i, code := range codes[1:] {
		assert.Equal(t, http.StatusTooManyRequests, code, "request %d", i+2)
	}
}

func TestRateLimit_TrustedProxyHeaders(t *testing.T) {
	h := newTestRouter(t, RouterConfig{RequestsPerSecond: 0.001, Burst: 1, TrustProxyHeaders: true})

	assert.Equal(t, http.StatusOK, previewFrom(t, h, map[string]string{"X-Real-IP": "203.0.113.1"}))
	assert.Equal(t, http.StatusOK, previewFrom(t, h, map[string]string{"X-Real-IP": "203.0.113.2"}))
	assert.Equal(t, http.StatusTooManyRequests, previewFrom(t, h, map[string]string{"X-Real-IP": "203.0.113.1"}))
}

func TestRateLimit_ZeroRateDisablesLimiter(t *testing.T) {
	h := newTestRouter(t, RouterConfig{RequestsPerSecond: 0, Burst: 0})

	for i := 0; i < 10; i++ {
		assert.Equal(t, http.StatusOK, previewFrom(t, h, nil))
	}
}
