package api

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/ppestock/internal/auth"
	"github.com/erazemk/ppestock/internal/db"
	"github.com/erazemk/ppestock/internal/model"
	"github.com/erazemk/ppestock/internal/persist/sqlstore"
	"github.com/erazemk/ppestock/internal/seed"
	"github.com/erazemk/ppestock/internal/tracker"
)

const (
	testJWTSecret = "test-secret"
	testPassword  = "shared-password"
)

var testNow = func() time.Time { return time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC) }

func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	database := db.NewTestDB(t)

	tr, err := tracker.Open(context.Background(), sqlstore.New(database), tracker.Options{
		Seed:        seed.State(),
		MaxPerIssue: 50,
		Now:         testNow,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)

	hash, err := auth.HashPassword(testPassword)
	require.NoError(t, err)

	server := httptest.NewServer(NewRouter(Deps{
		Tracker:      tr,
		DB:           database,
		JWTSecret:    testJWTSecret,
		Password:     auth.NewPassword(hash),
		Now:          testNow,
	}))
	t.Cleanup(server.Close)
	return server
}

func login(t *testing.T, server *httptest.Server, role string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"role": role, "password": testPassword})
	resp, err := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotEmpty(t, out["token"])
	return out["token"]
}

func do(t *testing.T, method, url, token string, body any, headers ...string) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader = http.NoBody
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp, out
}

func issueBody(itemID int64, code string, qty int) map[string]any {
	return map[string]any{
		"type": "OUT", "itemId": itemID, "variantCode": code, "quantity": qty,
		"employee": "HASAN ATIK", "proofRef": "proof-1",
	}
}

func TestLoginEndpoint(t *testing.T) {
	server := setupTestServer(t)

	body, _ := json.Marshal(map[string]string{"role": "admin", "password": "wrong-password"})
	resp, err := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	body, _ = json.Marshal(map[string]string{"role": "owner", "password": testPassword})
	resp, err = http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	token := login(t, server, model.RoleManager)
	resp, out := do(t, "GET", server.URL+"/api/auth/me", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "manager", out["role"])
}

func TestUnauthenticatedRequest(t *testing.T) {
	server := setupTestServer(t)
	resp, err := http.Get(server.URL + "/api/items")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestIssueAndOverdraw(t *testing.T) {
	server := setupTestServer(t)
	token := login(t, server, model.RoleUser)

	resp, out := do(t, "POST", server.URL+"/api/transactions", token, issueBody(1, "8", 3))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	result := out["result"].(map[string]any)
	assert.Equal(t, float64(4), result["balance"])
	assert.Equal(t, "Stock reduced: Safety Shoe (Size 8) - 3 units", result["message"])

	resp, out = do(t, "POST", server.URL+"/api/transactions", token, issueBody(1, "8", 5))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "insufficient_stock", out["kind"])
	assert.Equal(t, float64(4), out["current"])
	assert.Equal(t, float64(5), out["requested"])

	resp, out = do(t, "POST", server.URL+"/api/transactions", token, issueBody(2, "STD", 51))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, float64(50), out["max"])

	body := issueBody(2, "STD", 1)
	delete(body, "proofRef")
	resp, out = do(t, "POST", server.URL+"/api/transactions", token, body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "validation", out["kind"])

	resp, _ = do(t, "POST", server.URL+"/api/transactions", token, issueBody(42, "STD", 1))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	req, _ := http.NewRequest("GET", server.URL+"/api/transactions?actor=hasan", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	listResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer listResp.Body.Close()
	var txs []model.Transaction
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&txs))
	require.Len(t, txs, 1)
	assert.Equal(t, 3, txs[0].Quantity)
}

func TestPartialReturnEndpoint(t *testing.T) {
	server := setupTestServer(t)
	token := login(t, server, model.RoleUser)

	resp, out := do(t, "POST", server.URL+"/api/transactions", token, issueBody(2, "STD", 10))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := out["transaction"].(map[string]any)["id"].(string)

	resp, out = do(t, "POST", server.URL+"/api/transactions/"+id+"/returns", token, map[string]int{"quantity": 4})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(6), out["entry"].(map[string]any)["remainingQuantity"])

	resp, out = do(t, "POST", server.URL+"/api/transactions/"+id+"/returns", token, map[string]int{"quantity": 7})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_quantity", out["kind"])
	assert.Equal(t, float64(6), out["remaining"])

	resp, out = do(t, "GET", server.URL+"/api/transactions/"+id, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, out["returnHistory"], 1)

	resp, _ = do(t, "POST", server.URL+"/api/transactions/nope/returns", token, map[string]int{"quantity": 1})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCatalogRequiresManager(t *testing.T) {
	server := setupTestServer(t)
	user := login(t, server, model.RoleUser)
	manager := login(t, server, model.RoleManager)

	item := map[string]any{
		"category": "Visibility", "name": " Safety  Vest ",
		"variants": []map[string]any{{"code": " xl", "label": "extra lareg", "balance": 12}},
	}
	resp, _ := do(t, "POST", server.URL+"/api/items", user, item)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, out := do(t, "POST", server.URL+"/api/items", manager, item)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, float64(11), out["id"])
	assert.Equal(t, "Safety Vest", out["name"])
	variant := out["variants"].([]any)[0].(map[string]any)
	assert.Equal(t, "XL", variant["code"])
	assert.Equal(t, "Extra Large", variant["label"])

	resp, out = do(t, "POST", server.URL+"/api/items/11/variants/XL/restock", manager, map[string]int{"quantity": 8})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(20), out["balance"])

	resp, out = do(t, "DELETE", server.URL+"/api/items/11/variants/XL", manager, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "in_use", out["kind"])

	resp, _ = do(t, "PUT", server.URL+"/api/items/11", manager, map[string]string{"category": "Visibility", "name": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, out = do(t, "GET", server.URL+"/api/stock/summary", user, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(11), out["totalItems"])
}

func TestStateVersioning(t *testing.T) {
	server := setupTestServer(t)
	token := login(t, server, model.RoleUser)

	resp, out := do(t, "GET", server.URL+"/api/state", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `"1"`, resp.Header.Get("ETag"))

	resp, _ = do(t, "PUT", server.URL+"/api/state", token, out)
	assert.Equal(t, http.StatusPreconditionRequired, resp.StatusCode)

	resp, put := do(t, "PUT", server.URL+"/api/state", token, out, "If-Match", `"1"`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), put["version"])

	resp, put = do(t, "PUT", server.URL+"/api/state", token, out, "If-Match", "1")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "conflict", put["kind"])
}

func pngPhoto(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 32, 24))))
	return buf.Bytes()
}

func TestProofUploadAndExport(t *testing.T) {
	server := setupTestServer(t)
	user := login(t, server, model.RoleUser)
	manager := login(t, server, model.RoleManager)

	var form bytes.Buffer
	mw := multipart.NewWriter(&form)
	fw, err := mw.CreateFormFile("image", "photo.png")
	require.NoError(t, err)
	fw.Write(pngPhoto(t))
	mw.WriteField("item", "Safety Shoe")
	mw.WriteField("variant", "8")
	mw.WriteField("lat", "25.2")
	mw.WriteField("lng", "55.3")
	require.NoError(t, mw.Close())

	req, _ := http.NewRequest("PUT", server.URL+"/api/proofs", &form)
	req.Header.Set("Authorization", "Bearer "+user)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	var proof map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&proof))
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	ref := proof["ref"].(string)
	assert.Equal(t, "Safety Shoe_8_1792400400000.jpg", proof["fileName"])

	req, _ = http.NewRequest("GET", server.URL+"/api/proofs/"+ref, nil)
	req.Header.Set("Authorization", "Bearer "+user)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/jpeg", resp.Header.Get("Content-Type"))

	body := issueBody(1, "8", 1)
	body["proofRef"] = ref
	resp, _ = do(t, "POST", server.URL+"/api/transactions", user, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = do(t, "GET", server.URL+"/api/export?date=2026-10-19", user, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	req, _ = http.NewRequest("GET", server.URL+"/api/export?date=2026-10-19", nil)
	req.Header.Set("Authorization", "Bearer "+manager)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, xlsxMIME, resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "Transactions_2026-10-19.xlsx")

	resp, out := do(t, "GET", server.URL+"/api/export?date=2026-01-01", manager, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "no_transactions", out["kind"])
}

func TestResetRequiresAdminAndConfirmation(t *testing.T) {
	server := setupTestServer(t)
	user := login(t, server, model.RoleUser)
	admin := login(t, server, model.RoleAdmin)

	resp, _ := do(t, "POST", server.URL+"/api/transactions", user, issueBody(4, "STD", 2))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = do(t, "DELETE", server.URL+"/api/transactions?confirm=true", user, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = do(t, "DELETE", server.URL+"/api/transactions", admin, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, "DELETE", server.URL+"/api/transactions?confirm=true", admin, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, out := do(t, "GET", server.URL+"/api/stock/summary", user, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1107-2), out["totalQuantity"])
}

func TestEmployeesEndpoints(t *testing.T) {
	server := setupTestServer(t)
	manager := login(t, server, model.RoleManager)

	resp, _ := do(t, "POST", server.URL+"/api/employees", manager, model.Employee{Name: "NEW HIRE", Department: "Safety"})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, out := do(t, "POST", server.URL+"/api/employees", manager, model.Employee{Name: "NEW HIRE"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "duplicate", out["kind"])

	resp, _ = do(t, "DELETE", server.URL+"/api/employees/NEW%20HIRE", manager, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = do(t, "DELETE", server.URL+"/api/employees/NEW%20HIRE", manager, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, "POST", server.URL+"/api/sites", manager, map[string]string{"name": "Site 9"})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, out = do(t, "GET", server.URL+"/api/roster", manager, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []any{"Site 9"}, out["sites"])
}
