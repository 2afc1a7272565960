package web

import (
	"bytes"
	"context"
	"database/sql"
	"image"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/ppestock/internal/api"
	"github.com/erazemk/ppestock/internal/auth"
	"github.com/erazemk/ppestock/internal/db"
	"github.com/erazemk/ppestock/internal/persist/kvstore"
	"github.com/erazemk/ppestock/internal/seed"
	"github.com/erazemk/ppestock/internal/tracker"
	"github.com/erazemk/ppestock/internal/txlog"
)

const testPassword = "web-password"

func setupTestServer(t *testing.T) (*httptest.Server, *tracker.Tracker) {
	server, tr, _ := setupTestServerDB(t)
	return server, tr
}

func setupTestServerDB(t *testing.T) (*httptest.Server, *tracker.Tracker, *sql.DB) {
	t.Helper()
	database := db.NewTestDB(t)
	now := func() time.Time { return time.Date(2026, 10, 19, 8, 15, 0, 0, time.UTC) }

	tr, err := tracker.Open(context.Background(), kvstore.New(database), tracker.Options{
		Seed:   seed.State(),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:    now,
	})
	require.NoError(t, err)
	hash, err := auth.HashPassword(testPassword)
	require.NoError(t, err)

	router, err := NewRouter(api.Deps{
		Tracker:   tr,
		DB:        database,
		JWTSecret: "web-secret",
		Password:  auth.NewPassword(hash),
		Now:       now,
	})
	require.NoError(t, err)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server, tr, database
}

// noRedirect keeps 303 responses visible to the test.
var noRedirect = &http.Client{
	CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
}

func tryLogin(t *testing.T, server *httptest.Server, role, password string) *http.Response {
	t.Helper()
	resp, err := noRedirect.PostForm(server.URL+"/login", url.Values{
		"role": {role}, "password": {password}, "name": {"Tester"},
	})
	require.NoError(t, err)
	resp.Body.Close()
	return resp
}

func login(t *testing.T, server *httptest.Server, role string) *http.Cookie {
	t.Helper()
	resp := tryLogin(t, server, role, testPassword)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	for _, c := range resp.Cookies() {
		if c.Name == "token" {
			return c
		}
	}
	require.FailNow(t, "no token cookie set")
	return nil
}

func get(t *testing.T, server *httptest.Server, path string, cookie *http.Cookie) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest("GET", server.URL+path, nil)
	require.NoError(t, err)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := noRedirect.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func postForm(t *testing.T, server *httptest.Server, path string, cookie *http.Cookie, form url.Values) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest("POST", server.URL+path, strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	resp, err := noRedirect.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func TestPagesRequireLogin(t *testing.T) {
	server, _ := setupTestServer(t)

	resp, _ := get(t, server, "/", nil)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	resp, body := get(t, server, "/login", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `name="password"`)
}

func TestWrongPasswordShowsError(t *testing.T) {
	server, _ := setupTestServer(t)
	resp, err := noRedirect.PostForm(server.URL+"/login", url.Values{"role": {"user"}, "password": {"nope-nope"}})
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Wrong password.")
}

func TestDashboardListsStock(t *testing.T) {
	server, _ := setupTestServer(t)
	cookie := login(t, server, "user")

	resp, body := get(t, server, "/", cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	for _, want := range []string{"Safety Helmet (Yellow)", "Size 8", "Low stock", "Operator · Tester"} {
		assert.Contains(t, body, want)
	}
	assert.NotContains(t, body, `href="/items"`, "operators do not see the catalog link")
	assert.NotContains(t, body, `href="/settings"`)
}

func photo(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 40, 30))))
	return buf.Bytes()
}

func postIssue(t *testing.T, server *httptest.Server, cookie *http.Cookie, fields map[string]string, withPhoto bool) (*http.Response, string) {
	t.Helper()
	var form bytes.Buffer
	mw := multipart.NewWriter(&form)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if withPhoto {
		fw, err := mw.CreateFormFile("photo", "photo.png")
		require.NoError(t, err)
		_, err = fw.Write(photo(t))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req, err := http.NewRequest("POST", server.URL+"/issue", &form)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(cookie)
	resp, err := noRedirect.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func TestIssueAndPartialReturn(t *testing.T) {
	server, tr := setupTestServer(t)
	cookie := login(t, server, "user")

	fields := map[string]string{"type": "OUT", "variant": "3:STD", "quantity": "4", "employee": "HASAN ATIK", "lat": "25.1", "lng": "55.2"}

	resp, body := postIssue(t, server, cookie, fields, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "A photo of the handover is required.")

	resp, _ = postIssue(t, server, cookie, fields, true)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	bal, err := tr.Balance(3, "STD")
	require.NoError(t, err)
	assert.Equal(t, 164, bal)

	txs := tr.Transactions(txlog.Query{})
	require.Len(t, txs, 1)
	require.NotEmpty(t, txs[0].ProofRef)
	require.NotNil(t, txs[0].Location)

	fields["quantity"] = "500"
	_, body = postIssue(t, server, cookie, fields, true)
	assert.Contains(t, body, "Only 164 in stock, 500 requested.")

	resp, body = get(t, server, "/transactions", cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "/transactions/"+txs[0].ID+"/return")

	resp, _ = postForm(t, server, "/transactions/"+txs[0].ID+"/return", cookie, url.Values{"quantity": {"3"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	tx, err := tr.Transaction(txs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 1, tx.Remaining())

	resp, _ = get(t, server, "/proofs/"+txs[0].ProofRef, cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/jpeg", resp.Header.Get("Content-Type"))
}

func TestExportRequiresManager(t *testing.T) {
	server, _ := setupTestServer(t)

	resp, _ := get(t, server, "/export?date=2026-10-19", login(t, server, "user"))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := get(t, server, "/export?date=2026-10-19", login(t, server, "manager"))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "No transactions on 2026-10-19.")
}

func TestItemsPageRequiresManager(t *testing.T) {
	server, _ := setupTestServer(t)

	resp, _ := get(t, server, "/items", login(t, server, "user"))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := get(t, server, "/items", login(t, server, "manager"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `action="/items/1/variants/8/restock"`)
	assert.Contains(t, body, `href="/items"`)
}

func TestItemsCatalogEditing(t *testing.T) {
	server, tr := setupTestServer(t)
	cookie := login(t, server, "manager")

	resp, _ := postForm(t, server, "/items", cookie, url.Values{
		"category": {"Face  Protection"}, "name": {"Face Shield"}, "brand": {"GENERIC"},
		"code": {"std"}, "label": {"Standrd"}, "balance": {"12"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	item, err := tr.Item(11)
	require.NoError(t, err)
	assert.Equal(t, "Face Protection", item.Category)
	require.Len(t, item.Variants, 1)
	assert.Equal(t, "STD", item.Variants[0].Code)
	assert.Equal(t, "Standard", item.Variants[0].Label)
	assert.Equal(t, 12, item.Variants[0].Balance)

	resp, _ = postForm(t, server, "/items/11/variants", cookie, url.Values{"code": {"y"}, "label": {"Yelow"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	resp, _ = postForm(t, server, "/items/11/variants/Y", cookie, url.Values{"label": {"Yellow tint"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	item, err = tr.Item(11)
	require.NoError(t, err)
	v, ok := item.Variant("Y")
	require.True(t, ok)
	assert.Equal(t, "Yellow tint", v.Label)

	resp, body := postForm(t, server, "/items/11/variants/Y/restock", cookie, url.Values{"quantity": {"5"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Added 5. New balance 5.")

	_, body = postForm(t, server, "/items/11/variants/Y/restock", cookie, url.Values{"quantity": {"0"}})
	assert.Contains(t, body, "Quantity must be a positive number.")

	_, body = postForm(t, server, "/items/11/variants/Y/delete", cookie, nil)
	assert.Contains(t, body, "That variant still holds stock or has units out.")

	_, body = postForm(t, server, "/items", cookie, url.Values{"name": {"  "}})
	assert.Contains(t, body, "Items need a name and variants need a code.")

	resp, _ = postForm(t, server, "/items/11", cookie, url.Values{"category": {"Face Protection"}, "name": {"Visor"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	item, err = tr.Item(11)
	require.NoError(t, err)
	assert.Equal(t, "Visor", item.Name)
	assert.Empty(t, item.Brand)
}

func TestRemoveEmptyVariant(t *testing.T) {
	server, tr := setupTestServer(t)
	cookie := login(t, server, "manager")

	resp, _ := postForm(t, server, "/items/4/variants", cookie, url.Values{"code": {"XL"}, "label": {"Extra Large"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp, _ = postForm(t, server, "/items/4/variants/XL/delete", cookie, nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	item, err := tr.Item(4)
	require.NoError(t, err)
	_, ok := item.Variant("XL")
	assert.False(t, ok)
}

func TestSettingsChangesPasswordWithoutRestart(t *testing.T) {
	server, _, database := setupTestServerDB(t)

	resp, _ := get(t, server, "/settings", login(t, server, "manager"))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	cookie := login(t, server, "admin")
	_, body := postForm(t, server, "/settings", cookie, url.Values{
		"current_password": {"not-it-at-all"}, "new_password": {"brand-new-pass"}, "confirm_password": {"brand-new-pass"},
	})
	assert.Contains(t, body, "The current password is wrong.")

	_, body = postForm(t, server, "/settings", cookie, url.Values{
		"current_password": {testPassword}, "new_password": {"short"}, "confirm_password": {"short"},
	})
	assert.Contains(t, body, "The new password must be at least 8 characters.")

	_, body = postForm(t, server, "/settings", cookie, url.Values{
		"current_password": {testPassword}, "new_password": {"brand-new-pass"}, "confirm_password": {"brand-new-pas"},
	})
	assert.Contains(t, body, "The new passwords do not match.")

	resp, body = postForm(t, server, "/settings", cookie, url.Values{
		"current_password": {testPassword}, "new_password": {"brand-new-pass"}, "confirm_password": {"brand-new-pass"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Password changed.")

	stored, err := db.PasswordHash(context.Background(), database)
	require.NoError(t, err)
	assert.NoError(t, auth.CheckPassword(stored, "brand-new-pass"))

	assert.Equal(t, http.StatusOK, tryLogin(t, server, "user", testPassword).StatusCode, "old password shows the form again")
	assert.Equal(t, http.StatusSeeOther, tryLogin(t, server, "user", "brand-new-pass").StatusCode)
}
