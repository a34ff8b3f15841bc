package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/zaloga/internal/auth"
	"github.com/erazemk/zaloga/internal/db"
	"github.com/erazemk/zaloga/internal/model"
	"github.com/erazemk/zaloga/internal/store"
)

const testJWTSecret = "test-secret"

func setupTestServer(t *testing.T) (*httptest.Server, *sqlx.DB) {
	t.Helper()
	database := db.NewTestDB(t)
	router := NewRouter(database, Options{JWTSecret: testJWTSecret})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server, database
}

func createUser(t *testing.T, database *sqlx.DB, email string, isAdmin bool) *model.User {
	t.Helper()
	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)
	u, err := store.CreateUser(context.Background(), database, "Test", "User", email, hash, isAdmin)
	require.NoError(t, err)
	return u
}

func login(t *testing.T, server *httptest.Server, email string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"email": email, "password": "password123"})
	resp, err := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode, "login failed")

	var loginResp map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&loginResp))
	require.NotEmpty(t, loginResp["token"], "empty token from login")
	return loginResp["token"]
}

func authRequest(method, url, token string, body any) (*http.Request, error) {
	var bodyReader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(data)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func do(t *testing.T, method, url, token string, body, out any) int {
	t.Helper()
	req, err := authRequest(method, url, token, body)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestLoginEndpoint(t *testing.T) {
	server, database := setupTestServer(t)
	createUser(t, database, "ana@example.com", false)

	body, _ := json.Marshal(map[string]string{"email": "ana@example.com", "password": "wrong"})
	resp, err := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	assert.NotEmpty(t, login(t, server, "ANA@example.com"))
}

func TestReadsArePublicWritesNeedToken(t *testing.T) {
	server, _ := setupTestServer(t)

	var inventories []model.Inventory
	assert.Equal(t, http.StatusOK, do(t, "GET", server.URL+"/api/inventories", "", nil, &inventories))
	assert.Empty(t, inventories)

	assert.Equal(t, http.StatusUnauthorized, do(t, "POST", server.URL+"/api/inventories", "", map[string]string{"name": "X"}, nil))
	assert.Equal(t, http.StatusUnauthorized, do(t, "GET", server.URL+"/api/items", "garbage", nil, nil))
}

func TestInventoryAndItemFlow(t *testing.T) {
	server, database := setupTestServer(t)
	createUser(t, database, "ana@example.com", false)
	createUser(t, database, "bor@example.com", false)
	ana := login(t, server, "ana@example.com")
	bor := login(t, server, "bor@example.com")

	var verr map[string]any
	assert.Equal(t, http.StatusBadRequest, do(t, "POST", server.URL+"/api/inventories", ana, map[string]string{"name": ""}, &verr))
	assert.Equal(t, map[string]any{"Name": "Inventory name is required"}, verr["fields"])

	var inv model.Inventory
	require.Equal(t, http.StatusCreated, do(t, "POST", server.URL+"/api/inventories", ana, map[string]string{"name": "Office Supplies"}, &inv))
	invURL := fmt.Sprintf("%s/api/inventories/%d", server.URL, inv.ID)

	var item model.Item
	require.Equal(t, http.StatusCreated, do(t, "POST", invURL+"/items", ana, map[string]any{
		"name": "Pens", "quantity": 3, "price": "1.50", "category": "Desk",
	}, &item))
	assert.Equal(t, "ITEM001", item.Code)
	assert.Equal(t, model.Cents(150), item.Price)

	var page itemPageResponse
	require.Equal(t, http.StatusOK, do(t, "GET", invURL+"/items?search=pen", "", nil, &page))
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, []string{"Desk"}, page.Categories)
	require.NotNil(t, page.Inventory)
	assert.Equal(t, "Office Supplies", page.Inventory.Name)

	assert.Equal(t, http.StatusNotFound, do(t, "GET", server.URL+"/api/inventories/9999/items", "", nil, nil))

	itemURL := fmt.Sprintf("%s/api/items/%d", server.URL, item.ID)
	assert.Equal(t, http.StatusForbidden, do(t, "PUT", itemURL, bor, map[string]any{"name": "Mine"}, nil))
	assert.Equal(t, http.StatusForbidden, do(t, "DELETE", invURL, bor, nil, nil))

	var updated model.Item
	require.Equal(t, http.StatusOK, do(t, "PUT", itemURL, ana, map[string]any{"name": "Blue pens", "quantity": 0, "price": 1.5}, &updated))
	assert.Equal(t, "Blue pens", updated.Name)
	assert.Equal(t, "ITEM001", updated.Code)

	require.Equal(t, http.StatusOK, do(t, "DELETE", invURL, ana, nil, nil))
	assert.Equal(t, http.StatusNotFound, do(t, "GET", itemURL, "", nil, nil))
}

func TestAdminEndpoints(t *testing.T) {
	server, database := setupTestServer(t)
	root := createUser(t, database, "root@example.com", true)
	user := createUser(t, database, "ana@example.com", false)
	rootToken := login(t, server, "root@example.com")
	userToken := login(t, server, "ana@example.com")

	assert.Equal(t, http.StatusForbidden, do(t, "GET", server.URL+"/api/admin/users", userToken, nil, nil))
	assert.Equal(t, http.StatusUnauthorized, do(t, "GET", server.URL+"/api/admin/users", "", nil, nil))

	var users []model.User
	require.Equal(t, http.StatusOK, do(t, "GET", server.URL+"/api/admin/users", rootToken, nil, &users))
	assert.Len(t, users, 2)

	assert.Equal(t, http.StatusBadRequest,
		do(t, "POST", fmt.Sprintf("%s/api/admin/users/%d/toggle-admin", server.URL, root.ID), rootToken, nil, nil))

	var toggled model.User
	require.Equal(t, http.StatusOK,
		do(t, "POST", fmt.Sprintf("%s/api/admin/users/%d/toggle-admin", server.URL, user.ID), rootToken, nil, &toggled))
	assert.True(t, toggled.IsAdmin)

	// The promoted user's existing token now reaches admin endpoints.
	var stats model.DashboardStats
	require.Equal(t, http.StatusOK, do(t, "GET", server.URL+"/api/admin/dashboard", userToken, nil, &stats))
	assert.Equal(t, 2, stats.TotalUsers)
	assert.Equal(t, 2, stats.AdminUsers)
}

func TestLogoutRevokesToken(t *testing.T) {
	server, database := setupTestServer(t)
	createUser(t, database, "ana@example.com", false)
	token := login(t, server, "ana@example.com")

	require.Equal(t, http.StatusOK, do(t, "POST", server.URL+"/api/auth/logout", token, nil, nil))
	assert.Equal(t, http.StatusUnauthorized, do(t, "GET", server.URL+"/api/inventories", token, nil, nil))
}

func TestChangePassword(t *testing.T) {
	server, database := setupTestServer(t)
	createUser(t, database, "ana@example.com", false)
	token := login(t, server, "ana@example.com")

	assert.Equal(t, http.StatusBadRequest, do(t, "PUT", server.URL+"/api/auth/password", token,
		map[string]string{"current_password": "wrong", "new_password": "another-password"}, nil))
	require.Equal(t, http.StatusOK, do(t, "PUT", server.URL+"/api/auth/password", token,
		map[string]string{"current_password": "password123", "new_password": "another-password"}, nil))
}
