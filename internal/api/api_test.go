package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rewear-app/rewear/internal/db"
	"github.com/rewear-app/rewear/internal/model"
)

const testJWTSecret = "test-secret"

func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	database := db.NewTestDB(t)
	server := httptest.NewServer(NewRouter(database, testJWTSecret))
	t.Cleanup(server.Close)
	return server
}

// registerUser creates an account through the API and returns its token
// and user.
func registerUser(t *testing.T, server *httptest.Server, email string) (string, *model.User) {
	t.Helper()

	body, _ := json.Marshal(map[string]string{
		"email":    email,
		"name":     "Tester",
		"password": "password123",
	})
	resp, err := http.Post(server.URL+"/api/auth/register", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("register request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register failed: %d", resp.StatusCode)
	}

	var reg struct {
		Token string      `json:"token"`
		User  *model.User `json:"user"`
	}
	json.NewDecoder(resp.Body).Decode(&reg)
	if reg.Token == "" || reg.User == nil {
		t.Fatal("empty token or user from register")
	}
	return reg.Token, reg.User
}

func authRequest(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()

	var data []byte
	if body != nil {
		data, _ = json.Marshal(body)
	}
	req, err := http.NewRequest(method, url, bytes.NewReader(data))
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func createItemViaAPI(t *testing.T, server *httptest.Server, token, title string) *model.Item {
	t.Helper()

	resp := authRequest(t, http.MethodPost, server.URL+"/api/items", token, map[string]any{
		"title":       title,
		"description": "A test item",
		"category":    "Tops",
		"type":        "Shirt",
		"size":        "M",
		"condition":   "Good",
		"tags":        []string{"test"},
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create item failed: %d", resp.StatusCode)
	}

	var item model.Item
	json.NewDecoder(resp.Body).Decode(&item)
	return &item
}

func TestRegisterValidation(t *testing.T) {
	server := setupTestServer(t)

	body, _ := json.Marshal(map[string]string{"email": "not-an-email", "password": "short"})
	resp, err := http.Post(server.URL+"/api/auth/register", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("register request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	var errResp struct {
		Error   string            `json:"error"`
		Details map[string]string `json:"details"`
	}
	json.NewDecoder(resp.Body).Decode(&errResp)
	if errResp.Details["email"] == "" || errResp.Details["password"] == "" {
		t.Errorf("expected per-field details, got %+v", errResp.Details)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	server := setupTestServer(t)
	registerUser(t, server, "dup@example.com")

	body, _ := json.Marshal(map[string]string{
		"email": "dup@example.com", "name": "Again", "password": "password123",
	})
	resp, err := http.Post(server.URL+"/api/auth/register", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("register request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409, got %d", resp.StatusCode)
	}
}

func TestLoginAndLogout(t *testing.T) {
	server := setupTestServer(t)
	registerUser(t, server, "user@example.com")

	body, _ := json.Marshal(map[string]string{"email": "user@example.com", "password": "wrong"})
	resp, _ := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad password, got %d", resp.StatusCode)
	}

	body, _ = json.Marshal(map[string]string{"email": "user@example.com", "password": "password123"})
	resp, err := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed: %d", resp.StatusCode)
	}

	var login struct {
		Token string `json:"token"`
	}
	json.NewDecoder(resp.Body).Decode(&login)

	// A revoked token stops working.
	resp = authRequest(t, http.MethodPost, server.URL+"/api/auth/logout", login.Token, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout failed: %d", resp.StatusCode)
	}

	resp = authRequest(t, http.MethodGet, server.URL+"/api/me", login.Token, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", resp.StatusCode)
	}
}

func TestListItemsEnvelope(t *testing.T) {
	server := setupTestServer(t)
	token, _ := registerUser(t, server, "lister@example.com")

	createItemViaAPI(t, server, token, "First")
	createItemViaAPI(t, server, token, "Second")
	createItemViaAPI(t, server, token, "Third")

	resp, err := http.Get(server.URL + "/api/items?limit=2&page=1")
	if err != nil {
		t.Fatalf("list request: %v", err)
	}
	defer resp.Body.Close()

	var list struct {
		Items      []model.Item `json:"items"`
		Pagination struct {
			Page  int `json:"page"`
			Limit int `json:"limit"`
			Total int `json:"total"`
			Pages int `json:"pages"`
		} `json:"pagination"`
	}
	json.NewDecoder(resp.Body).Decode(&list)

	if len(list.Items) != 2 {
		t.Errorf("expected 2 items on page, got %d", len(list.Items))
	}
	if list.Pagination.Total != 3 || list.Pagination.Pages != 2 {
		t.Errorf("unexpected envelope: %+v", list.Pagination)
	}
}

func TestListItemsGarbageParamsDefaulted(t *testing.T) {
	server := setupTestServer(t)

	resp, err := http.Get(server.URL + "/api/items?page=banana&limit=-5&sortBy=nope")
	if err != nil {
		t.Fatalf("list request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("listing must not reject bad params, got %d", resp.StatusCode)
	}

	var list struct {
		Items      []model.Item `json:"items"`
		Pagination struct {
			Page  int `json:"page"`
			Limit int `json:"limit"`
		} `json:"pagination"`
	}
	json.NewDecoder(resp.Body).Decode(&list)

	if list.Items == nil {
		t.Error("expected items array, not null")
	}
	if list.Pagination.Page != 1 || list.Pagination.Limit != 12 {
		t.Errorf("expected defaulted envelope, got %+v", list.Pagination)
	}
}

func TestCreateItemRequiresAuth(t *testing.T) {
	server := setupTestServer(t)

	body, _ := json.Marshal(map[string]string{"title": "Nope"})
	resp, err := http.Post(server.URL+"/api/items", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("create item request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", resp.StatusCode)
	}
}

func TestCreateItemValidation(t *testing.T) {
	server := setupTestServer(t)
	token, _ := registerUser(t, server, "creator@example.com")

	resp := authRequest(t, http.MethodPost, server.URL+"/api/items", token, map[string]any{
		"title":      "",
		"pointValue": 0,
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	var errResp struct {
		Details map[string]string `json:"details"`
	}
	json.NewDecoder(resp.Body).Decode(&errResp)
	for _, field := range []string{"title", "description", "category", "pointValue"} {
		if errResp.Details[field] == "" {
			t.Errorf("expected detail for %q, got %+v", field, errResp.Details)
		}
	}
}

func TestUpdateItemOwnerOnly(t *testing.T) {
	server := setupTestServer(t)
	ownerToken, _ := registerUser(t, server, "owner@example.com")
	otherToken, _ := registerUser(t, server, "other@example.com")

	item := createItemViaAPI(t, server, ownerToken, "Owned")

	resp := authRequest(t, http.MethodPut, server.URL+"/api/items/"+item.ID, otherToken,
		map[string]string{"title": "Hijacked"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for non-owner, got %d", resp.StatusCode)
	}

	resp = authRequest(t, http.MethodPut, server.URL+"/api/items/"+item.ID, ownerToken,
		map[string]string{"title": "Renamed"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("owner update failed: %d", resp.StatusCode)
	}

	var updated model.Item
	json.NewDecoder(resp.Body).Decode(&updated)
	if updated.Title != "Renamed" {
		t.Errorf("expected renamed item, got %q", updated.Title)
	}
	if updated.Description != item.Description {
		t.Errorf("partial update changed description: %q", updated.Description)
	}
}

func TestDeleteItem(t *testing.T) {
	server := setupTestServer(t)
	token, _ := registerUser(t, server, "deleter@example.com")

	resp := authRequest(t, http.MethodDelete, server.URL+"/api/items/no-such-id", token, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for missing item, got %d", resp.StatusCode)
	}

	item := createItemViaAPI(t, server, token, "Doomed")
	resp = authRequest(t, http.MethodDelete, server.URL+"/api/items/"+item.ID, token, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete failed: %d", resp.StatusCode)
	}

	getResp, _ := http.Get(server.URL + "/api/items/" + item.ID)
	getResp.Body.Close()
	if getResp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", getResp.StatusCode)
	}
}

func TestSwapFlow(t *testing.T) {
	server := setupTestServer(t)
	ownerToken, _ := registerUser(t, server, "owner@example.com")
	requesterToken, requester := registerUser(t, server, "requester@example.com")

	item := createItemViaAPI(t, server, ownerToken, "Swappable")

	// Owners cannot request their own items.
	resp := authRequest(t, http.MethodPost, server.URL+"/api/items/"+item.ID+"/swap-requests", ownerToken, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for own item, got %d", resp.StatusCode)
	}

	resp = authRequest(t, http.MethodPost, server.URL+"/api/items/"+item.ID+"/swap-requests", requesterToken,
		map[string]string{"message": "Trade?"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create request failed: %d", resp.StatusCode)
	}
	var req model.SwapRequest
	json.NewDecoder(resp.Body).Decode(&req)
	resp.Body.Close()

	// Only the owner may accept.
	resp = authRequest(t, http.MethodPost, server.URL+"/api/swap-requests/"+req.ID+"/accept", requesterToken, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for non-owner accept, got %d", resp.StatusCode)
	}

	resp = authRequest(t, http.MethodPost, server.URL+"/api/swap-requests/"+req.ID+"/accept", ownerToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("accept failed: %d", resp.StatusCode)
	}
	var swap model.Swap
	json.NewDecoder(resp.Body).Decode(&swap)
	resp.Body.Close()
	if swap.InitiatorID != requester.ID {
		t.Errorf("expected requester as initiator, got %s", swap.InitiatorID)
	}

	// The item disappears from the public catalog once pending.
	var list struct {
		Pagination struct {
			Total int `json:"total"`
		} `json:"pagination"`
	}
	listResp, _ := http.Get(server.URL + "/api/items")
	json.NewDecoder(listResp.Body).Decode(&list)
	listResp.Body.Close()
	if list.Pagination.Total != 0 {
		t.Errorf("expected pending item out of catalog, total %d", list.Pagination.Total)
	}

	resp = authRequest(t, http.MethodPost, server.URL+"/api/swaps/"+swap.ID+"/complete", requesterToken, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("complete failed: %d", resp.StatusCode)
	}

	// Points moved from requester to owner.
	meResp := authRequest(t, http.MethodGet, server.URL+"/api/me", requesterToken, nil)
	var me struct {
		User *model.User `json:"user"`
	}
	json.NewDecoder(meResp.Body).Decode(&me)
	meResp.Body.Close()
	if me.User.Points != model.StartingPoints-model.DefaultPointValue {
		t.Errorf("expected debited balance, got %d", me.User.Points)
	}
}

func TestMeEndpoint(t *testing.T) {
	server := setupTestServer(t)
	token, user := registerUser(t, server, "me@example.com")

	resp := authRequest(t, http.MethodGet, server.URL+"/api/me", token, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me failed: %d", resp.StatusCode)
	}

	var me struct {
		User  *model.User           `json:"user"`
		Stats *model.DashboardStats `json:"stats"`
	}
	json.NewDecoder(resp.Body).Decode(&me)
	if me.User == nil || me.User.ID != user.ID {
		t.Error("expected own user in response")
	}
	if me.Stats == nil || me.Stats.PointsBalance != model.StartingPoints {
		t.Errorf("expected stats with starting balance, got %+v", me.Stats)
	}
	if me.User.PasswordHash != "" {
		t.Error("password hash must never be serialized")
	}
}
