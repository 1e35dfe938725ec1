package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/erazemk/najdeno/internal/auth"
	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/metrics"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/service"
	"github.com/erazemk/najdeno/internal/store"
)

const (
	testJWTSecret = "test-secret"
	testPassword  = "password123"
)

type testEnv struct {
	server *httptest.Server
	db     *sql.DB
}

func setupTestServer(t *testing.T, limiter *RateLimiter) *testEnv {
	t.Helper()
	database := db.NewTestDB(t)
	m := metrics.New()
	router := NewRouter(Config{
		DB:        database,
		Service:   service.New(database, service.Options{Metrics: m}),
		JWTSecret: testJWTSecret,
		PublicURL: "https://najdeno.test",
		Metrics:   m,
		Limiter:   limiter,
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return &testEnv{server: server, db: database}
}

// user creates an account and returns its ID and a session token.
func (e *testEnv) user(t *testing.T, username, displayName string) (string, string) {
	t.Helper()
	hash, err := auth.HashPassword(testPassword)
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	u, err := store.CreateUser(context.Background(), e.db, username, displayName, hash)
	if err != nil {
		t.Fatalf("creating user: %v", err)
	}

	body, _ := json.Marshal(map[string]string{"username": username, "password": testPassword})
	resp, err := http.Post(e.server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed: %d", resp.StatusCode)
	}

	var loginResp map[string]string
	json.NewDecoder(resp.Body).Decode(&loginResp)
	if loginResp["token"] == "" {
		t.Fatal("empty token from login")
	}
	return u.ID, loginResp["token"]
}

// do sends a JSON request and decodes a JSON response into out, if given.
func (e *testEnv) do(t *testing.T, method, path, token string, body, out any) int {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reader)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decoding %s %s response: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func (e *testEnv) postItem(t *testing.T, token, title string) model.Item {
	t.Helper()
	var item model.Item
	status := e.do(t, "POST", "/api/items", token, map[string]string{
		"title":        title,
		"description":  "Found near the fountain",
		"category":     model.CategoryBags,
		"neighborhood": "Center",
	}, &item)
	if status != http.StatusCreated {
		t.Fatalf("expected 201 creating item, got %d", status)
	}
	return item
}

func TestLoginEndpoint(t *testing.T) {
	env := setupTestServer(t, nil)
	env.user(t, "finder", "")

	body, _ := json.Marshal(map[string]string{"username": "finder", "password": "wrong"})
	resp, err := http.Post(env.server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad password, got %d", resp.StatusCode)
	}

	body, _ = json.Marshal(map[string]string{"username": "nobody", "password": testPassword})
	resp, err = http.Post(env.server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for unknown user, got %d", resp.StatusCode)
	}
}

func TestMeShowsPublicNameOnly(t *testing.T) {
	env := setupTestServer(t, nil)
	id, token := env.user(t, "ana@example.com", "")

	var me map[string]string
	if status := env.do(t, "GET", "/api/auth/me", token, nil, &me); status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if me["id"] != id {
		t.Errorf("expected id %q, got %q", id, me["id"])
	}
	if me["name"] != "user-"+id[:8] {
		t.Errorf("expected generated alias, got %q", me["name"])
	}
	if _, ok := me["username"]; ok {
		t.Error("username must not be exposed")
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	env := setupTestServer(t, nil)
	_, token := env.user(t, "finder", "")

	if status := env.do(t, "POST", "/api/auth/logout", token, nil, nil); status != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", status)
	}
	if status := env.do(t, "GET", "/api/auth/me", token, nil, nil); status != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", status)
	}
}

func TestChangePassword(t *testing.T) {
	env := setupTestServer(t, nil)
	_, token := env.user(t, "finder", "")

	status := env.do(t, "PUT", "/api/auth/password", token, map[string]string{
		"current_password": "wrong",
		"new_password":     "another-password",
	}, nil)
	if status != http.StatusUnauthorized {
		t.Errorf("expected 401 for wrong current password, got %d", status)
	}

	status = env.do(t, "PUT", "/api/auth/password", token, map[string]string{
		"current_password": testPassword,
		"new_password":     "short",
	}, nil)
	if status != http.StatusBadRequest {
		t.Errorf("expected 400 for short password, got %d", status)
	}

	status = env.do(t, "PUT", "/api/auth/password", token, map[string]string{
		"current_password": testPassword,
		"new_password":     "another-password",
	}, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}

	body, _ := json.Marshal(map[string]string{"username": "finder", "password": "another-password"})
	resp, err := http.Post(env.server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected login with new password to succeed, got %d", resp.StatusCode)
	}
}

func TestUnauthenticatedAccess(t *testing.T) {
	env := setupTestServer(t, nil)

	for _, tc := range []struct{ method, path string }{
		{"POST", "/api/items"},
		{"GET", "/api/items/mine"},
		{"GET", "/api/claims/mine"},
		{"GET", "/api/notifications"},
		{"POST", "/api/items/x/claims"},
		{"GET", "/api/claims/x/messages"},
	} {
		if status := env.do(t, tc.method, tc.path, "", nil, nil); status != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401, got %d", tc.method, tc.path, status)
		}
	}

	if status := env.do(t, "GET", "/api/items", "garbage", nil, nil); status != http.StatusUnauthorized {
		t.Errorf("expected 401 for an invalid token on an optional route, got %d", status)
	}
	if status := env.do(t, "GET", "/api/items", "", nil, nil); status != http.StatusOK {
		t.Errorf("expected anonymous browsing to work, got %d", status)
	}
}

func TestItemBrowsing(t *testing.T) {
	env := setupTestServer(t, nil)
	_, token := env.user(t, "finder", "")
	env.postItem(t, token, "Black wallet")
	env.postItem(t, token, "Blue umbrella")

	var items []model.Item
	if status := env.do(t, "GET", "/api/items?q=wallet", "", nil, &items); status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if len(items) != 1 || items[0].Title != "Black wallet" {
		t.Errorf("expected only the wallet, got %+v", items)
	}

	items = nil
	env.do(t, "GET", "/api/items?category=keys", "", nil, &items)
	if len(items) != 0 {
		t.Errorf("expected no keys, got %d items", len(items))
	}

	var categories []string
	env.do(t, "GET", "/api/categories", "", nil, &categories)
	if len(categories) != len(model.Categories) {
		t.Errorf("expected %d categories, got %d", len(model.Categories), len(categories))
	}

	status := env.do(t, "POST", "/api/items", token, map[string]string{"title": "No description"}, nil)
	if status != http.StatusBadRequest {
		t.Errorf("expected 400 for missing fields, got %d", status)
	}
}

func TestCreateItemWithPhoto(t *testing.T) {
	env := setupTestServer(t, nil)
	_, token := env.user(t, "finder", "")

	img := image.NewRGBA(image.Rect(0, 0, 20, 10))
	for x := 0; x < 20; x++ {
		for y := 0; y < 10; y++ {
			img.Set(x, y, color.RGBA{200, 0, 0, 255})
		}
	}
	var pngData bytes.Buffer
	if err := png.Encode(&pngData, img); err != nil {
		t.Fatalf("encoding png: %v", err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("title", "Red scarf")
	mw.WriteField("description", "Wool, hand knitted")
	mw.WriteField("category", model.CategoryClothing)
	mw.WriteField("neighborhood", "Old town")
	fw, _ := mw.CreateFormFile("image", "scarf.png")
	fw.Write(pngData.Bytes())
	mw.Close()

	req, _ := http.NewRequest("POST", env.server.URL+"/api/items", &body)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	var item model.Item
	json.NewDecoder(resp.Body).Decode(&item)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if item.ImageRef == "" {
		t.Fatal("expected an image reference")
	}

	resp, err = http.Get(env.server.URL + "/api/items/" + item.ID + "/image")
	if err != nil {
		t.Fatalf("image request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("expected normalized JPEG, got %q", ct)
	}
}

func TestQRCodeIsFinderOnly(t *testing.T) {
	env := setupTestServer(t, nil)
	_, finderToken := env.user(t, "finder", "")
	_, otherToken := env.user(t, "other", "")
	item := env.postItem(t, finderToken, "Keys")

	if status := env.do(t, "GET", "/api/items/"+item.ID+"/qr", otherToken, nil, nil); status != http.StatusForbidden {
		t.Errorf("expected 403 for another user, got %d", status)
	}

	req, _ := http.NewRequest("GET", env.server.URL+"/api/items/"+item.ID+"/qr", nil)
	req.Header.Set("Authorization", "Bearer "+finderToken)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("qr request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("expected image/png, got %q", ct)
	}
}

func TestHandshakeRedirect(t *testing.T) {
	env := setupTestServer(t, nil)
	_, finderToken := env.user(t, "finder", "")
	item := env.postItem(t, finderToken, "Wallet")

	stored, err := store.GetItem(context.Background(), env.db, item.ID)
	if err != nil || stored == nil {
		t.Fatalf("loading item: %v", err)
	}

	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}

	resp, err := client.Get(env.server.URL + "/handshake/" + stored.HandshakeToken)
	if err != nil {
		t.Fatalf("handshake request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/api/items/"+item.ID+"/claim" {
		t.Errorf("unexpected redirect target %q", loc)
	}

	// Upper-case tokens resolve to the same item.
	resp, err = client.Get(env.server.URL + "/handshake/" + strings.ToUpper(stored.HandshakeToken))
	if err != nil {
		t.Fatalf("handshake request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Errorf("expected 303 for upper-case token, got %d", resp.StatusCode)
	}

	for _, token := range []string{"not-a-token", "00000000-0000-4000-8000-000000000000"} {
		resp, err = client.Get(env.server.URL + "/handshake/" + url.PathEscape(token))
		if err != nil {
			t.Fatalf("handshake request: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("token %q: expected 404, got %d", token, resp.StatusCode)
		}
	}
}

func TestWalletScenario(t *testing.T) {
	env := setupTestServer(t, nil)
	finderID, finderToken := env.user(t, "finder", "Fiona")
	_, seekerToken := env.user(t, "seeker", "")
	_, strangerToken := env.user(t, "stranger", "")

	item := env.postItem(t, finderToken, "Brown leather wallet")

	// The seeker lands on the claim form anonymously-aware.
	var entry map[string]any
	if status := env.do(t, "GET", "/api/items/"+item.ID+"/claim", seekerToken, nil, &entry); status != http.StatusOK {
		t.Fatalf("expected 200 for claim form, got %d", status)
	}
	if entry["available"] != true {
		t.Errorf("expected item to be available, got %v", entry["available"])
	}

	// The finder cannot claim their own item.
	status := env.do(t, "POST", "/api/items/"+item.ID+"/claims", finderToken, map[string]string{"proof": "mine"}, nil)
	if status != http.StatusForbidden {
		t.Errorf("expected 403 for finder claiming own item, got %d", status)
	}

	var claim model.Claim
	status = env.do(t, "POST", "/api/items/"+item.ID+"/claims", seekerToken,
		map[string]string{"proof": "Has a library card for Ana inside"}, &claim)
	if status != http.StatusCreated {
		t.Fatalf("expected 201 for new claim, got %d", status)
	}
	if claim.Status != model.ClaimStatusPending {
		t.Errorf("expected pending claim, got %q", claim.Status)
	}

	// A second submission returns the same claim.
	var again model.Claim
	status = env.do(t, "POST", "/api/items/"+item.ID+"/claims", seekerToken,
		map[string]string{"proof": "different proof"}, &again)
	if status != http.StatusOK {
		t.Errorf("expected 200 for repeated claim, got %d", status)
	}
	if again.ID != claim.ID || again.Proof != claim.Proof {
		t.Errorf("expected the original claim back, got %+v", again)
	}

	// The finder is told about the claim.
	var inbox service.Inbox
	env.do(t, "GET", "/api/notifications", finderToken, nil, &inbox)
	if inbox.Unread != 1 || len(inbox.Notifications) != 1 {
		t.Fatalf("expected one unread notification, got %+v", inbox)
	}
	if status := env.do(t, "POST", "/api/notifications/"+inbox.Notifications[0].ID+"/read", seekerToken, nil, nil); status != http.StatusNotFound {
		t.Errorf("expected 404 marking someone else's notification, got %d", status)
	}
	if status := env.do(t, "POST", "/api/notifications/"+inbox.Notifications[0].ID+"/read", finderToken, nil, nil); status != http.StatusNoContent {
		t.Errorf("expected 204, got %d", status)
	}

	// Chat between the two parties.
	var first service.MessageView
	status = env.do(t, "POST", "/api/claims/"+claim.ID+"/messages", seekerToken, map[string]string{"body": "Where can we meet?"}, &first)
	if status != http.StatusCreated {
		t.Fatalf("expected 201 sending message, got %d", status)
	}
	if !first.IsMine {
		t.Error("expected echoed message to be marked as mine")
	}

	var reply service.MessageView
	env.do(t, "POST", "/api/claims/"+claim.ID+"/messages", finderToken, map[string]string{"body": "Library at noon"}, &reply)
	if reply.SenderName != "Fiona" {
		t.Errorf("expected display name, got %q", reply.SenderName)
	}

	var thread messagesResponse
	env.do(t, "GET", "/api/claims/"+claim.ID+"/messages?after="+first.ID, seekerToken, nil, &thread)
	if len(thread.Messages) != 1 || thread.Messages[0].ID != reply.ID {
		t.Errorf("expected only the reply after the cursor, got %+v", thread.Messages)
	}
	if thread.Messages[0].IsMine {
		t.Error("reply must not be marked as the seeker's")
	}

	thread = messagesResponse{}
	env.do(t, "GET", "/api/claims/"+claim.ID+"/messages?after=unknown", seekerToken, nil, &thread)
	if len(thread.Messages) != 2 {
		t.Errorf("expected whole thread for unknown cursor, got %d", len(thread.Messages))
	}

	// Outsiders see nothing.
	if status := env.do(t, "GET", "/api/claims/"+claim.ID+"/messages", strangerToken, nil, nil); status != http.StatusForbidden {
		t.Errorf("expected 403 listing messages as stranger, got %d", status)
	}
	if status := env.do(t, "POST", "/api/claims/"+claim.ID+"/messages", strangerToken, map[string]string{"body": "hi"}, nil); status != http.StatusForbidden {
		t.Errorf("expected 403 sending as stranger, got %d", status)
	}
	if status := env.do(t, "GET", "/api/claims/"+claim.ID, strangerToken, nil, nil); status != http.StatusNotFound {
		t.Errorf("expected 404 for claim detail as stranger, got %d", status)
	}
	if status := env.do(t, "POST", "/api/claims/"+claim.ID+"/approve", seekerToken, nil, nil); status != http.StatusForbidden {
		t.Errorf("expected 403 for seeker approving, got %d", status)
	}

	var detail service.ClaimDetail
	if status := env.do(t, "GET", "/api/claims/"+claim.ID, seekerToken, nil, &detail); status != http.StatusOK {
		t.Fatalf("expected 200 for claim detail, got %d", status)
	}
	if len(detail.Messages) != 2 || detail.IsFinder {
		t.Errorf("unexpected claim detail: %+v", detail)
	}

	// Approval.
	var decided model.Claim
	if status := env.do(t, "POST", "/api/claims/"+claim.ID+"/approve", finderToken, nil, &decided); status != http.StatusOK {
		t.Fatalf("expected 200 approving, got %d", status)
	}
	if decided.Status != model.ClaimStatusApproved || decided.ItemStatus != model.ItemStatusClaimed {
		t.Errorf("expected approved claim on claimed item, got %+v", decided)
	}
	if status := env.do(t, "POST", "/api/claims/"+claim.ID+"/reject", finderToken, nil, nil); status != http.StatusConflict {
		t.Errorf("expected 409 deciding twice, got %d", status)
	}

	// The item left the public listing and the claim form says so.
	var items []model.Item
	env.do(t, "GET", "/api/items", "", nil, &items)
	if len(items) != 0 {
		t.Errorf("expected claimed item to be unlisted, got %d items", len(items))
	}
	var closed map[string]any
	env.do(t, "GET", "/api/items/"+item.ID+"/claim", strangerToken, nil, &closed)
	if closed["available"] != false || closed["notice"] != unavailableNotice {
		t.Errorf("expected unavailable notice, got %v", closed)
	}

	// Hand-off.
	var returned model.Item
	if status := env.do(t, "POST", "/api/items/"+item.ID+"/returned", finderToken, nil, &returned); status != http.StatusOK {
		t.Fatalf("expected 200 marking returned, got %d", status)
	}
	if returned.Status != model.ItemStatusReturned || returned.FinderID != finderID {
		t.Errorf("unexpected returned item: %+v", returned)
	}

	// The seeker heard back.
	inbox = service.Inbox{}
	env.do(t, "GET", "/api/notifications", seekerToken, nil, &inbox)
	if inbox.Unread != 1 {
		t.Errorf("expected seeker to have one unread notification, got %d", inbox.Unread)
	}
}

func TestRateLimitedMessages(t *testing.T) {
	env := setupTestServer(t, NewRateLimiter(1, 2))
	_, finderToken := env.user(t, "finder", "")
	_, seekerToken := env.user(t, "seeker", "")
	item := env.postItem(t, finderToken, "Phone")

	var claim model.Claim
	if status := env.do(t, "POST", "/api/items/"+item.ID+"/claims", seekerToken, map[string]string{"proof": "lock screen photo"}, &claim); status != http.StatusCreated {
		t.Fatalf("expected 201, got %d", status)
	}

	if status := env.do(t, "POST", "/api/claims/"+claim.ID+"/messages", seekerToken, map[string]string{"body": "one"}, nil); status != http.StatusCreated {
		t.Fatalf("expected 201, got %d", status)
	}
	if status := env.do(t, "POST", "/api/claims/"+claim.ID+"/messages", seekerToken, map[string]string{"body": "two"}, nil); status != http.StatusTooManyRequests {
		t.Errorf("expected 429 once the burst is spent, got %d", status)
	}

	// Limits are per user.
	if status := env.do(t, "POST", "/api/claims/"+claim.ID+"/messages", finderToken, map[string]string{"body": "hello"}, nil); status != http.StatusCreated {
		t.Errorf("expected finder to be unaffected, got %d", status)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := setupTestServer(t, nil)
	env.do(t, "GET", "/api/items", "", nil, nil)

	resp, err := http.Get(env.server.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics request: %v", err)
	}
	defer resp.Body.Close()
	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)
	if !strings.Contains(buf.String(), `route="GET /api/items"`) {
		t.Error("expected request metrics labelled by route pattern")
	}
}

func TestRespondUnknownAction(t *testing.T) {
	env := setupTestServer(t, nil)
	_, finderToken := env.user(t, "finder", "")
	_, seekerToken := env.user(t, "seeker", "")
	item := env.postItem(t, finderToken, "Gloves")

	var claim model.Claim
	if status := env.do(t, "POST", "/api/items/"+item.ID+"/claims", seekerToken, map[string]string{"proof": "left one is torn"}, &claim); status != http.StatusCreated {
		t.Fatalf("expected 201, got %d", status)
	}

	if status := env.do(t, "POST", "/api/claims/"+claim.ID+"/archive", finderToken, nil, nil); status != http.StatusNotFound {
		t.Errorf("expected 404 for unknown action, got %d", status)
	}

	var decided model.Claim
	if status := env.do(t, "POST", "/api/claims/"+claim.ID+"/reject", finderToken, nil, &decided); status != http.StatusOK {
		t.Fatalf("expected 200 rejecting, got %d", status)
	}
	if decided.Status != model.ClaimStatusRejected {
		t.Errorf("expected rejected claim, got %q", decided.Status)
	}
}

func TestUpdateItemWithBadPhotoKeepsItem(t *testing.T) {
	env := setupTestServer(t, nil)
	_, token := env.user(t, "finder", "")
	item := env.postItem(t, token, "Black wallet")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("title", "Renamed")
	mw.WriteField("description", "changed")
	mw.WriteField("neighborhood", "Elsewhere")
	fw, _ := mw.CreateFormFile("image", "notes.txt")
	fw.Write([]byte("not an image"))
	mw.Close()

	req, _ := http.NewRequest("PUT", env.server.URL+"/api/items/"+item.ID, &body)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("update request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	stored, err := store.GetItem(context.Background(), env.db, item.ID)
	if err != nil || stored == nil {
		t.Fatalf("loading item: %v", err)
	}
	if stored.Title != "Black wallet" || stored.Neighborhood != item.Neighborhood {
		t.Errorf("expected item unchanged, got title %q neighborhood %q", stored.Title, stored.Neighborhood)
	}
}
