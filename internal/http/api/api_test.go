package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/appdeck/appdeck/internal/config"
	"github.com/appdeck/appdeck/internal/db"
	"github.com/appdeck/appdeck/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var testJWT = config.JWTConfig{Secret: "test-secret", Expiry: time.Hour}

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	conn, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	r := gin.New()
	RegisterRoutes(r, conn, testJWT)
	return r, conn
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if errEnc := json.NewEncoder(&buf).Encode(body); errEnc != nil {
			t.Fatalf("encode body: %v", errEnc)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if errDec := json.Unmarshal(w.Body.Bytes(), &out); errDec != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), errDec)
	}
	return out
}

func signupAndLogin(t *testing.T, r *gin.Engine, username string) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/v1/signup/", "", gin.H{
		"username": username,
		"password": "secret123",
		"email":    username + "@example.com",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("signup %s: status %d body %s", username, w.Code, w.Body.String())
	}
	w = doJSON(t, r, http.MethodPost, "/api/v1/login/", "", gin.H{
		"username": username,
		"password": "secret123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: status %d body %s", username, w.Code, w.Body.String())
	}
	token, ok := decodeBody(t, w)["token"].(string)
	if !ok || token == "" {
		t.Fatalf("login %s: missing token in %s", username, w.Body.String())
	}
	return token
}

func createApp(t *testing.T, r *gin.Engine, token, name, domain string) uint64 {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/v1/apps/", token, gin.H{
		"name":        name,
		"description": "Web app for determining when to flip burgers.",
		"app_type":    "Web",
		"framework":   "Django",
		"domain_name": domain,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create app %s: status %d body %s", name, w.Code, w.Body.String())
	}
	id, ok := decodeBody(t, w)["id"].(float64)
	if !ok {
		t.Fatalf("create app %s: missing id in %s", name, w.Body.String())
	}
	return uint64(id)
}

func TestHealthz(t *testing.T) {
	r, _ := newTestRouter(t)
	w := doJSON(t, r, http.MethodGet, "/healthz", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("healthz: status %d body %s", w.Code, w.Body.String())
	}
}

func TestSignupAndLogin(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/signup/", "", gin.H{
		"username": "testuser",
		"password": "secret123",
		"email":    "test@example.com",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("signup: status %d body %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPost, "/api/v1/signup/", "", gin.H{
		"username": "testuser",
		"password": "secret123",
		"email":    "other@example.com",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate signup: expected 400, got %d body %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPost, "/api/v1/signup/", "", gin.H{
		"username": "shortpw",
		"password": "abc",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("short password signup: expected 400, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/api/v1/login/", "", gin.H{
		"username": "testuser",
		"password": "secret123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login: status %d body %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["token"] == "" || body["token"] == nil {
		t.Fatalf("login: expected token in %s", w.Body.String())
	}
	user, ok := body["user"].(map[string]any)
	if !ok || user["username"] != "testuser" {
		t.Fatalf("login: expected user payload in %s", w.Body.String())
	}

	w = doJSON(t, r, http.MethodPost, "/api/v1/login/", "", gin.H{
		"username": "testuser",
		"password": "wrongpass",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: expected 401, got %d", w.Code)
	}
	if decodeBody(t, w)["error"] != "invalid credentials" {
		t.Fatalf("wrong password: unexpected body %s", w.Body.String())
	}

	w = doJSON(t, r, http.MethodPost, "/api/v1/login/", "", gin.H{
		"username": "nobody",
		"password": "secret123",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unknown user: expected 401, got %d", w.Code)
	}
}

func TestSignupWithoutEmail(t *testing.T) {
	r, _ := newTestRouter(t)

	// Email is optional; accounts without one must not collide.
	for _, username := range []string{"alice", "bob"} {
		w := doJSON(t, r, http.MethodPost, "/api/v1/signup/", "", gin.H{
			"username": username,
			"password": "secret123",
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("signup %s without email: status %d body %s", username, w.Code, w.Body.String())
		}
	}
}

func TestAppsRequireAuth(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/v1/apps/", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no token: expected 401, got %d", w.Code)
	}
	w = doJSON(t, r, http.MethodGet, "/api/v1/apps/", "not-a-jwt", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: expected 401, got %d", w.Code)
	}
}

func TestPlansArePublic(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/v1/plans/", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list plans: status %d body %s", w.Code, w.Body.String())
	}
	plans, ok := decodeBody(t, w)["plans"].([]any)
	if !ok || len(plans) != 3 {
		t.Fatalf("expected 3 seeded plans, got %s", w.Body.String())
	}
	first, ok := plans[0].(map[string]any)
	if !ok || first["name"] != "Free" {
		t.Fatalf("expected Free plan first by price, got %s", w.Body.String())
	}
}

func TestAppLifecycle(t *testing.T) {
	r, conn := newTestRouter(t)
	owner := signupAndLogin(t, r, "owner")
	stranger := signupAndLogin(t, r, "stranger")

	appID := createApp(t, r, owner, "Hamburger Flipper", "burgerflip.com")
	appPath := "/api/v1/apps/" + itoa(appID)

	w := doJSON(t, r, http.MethodGet, appPath, owner, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("owner get: status %d body %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, appPath, stranger, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("stranger get: expected 403, got %d body %s", w.Code, w.Body.String())
	}
	if decodeBody(t, w)["error"] != "not the owner" {
		t.Fatalf("stranger get: unexpected body %s", w.Body.String())
	}

	w = doJSON(t, r, http.MethodPatch, appPath, owner, gin.H{"domain_name": "new.com"})
	if w.Code != http.StatusOK {
		t.Fatalf("owner patch: status %d body %s", w.Code, w.Body.String())
	}
	w = doJSON(t, r, http.MethodGet, appPath, owner, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get after patch: status %d", w.Code)
	}
	if decodeBody(t, w)["domain_name"] != "new.com" {
		t.Fatalf("patch not visible on get: %s", w.Body.String())
	}

	w = doJSON(t, r, http.MethodPut, appPath, stranger, gin.H{
		"name":      "Stolen App",
		"app_type":  "Web",
		"framework": "Django",
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("stranger put: expected 403, got %d body %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodDelete, appPath, stranger, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("stranger delete: expected 403, got %d", w.Code)
	}
	var count int64
	if errCount := conn.Model(&models.App{}).Count(&count).Error; errCount != nil {
		t.Fatalf("count apps: %v", errCount)
	}
	if count != 1 {
		t.Fatalf("app must survive denied delete, count %d", count)
	}

	w = doJSON(t, r, http.MethodDelete, appPath, owner, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("owner delete: expected 204, got %d body %s", w.Code, w.Body.String())
	}
	w = doJSON(t, r, http.MethodGet, appPath, owner, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", w.Code)
	}
}

func TestAppCreateValidation(t *testing.T) {
	r, conn := newTestRouter(t)
	owner := signupAndLogin(t, r, "owner")

	createApp(t, r, owner, "Hamburger Flipper", "burgerflip.com")

	w := doJSON(t, r, http.MethodPost, "/api/v1/apps/", owner, gin.H{
		"name":      "Hamburger Flipper",
		"app_type":  "Web",
		"framework": "Django",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate name: expected 400, got %d body %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPost, "/api/v1/apps/", owner, gin.H{
		"name":      "Bad Type",
		"app_type":  "Desktop",
		"framework": "Django",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid app_type: expected 400, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/api/v1/apps/", owner, gin.H{
		"name":        "Another App",
		"app_type":    "Web",
		"framework":   "Django",
		"domain_name": "burgerflip.com",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate domain: expected 400, got %d body %s", w.Code, w.Body.String())
	}

	var count int64
	if errCount := conn.Model(&models.App{}).Count(&count).Error; errCount != nil {
		t.Fatalf("count apps: %v", errCount)
	}
	if count != 1 {
		t.Fatalf("rejected creates must not persist, count %d", count)
	}
}

func TestMissingIDRoutes(t *testing.T) {
	r, _ := newTestRouter(t)
	token := signupAndLogin(t, r, "testuser")

	for _, tc := range []struct {
		method string
		path   string
	}{
		{http.MethodPut, "/api/v1/apps/"},
		{http.MethodPatch, "/api/v1/apps/"},
		{http.MethodDelete, "/api/v1/apps/"},
		{http.MethodPut, "/api/v1/subscriptions/"},
		{http.MethodPatch, "/api/v1/subscriptions/"},
	} {
		w := doJSON(t, r, tc.method, tc.path, token, gin.H{})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s %s: expected 400, got %d", tc.method, tc.path, w.Code)
		}
		if decodeBody(t, w)["error"] != "missing primary key" {
			t.Fatalf("%s %s: unexpected body %s", tc.method, tc.path, w.Body.String())
		}
	}
}

func TestAppGetMalformedID(t *testing.T) {
	r, _ := newTestRouter(t)
	token := signupAndLogin(t, r, "testuser")

	w := doJSON(t, r, http.MethodGet, "/api/v1/apps/abc", token, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("malformed id: expected 404, got %d body %s", w.Code, w.Body.String())
	}
}

func TestSubscriptionFlow(t *testing.T) {
	r, conn := newTestRouter(t)
	owner := signupAndLogin(t, r, "owner")
	stranger := signupAndLogin(t, r, "stranger")

	appID := createApp(t, r, owner, "Hamburger Flipper", "burgerflip.com")

	var free, pro models.Plan
	if errPlan := conn.Where("name = ?", "Free").First(&free).Error; errPlan != nil {
		t.Fatalf("find Free plan: %v", errPlan)
	}
	if errPlan := conn.Where("name = ?", "Pro").First(&pro).Error; errPlan != nil {
		t.Fatalf("find Pro plan: %v", errPlan)
	}

	w := doJSON(t, r, http.MethodPost, "/api/v1/subscriptions/", owner, gin.H{
		"plan":             free.ID,
		"subscription_app": appID,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create subscription: status %d body %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	subID := uint64(body["id"].(float64))
	if body["active"] != true {
		t.Fatalf("new subscription must be active: %s", w.Body.String())
	}

	// The created link shows up on the app as its back-reference.
	w = doJSON(t, r, http.MethodGet, "/api/v1/apps/"+itoa(appID), owner, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get app: status %d", w.Code)
	}
	if ref, ok := decodeBody(t, w)["app_subscription_id"].(float64); !ok || uint64(ref) != subID {
		t.Fatalf("expected app_subscription_id %d, got %s", subID, w.Body.String())
	}

	subPath := "/api/v1/subscriptions/" + itoa(subID)

	w = doJSON(t, r, http.MethodPut, subPath, stranger, gin.H{"plan": pro.ID})
	if w.Code != http.StatusForbidden {
		t.Fatalf("stranger plan change: expected 403, got %d body %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPut, subPath, owner, gin.H{"plan": pro.ID})
	if w.Code != http.StatusOK {
		t.Fatalf("owner plan change: status %d body %s", w.Code, w.Body.String())
	}
	if plan, ok := decodeBody(t, w)["plan"].(float64); !ok || uint64(plan) != pro.ID {
		t.Fatalf("expected plan %d after update, got %s", pro.ID, w.Body.String())
	}

	// A patch without a plan is a no-op but still goes through the gate.
	w = doJSON(t, r, http.MethodPatch, subPath, stranger, gin.H{})
	if w.Code != http.StatusForbidden {
		t.Fatalf("stranger empty patch: expected 403, got %d", w.Code)
	}
	w = doJSON(t, r, http.MethodPatch, subPath, owner, gin.H{})
	if w.Code != http.StatusOK {
		t.Fatalf("owner empty patch: status %d body %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPost, "/api/v1/subscriptions/", owner, gin.H{
		"plan":             uint64(9999),
		"subscription_app": appID,
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing plan: expected 404, got %d body %s", w.Code, w.Body.String())
	}
}

func itoa(v uint64) string {
	return strconv.FormatUint(v, 10)
}
