package handler_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"stockly-api/internal/handler"
	"stockly-api/internal/middleware"
	"stockly-api/internal/model"
	"stockly-api/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type stubUserRepo struct {
	users []*model.User
}

func (r *stubUserRepo) FindByEmail(email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) FindByUsername(username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) FindByID(id uuid.UUID) (*model.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			clone := *u
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) Create(user *model.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	clone := *user
	r.users = append(r.users, &clone)
	return nil
}

type stubProductRepo struct {
	products []model.Product
}

func (r *stubProductRepo) Create(p *model.Product) error { r.products = append(r.products, *p); return nil }
func (r *stubProductRepo) FindAll() ([]model.Product, error) {
	return r.products, nil
}
func (r *stubProductRepo) FindByID(id uuid.UUID) (*model.Product, error) {
	return nil, gorm.ErrRecordNotFound
}
func (r *stubProductRepo) FindBySKU(sku string) (*model.Product, error) {
	return nil, gorm.ErrRecordNotFound
}
func (r *stubProductRepo) Update(p *model.Product) error { return nil }
func (r *stubProductRepo) Delete(id uuid.UUID) error     { return nil }

func newTestApp() (*fiber.App, *stubUserRepo) {
	userRepo := &stubUserRepo{}
	productRepo := &stubProductRepo{products: []model.Product{
		{SKU: "SKU-1", Name: "Widget", Price: 10, Quantity: 5},
	}}

	authHandler := handler.NewAuthHandler(service.NewAuthService(userRepo))
	insightsHandler := handler.NewInsightsHandler(service.NewInsightsService(productRepo))

	app := fiber.New()

	auth := app.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/logout", authHandler.Logout)
	auth.Get("/session", authHandler.Session)

	app.Get("/insights", middleware.RequireAuth(userRepo), insightsHandler.GetInsights)

	return app, userRepo
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string, cookies ...*http.Cookie) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	return out
}

func TestRegisterEndpoint(t *testing.T) {
	app, _ := newTestApp()

	resp := doJSON(t, app, "POST", "/auth/register", `{"name":"Alice","email":"alice@example.com","password":"secret1"}`)
	if resp.StatusCode != 201 {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["username"] != "alice" || body["email"] != "alice@example.com" {
		t.Fatalf("unexpected body: %v", body)
	}
	if _, leaked := body["password"]; leaked {
		t.Fatalf("response leaked the password hash")
	}
}

func TestRegisterEndpoint_Failures(t *testing.T) {
	app, _ := newTestApp()

	resp := doJSON(t, app, "POST", "/auth/register", `{"name":"","email":"x","password":"123"}`)
	if resp.StatusCode != 400 {
		t.Fatalf("validation status = %d, want 400", resp.StatusCode)
	}

	_ = doJSON(t, app, "POST", "/auth/register", `{"name":"A","email":"a@x.com","password":"secret1"}`)
	resp = doJSON(t, app, "POST", "/auth/register", `{"name":"B","email":"a@x.com","password":"secret2"}`)
	if resp.StatusCode != 400 {
		t.Fatalf("duplicate status = %d, want 400", resp.StatusCode)
	}
}

func sessionCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == handler.SessionCookie {
			return c
		}
	}
	return nil
}

func TestLoginAndSessionFlow(t *testing.T) {
	app, _ := newTestApp()

	_ = doJSON(t, app, "POST", "/auth/register", `{"name":"Alice","email":"alice@example.com","password":"secret1"}`)

	// No cookie: anonymous, not an error response shape
	resp := doJSON(t, app, "GET", "/auth/session", "")
	if resp.StatusCode != 401 {
		t.Fatalf("anonymous session status = %d, want 401", resp.StatusCode)
	}

	resp = doJSON(t, app, "POST", "/auth/login", `{"email":"alice@example.com","password":"secret1"}`)
	if resp.StatusCode != 200 {
		t.Fatalf("login status = %d, want 200", resp.StatusCode)
	}
	cookie := sessionCookie(resp)
	if cookie == nil || cookie.Value == "" {
		t.Fatalf("login did not set the session cookie")
	}

	resp = doJSON(t, app, "GET", "/auth/session", "", cookie)
	if resp.StatusCode != 200 {
		t.Fatalf("session status = %d, want 200", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["email"] != "alice@example.com" {
		t.Fatalf("session returned %v", body)
	}

	resp = doJSON(t, app, "GET", "/auth/session", "", &http.Cookie{Name: handler.SessionCookie, Value: "tampered"})
	if resp.StatusCode != 401 {
		t.Fatalf("tampered session status = %d, want 401", resp.StatusCode)
	}
}

func TestLoginEndpoint_InvalidCredentials(t *testing.T) {
	app, _ := newTestApp()

	resp := doJSON(t, app, "POST", "/auth/login", `{"email":"ghost@example.com","password":"nope123"}`)
	if resp.StatusCode != 401 {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestLogoutExpiresCookie(t *testing.T) {
	app, _ := newTestApp()

	resp := doJSON(t, app, "POST", "/auth/logout", "")
	if resp.StatusCode != 200 {
		t.Fatalf("logout status = %d, want 200", resp.StatusCode)
	}
	cookie := sessionCookie(resp)
	if cookie == nil {
		t.Fatalf("logout did not touch the session cookie")
	}
	if cookie.Value != "" || cookie.Expires.After(time.Now()) {
		t.Fatalf("logout cookie not expired: %+v", cookie)
	}
}

func TestProtectedInsights(t *testing.T) {
	app, _ := newTestApp()

	resp := doJSON(t, app, "GET", "/insights", "")
	if resp.StatusCode != 401 {
		t.Fatalf("unauthenticated insights status = %d, want 401", resp.StatusCode)
	}

	_ = doJSON(t, app, "POST", "/auth/register", `{"name":"Alice","email":"alice@example.com","password":"secret1"}`)
	login := doJSON(t, app, "POST", "/auth/login", `{"email":"alice@example.com","password":"secret1"}`)
	cookie := sessionCookie(login)

	resp = doJSON(t, app, "GET", "/insights", "", cookie)
	if resp.StatusCode != 200 {
		t.Fatalf("insights status = %d, want 200", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["total_products"] != float64(1) {
		t.Fatalf("total_products = %v, want 1", body["total_products"])
	}
}
