package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"bistro-api/handlers"
	"bistro-api/middleware"
	"bistro-api/models"
	"bistro-api/payment"
	"bistro-api/store"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakePayments records every requested amount instead of calling the provider.
type fakePayments struct {
	mu      sync.Mutex
	amounts []int64
	err     error
}

func (f *fakePayments) CreateIntent(_ context.Context, amount int64, currency string) (*payment.Intent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.amounts = append(f.amounts, amount)
	if f.err != nil {
		return nil, f.err
	}
	return &payment.Intent{ID: "pi_test", Amount: amount, Currency: currency, ClientSecret: "pi_test_secret_xyz"}, nil
}

type testEnv struct {
	router   *gin.Engine
	store    *store.SQLStore
	auth     *middleware.Auth
	payments *fakePayments
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := store.OpenSQLite(filepath.Join(t.TempDir(), "routes_test.db"))
	if err != nil {
		t.Fatalf("OpenSQLite() error: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	auth := middleware.NewAuth([]byte("routes-test-secret"), time.Hour, st)
	payments := &fakePayments{}

	router := gin.New()
	SetupRoutes(router, handlers.New(st, auth, payments), auth)
	return &testEnv{router: router, store: st, auth: auth, payments: payments}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// seedUser stores a user and returns its id with a valid token for it.
func (e *testEnv) seedUser(t *testing.T, email string, admin bool) (string, string) {
	t.Helper()
	ctx := context.Background()

	res, created, err := e.store.InsertUserIfAbsent(ctx, &models.User{Name: "Seed", Email: email})
	if err != nil || !created {
		t.Fatalf("InsertUserIfAbsent(%s) = %v, %v", email, created, err)
	}
	if admin {
		if _, err := e.store.SetUserRole(ctx, res.InsertedID, models.RoleAdmin); err != nil {
			t.Fatalf("SetUserRole() error: %v", err)
		}
	}
	token, err := e.auth.IssueToken(email)
	if err != nil {
		t.Fatalf("IssueToken() error: %v", err)
	}
	return res.InsertedID, token
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode body: %v, body=%s", err, w.Body.String())
	}
	return v
}

func TestPublicRoutes(t *testing.T) {
	t.Parallel()

	t.Run("root answers with the welcome text", func(t *testing.T) {
		t.Parallel()
		w := newTestEnv(t).do(t, http.MethodGet, "/", "", nil)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
		}
		if got := w.Body.String(); got != "Welcome to Bistro Boss Restaurant Server" {
			t.Errorf("body = %q", got)
		}
	})

	t.Run("health pings the store", func(t *testing.T) {
		t.Parallel()
		w := newTestEnv(t).do(t, http.MethodGet, "/health", "", nil)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
		}
		if got := decode[map[string]any](t, w)["status"]; got != "healthy" {
			t.Errorf("status field = %v, want healthy", got)
		}
	})

	t.Run("health reports a closed store as unavailable", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		if err := env.store.Close(); err != nil {
			t.Fatalf("Close() error: %v", err)
		}
		w := env.do(t, http.MethodGet, "/health", "", nil)

		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want %d", w.Code, http.StatusServiceUnavailable)
		}
	})

	t.Run("menu is listed without a token", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		if _, err := env.store.InsertMenuItem(context.Background(), &models.MenuItem{Name: "Caesar Salad", Category: "salad", Price: 9.5}); err != nil {
			t.Fatalf("InsertMenuItem() error: %v", err)
		}
		w := env.do(t, http.MethodGet, "/menu", "", nil)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
		}
		items := decode[[]models.MenuItem](t, w)
		if len(items) != 1 || items[0].Name != "Caesar Salad" {
			t.Errorf("menu = %+v", items)
		}
	})
}

func TestIssueTokenRoute(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	w := env.do(t, http.MethodPost, "/users", "", gin.H{"name": "Ada", "email": "ada@example.com", "password": "s3cret-pass"})
	if w.Code != http.StatusOK {
		t.Fatalf("POST /users status = %d, body=%s", w.Code, w.Body.String())
	}

	t.Run("correct password yields a token for that email", func(t *testing.T) {
		t.Parallel()
		w := env.do(t, http.MethodPost, "/jwt", "", gin.H{"email": "ada@example.com", "password": "s3cret-pass"})
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body=%s", w.Code, w.Body.String())
		}
		token, _ := decode[map[string]any](t, w)["token"].(string)
		claims, err := env.auth.ParseToken(token)
		if err != nil {
			t.Fatalf("ParseToken() error: %v", err)
		}
		if claims.Email != "ada@example.com" {
			t.Errorf("Email = %q", claims.Email)
		}
	})

	tests := []struct {
		name string
		body gin.H
		want int
	}{
		{"wrong password", gin.H{"email": "ada@example.com", "password": "guess"}, http.StatusUnauthorized},
		{"unknown email", gin.H{"email": "nobody@example.com", "password": "s3cret-pass"}, http.StatusUnauthorized},
		{"missing password", gin.H{"email": "ada@example.com"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			w := env.do(t, http.MethodPost, "/jwt", "", tt.body)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}

	t.Run("account without a password cannot sign in", func(t *testing.T) {
		t.Parallel()
		env.seedUser(t, "social@example.com", false)
		w := env.do(t, http.MethodPost, "/jwt", "", gin.H{"email": "social@example.com", "password": "anything"})
		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
		}
	})
}

func TestCreateUserRoute(t *testing.T) {
	t.Parallel()

	t.Run("new email is inserted and existing email still gets an answer", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		body := gin.H{"name": "Grace", "email": "grace@example.com"}

		first := env.do(t, http.MethodPost, "/users", "", body)
		if first.Code != http.StatusOK {
			t.Fatalf("first status = %d", first.Code)
		}
		res := decode[models.InsertResult](t, first)
		if !res.Acknowledged || res.InsertedID == "" {
			t.Errorf("first result = %+v", res)
		}

		second := env.do(t, http.MethodPost, "/users", "", body)
		if second.Code != http.StatusOK {
			t.Fatalf("second status = %d", second.Code)
		}
		got := decode[map[string]any](t, second)
		if got["message"] != "user already exists" || got["insertedId"] != nil {
			t.Errorf("second body = %v", got)
		}
	})

	t.Run("missing email is rejected", func(t *testing.T) {
		t.Parallel()
		w := newTestEnv(t).do(t, http.MethodPost, "/users", "", gin.H{"name": "No Email"})
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})

	t.Run("role in the body is ignored", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.do(t, http.MethodPost, "/users", "", gin.H{"email": "sneaky@example.com", "role": "admin"})

		u, err := env.store.FindUserByEmail(context.Background(), "sneaky@example.com")
		if err != nil {
			t.Fatalf("FindUserByEmail() error: %v", err)
		}
		if u.IsAdmin() {
			t.Error("client-supplied role was stored")
		}
	})

	t.Run("concurrent sign-ins for one email store one user", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		const n = 12
		var wg sync.WaitGroup
		codes := make([]int, n)
		for i := 0; i < n; i++ {
			i := i
			wg.Add(1)
			go func() {
				defer wg.Done()
				codes[i] = env.do(t, http.MethodPost, "/users", "", gin.H{"email": "race@example.com"}).Code
			}()
		}
		wg.Wait()

		for i, code := range codes {
			if code != http.StatusOK {
				t.Errorf("request %d status = %d", i, code)
			}
		}
		users := decode[[]models.User](t, env.do(t, http.MethodGet, "/users", "", nil))
		if len(users) != 1 {
			t.Errorf("stored %d users, want 1", len(users))
		}
	})
}

func TestAdminRoutes(t *testing.T) {
	t.Parallel()

	t.Run("adding a menu item needs an admin token", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		_, userToken := env.seedUser(t, "diner@example.com", false)
		_, adminToken := env.seedUser(t, "chef@example.com", true)
		item := gin.H{"name": "Tiramisu", "category": "dessert", "price": 6.25}

		if w := env.do(t, http.MethodPost, "/menu", "", item); w.Code != http.StatusUnauthorized {
			t.Errorf("no token status = %d, want %d", w.Code, http.StatusUnauthorized)
		}
		if w := env.do(t, http.MethodPost, "/menu", userToken, item); w.Code != http.StatusForbidden {
			t.Errorf("non-admin status = %d, want %d", w.Code, http.StatusForbidden)
		}

		menu := decode[[]models.MenuItem](t, env.do(t, http.MethodGet, "/menu", "", nil))
		if len(menu) != 0 {
			t.Fatalf("rejected requests wrote %d menu items", len(menu))
		}

		w := env.do(t, http.MethodPost, "/menu", adminToken, item)
		if w.Code != http.StatusOK {
			t.Fatalf("admin status = %d, body=%s", w.Code, w.Body.String())
		}
		menu = decode[[]models.MenuItem](t, env.do(t, http.MethodGet, "/menu", "", nil))
		if len(menu) != 1 || menu[0].Price != 6.25 {
			t.Errorf("menu = %+v", menu)
		}
	})

	t.Run("deleting a menu item needs an admin token", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		_, userToken := env.seedUser(t, "diner@example.com", false)
		_, adminToken := env.seedUser(t, "chef@example.com", true)
		res, err := env.store.InsertMenuItem(context.Background(), &models.MenuItem{Name: "Soup"})
		if err != nil {
			t.Fatalf("InsertMenuItem() error: %v", err)
		}

		if w := env.do(t, http.MethodDelete, "/menu/"+res.InsertedID, userToken, nil); w.Code != http.StatusForbidden {
			t.Errorf("non-admin status = %d, want %d", w.Code, http.StatusForbidden)
		}
		w := env.do(t, http.MethodDelete, "/menu/"+res.InsertedID, adminToken, nil)
		if got := decode[models.DeleteResult](t, w); got.DeletedCount != 1 {
			t.Errorf("DeletedCount = %d, want 1", got.DeletedCount)
		}
	})

	t.Run("promoting a user", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		dinerID, userToken := env.seedUser(t, "diner@example.com", false)
		_, adminToken := env.seedUser(t, "chef@example.com", true)

		if w := env.do(t, http.MethodPatch, "/users/admin/"+dinerID, "", nil); w.Code != http.StatusUnauthorized {
			t.Errorf("no token status = %d, want %d", w.Code, http.StatusUnauthorized)
		}
		if w := env.do(t, http.MethodPatch, "/users/admin/"+dinerID, userToken, nil); w.Code != http.StatusForbidden {
			t.Errorf("self-promotion status = %d, want %d", w.Code, http.StatusForbidden)
		}

		w := env.do(t, http.MethodPatch, "/users/admin/"+dinerID, adminToken, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("admin status = %d", w.Code)
		}
		if got := decode[models.UpdateResult](t, w); got.MatchedCount != 1 {
			t.Errorf("MatchedCount = %d, want 1", got.MatchedCount)
		}
		u, err := env.store.FindUserByEmail(context.Background(), "diner@example.com")
		if err != nil {
			t.Fatalf("FindUserByEmail() error: %v", err)
		}
		if !u.IsAdmin() {
			t.Error("user was not promoted")
		}

		w = env.do(t, http.MethodPatch, "/users/admin/does-not-exist", adminToken, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("unknown id status = %d", w.Code)
		}
		if got := decode[models.UpdateResult](t, w); got.MatchedCount != 0 {
			t.Errorf("unknown id MatchedCount = %d, want 0", got.MatchedCount)
		}
	})
}

func TestAdminStatusRoute(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	_, userToken := env.seedUser(t, "diner@example.com", false)
	_, adminToken := env.seedUser(t, "chef@example.com", true)

	tests := []struct {
		name      string
		email     string
		token     string
		wantCode  int
		wantAdmin bool
	}{
		{"admin asking about self", "chef@example.com", adminToken, http.StatusOK, true},
		{"user asking about self", "diner@example.com", userToken, http.StatusOK, false},
		{"user asking about someone else", "chef@example.com", userToken, http.StatusForbidden, false},
		{"no token", "chef@example.com", "", http.StatusUnauthorized, false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			w := env.do(t, http.MethodGet, "/users/admin/"+tt.email, tt.token, nil)
			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantCode)
			}
			if tt.wantCode != http.StatusOK {
				return
			}
			if got := decode[map[string]any](t, w)["admin"]; got != tt.wantAdmin {
				t.Errorf("admin = %v, want %v", got, tt.wantAdmin)
			}
		})
	}
}

func TestCartRoutes(t *testing.T) {
	t.Parallel()

	t.Run("owner lists their own cart", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		_, token := env.seedUser(t, "diner@example.com", false)

		add := env.do(t, http.MethodPost, "/carts", "", gin.H{"menuItemId": "m1", "name": "Pizza", "price": 12, "userEmail": "diner@example.com"})
		if add.Code != http.StatusOK {
			t.Fatalf("POST /carts status = %d", add.Code)
		}
		env.do(t, http.MethodPost, "/carts", "", gin.H{"name": "Pasta", "userEmail": "other@example.com"})

		w := env.do(t, http.MethodGet, "/carts?email=diner@example.com", token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		items := decode[[]models.CartItem](t, w)
		if len(items) != 1 || items[0].Name != "Pizza" {
			t.Errorf("cart = %+v", items)
		}
	})

	t.Run("missing email yields an empty list", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		_, token := env.seedUser(t, "diner@example.com", false)

		w := env.do(t, http.MethodGet, "/carts", token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		if got := w.Body.String(); got != "[]" {
			t.Errorf("body = %s, want []", got)
		}
	})

	t.Run("someone else's cart is forbidden", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		_, token := env.seedUser(t, "diner@example.com", false)

		w := env.do(t, http.MethodGet, "/carts?email=other@example.com", token, nil)
		if w.Code != http.StatusForbidden {
			t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
		}
	})

	t.Run("cart item needs a user email", func(t *testing.T) {
		t.Parallel()
		w := newTestEnv(t).do(t, http.MethodPost, "/carts", "", gin.H{"name": "Pizza"})
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})

	t.Run("cart item is deleted by id", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		res, err := env.store.InsertCartItem(context.Background(), &models.CartItem{Name: "Pizza", UserEmail: "diner@example.com"})
		if err != nil {
			t.Fatalf("InsertCartItem() error: %v", err)
		}

		w := env.do(t, http.MethodDelete, "/carts/"+res.InsertedID, "", nil)
		if got := decode[models.DeleteResult](t, w); got.DeletedCount != 1 {
			t.Errorf("DeletedCount = %d, want 1", got.DeletedCount)
		}
		w = env.do(t, http.MethodDelete, "/carts/"+res.InsertedID, "", nil)
		if got := decode[models.DeleteResult](t, w); got.DeletedCount != 0 {
			t.Errorf("second DeletedCount = %d, want 0", got.DeletedCount)
		}
	})
}

func TestPaymentRoutes(t *testing.T) {
	t.Parallel()

	t.Run("price is charged in cents", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		_, token := env.seedUser(t, "diner@example.com", false)

		w := env.do(t, http.MethodPost, "/create-payment-intent", token, gin.H{"price": 10})
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body=%s", w.Code, w.Body.String())
		}
		if got := decode[map[string]any](t, w)["clientSecret"]; got != "pi_test_secret_xyz" {
			t.Errorf("clientSecret = %v", got)
		}
		if len(env.payments.amounts) != 1 || env.payments.amounts[0] != 1000 {
			t.Errorf("amounts = %v, want [1000]", env.payments.amounts)
		}
	})

	t.Run("intent requires a token", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		w := env.do(t, http.MethodPost, "/create-payment-intent", "", gin.H{"price": 10})
		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
		}
		if len(env.payments.amounts) != 0 {
			t.Errorf("provider called %d times", len(env.payments.amounts))
		}
	})

	t.Run("missing price is rejected before the provider", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		_, token := env.seedUser(t, "diner@example.com", false)

		w := env.do(t, http.MethodPost, "/create-payment-intent", token, gin.H{})
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
		}
		if len(env.payments.amounts) != 0 {
			t.Errorf("provider called %d times", len(env.payments.amounts))
		}
	})

	t.Run("provider failure surfaces as bad gateway", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.payments.err = errors.New("card network down")
		_, token := env.seedUser(t, "diner@example.com", false)

		w := env.do(t, http.MethodPost, "/create-payment-intent", token, gin.H{"price": 4.5})
		if w.Code != http.StatusBadGateway {
			t.Errorf("status = %d, want %d", w.Code, http.StatusBadGateway)
		}
	})

	t.Run("payment record is stored", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		w := env.do(t, http.MethodPost, "/payments", "", gin.H{
			"email":         "diner@example.com",
			"transactionId": "pi_123",
			"price":         22.5,
			"itemNames":     []string{"Pizza", "Soup"},
			"status":        "pending",
		})
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body=%s", w.Code, w.Body.String())
		}
		if got := decode[models.InsertResult](t, w); got.InsertedID == "" {
			t.Errorf("result = %+v", got)
		}
	})
}
