package storefront

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/tonimelisma/storefront-go/internal/api"
	"github.com/tonimelisma/storefront-go/internal/credstore"
	"github.com/tonimelisma/storefront-go/internal/model"
)

func testLogger(t *testing.T) *slog.Logger {
	t.Helper()

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type noRefresh struct{}

func (noRefresh) Refresh(context.Context) (*oauth2.Token, error) {
	return nil, assert.AnError
}

// newTestServices wires the services to handler through a real pipeline and
// credential store.
func newTestServices(t *testing.T, handler http.HandlerFunc) (*Services, *credstore.Store) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cipher, err := credstore.NewCipher(credstore.DefaultPassphrase)
	require.NoError(t, err)

	store := credstore.New(cipher, nil, testLogger(t))
	client := api.NewClient(api.Config{
		BaseURL:    srv.URL,
		HTTPClient: srv.Client(),
		Store:      store,
		Refresher:  noRefresh{},
		Logger:     testLogger(t),
	})

	return New(client, store, testLogger(t)), store
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()

	w.Header().Set("Content-Type", "application/json")
	assert.NoError(t, json.NewEncoder(w).Encode(v))
}

func readBody(t *testing.T, r *http.Request) string {
	t.Helper()

	data, err := io.ReadAll(r.Body)
	require.NoError(t, err)

	return string(data)
}

const authResponse = `{
	"userDetails": {"id": 1, "email": "example@mail.com", "firstName": "John", "lastName": "Doe", "role": "ADMIN", "isActive": true, "phoneNumber": "123-456-7890"},
	"accessToken": "test-access-token",
	"refreshToken": "test-refresh-token"
}`

func TestAuth_LoginRecordsSession(t *testing.T) {
	svc, store := newTestServices(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/auth/login", r.URL.Path)
		assert.JSONEq(t, `{"email":"example@mail.com","password":"password"}`, readBody(t, r))

		_, _ = w.Write([]byte(authResponse))
	})

	auth, err := svc.Auth.Login(context.Background(), model.LoginForm{Email: "example@mail.com", Password: "password"})
	require.NoError(t, err)
	assert.Equal(t, "test-access-token", auth.AccessToken)

	id, detail, ok := store.Identity()
	require.True(t, ok)
	assert.Equal(t, "1", id)
	assert.Equal(t, "123-456-7890", detail.PhoneNumber)
	assert.Equal(t, "test-access-token", store.AccessToken())
	assert.Equal(t, "ADMIN", store.Role())
}

func TestAuth_LoginRejected(t *testing.T) {
	svc, store := newTestServices(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"Invalid credentials"}`))
	})

	_, err := svc.Auth.Login(context.Background(), model.LoginForm{Email: "a@b.c", Password: "bad"})
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrBadRequest)
	assert.False(t, store.IsAuthenticated())
}

func TestAuth_LoginWithoutToken(t *testing.T) {
	svc, store := newTestServices(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"userDetails":{"id":1}}`))
	})

	_, err := svc.Auth.Login(context.Background(), model.LoginForm{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no access token")
	assert.False(t, store.IsAuthenticated())
}

func TestAuth_RegisterConflict(t *testing.T) {
	svc, _ := newTestServices(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/auth/register", r.URL.Path)
		w.WriteHeader(http.StatusConflict)
	})

	_, err := svc.Auth.Register(context.Background(), model.RegisterForm{Email: "taken@mail.com"})
	assert.ErrorIs(t, err, api.ErrConflict)
}

func TestAuth_Register(t *testing.T) {
	svc, store := newTestServices(t, func(w http.ResponseWriter, r *http.Request) {
		assert.JSONEq(t, `{"email":"new@mail.com","password":"pw","firstName":"Jane","lastName":"Roe","phoneNumber":"555"}`, readBody(t, r))
		_, _ = w.Write([]byte(authResponse))
	})

	_, err := svc.Auth.Register(context.Background(), model.RegisterForm{
		Email: "new@mail.com", Password: "pw", FirstName: "Jane", LastName: "Roe", PhoneNumber: "555",
	})
	require.NoError(t, err)
	assert.True(t, store.IsAuthenticated())
}

func TestAuth_LogoutClearsSessionEvenOnFailure(t *testing.T) {
	svc, store := newTestServices(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/auth/login" {
			_, _ = w.Write([]byte(authResponse))

			return
		}

		assert.Equal(t, "/v1/auth/logout", r.URL.Path)
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := svc.Auth.Login(context.Background(), model.LoginForm{Email: "a@b.c", Password: "pw"})
	require.NoError(t, err)

	err = svc.Auth.Logout(context.Background())
	assert.ErrorIs(t, err, api.ErrServerError)
	assert.False(t, store.IsAuthenticated())
	assert.Empty(t, store.AccessToken())
}

func TestProductQuery_Values(t *testing.T) {
	featured := false
	minPrice := 10.5

	q := ProductQuery{
		Page:       2,
		PageSize:   20,
		Name:       "lamp",
		CategoryID: "4",
		Featured:   &featured,
		SortBy:     "price",
		SortDir:    SortAsc,
		MinPrice:   &minPrice,
		Rating:     4,
	}

	assert.Equal(t,
		"categoryId=4&featured=false&minPrice=10.5&name=lamp&pageNo=2&pageSize=20&rating=4&sortBy=price&sortDir=asc",
		q.Values().Encode())
	assert.Empty(t, ProductQuery{}.Values())
}

func TestFeaturedQuery(t *testing.T) {
	assert.Equal(t, "featured=true&pageSize=12&sortBy=avgRating&sortDir=desc", FeaturedQuery().Values().Encode())
}

func TestProducts_List(t *testing.T) {
	svc, _ := newTestServices(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/products", r.URL.Path)
		assert.Equal(t, "lamp", r.URL.Query().Get("name"))

		writeJSON(t, w, model.Page[model.Product]{
			Content:       []model.Product{{ID: 1, Name: "Desk lamp", Price: 19.99}},
			TotalPages:    1,
			TotalElements: 1,
			Size:          10,
		})
	})

	page, err := svc.Products.List(context.Background(), ProductQuery{Name: "lamp"})
	require.NoError(t, err)
	require.Len(t, page.Content, 1)
	assert.Equal(t, "Desk lamp", page.Content[0].Name)
	assert.Equal(t, 1, page.TotalElements)
}

func TestProducts_GetNotFound(t *testing.T) {
	svc, _ := newTestServices(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/products/99", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := svc.Products.Get(context.Background(), 99)
	assert.ErrorIs(t, err, api.ErrNotFound)
}

func TestProducts_CreateUpdateDelete(t *testing.T) {
	var (
		mu    sync.Mutex
		calls []string
	)

	svc, _ := newTestServices(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls = append(calls, r.Method+" "+r.URL.Path)
		mu.Unlock()

		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)

			return
		}

		writeJSON(t, w, model.ProductDetail{Product: model.Product{ID: 5, Name: "Chair"}})
	})

	ctx := context.Background()
	form := model.ProductForm{Name: "Chair", Price: 49, CategoryID: "2", IsActive: true}

	created, err := svc.Products.Create(ctx, form)
	require.NoError(t, err)
	assert.EqualValues(t, 5, created.ID)

	_, err = svc.Products.Update(ctx, 5, form)
	require.NoError(t, err)

	require.NoError(t, svc.Products.Delete(ctx, 5))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"POST /v1/products", "PUT /v1/products/5", "DELETE /v1/products/5"}, calls)
}

func TestProducts_SetFeatured(t *testing.T) {
	svc, _ := newTestServices(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/v1/products/3/featured=true", r.URL.Path)

		writeJSON(t, w, model.ProductDetail{Product: model.Product{ID: 3, Featured: true}})
	})

	p, err := svc.Products.SetFeatured(context.Background(), 3, true)
	require.NoError(t, err)
	assert.True(t, p.Featured)
}

func TestCategories(t *testing.T) {
	parent := int64(1)

	svc, _ := newTestServices(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/v1/categories/parents":
			writeJSON(t, w, []model.Category{{ID: 1, Name: "Home"}})
		case r.Method == http.MethodGet && r.URL.Path == "/v1/categories" && r.URL.Query().Get("parentId") == "1":
			writeJSON(t, w, []model.Category{{ID: 2, Name: "Lighting", ParentID: &parent}})
		case r.Method == http.MethodGet && r.URL.Path == "/v1/categories/tree":
			writeJSON(t, w, []model.CategoryTree{{ID: 1, Name: "Home", SubCategories: []model.CategoryTree{{ID: 2, Name: "Lighting"}}}})
		case r.Method == http.MethodGet && r.URL.Path == "/v1/categories/2":
			writeJSON(t, w, model.Category{ID: 2, Name: "Lighting", ParentID: &parent})
		case r.Method == http.MethodPost && r.URL.Path == "/v1/categories":
			assert.JSONEq(t, `{"name":"Garden","parentId":null}`, readBody(t, r))
			writeJSON(t, w, model.Category{ID: 3, Name: "Garden"})
		case r.Method == http.MethodPut && r.URL.Path == "/v1/categories/3":
			writeJSON(t, w, model.Category{ID: 3, Name: "Outdoor"})
		case r.Method == http.MethodDelete && r.URL.Path == "/v1/categories/3":
			w.WriteHeader(http.StatusConflict)
		case r.Method == http.MethodDelete && r.URL.Path == "/v1/categories/3/force":
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL)
			w.WriteHeader(http.StatusTeapot)
		}
	})

	ctx := context.Background()

	parents, err := svc.Categories.Parents(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Home", parents[0].Name)

	children, err := svc.Categories.Children(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, parent, *children[0].ParentID)

	tree, err := svc.Categories.Tree(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Lighting", tree[0].SubCategories[0].Name)

	cat, err := svc.Categories.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Lighting", cat.Name)

	created, err := svc.Categories.Create(ctx, model.CategoryForm{Name: "Garden"})
	require.NoError(t, err)
	assert.EqualValues(t, 3, created.ID)

	updated, err := svc.Categories.Update(ctx, 3, model.CategoryForm{Name: "Outdoor"})
	require.NoError(t, err)
	assert.Equal(t, "Outdoor", updated.Name)

	assert.ErrorIs(t, svc.Categories.Delete(ctx, 3), api.ErrConflict)
	assert.NoError(t, svc.Categories.ForceDelete(ctx, 3))
}

func TestRatings_Create(t *testing.T) {
	svc, _ := newTestServices(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/ratings", r.URL.Path)
		assert.JSONEq(t, `{"comment":"Great","score":5,"productId":"7","customerId":"1"}`, readBody(t, r))

		writeJSON(t, w, model.Rating{ID: 11, Score: 5, ProductID: 7})
	})

	rating, err := svc.Ratings.Create(context.Background(), model.RatingForm{Comment: "Great", Score: 5, ProductID: "7", CustomerID: "1"})
	require.NoError(t, err)
	assert.EqualValues(t, 11, rating.ID)
}

func TestUsers(t *testing.T) {
	svc, _ := newTestServices(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method + " " + r.URL.Path {
		case "GET /v1/users":
			assert.Equal(t, "email=doe&pageNo=1&pageSize=10", r.URL.RawQuery)
			writeJSON(t, w, model.Page[model.UserDetail]{Content: []model.UserDetail{{User: model.User{ID: 4, Email: "doe@mail.com"}}}})
		case "PUT /v1/users/4/by-admin":
			assert.JSONEq(t, `{"email":"doe@mail.com","firstName":"John","lastName":"Doe"}`, readBody(t, r))
		case "DELETE /v1/users/4":
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL)
		}
	})

	ctx := context.Background()

	page, err := svc.Users.List(ctx, UserQuery{Page: 1, PageSize: 10, Email: "doe"})
	require.NoError(t, err)
	assert.Equal(t, "doe@mail.com", page.Content[0].Email)

	require.NoError(t, svc.Users.UpdateByAdmin(ctx, 4, model.CustomerForm{Email: "doe@mail.com", FirstName: "John", LastName: "Doe"}))
	require.NoError(t, svc.Users.Delete(ctx, 4))
}
