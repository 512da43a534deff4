package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sellpoint-ua/cart-engine/internal/credentials"
	pkgerrors "github.com/sellpoint-ua/cart-engine/pkg/errors"
)

func newTestClient(t *testing.T, handler http.Handler, token string) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(
		credentials.NewStatic(token),
		WithBaseURL(server.URL),
		WithHTTPClient(server.Client()),
	)
	if err != nil {
		t.Fatalf("build client: %v", err)
	}
	return client
}

func TestNewClientRequiresCredentials(t *testing.T) {
	t.Parallel()
	if _, err := NewClient(nil); err == nil {
		t.Fatal("expected error without credential provider")
	}
}

func TestFetchCartDecodesLines(t *testing.T) {
	t.Parallel()
	var gotAuth string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/Cart/GetByMyId" || r.Method != http.MethodGet {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"l1","userId":"u1","productId":"p1","pcs":2}]`))
	}), "tok-1")

	lines, err := client.FetchCart(context.Background())
	if err != nil {
		t.Fatalf("fetch cart: %v", err)
	}
	if gotAuth != "Bearer tok-1" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	if len(lines) != 1 || lines[0].ProductID != "p1" || lines[0].Pcs != 2 {
		t.Fatalf("unexpected lines: %+v", lines)
	}
}

func TestFetchCartWithoutTokenIsUnauthenticated(t *testing.T) {
	t.Parallel()
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("gateway must not be invoked without a token")
	}), "")

	_, err := client.FetchCart(context.Background())
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}

func TestAddLineSendsFormFields(t *testing.T) {
	t.Parallel()
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/Cart/AddToCart" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.PostFormValue("ProductId") != "p-7" || r.PostFormValue("Pcs") != "1" {
			t.Errorf("unexpected form: %v", r.PostForm)
		}
		w.WriteHeader(http.StatusOK)
	}), "tok")

	// pcs below 1 clamps to 1 on add
	if err := client.AddLine(context.Background(), "p-7", 0); err != nil {
		t.Fatalf("add line: %v", err)
	}
	if err := client.AddLine(context.Background(), " ", 1); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for blank product id, got %v", err)
	}
}

func TestChangePcsQueryEncoding(t *testing.T) {
	t.Parallel()
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/Cart/ChangeCartPcs" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		query := r.URL.Query()
		if query.Get("id") != "line 1" || query.Get("pcs") != "4" {
			t.Errorf("unexpected query: %v", query)
		}
		w.WriteHeader(http.StatusNoContent)
	}), "tok")

	if err := client.ChangePcs(context.Background(), "line 1", 4); err != nil {
		t.Fatalf("change pcs: %v", err)
	}
	if err := client.ChangePcs(context.Background(), "line 1", 0); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for pcs 0, got %v", err)
	}
}

func TestRemoveAndClear(t *testing.T) {
	t.Parallel()
	var paths []string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("expected DELETE, got %s", r.Method)
		}
		paths = append(paths, r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}), "tok")

	if err := client.RemoveLine(context.Background(), "l-1"); err != nil {
		t.Fatalf("remove line: %v", err)
	}
	if err := client.ClearCart(context.Background()); err != nil {
		t.Fatalf("clear cart: %v", err)
	}
	if len(paths) != 2 || paths[0] != "/Cart/DeleteFromCart" || paths[1] != "/Cart/ClearCartList" {
		t.Fatalf("unexpected paths: %v", paths)
	}
}

func TestNon2xxSurfacesBodyAsMessage(t *testing.T) {
	t.Parallel()
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("product is out of stock"))
	}), "tok")

	err := client.ChangePcs(context.Background(), "l-1", 2)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if typed.Message() != "product is out of stock" {
		t.Fatalf("expected backend body as message, got %q", typed.Message())
	}
}

func TestUnauthorizedStatusMapsToUnauthenticated(t *testing.T) {
	t.Parallel()
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}), "stale-token")

	_, err := client.FetchCart(context.Background())
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthenticated) {
		t.Fatalf("expected unauthenticated on 401, got %v", err)
	}
}
