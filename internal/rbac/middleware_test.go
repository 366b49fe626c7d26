package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequireWithoutSubject(t *testing.T) {
	mw := Middleware{}
	handler := mw.Require(OpProductsRead)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/products", nil))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestRequireDeniedCapability(t *testing.T) {
	mw := Middleware{}
	handler := mw.Require(OpProductsWrite)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodPost, "/products", nil)
	req = req.WithContext(ContextWithSubject(req.Context(), Subject{UserID: 5, Role: RoleGeneral}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}

func TestRequireAllowedCapability(t *testing.T) {
	mw := Middleware{}
	called := false
	handler := mw.Require(OpSuppliersWrite)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPut, "/suppliers/1", nil)
	req = req.WithContext(ContextWithSubject(req.Context(), Subject{UserID: 5, Role: RoleSupplier}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if !called {
		t.Fatal("expected handler to run")
	}
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
}
