package integration

import (
	"net/http"
	"testing"
)

func TestIntegration_Unauthenticated(t *testing.T) {
	u := waitReady(t)
	if code, _ := call(t, http.MethodGet, u+"/cart", "", ""); code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
}

func TestIntegration_UnknownProduct(t *testing.T) {
	u := waitReady(t)
	if code, _ := call(t, http.MethodGet, u+"/products/__missing__", "", ""); code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
	if code, _ := call(t, http.MethodPost, u+"/cart/items", "edge-user", `{"productId":"__missing__"}`); code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
}

func TestIntegration_BadBodies(t *testing.T) {
	u := waitReady(t)
	if code, _ := call(t, http.MethodPost, u+"/cart/items", "edge-user", `{"productId":`); code != http.StatusBadRequest {
		t.Fatalf("malformed json: expected 400, got %d", code)
	}
	if code, _ := call(t, http.MethodPost, u+"/checkout/quote", "edge-user", `{"shippingMethod":"postage","paymentMethod":"cod"}`); code != http.StatusBadRequest {
		t.Fatalf("postage+cod: expected 400, got %d", code)
	}
	if code, _ := call(t, http.MethodPost, u+"/checkout/quote", "edge-user", `{"shippingMethod":"drone"}`); code != http.StatusBadRequest {
		t.Fatalf("unknown shipping: expected 400, got %d", code)
	}
}
