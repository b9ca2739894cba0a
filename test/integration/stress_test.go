package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/google/uuid"
)

// Concurrent adds of the same product by one user must merge into one line.
func TestIntegration_ConcurrentAddsMerge(t *testing.T) {
	u := waitReady(t)
	admin := ensureAdmin(t, u)
	p := createProduct(t, u, admin, 1000, "")
	user := "stress-" + uuid.NewString()

	concurrency := 20
	var wg sync.WaitGroup
	wg.Add(concurrency)
	errCh := make(chan error, concurrency)
	for g := 0; g < concurrency; g++ {
		go func() {
			defer wg.Done()
			code, b := call(t, http.MethodPost, u+"/cart/items", user, `{"productId":"`+p.ID+`"}`)
			if code != http.StatusCreated {
				errCh <- fmt.Errorf("expected 201, got %d: %s", code, b)
			}
		}()
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Fatal(err)
	}

	_, b := call(t, http.MethodGet, u+"/cart", user, "")
	var c cart
	if err := json.Unmarshal(b, &c); err != nil {
		t.Fatal(err)
	}
	if len(c.Lines) != 1 || c.Lines[0].Quantity != concurrency {
		t.Fatalf("expected one line with quantity %d, got %s", concurrency, b)
	}
}
