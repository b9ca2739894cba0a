package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/fairyhunter13/storefront-service/internal/account"
	"github.com/fairyhunter13/storefront-service/internal/auth"
	"github.com/fairyhunter13/storefront-service/internal/cart"
	"github.com/fairyhunter13/storefront-service/internal/catalog"
	"github.com/fairyhunter13/storefront-service/internal/checkout"
	"github.com/fairyhunter13/storefront-service/internal/config"
	httpopenapi "github.com/fairyhunter13/storefront-service/internal/http/openapi"
	"github.com/fairyhunter13/storefront-service/internal/notify"
	"github.com/fairyhunter13/storefront-service/internal/orders"
)

// Backend is everything the API persists through.
type Backend interface {
	catalog.Store
	cart.Store
	checkout.OrderStore
	orders.Store
	account.Store
	Ping(ctx context.Context) error
}

type App struct {
	Cfg      config.Config
	Store    Backend
	Auth     auth.Authenticator
	Mail     *notify.Dispatcher
	Catalog  *catalog.Service
	Cart     *cart.Aggregator
	Checkout *checkout.Service
	Orders   *orders.Service
	Accounts *account.Service
	closing  atomic.Bool
	started  time.Time
}

// NewApp wires the domain services over st. d may be nil, in which case no
// confirmation mail is sent.
func NewApp(cfg config.Config, st Backend, authn auth.Authenticator, d *notify.Dispatcher) *App {
	a := &App{
		Cfg:      cfg,
		Store:    st,
		Auth:     authn,
		Mail:     d,
		Catalog:  catalog.NewService(st),
		Cart:     cart.New(st),
		Orders:   orders.NewService(st),
		Accounts: account.NewService(st),
		started:  time.Now(),
	}
	var n checkout.Notifier
	if d != nil {
		n = d
	}
	a.Checkout = checkout.NewService(st, a.Cart, n)
	return a
}

// StartShutdown stops accepting orders and closes mail intake.
func (a *App) StartShutdown() {
	a.closing.Store(true)
	if a.Mail != nil {
		a.Mail.CloseIntake()
	}
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	if err := a.Store.Ping(r.Context()); err != nil {
		WriteJSONError(w, http.StatusServiceUnavailable, "store_unavailable", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) metricsHandler(w http.ResponseWriter, r *http.Request) {
	m := map[string]any{
		"uptime_sec": time.Since(a.started).Seconds(),
		"db_driver":  a.Cfg.DBDriver,
	}
	if a.Mail != nil {
		m["mail"] = a.Mail.Stats()
		m["mail_workers"] = a.Mail.WorkerCount()
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(m)
}

func (a *App) openapiHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(httpopenapi.YAML)
}

const docsPage = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>Storefront API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui'
      });
    </script>
  </body>
</html>`

func (a *App) docsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(docsPage))
}
