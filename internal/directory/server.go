package directory

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ssabro/MailVista-sub001/internal/domain"
)

// memoryStore holds published bundles and spare one-time prekeys in memory.
// Each fetch hands out at most one spare prekey, falling back to whatever the
// bundle itself carried once the spares run out.
type memoryStore struct {
	mu      sync.RWMutex
	bundles map[string]domain.PreKeyBundle
	spares  map[string][]domain.OneTimePreKeyPublic
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		bundles: make(map[string]domain.PreKeyBundle),
		spares:  make(map[string][]domain.OneTimePreKeyPublic),
	}
}

func (m *memoryStore) put(account string, b domain.PreKeyBundle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bundles[account] = b
}

func (m *memoryStore) addPreKeys(account string, keys []domain.OneTimePreKeyPublic) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.spares[account] = append(m.spares[account], keys...)
}

func (m *memoryStore) take(account string) (domain.PreKeyBundle, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bundles[account]
	if !ok {
		return domain.PreKeyBundle{}, false
	}
	if spares := m.spares[account]; len(spares) > 0 {
		otpk := spares[0]
		m.spares[account] = spares[1:]
		b.OneTimePreKey = &otpk
	}
	return b, true
}

// NewHandler returns the key-directory HTTP handler.
func NewHandler() http.Handler {
	ms := newMemoryStore()

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(15 * time.Second))
	r.Use(httprate.LimitByIP(300, 1*time.Minute))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1/accounts/{account}", func(r chi.Router) {
		r.Post("/bundle", func(w http.ResponseWriter, req *http.Request) {
			account := chi.URLParam(req, "account")
			var b domain.PreKeyBundle
			if err := json.NewDecoder(req.Body).Decode(&b); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			ms.put(account, b)
			w.WriteHeader(http.StatusNoContent)
		})

		r.Post("/prekeys", func(w http.ResponseWriter, req *http.Request) {
			account := chi.URLParam(req, "account")
			var in preKeyUpload
			if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			ms.addPreKeys(account, in.Keys)
			w.WriteHeader(http.StatusNoContent)
		})

		r.Get("/bundle", func(w http.ResponseWriter, req *http.Request) {
			account := chi.URLParam(req, "account")
			b, ok := ms.take(account)
			if !ok {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(b)
		})
	})

	return r
}
