package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"backoffice-console/internal/authz"
	"backoffice-console/internal/forms"
	"backoffice-console/internal/registry"
	"backoffice-console/internal/repositories"
	"backoffice-console/internal/resources"
	"backoffice-console/internal/transport"
	"backoffice-console/pkg/eventbus"
	"backoffice-console/pkg/validation"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type apiCall struct {
	Method string
	Path   string
	Query  url.Values
	Body   string
}

// fakeAPI - удалённый API в памяти: маршруты "METHOD /path", журнал вызовов.
type fakeAPI struct {
	mu     sync.Mutex
	calls  []apiCall
	routes map[string]http.HandlerFunc
	server *httptest.Server
}

func newFakeAPI(t *testing.T) *fakeAPI {
	api := &fakeAPI{routes: make(map[string]http.HandlerFunc)}
	api.server = httptest.NewServer(http.HandlerFunc(api.serve))
	t.Cleanup(api.server.Close)
	return api
}

func (a *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	a.mu.Lock()
	a.calls = append(a.calls, apiCall{Method: r.Method, Path: r.URL.Path, Query: r.URL.Query(), Body: string(body)})
	h := a.routes[r.Method+" "+r.URL.Path]
	a.mu.Unlock()
	if h == nil {
		http.NotFound(w, r)
		return
	}
	h(w, r)
}

func (a *fakeAPI) on(method, path string, h http.HandlerFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.routes[method+" "+path] = h
}

func (a *fakeAPI) reply(method, path string, status int, body any, headers map[string]string) {
	a.on(method, path, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		for k, v := range headers {
			w.Header().Set(k, v)
		}
		w.WriteHeader(status)
		if body != nil {
			_ = json.NewEncoder(w).Encode(body)
		}
	})
}

func (a *fakeAPI) callsTo(method, path string) []apiCall {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []apiCall
	for _, c := range a.calls {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

func (a *fakeAPI) total() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.calls)
}

type recordingBus struct {
	mu     sync.Mutex
	events []eventbus.Event
}

func (b *recordingBus) Publish(_ context.Context, e eventbus.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
}

func (b *recordingBus) all() []eventbus.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]eventbus.Event(nil), b.events...)
}

type testEnv struct {
	api       *fakeAPI
	transport transport.Transport
	registry  *registry.Registry
	sessions  repositories.SessionRepositoryInterface
	bus       *recordingBus
	entities  EntityServiceInterface
	forms     *FormService
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithLoader(t, nil)
}

// newTestEnvWithLoader - loader == nil: варианты берутся из того же fakeAPI.
func newTestEnvWithLoader(t *testing.T, loader forms.OptionLoader) *testEnv {
	logger := zap.NewNop()
	api := newFakeAPI(t)
	tr := transport.New(api.server.URL, 5*time.Second, logger)

	reg := registry.New(logger)
	require.NoError(t, resources.Register(reg))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	sessions := repositories.NewRedisSessionRepository(client, time.Minute)

	if loader == nil {
		loader = forms.NewTransportLoader(tr)
	}

	bus := &recordingBus{}
	entities := NewEntityService(tr, bus, logger)
	return &testEnv{
		api:       api,
		transport: tr,
		registry:  reg,
		sessions:  sessions,
		bus:       bus,
		entities:  entities,
		forms:     NewFormService(reg, entities, loader, sessions, validation.New(), logger),
	}
}

func (e *testEnv) descriptor(t *testing.T, key string) *registry.ResourceDescriptor {
	desc, err := e.registry.Get(key)
	require.NoError(t, err)
	return desc
}

func actorWith(codes ...string) *authz.Actor {
	return authz.NewActor("42", codes, []string{"Operator"}, authz.Profile{})
}

func decodeBody(t *testing.T, raw string) map[string]any {
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &out))
	return out
}
