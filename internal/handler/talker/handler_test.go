package talker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/talker-manager/backend/internal/middleware"
	model "github.com/zhouzirui/talker-manager/backend/internal/model/talker"
	talkerService "github.com/zhouzirui/talker-manager/backend/internal/service/talker"
	"github.com/zhouzirui/talker-manager/backend/internal/validation"
)

const testToken = "abcdef0123456789"

func fixture() []model.Talker {
	return []model.Talker{
		{ID: 1, Name: "Ana", Age: 30, Talk: model.Talk{WatchedAt: "01/01/2021", Rate: 4}},
		{ID: 2, Name: "Beto", Age: 41, Talk: model.Talk{WatchedAt: "02/02/2022", Rate: 2}},
		{ID: 3, Name: "Anabela", Age: 25, Talk: model.Talk{WatchedAt: "03/03/2023", Rate: 5}},
	}
}

func setupRouter(store model.Store) *chi.Mux {
	svc := talkerService.NewService(store, nil)
	handler := New(svc, middleware.TokenGate(testToken))

	r := chi.NewRouter()
	r.Route("/talker", handler.RegisterRoutes)
	return r
}

func do(r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	var payload []byte
	switch b := body.(type) {
	case nil:
	case string:
		payload = []byte(b)
	default:
		payload, _ = json.Marshal(b)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(middleware.TokenHeader, token)
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func decodeTalkers(t *testing.T, resp *httptest.ResponseRecorder) []model.Talker {
	t.Helper()
	var got []model.Talker
	if err := json.Unmarshal(resp.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode talkers: %v (body %s)", err, resp.Body.String())
	}
	return got
}

func decodeTalker(t *testing.T, resp *httptest.ResponseRecorder) model.Talker {
	t.Helper()
	var got model.Talker
	if err := json.Unmarshal(resp.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode talker: %v (body %s)", err, resp.Body.String())
	}
	return got
}

func stored(t *testing.T, store model.Store) []model.Talker {
	t.Helper()
	items, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load store: %v", err)
	}
	return items
}

var validBody = map[string]any{
	"name": "Caio",
	"age":  27,
	"talk": map[string]any{"watchedAt": "10/10/2024", "rate": 3},
}

func TestListReturnsAllWithoutToken(t *testing.T) {
	r := setupRouter(model.NewMemoryStore(fixture()))

	resp := do(r, http.MethodGet, "/talker", "", nil)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if got := decodeTalkers(t, resp); !reflect.DeepEqual(got, fixture()) {
		t.Fatalf("unexpected list: %+v", got)
	}
}

func TestListEmptyStoreIsEmptyArray(t *testing.T) {
	r := setupRouter(model.NewMemoryStore(nil))

	resp := do(r, http.MethodGet, "/talker", "", nil)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if body := resp.Body.String(); body != "[]\n" {
		t.Fatalf("expected empty array, got %q", body)
	}
}

func TestSearchRequiresToken(t *testing.T) {
	r := setupRouter(model.NewMemoryStore(fixture()))

	if resp := do(r, http.MethodGet, "/talker/search?q=An", "", nil); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.Code)
	}
	if resp := do(r, http.MethodGet, "/talker/search?q=An", "wrong", nil); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong token, got %d", resp.Code)
	}
}

func TestSearchWithoutQueryReturnsEverything(t *testing.T) {
	r := setupRouter(model.NewMemoryStore(fixture()))

	resp := do(r, http.MethodGet, "/talker/search", testToken, nil)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if got := decodeTalkers(t, resp); !reflect.DeepEqual(got, fixture()) {
		t.Fatalf("unexpected list: %+v", got)
	}
}

func TestSearchFiltersByName(t *testing.T) {
	r := setupRouter(model.NewMemoryStore(fixture()))

	resp := do(r, http.MethodGet, "/talker/search?q=an", testToken, nil)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	want := []model.Talker{fixture()[0], fixture()[2]}
	if got := decodeTalkers(t, resp); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %+v, got %+v", want, got)
	}

	resp = do(r, http.MethodGet, "/talker/search?q=zzz", testToken, nil)
	if body := resp.Body.String(); resp.Code != http.StatusOK || body != "[]\n" {
		t.Fatalf("expected 200 [], got %d %q", resp.Code, body)
	}
}

func TestGetByID(t *testing.T) {
	r := setupRouter(model.NewMemoryStore(fixture()))

	resp := do(r, http.MethodGet, "/talker/2", "", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if got := decodeTalker(t, resp); got != fixture()[1] {
		t.Fatalf("unexpected talker: %+v", got)
	}

	for _, path := range []string{"/talker/99", "/talker/0", "/talker/abc"} {
		resp := do(r, http.MethodGet, path, "", nil)
		if resp.Code != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", path, resp.Code)
		}
	}
}

func TestCreateRoundTrip(t *testing.T) {
	store := model.NewMemoryStore(fixture())
	r := setupRouter(store)

	resp := do(r, http.MethodPost, "/talker", testToken, validBody)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	created := decodeTalker(t, resp)
	if created.ID != 4 {
		t.Fatalf("expected id 4, got %d", created.ID)
	}

	items := stored(t, store)
	if len(items) != 4 || items[3] != created {
		t.Fatalf("created talker not persisted: %+v", items)
	}

	resp = do(r, http.MethodGet, "/talker/4", "", nil)
	if got := decodeTalker(t, resp); got != created {
		t.Fatalf("fetch after create: expected %+v, got %+v", created, got)
	}
}

func TestCreateRequiresToken(t *testing.T) {
	store := model.NewMemoryStore(fixture())
	r := setupRouter(store)

	resp := do(r, http.MethodPost, "/talker", "", validBody)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
	if len(stored(t, store)) != 3 {
		t.Fatal("store changed by unauthorized create")
	}
}

func TestCreateInvalidLeavesStoreUnchanged(t *testing.T) {
	bodies := map[string]any{
		"zero age": map[string]any{
			"name": "Caio", "age": 0,
			"talk": map[string]any{"watchedAt": "10/10/2024", "rate": 3},
		},
		"missing rate": map[string]any{
			"name": "Caio", "age": 27,
			"talk": map[string]any{"watchedAt": "10/10/2024"},
		},
		"rate out of range": map[string]any{
			"name": "Caio", "age": 27,
			"talk": map[string]any{"watchedAt": "10/10/2024", "rate": 9},
		},
		"empty name":    map[string]any{"name": "", "age": 27},
		"not json":      "{oops",
		"trailing data": `{"name":"Caio","age":27,"talk":{"watchedAt":"10/10/2024","rate":3}}garbage`,
		"too large":     `{"name":"` + strings.Repeat("c", validation.MaxBodyBytes) + `","age":27}`,
	}

	for name, body := range bodies {
		store := model.NewMemoryStore(fixture())
		r := setupRouter(store)

		resp := do(r, http.MethodPost, "/talker", testToken, body)
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", name, resp.Code)
		}
		var msg map[string]string
		if err := json.Unmarshal(resp.Body.Bytes(), &msg); err != nil || msg["message"] == "" {
			t.Fatalf("%s: expected message body, got %s", name, resp.Body.String())
		}
		if got := stored(t, store); !reflect.DeepEqual(got, fixture()) {
			t.Fatalf("%s: store changed: %+v", name, got)
		}
	}
}

func TestCreateAcceptsExponentIntegers(t *testing.T) {
	store := model.NewMemoryStore(fixture())
	r := setupRouter(store)

	resp := do(r, http.MethodPost, "/talker", testToken,
		`{"name":"Caio","age":2.7e1,"talk":{"watchedAt":"10/10/2024","rate":3.0}}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	created := decodeTalker(t, resp)
	if created.Age != 27 || created.Talk.Rate != 3 {
		t.Fatalf("unexpected talker %+v", created)
	}
}

func TestUpdateKeepsID(t *testing.T) {
	store := model.NewMemoryStore(fixture())
	r := setupRouter(store)

	resp := do(r, http.MethodPut, "/talker/1", testToken, validBody)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	updated := decodeTalker(t, resp)
	want := model.Talker{ID: 1, Name: "Caio", Age: 27, Talk: model.Talk{WatchedAt: "10/10/2024", Rate: 3}}
	if updated != want {
		t.Fatalf("expected %+v, got %+v", want, updated)
	}

	resp = do(r, http.MethodGet, "/talker/1", "", nil)
	if got := decodeTalker(t, resp); got != want {
		t.Fatalf("fetch after update: expected %+v, got %+v", want, got)
	}
	if items := stored(t, store); items[0] != want {
		t.Fatalf("update did not keep position: %+v", items)
	}
}

func TestUpdateAndDeleteMissingID(t *testing.T) {
	for _, path := range []string{"/talker/0", "/talker/42", "/talker/abc"} {
		store := model.NewMemoryStore(fixture())
		r := setupRouter(store)

		if resp := do(r, http.MethodPut, path, testToken, validBody); resp.Code != http.StatusNotFound {
			t.Fatalf("PUT %s: expected 404, got %d", path, resp.Code)
		}
		if resp := do(r, http.MethodDelete, path, testToken, nil); resp.Code != http.StatusNotFound {
			t.Fatalf("DELETE %s: expected 404, got %d", path, resp.Code)
		}
		if got := stored(t, store); !reflect.DeepEqual(got, fixture()) {
			t.Fatalf("%s: store changed: %+v", path, got)
		}
	}
}

func TestUpdateValidatesBeforeLookup(t *testing.T) {
	r := setupRouter(model.NewMemoryStore(fixture()))

	resp := do(r, http.MethodPut, "/talker/42", testToken, map[string]any{"name": "Caio"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestDeleteFirstElement(t *testing.T) {
	store := model.NewMemoryStore(fixture())
	r := setupRouter(store)

	resp := do(r, http.MethodDelete, "/talker/1", testToken, nil)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
	if resp.Body.Len() != 0 {
		t.Fatalf("expected empty body, got %q", resp.Body.String())
	}

	want := fixture()[1:]
	if got := stored(t, store); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestDeleteRequiresToken(t *testing.T) {
	store := model.NewMemoryStore(fixture())
	r := setupRouter(store)

	if resp := do(r, http.MethodDelete, "/talker/1", "", nil); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
	if len(stored(t, store)) != 3 {
		t.Fatal("store changed by unauthorized delete")
	}
}

type brokenStore struct{}

func (brokenStore) Load(context.Context) ([]model.Talker, error) {
	return nil, errors.New("read talker.json: no such file or directory")
}

func (brokenStore) Save(context.Context, []model.Talker) error {
	return errors.New("read-only file system")
}

func TestStoreFailureIs500(t *testing.T) {
	r := setupRouter(brokenStore{})

	cases := []struct {
		method, path, token string
		body                any
	}{
		{http.MethodGet, "/talker", "", nil},
		{http.MethodGet, "/talker/1", "", nil},
		{http.MethodGet, "/talker/search?q=a", testToken, nil},
		{http.MethodPost, "/talker", testToken, validBody},
		{http.MethodPut, "/talker/1", testToken, validBody},
		{http.MethodDelete, "/talker/1", testToken, nil},
	}
	for _, tc := range cases {
		resp := do(r, tc.method, tc.path, tc.token, tc.body)
		if resp.Code != http.StatusInternalServerError {
			t.Fatalf("%s %s: expected 500, got %d", tc.method, tc.path, resp.Code)
		}
		if body := resp.Body.String(); body != "{\"message\":\"internal server error\"}\n" {
			t.Fatalf("%s %s: unexpected body %q", tc.method, tc.path, body)
		}
	}
}
