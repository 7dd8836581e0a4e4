package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	apperrors "backoffice-console/pkg/errors"
	"backoffice-console/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRestyTransport_ForwardsTokenQueryAndBody(t *testing.T) {
	var (
		gotAuth   string
		gotQuery  url.Values
		gotBody   string
		gotMethod string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.Query()
		gotMethod = r.Method
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("pagination", `{"currentPage":1,"itemsPerPage":10,"totalItems":1}`)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":1,"name":"Karkh"}]`))
	}))
	defer srv.Close()

	tr := New(srv.URL, 5*time.Second, zap.NewNop())
	ctx := utils.WithBearerToken(context.Background(), "secret-token")

	resp, err := tr.Do(ctx, Request{
		Method: http.MethodDelete,
		URL:    "/office",
		Query:  url.Values{"PageNumber": {"2"}},
		Body:   map[string]any{"id": 5},
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, "2", gotQuery.Get("PageNumber"))
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.JSONEq(t, `{"id":5}`, gotBody)
	assert.Contains(t, resp.Headers.Get("pagination"), "totalItems")

	items, err := DecodeList(resp)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Karkh", items[0]["name"])
}

func TestRestyTransport_HTTPErrorBecomesTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message":"Name already exists"}`))
	}))
	defer srv.Close()

	tr := New(srv.URL, 5*time.Second, zap.NewNop())
	_, err := tr.Do(context.Background(), Request{Method: http.MethodPost, URL: "/governorate", Resource: "governorates", Body: map[string]any{}})

	var trErr *apperrors.TransportError
	require.True(t, errors.As(err, &trErr))
	assert.Equal(t, http.StatusConflict, trErr.StatusCode)
	assert.Equal(t, "governorates", trErr.Resource)
	assert.Equal(t, "Name already exists", trErr.Message)
}

func TestRestyTransport_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	tr := New(addr, time.Second, zap.NewNop())
	_, err := tr.Do(context.Background(), Request{Method: http.MethodGet, URL: "/governorate"})

	var trErr *apperrors.TransportError
	require.True(t, errors.As(err, &trErr))
	assert.Zero(t, trErr.StatusCode)
	assert.Error(t, trErr.Err)
}

func TestDecodeList(t *testing.T) {
	items, err := DecodeList(&Response{Data: []byte("null")})
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = DecodeList(&Response{Data: []byte(`{"id":1}`)})
	assert.Error(t, err)
}
