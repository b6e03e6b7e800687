package dbproxyclient

import (
	"context"
	stdjson "encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/sales-kpi-api/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{
		Proxy: config.Proxy{
			URL:         server.URL + "/api",
			AccessToken: "token-teste",
			Timeout:     5 * time.Second,
		},
	}
	return NewClient(cfg)
}

func TestDBProxyClient_ListDatabases(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/tenants/tenant-1/databases", r.URL.Path)
		assert.Equal(t, "Bearer token-teste", r.Header.Get("Authorization"))

		w.Write([]byte(`[{"id":"db-1","is_active":false},{"id":"db-2","is_active":true}]`))
	})

	regs, err := client.ListDatabases(context.Background(), "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, []DatabaseRegistration{
		{ID: "db-1", IsActive: false},
		{ID: "db-2", IsActive: true},
	}, regs)
}

func TestDBProxyClient_Endpoint(t *testing.T) {
	tests := []struct {
		name        string
		parts       []string
		wantRawPath string
		wantErr     bool
	}{
		{name: "ids simples", parts: []string{"tenants", "tenant-1", "databases"}, wantRawPath: "/api/tenants/tenant-1/databases"},
		{name: "barra no id fica no mesmo segmento", parts: []string{"tenants", "a/b", "databases"}, wantRawPath: "/api/tenants/a%2Fb/databases"},
		{name: "travessia dentro do id é escapada", parts: []string{"databases", "../admin", "query"}, wantRawPath: "/api/databases/..%2Fadmin/query"},
		{name: "interrogação não abre query string", parts: []string{"databases", "db?x=1", "query"}, wantRawPath: "/api/databases/db%3Fx=1/query"},
		{name: "segmento .. é rejeitado", parts: []string{"databases", "..", "query"}, wantErr: true},
		{name: "segmento vazio é rejeitado", parts: []string{"tenants", "", "databases"}, wantErr: true},
	}

	client := &DBProxyClient{config: &config.Config{Proxy: config.Proxy{URL: "http://proxy.local/api/"}}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := client.endpoint(tt.parts...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			parsed, err := url.Parse(got)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRawPath, parsed.EscapedPath())
			assert.Empty(t, parsed.RawQuery)
		})
	}
}

func TestDBProxyClient_ListDatabasesIDComBarra(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tenants/x%2F..%2Fdatabases%2Fdb-9/databases", r.URL.EscapedPath())

		w.Write([]byte(`[]`))
	})

	regs, err := client.ListDatabases(context.Background(), "x/../databases/db-9")
	require.NoError(t, err)
	assert.Empty(t, regs)
}

func TestDBProxyClient_Query(t *testing.T) {
	tests := []struct {
		name     string
		handler  http.HandlerFunc
		validate func(t *testing.T, resp QueryResponse, err error)
	}{
		{
			name: "Sucesso - números chegam como json.Number",
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/databases/db-2/query", r.URL.Path)

				body, _ := io.ReadAll(r.Body)
				var req QueryRequest
				require.NoError(t, json.Unmarshal(body, &req))
				assert.Equal(t, "SELECT 1", req.SQL)

				w.Write([]byte(`{"success":true,"data":{"rows":[{"revenue":600.5,"month":"2024-03"}]}}`))
			},
			validate: func(t *testing.T, resp QueryResponse, err error) {
				require.NoError(t, err)
				assert.True(t, resp.Success)
				require.NotNil(t, resp.Data)
				require.Len(t, resp.Data.Rows, 1)
				assert.Equal(t, stdjson.Number("600.5"), resp.Data.Rows[0]["revenue"])
				assert.Equal(t, "2024-03", resp.Data.Rows[0]["month"])
			},
		},
		{
			name: "Falha de execução com status de erro mantém a mensagem",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"success":false,"error":"relation \"vendas\" does not exist"}`))
			},
			validate: func(t *testing.T, resp QueryResponse, err error) {
				require.NoError(t, err)
				assert.False(t, resp.Success)
				assert.Equal(t, `relation "vendas" does not exist`, resp.Error)
			},
		},
		{
			name: "Status de erro sem corpo JSON",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				w.Write([]byte("bad gateway"))
			},
			validate: func(t *testing.T, resp QueryResponse, err error) {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "502")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.handler)
			resp, err := client.Query(context.Background(), "db-2", "SELECT 1")
			tt.validate(t, resp, err)
		})
	}
}

func TestDBProxyClient_QueryCancelado(t *testing.T) {
	release := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Query(ctx, "db-1", "SELECT 1")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
