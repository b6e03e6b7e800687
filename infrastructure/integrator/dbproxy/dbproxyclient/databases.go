package dbproxyclient

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

// DatabaseRegistration é um banco registrado para o tenant no proxy
type DatabaseRegistration struct {
	ID       string `json:"id"`
	IsActive bool   `json:"is_active"`
}

type QueryRequest struct {
	SQL string `json:"sql"`
}

type QueryData struct {
	Rows []map[string]any `json:"rows"`
}

// QueryResponse segue o contrato do proxy: success=false traz a mensagem em Error
type QueryResponse struct {
	Success bool       `json:"success"`
	Data    *QueryData `json:"data,omitempty"`
	Error   string     `json:"error,omitempty"`
}

func (c *DBProxyClient) ListDatabases(ctx context.Context, tenantID string) ([]DatabaseRegistration, error) {
	var response []DatabaseRegistration

	endpoint, err := c.endpoint("tenants", tenantID, "databases")
	if err != nil {
		return nil, err
	}

	body, status, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	if status != http.StatusOK {
		return nil, errors.Errorf("requisição falhou com status: %d", status)
	}

	if err := json.Unmarshal(body, &response); err != nil {
		return nil, errors.Wrap(err, "erro ao decodificar a resposta")
	}

	return response, nil
}

func (c *DBProxyClient) Query(ctx context.Context, databaseID string, sqlText string) (QueryResponse, error) {
	var response QueryResponse

	endpoint, err := c.endpoint("databases", databaseID, "query")
	if err != nil {
		return response, err
	}

	payload, err := json.Marshal(QueryRequest{SQL: sqlText})
	if err != nil {
		return response, errors.Wrap(err, "erro ao serializar a consulta")
	}

	body, status, err := c.do(ctx, http.MethodPost, endpoint, payload)
	if err != nil {
		return response, err
	}

	// O proxy responde falhas de execução com corpo JSON mesmo em status de erro
	if err := json.Unmarshal(body, &response); err != nil {
		if status != http.StatusOK {
			return response, errors.Errorf("requisição falhou com status: %d", status)
		}
		return response, errors.Wrap(err, "erro ao decodificar a resposta")
	}

	if status != http.StatusOK && response.Success {
		return response, errors.Errorf("requisição falhou com status: %d", status)
	}

	if !response.Success && response.Error == "" && status != http.StatusOK {
		return response, errors.Errorf("requisição falhou com status: %d", status)
	}

	return response, nil
}

// endpoint escapa cada segmento: ids com "/" ou "?" não mudam a rota chamada no proxy
func (c *DBProxyClient) endpoint(parts ...string) (string, error) {
	endpoint, err := url.Parse(c.config.Proxy.URL)
	if err != nil {
		return "", errors.Wrap(err, "erro ao analisar a URL base")
	}

	escaped := make([]string, 0, len(parts)+1)
	escaped = append(escaped, strings.TrimSuffix(endpoint.EscapedPath(), "/"))
	for _, part := range parts {
		if part == "" || part == "." || part == ".." {
			return "", errors.Errorf("segmento de caminho inválido: %q", part)
		}
		escaped = append(escaped, url.PathEscape(part))
	}

	rawPath := strings.Join(escaped, "/")
	if endpoint.Path, err = url.PathUnescape(rawPath); err != nil {
		return "", errors.Wrap(err, "erro ao montar o caminho")
	}
	endpoint.RawPath = rawPath

	return endpoint.String(), nil
}

// do aplica o limitador, o timeout configurado e o token antes de executar a requisição
func (c *DBProxyClient) do(ctx context.Context, method, endpoint string, payload []byte) ([]byte, int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, errors.Wrap(err, "limite de requisições ao proxy")
	}

	if c.config.Proxy.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Proxy.Timeout)
		defer cancel()
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, 0, errors.Wrap(err, "erro ao criar a requisição")
	}

	req.Header.Set("Authorization", "Bearer "+c.config.Proxy.AccessToken)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, errors.Wrap(err, "erro ao executar a requisição")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, errors.Wrap(err, "erro ao ler a resposta")
	}

	return body, resp.StatusCode, nil
}
