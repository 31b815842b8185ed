package testutils

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// TestLogger cria um logger zap ligado ao teste
func TestLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t)
}

// SetupTestRouter devolve um engine gin em modo de teste, só com Recovery
func SetupTestRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(gin.Recovery())
	return router
}

// BearerHeader monta o cabeçalho Authorization do token. Token vazio não
// gera cabeçalho.
func BearerHeader(token string) map[string]string {
	if token == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + token}
}

// MakeRequest executa a requisição no router. body pode ser string, []byte
// ou qualquer valor serializável em JSON.
func MakeRequest(t *testing.T, router http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody io.Reader
	switch v := body.(type) {
	case nil:
	case string:
		reqBody = bytes.NewBufferString(v)
	case []byte:
		reqBody = bytes.NewReader(v)
	default:
		data, err := json.Marshal(body)
		require.NoError(t, err, "falha ao serializar corpo")
		reqBody = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reqBody)
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

// AuthRequest é MakeRequest em nome do portador do token
func AuthRequest(t *testing.T, router http.Handler, token, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return MakeRequest(t, router, method, path, body, BearerHeader(token))
}

// ParseResponse decodifica o corpo JSON em dst
func ParseResponse(t *testing.T, resp *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NotNil(t, resp)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), dst), "corpo inválido: %s", resp.Body.String())
}

// RequireHTTPStatus falha com o corpo da resposta quando o status difere
func RequireHTTPStatus(t *testing.T, resp *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, resp.Code, "esperado %d, recebido %d: %s", status, resp.Code, resp.Body.String())
}

// RequireAPIError confere o status e o envelope {"error": ...}
func RequireAPIError(t *testing.T, resp *httptest.ResponseRecorder, status int) {
	t.Helper()
	RequireHTTPStatus(t, resp, status)

	var body struct {
		Error string `json:"error"`
	}
	ParseResponse(t, resp, &body)
	require.NotEmpty(t, body.Error, "resposta sem mensagem de erro")
}

// RequireJSONContentType confere o Content-Type da resposta
func RequireJSONContentType(t *testing.T, resp *httptest.ResponseRecorder) {
	t.Helper()
	require.Contains(t, resp.Header().Get("Content-Type"), "application/json")
}
