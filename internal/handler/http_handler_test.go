package handler

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Atomized-titan/qri/internal/domain"
	"github.com/Atomized-titan/qri/internal/keys"
	"github.com/Atomized-titan/qri/internal/ledger"
	"github.com/Atomized-titan/qri/internal/service"
	"github.com/Atomized-titan/qri/pkg/log"
	"github.com/Atomized-titan/qri/pkg/pubsub"
	"github.com/Atomized-titan/qri/pkg/qri"
	"github.com/Atomized-titan/qri/pkg/response"
)

type envelope struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Error   *response.ErrorInfo `json:"error"`
}

func newRouter(t *testing.T, withSigner bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	kr := keys.New()
	if withSigner {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
		kr.SetSigner("primary", key)
	}
	svc := service.NewQRIService(qri.NewGenerator(), qri.Validator{}, kr, ledger.NewMemoryLedger(), pubsub.NopPublisher{}, pubsub.ChannelIssued, 10)

	r := gin.New()
	r.Use(log.GinMiddleware(log.New(log.Config{Level: "disabled"})))
	NewHandler(svc).RegisterRoutes(r)
	return r
}

type downLedger struct{ ledger.Ledger }

func (downLedger) Record(context.Context, *domain.Issuance) error {
	return errors.New("ledger down")
}

func do(t *testing.T, r *gin.Engine, method, path string, body interface{}) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func TestGenerateAndIssued(t *testing.T) {
	r := newRouter(t, true)

	code, env := do(t, r, http.MethodPost, "/api/v1/qri", nil)
	require.Equal(t, http.StatusCreated, code)
	var gen domain.QRIResponse
	require.NoError(t, json.Unmarshal(env.Data, &gen))
	assert.False(t, gen.Signed)

	code, env = do(t, r, http.MethodGet, "/api/v1/qri/"+gen.QRI+"/issued", nil)
	require.Equal(t, http.StatusOK, code)
	var rec domain.Issuance
	require.NoError(t, json.Unmarshal(env.Data, &rec))
	assert.Equal(t, gen.QRI, rec.QRI)

	code, env = do(t, r, http.MethodGet, "/api/v1/qri/"+qri.NewString()+"/issued", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, response.CodeNotFound, env.Error.Code)

	code, env = do(t, r, http.MethodGet, "/api/v1/qri/bogus/issued", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, response.CodeInvalidFormat, env.Error.Code)
}

func TestGenerateSignedAndVerify(t *testing.T) {
	r := newRouter(t, true)

	code, env := do(t, r, http.MethodPost, "/api/v1/qri", domain.GenerateRequest{Sign: true})
	require.Equal(t, http.StatusCreated, code)
	var gen domain.QRIResponse
	require.NoError(t, json.Unmarshal(env.Data, &gen))
	require.True(t, gen.Signed)

	code, env = do(t, r, http.MethodPost, "/api/v1/qri/verify", domain.ValidateRequest{QRI: gen.QRI, KeyID: "primary"})
	require.Equal(t, http.StatusOK, code)
	var v domain.ValidateResponse
	require.NoError(t, json.Unmarshal(env.Data, &v))
	assert.True(t, v.Valid)

	code, env = do(t, r, http.MethodPost, "/api/v1/qri/verify", domain.ValidateRequest{QRI: gen.QRI})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, response.CodePublicKeyRequired, env.Error.Code)

	code, env = do(t, r, http.MethodPost, "/api/v1/qri/verify", domain.ValidateRequest{QRI: gen.QRI, KeyID: "missing"})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, response.CodeNotFound, env.Error.Code)
}

func TestGenerateSignedWithoutSigner(t *testing.T) {
	r := newRouter(t, false)

	code, env := do(t, r, http.MethodPost, "/api/v1/qri", domain.GenerateRequest{Sign: true})
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, response.CodeSigningUnavailable, env.Error.Code)
}

func TestGenerateBatch(t *testing.T) {
	r := newRouter(t, false)

	code, env := do(t, r, http.MethodPost, "/api/v1/qri/batch", domain.GenerateBatchRequest{Count: 3})
	require.Equal(t, http.StatusCreated, code)
	var batch domain.BatchResponse
	require.NoError(t, json.Unmarshal(env.Data, &batch))
	assert.Len(t, batch.QRIs, 3)

	code, env = do(t, r, http.MethodPost, "/api/v1/qri/batch", domain.GenerateBatchRequest{Count: 11})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, response.CodeBadRequest, env.Error.Code)

	code, _ = do(t, r, http.MethodPost, "/api/v1/qri/batch", map[string]int{})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestParseAndValidate(t *testing.T) {
	r := newRouter(t, false)
	id := qri.Must(qri.Generate(qri.Options{}))

	code, env := do(t, r, http.MethodPost, "/api/v1/qri/parse", domain.ParseRequest{QRI: id.String()})
	require.Equal(t, http.StatusOK, code)
	var parsed domain.QRIResponse
	require.NoError(t, json.Unmarshal(env.Data, &parsed))
	assert.Equal(t, id.Random(), parsed.Random)

	code, env = do(t, r, http.MethodPost, "/api/v1/qri/parse", domain.ParseRequest{QRI: "not-a-valid-qri"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, response.CodeInvalidFormat, env.Error.Code)

	code, env = do(t, r, http.MethodPost, "/api/v1/qri/validate", domain.ValidateRequest{QRI: id.String()})
	require.Equal(t, http.StatusOK, code)
	var v domain.ValidateResponse
	require.NoError(t, json.Unmarshal(env.Data, &v))
	assert.True(t, v.Valid)

	bad := qri.New(id.Timestamp(), id.Random(), "ffffffffffffffffffffffffffffffff", "")
	code, env = do(t, r, http.MethodPost, "/api/v1/qri/validate", domain.ValidateRequest{QRI: bad.String()})
	require.Equal(t, http.StatusOK, code)
	v = domain.ValidateResponse{}
	require.NoError(t, json.Unmarshal(env.Data, &v))
	assert.False(t, v.Valid)
	assert.NotEmpty(t, v.Reason)

	code, _ = do(t, r, http.MethodPost, "/api/v1/qri/validate", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestRequestIDPropagates(t *testing.T) {
	r := newRouter(t, false)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/qri", nil).WithContext(context.Background())
	req.Header.Set("X-Request-ID", "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
}

func TestGenerateLedgerDownIsInternalError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := service.NewQRIService(qri.NewGenerator(), qri.Validator{}, keys.New(), downLedger{}, pubsub.NopPublisher{}, pubsub.ChannelIssued, 10)
	r := gin.New()
	r.Use(log.GinMiddleware(log.New(log.Config{Level: "disabled"})))
	NewHandler(svc).RegisterRoutes(r)

	code, env := do(t, r, http.MethodPost, "/api/v1/qri", nil)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, response.CodeInternal, env.Error.Code)
}
