package log

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	dec := json.NewDecoder(buf)
	for dec.More() {
		var m map[string]any
		require.NoError(t, dec.Decode(&m))
		out = append(out, m)
	}
	return out
}

func TestNewAddsServiceAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "warn", ServiceName: "qri-service", Output: &buf})

	logger.Info().Msg("dropped")
	logger.Warn().Msg("kept")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "qri-service", lines[0][FieldService])
	assert.Equal(t, "kept", lines[0]["message"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel(" DEBUG "))
	assert.Equal(t, zerolog.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zerolog.Disabled, parseLevel("off"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("nonsense"))
}

func TestCtxReturnsStoredLogger(t *testing.T) {
	var buf bytes.Buffer
	child := New(Config{Output: &buf})

	ctx := WithLogger(context.Background(), child)
	l := Ctx(ctx)
	l.Info().Msg("from context")
	assert.Contains(t, buf.String(), "from context")
}

func TestRequestID(t *testing.T) {
	assert.Equal(t, "", RequestID(context.Background()))
	assert.Equal(t, "abc", RequestID(WithRequestID(context.Background(), "abc")))
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	r := gin.New()
	r.Use(GinMiddleware(New(Config{Output: &buf})))

	var seen string
	r.GET("/ping", func(c *gin.Context) {
		seen = RequestID(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(headerRequestID, "req-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-1", w.Header().Get(headerRequestID))
	assert.Equal(t, "req-1", seen)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "req-1", lines[0][FieldRequestID])
	assert.Equal(t, float64(http.StatusNoContent), lines[0][FieldStatus])

	// A request without the header gets a generated ID.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.NotEmpty(t, w.Header().Get(headerRequestID))
}

func TestUnaryServerInterceptor(t *testing.T) {
	var buf bytes.Buffer
	interceptor := UnaryServerInterceptor(New(Config{Output: &buf}))

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(metadataKeyRequestID, "grpc-1"))
	info := &grpc.UnaryServerInfo{FullMethod: "/qri.v1.QRIService/Parse"}

	resp, err := interceptor(ctx, "req", info, func(ctx context.Context, req interface{}) (interface{}, error) {
		assert.Equal(t, "grpc-1", RequestID(ctx))
		return "resp", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "resp", resp)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "grpc-1", lines[0][FieldRequestID])
	assert.Equal(t, "OK", lines[0][FieldGRPCCode])
}

func TestUnaryClientInterceptor(t *testing.T) {
	interceptor := UnaryClientInterceptor()
	ctx := WithRequestID(context.Background(), "out-1")

	err := interceptor(ctx, "/m", nil, nil, nil, func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		md, ok := metadata.FromOutgoingContext(ctx)
		require.True(t, ok)
		assert.Equal(t, []string{"out-1"}, md.Get(metadataKeyRequestID))
		return nil
	})
	require.NoError(t, err)
}
