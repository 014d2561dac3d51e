package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sphinx-core/spxverify/src/common"
	"github.com/sphinx-core/spxverify/src/core/sphincs/abi"
	"github.com/sphinx-core/spxverify/src/core/sphincs/batch"
	params "github.com/sphinx-core/spxverify/src/core/sphincs/config"
	"github.com/sphinx-core/spxverify/src/core/sphincs/sphincstest"
	"github.com/sphinx-core/spxverify/src/core/sphincs/types"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	server  *Server
	signer  *sphincstest.Fixture
	params  *params.Parameters
	handler http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	p, err := params.Lookup("small")
	require.NoError(t, err)
	reg := prometheus.NewRegistry()
	v, err := batch.New(p, batch.DefaultConfig(), nil, reg)
	require.NoError(t, err)

	s := NewServer(":0", v, nil, reg)
	return &fixture{server: s, signer: sphincstest.MustNew(p, []byte("http")), params: p, handler: s.Handler()}
}

func (f *fixture) request(t *testing.T, msg string) VerifyRequest {
	t.Helper()
	sig, pk, err := f.signer.Sign([]byte(msg))
	require.NoError(t, err)
	return VerifyRequest{
		Message:   common.Bytes2Hex([]byte(msg)),
		Signature: common.FormatHash(types.MarshalSignature(sig)),
		PublicKey: common.Base58Prefix + common.Bytes2Base58(types.MarshalPublicKey(pk)),
	}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	return w
}

func TestVerifyEndpoint(t *testing.T) {
	f := newFixture(t)
	req := f.request(t, "hello")

	w := f.do(t, http.MethodPost, "/verify", req)
	require.Equal(t, http.StatusOK, w.Code)
	var res batch.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.True(t, res.Valid)

	req.Message = common.Bytes2Hex([]byte("hellp"))
	w = f.do(t, http.MethodPost, "/verify", req)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.False(t, res.Valid)
}

func TestVerifyEndpointMalformed(t *testing.T) {
	f := newFixture(t)
	req := f.request(t, "hello")
	req.Signature = req.Signature[:len(req.Signature)-2]

	w := f.do(t, http.MethodPost, "/verify", req)
	require.Equal(t, http.StatusBadRequest, w.Code)
	var e ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
	require.Contains(t, e.Error, "malformed input")

	req.PublicKey = "nothex"
	w = f.do(t, http.MethodPost, "/verify", req)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, "/verify", map[string]string{"message": "00"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBatchEndpoint(t *testing.T) {
	f := newFixture(t)
	good := f.request(t, "one")
	bad := f.request(t, "two")
	bad.Message = common.Bytes2Hex([]byte("three"))
	short := f.request(t, "four")
	short.Signature = "00"

	w := f.do(t, http.MethodPost, "/verify/batch", BatchRequest{Items: []VerifyRequest{good, bad, short}})
	require.Equal(t, http.StatusOK, w.Code)

	var res BatchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Len(t, res.Results, 3)
	require.Equal(t, 1, res.Valid)
	require.True(t, res.Results[0].Valid)
	require.False(t, res.Results[1].Valid)
	require.Empty(t, res.Results[1].Error)
	require.NotEmpty(t, res.Results[2].Error)
}

func TestABIEndpoint(t *testing.T) {
	f := newFixture(t)
	msg := []byte("calldata")
	sig, pk, err := f.signer.Sign(msg)
	require.NoError(t, err)
	data, err := abi.EncodeVerifyCall(msg, sig, pk)
	require.NoError(t, err)

	w := f.do(t, http.MethodPost, "/verify/abi", ABIRequest{Calldata: common.FormatHash(data)})
	require.Equal(t, http.StatusOK, w.Code)
	var res batch.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.True(t, res.Valid)

	w = f.do(t, http.MethodPost, "/verify/abi", ABIRequest{Calldata: common.FormatHash(data[:40])})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestParamsAndMetrics(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/params", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var p ParamsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	require.Equal(t, "small", p.Name)
	require.Equal(t, f.params.SignatureSize(), p.SignatureSize)

	f.do(t, http.MethodPost, "/verify", f.request(t, "metrics"))
	w = f.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, strings.Contains(w.Body.String(), `spx_verify_total{result="valid"} 1`), w.Body.String())
}

func TestClient(t *testing.T) {
	f := newFixture(t)
	ts := httptest.NewServer(f.handler)
	defer ts.Close()

	c := NewClient(ts.URL)
	res, err := c.Verify(context.Background(), f.request(t, "client"))
	require.NoError(t, err)
	require.True(t, res.Valid)

	bad := f.request(t, "client")
	bad.PublicKey = "00"
	_, err = c.Verify(context.Background(), bad)
	require.ErrorContains(t, err, "400")

	batchRes, err := c.VerifyBatch(context.Background(), BatchRequest{Items: []VerifyRequest{f.request(t, "a"), f.request(t, "b")}})
	require.NoError(t, err)
	require.Equal(t, 2, batchRes.Valid)
}
