package sidecar_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"connectrpc.com/connect"
	"github.com/hudcostreets/ht-sub001/utils/sidecar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestRegisterAndCall(t *testing.T) {
	s := sidecar.New()
	s.Register("test.v1.EchoService", func(opts ...connect.HandlerOption) (string, http.Handler) {
		return sidecar.NewServiceHandler("test.v1.EchoService", map[string]sidecar.UnaryFunc{
			"Echo": func(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
				return structpb.NewStruct(map[string]any{"said": req.Fields["say"].GetStringValue()})
			},
			"Fail": func(context.Context, *structpb.Struct) (*structpb.Struct, error) {
				return nil, connect.NewError(connect.CodeNotFound, errors.New("nothing here"))
			},
		}, opts...)
	})
	assert.Equal(t, []string{"test.v1.EchoService"}, s.Services())

	server := httptest.NewServer(s.Handler())
	defer server.Close()

	res, err := sidecar.Call(context.Background(), server.Client(), server.URL, "test.v1.EchoService", "Echo", map[string]any{"say": "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hi", res.Fields["said"].GetStringValue())

	_, err = sidecar.Call(context.Background(), server.Client(), server.URL, "test.v1.EchoService", "Fail", nil)
	require.Error(t, err)
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))

	assert.Equal(t, "/a.B/C", sidecar.Procedure("a.B", "C"))
}

func TestHandlerCORS(t *testing.T) {
	s := sidecar.New()
	s.Handle("/ping", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("pong"))
	}))
	h := s.Handler()

	req := httptest.NewRequest(http.MethodOptions, "/a.B/C", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type, Connect-Protocol-Version")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "pong", rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
