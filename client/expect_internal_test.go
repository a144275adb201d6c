package client

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/adamwoolhether/reqmaker/config"
	"github.com/adamwoolhether/reqmaker/errs"
	"github.com/adamwoolhether/reqmaker/request"
	"github.com/adamwoolhether/reqmaker/transport"
)

func TestPerformAs_RawRequiresBytes(t *testing.T) {
	tr := transport.Func(func(_ context.Context, w *request.Wire) transport.Outcome {
		return transport.Outcome{StatusCode: http.StatusOK, Body: []byte("hello"), URL: w.URL}
	})
	m, err := Build(WithTransport(tr), WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		t.Fatal(err)
	}

	d := request.New(&config.Config{BaseURL: "https://api.example.com"}, request.Public("raw"))
	got, err := PerformAs(t.Context(), m, d, Expectation[string]{kind: expectRaw})
	if !errors.Is(err, errs.ErrBadRequest) {
		t.Fatalf("exp %v; got %v", errs.ErrBadRequest, err)
	}
	if got != "" {
		t.Errorf("exp zero value; got %q", got)
	}
}
