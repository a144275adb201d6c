package client_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/adamwoolhether/reqmaker/auth"
	"github.com/adamwoolhether/reqmaker/client"
	"github.com/adamwoolhether/reqmaker/config"
	"github.com/adamwoolhether/reqmaker/errs"
	"github.com/adamwoolhether/reqmaker/request"
)

func ExamplePerformAs() {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"id":%s}`, r.URL.Query().Get("id"))
	}))
	defer ts.Close()

	m, err := client.Build()
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	d := request.New(&config.Config{BaseURL: ts.URL}, request.Public("items"))
	d.Parameters = request.Parameters{"id": 7}

	it, err := client.PerformAs(context.Background(), m, d, client.ExpectJSON[item]())
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println(it.ID)
	// Output: 7
}

func ExampleMaker_Perform_unauthorized() {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	cfg := &config.Config{
		BaseURL:        ts.URL,
		OnUnauthorized: func() { fmt.Println("logging out") },
	}

	m, err := client.Build()
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	d := request.New(cfg, request.Private("me"))
	d.Auth = auth.Bearer("expired")
	d.LogOutIfUnauthorized = true

	_, err = m.Perform(context.Background(), d)
	fmt.Println(errors.Is(err, errs.ErrUnauthorized))
	// Output:
	// logging out
	// true
}
