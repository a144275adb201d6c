package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"

	"github.com/adamwoolhether/reqmaker/auth"
	"github.com/adamwoolhether/reqmaker/client"
	"github.com/adamwoolhether/reqmaker/config"
	"github.com/adamwoolhether/reqmaker/cookie"
	"github.com/adamwoolhether/reqmaker/errs"
	"github.com/adamwoolhether/reqmaker/header"
	"github.com/adamwoolhether/reqmaker/request"
	"github.com/adamwoolhether/reqmaker/transport"
)

type callFlags struct {
	params    []string
	headers   []string
	query     string
	form      bool
	transport string
}

func newCallCmd(cfgPath *string) *cobra.Command {
	var flags callFlags

	cmd := &cobra.Command{
		Use:   "call <endpoint>",
		Short: "Perform a configured endpoint and print the response body",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			logger := newLogger(f.LogLevel, cmd.ErrOrStderr())

			body, err := call(cmd, f, logger, args[0], flags)
			if err != nil {
				if errors.Is(err, errs.ErrNoData) {
					return nil
				}
				return err
			}

			if flags.query != "" {
				body, err = applyJMESPath(body, flags.query)
				if err != nil {
					return err
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(body))
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&flags.params, "param", "p", nil, "request parameter key=value (repeatable)")
	cmd.Flags().StringArrayVarP(&flags.headers, "header", "H", nil, "request header 'Name: value' (repeatable)")
	cmd.Flags().StringVarP(&flags.query, "query", "q", "", "JMESPath expression applied to a JSON response")
	cmd.Flags().BoolVar(&flags.form, "form", false, "send body parameters form-encoded instead of JSON")
	cmd.Flags().StringVar(&flags.transport, "transport", "http", "transport implementation: http or resty")

	return cmd
}

func call(cmd *cobra.Command, f *config.File, logger *slog.Logger, name string, flags callFlags) ([]byte, error) {
	ep, err := f.Endpoint(name)
	if err != nil {
		return nil, err
	}

	params, err := splitPairs(flags.params, "=")
	if err != nil {
		return nil, err
	}
	hdrs, err := splitPairs(flags.headers, ":")
	if err != nil {
		return nil, err
	}

	store, closeStore, err := openStore(f, logger)
	if err != nil {
		return nil, err
	}
	defer closeStore()

	t, err := newTransport(f, logger, flags.transport)
	if err != nil {
		return nil, err
	}

	m, err := client.Build(
		client.WithTransport(t),
		client.WithCookieStore(store),
		client.WithLogger(logger),
		client.WithRequestID("X-Request-ID"),
	)
	if err != nil {
		return nil, err
	}

	cfg := f.Config
	cfg.OnUnauthorized = func() {
		logger.Warn("credentials rejected, clear or refresh the configured token", "endpoint", name)
	}

	d := request.New(&cfg, ep)
	d.Method = ep.HTTPMethod()
	d.LogOutIfUnauthorized = true
	if f.Token != "" {
		d.Auth = auth.Bearer(f.Token)
	}
	if len(params) > 0 {
		d.Parameters = make(request.Parameters, len(params))
		for _, p := range params {
			d.Parameters[p[0]] = p[1]
		}
	}
	if flags.form {
		d.Header.Set("Content-Type", header.Form.MIME())
	}
	for _, h := range hdrs {
		d.Header.Set(h[0], h[1])
	}

	return client.PerformAs(cmd.Context(), m, d, client.ExpectRaw())
}

func newTransport(f *config.File, logger *slog.Logger, kind string) (transport.Transport, error) {
	switch kind {
	case "resty":
		rc := resty.New().SetTimeout(f.Timeout)
		if f.UserAgent != "" {
			rc.SetHeader("User-Agent", f.UserAgent)
		}
		return transport.NewResty(rc), nil

	case "http", "":
		opts := []transport.Option{
			transport.WithLogger(logger),
			transport.WithTimeout(f.Timeout),
		}
		if f.UserAgent != "" {
			opts = append(opts, transport.WithUserAgent(f.UserAgent))
		}
		if f.RPS > 0 {
			opts = append(opts, transport.WithThrottle(f.RPS, f.Burst))
		}
		return transport.NewHTTP(opts...)

	default:
		return nil, fmt.Errorf("unknown transport[%s]", kind)
	}
}

// openStore returns the persistent cookie store when cookie_db is set,
// an in-memory jar otherwise.
func openStore(f *config.File, logger *slog.Logger) (cookie.Store, func(), error) {
	if f.CookieDB == "" {
		jar, err := cookie.NewJar()
		return jar, func() {}, err
	}

	b, err := cookie.OpenBolt(f.CookieDB, logger)
	if err != nil {
		return nil, nil, err
	}

	return b, func() {
		if err := b.Close(); err != nil {
			logger.Error("closing cookie db", "error", err)
		}
	}, nil
}
