package main

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/adamwoolhether/reqmaker/config"
	"github.com/adamwoolhether/reqmaker/cookie"
)

func newCookiesCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "cookies <url>",
		Short: "List the persisted cookies that would be sent to url",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			if f.CookieDB == "" {
				return errors.New("cookie_db is not configured")
			}

			u, err := url.Parse(args[0])
			if err != nil {
				return fmt.Errorf("parsing url: %w", err)
			}

			b, err := cookie.OpenBolt(f.CookieDB, newLogger(f.LogLevel, cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			defer b.Close()

			for _, c := range b.Cookies(u) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", c.Name, c.Value)
			}
			return nil
		},
	}
}
