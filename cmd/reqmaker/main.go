// Command reqmaker performs the endpoints declared in a configuration file.
//
//	reqmaker -c api.yaml call items -p q=shoes --query 'items[].id'
//	reqmaker -c api.yaml cookies https://api.example.com/
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	var cfgPath string

	root := &cobra.Command{
		Use:           "reqmaker",
		Short:         "Perform configured HTTP endpoints",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(errOut)
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "reqmaker.yaml", "configuration file")

	root.AddCommand(
		newCallCmd(&cfgPath),
		newCookiesCmd(&cfgPath),
	)

	return root
}

func newLogger(level string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// splitPairs parses k=v (or "K: V" when sep is ":") arguments.
func splitPairs(args []string, sep string) ([][2]string, error) {
	pairs := make([][2]string, 0, len(args))
	for _, a := range args {
		k, v, ok := strings.Cut(a, sep)
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("malformed pair[%s], want key%svalue", a, sep)
		}
		pairs = append(pairs, [2]string{k, strings.TrimSpace(v)})
	}

	return pairs, nil
}
