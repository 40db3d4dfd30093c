package main

import (
	"errors"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	lua "github.com/BattlegroundsCoH/coh-battlegrounds-sub005"
)

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check file...",
		Short: "Parse scripts without running them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.check(args)
		},
	}
}

// check parses every file and reports all syntax errors. It fails if any
// file could not be parsed.
func (a *app) check(files []string) error {
	fs := a.fileSystem()
	var failed int
	for _, file := range files {
		data, err := afero.ReadFile(fs, file)
		if err != nil {
			return fmt.Errorf("read %s: %w", file, err)
		}
		if _, err := lua.ParseOnly(string(data)); err != nil {
			var serr *lua.SyntaxError
			if !errors.As(err, &serr) {
				return fmt.Errorf("%s: %w", file, err)
			}
			failed++
			_, _ = fmt.Fprintf(a.stdout, "%s:%d: %s\n", file, serr.Line, serr.Message)
			continue
		}
		a.logger.Debug("checked", "file", file)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files have syntax errors", failed, len(files))
	}
	return nil
}
