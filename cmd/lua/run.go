package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	lua "github.com/BattlegroundsCoH/coh-battlegrounds-sub005"
)

func newRunCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run script [args...]",
		Short: "Run a script, '-' reads it from stdin",
		Long: `Run a script. The arguments after the script name are available to the
script in the global table 'arg', the script name itself is arg[0].`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(args[0], args[1:])
		},
	}
}

func (a *app) run(script string, args []string) error {
	s := a.newState()
	s.Globals().SetString("arg", argTable(script, args))

	a.logger.Debug("run", "script", script, "args", len(args))
	_, err := a.evalScript(s, script)
	return err
}

// evalScript evaluates the named script, or stdin if the name is "-".
func (a *app) evalScript(s *lua.State, script string) (lua.Values, error) {
	var (
		results lua.Values
		err     error
	)
	if script == "-" {
		results, err = s.Eval(a.stdin)
		script = "stdin"
	} else {
		results, err = s.DoFile(script)
	}
	if err != nil {
		return nil, annotate(script, err)
	}
	return results, nil
}

func argTable(script string, args []string) *lua.Table {
	t := lua.NewTable()
	t.Set(lua.Number(0), lua.String(script))
	for i, arg := range args {
		t.Set(lua.Number(i+1), lua.String(arg))
	}
	return t
}

// annotate prefixes script errors with the script name and, for runtime
// errors, the line.
func annotate(script string, err error) error {
	var rerr *lua.RuntimeError
	if errors.As(err, &rerr) && rerr.Line > 0 {
		return fmt.Errorf("%s:%d: %w", script, rerr.Line, err)
	}
	var serr *lua.SyntaxError
	if errors.As(err, &serr) || rerr != nil {
		return fmt.Errorf("%s: %w", script, err)
	}
	return err
}
