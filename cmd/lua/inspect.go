package main

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	lua "github.com/BattlegroundsCoH/coh-battlegrounds-sub005"
)

func newInspectCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "inspect script [query]",
		Short: "Run a script and list the globals it defined",
		Long: `Run a script and list the global variables it defined, with their types.
If a query is given, only globals whose names fuzzy match the query are
listed, best match first.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) > 1 {
				query = args[1]
			}
			return a.inspect(args[0], query, limit)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "list at most this many globals, 0 lists all")
	return cmd
}

func (a *app) inspect(script, query string, limit int) error {
	builtin := globalNames(a.newState())

	s := a.newState()
	if _, err := a.evalScript(s, script); err != nil {
		return err
	}

	var names []string
	for name := range globalNames(s) {
		if _, ok := builtin[name]; !ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	if query != "" {
		matches := fuzzy.Find(query, names)
		names = names[:0:0]
		for _, match := range matches {
			names = append(names, match.Str)
		}
	}
	if limit > 0 && len(names) > limit {
		names = names[:limit]
	}

	w := tabwriter.NewWriter(a.stdout, 0, 8, 2, ' ', 0)
	for _, name := range names {
		v := s.Global(name)
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", name, v.Type(), summary(v))
	}
	return w.Flush()
}

func globalNames(s *lua.State) map[string]struct{} {
	names := make(map[string]struct{})
	s.Globals().Range(func(k, _ lua.Value) bool {
		if name, ok := k.(lua.String); ok {
			names[string(name)] = struct{}{}
		}
		return true
	})
	return names
}

// summary describes a value in a few characters.
func summary(v lua.Value) string {
	switch val := v.(type) {
	case *lua.Table:
		return fmt.Sprintf("%d entries", val.Count())
	case *lua.Userdata:
		if val.Descriptor != nil {
			return val.Descriptor.Name
		}
		return ""
	case *lua.Function:
		if val.IsNative() {
			return "native"
		}
		return "script"
	}
	return fmt.Sprint(v)
}
