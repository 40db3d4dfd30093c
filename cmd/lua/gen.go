package main

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/goccy/go-yaml"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	lua "github.com/BattlegroundsCoH/coh-battlegrounds-sub005"
)

type genFlags struct {
	name string
	out  string
}

func newGenCmd(a *app) *cobra.Command {
	var flags genFlags
	cmd := &cobra.Command{
		Use:   "gen [file]",
		Short: "Generate a Lua table from a YAML or JSON document",
		Long: `Generate Lua source from a YAML or JSON document read from file, or stdin if
no file is given. The document becomes a table constructor, assigned to the
global given with --name. Keys keep the order of the document. Null values
are omitted.

The layout of the output is taken from the 'source' section of the
configuration.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := "-"
			if len(args) > 0 {
				input = args[0]
			}
			return a.gen(input, flags)
		},
	}
	cmd.Flags().StringVarP(&flags.name, "name", "n", "", "global name to assign the table to, empty writes a bare expression")
	cmd.Flags().StringVarP(&flags.out, "out", "o", "", "output file instead of stdout")
	return cmd
}

func (a *app) gen(input string, flags genFlags) error {
	fs := a.fileSystem()

	var (
		data []byte
		err  error
	)
	if input == "-" {
		data, err = io.ReadAll(a.stdin)
	} else {
		data, err = afero.ReadFile(fs, input)
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}

	var doc any
	if err := yaml.UnmarshalWithOptions(data, &doc, yaml.UseOrderedMap()); err != nil {
		return fmt.Errorf("parse %s: %w", input, err)
	}
	v, err := fromYAML(doc)
	if err != nil {
		return fmt.Errorf("convert %s: %w", input, err)
	}

	src, err := lua.BuildSource(flags.name, v, a.cfg.Source)
	if err != nil {
		return err
	}
	if flags.name == "" {
		src += "\n"
	}

	a.logger.Debug("generated source", "input", input, "bytes", len(src))
	if flags.out == "" {
		_, err = io.WriteString(a.stdout, src)
		return err
	}
	return afero.WriteFile(fs, flags.out, []byte(src), 0o644)
}

// fromYAML converts a document decoded with yaml.UseOrderedMap to a Lua
// value, keeping the order of mapping keys. Null mapping values are omitted.
// Nulls in sequences and NaN keys have no table representation and are
// rejected.
func fromYAML(doc any) (lua.Value, error) {
	switch v := doc.(type) {
	case nil:
		return lua.Nil, nil
	case bool:
		return lua.Boolean(v), nil
	case string:
		return lua.String(v), nil
	case int:
		return lua.Number(v), nil
	case int64:
		return lua.Number(v), nil
	case uint64:
		return lua.Number(v), nil
	case float64:
		return lua.Number(v), nil
	case []any:
		t := lua.NewTable()
		for i, elem := range v {
			if elem == nil {
				return nil, fmt.Errorf("[%d]: null in sequence", i+1)
			}
			lv, err := fromYAML(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i+1, err)
			}
			t.Set(lua.Number(i+1), lv)
		}
		return t, nil
	case yaml.MapSlice:
		t := lua.NewTable()
		for _, item := range v {
			key, err := fromYAML(item.Key)
			if err != nil {
				return nil, err
			}
			if key == lua.Nil {
				return nil, errors.New("null key")
			}
			if n, ok := key.(lua.Number); ok && math.IsNaN(float64(n)) {
				return nil, errors.New("NaN key")
			}
			if _, ok := key.(*lua.Table); ok {
				return nil, fmt.Errorf("complex key %v", item.Key)
			}
			lv, err := fromYAML(item.Value)
			if err != nil {
				return nil, fmt.Errorf("%v: %w", item.Key, err)
			}
			t.Set(key, lv)
		}
		return t, nil
	}
	return nil, fmt.Errorf("unsupported value of type %T", doc)
}
