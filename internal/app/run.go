package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/gridc/internal/graphfile"
	"github.com/specialistvlad/gridc/internal/types"
	"github.com/zclconf/go-cty/cty"
)

// runFunction compiles one function and calls it with the configured
// arguments, printing one JSON result per line.
func (a *App) runFunction(ctx context.Context) error {
	res, err := a.build(ctx, a.config.Paths...)
	if err != nil {
		return err
	}
	names := a.functionNames()
	if len(names) == 0 && len(res.Functions) > 0 {
		names = []string{res.Functions[0].Name}
	}
	fns, err := graphfile.Compile(ctx, res, a.backend, names...)
	if err != nil {
		return err
	}
	fn := fns[0]
	defer fn.Release()

	params := fn.Params()
	if len(a.config.Args) != len(params) {
		return fmt.Errorf("%s takes %d arguments, got %d", fn.Name(), len(params), len(a.config.Args))
	}
	args := make([]cty.Value, 0, len(params))
	for i, t := range params {
		v, err := types.ParseJSON(t, []byte(a.config.Args[i]))
		if err != nil {
			for _, arg := range args {
				types.ReleaseValue(arg)
			}
			return fmt.Errorf("argument %d: %w", i, err)
		}
		args = append(args, v)
	}

	results, err := fn.Call(ctx, args...)
	if err != nil {
		return err
	}
	defer func() {
		for _, v := range results {
			types.ReleaseValue(v)
		}
	}()
	for _, v := range results {
		out, err := types.FormatJSON(v)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.outW, string(out))
	}
	return nil
}

func typeNames(ts []*types.Type) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.Name()
	}
	return out
}
