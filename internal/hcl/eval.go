package hcl

import (
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
	"github.com/zclconf/go-cty/cty/gocty"
)

// newEvalContext exposes environment variables as the `env` object.
func newEvalContext(environ []string) *hcl.EvalContext {
	vars := make(map[string]cty.Value, len(environ))
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" || !hclIdentifier(name) {
			continue
		}
		vars[name] = cty.StringVal(value)
	}

	env := cty.EmptyObjectVal
	if len(vars) > 0 {
		env = cty.ObjectVal(vars)
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"env": env},
		Functions: map[string]function.Function{
			"upper":    stdlib.UpperFunc,
			"lower":    stdlib.LowerFunc,
			"coalesce": stdlib.CoalesceFunc,
			"max":      stdlib.MaxFunc,
			"min":      stdlib.MinFunc,
		},
	}
}

// hclIdentifier reports whether name can be used in an attribute
// traversal such as env.NAME.
func hclIdentifier(name string) bool {
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '-'):
		default:
			return false
		}
	}
	return true
}

// value evaluates expr. ok is false when the attribute was absent or null.
func value(expr hcl.Expression, evalCtx *hcl.EvalContext) (cty.Value, bool, hcl.Diagnostics) {
	if expr == nil {
		return cty.NilVal, false, nil
	}
	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() || val.IsNull() {
		return cty.NilVal, false, diags
	}
	return val, true, nil
}

func decodeAs(expr hcl.Expression, val cty.Value, ty cty.Type, target any) hcl.Diagnostics {
	conv, err := convert.Convert(val, ty)
	if err == nil {
		err = gocty.FromCtyValue(conv, target)
	}
	if err != nil {
		return hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Incorrect attribute value type",
			Detail:   fmt.Sprintf("Cannot use %s here: %s.", val.Type().FriendlyName(), err),
			Subject:  expr.Range().Ptr(),
		}}
	}
	return nil
}

func evalString(expr hcl.Expression, evalCtx *hcl.EvalContext, into *string) hcl.Diagnostics {
	val, ok, diags := value(expr, evalCtx)
	if !ok {
		return diags
	}
	return decodeAs(expr, val, cty.String, into)
}

func evalBool(expr hcl.Expression, evalCtx *hcl.EvalContext, into *bool) hcl.Diagnostics {
	val, ok, diags := value(expr, evalCtx)
	if !ok {
		return diags
	}
	return decodeAs(expr, val, cty.Bool, into)
}

func evalInt(expr hcl.Expression, evalCtx *hcl.EvalContext, into *int) hcl.Diagnostics {
	val, ok, diags := value(expr, evalCtx)
	if !ok {
		return diags
	}
	return decodeAs(expr, val, cty.Number, into)
}

func evalStringList(expr hcl.Expression, evalCtx *hcl.EvalContext, into *[]string) hcl.Diagnostics {
	val, ok, diags := value(expr, evalCtx)
	if !ok {
		return diags
	}
	var out []string
	if diags := decodeAs(expr, val, cty.List(cty.String), &out); diags.HasErrors() {
		return diags
	}
	*into = out
	return nil
}

// evalDuration accepts a Go duration string or a number of milliseconds.
func evalDuration(expr hcl.Expression, evalCtx *hcl.EvalContext, into *time.Duration) error {
	val, ok, diags := value(expr, evalCtx)
	if diags.HasErrors() {
		return diags
	}
	if !ok {
		return nil
	}

	switch {
	case val.Type() == cty.Number:
		var ms int64
		if diags := decodeAs(expr, val, cty.Number, &ms); diags.HasErrors() {
			return diags
		}
		*into = time.Duration(ms) * time.Millisecond
		return nil
	case val.Type() == cty.String:
		d, err := time.ParseDuration(val.AsString())
		if err != nil {
			return fmt.Errorf("%s: step_delay: %w", expr.Range(), err)
		}
		*into = d
		return nil
	default:
		return fmt.Errorf("%s: step_delay must be a duration string or a number of milliseconds, got %s", expr.Range(), val.Type().FriendlyName())
	}
}
