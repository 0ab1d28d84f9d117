package grammar

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/NikitaCOEUR/cmdtree/internal/condition"
	"github.com/NikitaCOEUR/cmdtree/internal/config"
	"github.com/NikitaCOEUR/cmdtree/internal/derrors"
	"github.com/NikitaCOEUR/cmdtree/pkg/dispatch"
)

// Template keys set next to the parsed arguments. An argument with the same
// name takes precedence.
const (
	KeySource = "Source"
	KeyInput  = "Input"
)

// command compiles a run block. The template and the fail_if condition are
// parsed once here, never per invocation.
func (c *compiler) command(field string, n *config.Node) (dispatch.Command[config.Source], error) {
	run := n.Run

	var tmpl *template.Template
	if run.Output != "" {
		t, err := template.New(n.Name()).Funcs(sprig.TxtFuncMap()).Parse(run.Output)
		if err != nil {
			return nil, derrors.NewValidationError(field+".output", "invalid template", err)
		}
		tmpl = t
	}

	var failIf condition.Condition
	if run.FailIf != nil {
		cond, err := condition.Parse(run.FailIf)
		if err != nil {
			return nil, derrors.NewValidationError(field+".fail_if", "invalid condition", err)
		}
		failIf = cond
	}

	result := dispatch.SingleSuccess
	if run.Result != nil {
		result = *run.Result
	}
	out := c.opts.Out
	log := c.opts.Logger

	return func(ctx *dispatch.CommandContext[config.Source]) (int, error) {
		src := ctx.Source()
		if failIf != nil {
			if met, _ := failIf.Evaluate(src); met {
				msg := run.Error
				if msg == "" {
					msg = fmt.Sprintf("command refused for source '%s'", src.Name)
				}
				return 0, derrors.NewExecutionError(ctx.Input(), msg, nil)
			}
		}

		if tmpl != nil {
			var sb strings.Builder
			if err := tmpl.Execute(&sb, templateData(ctx)); err != nil {
				return 0, derrors.NewExecutionError(ctx.Input(), "failed to render output", err)
			}
			text := sb.String()
			if !strings.HasSuffix(text, "\n") {
				text += "\n"
			}
			if _, err := io.WriteString(out, text); err != nil {
				return 0, derrors.NewExecutionError(ctx.Input(), "failed to write output", err)
			}
		}

		log.Debug().
			Str("input", ctx.Input()).
			Str("source", src.Name).
			Int("result", result).
			Msg("Command executed")
		return result, nil
	}, nil
}

func templateData(ctx *dispatch.CommandContext[config.Source]) map[string]any {
	data := map[string]any{
		KeySource: ctx.Source(),
		KeyInput:  ctx.Input(),
	}
	for _, name := range ctx.ArgumentNames() {
		data[name], _ = ctx.ArgumentValue(name)
	}
	return data
}
