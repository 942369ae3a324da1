package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/repl-bridge/kernel/comm"
	"github.com/repl-bridge/kernel/target"
)

// scriptRunner interprets a tiny statement language so the full pipeline
// (enqueue, flush, memory extraction, relay) can be exercised end to end
// without a debugger-attached runtime. Statements are separated by ';':
//
//	display <base64>   enqueue a display message with the given PNG payload
//	value <text>       complete with a value
//	fail <message>     raise a diagnostic
//	trap               kill the target process
//	sleep <duration>   block (interruptibly) for the given duration
type scriptRunner struct {
	comm  *comm.Communicator
	cells int
}

func newScriptRunner(c *comm.Communicator) *scriptRunner {
	return &scriptRunner{comm: c}
}

func (r *scriptRunner) Run(ctx context.Context, code string) (*target.EvalOutcome, error) {
	r.cells++
	outcome := &target.EvalOutcome{Kind: target.KindNoValue}

	for i, stmt := range strings.Split(code, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}

		verb, arg, _ := strings.Cut(stmt, " ")
		arg = strings.TrimSpace(arg)

		switch verb {
		case "display":
			if err := r.comm.EnqueueDisplay(arg); err != nil {
				return nil, err
			}
		case "value":
			outcome.Kind = target.KindValue
			outcome.Value = arg
		case "fail":
			return &target.EvalOutcome{
				Kind:       target.KindDiagnostic,
				Diagnostic: r.diagnostic(i, arg),
			}, nil
		case "trap":
			return nil, errors.New("trap instruction executed")
		case "sleep":
			d, err := time.ParseDuration(arg)
			if err != nil {
				return &target.EvalOutcome{
					Kind:       target.KindDiagnostic,
					Diagnostic: r.diagnostic(i, fmt.Sprintf("bad duration %q", arg)),
				}, nil
			}
			select {
			case <-time.After(d):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		default:
			return &target.EvalOutcome{
				Kind:       target.KindDiagnostic,
				Diagnostic: r.diagnostic(i, fmt.Sprintf("unrecognized statement %q", verb)),
			}, nil
		}
	}

	return outcome, nil
}

func (r *scriptRunner) diagnostic(stmt int, text string) *target.Diagnostic {
	return &target.Diagnostic{
		Text:     text,
		Location: fmt.Sprintf("<cell %d>:%d", r.cells, stmt+1),
	}
}
