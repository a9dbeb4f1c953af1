package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"formnerd/internal/form"
)

// stdinApprover asks for approval on the terminal. It is one of several
// interchangeable implementations of the user-approval collaborator; the
// engine does not care which UI answers.
type stdinApprover struct {
	in  *bufio.Reader
	out io.Writer
}

func newStdinApprover(in io.Reader, out io.Writer) *stdinApprover {
	return &stdinApprover{in: bufio.NewReader(in), out: out}
}

func (a *stdinApprover) Request(ctx context.Context, req form.ApprovalRequest) (form.Decision, error) {
	fmt.Fprintf(a.out, "\n[%d/%d] %s\n", req.Current, req.Total, req.Question)
	fmt.Fprintf(a.out, "  Proposed answer: %q\n", req.ProposedAnswer)
	if len(req.AvailableOptions) > 0 {
		fmt.Fprintf(a.out, "  Options: %s\n", strings.Join(req.AvailableOptions, " | "))
	}

	for {
		fmt.Fprint(a.out, "  Apply? [y]es / [n]o / [p]ause: ")

		line, err := a.in.ReadString('\n')
		if err != nil {
			return form.DecisionReject, err
		}
		if err := ctx.Err(); err != nil {
			return form.DecisionReject, err
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return form.DecisionApprove, nil
		case "n", "no":
			return form.DecisionReject, nil
		case "p", "pause":
			return form.DecisionPause, nil
		}
	}
}
