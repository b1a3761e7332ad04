package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"sdkmigrate/internal/ports"
	"sdkmigrate/internal/types"
)

// linePrompter asks on out and reads the answer from in, one line per
// conflict. An empty answer keeps the default strategy.
type linePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newLinePrompter(in io.Reader, out io.Writer) *linePrompter {
	return &linePrompter{in: bufio.NewReader(in), out: out}
}

var _ ports.ConflictPrompter = (*linePrompter)(nil)

func (p *linePrompter) ChooseVersion(ctx context.Context, conflict types.PackageVersionConflict, candidates []string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	if len(candidates) == 0 {
		return "", false, nil
	}
	printTitle(p.out, "%s", conflict.PackageID)
	for _, requested := range conflict.RequestedVersions {
		printDetail(p.out, "%s requests %s", requested.ProjectPath, requested.Version)
	}
	for idx, candidate := range candidates {
		fmt.Fprintf(p.out, "  %d) %s\n", idx+1, candidate)
	}
	fmt.Fprintf(p.out, "choose 1-%d (empty keeps highest): ", len(candidates))

	line, err := p.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", false, err
	}
	answer := strings.TrimSpace(line)
	if answer == "" {
		return "", false, nil
	}
	choice, err := strconv.Atoi(answer)
	if err != nil || choice < 1 || choice > len(candidates) {
		return "", false, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid choice: " + answer)
	}
	return candidates[choice-1], true, nil
}
