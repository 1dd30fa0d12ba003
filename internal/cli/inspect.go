package cli

import (
	"fmt"
	"io"
	"slices"
	"sort"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cmakegraph/pkg/errors"
	"github.com/matzehuels/cmakegraph/pkg/graph"
	"github.com/matzehuels/cmakegraph/pkg/pipeline"
)

const (
	sortOrder     = "order"
	sortDependers = "dependers"
	sortName      = "name"
)

// inspectCommand creates the inspect command, which prints what the pipeline
// would produce as a table instead of DOT.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		flags       pipelineFlags
		sortBy      string
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "inspect INPUT",
		Short: "Show the targets of a graph after filtering",
		Example: `  cmakegraph inspect build/graph.dot --skip-kinds utility --frequent-deps 3 --sort dependers
  cmakegraph inspect build/graph.dot -i
  cmakegraph transform build/graph.dot -f json -o graph.json && cmakegraph inspect graph.json`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch sortBy {
			case sortOrder, sortDependers, sortName:
			default:
				return errors.New(errors.ErrCodeInvalidInput, "invalid sort: %q (must be one of: order, dependers, name)", sortBy)
			}

			if interactive && args[0] == stdinInput {
				return errors.New(errors.ErrCodeInvalidInput, "--interactive reads the terminal and cannot take the description from stdin")
			}

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts := flags.options(cmd, cfg, loggerFromContext(cmd.Context()))
			res, err := runInput(cmd.Context(), args[0], cmd.InOrStdin(), opts)
			if err != nil {
				return err
			}
			if interactive {
				return c.runPicker(cmd, args[0], res, opts, sortBy)
			}
			printInspect(cmd.OutOrStdout(), res, sortBy)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&sortBy, "sort", sortOrder, "row order: order, dependers, name")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "pick targets to skip interactively")

	return cmd
}

// runPicker lets the user mark targets to skip, then reruns the pipeline
// with those targets added to the skip list.
func (c *CLI) runPicker(cmd *cobra.Command, input string, res *pipeline.Result, opts pipeline.Options, sortBy string) error {
	if !isTerminal(cmd.InOrStdin()) {
		return errors.New(errors.ErrCodeInvalidInput, "--interactive requires a terminal")
	}

	p := tea.NewProgram(NewTargetPickerModel(res.Annotated),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.ErrOrStderr()),
	)
	final, err := p.Run()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "run target picker")
	}
	m := final.(TargetPickerModel)
	if !m.Confirmed {
		printInfo(cmd.ErrOrStderr(), "Cancelled")
		return nil
	}

	picked := m.SkippedNames()
	opts.SkipNames = append(slices.Clone(opts.SkipNames), picked...)
	warnings := res.Warnings
	res, err = pipeline.RunGraph(cmd.Context(), res.Parsed, opts)
	if err != nil {
		return err
	}
	res.Warnings = warnings
	printInspect(cmd.OutOrStdout(), res, sortBy)
	if len(picked) > 0 {
		printNextStep(cmd.ErrOrStderr(), "Apply the selection", transformCommandLine(input, opts))
	}
	return nil
}

// transformCommandLine returns the transform invocation that applies opts to
// input, one flag per skipped kind and name.
func transformCommandLine(input string, opts pipeline.Options) string {
	args := []string{"cmakegraph", "transform", shellQuote(input)}
	for _, k := range opts.SkipKinds {
		args = append(args, "--skip-kinds", shellQuote(k))
	}
	for _, n := range opts.SkipNames {
		args = append(args, "--skip-names", shellQuote(n))
	}
	if opts.FrequentThreshold > 0 {
		args = append(args, "--frequent-deps", strconv.Itoa(opts.FrequentThreshold))
	}
	if opts.Legend {
		args = append(args, "--legend")
	}
	return strings.Join(args, " ")
}

// shellQuote returns s unchanged when a POSIX shell would read it as one
// plain word, and single-quoted otherwise.
func shellQuote(s string) string {
	if s != "" && strings.IndexFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || strings.ContainsRune("_-./:=@%+,", r))
	}) < 0 {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// printInspect writes a summary and a table of the annotated graph.
func printInspect(w io.Writer, res *pipeline.Result, sortBy string) {
	a := res.Annotated

	name := a.Name()
	if name == "" {
		name = "(unnamed)"
	}
	fmt.Fprintln(w, StyleTitle.Render(name))
	libs := 0
	for _, n := range a.Nodes() {
		if n.Kind.IsLibrary() {
			libs++
		}
	}
	printKeyValue(w, "Targets", fmt.Sprintf("%d (%d libraries)", res.Stats.NodeCount, libs))
	printKeyValue(w, "Links", strconv.Itoa(res.Stats.EdgeCount))
	if res.Stats.NodesRemoved > 0 {
		printKeyValue(w, "Removed", fmt.Sprintf("%d targets, %d links", res.Stats.NodesRemoved, res.Stats.EdgesRemoved))
	}
	if a.Threshold() > 0 {
		printKeyValue(w, "Frequent", fmt.Sprintf("%d (>= %d dependers)", res.Stats.FrequentCount, a.Threshold()))
	}
	for _, warn := range res.Warnings {
		printWarning(w, "%s", warn.Message)
	}
	fmt.Fprintln(w)

	nodes := sortedNodes(a, sortBy)
	rows := make([][]string, len(nodes))
	for i, n := range nodes {
		mark := ""
		if a.Frequent(n.ID) {
			mark = "★"
		}
		rows[i] = []string{
			n.DisplayName(),
			n.Kind.String(),
			strconv.Itoa(a.Dependers(n.ID)),
			strconv.Itoa(a.OutDegree(n.ID)),
			mark,
		}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Target", "Kind", "Dependers", "Deps", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			if row < len(nodes) && a.Frequent(nodes[row].ID) {
				return base.Inherit(StyleFrequent)
			}
			if col == 1 {
				return base.Foreground(colorGray)
			}
			return base
		})
	fmt.Fprintln(w, t.Render())

	if len(res.Stats.Removed) > 0 {
		printDetail(w, "removed: %v", res.Stats.Removed)
	}
}

func sortedNodes(a *graph.Annotated, sortBy string) []graph.Node {
	nodes := a.Nodes()
	switch sortBy {
	case sortDependers:
		sort.SliceStable(nodes, func(i, j int) bool {
			return a.Dependers(nodes[i].ID) > a.Dependers(nodes[j].ID)
		})
	case sortName:
		sort.SliceStable(nodes, func(i, j int) bool {
			return nodes[i].DisplayName() < nodes[j].DisplayName()
		})
	}
	return nodes
}
