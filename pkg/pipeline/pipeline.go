// Package pipeline runs the cmakegraph transformation: parse, filter,
// annotate and emit.
//
// The CLI, the HTTP server and the file-API command all go through [Run], so
// every entry point applies the same validation, ordering and defaults.
//
// # Stages
//
//  1. Parse: decode the DOT description into a graph (pkg/dot)
//  2. Filter: drop skipped kinds and name patterns (pkg/transform)
//  3. Annotate: mark frequent dependencies on the filtered graph
//  4. Emit: serialize the annotated graph back to DOT
//
// The order is fixed. Annotation always sees the filtered graph, so a target
// used only by skipped targets is never emphasized. A failing stage aborts
// the run and no output is produced.
//
// # Usage
//
//	res, err := pipeline.Run(ctx, text, pipeline.Options{
//	    SkipKinds:         []string{"utility"},
//	    SkipNames:         []string{"test_"},
//	    FrequentThreshold: 3,
//	})
//	if err != nil {
//	    return err
//	}
//	fmt.Print(res.DOT)
//
// [Result] keeps every intermediate graph, which the inspect command uses to
// report what each stage did.
package pipeline

import (
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cmakegraph/pkg/errors"
	"github.com/matzehuels/cmakegraph/pkg/graph"
	"github.com/matzehuels/cmakegraph/pkg/transform"
)

// Format constants for output formats.
const (
	FormatDOT  = "dot"
	FormatJSON = "json"
	FormatSVG  = "svg"
	FormatPNG  = "png"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatDOT:  true,
	FormatJSON: true,
	FormatSVG:  true,
	FormatPNG:  true,
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid format: %q (must be one of: dot, json, svg, png)", format)
	}
	return nil
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures a pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// SkipKinds names target kinds to remove (see graph.ParseKind for the
	// accepted spellings, e.g. "utility" or "INTERFACE_LIBRARY").
	SkipKinds []string `json:"skip_kinds,omitempty"`
	// SkipNames removes targets whose name contains any of these substrings.
	SkipNames []string `json:"skip_names,omitempty"`
	// FrequentThreshold marks targets with at least this many dependers after
	// filtering. Zero disables annotation.
	FrequentThreshold int `json:"frequent_deps,omitempty"`
	// Legend adds a legend cluster to the emitted DOT.
	Legend bool `json:"legend,omitempty"`

	Logger *log.Logger `json:"-"`
}

// Validate checks the options. Unknown kind names, malformed name patterns
// and negative thresholds are INVALID_INPUT errors.
func (o *Options) Validate() error {
	for _, k := range o.SkipKinds {
		if _, ok := graph.ParseKind(k); !ok {
			return errors.New(errors.ErrCodeInvalidInput, "unknown target kind %q (must be one of: %s)",
				k, strings.Join(graph.KindNames(), ", "))
		}
	}
	for _, p := range o.SkipNames {
		if p == "" {
			continue
		}
		if err := errors.ValidateNamePattern(p); err != nil {
			return err
		}
	}
	return errors.ValidateThreshold(o.FrequentThreshold)
}

// SetDefaults fills unset fields.
func (o *Options) SetDefaults() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Rules converts the skip options into filter rules. Call Validate first;
// unknown kind names are ignored here.
func (o *Options) Rules() transform.Rules {
	var r transform.Rules
	for _, name := range o.SkipKinds {
		if k, ok := graph.ParseKind(name); ok && !slices.Contains(r.SkipKinds, k) {
			r.SkipKinds = append(r.SkipKinds, k)
		}
	}
	for _, p := range o.SkipNames {
		if p != "" {
			r.SkipNames = append(r.SkipNames, p)
		}
	}
	return r
}

// =============================================================================
// Result
// =============================================================================

// Stage identifies how far a run got.
type Stage int

const (
	StageNone Stage = iota
	StageParsed
	StageFiltered
	StageAnnotated
	StageEmitted
)

func (s Stage) String() string {
	switch s {
	case StageParsed:
		return "parsed"
	case StageFiltered:
		return "filtered"
	case StageAnnotated:
		return "annotated"
	case StageEmitted:
		return "emitted"
	default:
		return "none"
	}
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Stage is the last completed stage. A successful run ends at StageEmitted.
	Stage Stage

	// Parsed is the graph as read from the description.
	Parsed *graph.Graph
	// Filtered is Parsed without the skipped targets.
	Filtered *graph.Graph
	// Annotated is Filtered with frequent dependencies marked.
	Annotated *graph.Annotated

	// DOT is the emitted description.
	DOT string

	// Warnings lists recoverable parse diagnostics
	// (UNRECOGNIZED_ATTRIBUTE_MAPPING).
	Warnings []*errors.Error

	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount     int // after filtering
	EdgeCount     int // after filtering
	NodesRemoved  int
	EdgesRemoved  int
	FrequentCount int
	Removed       []string // names of removed targets

	ParseTime    time.Duration
	FilterTime   time.Duration
	AnnotateTime time.Duration
	EmitTime     time.Duration
}

// Total returns the time spent in all stages.
func (s Stats) Total() time.Duration {
	return s.ParseTime + s.FilterTime + s.AnnotateTime + s.EmitTime
}
