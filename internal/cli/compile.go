package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/typica/internal/config"
	"github.com/roach88/typica/internal/filter"
	"github.com/roach88/typica/internal/meta"
	"github.com/roach88/typica/internal/querymongo"
	"github.com/roach88/typica/internal/querysql"
	"github.com/roach88/typica/internal/schema"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Dialect     string
	Flavor      string
	Table       string
	TieBreaker  string
	ActiveOnly  bool
	HideDeleted bool
	Output      string // output file path
}

// CompilationResult is the compiled form of a payload. Fingerprint is
// always taken over the generic document, so it identifies the query
// whatever the dialect.
type CompilationResult struct {
	Dialect     string          `json:"dialect"`
	Fingerprint string          `json:"fingerprint"`
	Document    filter.Document `json:"document,omitempty"`
	Mongo       *MongoQuery     `json:"mongo,omitempty"`
	SQL         *SQLQuery       `json:"sql,omitempty"`
	Page        filter.Page     `json:"page"`
	Sort        filter.Sort     `json:"sort"`
}

// MongoQuery is a find filter with its options.
type MongoQuery struct {
	Filter json.RawMessage `json:"filter"`
	Skip   int64           `json:"skip"`
	Limit  int64           `json:"limit"`
	Sort   json.RawMessage `json:"sort,omitempty"`
}

// SQLQuery is a paged SELECT and its COUNT, with positional params.
type SQLQuery struct {
	Flavor      string `json:"flavor"`
	Select      string `json:"select"`
	Params      []any  `json:"params"`
	Count       string `json:"count"`
	CountParams []any  `json:"countParams"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <payload|->",
		Short: "Compile a filter payload into a query document",
		Long: `Compile a JSON or YAML filter payload into a query for one backend.

Dialects:
  generic - and/not/or/nor document (default)
  opt     - andOpt/notOpt/orOpt/norOpt document
  mongo   - MongoDB find filter (Extended JSON) with skip, limit and sort
  sql     - parameterized SELECT and COUNT for sqlite or postgres

Examples:
  typica compile payload.yaml
  typica compile payload.json --dialect mongo --format json
  cat payload.json | typica compile - --dialect sql --flavor postgres --table users`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	def := config.Default().Compile
	cmd.Flags().StringVar(&opts.Dialect, "dialect", def.Dialect, "target dialect (generic|opt|mongo|sql)")
	cmd.Flags().StringVar(&opts.Flavor, "flavor", def.Flavor, "SQL flavor (sqlite|postgres)")
	cmd.Flags().StringVar(&opts.Table, "table", def.Table, "SQL table")
	cmd.Flags().StringVar(&opts.TieBreaker, "tie-breaker", def.TieBreaker, "SQL column appended to every ORDER BY")
	cmd.Flags().BoolVar(&opts.ActiveOnly, "active-only", false, "only match records with status active")
	cmd.Flags().BoolVar(&opts.HideDeleted, "hide-deleted", false, "exclude soft-deleted records")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

// settings merges the config file's compile section with flags set on
// the command line.
func (o *CompileOptions) settings(cmd *cobra.Command) config.Compile {
	c := o.config().Compile
	flags := cmd.Flags()
	if flags.Changed("dialect") {
		c.Dialect = o.Dialect
	}
	if flags.Changed("flavor") {
		c.Flavor = o.Flavor
	}
	if flags.Changed("table") {
		c.Table = o.Table
	}
	if flags.Changed("tie-breaker") {
		c.TieBreaker = o.TieBreaker
	}
	c.ActiveOnly = c.ActiveOnly || o.ActiveOnly
	c.HideDeleted = c.HideDeleted || o.HideDeleted
	return c
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	settings := opts.settings(cmd)

	p, err := LoadPayload(path, cmd.InOrStdin())
	if err != nil {
		return fail(formatter, err)
	}

	result, err := Compile(p, settings)
	if err != nil {
		return fail(formatter, err)
	}
	formatter.VerboseLog("Compiled %s query %s", result.Dialect, result.Fingerprint)

	if opts.Output != "" {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fail(formatter, err)
		}
		if err := os.WriteFile(opts.Output, append(data, '\n'), 0o644); err != nil {
			return fail(formatter, &LoadError{Code: ErrCodeWriteFailed, Message: fmt.Sprintf("writing %s: %v", opts.Output, err)})
		}
		formatter.VerboseLog("Wrote %s", opts.Output)
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	return writeCompilation(formatter, result)
}

// Compile turns a decoded payload into the query for settings.Dialect,
// applying the status scopes first.
func Compile(p *schema.Payload, settings config.Compile) (*CompilationResult, error) {
	q, err := p.Query()
	if err != nil {
		return nil, err
	}
	if settings.ActiveOnly {
		if err := meta.ScopeActive(q.Group); err != nil {
			return nil, err
		}
	}
	if settings.HideDeleted {
		if err := meta.ScopeNotDeleted(q.Group); err != nil {
			return nil, err
		}
	}

	generic := q.Document(filter.DefaultKeys)
	fingerprint, err := generic.Fingerprint()
	if err != nil {
		return nil, fmt.Errorf("fingerprint: %w", err)
	}

	result := &CompilationResult{
		Dialect:     settings.Dialect,
		Fingerprint: fingerprint,
		Page:        q.Page,
		Sort:        q.Sort,
	}

	switch settings.Dialect {
	case "", "generic":
		result.Dialect = "generic"
		result.Document = generic
	case "opt":
		result.Document = q.Document(filter.OptKeys)
	case "mongo":
		mq, err := compileMongo(q)
		if err != nil {
			return nil, err
		}
		result.Mongo = mq
	case "sql":
		sq, err := compileSQL(q, settings)
		if err != nil {
			return nil, err
		}
		result.SQL = sq
	default:
		return nil, &LoadError{Code: ErrCodeInvalidFlag, Message: fmt.Sprintf("invalid dialect %q: must be one of %v", settings.Dialect, config.Dialects)}
	}
	return result, nil
}

func compileMongo(q *filter.Query) (*MongoQuery, error) {
	doc, err := querymongo.Filter(q.Group)
	if err != nil {
		return nil, err
	}
	ext, err := querymongo.ExtendedJSON(doc)
	if err != nil {
		return nil, err
	}

	find := querymongo.FindOptions(q)
	mq := &MongoQuery{Filter: json.RawMessage(ext)}
	if find.Skip != nil {
		mq.Skip = *find.Skip
	}
	if find.Limit != nil {
		mq.Limit = *find.Limit
	}
	if q.Sort.Field != "" {
		sort, err := json.Marshal(map[string]int{q.Sort.Field: q.Sort.Order.Direction()})
		if err != nil {
			return nil, err
		}
		mq.Sort = sort
	}
	return mq, nil
}

func compileSQL(q *filter.Query, settings config.Compile) (*SQLQuery, error) {
	flavor, err := querysql.ParseFlavor(settings.Flavor)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeInvalidFlag, Message: err.Error()}
	}

	c := querysql.NewCompiler(flavor)
	if settings.TieBreaker != "" {
		c.TieBreaker = settings.TieBreaker
	}

	sel, params, err := c.Select(settings.Table, q)
	if err != nil {
		return nil, err
	}
	count, countParams, err := c.Count(settings.Table, q.Group)
	if err != nil {
		return nil, err
	}
	return &SQLQuery{
		Flavor:      flavor.String(),
		Select:      sel,
		Params:      params,
		Count:       count,
		CountParams: countParams,
	}, nil
}

// writeCompilation prints the result as text.
func writeCompilation(f *OutputFormatter, r *CompilationResult) error {
	w := f.Writer
	fmt.Fprintf(w, "Dialect:     %s\n", r.Dialect)
	fmt.Fprintf(w, "Fingerprint: %s\n", r.Fingerprint)
	fmt.Fprintf(w, "Page:        %d (size %d)\n", r.Page.Number, r.Page.Size)

	switch {
	case r.Document != nil:
		data, err := r.Document.Canonical()
		if err != nil {
			return fail(f, err)
		}
		fmt.Fprintf(w, "Document:    %s\n", data)
	case r.Mongo != nil:
		fmt.Fprintf(w, "Filter:      %s\n", r.Mongo.Filter)
		fmt.Fprintf(w, "Skip:        %d\n", r.Mongo.Skip)
		fmt.Fprintf(w, "Limit:       %d\n", r.Mongo.Limit)
		if r.Mongo.Sort != nil {
			fmt.Fprintf(w, "Sort:        %s\n", r.Mongo.Sort)
		}
	case r.SQL != nil:
		fmt.Fprintf(w, "Select:      %s\n", r.SQL.Select)
		fmt.Fprintf(w, "Params:      %v\n", r.SQL.Params)
		fmt.Fprintf(w, "Count:       %s\n", r.SQL.Count)
		fmt.Fprintf(w, "CountParams: %v\n", r.SQL.CountParams)
	}
	return nil
}
