package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/typica/internal/conn"
)

// FormatOptions holds flags for the format command.
type FormatOptions struct {
	ConnOptions
	Scheme     string
	NoDatabase bool
	As         string
}

// Output forms of the format command.
const (
	FormAsURI   = "uri"
	FormAsDSN   = "dsn"
	FormAsMongo = "mongo"
)

// MongoSummary describes mongo-driver client options without the password.
type MongoSummary struct {
	Hosts      []string `json:"hosts"`
	Direct     bool     `json:"direct"`
	Username   string   `json:"username,omitempty"`
	AuthSource string   `json:"authSource,omitempty"`
}

// NewFormatCommand creates the format command.
func NewFormatCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FormatOptions{ConnOptions: ConnOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "format [uri]",
		Short: "Format a resolved target for a driver",
		Long: `Resolve a target and print it back as a connection string (uri),
a lib/pq key/value DSN (dsn), or a summary of mongo-driver client options
(mongo). The uri and dsn forms carry the password.

Examples:
  typica format "postgres://app:secret@db:5432/core" --as dsn
  typica format "mongo://a:1,b:2" --scheme mongodb --no-database
  typica format --host db --username app --password secret --scheme redis`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFormat(opts, args, cmd)
		},
	}

	bindConnFlags(cmd, &opts.ConnOptions)
	cmd.Flags().StringVar(&opts.Scheme, "scheme", "", "scheme to write (default: the URI's scheme)")
	cmd.Flags().BoolVar(&opts.NoDatabase, "no-database", false, "omit the database")
	cmd.Flags().StringVar(&opts.As, "as", FormAsURI, "output form (uri|dsn|mongo)")

	return cmd
}

func runFormat(opts *FormatOptions, args []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	target, err := opts.resolve(cmd, args)
	if err != nil {
		return fail(formatter, err)
	}
	if opts.NoDatabase {
		target = target.WithDatabase("")
	}

	var out any
	switch opts.As {
	case FormAsURI:
		scheme := opts.Scheme
		if scheme == "" {
			scheme = target.Scheme()
		}
		if scheme == "" {
			return fail(formatter, &LoadError{Code: ErrCodeInvalidFlag, Message: "target has no scheme: pass --scheme"})
		}
		out = conn.FormatURI(target, scheme, !opts.NoDatabase)

	case FormAsDSN:
		dsn, err := conn.PostgresDSN(target)
		if err != nil {
			return fail(formatter, err)
		}
		out = dsn

	case FormAsMongo:
		summary, err := mongoSummary(target)
		if err != nil {
			return fail(formatter, err)
		}
		if formatter.Format != "json" {
			fmt.Fprintf(formatter.Writer, "Hosts:      %v\nDirect:     %t\n", summary.Hosts, summary.Direct)
			if summary.Username != "" {
				fmt.Fprintf(formatter.Writer, "Username:   %s\nAuthSource: %s\n", summary.Username, summary.AuthSource)
			}
			return nil
		}
		out = summary

	default:
		return fail(formatter, &LoadError{Code: ErrCodeInvalidFlag, Message: fmt.Sprintf("invalid --as %q: must be uri, dsn or mongo", opts.As)})
	}

	return formatter.Success(out)
}

// mongoSummary builds and validates the mongo-driver client options.
func mongoSummary(t conn.Target) (MongoSummary, error) {
	opts := conn.MongoClientOptions(t)
	if err := opts.Validate(); err != nil {
		return MongoSummary{}, fmt.Errorf("mongo client options: %w", err)
	}

	s := MongoSummary{Hosts: opts.Hosts}
	if opts.Direct != nil {
		s.Direct = *opts.Direct
	}
	if opts.Auth != nil {
		s.Username = opts.Auth.Username
		s.AuthSource = opts.Auth.AuthSource
	}
	return s, nil
}
