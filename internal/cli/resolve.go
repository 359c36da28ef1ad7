package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/typica/internal/conn"
)

// ConnOptions holds the connection flags shared by resolve and format.
type ConnOptions struct {
	*RootOptions
	Host     string
	Port     int
	Username string
	Password string
	Database string
	Strict   bool
	Allow    []string
}

// bindConnFlags registers the connection flags on cmd.
func bindConnFlags(cmd *cobra.Command, opts *ConnOptions) {
	cmd.Flags().StringVar(&opts.Host, "host", "", "host when no URI is given")
	cmd.Flags().IntVar(&opts.Port, "port", 0, "port when no URI is given")
	cmd.Flags().StringVar(&opts.Username, "username", "", "username the URI lacks")
	cmd.Flags().StringVar(&opts.Password, "password", "", "password the URI lacks")
	cmd.Flags().StringVar(&opts.Database, "database", "", "database the URI lacks")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "reject unknown schemes and fields-only targets")
	cmd.Flags().StringSliceVar(&opts.Allow, "allow", nil, "scheme families accepted with --strict ("+familyNames()+")")
}

// resolve resolves the optional URI argument. Flags set on the command
// line win over the config file's connection section.
func (o *ConnOptions) resolve(cmd *cobra.Command, args []string) (conn.Target, error) {
	cfg := o.config().Connection
	fields := cfg.Fields

	flags := cmd.Flags()
	if flags.Changed("host") {
		fields.Host = o.Host
	}
	if flags.Changed("port") {
		fields.Port = o.Port
	}
	if flags.Changed("username") {
		fields.Username = o.Username
	}
	if flags.Changed("password") {
		fields.Password = o.Password
	}
	if flags.Changed("database") {
		fields.Database = o.Database
	}

	strict := cfg.Strict || o.Strict
	if flags.Changed("allow") {
		cfg.Allow = o.Allow
	}

	var uri string
	if len(args) > 0 {
		uri = args[0]
	}

	if !strict {
		return conn.Resolve(uri, fields)
	}
	allow, err := cfg.Allowlist()
	if err != nil {
		return conn.Target{}, &LoadError{Code: ErrCodeInvalidFlag, Message: err.Error()}
	}
	return conn.ResolveStrict(uri, fields, allow)
}

func familyNames() string {
	names := make([]string, len(conn.Families))
	for i, f := range conn.Families {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConnOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "resolve [uri]",
		Short: "Resolve a connection string into a target",
		Long: `Resolve a connection string, explicit fields, or both into a
connection target. Parts the URI lacks (credentials, database) are filled
from the flags or the config file. The password is always redacted.

Examples:
  typica resolve "postgresql://app:secret@db:5432/core"
  typica resolve "mongodb://a:1,b:2/?authSource=admin" --format json
  typica resolve --host db --port 5432 --database core`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(opts, args, cmd)
		},
	}

	bindConnFlags(cmd, opts)
	return cmd
}

func runResolve(opts *ConnOptions, args []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	target, err := opts.resolve(cmd, args)
	if err != nil {
		return fail(formatter, err)
	}

	if formatter.Format == "json" {
		return formatter.Success(target)
	}
	writeTarget(formatter.Writer, target)
	return nil
}

// writeTarget prints a target as aligned text, password redacted.
func writeTarget(w io.Writer, t conn.Target) {
	fmt.Fprintf(w, "Kind:      %s\n", t.Kind())
	if t.Scheme() != "" {
		fmt.Fprintf(w, "Scheme:    %s\n", t.Scheme())
	}
	fmt.Fprintf(w, "Endpoints: %s\n", strings.Join(t.Hosts(), ", "))
	if auth := t.Auth(); auth.IsSet() {
		fmt.Fprintf(w, "Username:  %s\n", auth.Username())
		fmt.Fprintf(w, "Password:  %s\n", conn.RedactedPassword)
	}
	if db, ok := t.Database(); ok {
		fmt.Fprintf(w, "Database:  %s\n", db)
	}
	if fp, err := t.Fingerprint(); err == nil {
		fmt.Fprintf(w, "Identity:  %s\n", fp)
	}
}
