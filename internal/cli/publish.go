package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/changeprob/internal/store"
)

// PublishOptions holds flags for the publish and publications commands.
type PublishOptions struct {
	*RootOptions
	DB    string
	Label string
}

// NewPublishCommand creates the publish command.
func NewPublishCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PublishOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "publish [table]",
		Short: "Record a table in the publication store",
		Long: `Record a validated table in the SQLite publication store.

Table rows are keyed by content hash, so publishing the same table twice
stores it once and adds a second publication record. Publications are
numbered by a sequence, not by wall-clock time.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPublish(cmd.Context(), opts, opts.tablePath(args), cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "database path (default store.path from config)")
	cmd.Flags().StringVar(&opts.Label, "label", "", "free-form publication label, e.g. a run name")

	return cmd
}

// NewPublicationsCommand creates the publications command.
func NewPublicationsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PublishOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "publications",
		Short:         "List recorded publications",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPublications(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "database path (default store.path from config)")

	return cmd
}

func (o *PublishOptions) dbPath() string {
	if o.DB != "" {
		return o.DB
	}
	return o.config().Store.Path
}

func runPublish(ctx context.Context, opts *PublishOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	tb, err := loadOrFail(formatter, path)
	if err != nil {
		return err
	}

	st, err := store.Open(opts.dbPath())
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeStore, fmt.Sprintf("opening database: %v", err), nil)
	}
	defer st.Close()

	pub, err := st.Publish(ctx, tb, opts.Label)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeStore, fmt.Sprintf("publishing: %v", err), nil)
	}
	opts.logger().Info("published table",
		zap.String("id", pub.ID),
		zap.Int64("seq", pub.Seq),
		zap.String("hash", pub.TableHash),
	)

	if formatter.Format == "json" {
		return formatter.Success(pub)
	}
	fmt.Fprintf(formatter.Writer, "✓ Published %s as #%d (%s)\n", pub.TableName, pub.Seq, pub.ID)
	fmt.Fprintf(formatter.Writer, "  hash %s\n", pub.TableHash)
	return nil
}

func runPublications(ctx context.Context, opts *PublishOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := store.Open(opts.dbPath())
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeStore, fmt.Sprintf("opening database: %v", err), nil)
	}
	defer st.Close()

	pubs, err := st.ListPublications(ctx)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeStore, fmt.Sprintf("listing publications: %v", err), nil)
	}

	if formatter.Format == "json" {
		if pubs == nil {
			pubs = []store.Publication{}
		}
		return formatter.Success(pubs)
	}

	if len(pubs) == 0 {
		fmt.Fprintln(formatter.Writer, "No publications.")
		return nil
	}
	for _, p := range pubs {
		label := ""
		if p.Label != "" {
			label = "  " + p.Label
		}
		fmt.Fprintf(formatter.Writer, "#%d  %s  %s  %s%s\n", p.Seq, shortHash(p.TableHash), p.TableName, p.ID, label)
	}
	return nil
}
