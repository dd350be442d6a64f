// Package cli is the inkdesk command line.
package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dtroode/inkdesk/internal/config"
	"github.com/dtroode/inkdesk/internal/failure"
	"github.com/dtroode/inkdesk/internal/logger"
	"github.com/dtroode/inkdesk/internal/model"
)

// BuildInfo is the build metadata printed by the version command.
type BuildInfo struct {
	Version string
	Date    string
	Commit  string
}

// Root is the command tree together with the App its subcommands run
// against.
type Root struct {
	*cobra.Command
	app *App
}

// NewRootCmd creates the root command. The stored session is restored once
// before any subcommand runs. Callers must Close the Root after executing it.
func NewRootCmd(cfg *config.Config, log *logger.Logger, build BuildInfo) *Root {
	r := &Root{}

	r.Command = &cobra.Command{
		Use:           "inkdesk",
		Short:         "inkdesk: content platform dashboard",
		Long:          "inkdesk signs in to the content platform and moderates comments and author requests.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}

			app, err := NewApp(cmd.Context(), cfg, log, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			r.app = app
			app.restore(cmd.Context())
			return nil
		},
	}

	current := func() *App { return r.app }

	r.AddCommand(
		newLoginCmd(current),
		newLogoutCmd(current),
		newWhoamiCmd(current),
		newCommentsCmd(current),
		newRequestsCmd(current),
		newVersionCmd(build),
	)

	return r
}

// Close releases the App built by the last execution. Cobra skips post-run
// hooks when a command fails, so this runs for failed commands too.
func (r *Root) Close() {
	if r.app != nil {
		r.app.Close()
		r.app = nil
	}
}

func newVersionCmd(build BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, args []string) {
			printVersion(cmd.OutOrStdout(), build)
		},
	}
}

func printVersion(w io.Writer, build BuildInfo) {
	tmpl := `Build version: %s
Build date: %s
Build commit: %s
`
	fmt.Fprintf(w, tmpl, build.Version, build.Date, build.Commit)
}

// Describe turns a command error into the text printed to the user.
// Errors worth retrying get a hint saying so.
func Describe(err error) string {
	switch {
	case errors.Is(err, model.ErrUnauthenticated):
		return "Not signed in. Run `inkdesk login` first."
	case errors.Is(err, model.ErrForbidden):
		return "This action requires an admin account."
	case errors.Is(err, model.ErrItemNotFound):
		return "No such item."
	}

	if failure.Classify(err).Retryable() {
		return err.Error() + "\nTry again."
	}
	return err.Error()
}
