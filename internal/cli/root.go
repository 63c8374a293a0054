package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/mamadbah2/bizdesk/internal/domain/models"
	"github.com/mamadbah2/bizdesk/internal/service/logs"
	"github.com/mamadbah2/bizdesk/internal/service/users"
)

// DigestGenerator builds the weekly worksheet digest.
type DigestGenerator interface {
	GenerateWeeklyDigest(ctx context.Context, now time.Time) (models.WeeklyDigest, error)
}

// DigestRunner delivers the weekly digest to its configured sinks.
type DigestRunner interface {
	RunWeeklyDigest(ctx context.Context) error
}

// App holds references to the services used by the operator commands.
type App struct {
	Users   users.UserService
	Logs    logs.LogService
	Digests DigestGenerator
	Runner  DigestRunner
	Now     func() time.Time
}

// NewRootCmd creates the top-level "bizdeskctl" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	if app.Now == nil {
		app.Now = time.Now
	}

	root := &cobra.Command{
		Use:           "bizdeskctl",
		Short:         "Operator tooling for the bizdesk back office",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newUserCmd(app),
		newDigestCmd(app),
		newLogsCmd(app),
	)

	return root
}

// operator is the identity commands act as; it sees every worker's logs.
var operator = models.Caller{ID: "bizdeskctl", AccessLevel: models.AccessAdmin}
