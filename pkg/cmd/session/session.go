// Package session holds the commands to manage sessions stored in the database.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/mpapenbr/tyre-strategy/log"
	"github.com/mpapenbr/tyre-strategy/pkg/cmd/cmdutil"
	"github.com/mpapenbr/tyre-strategy/pkg/model"
	"github.com/mpapenbr/tyre-strategy/pkg/provider"
	"github.com/mpapenbr/tyre-strategy/pkg/service"
)

func NewSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "manage sessions stored in the database",
	}
	cmd.AddCommand(newImportCmd(), newListCmd(), newDeleteCmd())
	return cmd
}

func withService(ctx context.Context, fn func(s *service.SessionService) error) error {
	pool, err := cmdutil.ConnectDB(ctx, false)
	if err != nil {
		return err
	}
	defer pool.Close()
	return fn(service.NewSessionService(pool))
}

func newImportCmd() *cobra.Command {
	var (
		key     provider.SessionKey
		replace bool
	)
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "imports a csv or json lap export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := key.Validate(); err != nil {
				return err
			}
			jsonOpts, err := cmdutil.JSONOptions()
			if err != nil {
				return err
			}
			laps, err := provider.ReadFile(args[0], jsonOpts)
			if err != nil {
				return err
			}
			log.Debug("read lap file",
				log.String("file", args[0]),
				log.Int("records", len(laps)))
			return withService(cmd.Context(), func(s *service.SessionService) error {
				item, err := s.Import(cmd.Context(), key, laps, replace)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %s as %s (%d laps)\n",
					key, item.ID, item.NumLaps)
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.IntVar(&key.Year, "year", 0, "season of the session")
	f.StringVar(&key.Event, "event", "", "event name")
	f.StringVar(&key.Session, "session", "R", "session type")
	f.BoolVar(&replace, "replace", false, "replace an existing session with the same key")
	return cmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "lists the stored sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), func(s *service.SessionService) error {
				items, err := s.List(cmd.Context())
				if err != nil {
					return err
				}
				t := tablewriter.NewWriter(cmd.OutOrStdout())
				t.SetHeader([]string{"ID", "Year", "Event", "Session", "Laps", "Imported"})
				t.SetAutoFormatHeaders(false)
				t.AppendBulk(lo.Map(items, func(item *model.DbSession, _ int) []string {
					return []string{
						item.ID.String(),
						fmt.Sprint(item.Year),
						item.Event,
						item.SessionType,
						fmt.Sprint(item.NumLaps),
						item.ImportedAt.Local().Format(time.DateTime),
					}
				}))
				t.Render()
				return nil
			})
		},
	}
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "deletes a session with its laps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.FromString(args[0])
			if err != nil {
				return model.ValidationError("invalid session id %q", args[0])
			}
			return withService(cmd.Context(), func(s *service.SessionService) error {
				ok, err := s.Delete(cmd.Context(), id)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("%w: %s", provider.ErrNotAvailable, id)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id)
				return nil
			})
		},
	}
}
