package cli

import (
	"fmt"
	"time"

	"github.com/alexanderramin/plenum/internal/config"
	"github.com/alexanderramin/plenum/internal/db"
	"github.com/alexanderramin/plenum/internal/importer"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	var inputPath string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate an instance workbook without solving",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}

			database, err := db.OpenDB(inputPath)
			if err != nil {
				return fmt.Errorf("opening input workbook: %w", err)
			}
			defer database.Close()

			// The generation start does not matter for integrity checks.
			bundle, err := importer.ReadBundle(cmd.Context(), database, time.Now())
			if err != nil {
				return err
			}

			warnings, errs := importer.ValidateBundle(bundle, cfg.MeetingSlots)
			for _, w := range warnings {
				log.Warn().Msg(w.Message)
			}
			for _, err := range errs {
				log.Error().Msg(err.Error())
			}
			if len(errs) > 0 {
				return &ExitError{Code: 1, Err: fmt.Errorf("input failed validation with %d errors", len(errs))}
			}

			fmt.Printf("ok: %d persons, %d teams, %d fixed meetings, %d warnings\n",
				len(bundle.Persons), len(bundle.Teams), len(bundle.FixedMeetings), len(warnings))
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "input workbook (SQLite)")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
