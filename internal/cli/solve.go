package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/alexanderramin/plenum/internal/cli/formatter"
	"github.com/alexanderramin/plenum/internal/config"
	"github.com/alexanderramin/plenum/internal/db"
	"github.com/alexanderramin/plenum/internal/domain"
	"github.com/alexanderramin/plenum/internal/importer"
	"github.com/alexanderramin/plenum/internal/report"
	"github.com/alexanderramin/plenum/internal/scheduler"
	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const genStartLayout = "2006-01-02 15:04"

func newSolveCmd() *cobra.Command {
	var (
		inputPath   string
		prevPaths   []string
		genStartStr string
		outPath     string
	)

	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Solve an instance and print the schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(cmd.Context(), inputPath, prevPaths, genStartStr, outPath)
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "input workbook (SQLite)")
	cmd.Flags().StringArrayVar(&prevPaths, "prev", nil, "previous result workbooks to treat as fixed (repeatable)")
	cmd.Flags().StringVar(&genStartStr, "generation-start", "", `generation start ("YYYY-MM-DD HH:MM", prompted when omitted on a terminal)`)
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output workbook to write the report into")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func runSolve(ctx context.Context, inputPath string, prevPaths []string, genStartStr, outPath string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	loc, err := time.LoadLocation(cfg.TimezoneName)
	if err != nil {
		return fmt.Errorf("loading timezone %q: %w", cfg.TimezoneName, err)
	}
	now := time.Now().In(loc)

	if genStartStr == "" {
		genStartStr, err = promptGenerationStart(now)
		if err != nil {
			return err
		}
	}
	genStart, err := time.ParseInLocation(genStartLayout, genStartStr, loc)
	if err != nil {
		return fmt.Errorf("parsing --generation-start: %w", err)
	}
	if err := importer.ValidateGenerationStart(now, genStart); err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	bundle, err := loadBundle(ctx, inputPath, prevPaths, genStart)
	if err != nil {
		return err
	}
	if err := validateBundle(bundle, cfg); err != nil {
		return err
	}

	result := solveBundle(ctx, cfg, bundle)
	fmt.Println(formatter.FormatStatus(result))
	if !result.Feasible {
		return &ExitError{Code: 2, Err: errors.New("no feasible schedule")}
	}

	grid := domain.NewGrid(cfg.DayStartHour, cfg.SlotsPerDay)
	tables := report.Build(bundle, result, cfg, grid)
	fmt.Println()
	fmt.Println(formatter.FormatMeetingTable(tables))
	fmt.Println(formatter.FormatTeamSummary(tables))
	fmt.Println(formatter.FormatPersonSummary(tables))

	if outPath != "" {
		outDB, err := db.OpenDB(outPath)
		if err != nil {
			return fmt.Errorf("opening output workbook: %w", err)
		}
		defer outDB.Close()
		if err := report.Store(ctx, outDB, tables); err != nil {
			return err
		}
		log.Info().Str("path", outPath).Msg("report written")
	}
	return nil
}

func loadBundle(ctx context.Context, inputPath string, prevPaths []string, genStart time.Time) (domain.Bundle, error) {
	database, err := db.OpenDB(inputPath)
	if err != nil {
		return domain.Bundle{}, fmt.Errorf("opening input workbook: %w", err)
	}
	defer database.Close()

	bundle, err := importer.ReadBundle(ctx, database, genStart)
	if err != nil {
		return domain.Bundle{}, err
	}
	for _, prev := range prevPaths {
		prevDB, err := db.OpenDB(prev)
		if err != nil {
			return domain.Bundle{}, fmt.Errorf("opening previous result %s: %w", prev, err)
		}
		err = importer.ReadPreviousResults(ctx, prevDB, &bundle)
		prevDB.Close()
		if err != nil {
			return domain.Bundle{}, err
		}
	}

	log.Debug().
		Int("persons", len(bundle.Persons)).
		Int("teams", len(bundle.Teams)).
		Int("fixed_meetings", len(bundle.FixedMeetings)).
		Msg("bundle loaded")
	return bundle, nil
}

func validateBundle(bundle domain.Bundle, cfg config.Config) error {
	warnings, errs := importer.ValidateBundle(bundle, cfg.MeetingSlots)
	for _, w := range warnings {
		log.Warn().Msg(w.Message)
	}
	if len(errs) > 0 {
		for _, err := range errs {
			log.Error().Msg(err.Error())
		}
		return &ExitError{Code: 1, Err: fmt.Errorf("input failed validation with %d errors", len(errs))}
	}
	return nil
}

func solveBundle(ctx context.Context, cfg config.Config, bundle domain.Bundle) domain.SolveResult {
	var obs scheduler.SolveObserver = scheduler.NoopSolveObserver{}
	if envEnabled("PLENUM_LOG_SOLVES") {
		obs = scheduler.NewLogSolveObserver(os.Stderr)
	}
	eng := scheduler.New(cfg, scheduler.WithObserver(obs))

	if interactive() {
		stop := formatter.StartSpinner("solving")
		defer stop()
	}
	return eng.Solve(ctx, bundle)
}

// promptGenerationStart collects the generation start interactively. Outside
// a terminal the flag is mandatory.
func promptGenerationStart(now time.Time) (string, error) {
	if !interactive() {
		return "", errors.New("--generation-start is required when not running interactively")
	}

	value := now.Format(genStartLayout)
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Generation start (YYYY-MM-DD HH:MM)").
			Placeholder(now.Format(genStartLayout)).
			Value(&value).
			Validate(func(s string) error {
				_, err := time.Parse(genStartLayout, s)
				return err
			}),
	))
	if err := form.Run(); err != nil {
		return "", err
	}
	return value, nil
}

func interactive() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}
