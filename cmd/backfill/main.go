package main

import (
	"delegatecomp/cmd"
	"delegatecomp/internal/domain"
	"delegatecomp/internal/logger"
	"delegatecomp/internal/service"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	flagDao         string
	flagAsOf        string
	flagDate        string
	flagOnlyOptedIn bool
	flagCsvDir      string
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "backfill",
		Short: "admin tooling for the delegate compensation program",
	}
	rootCmd.PersistentFlags().StringVar(&flagDao, "dao", "", "dao identifier")
	rootCmd.PersistentFlags().StringVar(&flagAsOf, "as-of", "", "history cutoff date (YYYY-MM-DD, default today)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "recompute every month of a dao's compensation history",
		RunE:  runBackfill,
	}
	runCmd.Flags().BoolVar(&flagOnlyOptedIn, "only-opted-in", false, "include only opted-in delegates")
	runCmd.Flags().StringVar(&flagCsvDir, "csv-dir", "", "write a per-month csv report into this directory")

	delegatesCmd := &cobra.Command{
		Use:   "delegates",
		Short: "list every delegate address that ever appeared in the program",
		RunE:  runDelegates,
	}

	resolveCmd := &cobra.Command{
		Use:   "resolve-version",
		Short: "show which formula version applies on a date",
		RunE:  runResolveVersion,
	}
	resolveCmd.Flags().StringVar(&flagDate, "date", "", "target date (YYYY-MM-DD)")

	rootCmd.AddCommand(runCmd, delegatesCmd, resolveCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func parseAsOf() (time.Time, error) {
	if flagAsOf == "" {
		return time.Now().UTC(), nil
	}
	return time.Parse(time.DateOnly, flagAsOf)
}

func runBackfill(c *cobra.Command, args []string) error {
	if flagDao == "" {
		return fmt.Errorf("--dao is required")
	}
	asOf, err := parseAsOf()
	if err != nil {
		return err
	}

	handler, err := cmd.InitializeDependencies()
	if err != nil {
		return err
	}

	results, err := handler.DelegateService.BackfillDAO(c.Context(), flagDao, asOf, service.GetDelegatesOptions{
		OnlyOptedIn: flagOnlyOptedIn,
	})
	if err != nil {
		return err
	}

	months := make([]domain.MonthKey, 0, len(results))
	for month := range results {
		months = append(months, month)
	}
	sort.Slice(months, func(i, j int) bool {
		return months[i].Before(months[j])
	})

	for _, month := range months {
		result := results[month]
		logger.Info(
			"%s %s: version=%s status=%s delegates=%d skipped=%d",
			result.DAOID, month, result.Version, result.Status, len(result.Delegates), result.SkippedRecords,
		)
		if flagCsvDir != "" && result.Status == domain.MonthComputed {
			if err := writeMonthCsv(flagCsvDir, result); err != nil {
				return err
			}
		}
	}

	return nil
}

type compensationCsvRow struct {
	Delegate           string  `csv:"delegate"`
	Rank               string  `csv:"rank"`
	TotalParticipation float64 `csv:"totalParticipation"`
	ParticipationRate  float64 `csv:"participationRatePercent"`
	Payment            string  `csv:"payment"`
	Version            string  `csv:"version"`
	OptedIn            bool    `csv:"optedIn"`
}

func writeMonthCsv(dir string, result domain.MonthResult) error {
	rows := []*compensationCsvRow{}
	for _, delegate := range result.Delegates {
		rank := ""
		if delegate.Rank != nil {
			rank = strconv.Itoa(*delegate.Rank)
		}
		rows = append(rows, &compensationCsvRow{
			Delegate:           delegate.Delegate,
			Rank:               rank,
			TotalParticipation: delegate.TotalParticipation,
			ParticipationRate:  delegate.ParticipationRate,
			Payment:            delegate.Payment.StringFixed(2),
			Version:            delegate.Version,
			OptedIn:            delegate.OptedIn,
		})
	}

	path := filepath.Join(dir, fmt.Sprintf("%s-%s.csv", result.DAOID, result.Month))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return gocsv.MarshalFile(&rows, f)
}

func runDelegates(c *cobra.Command, args []string) error {
	if flagDao == "" {
		return fmt.Errorf("--dao is required")
	}
	asOf, err := parseAsOf()
	if err != nil {
		return err
	}

	handler, err := cmd.InitializeDependencies()
	if err != nil {
		return err
	}

	delegates, err := handler.DelegateService.GetAllDelegates(c.Context(), flagDao, asOf)
	if err != nil {
		return err
	}

	for _, address := range delegates {
		fmt.Println(address)
	}
	logger.Info("%d unique delegates in %s", len(delegates), flagDao)

	return nil
}

func runResolveVersion(c *cobra.Command, args []string) error {
	if flagDao == "" || flagDate == "" {
		return fmt.Errorf("--dao and --date are required")
	}
	date, err := time.Parse(time.DateOnly, flagDate)
	if err != nil {
		return err
	}

	handler, err := cmd.InitializeDependencies()
	if err != nil {
		return err
	}

	version, err := handler.VersionResolver.Resolve(flagDao, date)
	if err != nil {
		return err
	}

	fmt.Println(version)
	return nil
}
