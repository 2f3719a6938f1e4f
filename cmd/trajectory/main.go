// Command trajectory turns raw per-frame detections into clean per-class trajectories.
//
//	trajectory process   -in detections.csv -out processed.csv [-threshold 500]
//	trajectory reprocess -in detections.csv -out processed.csv -class 3 -start 120 [-fps 30] [-threshold 50]
//	trajectory export    -db tracks.db -out processed.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/marmor123/mice-tracking/config"
	"github.com/marmor123/mice-tracking/csvio"
	"github.com/marmor123/mice-tracking/logger"
	"github.com/marmor123/mice-tracking/storage/csvstore"
	"github.com/marmor123/mice-tracking/storage/sqlite"
	"github.com/marmor123/mice-tracking/trajectory"
)

const usage = `usage: trajectory <command> [flags]

commands:
  process     build trajectories for every class
  reprocess   rebuild one class from a start frame and splice it into stored output
  export      dump a sqlite store as CSV
`

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return errors.New("missing command")
	}
	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}
	switch args[0] {
	case "process":
		return runProcess(ctx, cfg, args[1:], stderr)
	case "reprocess":
		return runReprocess(ctx, cfg, args[1:], stderr)
	case "export":
		return runExport(ctx, cfg, args[1:], stderr)
	case "-h", "-help", "--help", "help":
		fmt.Fprint(stderr, usage)
		return nil
	default:
		fmt.Fprint(stderr, usage)
		return errors.Errorf("unknown command %q", args[0])
	}
}

// commonFlags are shared by process and reprocess
type commonFlags struct {
	in        *string
	out       *string
	threshold *float64
	subjects  *int
	workers   *int
	store     *string
	dbPath    *string
	logLevel  *string
}

func registerCommon(fs *flag.FlagSet, cfg *config.Config) commonFlags {
	return commonFlags{
		in:        fs.String("in", "", "Input detections CSV (Frame, Class, X, Y)"),
		out:       fs.String("out", "", "Processed CSV (csv store)"),
		threshold: fs.Float64("threshold", cfg.Threshold, "Per-axis jump threshold in pixels"),
		subjects:  fs.Int("subjects", cfg.Subjects, "Number of tracked subjects"),
		workers:   fs.Int("workers", cfg.Workers, "Classes processed concurrently"),
		store:     fs.String("store", cfg.Store, "Output store: csv or sqlite"),
		dbPath:    fs.String("db", cfg.DBPath, "SQLite database path (sqlite store)"),
		logLevel:  fs.String("log-level", cfg.LogLevel, "Log level"),
	}
}

func (f commonFlags) apply(cfg *config.Config) error {
	cfg.Threshold = *f.threshold
	cfg.Subjects = *f.subjects
	cfg.Workers = *f.workers
	cfg.Store = *f.store
	cfg.DBPath = *f.dbPath
	cfg.LogLevel = *f.logLevel
	if *f.in == "" {
		return errors.New("-in is required")
	}
	if cfg.Store == config.StoreCSV && *f.out == "" {
		return errors.New("-out is required for the csv store")
	}
	return cfg.Validate()
}

func newLogger(cfg *config.Config, stderr io.Writer) (*logrus.Logger, error) {
	return logger.New(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile, Output: stderr})
}

// openStore returns the configured store and a function releasing it
func openStore(cfg *config.Config, out string, log logrus.FieldLogger) (trajectory.RecordStore, func(), error) {
	switch cfg.Store {
	case config.StoreSQLite:
		store, err := sqlite.Open(cfg.DBPath, log)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	default:
		return csvstore.New(out, log), func() {}, nil
	}
}

func readDetections(path string) ([]trajectory.Detection, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't open %s", path)
	}
	defer file.Close()
	detections, err := csvio.ReadDetections(file)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't read detections from %s", path)
	}
	return detections, nil
}

func runProcess(ctx context.Context, cfg *config.Config, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("process", flag.ContinueOnError)
	fs.SetOutput(stderr)
	common := registerCommon(fs, cfg)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := common.apply(cfg); err != nil {
		return err
	}
	log, err := newLogger(cfg, stderr)
	if err != nil {
		return err
	}

	detections, err := readDetections(*common.in)
	if err != nil {
		return err
	}
	store, release, err := openStore(cfg, *common.out, log)
	if err != nil {
		return err
	}
	defer release()

	engine := trajectory.NewEngine(cfg.Subjects, trajectory.WithWorkers(cfg.Workers), trajectory.WithLogger(log))
	report, err := engine.ProcessStore(ctx, store, detections, cfg.Threshold)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"run_id":     report.RunID.String(),
		"duplicates": report.DuplicatesDiscarded,
		"output":     report.OutputRecords,
	}).Info("done")
	return nil
}

func runReprocess(ctx context.Context, cfg *config.Config, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("reprocess", flag.ContinueOnError)
	fs.SetOutput(stderr)
	common := registerCommon(fs, cfg)
	classID := fs.Int("class", -1, "Class id to reprocess")
	startFrame := fs.Int("start", 0, "First frame to reprocess")
	fps := fs.Float64("fps", cfg.FPS, "Video frame rate")
	graceSeconds := fs.Float64("grace-seconds", cfg.GraceSeconds, "Seconds after -start without jump clamping")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg.FPS = *fps
	cfg.GraceSeconds = *graceSeconds
	if err := common.apply(cfg); err != nil {
		return err
	}
	log, err := newLogger(cfg, stderr)
	if err != nil {
		return err
	}

	req := trajectory.ReprocessRequest{
		StartFrame:  *startFrame,
		GraceFrames: cfg.GraceFrames(),
		Threshold:   cfg.Threshold,
	}
	if *classID >= 0 {
		req.ClassID = trajectory.SelectClass(*classID)
	}

	detections, err := readDetections(*common.in)
	if err != nil {
		return err
	}
	store, release, err := openStore(cfg, *common.out, log)
	if err != nil {
		return err
	}
	defer release()

	engine := trajectory.NewEngine(cfg.Subjects, trajectory.WithWorkers(cfg.Workers), trajectory.WithLogger(log))
	report, err := engine.ReprocessStore(ctx, store, detections, req)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"run_id": report.RunID.String(),
		"class":  *classID,
		"start":  *startFrame,
		"output": report.OutputRecords,
	}).Info("done")
	return nil
}

func runExport(ctx context.Context, cfg *config.Config, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(stderr)
	dbPath := fs.String("db", cfg.DBPath, "SQLite database path")
	out := fs.String("out", "", "Processed CSV to write")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *out == "" {
		return errors.New("-out is required")
	}
	log, err := newLogger(cfg, stderr)
	if err != nil {
		return err
	}

	store, err := sqlite.Open(*dbPath, log)
	if err != nil {
		return err
	}
	defer store.Close()
	records, err := store.Load(ctx)
	if err != nil {
		return err
	}
	runs, err := store.Runs(ctx)
	if err != nil {
		return err
	}
	run := trajectory.Run{Kind: trajectory.RunKindFull, ClassID: -1}
	if len(runs) > 0 {
		run = runs[len(runs)-1]
	}
	return csvstore.New(*out, log).Save(ctx, run, records)
}
