package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"github.com/kubelab/log-aggregator/internal/adapter"
	"github.com/kubelab/log-aggregator/internal/envconf"
	"github.com/kubelab/log-aggregator/internal/logger"
	"github.com/kubelab/log-aggregator/internal/repository"
	"github.com/kubelab/log-aggregator/pkg/httpclient"
	"github.com/kubelab/log-aggregator/pkg/logstore"
	"github.com/kubelab/log-aggregator/pkg/logstore/memorystore"
	"github.com/kubelab/log-aggregator/pkg/retention"
	"github.com/kubelab/log-aggregator/pkg/summary"
	flag "github.com/spf13/pflag"
)

const usage = `usage: log-aggregator-cli <command> [flags]

commands:
  logs      print the formatted logs of a workload
  sweep     delete alert contexts older than the retention period
  complete  delete the alert contexts that fired on a day
  push      append lines read from stdin to the local file log store
`

func main() {
	_ = godotenv.Load()

	envDecoderConf := &envconf.EnvDecoderConf{}

	if err := envdecode.StrictDecode(envDecoderConf); err != nil {
		logger.NewErrorConsole(true).Fatal().Caller().Msgf("could not decode env conf: %v", err)
		os.Exit(1)
	}

	l := logger.NewErrorConsole(envDecoderConf.Debug)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	var err error

	switch os.Args[1] {
	case "logs":
		err = runLogs(ctx, envDecoderConf, os.Args[2:])
	case "sweep":
		err = runSweep(envDecoderConf, l, os.Args[2:])
	case "complete":
		err = runComplete(envDecoderConf, l, os.Args[2:])
	case "push":
		err = runPush(envDecoderConf, os.Args[2:])
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		l.Fatal().Caller().Msgf("%s failed: %v", os.Args[1], err)
	}
}

func runLogs(ctx context.Context, envDecoderConf *envconf.EnvDecoderConf, args []string) error {
	fs := flag.NewFlagSet("logs", flag.ExitOnError)

	var namespace, pod, container string
	var since time.Duration
	var limit uint32

	fs.StringVarP(&namespace, "namespace", "n", "", "namespace of the workload")
	fs.StringVarP(&pod, "pod", "p", "", "pod name or name prefix")
	fs.StringVarP(&container, "container", "c", "", "container name")
	fs.DurationVar(&since, "since", 30*time.Minute, "how far back to read")
	fs.Uint32Var(&limit, "limit", 100, "maximum number of lines")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if namespace == "" || pod == "" {
		return fmt.Errorf("--namespace and --pod are required")
	}

	store, err := adapter.NewLogStore(&envDecoderConf.LogStoreConf, httpclient.NewClient(&envDecoderConf.HTTPClientConf))

	if err != nil {
		return err
	}

	end := time.Now().UTC()

	logs, err := logstore.NewFetcher(store).FetchLogs(ctx, logstore.LogQuery{
		Namespace: namespace,
		Workload:  pod,
		Container: container,
		Start:     end.Add(-since),
		End:       end,
		Limit:     limit,
	})

	if err != nil {
		return err
	}

	fmt.Println(logs)

	return nil
}

func openRepository(envDecoderConf *envconf.EnvDecoderConf) (*repository.Repository, error) {
	db, err := adapter.New(&envDecoderConf.DBConf)

	if err != nil {
		return nil, fmt.Errorf("could not create database connection: %w", err)
	}

	if err := repository.AutoMigrate(db, false); err != nil {
		return nil, fmt.Errorf("auto migration failed: %w", err)
	}

	return repository.NewRepository(db), nil
}

func runSweep(envDecoderConf *envconf.EnvDecoderConf, l *logger.Logger, args []string) error {
	fs := flag.NewFlagSet("sweep", flag.ExitOnError)

	retentionDays := fs.Uint("retention-days", envDecoderConf.RetentionConf.RetentionDays, "delete alert contexts created more than this many days ago")

	if err := fs.Parse(args); err != nil {
		return err
	}

	repo, err := openRepository(envDecoderConf)

	if err != nil {
		return err
	}

	deleted, err := retention.NewSweeper(repo, *retentionDays, l).PurgeExpired()

	if err != nil {
		return err
	}

	fmt.Printf("deleted %d alert contexts\n", deleted)

	return nil
}

func runComplete(envDecoderConf *envconf.EnvDecoderConf, l *logger.Logger, args []string) error {
	fs := flag.NewFlagSet("complete", flag.ExitOnError)

	dateFlag := fs.String("date", "", "day to complete as YYYY-MM-DD (default today)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	date, err := summary.ParseDate(*dateFlag, time.Now())

	if err != nil {
		return err
	}

	repo, err := openRepository(envDecoderConf)

	if err != nil {
		return err
	}

	deleted, err := retention.NewSweeper(repo, envDecoderConf.RetentionConf.RetentionDays, l).PurgeDay(date)

	if err != nil {
		return err
	}

	fmt.Printf("deleted %d alert contexts fired on %s\n", deleted, date.Format("2006-01-02"))

	return nil
}

func runPush(envDecoderConf *envconf.EnvDecoderConf, args []string) error {
	fs := flag.NewFlagSet("push", flag.ExitOnError)

	var namespace, pod, container string

	fs.StringVarP(&namespace, "namespace", "n", "", "namespace label of the lines")
	fs.StringVarP(&pod, "pod", "p", "", "pod label of the lines")
	fs.StringVarP(&container, "container", "c", "", "container label of the lines")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if namespace == "" || pod == "" {
		return fmt.Errorf("--namespace and --pod are required")
	}

	store, err := adapter.NewMemoryStore(&envDecoderConf.LogStoreConf)

	if err != nil {
		return err
	}

	labels := map[string]string{"namespace": namespace, "pod": pod}

	if container != "" {
		labels["container"] = container
	}

	pushed, err := pushLines(store, labels, os.Stdin, time.Now)

	if err != nil {
		return err
	}

	fmt.Printf("pushed %d lines\n", pushed)

	return nil
}

// pushLines appends every non-empty line of r to store, stamped with now at
// the time it is read.
func pushLines(store *memorystore.MemoryStore, labels map[string]string, r io.Reader, now func() time.Time) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var pushed int

	for scanner.Scan() {
		line := scanner.Text()

		if line == "" {
			continue
		}

		if err := store.Push(labels, line, now()); err != nil {
			return pushed, err
		}

		pushed++
	}

	if err := scanner.Err(); err != nil {
		return pushed, fmt.Errorf("error reading lines: %w", err)
	}

	return pushed, nil
}
