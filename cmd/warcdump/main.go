// Command warcdump prints the tweets captured in WARC files as JSON.
// The default output is a JSON array on stdout; with more than one
// input file it becomes an array of per-file objects. -l switches to
// one JSON object per line.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"syscall"

	"github.com/joho/godotenv"

	"rethread/internal/adapters/archive"
	"rethread/internal/adapters/output"
	"rethread/internal/domain"
	"rethread/internal/usecases"
	"rethread/pkg/log"
	"rethread/pkg/log/transporters"
)

func main() {
	var (
		lines   = flag.Bool("l", false, "write one JSON object per line instead of an array")
		quiet   = flag.Bool("quiet", false, "log warnings and errors only")
		verbose = flag.Bool("verbose", false, "log at debug level")
		debug   = flag.Bool("debug", false, "log at trace level")
	)
	flag.Parse()
	_ = godotenv.Load()

	logger := log.New(log.FromVerbosity(log.Info, *quiet, *verbose, *debug), transporters.NewText())
	log.SetDefault(logger)
	defer logger.Close()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: warcdump [-l] <archive.warc> [archive.warc ...]")
		os.Exit(2)
	}

	if err := run(flag.Args(), *lines); err != nil {
		// A closed pipe downstream (head, jq -e) means the consumer
		// has everything it wanted.
		if errors.Is(err, syscall.EPIPE) {
			return
		}
		log.GlobalError("dump failed", "error", err.Error())
		logger.Close()
		os.Exit(1)
	}
}

// fileDump is one input file's worth of payloads in the array output.
type fileDump struct {
	Path   string            `json:"path"`
	Tweets []json.RawMessage `json:"tweets"`
}

func run(paths []string, lines bool) error {
	scan := usecases.NewScanArchiveUseCase()

	var jl *output.JSONL
	if lines {
		jl = output.NewJSONL(os.Stdout)
	}

	dumps := make([]fileDump, 0, len(paths))
	var totals domain.ScanStats

	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return err
		}

		dump := fileDump{Path: path, Tweets: []json.RawMessage{}}
		it := archive.NewIterator(f)
		stats, err := scan.Execute(context.Background(), it, func(tweet *domain.Tweet) error {
			if lines {
				return jl.WriteTweet(tweet)
			}
			value, err := output.TweetValue(tweet)
			if err != nil {
				return err
			}
			dump.Tweets = append(dump.Tweets, value)
			return nil
		})
		f.Close()
		totals.Add(stats)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		dumps = append(dumps, dump)
	}

	if !lines {
		// A single input dumps the bare payload array, matching what
		// a pipeline around one file expects.
		var v any = dumps
		if len(dumps) == 1 {
			v = dumps[0].Tweets
		}
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		data = append(data, '\n')
		if _, err := os.Stdout.Write(data); err != nil {
			return err
		}
	}

	log.GlobalInfo("dump finished",
		"files", len(paths),
		"tweets", totals.Tweets,
		"skipped", totals.Skipped,
		"empties", totals.Empties)
	return nil
}
