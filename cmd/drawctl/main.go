// cmd/drawctl/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/codr1/proclubs/internal/draw"
)

// fixture is the offline draw input.
type fixture struct {
	Competition draw.Config `yaml:"competition"`
	Teams       []draw.Team `yaml:"teams"`
}

type output struct {
	Success bool          `yaml:"success"`
	Error   string        `yaml:"error,omitempty"`
	Pots    [][]draw.Team `yaml:"pots,omitempty"`
	Rounds  []roundOutput `yaml:"rounds"`
	Log     []string      `yaml:"log"`
}

type roundOutput struct {
	Round   string        `yaml:"round"`
	Matches []matchOutput `yaml:"matches"`
}

type matchOutput struct {
	Home string `yaml:"home"`
	Away string `yaml:"away"`
}

type options struct {
	seed     int64
	strategy string
	pots     int
	verbose  bool
}

func main() {
	var opts options
	flag.Int64Var(&opts.seed, "seed", 0, "Random seed (0 seeds from the clock)")
	flag.StringVar(&opts.strategy, "strategy", "greedy", "Pairing strategy: greedy or backtracking")
	flag.IntVar(&opts.pots, "pots", 0, "Number of seeding pots to report (0 disables)")
	flag.BoolVar(&opts.verbose, "v", false, "Mirror draw events to stderr")
	outPath := flag.String("out", "", "Write the schedule to this file instead of stdout")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] fixture.yaml\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	if opts.verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read fixture")
	}

	ok, err := runTo(context.Background(), data, opts, *outPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Draw failed to run")
	}
	if !ok {
		os.Exit(1)
	}
}

// runTo runs the draw and writes the result to outPath, or stdout when
// outPath is empty. The output file is closed before returning.
func runTo(ctx context.Context, data []byte, opts options, outPath string) (ok bool, err error) {
	if outPath == "" {
		return run(ctx, data, opts, os.Stdout)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return false, fmt.Errorf("create output file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close output file: %w", closeErr)
		}
	}()
	return run(ctx, data, opts, f)
}

// run draws the fixture and writes the YAML result to w. It reports whether
// the draw succeeded; err is reserved for unusable input.
func run(ctx context.Context, data []byte, opts options, w io.Writer) (bool, error) {
	var fx fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return false, fmt.Errorf("parse fixture: %w", err)
	}
	if len(fx.Teams) == 0 {
		return false, fmt.Errorf("fixture has no teams")
	}
	if fx.Competition.NumberOfTeams == 0 {
		fx.Competition.NumberOfTeams = len(fx.Teams)
	}

	roster := draw.NewStaticRoster(fx.Teams)
	engineOpts, err := draw.Settings{
		Strategy:  opts.strategy,
		Seed:      opts.seed,
		LogEvents: opts.verbose,
	}.Options()
	if err != nil {
		return false, err
	}
	engine, err := draw.NewEngine(roster, engineOpts...)
	if err != nil {
		return false, err
	}

	var out output
	if opts.pots > 0 {
		pots, err := draw.AssignPots(roster.Teams(), opts.pots)
		if err != nil {
			return false, fmt.Errorf("assign pots: %w", err)
		}
		out.Pots = pots
	}

	ctx = log.Logger.WithContext(ctx)
	result := engine.RunDraw(ctx, fx.Competition)
	out.Success = result.Success
	out.Error = result.Error
	out.Log = result.Log
	out.Rounds = groupRounds(result.Matches, roster.Teams())

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(out); err != nil {
		return false, fmt.Errorf("write schedule: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return false, fmt.Errorf("write schedule: %w", err)
	}
	return result.Success, nil
}

func groupRounds(matches []draw.Match, teams []draw.Team) []roundOutput {
	names := make(map[int64]string, len(teams))
	for _, team := range teams {
		names[team.ID] = team.Name
	}

	rounds := []roundOutput{}
	index := map[string]int{}
	for _, match := range matches {
		i, ok := index[match.RoundID]
		if !ok {
			i = len(rounds)
			index[match.RoundID] = i
			rounds = append(rounds, roundOutput{Round: match.RoundID})
		}
		rounds[i].Matches = append(rounds[i].Matches, matchOutput{
			Home: names[match.HomeTeamID],
			Away: names[match.AwayTeamID],
		})
	}
	return rounds
}
