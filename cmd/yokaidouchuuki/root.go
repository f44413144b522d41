// Package main is the yokaidouchuuki CLI: it parses flags into a search
// configuration, selects a hard-coded target, builds the backward table and
// DP1/DP2 tensors (optionally from a persisted cache), and runs the
// meet-in-the-middle DFS, printing each recovered password to stdout and
// timestamped progress to stderr.
package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tanzaku/yokaidouchuuki/alphabet"
	"github.com/tanzaku/yokaidouchuuki/backward"
	"github.com/tanzaku/yokaidouchuuki/dictionary"
	"github.com/tanzaku/yokaidouchuuki/progress"
	"github.com/tanzaku/yokaidouchuuki/search"
	"github.com/tanzaku/yokaidouchuuki/target"
)

// flags holds the raw --flag values cobra/pflag populate, before
// validation turns them into a runConfig.
type flags struct {
	prefix          string
	suffix          string
	verbose         bool
	ignoreCache     bool
	dictionaryPath  string
	naturalJapanese bool
	cacheDir        string
	targetName      string
	workers         int
}

func newRootCmd() *cobra.Command {
	f := &flags{}

	cmd := &cobra.Command{
		Use:   "yokaidouchuuki",
		Short: "Recover passwords matching a hard-coded checksum target",
		Long: `yokaidouchuuki inverts the game's password checksum: given a hard-coded
target hash and length, it enumerates every password that reproduces it.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(f)
		},
	}

	flagSet := cmd.Flags()
	flagSet.SortFlags = false
	flagSet.StringVar(&f.prefix, "prefix", "", "require the password to start with this character sequence")
	flagSet.StringVar(&f.suffix, "suffix", "", "require the password to end with this character sequence")
	flagSet.BoolVar(&f.verbose, "verbose", false, "emit debug-level progress to stderr")
	flagSet.BoolVar(&f.ignoreCache, "ignore-cache", false, "rebuild DP tensors even if a cache entry exists")
	flagSet.StringVar(&f.dictionaryPath, "dictionary", "", "restrict passwords to concatenations of words from this file")
	flagSet.BoolVar(&f.naturalJapanese, "natural-japanese", false, "reject passwords the Japanese-plausibility heuristic flags")
	flagSet.StringVar(&f.cacheDir, "cache-dir", "", "directory to persist/read DP tensors (disabled if empty)")
	flagSet.StringVar(&f.targetName, "target", "kid", fmt.Sprintf("target name: one of %s", strings.Join(targetNames(), ", ")))
	flagSet.IntVar(&f.workers, "workers", 0, "worker count for the DFS (0 = runtime.GOMAXPROCS)")

	return cmd
}

// backwardDepth picks the backward-table suffix length for t: normally
// backward.DefaultDepth, but capped below t.Len so a short target (e.g.
// the default "kid", 3 characters) still leaves a non-negative number of
// forward DFS levels for DP1/DP2 to cover.
func backwardDepth(t target.Target) int {
	if backward.DefaultDepth > t.Len-1 {
		if t.Len-1 < 0 {
			return 0
		}
		return t.Len - 1
	}
	return backward.DefaultDepth
}

func targetNames() []string {
	names := make([]string, 0, len(target.Named))
	for name := range target.Named {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// runConfig is the validated, immutable form of flags, built once at
// startup and never mutated afterward.
type runConfig struct {
	target        target.Target
	backwardDepth int
	prefix        []byte
	suffix        []byte
	opts          search.Options
}

// parseConfig validates f into a runConfig, returning a configuration error
// (§7) naming the first problem found.
func parseConfig(f *flags, reporter *progress.Reporter) (*runConfig, error) {
	t, ok := target.Named[strings.ToLower(f.targetName)]
	if !ok {
		return nil, fmt.Errorf("config: unknown target %q (want one of %s)", f.targetName, strings.Join(targetNames(), ", "))
	}

	prefix, err := alphabet.EncodeString(f.prefix)
	if err != nil {
		return nil, fmt.Errorf("config: --prefix: %w", err)
	}
	suffix, err := alphabet.EncodeString(f.suffix)
	if err != nil {
		return nil, fmt.Errorf("config: --suffix: %w", err)
	}
	if len(prefix)+len(suffix) > t.Len {
		return nil, fmt.Errorf("config: --prefix and --suffix together (%d chars) exceed target length %d", len(prefix)+len(suffix), t.Len)
	}

	var dict *dictionary.Constraint
	if f.dictionaryPath != "" {
		file, err := os.Open(f.dictionaryPath)
		if err != nil {
			return nil, fmt.Errorf("config: --dictionary: %w", err)
		}
		defer file.Close()
		dict, err = dictionary.Load(file)
		if err != nil {
			return nil, fmt.Errorf("config: --dictionary: %w", err)
		}
	}

	return &runConfig{
		target:        t,
		backwardDepth: backwardDepth(t),
		prefix:        prefix,
		suffix:        suffix,
		opts: search.Options{
			Dictionary:  dict,
			Heuristic:   f.naturalJapanese,
			Workers:     f.workers,
			Reporter:    reporter,
			CacheDir:    f.cacheDir,
			IgnoreCache: f.ignoreCache,
		},
	}, nil
}

// allowedFunc returns the search.AllowedFunc enforcing cfg's prefix/suffix
// constraints, or nil if neither was supplied.
func (cfg *runConfig) allowedFunc() search.AllowedFunc {
	if len(cfg.prefix) == 0 && len(cfg.suffix) == 0 {
		return nil
	}
	suffixStart := cfg.target.Len - len(cfg.suffix)
	return func(position int, code byte) bool {
		if position < len(cfg.prefix) {
			return code == cfg.prefix[position]
		}
		if position >= suffixStart {
			return code == cfg.suffix[position-suffixStart]
		}
		return true
	}
}

func run(f *flags) error {
	reporter := progress.New(f.verbose)

	cfg, err := parseConfig(f, reporter)
	if err != nil {
		return err
	}
	cfg.opts.Allowed = cfg.allowedFunc()

	eng := search.NewEngine(cfg.target, cfg.backwardDepth, cfg.opts)

	out := os.Stdout
	found := 0
	err = eng.Run(cmdContext(), func(password string) {
		fmt.Fprintln(out, password)
		found++
		reporter.PasswordFound(password)
	})
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	reporter.Debugf("search complete: %d password(s) found", found)
	return nil
}
