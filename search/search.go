// Package search runs the meet-in-the-middle password recovery DFS: a
// forward depth-first search from the checksum's initial state, pruned at
// every ply by the DP1/DP2 reachability tensors and the target's fb upper
// bound, joined at the frontier against the backward table's suffixes.
//
// Ported from original_source/src/enumeration.rs. The DFS advances one ply
// at a time by evaluating all 42 alphabet characters in a single
// state.ForwardFanOut call (the original's forward_step_simd_u8x64 fan-out),
// explores a 5-character prefix to build an initial work list, groups that
// work list by its first two characters for progress reporting, and hands
// each group to a worker pool sized to GOMAXPROCS.
package search

import (
	"context"
	"runtime"
	"sort"
	"sync"

	"github.com/tanzaku/yokaidouchuuki/alphabet"
	"github.com/tanzaku/yokaidouchuuki/backward"
	"github.com/tanzaku/yokaidouchuuki/cache"
	"github.com/tanzaku/yokaidouchuuki/dictionary"
	"github.com/tanzaku/yokaidouchuuki/heuristic"
	"github.com/tanzaku/yokaidouchuuki/progress"
	"github.com/tanzaku/yokaidouchuuki/reach"
	"github.com/tanzaku/yokaidouchuuki/state"
	"github.com/tanzaku/yokaidouchuuki/target"
)

// prefixEnumerationDepth is the number of characters the search expands
// on a single goroutine before sharding work across the group, matching the
// original's fixed 5-character prefix enumeration.
const prefixEnumerationDepth = 5

// lanes is the fixed 64-wide batch of alphabet codes state.ForwardFanOut
// evaluates at each ply, padded with alphabet.NoCode.
var lanes = buildLanes()

func buildLanes() state.Lanes {
	var l state.Lanes
	for i := range l {
		l[i] = alphabet.NoCode
	}
	copy(l[:], alphabet.Codes[:])
	return l
}

// AllowedFunc restricts which character may appear at a given 0-indexed
// password position, used to implement CLI prefix/suffix constraints.
// A nil AllowedFunc places no restriction.
type AllowedFunc func(position int, code byte) bool

// Options configures an Engine's search behavior beyond the mandatory
// DP1/DP2/backward pruning.
type Options struct {
	Allowed    AllowedFunc
	Dictionary *dictionary.Constraint
	Heuristic  bool
	Workers    int
	Reporter   *progress.Reporter

	// CacheDir, if non-empty, is consulted for a previously persisted DP1/DP2
	// tensor before rebuilding one, and is written to after a rebuild.
	CacheDir string
	// IgnoreCache skips the CacheDir lookup (but still writes a fresh cache
	// file afterward), forcing a rebuild even when a cache entry exists.
	IgnoreCache bool
}

// Engine holds the precomputed pruning structures for one target and runs
// the DFS against them.
type Engine struct {
	target   target.Target
	backward *backward.Table
	dp1      *reach.Tensor
	dp2      *reach.Tensor
	opts     Options
}

// NewEngine builds the backward table and DP1/DP2 tensors for t, with the
// backward enumeration searching backwardDepth characters from the target.
func NewEngine(t target.Target, backwardDepth int, opts Options) *Engine {
	if opts.Reporter != nil {
		opts.Reporter.StageStarted("backward")
	}
	bw := backward.Build(t.State, backwardDepth, alphabet.Codes[:])
	if opts.Reporter != nil {
		opts.Reporter.StageFinished("backward", bw.Len())
		opts.Reporter.StageStarted("dp1")
	}

	dp1 := loadOrBuildTensor(opts, cache.Key{Kind: "dp1", Target: t.State, TargetLen: t.Len, BackwardDepth: backwardDepth},
		reach.DP1AxisWidth, t.Len-bw.Depth(), func() *reach.Tensor { return reach.BuildDP1(t.Len, bw) })
	if opts.Reporter != nil {
		opts.Reporter.StageFinished("dp1", dp1.MaxLen())
		opts.Reporter.StageStarted("dp2")
	}

	dp2 := loadOrBuildTensor(opts, cache.Key{Kind: "dp2", Target: t.State, TargetLen: t.Len, BackwardDepth: backwardDepth},
		reach.DP2AxisWidth, t.Len-bw.Depth(), func() *reach.Tensor { return reach.BuildDP2(t.Len, bw) })
	if opts.Reporter != nil {
		opts.Reporter.StageFinished("dp2", dp2.MaxLen())
	}

	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}

	return &Engine{target: t, backward: bw, dp1: dp1, dp2: dp2, opts: opts}
}

// loadOrBuildTensor consults opts.CacheDir for a previously persisted
// tensor matching key before falling back to build, and persists a freshly
// built tensor back to opts.CacheDir for next time. A cache I/O failure is
// logged (the §7 "I/O error on cache" category: recovered locally by
// rebuilding) rather than propagated, since the tensor can always be
// recomputed from scratch.
func loadOrBuildTensor(opts Options, key cache.Key, axisWidth, maxLen int, build func() *reach.Tensor) *reach.Tensor {
	if opts.CacheDir != "" && !opts.IgnoreCache {
		cells, ok, err := cache.Load(opts.CacheDir, key)
		if err != nil && opts.Reporter != nil {
			opts.Reporter.Errorf("cache: %s: %v, rebuilding", key.Kind, err)
		}
		if ok {
			if t := reach.FromCells(maxLen, axisWidth, cells); t != nil {
				return t
			}
		}
	}

	t := build()

	if opts.CacheDir != "" {
		if err := cache.Store(opts.CacheDir, key, t.Cells()); err != nil && opts.Reporter != nil {
			opts.Reporter.Errorf("cache: %s: writing: %v", key.Kind, err)
		}
	}
	return t
}

// maxLen is the forward search depth: the target length minus the backward
// table's suffix length.
func (e *Engine) maxLen() int {
	return e.target.Len - e.backward.Depth()
}

// searchContext is the mutable per-candidate state threaded through the
// DFS: the checksum state reached so far, and the prefix characters chosen.
type searchContext struct {
	state    state.HashState
	password []byte
}

func (e *Engine) isValid(depth int, s state.HashState) bool {
	if s.Fb > e.target.Bit() {
		return false
	}
	if !e.dp1.IsValid(depth, int(s.F4), int(s.F5), int(s.F9), s.F7) {
		return false
	}
	if !e.dp2.IsValid(depth, int(s.F4), int(s.F5), int(s.F7), s.F8) {
		return false
	}
	return true
}

// Run explores every candidate password reaching the target's checksum
// and calls emit once per match, in the password's printable form. emit
// may be called concurrently from multiple goroutines; callers that need
// ordered or serialized output must synchronize it themselves.
//
// Run returns ctx.Err() if ctx is canceled mid-search; any candidates
// already emitted remain valid.
func (e *Engine) Run(ctx context.Context, emit func(password string)) error {
	maxLen := e.maxLen()

	start := searchContext{state: state.Initial(), password: make([]byte, 0, maxLen)}
	prefixDepth := prefixEnumerationDepth
	if prefixDepth > maxLen {
		prefixDepth = maxLen
	}

	contexts := e.enumeratePrefix(prefixDepth, start)
	groups := groupByPrefix(contexts)

	type job struct {
		prefix   string
		contexts []searchContext
	}
	jobs := make(chan job)
	var wg sync.WaitGroup
	errCh := make(chan error, 1)

	worker := func() {
		defer wg.Done()
		for j := range jobs {
			if e.opts.Reporter != nil {
				e.opts.Reporter.GroupStarted(j.prefix)
			}
			for _, sc := range j.contexts {
				select {
				case <-ctx.Done():
					select {
					case errCh <- ctx.Err():
					default:
					}
					return
				default:
				}
				e.dfs(ctx, sc, maxLen, emit)
			}
		}
	}

	for w := 0; w < e.opts.Workers; w++ {
		wg.Add(1)
		go worker()
	}

feed:
	for _, g := range groups {
		select {
		case jobs <- job{prefix: g.prefix, contexts: g.contexts}:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	select {
	case err := <-errCh:
		return err
	default:
		return ctx.Err()
	}
}

// enumeratePrefix recursively expands sc by depth characters, respecting
// every filter Options configures, and returns every resulting context.
func (e *Engine) enumeratePrefix(depth int, sc searchContext) []searchContext {
	if depth == 0 {
		return []searchContext{sc}
	}

	var out []searchContext
	for _, next := range e.extend(sc) {
		out = append(out, e.enumeratePrefix(depth-1, next)...)
	}
	return out
}

// extend returns every searchContext reachable from sc by appending one
// valid character, after DP1/DP2/fb pruning and any configured
// Allowed/Heuristic filters.
func (e *Engine) extend(sc searchContext) []searchContext {
	fanned := state.ForwardFanOut(sc.state, lanes, alphabet.NoCode)
	depth := len(sc.password) + 1

	var out []searchContext
	for i, code := range alphabet.Codes {
		if e.opts.Allowed != nil && !e.opts.Allowed(len(sc.password), code) {
			continue
		}
		next := fanned[i]
		if !e.isValid(depth, next) {
			continue
		}
		if e.opts.Heuristic && !heuristic.IsValid(sc.password, []byte{code}) {
			continue
		}

		password := make([]byte, len(sc.password)+1)
		copy(password, sc.password)
		password[len(sc.password)] = code

		if e.opts.Dictionary != nil && !e.opts.Dictionary.CouldExtendToWord(alphabet.DecodeCodes(password)) {
			continue
		}

		out = append(out, searchContext{state: next, password: password})
	}
	return out
}

// dfs explores sc to the forward frontier (maxLen characters deep), then
// joins against the backward table to emit completed passwords.
func (e *Engine) dfs(ctx context.Context, sc searchContext, maxLen int, emit func(string)) {
	if ctx.Err() != nil {
		return
	}
	if len(sc.password) == maxLen {
		e.backward.ForEachSuffix(sc.state, func(suffix []byte) {
			full := make([]byte, 0, len(sc.password)+len(suffix))
			full = append(full, sc.password...)
			full = append(full, suffix...)
			if e.opts.Allowed != nil {
				for p := len(sc.password); p < len(full); p++ {
					if !e.opts.Allowed(p, full[p]) {
						return
					}
				}
			}
			if e.opts.Dictionary != nil && !e.opts.Dictionary.IsConcatenationOfWords(alphabet.DecodeCodes(full)) {
				return
			}
			emit(alphabet.DecodeCodes(full))
		})
		return
	}

	for _, next := range e.extend(sc) {
		e.dfs(ctx, next, maxLen, emit)
	}
}

type prefixGroup struct {
	prefix   string
	contexts []searchContext
}

// groupByPrefix groups contexts by the printable form of their first two
// password characters, sorted in alphabet order (matching the original's
// sorted_by_cached_key over CHAR_CODES position).
func groupByPrefix(contexts []searchContext) []prefixGroup {
	byPrefix := make(map[string][]searchContext)
	var prefixes []string
	for _, sc := range contexts {
		n := 2
		if len(sc.password) < n {
			n = len(sc.password)
		}
		key := alphabet.DecodeCodes(sc.password[:n])
		if _, ok := byPrefix[key]; !ok {
			prefixes = append(prefixes, key)
		}
		byPrefix[key] = append(byPrefix[key], sc)
	}

	sort.Slice(prefixes, func(i, j int) bool {
		return lessByAlphabetOrder(prefixes[i], prefixes[j])
	})

	groups := make([]prefixGroup, len(prefixes))
	for i, p := range prefixes {
		groups[i] = prefixGroup{prefix: p, contexts: byPrefix[p]}
	}
	return groups
}

func lessByAlphabetOrder(a, b string) bool {
	ra, rb := []rune(a), []rune(b)
	for i := 0; i < len(ra) && i < len(rb); i++ {
		pa, pb := alphabetPosition(ra[i]), alphabetPosition(rb[i])
		if pa != pb {
			return pa < pb
		}
	}
	return len(ra) < len(rb)
}

func alphabetPosition(c rune) int {
	for i, ac := range alphabet.Chars {
		if ac == c {
			return i
		}
	}
	return len(alphabet.Chars)
}
