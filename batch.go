package tjdecode

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"iter"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

// BatchOptions configures DecodeAll
type BatchOptions struct {
	// Scan selects which files under the root are decoded
	Scan ScanOptions

	// OutputDir, when set, receives the outputs in the same relative layout
	// as the sources. Otherwise each output is written next to its source.
	OutputDir string

	// BaseKey replaces the configured KeyProvider for the whole run
	BaseKey []byte

	// OnResult, if set, is called once per file as soon as it finishes.
	// Calls may come from several goroutines at once. A panic in OnResult
	// is logged and swallowed.
	OnResult func(Result)
}

// Result is the outcome for one file of a batch run
type Result struct {
	Path    string
	Variant Variant
	Output  string
	Size    int
	Digest  string // blake2b-256 of the plaintext, hex encoded
	Err     error
	Kind    ErrorKind
}

// OK reports whether the file decoded and was written
func (r Result) OK() bool {
	return r.Err == nil
}

// MarshalJSON renders the result for machine-readable reports
func (r Result) MarshalJSON() ([]byte, error) {
	out := struct {
		Path    string `json:"path"`
		Variant string `json:"variant"`
		Output  string `json:"output,omitempty"`
		Size    int    `json:"size"`
		Digest  string `json:"blake2b,omitempty"`
		Error   string `json:"error,omitempty"`
		Kind    string `json:"kind,omitempty"`
		Hint    string `json:"hint,omitempty"`
	}{
		Path:    r.Path,
		Variant: r.Variant.String(),
		Output:  r.Output,
		Size:    r.Size,
		Digest:  r.Digest,
	}
	if r.Err != nil {
		out.Error = r.Err.Error()
		out.Kind = r.Kind.String()
		out.Hint = r.Kind.Hint()
	}
	return json.Marshal(out)
}

// Report summarizes a batch run. Results are sorted by path.
type Report struct {
	ID           uuid.UUID `json:"id"`
	Root         string    `json:"root"`
	Variants     string    `json:"variants"`
	Started      time.Time `json:"started"`
	Finished     time.Time `json:"finished"`
	Results      []Result  `json:"results"`
	Succeeded    int       `json:"succeeded"`
	Failed       int       `json:"failed"`
	BytesWritten int64     `json:"bytes_written"`
}

// Failures returns the failed results
func (r *Report) Failures() []Result {
	var out []Result
	for _, res := range r.Results {
		if !res.OK() {
			out = append(out, res)
		}
	}
	return out
}

// DecodeAll scans root and decodes every match on the configured worker
// pool. A failing file never stops its siblings; its error is recorded in
// the report. If ctx is cancelled no new files are started and the partial
// report is returned together with the context error.
func (d *Decoder) DecodeAll(ctx context.Context, root string, opts BatchOptions) (*Report, error) {
	return d.decodeMatches(ctx, root, d.Scan(root, opts.Scan), opts)
}

func (d *Decoder) decodeMatches(ctx context.Context, root string, matches iter.Seq[Match], opts BatchOptions) (*Report, error) {
	if opts.BaseKey != nil {
		if err := ValidateKeyMaterial(opts.BaseKey, "base_key"); err != nil {
			return nil, err
		}
	}

	report := &Report{
		ID:       uuid.New(),
		Root:     root,
		Variants: opts.Scan.variants().String(),
		Started:  time.Now(),
	}
	d.log.Info("batch started", "id", report.ID.String(), "root", root, "variants", report.Variants)

	var mu sync.Mutex
	record := func(res Result) {
		if res.Err != nil {
			res.Kind = KindOf(res.Err)
		}
		mu.Lock()
		report.Results = append(report.Results, res)
		if res.OK() {
			report.Succeeded++
			report.BytesWritten += int64(res.Size)
		} else {
			report.Failed++
		}
		mu.Unlock()
		if opts.OnResult != nil {
			d.notify(opts.OnResult, res)
		}
	}

	err := forEach(ctx, matches, d.config.Parallel.workers(),
		func(m Match) {
			record(d.decodeMatch(root, m, opts))
		},
		func(m Match, err error) {
			record(Result{Path: m.Path, Variant: m.Variant, Err: err})
		})

	slices.SortFunc(report.Results, func(a, b Result) int {
		return strings.Compare(a.Path, b.Path)
	})
	report.Finished = time.Now()

	d.log.Info("batch finished",
		"id", report.ID.String(),
		"succeeded", report.Succeeded,
		"failed", report.Failed,
		"elapsed", report.Finished.Sub(report.Started))
	return report, err
}

// notify hands res to the caller's callback. A panicking callback is logged
// and does not affect the recorded result.
func (d *Decoder) notify(onResult func(Result), res Result) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("result callback panicked", "path", res.Path, "panic", r)
		}
	}()
	onResult(res)
}

func (d *Decoder) decodeMatch(root string, m Match, opts BatchOptions) Result {
	res := Result{Path: m.Path, Variant: m.Variant}

	decodeOpts := DecodeOptions{BaseKey: opts.BaseKey}
	if opts.OutputDir != "" {
		decodeOpts.Output = MirrorOutputPath(root, opts.OutputDir, m.Path, d.config.OutputInfix)
	}

	dec, out, err := d.decodeFile(m.Path, decodeOpts)
	if err != nil {
		d.log.Error("decode failed", "path", m.Path, "err", err)
		res.Err = err
		return res
	}

	sum := blake2b.Sum256(dec.plaintext)
	res.Output = out
	res.Size = len(dec.plaintext)
	res.Digest = hex.EncodeToString(sum[:])
	return res
}
