// Package pipeline runs batch translation of ClinVar VRS releases into
// FHIR Allele profiles.
package pipeline

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/seqvar/vrsfhir/internal/seqrepo"
	"github.com/seqvar/vrsfhir/internal/translate"
	"github.com/seqvar/vrsfhir/internal/vrs"
)

// Options configures a pipeline run. Input is a gzipped JSONL file where
// each line is a ClinVar record carrying a members array; every member of
// type Allele is translated.
type Options struct {
	InputPath              string
	OutputPath             string
	InvalidAllelePath      string
	InvalidTranslationPath string
	SummaryPath            string
	// Limit stops reading after this many input lines; 0 means no limit.
	Limit int
	// Workers sizes the translation pool; 0 means one per CPU.
	Workers int
}

// StateTypeCounts tallies the allele state types seen in the input.
type StateTypeCounts struct {
	Literal         int `json:"lse_count"`
	ReferenceLength int `json:"rle_count"`
	Other           int `json:"other_count"`
}

// Summary is the run report written to the summary file.
type Summary struct {
	FileName               string          `json:"file_name"`
	StartTime              string          `json:"start_time"`
	EndTime                string          `json:"end_time"`
	DurationSeconds        float64         `json:"duration_seconds"`
	TotalLinesRead         int             `json:"total_lines_read"`
	VrsAllelesSeen         int             `json:"vrs_allele_seen"`
	VrsAlleleTypes         StateTypeCounts `json:"vrs_allele_types"`
	TotalTranslated        int             `json:"total_translated"`
	FailedAlleleValidation int             `json:"failed_vrs_allele_validation"`
	FailedFhirTranslation  int             `json:"failed_vrs_to_fhir_translation"`
	TotalFailed            int             `json:"total_failed"`
}

// Pipeline streams a gzipped JSONL ClinVar release through the VRS to
// FHIR translator, writing translations, per-record failures, and a run
// summary to separate files.
type Pipeline struct {
	translator *translate.VrsToFhirTranslator
	logger     *zap.Logger
}

// New creates a pipeline over the given sequence store.
func New(r seqrepo.Resolver) *Pipeline {
	return &Pipeline{
		translator: translate.NewVrsToFhirTranslator(r),
		logger:     zap.NewNop(),
	}
}

// SetLogger sets the logger for warning and progress messages.
func (p *Pipeline) SetLogger(l *zap.Logger) {
	p.logger = l
}

// clinvarRecord is the slice of a ClinVar line the pipeline reads.
type clinvarRecord struct {
	Members []json.RawMessage `json:"members"`
}

// memberHeader is the minimal probe used to filter members by type.
type memberHeader struct {
	Type string `json:"type"`
}

type translatedRecord struct {
	Line       int             `json:"line"`
	VrsAllele  *vrs.Allele     `json:"vrs_allele"`
	FhirAllele json.RawMessage `json:"fhir_allele"`
}

type invalidAlleleRecord struct {
	Line   int             `json:"line"`
	Error  string          `json:"error"`
	Member json.RawMessage `json:"member"`
}

type invalidTranslationRecord struct {
	Line      int         `json:"line"`
	Error     string      `json:"error"`
	VrsAllele *vrs.Allele `json:"vrs_allele"`
}

// Run executes the pipeline and returns the run summary. Per-record
// failures are logged to the failure files and never abort the run;
// only I/O errors do.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Summary, error) {
	startedAt := time.Now()

	in, err := os.Open(opts.InputPath)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	gz, err := gzip.NewReader(in)
	if err != nil {
		return nil, fmt.Errorf("open gzip stream: %w", err)
	}
	defer gz.Close()

	out, err := appendFile(opts.OutputPath)
	if err != nil {
		return nil, err
	}
	defer out.Close()
	invalidAlleles, err := appendFile(opts.InvalidAllelePath)
	if err != nil {
		return nil, err
	}
	defer invalidAlleles.Close()
	invalidTranslations, err := appendFile(opts.InvalidTranslationPath)
	if err != nil {
		return nil, err
	}
	defer invalidTranslations.Close()

	summary := &Summary{FileName: filepath.Base(opts.InputPath)}

	items := make(chan workItem, 64)
	var readErr error

	go func() {
		defer close(items)
		readErr = p.readAlleles(ctx, gz, opts.Limit, summary, invalidAlleles, items)
	}()

	results := p.parallelTranslate(ctx, items, opts.Workers)

	outWriter := bufio.NewWriter(out)
	err = orderedCollect(results, func(r workResult) error {
		if r.Err != nil {
			summary.FailedFhirTranslation++
			p.logger.Warn("translation failed",
				zap.Int("line", r.Line),
				zap.Error(r.Err))
			return writeJSONLine(invalidTranslations, invalidTranslationRecord{
				Line:      r.Line,
				Error:     r.Err.Error(),
				VrsAllele: r.Allele,
			})
		}
		doc, err := json.Marshal(r.Doc)
		if err != nil {
			return fmt.Errorf("encode translation: %w", err)
		}
		summary.TotalTranslated++
		return writeJSONLine(outWriter, translatedRecord{
			Line:       r.Line,
			VrsAllele:  r.Allele,
			FhirAllele: doc,
		})
	})
	if err != nil {
		return nil, err
	}
	if err := outWriter.Flush(); err != nil {
		return nil, fmt.Errorf("flush output: %w", err)
	}
	if readErr != nil {
		return nil, readErr
	}

	summary.StartTime = startedAt.Format(time.RFC3339)
	summary.EndTime = time.Now().Format(time.RFC3339)
	summary.DurationSeconds = time.Since(startedAt).Round(10 * time.Millisecond).Seconds()
	summary.TotalFailed = summary.FailedAlleleValidation + summary.FailedFhirTranslation

	if opts.SummaryPath != "" {
		if err := writeSummary(opts.SummaryPath, summary); err != nil {
			return nil, err
		}
	}
	p.logger.Info("translation run finished",
		zap.Int("lines", summary.TotalLinesRead),
		zap.Int("translated", summary.TotalTranslated),
		zap.Int("failed", summary.TotalFailed),
		zap.Float64("seconds", summary.DurationSeconds))

	return summary, nil
}

// readAlleles scans the gzipped JSONL stream, filters allele members, and
// feeds decodable ones to the worker pool. Undecodable members go to the
// invalid-allele log.
func (p *Pipeline) readAlleles(ctx context.Context, r io.Reader, limit int, summary *Summary, invalidAlleles io.Writer, items chan<- workItem) error {
	scanner := bufio.NewScanner(r)
	// ClinVar lines run long; default token size is too small.
	scanner.Buffer(make([]byte, 0, 1<<20), 64<<20)

	seq := 0
	line := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line++
		if limit > 0 && line > limit {
			break
		}
		summary.TotalLinesRead++

		var record clinvarRecord
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			p.logger.Warn("skipping line: json decode error", zap.Int("line", line))
			continue
		}

		for _, member := range record.Members {
			var header memberHeader
			if err := json.Unmarshal(member, &header); err != nil || header.Type != vrs.TypeAllele {
				continue
			}
			summary.VrsAllelesSeen++

			allele := new(vrs.Allele)
			if err := json.Unmarshal(member, allele); err != nil {
				summary.FailedAlleleValidation++
				if werr := writeJSONLine(invalidAlleles, invalidAlleleRecord{
					Line:   line,
					Error:  err.Error(),
					Member: member,
				}); werr != nil {
					return werr
				}
				continue
			}
			countStateType(&summary.VrsAlleleTypes, allele)

			items <- workItem{Seq: seq, Line: line, Allele: allele}
			seq++
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}

func countStateType(counts *StateTypeCounts, allele *vrs.Allele) {
	switch allele.State.(type) {
	case vrs.LiteralSequenceExpression:
		counts.Literal++
	case vrs.ReferenceLengthExpression:
		counts.ReferenceLength++
	default:
		counts.Other++
	}
}

func appendFile(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}

func writeJSONLine(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}

func writeSummary(path string, summary *Summary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}
