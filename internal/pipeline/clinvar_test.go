package pipeline

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seqvar/vrsfhir/internal/vrs"
)

// stubResolver fails every call; pipeline fixtures carry explicit molecule
// types so translation never needs the sequence store.
type stubResolver struct{}

func (stubResolver) DeriveRefgetAccession(ctx context.Context, prefixedAccession string) (string, error) {
	return "", errors.New("unexpected resolver call")
}

func (stubResolver) TranslateIdentifier(ctx context.Context, id, namespace string) ([]string, error) {
	return nil, errors.New("unexpected resolver call")
}

func (stubResolver) FetchSubsequence(ctx context.Context, accessionOrID string, start, end int64) (string, error) {
	return "", errors.New("unexpected resolver call")
}

func testAllele(start int64, state string) *vrs.Allele {
	return &vrs.Allele{
		Type: vrs.TypeAllele,
		Location: &vrs.SequenceLocation{
			Type: vrs.TypeSequenceLocation,
			SequenceReference: &vrs.SequenceReference{
				Type:            vrs.TypeSequenceReference,
				RefgetAccession: "SQ.cQvw4UsHHRRlogxbWCB8W-mKD4AraM9y",
				MoleculeType:    "protein",
			},
			Start: start,
			End:   start + 1,
		},
		State: vrs.LiteralSequenceExpression{
			Type:     vrs.TypeLiteralSequenceExpression,
			Sequence: state,
		},
	}
}

func recordLine(t *testing.T, members ...any) string {
	t.Helper()
	raws := make([]json.RawMessage, 0, len(members))
	for _, m := range members {
		data, err := json.Marshal(m)
		require.NoError(t, err)
		raws = append(raws, data)
	}
	line, err := json.Marshal(map[string]any{"members": raws})
	require.NoError(t, err)
	return string(line)
}

func writeGzipLines(t *testing.T, path string, lines []string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	for _, line := range lines {
		_, err := fmt.Fprintln(gz, line)
		require.NoError(t, err)
	}
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())
}

func testOptions(t *testing.T, input string) Options {
	dir := t.TempDir()
	return Options{
		InputPath:              input,
		OutputPath:             filepath.Join(dir, "out.jsonl"),
		InvalidAllelePath:      filepath.Join(dir, "invalid_alleles.jsonl"),
		InvalidTranslationPath: filepath.Join(dir, "invalid_translations.jsonl"),
		SummaryPath:            filepath.Join(dir, "summary.json"),
		Workers:                2,
	}
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	require.NoError(t, scanner.Err())
	return lines
}

func TestPipelineRun(t *testing.T) {
	input := filepath.Join(t.TempDir(), "clinvar.jsonl.gz")
	writeGzipLines(t, input, []string{
		// A translatable allele plus a member type the pipeline skips.
		recordLine(t, testAllele(599, "E"), map[string]any{"type": "Haplotype"}),
		"{not json",
		// Allele-typed member whose state cannot be decoded.
		recordLine(t, map[string]any{"type": "Allele", "state": map[string]any{"type": "CopyNumberCount"}}),
		// Decodes, but has no location, so translation fails.
		recordLine(t, &vrs.Allele{Type: vrs.TypeAllele, State: vrs.LiteralSequenceExpression{
			Type: vrs.TypeLiteralSequenceExpression, Sequence: "T",
		}}),
	})

	opts := testOptions(t, input)
	summary, err := New(stubResolver{}).Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, 4, summary.TotalLinesRead)
	assert.Equal(t, 3, summary.VrsAllelesSeen)
	assert.Equal(t, 1, summary.TotalTranslated)
	assert.Equal(t, 1, summary.FailedAlleleValidation)
	assert.Equal(t, 1, summary.FailedFhirTranslation)
	assert.Equal(t, 2, summary.TotalFailed)
	assert.Equal(t, 2, summary.VrsAlleleTypes.Literal)
	assert.Equal(t, "clinvar.jsonl.gz", summary.FileName)
	assert.NotEmpty(t, summary.StartTime)
	assert.NotEmpty(t, summary.EndTime)

	outLines := readLines(t, opts.OutputPath)
	require.Len(t, outLines, 1)
	var translated translatedRecord
	require.NoError(t, json.Unmarshal([]byte(outLines[0]), &translated))
	assert.Equal(t, 1, translated.Line)
	assert.NotEmpty(t, translated.FhirAllele)

	invalidLines := readLines(t, opts.InvalidAllelePath)
	require.Len(t, invalidLines, 1)
	var invalid invalidAlleleRecord
	require.NoError(t, json.Unmarshal([]byte(invalidLines[0]), &invalid))
	assert.Equal(t, 3, invalid.Line)
	assert.Contains(t, invalid.Error, "CopyNumberCount")

	failedLines := readLines(t, opts.InvalidTranslationPath)
	require.Len(t, failedLines, 1)
	var failed invalidTranslationRecord
	require.NoError(t, json.Unmarshal([]byte(failedLines[0]), &failed))
	assert.Equal(t, 4, failed.Line)

	var fromFile Summary
	data, err := os.ReadFile(opts.SummaryPath)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &fromFile))
	assert.Equal(t, summary.TotalTranslated, fromFile.TotalTranslated)
	assert.Equal(t, summary.TotalFailed, fromFile.TotalFailed)
}

func TestPipelinePreservesInputOrder(t *testing.T) {
	const count = 20
	lines := make([]string, 0, count)
	for i := 0; i < count; i++ {
		lines = append(lines, recordLine(t, testAllele(int64(100+i), "E")))
	}
	input := filepath.Join(t.TempDir(), "clinvar.jsonl.gz")
	writeGzipLines(t, input, lines)

	opts := testOptions(t, input)
	opts.Workers = 4
	summary, err := New(stubResolver{}).Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, count, summary.TotalTranslated)

	outLines := readLines(t, opts.OutputPath)
	require.Len(t, outLines, count)
	for i, line := range outLines {
		var rec translatedRecord
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		assert.Equal(t, i+1, rec.Line)
	}
}

func TestPipelineHonorsLimit(t *testing.T) {
	input := filepath.Join(t.TempDir(), "clinvar.jsonl.gz")
	writeGzipLines(t, input, []string{
		recordLine(t, testAllele(100, "E")),
		recordLine(t, testAllele(200, "K")),
		recordLine(t, testAllele(300, "L")),
	})

	opts := testOptions(t, input)
	opts.Limit = 2
	summary, err := New(stubResolver{}).Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.TotalLinesRead)
	assert.Equal(t, 2, summary.TotalTranslated)
}

func TestPipelineRejectsMissingInput(t *testing.T) {
	opts := testOptions(t, filepath.Join(t.TempDir(), "absent.jsonl.gz"))
	_, err := New(stubResolver{}).Run(context.Background(), opts)
	assert.Error(t, err)
}
