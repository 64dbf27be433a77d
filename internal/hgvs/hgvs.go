// Package hgvs parses simple HGVS sequence-variant expressions into a
// structured form. It covers substitution, deletion, delins, duplication,
// insertion, and identity edits on g./m./c./n./r. coordinates; anything
// richer (inversions, repeats, uncertain positions) is out of scope.
package hgvs

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// EditType identifies the kind of edit an expression describes.
type EditType int

const (
	Sub EditType = iota
	Del
	Delins
	Dup
	Ins
	Identity
)

// String returns the conventional short label for the edit type.
func (t EditType) String() string {
	switch t {
	case Sub:
		return "sub"
	case Del:
		return "del"
	case Delins:
		return "delins"
	case Dup:
		return "dup"
	case Ins:
		return "ins"
	case Identity:
		return "identity"
	}
	return fmt.Sprintf("EditType(%d)", int(t))
}

// Variant is a parsed HGVS expression.
type Variant struct {
	Accession string
	Kind      byte // coordinate kind: g, m, c, n, r
	Start     int64
	End       int64
	// Intronic offsets (c./n. only); nonzero means the position is inside
	// an intron.
	StartOffset int64
	EndOffset   int64
	Edit        EditType
	Ref         string
	Alt         string
}

// IsIntronic reports whether either bound carries an intronic offset.
func (v *Variant) IsIntronic() bool {
	return v.StartOffset != 0 || v.EndOffset != 0
}

// Position returns the 1-based start and end positions from the posedit.
func (v *Variant) Position() (start, end int64) {
	return v.Start, v.End
}

// ErrUnsupportedExpression reports an expression this parser cannot handle.
var ErrUnsupportedExpression = errors.New("unsupported HGVS expression")

// Regexes for expression parsing.
var (
	// NC_000019.10:g.44908822C>T
	reExpr = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9_.]*):([gmcnr])\.(.+)$`)
	// Position with optional intronic offset: 76, 88+1, 89-2, -14, *6
	pos = `([*-]?\d+)([+-]\d+)?`
	// Single- or double-position span
	span = pos + `(?:_` + pos + `)?`

	reSub    = regexp.MustCompile(`^` + pos + `([A-Z])>([A-Z])$`)
	reDelins = regexp.MustCompile(`^` + span + `delins([A-Z]+)$`)
	reDel    = regexp.MustCompile(`^` + span + `del([A-Z]*|\d*)$`)
	reDup    = regexp.MustCompile(`^` + span + `dup([A-Z]*)$`)
	reIns    = regexp.MustCompile(`^` + pos + `_` + pos + `ins([A-Z]+)$`)
	reIdent  = regexp.MustCompile(`^` + span + `([A-Z]*)=$`)
)

// Parse parses an HGVS expression like "NC_000019.10:g.44908822C>T".
func Parse(expr string) (*Variant, error) {
	expr = strings.TrimSpace(expr)
	m := reExpr.FindStringSubmatch(expr)
	if m == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedExpression, expr)
	}
	v := &Variant{
		Accession: m[1],
		Kind:      m[2][0],
	}
	if err := parsePosedit(v, m[3]); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrUnsupportedExpression, expr, err)
	}
	return v, nil
}

func parsePosedit(v *Variant, posedit string) error {
	if m := reSub.FindStringSubmatch(posedit); m != nil {
		if err := setSpan(v, m[1], m[2], "", ""); err != nil {
			return err
		}
		v.Edit = Sub
		v.Ref = m[3]
		v.Alt = m[4]
		return nil
	}
	if m := reDelins.FindStringSubmatch(posedit); m != nil {
		if err := setSpan(v, m[1], m[2], m[3], m[4]); err != nil {
			return err
		}
		v.Edit = Delins
		v.Alt = m[5]
		return nil
	}
	if m := reDel.FindStringSubmatch(posedit); m != nil {
		if err := setSpan(v, m[1], m[2], m[3], m[4]); err != nil {
			return err
		}
		v.Edit = Del
		if trailer := m[5]; trailer != "" && trailer[0] >= 'A' {
			v.Ref = trailer
		}
		return nil
	}
	if m := reDup.FindStringSubmatch(posedit); m != nil {
		if err := setSpan(v, m[1], m[2], m[3], m[4]); err != nil {
			return err
		}
		v.Edit = Dup
		v.Ref = m[5]
		return nil
	}
	if m := reIns.FindStringSubmatch(posedit); m != nil {
		if err := setSpan(v, m[1], m[2], m[3], m[4]); err != nil {
			return err
		}
		v.Edit = Ins
		v.Alt = m[5]
		return nil
	}
	if m := reIdent.FindStringSubmatch(posedit); m != nil {
		if err := setSpan(v, m[1], m[2], m[3], m[4]); err != nil {
			return err
		}
		v.Edit = Identity
		v.Ref = m[5]
		v.Alt = m[5]
		return nil
	}
	return errors.New("unrecognized posedit")
}

// setSpan fills start/end and their intronic offsets. A missing second
// position means a single-residue span.
func setSpan(v *Variant, start, startOffset, end, endOffset string) error {
	var err error
	v.Start, err = parseBase(start)
	if err != nil {
		return err
	}
	v.StartOffset = parseOffset(startOffset)
	if end == "" {
		v.End = v.Start
		v.EndOffset = v.StartOffset
		return nil
	}
	v.End, err = parseBase(end)
	if err != nil {
		return err
	}
	v.EndOffset = parseOffset(endOffset)
	return nil
}

// parseBase parses a position. UTR positions ("-14", "*6") are rejected:
// they require transcript context this parser does not have.
func parseBase(s string) (int64, error) {
	if strings.HasPrefix(s, "*") || strings.HasPrefix(s, "-") {
		return 0, fmt.Errorf("UTR position %q not supported", s)
	}
	return strconv.ParseInt(s, 10, 64)
}

func parseOffset(s string) int64 {
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
