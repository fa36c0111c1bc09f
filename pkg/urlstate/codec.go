// Package urlstate maps filter state to and from its canonical URL form.
//
// The path grammar is the persistence format for bookmarkable links and has to
// round-trip byte for byte:
//
//	<base>/filter/make:<slug>/meta/<expr>(;<expr>)*/
//
// where a range expression is <token>!range:<min>_<max> with unset bounds
// substituted by their sentinels, and a categorical expression is
// <token>:<value>. With no facet set the path is just <base>/.
package urlstate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bilhallen/filter-engine/pkg/types"
)

const (
	filterSegment = "filter"
	metaSegment   = "meta"
	makePrefix    = "make:"
	rangeMarker   = "!range:"
)

// Encode renders the canonical path for a state. Meta expressions follow
// vocabulary order so equal states always encode to the same string.
func Encode(s *types.FilterState) string {
	base := strings.TrimSuffix(s.BaseUrl, "/")
	if !s.HasFacets() {
		return base + "/"
	}
	parts := []string{base, filterSegment}
	if slug := s.CategorySlug(); slug != "" {
		parts = append(parts, makePrefix+slug)
	}
	if exprs := metaExpressions(s); len(exprs) > 0 {
		parts = append(parts, metaSegment, strings.Join(exprs, ";"))
	}
	return strings.Join(parts, "/") + "/"
}

func metaExpressions(s *types.FilterState) []string {
	exprs := make([]string, 0, len(types.Vocabulary))
	for i := range types.Vocabulary {
		d := &types.Vocabulary[i]
		switch d.Kind {
		case types.FacetRange:
			b, ok := s.Ranges[d.Token]
			if !ok || b.IsEmpty() {
				continue
			}
			minValue := types.MinSentinel
			maxValue := d.MaxSentinel
			if b.Min != nil {
				minValue = *b.Min
			}
			if b.Max != nil {
				maxValue = *b.Max
			}
			exprs = append(exprs, fmt.Sprintf("%s%s%d_%d", d.Token, rangeMarker, minValue, maxValue))
		case types.FacetCategorical:
			if v := s.Values[d.Token]; v != "" {
				exprs = append(exprs, d.Token+":"+v)
			}
		}
	}
	return exprs
}

// Decoded is the raw outcome of parsing a canonical path. MakeSlug is the
// unresolved combined slug; hierarchy resolution is a separate step.
type Decoded struct {
	MakeSlug string
	Ranges   map[string]*types.RangeBound
	Values   map[string]string
}

func (d *Decoded) HasFacets() bool {
	return d.MakeSlug != "" || len(d.Ranges) > 0 || len(d.Values) > 0
}

// Decode parses a request path. Unknown tokens and malformed expressions are
// skipped, sentinel bounds are stripped so decoding an encoded state is
// idempotent.
func Decode(path string) *Decoded {
	result := &Decoded{
		Ranges: map[string]*types.RangeBound{},
		Values: map[string]string{},
	}
	segments := strings.Split(strings.Trim(path, "/"), "/")
	inFilter := false
	for i := 0; i < len(segments); i++ {
		seg := segments[i]
		if seg == filterSegment {
			inFilter = true
			continue
		}
		if !inFilter {
			continue
		}
		if slug, ok := strings.CutPrefix(seg, makePrefix); ok {
			result.MakeSlug = slug
			continue
		}
		if seg == metaSegment && i+1 < len(segments) {
			decodeMeta(segments[i+1], result)
			i++
		}
	}
	return result
}

func decodeMeta(meta string, result *Decoded) {
	for _, expr := range strings.Split(meta, ";") {
		if token, bounds, ok := strings.Cut(expr, rangeMarker); ok {
			decodeRange(token, bounds, result)
			continue
		}
		token, value, ok := strings.Cut(expr, ":")
		if !ok || value == "" {
			continue
		}
		d, err := types.Describe(token)
		if err != nil || d.Kind != types.FacetCategorical {
			continue
		}
		if !d.IsLegalValue(value) {
			continue
		}
		result.Values[token] = value
	}
}

func decodeRange(token, bounds string, result *Decoded) {
	d, err := types.Describe(token)
	if err != nil || d.Kind != types.FacetRange {
		return
	}
	minPart, maxPart, ok := strings.Cut(bounds, "_")
	if !ok {
		return
	}
	minValue, err := strconv.Atoi(minPart)
	if err != nil || minValue < 0 {
		return
	}
	maxValue, err := strconv.Atoi(maxPart)
	if err != nil || maxValue < 0 {
		return
	}
	b := &types.RangeBound{}
	if minValue != types.MinSentinel {
		b.Min = &minValue
	}
	if maxValue != d.MaxSentinel {
		b.Max = &maxValue
	}
	if b.IsEmpty() {
		return
	}
	b.Normalize()
	result.Ranges[token] = b
}
