// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package media

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingURL      = errors.New("media file has no url")
	ErrMissingMimeType = errors.New("media file has no mime type")
	ErrNegativeMeasure = errors.New("media file declares a negative measure")
)

// MediaFile is the raw rendition record produced by an external VAST parser.
// Optional attributes are nil when the markup does not declare them.
type MediaFile struct {
	URL          string `json:"url" yaml:"url"`
	MimeType     string `json:"mimeType" yaml:"mimeType"`
	Codec        string `json:"codec,omitempty" yaml:"codec,omitempty"`
	APIFramework string `json:"apiFramework,omitempty" yaml:"apiFramework,omitempty"`
	Width        *int   `json:"width,omitempty" yaml:"width,omitempty"`
	Height       *int   `json:"height,omitempty" yaml:"height,omitempty"`
	Bitrate      *int   `json:"bitrate,omitempty" yaml:"bitrate,omitempty"`
}

// Measure is an optional non-negative quantity declared on a rendition.
type Measure struct {
	value int
	ok    bool
}

// Declared returns a present Measure.
func Declared(v int) Measure {
	return Measure{value: v, ok: true}
}

// Get returns the value and whether it was declared.
func (m Measure) Get() (int, bool) {
	return m.value, m.ok
}

// Or returns the declared value, or def when absent.
func (m Measure) Or(def int) int {
	if !m.ok {
		return def
	}
	return m.value
}

// Candidate is one validated ad rendition. It is immutable once built.
type Candidate struct {
	url          string
	mimeType     string
	codec        string
	apiFramework string
	width        Measure
	height       Measure
	bitrate      Measure
}

// NewCandidate validates a MediaFile once and returns its immutable Candidate.
func NewCandidate(f MediaFile) (Candidate, error) {
	url := strings.TrimSpace(f.URL)
	if url == "" {
		return Candidate{}, ErrMissingURL
	}
	mime := NormalizeMimeType(f.MimeType)
	if mime == "" {
		return Candidate{}, ErrMissingMimeType
	}

	c := Candidate{
		url:          url,
		mimeType:     mime,
		codec:        strings.TrimSpace(f.Codec),
		apiFramework: strings.TrimSpace(f.APIFramework),
	}
	var err error
	if c.width, err = measure("width", f.Width); err != nil {
		return Candidate{}, err
	}
	if c.height, err = measure("height", f.Height); err != nil {
		return Candidate{}, err
	}
	if c.bitrate, err = measure("bitrate", f.Bitrate); err != nil {
		return Candidate{}, err
	}
	return c, nil
}

func measure(name string, v *int) (Measure, error) {
	if v == nil {
		return Measure{}, nil
	}
	if *v < 0 {
		return Measure{}, fmt.Errorf("%w: %s=%d", ErrNegativeMeasure, name, *v)
	}
	return Declared(*v), nil
}

// MustCandidate is NewCandidate for fixtures; it panics on invalid input.
func MustCandidate(f MediaFile) Candidate {
	c, err := NewCandidate(f)
	if err != nil {
		panic(err)
	}
	return c
}

// Rejected pairs a discarded MediaFile with the reason it was dropped.
type Rejected struct {
	Index int
	File  MediaFile
	Err   error
}

// BuildCandidates converts parser output into Candidates, keeping input order.
// Records that fail validation are returned separately and never enter selection.
func BuildCandidates(files []MediaFile) ([]Candidate, []Rejected) {
	out := make([]Candidate, 0, len(files))
	var rejected []Rejected
	for i, f := range files {
		c, err := NewCandidate(f)
		if err != nil {
			rejected = append(rejected, Rejected{Index: i, File: f, Err: err})
			continue
		}
		out = append(out, c)
	}
	return out, rejected
}

func (c Candidate) URL() string          { return c.url }
func (c Candidate) MimeType() string     { return c.mimeType }
func (c Candidate) APIFramework() string { return c.apiFramework }
func (c Candidate) Width() Measure       { return c.width }
func (c Candidate) Height() Measure      { return c.height }
func (c Candidate) Bitrate() Measure     { return c.bitrate }

// Codec returns the declared codec string, if any.
func (c Candidate) Codec() (string, bool) {
	return c.codec, c.codec != ""
}

// Executable reports whether the rendition is a scripted ad unit.
func (c Candidate) Executable() bool {
	return IsExecutable(c.mimeType, c.apiFramework)
}

// Adaptive reports whether the rendition is an HLS or DASH manifest.
func (c Candidate) Adaptive() bool {
	return IsAdaptive(c.mimeType)
}

// SameFormat reports whether both candidates share type and codec.
func (c Candidate) SameFormat(o Candidate) bool {
	return c.mimeType == o.mimeType && c.codec == o.codec
}

// IsZero reports whether c is the zero Candidate.
func (c Candidate) IsZero() bool {
	return c.url == "" && c.mimeType == ""
}

func (c Candidate) String() string {
	w, h := c.width.Or(0), c.height.Or(0)
	return fmt.Sprintf("%s %dx%d %dkbps %s", c.mimeType, w, h, c.bitrate.Or(0), c.url)
}

type candidateJSON struct {
	URL          string `json:"url"`
	MimeType     string `json:"mimeType"`
	Codec        string `json:"codec,omitempty"`
	APIFramework string `json:"apiFramework,omitempty"`
	Width        *int   `json:"width,omitempty"`
	Height       *int   `json:"height,omitempty"`
	Bitrate      *int   `json:"bitrate,omitempty"`
}

// MarshalJSON renders the candidate with absent measures omitted.
func (c Candidate) MarshalJSON() ([]byte, error) {
	return json.Marshal(candidateJSON{
		URL:          c.url,
		MimeType:     c.mimeType,
		Codec:        c.codec,
		APIFramework: c.apiFramework,
		Width:        measurePtr(c.width),
		Height:       measurePtr(c.height),
		Bitrate:      measurePtr(c.bitrate),
	})
}

func measurePtr(m Measure) *int {
	v, ok := m.Get()
	if !ok {
		return nil
	}
	return &v
}
