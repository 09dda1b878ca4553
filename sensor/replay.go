package sensor

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Replay reads "x,y,z" milli-g samples, one per line. Blank lines and lines
// starting with # are skipped. It returns io.EOF when the input is exhausted.
type Replay struct {
	r      *csv.Reader
	closer io.Closer
	line   int
}

// NewReplay reads samples from r.
func NewReplay(r io.Reader) *Replay {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = 3
	cr.TrimLeadingSpace = true
	p := &Replay{r: cr}
	if c, ok := r.(io.Closer); ok {
		p.closer = c
	}
	return p
}

// Close closes the underlying reader if it is an io.Closer.
func (p *Replay) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer.Close()
}

// ReadAxes returns the next sample. Malformed lines are reported and
// skipped on the next call.
func (p *Replay) ReadAxes() (x, y, z int16, err error) {
	rec, err := p.r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, 0, 0, io.EOF
		}
		return 0, 0, 0, fmt.Errorf("sensor: replay: %w", err)
	}
	p.line, _ = p.r.FieldPos(0)

	var v [3]int16
	for i, f := range rec {
		n, err := strconv.ParseInt(strings.TrimSpace(f), 10, 16)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("sensor: replay line %d: %w", p.line, err)
		}
		v[i] = int16(n)
	}
	return v[0], v[1], v[2], nil
}
