// SPDX-License-Identifier: GPL-2.0-or-later

// Package mapfile reads Quake 3 .map source files.
package mapfile

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"q3map/brush"
	"q3map/bsp"
	"q3map/math/vec"
)

type Side struct {
	// three points on the plane, clockwise seen from outside the brush
	Points  [3]vec.Vec3
	Texture string
	TexDef  brush.TexDef
	// trailing content flags, surface flags and value, when present
	ContentFlags uint32
	SurfaceFlags uint32
	Value        int
}

type Brush struct {
	Num   int
	Line  int
	Sides []Side
}

type Entity struct {
	*bsp.Entity
	Num     int
	Brushes []Brush
}

type parser struct {
	l      *lexer
	peeked *item
}

func (p *parser) next() item {
	if p.peeked != nil {
		i := *p.peeked
		p.peeked = nil
		return i
	}
	return p.l.nextItem()
}

func (p *parser) peek() item {
	if p.peeked == nil {
		i := p.l.nextItem()
		p.peeked = &i
	}
	return *p.peeked
}

func (p *parser) expect(val string) error {
	i := p.next()
	if i.typ == itemError {
		return errors.New(i.val)
	}
	if i.val != val {
		return errors.Errorf("line %d: expected %q, got %v", i.line, val, i)
	}
	return nil
}

func (p *parser) word() (item, error) {
	i := p.next()
	switch i.typ {
	case itemError:
		return i, errors.New(i.val)
	case itemWord:
		return i, nil
	}
	return i, errors.Errorf("line %d: expected a word, got %v", i.line, i)
}

func (p *parser) float() (float64, error) {
	i, err := p.word()
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(i.val, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "line %d", i.line)
	}
	return f, nil
}

func (p *parser) int() (int, error) {
	f, err := p.float()
	return int(f), err
}

func (p *parser) point() (vec.Vec3, error) {
	var v vec.Vec3
	if err := p.expect("("); err != nil {
		return v, err
	}
	for i := range v {
		f, err := p.float()
		if err != nil {
			return v, err
		}
		v[i] = f
	}
	return v, p.expect(")")
}

func (p *parser) side() (Side, error) {
	var s Side
	for i := range s.Points {
		pt, err := p.point()
		if err != nil {
			return s, err
		}
		s.Points[i] = pt
	}
	tex, err := p.word()
	if err != nil {
		return s, err
	}
	s.Texture = tex.val
	vals := make([]float64, 5)
	for i := range vals {
		if vals[i], err = p.float(); err != nil {
			return s, err
		}
	}
	s.TexDef = brush.TexDef{
		Shift:  [2]float64{vals[0], vals[1]},
		Rotate: vals[2],
		Scale:  [2]float64{vals[3], vals[4]},
	}
	if p.peek().typ != itemWord {
		return s, nil
	}
	flags := make([]int, 3)
	for i := range flags {
		if flags[i], err = p.int(); err != nil {
			return s, err
		}
	}
	s.ContentFlags = uint32(flags[0])
	s.SurfaceFlags = uint32(flags[1])
	s.Value = flags[2]
	return s, nil
}

// skipBlock consumes a block up to its matching close brace. The opening
// brace is already consumed.
func (p *parser) skipBlock() error {
	depth := 1
	for depth > 0 {
		i := p.next()
		switch {
		case i.typ == itemError:
			return errors.New(i.val)
		case i.typ == itemEOF:
			return errors.Errorf("line %d: unexpected end of file", i.line)
		case i.typ == itemChar && i.val == "{":
			depth++
		case i.typ == itemChar && i.val == "}":
			depth--
		}
	}
	return nil
}

func (p *parser) brush(e *Entity, line int) error {
	b := Brush{Num: len(e.Brushes), Line: line}
	for {
		i := p.peek()
		if i.typ == itemChar && i.val == "}" {
			p.next()
			e.Brushes = append(e.Brushes, b)
			return nil
		}
		s, err := p.side()
		if err != nil {
			return errors.Wrapf(err, "entity %d brush %d", e.Num, b.Num)
		}
		b.Sides = append(b.Sides, s)
	}
}

func (p *parser) entity(num int) (*Entity, error) {
	e := &Entity{Entity: bsp.NewEntity(), Num: num}
	for {
		i := p.next()
		switch {
		case i.typ == itemError:
			return nil, errors.New(i.val)
		case i.typ == itemEOF:
			return nil, errors.Errorf("line %d: unexpected end of file in entity %d", i.line, num)
		case i.typ == itemChar && i.val == "}":
			return e, nil
		case i.typ == itemString:
			v := p.next()
			if v.typ != itemString {
				return nil, errors.Errorf("line %d: key %s without value", v.line, i.val)
			}
			e.Set(strings.Trim(i.val, `"`), strings.Trim(v.val, `"`))
		case i.typ == itemChar && i.val == "{":
			if w := p.peek(); w.typ == itemWord {
				// patches and brush primitives
				p.next()
				if err := p.expect("{"); err != nil {
					return nil, err
				}
				if err := p.skipBlock(); err != nil {
					return nil, err
				}
				if err := p.expect("}"); err != nil {
					return nil, err
				}
				slog.Warn("Skipping unsupported map block", "kind", w.val, "entity", num, "line", w.line)
				continue
			}
			if err := p.brush(e, i.line); err != nil {
				return nil, err
			}
		default:
			return nil, errors.Errorf("line %d: unexpected %v in entity %d", i.line, i, num)
		}
	}
}

// Parse reads all entities of a map.
func Parse(data string) ([]*Entity, error) {
	p := &parser{l: lex(data)}
	var es []*Entity
	for {
		i := p.next()
		switch {
		case i.typ == itemEOF:
			return es, nil
		case i.typ == itemError:
			return nil, errors.New(i.val)
		case i.typ == itemChar && i.val == "{":
			e, err := p.entity(len(es))
			if err != nil {
				return nil, err
			}
			es = append(es, e)
		default:
			return nil, errors.Errorf("line %d: expected an entity, got %v", i.line, i)
		}
	}
}

func Load(path string) ([]*Entity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	es, err := Parse(string(data))
	return es, errors.Wrapf(err, "parsing %s", path)
}
