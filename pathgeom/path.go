package pathgeom

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/tdewolff/parse/v2/strconv"
)

type Cmd byte

const (
	MoveTo Cmd = 'M'
	LineTo Cmd = 'L'
	CubeTo Cmd = 'C'
	QuadTo Cmd = 'Q'
	ArcTo  Cmd = 'A'
	Close  Cmd = 'Z'
)

// Arc holds the radii, x-axis rotation in degrees and flags of an
// elliptical arc segment.
type Arc struct {
	Rx, Ry   float32
	Rotation float32
	Large    bool
	Sweep    bool
}

// Op is one drawing command in absolute coordinates. Points holds the
// control points, if any, followed by the end point.
type Op struct {
	Cmd    Cmd
	Points []mgl32.Vec2
	Arc    Arc
}

func (op Op) End() mgl32.Vec2 {
	return op.Points[len(op.Points)-1]
}

// Path is a parsed path in absolute coordinates, reduced to M, L, C, Q, A
// and Z commands.
type Path []Op

// ParseError reports where in the path data parsing stopped.
type ParseError struct {
	Pos int
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("path data at offset %d: %s", e.Pos, e.Msg)
}

type pathScanner struct {
	b   []byte
	pos int
}

func (s *pathScanner) skipSeparators() {
	for s.pos < len(s.b) {
		switch s.b[s.pos] {
		case ' ', '\t', '\n', '\r', '\f', ',':
			s.pos++
		default:
			return
		}
	}
}

func (s *pathScanner) done() bool {
	s.skipSeparators()
	return s.pos >= len(s.b)
}

func (s *pathScanner) atNumber() bool {
	if s.done() {
		return false
	}
	c := s.b[s.pos]
	return c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9')
}

func (s *pathScanner) number() (float32, error) {
	if !s.atNumber() {
		return 0, &ParseError{Pos: s.pos, Msg: "expected number"}
	}
	f, n := strconv.ParseFloat(s.b[s.pos:])
	if n == 0 {
		return 0, &ParseError{Pos: s.pos, Msg: "malformed number"}
	}
	s.pos += n
	return float32(f), nil
}

// flag reads an arc flag. Flags may be packed without separators, as in
// "a1 1 0 00 10 10".
func (s *pathScanner) flag() (bool, error) {
	if s.done() {
		return false, &ParseError{Pos: s.pos, Msg: "expected flag"}
	}
	switch s.b[s.pos] {
	case '0':
		s.pos++
		return false, nil
	case '1':
		s.pos++
		return true, nil
	}
	return false, &ParseError{Pos: s.pos, Msg: "flag must be 0 or 1"}
}

func (s *pathScanner) point(rel bool, cur mgl32.Vec2) (mgl32.Vec2, error) {
	x, err := s.number()
	if err != nil {
		return mgl32.Vec2{}, err
	}
	y, err := s.number()
	if err != nil {
		return mgl32.Vec2{}, err
	}
	p := mgl32.Vec2{x, y}
	if rel {
		p = p.Add(cur)
	}
	return p, nil
}

func isCommand(c byte) bool {
	switch c | 0x20 {
	case 'm', 'l', 'h', 'v', 'c', 's', 'q', 't', 'a', 'z':
		return true
	}
	return false
}

// ParsePath parses SVG path data. Relative commands are resolved, H and V
// become lines and the smooth curve forms S and T are expanded with their
// reflected control points.
func ParsePath(d string) (Path, error) {
	s := &pathScanner{b: []byte(d)}
	var path Path

	var cur, start mgl32.Vec2
	var lastCtrl mgl32.Vec2
	var prev byte
	var cmd byte

	for !s.done() {
		c := s.b[s.pos]
		if isCommand(c) {
			cmd = c
			s.pos++
		} else if cmd == 0 {
			return nil, &ParseError{Pos: s.pos, Msg: "path must start with a command"}
		} else if cmd == 'z' || cmd == 'Z' {
			return nil, &ParseError{Pos: s.pos, Msg: "unexpected data after close"}
		}
		rel := cmd >= 'a' && cmd <= 'z'

		switch cmd | 0x20 {
		case 'm':
			p, err := s.point(rel, cur)
			if err != nil {
				return nil, err
			}
			path = append(path, Op{Cmd: MoveTo, Points: []mgl32.Vec2{p}})
			cur, start = p, p
			// Further coordinate pairs are implicit line-tos.
			if rel {
				cmd = 'l'
			} else {
				cmd = 'L'
			}
		case 'l':
			p, err := s.point(rel, cur)
			if err != nil {
				return nil, err
			}
			path = append(path, Op{Cmd: LineTo, Points: []mgl32.Vec2{p}})
			cur = p
		case 'h':
			x, err := s.number()
			if err != nil {
				return nil, err
			}
			if rel {
				x += cur.X()
			}
			cur = mgl32.Vec2{x, cur.Y()}
			path = append(path, Op{Cmd: LineTo, Points: []mgl32.Vec2{cur}})
		case 'v':
			y, err := s.number()
			if err != nil {
				return nil, err
			}
			if rel {
				y += cur.Y()
			}
			cur = mgl32.Vec2{cur.X(), y}
			path = append(path, Op{Cmd: LineTo, Points: []mgl32.Vec2{cur}})
		case 'c', 's':
			var c1 mgl32.Vec2
			if cmd|0x20 == 'c' {
				p, err := s.point(rel, cur)
				if err != nil {
					return nil, err
				}
				c1 = p
			} else if prev == 'c' || prev == 's' {
				c1 = cur.Mul(2).Sub(lastCtrl)
			} else {
				c1 = cur
			}
			c2, err := s.point(rel, cur)
			if err != nil {
				return nil, err
			}
			p, err := s.point(rel, cur)
			if err != nil {
				return nil, err
			}
			path = append(path, Op{Cmd: CubeTo, Points: []mgl32.Vec2{c1, c2, p}})
			lastCtrl, cur = c2, p
		case 'q', 't':
			var c1 mgl32.Vec2
			if cmd|0x20 == 'q' {
				p, err := s.point(rel, cur)
				if err != nil {
					return nil, err
				}
				c1 = p
			} else if prev == 'q' || prev == 't' {
				c1 = cur.Mul(2).Sub(lastCtrl)
			} else {
				c1 = cur
			}
			p, err := s.point(rel, cur)
			if err != nil {
				return nil, err
			}
			path = append(path, Op{Cmd: QuadTo, Points: []mgl32.Vec2{c1, p}})
			lastCtrl, cur = c1, p
		case 'a':
			var arc Arc
			var err error
			if arc.Rx, err = s.number(); err != nil {
				return nil, err
			}
			if arc.Ry, err = s.number(); err != nil {
				return nil, err
			}
			if arc.Rotation, err = s.number(); err != nil {
				return nil, err
			}
			if arc.Large, err = s.flag(); err != nil {
				return nil, err
			}
			if arc.Sweep, err = s.flag(); err != nil {
				return nil, err
			}
			p, err := s.point(rel, cur)
			if err != nil {
				return nil, err
			}
			path = append(path, Op{Cmd: ArcTo, Points: []mgl32.Vec2{p}, Arc: arc})
			cur = p
		case 'z':
			path = append(path, Op{Cmd: Close, Points: []mgl32.Vec2{start}})
			cur = start
		}
		prev = cmd | 0x20
	}
	return path, nil
}
