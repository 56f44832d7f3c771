// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package bvh

import (
	"fmt"
	"strconv"

	"gonum.org/v1/gonum/spatial/r3"
)

// parseHierarchy scans forward from pos for the ROOT line and parses the
// root joint's body. It returns the root and the index of the first line
// after the root's closing brace.
func (p *parser) parseHierarchy(pos int) (*Joint, int, error) {
	for pos < len(p.lines) {
		line := p.lines[pos]
		pos++
		if !line.Is(ROOT) {
			continue
		}
		args := line.Args()
		if len(args) == 0 {
			return nil, pos, errorAt(MalformedJoint, line, "root name", "end of line")
		}
		root, next, err := p.parseJoint(NewJoint(args[0]), pos)
		if err != nil {
			return nil, next, err
		}
		p.logger.Debug("bvh: hierarchy", "root", root.Name, "channels", root.TotalChannels())
		return root, next, nil
	}
	return nil, pos, &Error{Kind: MissingRoot, Expected: "ROOT", Found: "end of input"}
}

// parseJoint consumes the body of a joint, starting at the line after the
// joint's ROOT, JOINT, or End Site line. It returns the joint and the index
// of the line after the joint's closing brace.
func (p *parser) parseJoint(joint *Joint, pos int) (*Joint, int, error) {
	opened := pos
	for pos < len(p.lines) {
		line := p.lines[pos]
		pos++
		switch line.Kind {
		case BLANK, LBRACE:
			// structural only
		case RBRACE:
			return joint, pos, nil
		case OFFSET:
			offset, err := parseOffset(line)
			if err != nil {
				return nil, pos, err
			}
			joint.Offset, joint.HasOffset = offset, true
		case CHANNELS:
			channels, err := parseChannels(line)
			if err != nil {
				return nil, pos, err
			}
			joint.SetChannels(channels)
		case JOINT, ENDSITE:
			name := EndSiteName
			if line.Is(JOINT) {
				args := line.Args()
				if len(args) == 0 {
					return nil, pos, errorAt(MalformedJoint, line, "joint name", "end of line")
				}
				name = args[0]
			}
			child, next, err := p.parseJoint(NewJoint(name), pos)
			if err != nil {
				return nil, next, err
			}
			joint.Children = append(joint.Children, child)
			pos = next
		default:
			return nil, pos, errorAt(UnrecognizedToken, line, "OFFSET, CHANNELS, JOINT, End Site, or }", fmt.Sprintf("%q", line.Text))
		}
	}
	return nil, pos, &Error{
		Kind:     UnterminatedBlock,
		Line:     p.lineNo(opened - 1),
		Expected: fmt.Sprintf("} closing %q", joint.Name),
		Found:    "end of input",
	}
}

// parseOffset expects exactly three finite numbers after the keyword.
func parseOffset(line Line) (r3.Vec, error) {
	args := line.Args()
	if len(args) != 3 {
		return r3.Vec{}, errorAt(MalformedOffset, line, "3 values", strconv.Itoa(len(args)))
	}
	var xyz [3]float64
	for i, arg := range args {
		v, err := parseFinite(arg)
		if err != nil {
			e := errorAt(MalformedOffset, line, "finite number", strconv.Quote(arg))
			e.Err = err
			return r3.Vec{}, e
		}
		xyz[i] = v
	}
	return r3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]}, nil
}

// parseChannels expects a count followed by exactly that many channel names.
func parseChannels(line Line) ([]Channel, error) {
	args := line.Args()
	if len(args) == 0 {
		return nil, errorAt(MalformedChannels, line, "channel count", "end of line")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 0 {
		e := errorAt(MalformedChannels, line, "channel count", strconv.Quote(args[0]))
		e.Err = err
		return nil, e
	}
	names := args[1:]
	if len(names) != n {
		return nil, errorAt(MalformedChannels, line, fmt.Sprintf("%d channel names", n), strconv.Itoa(len(names)))
	}
	channels := make([]Channel, n)
	for i, name := range names {
		ch, ok := ParseChannel(name)
		if !ok {
			return nil, errorAt(MalformedChannels, line, "channel name", strconv.Quote(name))
		}
		channels[i] = ch
	}
	return channels, nil
}
