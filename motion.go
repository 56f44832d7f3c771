// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package bvh

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// BindFrame appends one frame of values to the series of every joint in the
// tree rooted at root. Values are consumed depth-first, parent before
// children, each joint taking one value per channel in channel order.
//
// It returns the number of values consumed. If values is shorter than the
// tree's total channel count, nothing is appended and a FrameValueMismatch
// error is returned. Extra trailing values are not consumed.
//
// A nil root is a MissingRoot error.
func BindFrame(root *Joint, values []float64) (int, error) {
	if root == nil {
		return 0, &Error{Kind: MissingRoot, Expected: "root joint", Found: "nil"}
	}
	return bindFrame(root, values, root.TotalChannels())
}

// bindFrame is BindFrame with the tree's channel count precomputed.
func bindFrame(root *Joint, values []float64, need int) (int, error) {
	if len(values) < need {
		return 0, &Error{
			Kind:     FrameValueMismatch,
			Expected: fmt.Sprintf("%d values", need),
			Found:    strconv.Itoa(len(values)),
		}
	}
	return bindJoint(root, values, 0), nil
}

func bindJoint(joint *Joint, values []float64, idx int) int {
	for i := range joint.Channels {
		joint.Series[i] = append(joint.Series[i], values[idx+i])
	}
	idx += len(joint.Channels)
	for _, child := range joint.Children {
		idx = bindJoint(child, values, idx)
	}
	return idx
}

// parseMotion reads the motion section starting at the line after MOTION.
// It consumes the rest of the input.
func (p *parser) parseMotion(doc *Document, pos int) (int, error) {
	need := doc.Root.TotalChannels()
	haveFrames, haveFrameTime := false, false
	for ; pos < len(p.lines); pos++ {
		line := p.lines[pos]
		switch line.Kind {
		case BLANK:
			continue
		case FRAMES:
			args := line.Args()
			if len(args) != 1 {
				return pos, errorAt(MalformedHeader, line, "frame count", fmt.Sprintf("%q", line.Text))
			}
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 0 {
				e := errorAt(MalformedHeader, line, "frame count", strconv.Quote(args[0]))
				e.Err = err
				return pos, e
			}
			doc.Frames, haveFrames = n, true
			continue
		case FRAMETIME:
			args := line.Args()
			if len(args) != 1 {
				return pos, errorAt(MalformedHeader, line, "frame time", fmt.Sprintf("%q", line.Text))
			}
			t, err := strconv.ParseFloat(args[0], 64)
			if err != nil || t < 0 || math.IsInf(t, 0) || math.IsNaN(t) {
				e := errorAt(MalformedHeader, line, "frame time", strconv.Quote(args[0]))
				e.Err = err
				return pos, e
			}
			doc.FrameTime, haveFrameTime = t, true
			continue
		}

		if !haveFrames {
			return pos, errorAt(MalformedHeader, line, "Frames:", fmt.Sprintf("%q", line.Text))
		} else if !haveFrameTime {
			return pos, errorAt(MalformedHeader, line, "Frame Time:", fmt.Sprintf("%q", line.Text))
		}

		values := make([]float64, len(line.Fields))
		for i, field := range line.Fields {
			v, err := parseFinite(field)
			if err != nil {
				e := errorAt(MalformedFrame, line, "finite number", strconv.Quote(field))
				e.Err = err
				return pos, e
			}
			values[i] = v
		}
		if p.rejectExtraValues && len(values) > need {
			return pos, errorAt(FrameValueMismatch, line, fmt.Sprintf("%d values", need), strconv.Itoa(len(values)))
		}
		if _, err := bindFrame(doc.Root, values, need); err != nil {
			err.(*Error).Line = line.No
			return pos, err
		}
		doc.bound++
	}

	if !haveFrames {
		return pos, &Error{Kind: MalformedHeader, Expected: "Frames:", Found: "end of input"}
	} else if !haveFrameTime {
		return pos, &Error{Kind: MalformedHeader, Expected: "Frame Time:", Found: "end of input"}
	}
	if doc.bound != doc.Frames {
		if p.requireFrameCount {
			return pos, &Error{
				Kind:     FrameCountMismatch,
				Expected: fmt.Sprintf("%d frames", doc.Frames),
				Found:    strconv.Itoa(doc.bound),
			}
		}
		p.logger.Warn("bvh: frame count mismatch", "declared", doc.Frames, "bound", doc.bound)
	}
	p.logger.Debug("bvh: motion", "frames", doc.bound, "frame-time", doc.FrameTime)
	return pos, nil
}

var errNotFinite = errors.New("not a finite number")

// parseFinite parses a decimal value, rejecting NaN and infinities.
func parseFinite(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	} else if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, errNotFinite
	}
	return v, nil
}
