// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package bvh

// Kind implements enums for the keyword that starts a line.
type Kind int

const (
	UNKNOWN Kind = iota

	BLANK  // empty line
	LBRACE // "{"
	RBRACE // "}"

	HIERARCHY // "HIERARCHY"
	ROOT      // "ROOT"
	OFFSET    // "OFFSET"
	CHANNELS  // "CHANNELS"
	JOINT     // "JOINT"
	ENDSITE   // "End Site"
	MOTION    // "MOTION"
	FRAMES    // "Frames:"
	FRAMETIME // "Frame Time:"
)

var kindNames = [...]string{
	UNKNOWN:   "UNKNOWN",
	BLANK:     "Blank",
	LBRACE:    "{",
	RBRACE:    "}",
	HIERARCHY: "HIERARCHY",
	ROOT:      "ROOT",
	OFFSET:    "OFFSET",
	CHANNELS:  "CHANNELS",
	JOINT:     "JOINT",
	ENDSITE:   "End Site",
	MOTION:    "MOTION",
	FRAMES:    "Frames:",
	FRAMETIME: "Frame Time:",
}

func (k Kind) String() string {
	if 0 <= k && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "UNKNOWN"
}

// EndSiteName is the name given to the leaf joint created for an End Site.
const EndSiteName = "End Site"

// Channel is one animated degree of freedom of a joint.
type Channel int

const (
	Xposition Channel = iota
	Yposition
	Zposition
	Xrotation
	Yrotation
	Zrotation
)

var channelNames = [...]string{
	Xposition: "Xposition",
	Yposition: "Yposition",
	Zposition: "Zposition",
	Xrotation: "Xrotation",
	Yrotation: "Yrotation",
	Zrotation: "Zrotation",
}

func (c Channel) String() string {
	if 0 <= c && int(c) < len(channelNames) {
		return channelNames[c]
	}
	return "UNKNOWN"
}

// IsPosition reports whether the channel is a translation.
func (c Channel) IsPosition() bool {
	return c == Xposition || c == Yposition || c == Zposition
}

// IsRotation reports whether the channel is a rotation (in degrees).
func (c Channel) IsRotation() bool {
	return c == Xrotation || c == Yrotation || c == Zrotation
}

// ParseChannel returns the channel for the name.
// Names are matched exactly, as they appear in the file.
func ParseChannel(name string) (Channel, bool) {
	for c, s := range channelNames {
		if s == name {
			return Channel(c), true
		}
	}
	return 0, false
}

// MarshalText lets encoders write the channel by name.
func (c Channel) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Channel) UnmarshalText(text []byte) error {
	ch, ok := ParseChannel(string(text))
	if !ok {
		return &Error{Kind: MalformedChannels, Expected: "channel name", Found: string(text)}
	}
	*c = ch
	return nil
}
