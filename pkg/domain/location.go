package domain

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Location identifies the sender of a message relative to the local
// consensus system: how many levels up (Parents) and the path down from
// there (Interior). It is comparable, so it can key maps and sets.
type Location struct {
	Parents  uint8
	Interior string
}

// Here is the local consensus system itself.
func Here() Location {
	return Location{}
}

// Parent is the consensus system one level up (typically the relay chain).
func Parent() Location {
	return Location{Parents: 1}
}

// NewLocation builds a location from its parts.
func NewLocation(parents uint8, interior ...string) Location {
	return Location{Parents: parents, Interior: strings.Join(interior, "/")}
}

// ParseLocation parses the "<parents>:<interior>" text form, e.g.
// "1:Parachain(1000)" or "0:" for Here.
func ParseLocation(s string) (Location, error) {
	if !utf8.ValidString(s) {
		return Location{}, fmt.Errorf("invalid location: not valid UTF-8")
	}
	parentsPart, interior, ok := strings.Cut(s, ":")
	if !ok {
		return Location{}, fmt.Errorf("invalid location %q: missing ':' separator", s)
	}
	parents, err := strconv.ParseUint(parentsPart, 10, 8)
	if err != nil {
		return Location{}, fmt.Errorf("invalid location %q: parents must be 0-255", s)
	}
	if strings.HasPrefix(interior, "/") || strings.HasSuffix(interior, "/") || strings.Contains(interior, "//") {
		return Location{}, fmt.Errorf("invalid location %q: empty junction", s)
	}
	if strings.ContainsAny(interior, " \t\r\n\x00") {
		return Location{}, fmt.Errorf("invalid location %q: whitespace in interior", s)
	}
	return Location{Parents: uint8(parents), Interior: interior}, nil
}

// MustParseLocation is ParseLocation for literals in tests and defaults.
func MustParseLocation(s string) Location {
	loc, err := ParseLocation(s)
	if err != nil {
		panic(err)
	}
	return loc
}

// IsHere reports whether the location is the local system.
func (l Location) IsHere() bool {
	return l.Parents == 0 && l.Interior == ""
}

// Junctions returns the interior path split into its junctions.
func (l Location) Junctions() []string {
	if l.Interior == "" {
		return nil
	}
	return strings.Split(l.Interior, "/")
}

func (l Location) String() string {
	return strconv.Itoa(int(l.Parents)) + ":" + l.Interior
}

func (l Location) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *Location) UnmarshalText(text []byte) error {
	parsed, err := ParseLocation(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
