package clipper

import (
	"errors"
	"fmt"
	"strings"
)

// Platform selects which template set a handler renders.
type Platform int

const (
	Unknown Platform = iota
	Windows
	MacOS
	Linux
)

// ErrUnknownPlatform is returned by ParsePlatform for names it does not recognise.
var ErrUnknownPlatform = errors.New("unknown platform")

var platformNames = map[Platform]string{
	Unknown: "unknown",
	Windows: "windows",
	MacOS:   "macos",
	Linux:   "linux",
}

func (p Platform) String() string {
	if n, ok := platformNames[p]; ok {
		return n
	}
	return fmt.Sprintf("platform(%d)", int(p))
}

// DisplayName is the human-facing platform name used in page copy.
func (p Platform) DisplayName() string {
	return templatesFor(p).name
}

// ParsePlatform maps a platform name ("windows", "macos", "linux", "unknown") back to a Platform.
func ParsePlatform(name string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "windows", "win":
		return Windows, nil
	case "macos", "mac", "darwin":
		return MacOS, nil
	case "linux":
		return Linux, nil
	case "", "unknown":
		return Unknown, nil
	}
	return Unknown, fmt.Errorf("%w: %q", ErrUnknownPlatform, name)
}

// MarshalText encodes the platform by name.
func (p Platform) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText accepts any name understood by ParsePlatform.
func (p *Platform) UnmarshalText(b []byte) error {
	v, err := ParsePlatform(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// DetectPlatform derives a Platform from a browser user-agent string.
// Matching is case-insensitive and checked in the order win, mac, linux.
func DetectPlatform(userAgent string) Platform {
	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(ua, "win"):
		return Windows
	case strings.Contains(ua, "mac"):
		return MacOS
	case strings.Contains(ua, "linux"):
		return Linux
	default:
		return Unknown
	}
}
