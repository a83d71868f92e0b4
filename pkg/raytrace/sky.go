package raytrace

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/sixdouglas/suncalc"
)

// SunPos is the sun position in degrees. Azimuth is measured clockwise from
// north.
type SunPos struct {
	Altitude float64
	Azimuth  float64
}

// Up reports whether the sun is above the horizon.
func (p SunPos) Up() bool { return p.Altitude > 0 }

// SunPosition returns the sun position at t for a site at lat, lon
// (degrees, north and east positive).
func SunPosition(t time.Time, lat, lon float64) SunPos {
	p := suncalc.GetPosition(t, lat, lon)
	// suncalc works in radians with azimuth 0 at south, positive west.
	const rad2deg = 180 / math.Pi
	return SunPos{
		Altitude: p.Altitude * rad2deg,
		Azimuth:  math.Mod(p.Azimuth*rad2deg+180, 360),
	}
}

// Sky is a CIE sky type.
type Sky int

const (
	SkySunny Sky = iota
	SkySunnyNoSun
	SkyIntermediate
	SkyCloudy
	SkyUniform
)

func (s Sky) String() string {
	switch s {
	case SkySunny:
		return "sunny"
	case SkySunnyNoSun:
		return "sunny-no-sun"
	case SkyIntermediate:
		return "intermediate"
	case SkyCloudy:
		return "cloudy"
	case SkyUniform:
		return "uniform"
	default:
		return fmt.Sprintf("Sky(%d)", int(s))
	}
}

func (s Sky) flag(sunUp bool) string {
	switch s {
	case SkySunny:
		if !sunUp {
			return "-s"
		}
		return "+s"
	case SkySunnyNoSun:
		return "-s"
	case SkyIntermediate:
		if !sunUp {
			return "-i"
		}
		return "+i"
	case SkyCloudy:
		return "-c"
	default:
		return "-u"
	}
}

// GenskyArgs returns the gensky arguments describing sky with the sun at
// p. A sun below the horizon drops the solar source.
func GenskyArgs(p SunPos, sky Sky) []string {
	// gensky takes azimuth in degrees west of south.
	az := p.Azimuth - 180
	if az < -180 {
		az += 360
	}
	return []string{
		"-ang",
		strconv.FormatFloat(p.Altitude, 'f', 3, 64),
		strconv.FormatFloat(az, 'f', 3, 64),
		sky.flag(p.Up()),
	}
}

// ConvertWeather converts an EPW weather file to the wea format.
func ConvertWeather(ctx context.Context, run ExecFunc, epw, wea string) error {
	_, stderr, err := run(ctx, "epw2wea", []string{epw, wea}, "")
	if err != nil {
		return fmt.Errorf("raytrace: epw2wea %s: %w", epw, err)
	}
	if stderr != "" {
		return &ProcessError{Command: "epw2wea", Stderr: stderr}
	}
	return nil
}

// SkyMatrix runs gendaymtx over a wea file and returns the sky matrix.
// Resolution 1, 2 or 4 selects 146, 578 or 2306 sky patches; watts reports
// radiant rather than visible values.
func SkyMatrix(ctx context.Context, run ExecFunc, wea string, resolution int, watts bool) (string, error) {
	switch resolution {
	case 1, 2, 4:
	default:
		return "", fmt.Errorf("raytrace: sky matrix resolution %d, want 1, 2 or 4", resolution)
	}
	output := "-O0"
	if watts {
		output = "-O1"
	}
	stdout, _, err := run(ctx, "gendaymtx", []string{"-m", strconv.Itoa(resolution), output, wea}, "")
	if err != nil {
		return "", fmt.Errorf("raytrace: gendaymtx %s: %w", wea, err)
	}
	return stdout, nil
}
