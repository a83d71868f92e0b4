package scene

import v3 "github.com/deadsy/sdfx/vec/v3"

// Terrain is the building site terrain class.
type Terrain int

const (
	TerrainCity Terrain = iota
	TerrainUrban
	TerrainSuburbs
	TerrainCountry
	TerrainOcean
)

func (t Terrain) String() string {
	switch t {
	case TerrainCity:
		return "City"
	case TerrainUrban:
		return "Urban"
	case TerrainSuburbs:
		return "Suburbs"
	case TerrainCountry:
		return "Country"
	case TerrainOcean:
		return "Ocean"
	default:
		return "unknown"
	}
}

// ShadowCalc selects the shadow calculation method.
type ShadowCalc int

const (
	ShadowPolygonClipping ShadowCalc = iota
	ShadowPixelCounting
)

func (s ShadowCalc) String() string {
	if s == ShadowPixelCounting {
		return "PixelCounting"
	}
	return "PolygonClipping"
}

// Date is a month/day pair within the run period year.
type Date struct {
	Month int
	Day   int
}

// OutputSet toggles the optional report variables.
type OutputSet struct {
	ZoneTemp           bool
	OtherEquipGain     bool
	HeatingRate        bool
	CoolingRate        bool
	SupplyHeating      bool
	HeatRecovery       bool
	SupplyCooling      bool
	PMV                bool
	PPD                bool
	InfiltrationVolume bool
	InfiltrationACH    bool
	WindowSolar        bool
	CO2                bool
	MeanRadiant        bool
	Occupants          bool
	Humidity           bool
	HeatBalance        bool
	PVEnergy           bool
	PVPower            bool
	PVEfficiency       bool
	PVTemperature      bool
	LinkageFlows       bool
	OpeningFactor      bool
}

// Params are the simulation parameters shared by every exported frame.
type Params struct {
	Location   string
	Terrain    Terrain
	Timesteps  int
	ShadowCalc ShadowCalc
	NorthAxis  float64
	Start      Date
	End        Date
	FrameStart int
	FrameEnd   int
	EPVersion  string
	Outputs    OutputSet
	// GeoOffset is added to every exported object location.
	GeoOffset v3.Vec
}

// DefaultParams returns a full-year, single-frame run with zone
// temperatures reported.
func DefaultParams() Params {
	return Params{
		Terrain:    TerrainSuburbs,
		Timesteps:  6,
		Start:      Date{Month: 1, Day: 1},
		End:        Date{Month: 12, Day: 31},
		FrameStart: 0,
		FrameEnd:   0,
		EPVersion:  "9.4.0",
		Outputs:    OutputSet{ZoneTemp: true},
	}
}
