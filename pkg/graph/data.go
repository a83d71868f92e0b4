package graph

// ---------------------------------------------------------------------------
// Constructions
// ---------------------------------------------------------------------------

// ConKind is the surface role a construction plays.
type ConKind int

const (
	ConWall ConKind = iota
	ConFloor
	ConRoof
	ConCeiling
	ConPartition
	ConWindow
	ConDoor
	ConShading
	ConAperture
	ConNone
)

func (k ConKind) String() string {
	switch k {
	case ConWall:
		return "Wall"
	case ConFloor:
		return "Floor"
	case ConRoof:
		return "Roof"
	case ConCeiling:
		return "Ceiling"
	case ConPartition:
		return "Partition"
	case ConWindow:
		return "Window"
	case ConDoor:
		return "Door"
	case ConShading:
		return "Shading"
	case ConAperture:
		return "Aperture"
	case ConNone:
		return "None"
	default:
		return "unknown"
	}
}

// Opaque reports whether surfaces of this kind are written as building
// surfaces in their own right.
func (k ConKind) Opaque() bool {
	switch k {
	case ConWall, ConFloor, ConRoof, ConCeiling, ConPartition:
		return true
	}
	return false
}

// Fenestration reports whether the kind is a window or door.
func (k ConKind) Fenestration() bool {
	return k == ConWindow || k == ConDoor
}

// BoundaryKind is what a construction declares lies beyond its surfaces.
type BoundaryKind int

const (
	BoundExternal  BoundaryKind = iota // outdoors unless an adjacent surface is found
	BoundGround                        // ground coupled
	BoundZone                          // adjacent zone (partition)
	BoundAdiabatic                     // mirrored conditions
)

func (k BoundaryKind) String() string {
	switch k {
	case BoundExternal:
		return "External"
	case BoundGround:
		return "Ground"
	case BoundZone:
		return "Zone"
	case BoundAdiabatic:
		return "Adiabatic"
	default:
		return "unknown"
	}
}

// ConstructionData is the root of a material's construction tree. Layers
// hang off the "Outer layer" input as a chain, outermost first.
type ConstructionData struct {
	Kind      ConKind      `json:"kind"`
	Boundary  BoundaryKind `json:"boundary"`
	Active    bool         `json:"active"`
	FrameArea float64      `json:"frame_area"` // percent of an opening taken by a simple frame
	// Airflow faces get airflow sockets on their zone node.
	Airflow bool `json:"airflow,omitempty"`
}

func (ConstructionData) nodeData() {}

// LayerClass selects the material record a layer is written as.
type LayerClass int

const (
	LayerOpaque LayerClass = iota
	LayerNoMass
	LayerAirGap
	LayerGlazing
	LayerGas
)

func (c LayerClass) String() string {
	switch c {
	case LayerOpaque:
		return "opaque"
	case LayerNoMass:
		return "nomass"
	case LayerAirGap:
		return "airgap"
	case LayerGlazing:
		return "glazing"
	case LayerGas:
		return "gas"
	default:
		return "unknown"
	}
}

// LayerData is one material layer. Only the fields relevant to Class are
// written.
type LayerData struct {
	Class        LayerClass `json:"class"`
	Material     string     `json:"material"`
	Roughness    string     `json:"roughness,omitempty"`
	Thickness    float64    `json:"thickness"`               // m
	Conductivity float64    `json:"conductivity"`            // W/m-K
	Density      float64    `json:"density,omitempty"`       // kg/m3
	SpecificHeat float64    `json:"specific_heat,omitempty"` // J/kg-K
	ThermalAbs   float64    `json:"thermal_abs,omitempty"`
	SolarAbs     float64    `json:"solar_abs,omitempty"`
	VisibleAbs   float64    `json:"visible_abs,omitempty"`
	Resistance   float64    `json:"resistance,omitempty"` // m2-K/W, nomass and airgap

	SolarTrans float64 `json:"solar_trans,omitempty"`
	SolarRefl  float64 `json:"solar_refl,omitempty"`
	VisTrans   float64 `json:"vis_trans,omitempty"`
	VisRefl    float64 `json:"vis_refl,omitempty"`
	IRTrans    float64 `json:"ir_trans,omitempty"`
	Emissivity float64 `json:"emissivity,omitempty"`

	Gas string `json:"gas,omitempty"` // Air, Argon, Krypton, Xenon
}

func (LayerData) nodeData() {}

// PVData attaches a simple photovoltaic generator to every surface of a
// construction.
type PVData struct {
	Fraction     float64 `json:"fraction"`   // active cell area fraction
	Efficiency   float64 `json:"efficiency"` // fixed cell efficiency
	HeatTransfer string  `json:"heat_transfer"`
}

func (PVData) nodeData() {}

// FrameClass selects how an opening's frame is modelled.
type FrameClass int

const (
	FrameSimple   FrameClass = iota // opening shrunk about its centroid
	FrameDetailed                   // frame-and-divider record, inset by frame width
)

func (c FrameClass) String() string {
	switch c {
	case FrameSimple:
		return "simple"
	case FrameDetailed:
		return "detailed"
	default:
		return "unknown"
	}
}

// FrameData holds frame-and-divider parameters.
type FrameData struct {
	Class              FrameClass `json:"class"`
	Width              float64    `json:"width"` // m
	AreaPercent        float64    `json:"area_percent"`
	Conductance        float64    `json:"conductance"` // W/m2-K
	OutsideProjection  float64    `json:"outside_projection"`
	InsideProjection   float64    `json:"inside_projection"`
	DividerType        string     `json:"divider_type"`
	DividerWidth       float64    `json:"divider_width"`
	HorizontalDividers int        `json:"horizontal_dividers"`
	VerticalDividers   int        `json:"vertical_dividers"`
	DividerConductance float64    `json:"divider_conductance"`
	SolarAbs           float64    `json:"solar_abs"`
	VisibleAbs         float64    `json:"visible_abs"`
	Emissivity         float64    `json:"emissivity"`
}

func (FrameData) nodeData() {}

// ---------------------------------------------------------------------------
// Zones
// ---------------------------------------------------------------------------

// InsideConvection selects the zone inside convection algorithm.
type InsideConvection int

const (
	InsideDefault InsideConvection = iota
	InsideSimple
	InsideDetailed
	InsideTrombeWall
	InsideAdaptive
)

func (c InsideConvection) String() string {
	switch c {
	case InsideSimple:
		return "Simple"
	case InsideDetailed:
		return "Detailed"
	case InsideTrombeWall:
		return "TrombeWall"
	case InsideAdaptive:
		return "AdaptiveConvectionAlgorithm"
	default:
		return ""
	}
}

// OutsideConvection selects the zone outside convection algorithm.
type OutsideConvection int

const (
	OutsideDefault OutsideConvection = iota
	OutsideSimpleCombined
	OutsideTARP
	OutsideDOE2
	OutsideMoWiTT
	OutsideAdaptive
)

func (c OutsideConvection) String() string {
	switch c {
	case OutsideSimpleCombined:
		return "SimpleCombined"
	case OutsideTARP:
		return "TARP"
	case OutsideDOE2:
		return "DOE-2"
	case OutsideMoWiTT:
		return "MoWiTT"
	case OutsideAdaptive:
		return "AdaptiveConvectionAlgorithm"
	default:
		return ""
	}
}

// ZoneData binds a network node to a zone by name.
type ZoneData struct {
	Zone        string            `json:"zone"`
	Volume      float64           `json:"volume"`
	Inside      InsideConvection  `json:"inside"`
	Outside     OutsideConvection `json:"outside"`
	Multiplier  int               `json:"multiplier"`
	Control     string            `json:"control"` // airflow venting control mode
	MinVentOpen float64           `json:"min_vent_open"`
}

func (ZoneData) nodeData() {}

// ChimneyInlet is one zone feeding a thermal chimney.
type ChimneyInlet struct {
	Zone     string  `json:"zone"`
	Distance float64 `json:"distance"` // top of chimney to inlet, m
	Ratio    float64 `json:"ratio"`    // share of the chimney flow
	Area     float64 `json:"area"`     // inlet cross section, m2
}

// ThermalChimneyData binds a chimney node to its zone.
type ThermalChimneyData struct {
	Zone           string         `json:"zone"`
	Volume         float64        `json:"volume"`
	WallWidth      float64        `json:"wall_width"`
	OutletArea     float64        `json:"outlet_area"`
	DischargeCoeff float64        `json:"discharge_coeff"`
	Inlets         []ChimneyInlet `json:"inlets"`
}

func (ThermalChimneyData) nodeData() {}

// ---------------------------------------------------------------------------
// Airflow network
// ---------------------------------------------------------------------------

// ExternalData is an airflow external node with wind pressure coefficients
// tabulated against the ambient connection's wind directions.
type ExternalData struct {
	Height float64   `json:"height"`
	WPC    []float64 `json:"wpc"`
}

func (ExternalData) nodeData() {}

// SimpleFlowKind selects the leakage component of a simple flow link.
type SimpleFlowKind int

const (
	FlowCrack SimpleFlowKind = iota
	FlowELA
)

// SimpleFlowData is a crack or effective leakage area component.
type SimpleFlowData struct {
	Link          SimpleFlowKind `json:"link"`
	Coefficient   float64        `json:"coefficient"` // kg/s at 1 Pa
	Exponent      float64        `json:"exponent"`
	ELA           float64        `json:"ela"` // m2
	DischargeCoef float64        `json:"discharge_coef"`
	RefPressure   float64        `json:"ref_pressure"` // Pa
}

func (SimpleFlowData) nodeData() {}

// OpeningKind selects the opening component of a detailed flow link.
type OpeningKind int

const (
	OpeningSimple OpeningKind = iota
	OpeningDetailed
	OpeningHorizontal
)

// DetailedFlowData is an operable opening component.
type DetailedFlowData struct {
	Link          OpeningKind `json:"link"`
	ClosedCoef    float64     `json:"closed_coef"`
	ClosedExp     float64     `json:"closed_exp"`
	MinDensity    float64     `json:"min_density"`
	DischargeCoef float64     `json:"discharge_coef"`
	OpenFactor    float64     `json:"open_factor"`
	Control       string      `json:"control"`
	SlopeAngle    float64     `json:"slope_angle"`
	CrackLength   float64     `json:"crack_length"`
}

func (DetailedFlowData) nodeData() {}

// AmbientConnectionData holds the airflow network simulation control.
type AmbientConnectionData struct {
	Control      string    `json:"control"`
	BuildingType string    `json:"building_type"`
	Azimuth      float64   `json:"azimuth"`
	AspectRatio  float64   `json:"aspect_ratio"`
	WindAngles   []float64 `json:"wind_angles"`
}

func (AmbientConnectionData) nodeData() {}

// CrackReferenceData holds the reference crack conditions.
type CrackReferenceData struct {
	Temperature float64 `json:"temperature"`
	Pressure    float64 `json:"pressure"`
	Humidity    float64 `json:"humidity"`
}

func (CrackReferenceData) nodeData() {}

// ---------------------------------------------------------------------------
// EMS
// ---------------------------------------------------------------------------

// EMSProgramData carries verbatim EMS program text.
type EMSProgramData struct {
	Text string `json:"text"`
}

func (EMSProgramData) nodeData() {}

// EMSScriptedData names a python plugin class.
type EMSScriptedData struct {
	Module string `json:"module"`
	Class  string `json:"class"`
}

func (EMSScriptedData) nodeData() {}

// ---------------------------------------------------------------------------
// Zone loads
// ---------------------------------------------------------------------------

// HVACData is an ideal loads air system. Template systems are written as
// HVAC templates and expanded after export.
type HVACData struct {
	Template        bool    `json:"template"`
	HeatingSetpoint float64 `json:"heating_setpoint"`
	CoolingSetpoint float64 `json:"cooling_setpoint"`
	HeatingLimit    string  `json:"heating_limit"`
	HeatingCapacity float64 `json:"heating_capacity"`
	CoolingLimit    string  `json:"cooling_limit"`
	CoolingCapacity float64 `json:"cooling_capacity"`
	OutdoorAir      float64 `json:"outdoor_air"` // m3/s per person
}

func (HVACData) nodeData() {}

// OccupancyData describes zone occupants.
type OccupancyData struct {
	Method      string  `json:"method"` // People, People/Area, Area/Person
	Count       float64 `json:"count"`
	Watts       float64 `json:"watts"` // activity level
	WorkEff     float64 `json:"work_eff"`
	AirVelocity float64 `json:"air_velocity"`
	Clothing    float64 `json:"clothing"`
	Comfort     bool    `json:"comfort"`
	CO2         bool    `json:"co2"`
}

func (OccupancyData) nodeData() {}

// EquipmentData describes internal equipment gains.
type EquipmentData struct {
	Method string  `json:"method"` // EquipmentLevel, Watts/Area, Watts/Person
	Level  float64 `json:"level"`
}

func (EquipmentData) nodeData() {}

// InfiltrationData describes design flow rate infiltration.
type InfiltrationData struct {
	Method string  `json:"method"` // Flow/Zone, Flow/Area, Flow/ExteriorArea, AirChanges/Hour
	Value  float64 `json:"value"`
}

func (InfiltrationData) nodeData() {}

// ---------------------------------------------------------------------------
// Schedules
// ---------------------------------------------------------------------------

// Until is a value held until a time of day.
type Until struct {
	Time  string  `json:"time"` // "HH:MM"
	Value float64 `json:"value"`
}

// DayRule applies Untils to a set of days ("Weekdays", "Alldays", ...).
type DayRule struct {
	For    string  `json:"for"`
	Untils []Until `json:"untils"`
}

// ScheduleRule applies DayRules through a date ("12/31").
type ScheduleRule struct {
	Through string    `json:"through"`
	Days    []DayRule `json:"days"`
}

// ScheduleData is an authored compact schedule.
type ScheduleData struct {
	Rules []ScheduleRule `json:"rules"`
}

func (ScheduleData) nodeData() {}
