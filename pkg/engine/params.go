package engine

import (
	"fmt"

	"github.com/chazu/envi/pkg/scene"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

var terrains = map[string]scene.Terrain{
	"city":    scene.TerrainCity,
	"urban":   scene.TerrainUrban,
	"suburbs": scene.TerrainSuburbs,
	"country": scene.TerrainCountry,
	"ocean":   scene.TerrainOcean,
}

var shadowCalcs = map[string]scene.ShadowCalc{
	"polygon-clipping": scene.ShadowPolygonClipping,
	"pixel-counting":   scene.ShadowPixelCounting,
}

// outputFlags maps output keywords to their toggles.
func outputFlags(o *scene.OutputSet) map[string]*bool {
	return map[string]*bool{
		"zone-temp":           &o.ZoneTemp,
		"other-equip-gain":    &o.OtherEquipGain,
		"heating-rate":        &o.HeatingRate,
		"cooling-rate":        &o.CoolingRate,
		"supply-heating":      &o.SupplyHeating,
		"heat-recovery":       &o.HeatRecovery,
		"supply-cooling":      &o.SupplyCooling,
		"pmv":                 &o.PMV,
		"ppd":                 &o.PPD,
		"infiltration-volume": &o.InfiltrationVolume,
		"infiltration-ach":    &o.InfiltrationACH,
		"window-solar":        &o.WindowSolar,
		"co2":                 &o.CO2,
		"mean-radiant":        &o.MeanRadiant,
		"occupants":           &o.Occupants,
		"humidity":            &o.Humidity,
		"heat-balance":        &o.HeatBalance,
		"pv-energy":           &o.PVEnergy,
		"pv-power":            &o.PVPower,
		"pv-efficiency":       &o.PVEfficiency,
		"pv-temperature":      &o.PVTemperature,
		"linkage-flows":       &o.LinkageFlows,
		"opening-factor":      &o.OpeningFactor,
	}
}

var paramForms = map[string]builtin{
	// (building :name "office" :location "London" :terrain :city :north 15
	//           :timesteps 6 :shadow-calc :pixel-counting :ep-version "9.4.0"
	//           :geo-offset (vec3 0 0 0))
	"building": func(b *builder, args []zygo.Sexp) (zygo.Sexp, error) {
		a := parseArgs("building", args)
		p := &b.sc.Params
		a.str("name", &b.sc.Name)
		a.str("location", &p.Location)
		kwEnum(a, "terrain", terrains, &p.Terrain)
		a.float("north", &p.NorthAxis)
		a.int("timesteps", &p.Timesteps)
		kwEnum(a, "shadow-calc", shadowCalcs, &p.ShadowCalc)
		a.str("ep-version", &p.EPVersion)
		a.vec("geo-offset", &p.GeoOffset)
		if err := a.done(); err != nil {
			return zygo.SexpNull, err
		}
		if p.Timesteps < 1 || p.Timesteps > 60 {
			return zygo.SexpNull, fmt.Errorf("building: timesteps: %d out of range 1..60", p.Timesteps)
		}
		return &zygo.SexpStr{S: b.sc.Name}, nil
	},

	// (run-period :start-month 1 :start-day 1 :end-month 12 :end-day 31)
	"run-period": func(b *builder, args []zygo.Sexp) (zygo.Sexp, error) {
		a := parseArgs("run-period", args)
		p := &b.sc.Params
		a.int("start-month", &p.Start.Month)
		a.int("start-day", &p.Start.Day)
		a.int("end-month", &p.End.Month)
		a.int("end-day", &p.End.Day)
		if err := a.done(); err != nil {
			return zygo.SexpNull, err
		}
		for _, d := range []scene.Date{p.Start, p.End} {
			if d.Month < 1 || d.Month > 12 || d.Day < 1 || d.Day > 31 {
				return zygo.SexpNull, fmt.Errorf("run-period: invalid date %d/%d", d.Month, d.Day)
			}
		}
		return zygo.SexpNull, nil
	},

	// (frames 0 10)
	"frames": func(b *builder, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("frames requires a start and an end frame, got %d arguments", len(args))
		}
		start, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("frames: start: %w", err)
		}
		end, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("frames: end: %w", err)
		}
		if end < start {
			return zygo.SexpNull, fmt.Errorf("frames: end %d before start %d", int(end), int(start))
		}
		b.sc.Params.FrameStart, b.sc.Params.FrameEnd = int(start), int(end)
		return zygo.SexpNull, nil
	},

	// (outputs :zone-temp true :co2 true :linkage-flows true)
	"outputs": func(b *builder, args []zygo.Sexp) (zygo.Sexp, error) {
		a := parseArgs("outputs", args)
		for key, dst := range outputFlags(&b.sc.Params.Outputs) {
			a.bool(key, dst)
		}
		return zygo.SexpNull, a.done()
	},

	// (vec3 1 2 3)
	"vec3": func(b *builder, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var xyz [3]float64
		for i, arg := range args {
			f, err := toFloat64(arg)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %c: %w", "xyz"[i], err)
			}
			xyz[i] = f
		}
		return &sexpVec3{vec: v3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]}}, nil
	},
}
