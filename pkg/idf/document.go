package idf

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// Section is a block of the document. Sections render in declaration
// order regardless of the order they are filled in.
type Section int

const (
	SectionHeader Section = iota
	SectionBuilding
	SectionSimulation
	SectionRunPeriod
	SectionMaterials
	SectionZones
	SectionGeometryRules
	SectionSurfaces
	SectionSchedules
	SectionGenerators
	SectionThermostats
	SectionEquipment
	SectionHVAC
	SectionOccupancy
	SectionOtherEquipment
	SectionContaminants
	SectionInfiltration
	SectionAirflow
	SectionEMS
	SectionOutputs
	sectionCount
)

var banners = [sectionCount]string{
	SectionMaterials:      "MATERIAL & CONSTRUCTIONS",
	SectionZones:          "ZONES",
	SectionSurfaces:       "SURFACE DEFINITIONS",
	SectionSchedules:      "SCHEDULES",
	SectionGenerators:     "GENERATORS",
	SectionThermostats:    "THERMOSTATS",
	SectionEquipment:      "EQUIPMENT",
	SectionHVAC:           "HVAC",
	SectionOccupancy:      "OCCUPANCY",
	SectionOtherEquipment: "OTHER EQUIPMENT",
	SectionContaminants:   "CONTAMINANTS",
	SectionInfiltration:   "INFILTRATION",
	SectionAirflow:        "AIRFLOW NETWORK",
	SectionEMS:            "EMS",
	SectionOutputs:        "REPORT VARIABLE",
}

// Banner returns the class banner printed before the section, or "" for
// sections written without one.
func (s Section) Banner() string {
	if s < 0 || s >= sectionCount || banners[s] == "" {
		return ""
	}
	return fmt.Sprintf("!-   ===========  ALL OBJECTS IN CLASS: %s ===========\n\n", banners[s])
}

// Document accumulates the text of one output file.
type Document struct {
	sections [sectionCount]strings.Builder
}

// Add appends text to section s.
func (d *Document) Add(s Section, text string) {
	d.sections[s].WriteString(text)
}

// Addf appends formatted text to section s.
func (d *Document) Addf(s Section, format string, args ...any) {
	fmt.Fprintf(&d.sections[s], format, args...)
}

// Len returns the length of the text held by section s.
func (d *Document) Len(s Section) int {
	return d.sections[s].Len()
}

// String returns the text held by section s.
func (d *Document) String(s Section) string {
	return d.sections[s].String()
}

// WriteTo renders the document in section order. Empty sections are
// skipped together with their banner.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for s := Section(0); s < sectionCount; s++ {
		if d.sections[s].Len() == 0 {
			continue
		}
		for _, text := range []string{s.Banner(), d.sections[s].String()} {
			if text == "" {
				continue
			}
			n, err := io.WriteString(w, text)
			total += int64(n)
			if err != nil {
				return total, fmt.Errorf("idf: write: %w", err)
			}
		}
	}
	return total, nil
}

// Bytes renders the document.
func (d *Document) Bytes() []byte {
	var buf bytes.Buffer
	_, _ = d.WriteTo(&buf)
	return buf.Bytes()
}
