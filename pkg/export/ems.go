package export

import (
	"strings"

	"github.com/chazu/envi/pkg/graph"
	"github.com/chazu/envi/pkg/idf"
)

// writeEMS passes EMS program text through verbatim, then writes one
// python plugin instance per scripted node.
func writeEMS(ec *Context, doc *idf.Document) {
	for _, n := range ec.Network.OfKind(graph.NodeEMSProgram) {
		d, ok := n.Data.(graph.EMSProgramData)
		if !ok || n.Bad || strings.TrimSpace(d.Text) == "" {
			continue
		}
		text := d.Text
		if !strings.HasSuffix(text, "\n") {
			text += "\n"
		}
		doc.Add(idf.SectionEMS, text+"\n")
	}
	for _, n := range ec.Network.OfKind(graph.NodeEMSScripted) {
		d, ok := n.Data.(graph.EMSScriptedData)
		if !ok || n.Bad || d.Module == "" || d.Class == "" {
			continue
		}
		doc.Add(idf.SectionEMS, idf.Entry("PythonPlugin:Instance",
			[]string{"Name", "Run During Warmup Days", "Python Module Name", "Plugin Class Name"},
			[]string{n.Name, "No", d.Module, d.Class}))
	}
}
