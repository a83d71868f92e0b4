// Package graph defines the typed node graph shared by material
// construction trees and the zone/airflow network. Nodes are a closed set
// of kinds carrying kind-specific payloads; links join named sockets whose
// UIDs stay stable across rebuilds so user-drawn connections can be
// restored after the zone set changes.
package graph
