// Package types defines the core domain types for objext.
//
//nolint:revive // types is a common Go package naming convention
package types

import "math"

// ObjectKind identifies the family of reconstructed objects in a collection.
type ObjectKind string

// Object kind constants.
const (
	KindElectron ObjectKind = "electron"
	KindMuon     ObjectKind = "muon"
)

// Valid reports whether k is a known object kind.
func (k ObjectKind) Valid() bool {
	return k == KindElectron || k == KindMuon
}

// Event is one collision event as read from the event store.
// An Event is borrowed by the driver for the duration of a single callback.
type Event struct {
	// Run is the run number.
	Run uint64 `msgpack:"run" json:"run"`
	// Lumi is the luminosity block number.
	Lumi uint64 `msgpack:"lumi" json:"lumi"`
	// Event is the event number within the run.
	Event uint64 `msgpack:"event" json:"event"`
	// Collections maps collection tags to reconstructed objects.
	Collections map[string]Collection `msgpack:"collections" json:"collections"`
}

// Collection is a named, ordered sequence of objects of a single kind.
type Collection struct {
	Kind    ObjectKind      `msgpack:"kind" json:"kind"`
	Objects []PhysicsObject `msgpack:"objects" json:"objects"`
}

// Track holds the kinematics of a fitted track.
type Track struct {
	Pt  float64 `msgpack:"pt" json:"pt"`
	Eta float64 `msgpack:"eta" json:"eta"`
	Phi float64 `msgpack:"phi" json:"phi"`
}

// PhysicsObject is a read-only view of one reconstructed object.
// Transverse momentum, pseudorapidity and azimuth are derived from the
// stored four-momentum.
type PhysicsObject struct {
	Energy float64 `msgpack:"e" json:"e"`
	Px     float64 `msgpack:"px" json:"px"`
	Py     float64 `msgpack:"py" json:"py"`
	Pz     float64 `msgpack:"pz" json:"pz"`
	Charge int     `msgpack:"charge" json:"charge"`
	// IsGlobal marks muons reconstructed with a global (tracker + muon
	// system) fit. Always false for electrons.
	IsGlobal bool `msgpack:"is_global,omitempty" json:"is_global,omitempty"`
	// GlobalTrack is present only for global muons.
	GlobalTrack *Track `msgpack:"global_track,omitempty" json:"global_track,omitempty"`
}

// Pt returns the transverse momentum.
func (o PhysicsObject) Pt() float64 {
	return math.Hypot(o.Px, o.Py)
}

// Phi returns the azimuthal angle in (-pi, pi].
func (o PhysicsObject) Phi() float64 {
	if o.Px == 0 && o.Py == 0 {
		return 0
	}
	return math.Atan2(o.Py, o.Px)
}

// Eta returns the pseudorapidity. Objects with zero momentum have eta 0;
// objects along the beam axis have infinite eta with the sign of pz.
func (o PhysicsObject) Eta() float64 {
	pt := o.Pt()
	if pt == 0 {
		switch {
		case o.Pz > 0:
			return math.Inf(1)
		case o.Pz < 0:
			return math.Inf(-1)
		default:
			return 0
		}
	}
	return math.Asinh(o.Pz / pt)
}
