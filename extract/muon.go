package extract

import "github.com/justapithecus/objext/types"

// Sentinel is written for every attribute of a muon without a global fit.
const Sentinel = -999

var muonSchema = types.NewSchema("muon",
	floatField("e"),
	floatField("pt"),
	floatField("px"),
	floatField("py"),
	floatField("pz"),
	floatField("eta"),
	floatField("phi"),
	types.Field{Name: "ch", Kind: types.ValueInt},
	floatField("glbtrk_pt"),
	floatField("glbtrk_eta"),
	floatField("glbtrk_phi"),
)

// Muon extracts muon kinematics and the global track. Every muon yields a
// record; muons without a global track yield Sentinel values.
type Muon struct{}

// Name implements Extractor.
func (Muon) Name() string { return "muon" }

// Kind implements Extractor.
func (Muon) Kind() types.ObjectKind { return types.KindMuon }

// Schema implements Extractor.
func (Muon) Schema() types.Schema { return muonSchema }

// Extract implements Extractor.
func (Muon) Extract(ev *types.Event, index int, obj types.PhysicsObject) types.AttributeRecord {
	if !obj.IsGlobal || obj.GlobalTrack == nil {
		s := types.Float(Sentinel)
		return newRecord(ev, index, s, s, s, s, s, s, s, types.Int(Sentinel), s, s, s)
	}
	return newRecord(ev, index,
		types.Float(obj.Energy),
		types.Float(obj.Pt()),
		types.Float(obj.Px),
		types.Float(obj.Py),
		types.Float(obj.Pz),
		types.Float(obj.Eta()),
		types.Float(obj.Phi()),
		types.Int(int64(obj.Charge)),
		types.Float(obj.GlobalTrack.Pt),
		types.Float(obj.GlobalTrack.Eta),
		types.Float(obj.GlobalTrack.Phi),
	)
}

// GlobalTypeLabel is the type column value of global muons.
const GlobalTypeLabel = "G"

var globalMuonSchema = types.NewSchema("muon_global",
	types.Field{Name: "type", Kind: types.ValueString},
	floatField("e"),
	floatField("px"),
	floatField("py"),
	floatField("pz"),
	floatField("pt"),
	floatField("eta"),
	floatField("phi"),
	types.Field{Name: "q", Kind: types.ValueInt},
)

// GlobalMuon keeps only global muons and labels them with their type.
type GlobalMuon struct{}

// Name implements Extractor.
func (GlobalMuon) Name() string { return "muon_global" }

// Kind implements Extractor.
func (GlobalMuon) Kind() types.ObjectKind { return types.KindMuon }

// Schema implements Extractor.
func (GlobalMuon) Schema() types.Schema { return globalMuonSchema }

// Select implements Selector.
func (GlobalMuon) Select(objs []types.PhysicsObject) []types.PhysicsObject {
	var out []types.PhysicsObject
	for _, o := range objs {
		if o.IsGlobal {
			out = append(out, o)
		}
	}
	return out
}

// Extract implements Extractor.
func (GlobalMuon) Extract(ev *types.Event, index int, obj types.PhysicsObject) types.AttributeRecord {
	return newRecord(ev, index,
		types.String(GlobalTypeLabel),
		types.Float(obj.Energy),
		types.Float(obj.Px),
		types.Float(obj.Py),
		types.Float(obj.Pz),
		types.Float(obj.Pt()),
		types.Float(obj.Eta()),
		types.Float(obj.Phi()),
		types.Int(int64(obj.Charge)),
	)
}
