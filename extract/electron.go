package extract

import "github.com/justapithecus/objext/types"

var electronSchema = types.NewSchema("electron",
	floatField("e"),
	floatField("pt"),
	floatField("px"),
	floatField("py"),
	floatField("pz"),
	floatField("eta"),
	floatField("phi"),
	types.Field{Name: "ch", Kind: types.ValueInt},
)

// Electron extracts electron kinematics.
type Electron struct{}

// Name implements Extractor.
func (Electron) Name() string { return "electron" }

// Kind implements Extractor.
func (Electron) Kind() types.ObjectKind { return types.KindElectron }

// Schema implements Extractor.
func (Electron) Schema() types.Schema { return electronSchema }

// Extract implements Extractor.
func (Electron) Extract(ev *types.Event, index int, obj types.PhysicsObject) types.AttributeRecord {
	return newRecord(ev, index,
		types.Float(obj.Energy),
		types.Float(obj.Pt()),
		types.Float(obj.Px),
		types.Float(obj.Py),
		types.Float(obj.Pz),
		types.Float(obj.Eta()),
		types.Float(obj.Phi()),
		types.Int(int64(obj.Charge)),
	)
}
