package sink

import "github.com/justapithecus/objext/types"

func muonSchema() types.Schema {
	return types.NewSchema("muon",
		types.Field{Name: "pt", Kind: types.ValueFloat},
		types.Field{Name: "eta", Kind: types.ValueFloat},
		types.Field{Name: "ch", Kind: types.ValueInt},
	)
}

func muonRecord(event uint64, index int, pt, eta float64, ch int64) types.AttributeRecord {
	return types.AttributeRecord{
		Run:   1,
		Event: event,
		Index: index,
		Values: []types.Value{
			types.Int(1),
			types.Int(int64(event)),
			types.Int(int64(index)),
			types.Float(pt),
			types.Float(eta),
			types.Int(ch),
		},
	}
}
