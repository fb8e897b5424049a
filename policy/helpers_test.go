package policy_test

import "github.com/justapithecus/objext/types"

// eventRecords returns n records belonging to event ev.
func eventRecords(ev uint64, n int) []types.AttributeRecord {
	recs := make([]types.AttributeRecord, n)
	for i := range recs {
		recs[i] = types.AttributeRecord{
			Run:    1,
			Event:  ev,
			Index:  i,
			Values: []types.Value{types.Int(1), types.Int(int64(ev)), types.Int(int64(i))},
		}
	}
	return recs
}
