package indexdb

import "encoding/json"

func jsonInts(v []int) string {
	if v == nil {
		v = []int{}
	}
	b, _ := json.Marshal(v)
	return string(b)
}

func jsonFloats(v []float64) string {
	if v == nil {
		v = []float64{}
	}
	b, _ := json.Marshal(v)
	return string(b)
}
