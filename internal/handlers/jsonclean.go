package handlers

import (
	"math"

	"github.com/gin-gonic/gin"
)

// CleanJSON replaces NaN and Inf float values with nil across a payload
// tree so the response stays valid JSON. Aggregations over empty groups
// produce NaN on purpose; the wire contract is null.
func CleanJSON(v any) any {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil
		}
		return t
	case float32:
		f := float64(t)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		return t
	case map[string]any:
		for k, val := range t {
			t[k] = CleanJSON(val)
		}
		return t
	case gin.H:
		for k, val := range t {
			t[k] = CleanJSON(val)
		}
		return t
	case []any:
		for i, val := range t {
			t[i] = CleanJSON(val)
		}
		return t
	case []map[string]any:
		for _, m := range t {
			CleanJSON(m)
		}
		return t
	default:
		return v
	}
}
