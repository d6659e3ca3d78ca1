package searcher

import (
	"fmt"
	"math"

	verrors "github.com/Aman-CERP/versio/internal/errors"
)

// CosineSimilarity returns dot(a,b)/(|a||b|), or 0 when either vector has
// zero magnitude. Vectors of different lengths are an ERR_402 error: they
// come from different models.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, verrors.New(verrors.ErrCodeDimensionMismatch,
			fmt.Sprintf("cannot compare %d and %d dimensional vectors", len(a), len(b)), nil).
			WithSuggestion("Rebuild the index with the current embedding model: versio index --force")
	}

	var dot, magA, magB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		magA += x * x
		magB += y * y
	}
	if magA == 0 || magB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB)), nil
}
