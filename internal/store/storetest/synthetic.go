package storetest

import (
	"math/rand"
	"strings"

	"github.com/Aman-CERP/versio/internal/store"
)

// vocabulary is the word pool for synthetic verses. The first words are
// drawn most often, giving a skewed term distribution like real text.
var vocabulary = strings.Fields(`
and the of that to in he they unto shall for is it be his them
lord god people came said land behold son father children israel
heart spirit faith love hope charity light word earth heaven water
commandments prophet house city king power day night blessed holy
covenant mercy grace repent baptize righteousness truth wisdom peace
mountain river wilderness journey bread fruit tree seed harvest shepherd
`)

var volumes = []string{
	store.VolumeOldTestament,
	store.VolumeNewTestament,
	store.VolumeBookOfMormon,
	store.VolumeDoctrineAndCovenants,
}

// Synthetic returns n reproducible verses spread round-robin over the four
// volumes. Each verse has one to three sentences of 6 to 24 words.
func Synthetic(n int, seed int64) []store.Verse {
	r := rand.New(rand.NewSource(seed))
	verses := make([]store.Verse, n)
	for i := range verses {
		verses[i] = Verse(int64(i+1), volumes[i%len(volumes)], syntheticText(r))
	}
	return verses
}

func syntheticText(r *rand.Rand) string {
	var b strings.Builder
	sentences := 1 + r.Intn(3)
	for s := range sentences {
		if s > 0 {
			b.WriteByte(' ')
		}
		words := 6 + r.Intn(19)
		for w := range words {
			// Squaring skews the pick toward the front of the pool.
			f := r.Float64()
			word := vocabulary[int(f*f*float64(len(vocabulary)))]
			if w == 0 {
				word = strings.ToUpper(word[:1]) + word[1:]
			} else {
				b.WriteByte(' ')
			}
			b.WriteString(word)
		}
		b.WriteByte('.')
	}
	return b.String()
}
