package penalty

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoneIsEmpty(t *testing.T) {
	assert.Equal(t, 0, None.PreStartCount())
	assert.Equal(t, 0, None.PostStartCount())
	assert.False(t, None.IsDNF())
	assert.Equal(t, int64(0), None.TimePenaltyMillis())
	assert.Equal(t, "none", None.String())
}

func TestWithCountsAndDNF(t *testing.T) {
	s := None.WithPreStart().WithPreStart().WithPostStart().WithDNF()

	assert.Equal(t, 2, s.PreStartCount())
	assert.Equal(t, 1, s.PostStartCount())
	assert.True(t, s.IsDNF())
	assert.Equal(t, int64(6000), s.TimePenaltyMillis())
}

func TestCountSaturates(t *testing.T) {
	s := None
	for i := 0; i < 300; i++ {
		s = s.WithPreStart()
	}
	assert.Equal(t, 255, s.PreStartCount())
	// Saturation must not spill into the post-start field.
	assert.Equal(t, 0, s.PostStartCount())
	assert.False(t, s.IsDNF())
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		set  Set
	}{
		{"None", None},
		{"PreOnly", None.WithPreStart()},
		{"PostOnly", None.WithPostStart()},
		{"DNFOnly", None.WithDNF()},
		{"Everything", None.WithPreStart().WithPostStart().WithPostStart().WithDNF()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded, err := Decode(tt.set.Encode())
			require.NoError(t, err)
			assert.Equal(t, tt.set, decoded)
		})
	}
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name string
		v    int64
	}{
		{"Negative", -1},
		{"HighBit", 1 << 17},
		{"WayOutOfRange", 1 << 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.v)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestMergeAddsCounts(t *testing.T) {
	a := None.WithPreStart().WithPostStart()
	b := None.WithPreStart()

	merged := a.Merge(b)
	assert.Equal(t, 2, merged.PreStartCount())
	assert.Equal(t, 1, merged.PostStartCount())
	assert.False(t, merged.IsDNF())
}

func TestMergeCommutativeAssociative(t *testing.T) {
	a := None.WithPreStart().WithDNF()
	b := None.WithPostStart()
	c := None.WithPreStart().WithPostStart()

	assert.Equal(t, a.Merge(b), b.Merge(a))
	assert.Equal(t, a.Merge(b).Merge(c), a.Merge(b.Merge(c)))
}

func TestMergeDNFIsSticky(t *testing.T) {
	dnf := None.WithDNF()
	clean := None.WithPreStart()

	assert.True(t, dnf.Merge(clean).IsDNF())
	assert.True(t, clean.Merge(dnf).IsDNF())
}
