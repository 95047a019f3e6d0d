package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_KnownCodes(t *testing.T) {
	tests := []struct {
		name string
		code int
		want Kind
	}{
		{"authentic", 1, Authentic},
		{"inconclusive", 2, Inconclusive},
		{"fake", 3, Fake},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.code))
		})
	}
}

func TestClassify_UnknownCodes(t *testing.T) {
	for _, code := range []int{0, -1, 4, 5, 99, -100, 1 << 20} {
		assert.Equal(t, Unknown, Classify(code), "code %d should classify as Unknown", code)
	}
}

func TestClassify_UnknownIsZeroValue(t *testing.T) {
	// An absent status must decode to Unknown, never to Authentic.
	var k Kind
	assert.Equal(t, Unknown, k)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "authentic", Authentic.String())
	assert.Equal(t, "inconclusive", Inconclusive.String())
	assert.Equal(t, "fake", Fake.String())
	assert.Equal(t, "unknown", Unknown.String())
	assert.Equal(t, "unknown", Kind(200).String())
}

func TestKind_Label(t *testing.T) {
	assert.Equal(t, "Authentic", Authentic.Label())
	assert.Equal(t, "Scan Inconclusive", Inconclusive.Label())
	assert.Equal(t, "Fake", Fake.Label())
	assert.Equal(t, "Unknown", Unknown.Label())
}
