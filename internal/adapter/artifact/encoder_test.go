package artifact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/lfb-response-predictor/internal/domain"
)

func TestClassEncoder(t *testing.T) {
	enc, err := NewClassEncoder([]string{"A21", "A22", "G27"})
	require.NoError(t, err)

	codes, err := enc.Transform([]string{"G27", "A21"})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 0}, codes)
	assert.Equal(t, []string{"A21", "A22", "G27"}, enc.Classes())
}

func TestClassEncoder_Unseen(t *testing.T) {
	enc, err := NewClassEncoder([]string{"A21"})
	require.NoError(t, err)

	_, err = enc.Transform([]string{"Z99"})
	require.ErrorIs(t, err, domain.ErrUnseenLabel)
	assert.Contains(t, err.Error(), "Z99")
}

func TestClassEncoder_Duplicate(t *testing.T) {
	_, err := NewClassEncoder([]string{"A21", "A21"})
	require.Error(t, err)
}
