package policies

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"msgbarrier/pkg/domain"
)

func TestOrigins(t *testing.T) {
	set := NewOrigins(domain.Parent(), domain.MustParseLocation("1:Parachain(1000)"))

	assert.True(t, set.Contains(domain.Parent()))
	assert.True(t, set.Contains(domain.NewLocation(1, "Parachain(1000)")))
	assert.False(t, set.Contains(domain.Here()))
	assert.Equal(t, "{1:,1:Parachain(1000)}", set.String())
}

func TestInterior(t *testing.T) {
	m := Interior(1, "Parachain(")
	assert.True(t, m.Contains(domain.MustParseLocation("1:Parachain(2000)")))
	assert.False(t, m.Contains(domain.MustParseLocation("0:Parachain(2000)")))
	assert.False(t, m.Contains(domain.Parent()))
	assert.True(t, Everything.Contains(domain.Here()))
}
