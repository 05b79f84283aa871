package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alekperov-Vitalii/Diplom/internal/domain"
)

func TestAllProfilesPresent(t *testing.T) {
	all := All()
	require.Len(t, all, 9)
	for i, p := range all {
		assert.Equal(t, i+1, p.ID)
		assert.NotEmpty(t, p.Name)
		assert.Greater(t, p.DustEquilibrium, p.DustInitial,
			"dust equilibrium should sit above the initial level")
	}
}

func TestGetUnknownProfile(t *testing.T) {
	_, err := Get(0)
	assert.ErrorIs(t, err, domain.ErrInvalidProfile)

	_, err = Get(10)
	assert.ErrorIs(t, err, domain.ErrInvalidProfile)
}

func TestOptimalHumidityProfilesAreStable(t *testing.T) {
	for _, id := range []int{2, 5, 8} {
		p, err := Get(id)
		require.NoError(t, err)
		assert.Equal(t, 50.0, p.HumidityInitial)
		assert.Equal(t, 50.0, p.HumidityEquil)
		assert.Zero(t, p.HumidityRate)
	}
}

func TestManagerSwitch(t *testing.T) {
	m := NewManager(DefaultProfileID)
	assert.Equal(t, 5, m.Current().ID)

	p, err := m.Switch(9)
	require.NoError(t, err)
	assert.Equal(t, "High Dust, High Humidity", p.Name)
	assert.Equal(t, 9, m.Current().ID)

	_, err = m.Switch(42)
	assert.ErrorIs(t, err, domain.ErrInvalidProfile)
	assert.Equal(t, 9, m.Current().ID, "failed switch must not change the active profile")
}

func TestManagerFallsBackToDefault(t *testing.T) {
	m := NewManager(-3)
	assert.Equal(t, DefaultProfileID, m.Current().ID)
}
