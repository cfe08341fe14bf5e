package eventgen_test

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventforge/eventgen-go/eventgen"
)

func Test_ProfilePool_Sample_DrawsCoherentProfiles(t *testing.T) {
	pool := eventgen.DefaultProfilePool()
	r := rand.New(rand.NewPCG(7, 0))

	locationByCity := map[string]eventgen.GeoLocation{}
	for _, location := range pool.Locations {
		locationByCity[location.City] = location
	}

	for i := 0; i < 50; i++ {
		profile, err := pool.Sample(r)
		require.NoError(t, err)

		// ip and geo must come from the same location entry
		location, found := locationByCity[profile.City]
		require.True(t, found, "sampled city %q is not in the pool", profile.City)
		assert.Equal(t, location.Country, profile.Country)
		assert.Equal(t, location.Province, profile.Province)
		assert.True(t, strings.HasPrefix(profile.IP, location.IPPrefix+"."),
			"ip %s should fall into the %s block", profile.IP, location.IPPrefix)

		assert.NotEmpty(t, profile.DeviceID)
		assert.NotEmpty(t, profile.OS)
		assert.NotEmpty(t, profile.Model)
		assert.Positive(t, profile.ScreenWidth)
		assert.Positive(t, profile.ScreenHeight)
	}
}

func Test_ProfilePool_Sample_DeviceIDsAreUnique(t *testing.T) {
	pool := eventgen.DefaultProfilePool()
	r := rand.New(rand.NewPCG(7, 0))

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		profile, err := pool.Sample(r)
		require.NoError(t, err)
		require.False(t, seen[profile.DeviceID], "device ids must be unique")
		seen[profile.DeviceID] = true
	}
}

func Test_ProfilePool_Sample_EmptyPoolFails(t *testing.T) {
	pool := eventgen.ProfilePool{}
	_, err := pool.Sample(rand.New(rand.NewPCG(7, 0)))
	assert.ErrorIs(t, err, eventgen.ErrEmptyProfilePool)
}
