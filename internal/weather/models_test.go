package weather

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(v float64) *float64 { return &v }

func TestDeriveCondition(t *testing.T) {
	cases := []struct {
		name   string
		temp   float64
		precip float64
		want   Condition
	}{
		{"dry", 20, 0, ConditionClear},
		{"dry and freezing", -5, 0, ConditionClear},
		{"freezing precip", 0, 0.4, ConditionSnow},
		{"drizzle", 12, 1.9, ConditionLightRain},
		{"downpour", 12, 2, ConditionRain},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DeriveCondition(tc.temp, tc.precip))
		})
	}
}

func TestReadingSnapshot(t *testing.T) {
	snap, ok := Reading{TemperatureC: ptr(-1), PrecipMm: ptr(3)}.Snapshot()
	assert.True(t, ok)
	assert.Equal(t, Snapshot{Temperature: -1, Precipitation: 3, Condition: ConditionSnow}, snap)

	snap, ok = Reading{TemperatureC: ptr(15), PrecipMm: ptr(0), Condition: ConditionCloudy}.Snapshot()
	assert.True(t, ok)
	assert.Equal(t, ConditionCloudy, snap.Condition)

	_, ok = Reading{TemperatureC: ptr(15)}.Snapshot()
	assert.False(t, ok)
	_, ok = Reading{PrecipMm: ptr(0)}.Snapshot()
	assert.False(t, ok)
}

func TestCities(t *testing.T) {
	cities := Cities{{Name: "Scarborough"}, {Name: "Markham"}}
	assert.Equal(t, []string{"Scarborough", "Markham"}, cities.Names())

	c, ok := cities.Lookup("markham")
	assert.True(t, ok)
	assert.Equal(t, "Markham", c.Name)

	_, ok = cities.Lookup("Ajax")
	assert.False(t, ok)
}
