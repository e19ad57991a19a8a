package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasAny(t *testing.T) {
	assert.True(t, HasAny("mud after rain", "rain"))
	assert.False(t, HasAny("Rain", "rain"))
	assert.False(t, HasAny("anything"))
}

func TestHasAnyFold(t *testing.T) {
	cases := []struct {
		s    string
		subs []string
		want bool
	}{
		{"Morning RUN", []string{"run", "jog"}, true},
		{"jogging club", []string{"run", "jog"}, true},
		{"Dentist", []string{"run", "jog"}, false},
		{"High", []string{"HIGH"}, true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, HasAnyFold(tc.s, tc.subs...), tc.s)
	}
}
