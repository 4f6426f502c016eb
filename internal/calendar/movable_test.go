package calendar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputedMovable_MatchesStaticTable(t *testing.T) {
	for _, year := range PopulatedYears() {
		assert.ElementsMatch(t, movableHolidays[year], computedMovable(year), "year %d", year)
	}
}
