package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordsAll_Restarts(t *testing.T) {
	rs := Records{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	collect := func() []string {
		var ids []string
		for r := range rs.All() {
			ids = append(ids, r.ID)
		}
		return ids
	}
	assert.Equal(t, []string{"a", "b", "c"}, collect())
	assert.Equal(t, []string{"a", "b", "c"}, collect())

	seq := rs.All()
	for r := range seq {
		assert.Equal(t, "a", r.ID)
		break
	}
	var again []string
	for r := range seq {
		again = append(again, r.ID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, again)
}
