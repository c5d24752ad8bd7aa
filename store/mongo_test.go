package store

import (
	"testing"

	"soilsense/models"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestFilterDoc(t *testing.T) {
	q := filterDoc("dev-1", models.ReadingFilter{})
	assert.Equal(t, bson.M{"deviceId": "dev-1"}, q)

	q = filterDoc("dev-1", models.ReadingFilter{
		Status:     models.StatusCritical,
		RequireNPK: true,
		Start:      t0,
	})
	assert.Equal(t, models.StatusCritical, q["status"])
	assert.Equal(t, bson.M{"$ne": nil}, q["measurements.phosphorus.value"])
	assert.Equal(t, bson.M{"$gte": t0}, q["timestamp"])
	assert.NotContains(t, q, "$or")

	q = filterDoc("dev-1", models.ReadingFilter{AlertsOnly: true})
	assert.Contains(t, q, "$or")
}

func TestSortValue(t *testing.T) {
	assert.Equal(t, 1, sortValue(models.SortAsc))
	assert.Equal(t, -1, sortValue(models.SortDesc))
	assert.Equal(t, -1, sortValue(""))
}
