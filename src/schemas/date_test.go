package schemas_test

import (
	"encoding/json"
	"testing"
	"time"

	"assetmanager/src/schemas"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateUsesShortDashLayout(t *testing.T) {
	var body struct {
		Date schemas.Date `json:"date"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2024-07-02"}`), &body))
	assert.Equal(t, time.Date(2024, 7, 2, 0, 0, 0, 0, time.UTC), body.Date.ToTime())

	out, err := json.Marshal(schemas.NewDate(time.Date(2024, 7, 2, 23, 0, 0, 0, time.FixedZone("KST", 9*3600))))
	require.NoError(t, err)
	assert.JSONEq(t, `"2024-07-02"`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"date":"2024.07.02"}`), &body))
}
