package utils_test

import (
	"testing"
	"time"

	"assetmanager/src/utils"

	"github.com/stretchr/testify/assert"
)

func TestMemo(t *testing.T) {
	now := time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)

	t.Run("serves the value until the ttl passes", func(t *testing.T) {
		memo := utils.NewMemo[map[string]string](time.Minute)
		_, gen, ok := memo.Load(now)
		assert.False(t, ok)
		assert.True(t, memo.Store(map[string]string{"USD_KRW": "1300"}, gen, now))

		value, _, ok := memo.Load(now.Add(59 * time.Second))
		assert.True(t, ok)
		assert.Equal(t, "1300", value["USD_KRW"])

		_, _, ok = memo.Load(now.Add(time.Minute))
		assert.False(t, ok)
	})

	t.Run("drops a value computed before Invalidate", func(t *testing.T) {
		memo := utils.NewMemo[string](time.Minute)
		_, gen, _ := memo.Load(now)
		memo.Invalidate()

		assert.False(t, memo.Store("stale", gen, now))
		_, _, ok := memo.Load(now)
		assert.False(t, ok)

		_, gen, _ = memo.Load(now)
		assert.True(t, memo.Store("fresh", gen, now))
		value, _, ok := memo.Load(now)
		assert.True(t, ok)
		assert.Equal(t, "fresh", value)
	})
}
