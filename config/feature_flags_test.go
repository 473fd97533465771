package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatureFlags_Defaults(t *testing.T) {
	ff := LoadFeatureFlags()
	ctx := &FeatureContext{UserID: "user-1"}

	assert.True(t, ff.IsEnabled(FeatureLogsCompleteAll, ctx))
	assert.True(t, ff.IsEnabled(FeatureAnalyticsHeatmap, ctx))
	assert.False(t, ff.IsEnabled(FeatureCatalogHardDelete, ctx))
	assert.False(t, ff.IsEnabled("nonexistent.flag", ctx))
}

func TestFeatureFlags_AdminSeesEverything(t *testing.T) {
	ff := LoadFeatureFlags()
	assert.True(t, ff.IsEnabled(FeatureCatalogHardDelete, &FeatureContext{UserID: "admin", IsAdmin: true}))
}

func TestFeatureFlags_UserOverrideWins(t *testing.T) {
	ff := LoadFeatureFlags()
	ctx := &FeatureContext{UserID: "user-1"}

	ff.SetUserOverride("user-1", FeatureLogsCompleteAll, false)
	assert.False(t, ff.IsEnabled(FeatureLogsCompleteAll, ctx))

	// Other users are unaffected.
	assert.True(t, ff.IsEnabled(FeatureLogsCompleteAll, &FeatureContext{UserID: "user-2"}))

	ff.ClearUserOverrides("user-1")
	assert.True(t, ff.IsEnabled(FeatureLogsCompleteAll, ctx))
}

func TestFeatureFlags_RolloutIsConsistentPerUser(t *testing.T) {
	ff := LoadFeatureFlags()
	require.NoError(t, ff.SetRolloutPercent(FeatureCatalogHardDelete, 50))

	ctx := &FeatureContext{UserID: "user-1"}
	first := ff.IsEnabled(FeatureCatalogHardDelete, ctx)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, ff.IsEnabled(FeatureCatalogHardDelete, ctx))
	}
}

func TestFeatureFlags_SetRolloutPercentValidates(t *testing.T) {
	ff := LoadFeatureFlags()
	assert.ErrorIs(t, ff.SetRolloutPercent(FeatureCacheStats, 101), ErrInvalidRolloutPercent)
	assert.ErrorIs(t, ff.SetRolloutPercent("nonexistent.flag", 10), ErrFeatureNotFound)
}
