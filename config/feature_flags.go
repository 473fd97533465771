package config

import (
	"hash/fnv"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// FeatureFlags manages feature toggles with gradual rollout. Users are
// bucketed by a consistent hash of their ID, so a user stays in or out of
// a rollout across sessions.
type FeatureFlags struct {
	mu sync.RWMutex

	// Core features
	features map[string]*Feature

	// Override rules (for testing/debugging)
	userOverrides map[string]map[string]bool // userID -> feature -> enabled
}

// Feature represents a single feature flag.
type Feature struct {
	Name        string
	Description string
	Enabled     bool

	// Rollout percentage (0-100)
	// Users are assigned based on hash of their ID
	RolloutPercent int

	// Time-based activation
	EnabledFrom  *time.Time
	EnabledUntil *time.Time
}

// FeatureContext provides context for feature flag evaluation.
type FeatureContext struct {
	UserID  string
	IsAdmin bool
}

// Predefined feature flag names.
const (
	// === Catalog Features ===
	FeatureCatalogCustomPractices = "catalog.custom_practices" // User-defined practices
	FeatureCatalogHardDelete      = "catalog.hard_delete"      // Allow deleting unreferenced templates

	// === Logging Features ===
	FeatureLogsCompleteAll = "logs.complete_all" // One-tap bulk completion
	FeatureLogsBackfill    = "logs.backfill"     // Writing logs for past days

	// === Analytics Features ===
	FeatureAnalyticsMomentum = "analytics.momentum" // 7-vs-7-day trend
	FeatureAnalyticsTiers    = "analytics.tiers"    // Achievement tiers
	FeatureAnalyticsHeatmap  = "analytics.heatmap"  // Calendar heatmap grid

	// === Caching Features ===
	FeatureCacheStats = "cache.stats" // Redis-backed progress stats cache
)

// LoadFeatureFlags loads feature flags from environment variables.
func LoadFeatureFlags() *FeatureFlags {
	ff := &FeatureFlags{
		features:      make(map[string]*Feature),
		userOverrides: make(map[string]map[string]bool),
	}

	ff.initializeDefaults()
	ff.loadFromEnvironment()

	return ff
}

// initializeDefaults sets up all features with default values.
func (ff *FeatureFlags) initializeDefaults() {
	ff.features[FeatureCatalogCustomPractices] = &Feature{
		Name:           FeatureCatalogCustomPractices,
		Description:    "Let users define their own practices",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureCatalogHardDelete] = &Feature{
		Name:           FeatureCatalogHardDelete,
		Description:    "Hard-delete unreferenced catalog templates",
		Enabled:        false, // Curators soft-disable by default
		RolloutPercent: 0,
	}

	ff.features[FeatureLogsCompleteAll] = &Feature{
		Name:           FeatureLogsCompleteAll,
		Description:    "Complete every boolean practice for the day in one call",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureLogsBackfill] = &Feature{
		Name:           FeatureLogsBackfill,
		Description:    "Allow writing logs for past days",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureAnalyticsMomentum] = &Feature{
		Name:           FeatureAnalyticsMomentum,
		Description:    "Show the 7-day trend on progress views",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureAnalyticsTiers] = &Feature{
		Name:           FeatureAnalyticsTiers,
		Description:    "Classify users into achievement tiers",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureAnalyticsHeatmap] = &Feature{
		Name:           FeatureAnalyticsHeatmap,
		Description:    "Calendar heatmap of daily completions",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureCacheStats] = &Feature{
		Name:           FeatureCacheStats,
		Description:    "Serve progress stats through the Redis cache",
		Enabled:        true,
		RolloutPercent: 100,
	}
}

// loadFromEnvironment loads feature flag overrides from env vars.
// Format: FEATURE_<NAME>=true|false|<percent>
// Example: FEATURE_LOGS_COMPLETE_ALL=true
// Example: FEATURE_CATALOG_HARD_DELETE=25 (25% rollout)
func (ff *FeatureFlags) loadFromEnvironment() {
	for name, feature := range ff.features {
		envKey := featureNameToEnvKey(name)
		if val := os.Getenv(envKey); val != "" {
			// Try parsing as boolean
			if b, err := strconv.ParseBool(val); err == nil {
				feature.Enabled = b
				if b {
					feature.RolloutPercent = 100
				} else {
					feature.RolloutPercent = 0
				}
				continue
			}

			// Try parsing as percentage
			if p, err := strconv.Atoi(val); err == nil && p >= 0 && p <= 100 {
				feature.Enabled = p > 0
				feature.RolloutPercent = p
			}
		}
	}
}

// featureNameToEnvKey converts feature name to environment variable key.
// "logs.complete_all" -> "FEATURE_LOGS_COMPLETE_ALL"
func featureNameToEnvKey(name string) string {
	key := strings.ToUpper(name)
	key = strings.ReplaceAll(key, ".", "_")
	return "FEATURE_" + key
}

// IsEnabled checks if a feature is enabled for the given context.
func (ff *FeatureFlags) IsEnabled(featureName string, ctx *FeatureContext) bool {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	// Check user overrides first
	if ctx != nil && ctx.UserID != "" {
		if userOverrides, ok := ff.userOverrides[ctx.UserID]; ok {
			if enabled, ok := userOverrides[featureName]; ok {
				return enabled
			}
		}
	}

	feature, ok := ff.features[featureName]
	if !ok {
		return false
	}

	// Admin users get all features
	if ctx != nil && ctx.IsAdmin {
		return true
	}

	if !feature.Enabled {
		return false
	}

	// Check time-based activation
	now := time.Now()
	if feature.EnabledFrom != nil && now.Before(*feature.EnabledFrom) {
		return false
	}
	if feature.EnabledUntil != nil && now.After(*feature.EnabledUntil) {
		return false
	}

	// Check rollout percentage
	if feature.RolloutPercent < 100 && ctx != nil && ctx.UserID != "" {
		return ff.isInRollout(ctx.UserID, featureName, feature.RolloutPercent)
	}

	return feature.RolloutPercent > 0
}

// isInRollout determines if a user is in the rollout percentage.
// Uses consistent hashing so users stay in their bucket.
func (ff *FeatureFlags) isInRollout(userID, featureName string, percent int) bool {
	h := fnv.New32a()
	h.Write([]byte(featureName))
	h.Write([]byte(userID))
	hash := h.Sum32()

	bucket := int(hash % 100)

	return bucket < percent
}

// SetUserOverride sets a feature override for a specific user.
// Useful for testing and debugging.
func (ff *FeatureFlags) SetUserOverride(userID, featureName string, enabled bool) {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	if _, ok := ff.userOverrides[userID]; !ok {
		ff.userOverrides[userID] = make(map[string]bool)
	}
	ff.userOverrides[userID][featureName] = enabled
}

// ClearUserOverrides removes all overrides for a user.
func (ff *FeatureFlags) ClearUserOverrides(userID string) {
	ff.mu.Lock()
	defer ff.mu.Unlock()
	delete(ff.userOverrides, userID)
}

// SetRolloutPercent updates the rollout percentage for a feature.
// Thread-safe for live updates.
func (ff *FeatureFlags) SetRolloutPercent(featureName string, percent int) error {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	feature, ok := ff.features[featureName]
	if !ok {
		return ErrFeatureNotFound
	}

	if percent < 0 || percent > 100 {
		return ErrInvalidRolloutPercent
	}

	feature.RolloutPercent = percent
	feature.Enabled = percent > 0

	return nil
}

// EnableFeature enables a feature at 100% rollout.
func (ff *FeatureFlags) EnableFeature(featureName string) error {
	return ff.SetRolloutPercent(featureName, 100)
}

// DisableFeature disables a feature completely.
func (ff *FeatureFlags) DisableFeature(featureName string) error {
	return ff.SetRolloutPercent(featureName, 0)
}

// GetAllFeatures returns a copy of all feature configurations.
func (ff *FeatureFlags) GetAllFeatures() map[string]*Feature {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	result := make(map[string]*Feature, len(ff.features))
	for k, v := range ff.features {
		featureCopy := *v
		result[k] = &featureCopy
	}
	return result
}

// --- Errors ---

var (
	ErrFeatureNotFound       = &FeatureFlagError{Message: "feature not found"}
	ErrInvalidRolloutPercent = &FeatureFlagError{Message: "rollout percent must be 0-100"}
)

// FeatureFlagError represents a feature flag error.
type FeatureFlagError struct {
	Message string
}

func (e *FeatureFlagError) Error() string {
	return e.Message
}
