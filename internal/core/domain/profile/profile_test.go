package profiledomain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	plugindomain "switcherforgames.com/cli/internal/core/domain/plugin"
)

func TestNewProfile(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))

	p, err := NewProfile("war-thunder", "  Low settings ", plugindomain.FeatureSet{plugindomain.FeatureKeymap, plugindomain.FeatureGraphics}, now)
	require.NoError(t, err)

	_, err = uuid.Parse(p.ID)
	assert.NoError(t, err, "profile id should be a uuid")
	assert.Equal(t, "Low settings", p.Name)
	assert.Equal(t, "war-thunder", p.Plugin)
	assert.Equal(t, plugindomain.FeatureSet{plugindomain.FeatureGraphics, plugindomain.FeatureKeymap}, p.Features)
	assert.Equal(t, time.UTC, p.CreatedAt.Location())
	assert.True(t, now.Equal(p.CreatedAt))
	assert.NoError(t, p.Validate())
}

func TestNewProfile_DefaultName(t *testing.T) {
	p, err := NewProfile("g", "", plugindomain.NewFeatureSet(plugindomain.FeatureSaves), time.Now())
	require.NoError(t, err)
	assert.Equal(t, DefaultName, p.Name)
}

func TestNewProfile_RequiresFeatures(t *testing.T) {
	_, err := NewProfile("g", "x", nil, time.Now())
	assert.ErrorIs(t, err, ErrNoFeatures)
}

func TestProfile_Rename(t *testing.T) {
	p, err := NewProfile("g", "a", plugindomain.NewFeatureSet(plugindomain.FeatureGraphics), time.Now())
	require.NoError(t, err)

	require.NoError(t, p.Rename("competitive"))
	assert.Equal(t, "competitive", p.Name)
	assert.ErrorIs(t, p.Rename("   "), ErrEmptyName)
	assert.Equal(t, "competitive", p.Name)
}

func TestProfile_Validate(t *testing.T) {
	bad := &Profile{ID: "not-a-uuid", Features: plugindomain.NewFeatureSet(plugindomain.FeatureGraphics)}
	assert.Error(t, bad.Validate())

	empty := &Profile{ID: uuid.NewString()}
	assert.ErrorIs(t, empty.Validate(), ErrNoFeatures)

	unknown := &Profile{ID: uuid.NewString(), Features: plugindomain.FeatureSet{"audio"}}
	assert.Error(t, unknown.Validate())
}
