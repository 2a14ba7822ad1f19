package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultProfiles_CoverAllKinds(t *testing.T) {
	profiles := DefaultProfiles()
	for _, kind := range []Kind{
		KindSearchCampaign, KindSearchDevice, KindSearchKeyword,
		KindGFACampaign, KindGFACreative, KindGFAAudience,
	} {
		p, ok := profiles[kind]
		require.True(t, ok, "missing profile for %s", kind)
		assert.NotEmpty(t, p.HeaderRequires, "%s has no header requirements", kind)
		assert.NotEmpty(t, p.Fragments[RoleCost], "%s has no cost fragments", kind)
		assert.Greater(t, p.ScanWindow, 0, "%s has no scan window", kind)
	}
}

func TestLoadProfileOverrides_MergesPartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roles.yaml")
	content := `search_campaign:
  scan_window: 30
  fragments:
    revenue: ["판매금액", "전환매출액"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	merged, err := LoadProfileOverrides(path, DefaultProfiles())
	require.NoError(t, err)

	p := merged[KindSearchCampaign]
	assert.Equal(t, 30, p.ScanWindow)
	assert.Equal(t, []string{"판매금액", "전환매출액"}, p.Fragments[RoleRevenue])
	// Untouched fields keep their defaults.
	assert.Equal(t, []string{"총비용", "Cost"}, p.Fragments[RoleCost])
	assert.NotEmpty(t, p.HeaderRequires)

	// Other kinds are untouched.
	assert.Equal(t, keywordScanWindow, merged[KindSearchKeyword].ScanWindow)
}

func TestLoadProfileOverrides_UnknownKind(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roles.yaml")
	require.NoError(t, os.WriteFile(path, []byte("bogus_kind:\n  scan_window: 5\n"), 0o644))

	_, err := LoadProfileOverrides(path, DefaultProfiles())
	assert.Error(t, err)
}

func TestLoadProfileOverrides_DoesNotMutateBase(t *testing.T) {
	base := DefaultProfiles()
	path := filepath.Join(t.TempDir(), "roles.yaml")
	require.NoError(t, os.WriteFile(path, []byte("search_campaign:\n  scan_window: 7\n"), 0o644))

	_, err := LoadProfileOverrides(path, base)
	require.NoError(t, err)
	assert.Equal(t, campaignScanWindow, base[KindSearchCampaign].ScanWindow)
}
