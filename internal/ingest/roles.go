package ingest

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Role is a semantic column category, independent of its literal header text.
type Role string

const (
	RoleCost        Role = "cost"
	RoleRevenue     Role = "revenue"
	RoleConversions Role = "conversions"
	RoleClicks      Role = "clicks"
	RoleImpressions Role = "impressions"
	RoleName        Role = "name"
)

// Kind identifies one export document kind. Each kind carries its own header
// requirements, fragment table and scan window, since Naver's report variants
// name the same columns differently.
type Kind string

const (
	KindSearchCampaign Kind = "search_campaign"
	KindSearchDevice   Kind = "search_device"
	KindSearchKeyword  Kind = "search_keyword"
	KindGFACampaign    Kind = "gfa_campaign"
	KindGFACreative    Kind = "gfa_creative"
	KindGFAAudience    Kind = "gfa_audience"
)

// Header scan windows per document kind. Campaign-style exports carry long
// metadata preambles, keyword exports do not.
const (
	campaignScanWindow = 50
	keywordScanWindow  = 20
)

// Profile declares how to find and read one document kind: which fragment
// groups a header line must contain, how roles map to column-name fragments
// (in priority order, most specific first), and how deep to scan for the
// header.
type Profile struct {
	Kind Kind `yaml:"kind"`

	// HeaderRequires is a conjunction of fragment groups: a line is the
	// header iff every group has at least one fragment appearing as a
	// substring of the line.
	HeaderRequires [][]string `yaml:"header_requires"`

	// Fragments ranks candidate column-name fragments per role.
	Fragments map[Role][]string `yaml:"fragments"`

	// ScanWindow bounds the header search from line 0.
	ScanWindow int `yaml:"scan_window"`
}

// DefaultProfiles returns the built-in profile table covering both report
// families. The fragment vocabularies come from observed Naver search and
// GFA export headers, Korean first with English fallbacks.
func DefaultProfiles() map[Kind]Profile {
	searchFragments := map[Role][]string{
		RoleCost:        {"총비용", "Cost"},
		RoleRevenue:     {"전환매출액", "매출", "Revenue"},
		RoleConversions: {"전환수", "Conversions"},
		RoleClicks:      {"클릭수", "Clicks"},
		RoleImpressions: {"노출수", "Impressions"},
		RoleName:        {"캠페인", "Campaign"},
	}
	gfaFragments := map[Role][]string{
		RoleCost:        {"총 비용", "Cost"},
		RoleRevenue:     {"구매완료 전환 매출액", "전환 매출액", "Revenue"},
		RoleConversions: {"구매완료수", "전환수", "Conversions"},
		RoleClicks:      {"클릭", "Clicks"},
		RoleImpressions: {"노출", "Impressions"},
		RoleName:        {"소재", "캠페인", "Creative", "Campaign"},
	}

	keywordFragments := map[Role][]string{
		RoleCost:        {"총비용", "Cost"},
		RoleRevenue:     {"전환매출액", "매출", "Revenue"},
		RoleConversions: {"전환수", "Conversions"},
		RoleClicks:      {"클릭수", "Clicks"},
		RoleImpressions: {"노출수", "Impressions"},
		RoleName:        {"검색어", "키워드", "Keyword"},
	}

	costOnly := [][]string{{"총비용", "Cost"}}
	gfaCostOnly := [][]string{{"총 비용", "Cost"}}

	return map[Kind]Profile{
		KindSearchCampaign: {
			Kind:           KindSearchCampaign,
			HeaderRequires: costOnly,
			Fragments:      searchFragments,
			ScanWindow:     campaignScanWindow,
		},
		KindSearchDevice: {
			Kind:           KindSearchDevice,
			HeaderRequires: costOnly,
			Fragments:      searchFragments,
			ScanWindow:     campaignScanWindow,
		},
		KindSearchKeyword: {
			Kind: KindSearchKeyword,
			// Keyword exports are recognized by a search-term column AND a
			// cost column on the same line.
			HeaderRequires: [][]string{{"검색어", "키워드"}, {"총비용", "Cost"}},
			Fragments:      keywordFragments,
			ScanWindow:     keywordScanWindow,
		},
		KindGFACampaign: {
			Kind:           KindGFACampaign,
			HeaderRequires: gfaCostOnly,
			Fragments:      gfaFragments,
			ScanWindow:     campaignScanWindow,
		},
		KindGFACreative: {
			Kind:           KindGFACreative,
			HeaderRequires: gfaCostOnly,
			Fragments:      gfaFragments,
			ScanWindow:     campaignScanWindow,
		},
		KindGFAAudience: {
			Kind:           KindGFAAudience,
			HeaderRequires: gfaCostOnly,
			Fragments:      gfaFragments,
			ScanWindow:     campaignScanWindow,
		},
	}
}

// profileOverride is the YAML shape for one profile override entry.
type profileOverride struct {
	HeaderRequires [][]string        `yaml:"header_requires"`
	Fragments      map[Role][]string `yaml:"fragments"`
	ScanWindow     int               `yaml:"scan_window"`
}

// LoadProfileOverrides merges a roles.yaml file over the built-in profiles.
// Only the fields present in the file are replaced, so a deployment can add
// a new revenue fragment for one kind without restating everything else.
func LoadProfileOverrides(path string, base map[Kind]Profile) (map[Kind]Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: read profile overrides %s", path)
	}

	var overrides map[Kind]profileOverride
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, eris.Wrap(err, "ingest: parse profile overrides")
	}

	merged := make(map[Kind]Profile, len(base))
	for k, p := range base {
		merged[k] = p
	}
	for kind, ov := range overrides {
		p, ok := merged[kind]
		if !ok {
			return nil, eris.Errorf("ingest: override for unknown document kind %q", kind)
		}
		if len(ov.HeaderRequires) > 0 {
			p.HeaderRequires = ov.HeaderRequires
		}
		if ov.ScanWindow > 0 {
			p.ScanWindow = ov.ScanWindow
		}
		if len(ov.Fragments) > 0 {
			frags := make(map[Role][]string, len(p.Fragments))
			for r, f := range p.Fragments {
				frags[r] = f
			}
			for r, f := range ov.Fragments {
				frags[r] = f
			}
			p.Fragments = frags
		}
		merged[kind] = p
	}
	return merged, nil
}
