package crossval

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/hardware-cli/internal/model"
)

func TestResult_Candidate(t *testing.T) {
	t.Parallel()

	f := &fakeFetcher{pages: map[string][]model.SpecField{
		"https://www.techpowerup.com/a": {ref("ram.speed_effective_mt_s", "6000", "MT/s"), ref("ram.capacity_gb", "32", "GB")},
		"https://www.crucial.com/b":     {ref("ram.speed_effective_mt_s", "6000", "MT/s"), ref("ram.capacity_gb", "32", "GB")},
	}}
	v := newTestValidator(t, f, Config{})
	res, err := v.Validate(context.Background(), "CT2K16G56C46U5", model.ComponentRAM,
		targets("https://www.techpowerup.com/a", "https://www.crucial.com/b"))
	require.NoError(t, err)

	c := res.Candidate()
	assert.Equal(t, "Crucial", c.Canonical.Brand)
	assert.Equal(t, "CT2K16G56C46U5", c.Canonical.Model)
	assert.Equal(t, "CT2K16G56C46U5", c.Canonical.PartNumber)
	assert.Equal(t, model.TierReference, c.Tier)
	assert.Equal(t, SourceName, c.SourceName)
	assert.Equal(t, "https://www.techpowerup.com/a", c.SourceURL)
	assert.InDelta(t, 1.0, c.Score, 1e-9)
	require.Len(t, c.Specs, 2)
	for _, s := range c.Specs {
		assert.Equal(t, model.StatusExtractedReference, s.Status())
		assert.Equal(t, model.TierReference, s.Tier())
		assert.Equal(t, "srca, srcb", s.SourceName)
		assert.Equal(t, "https://www.techpowerup.com/a", s.SourceURL)
		assert.Equal(t, "validated from 2 sources", s.Notes)
	}

	e := res.Entry()
	assert.Equal(t, model.ComponentRAM, e.Type)
	assert.Equal(t, c.Canonical, e.Canonical)
	assert.Equal(t, model.TierReference, e.Tier)
	assert.Len(t, e.Specs, 2)
}

func TestResult_CanonicalFromReportedFields(t *testing.T) {
	t.Parallel()

	res := &Result{
		Input: "amd 7800x3d",
		Type:  model.ComponentCPU,
		Specs: []ValidatedSpec{{Key: "model", Value: "Ryzen 7 7800X3D", Sources: []string{"a", "b"}, Confidence: 1}},
		Sources: []SourceResult{
			{SourceName: "a", Specs: []model.SpecField{ref("brand", "AMD", ""), ref("model", "Ryzen 7 7800X3D", "")}},
			{SourceName: "b", Specs: []model.SpecField{ref("model", "Ryzen 7 7800X3D", "")}},
		},
	}
	c := res.Canonical()
	assert.Equal(t, "AMD", c.Brand)
	assert.Equal(t, "Ryzen 7 7800X3D", c.Model)
	assert.Empty(t, c.PartNumber)
}

func TestResult_CanonicalStripsBrandFromInput(t *testing.T) {
	t.Parallel()

	res := &Result{Input: "RTX 4060 Ventus", Type: model.ComponentGPU}
	c := res.Canonical()
	assert.Equal(t, "NVIDIA", c.Brand)
	assert.Equal(t, "RTX 4060 Ventus", c.Model)
}

func TestBrandFromPartNumber(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"CMK32GX4M2B3200C16":  "Corsair",
		"CMSX16GX4M2A3200C22": "Corsair",
		"KF432C16BBK2/32":     "Kingston",
		"F5-6000J3038F16GX2":  "G.Skill",
		"CT2K16G56C46U5":      "Crucial",
		"BLS8G4D26BFSEK":      "Crucial",
		"MZ-V9P2T0BW":         "Samsung",
		"WDS100T3X0C":         "Western Digital",
		"ST4000DM004":         "Seagate",
		"BX8071512700K":       "Intel",
		"100-100000910WOF":    "AMD",
		"STRIX B650":          "",
		"":                    "",
	}
	for pn, want := range tests {
		assert.Equal(t, want, BrandFromPartNumber(pn), pn)
	}
}

func TestLabelFromKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Speed Effective Mt S", labelFromKey("ram.speed_effective_mt_s"))
	assert.Equal(t, "Brand", labelFromKey("brand"))
}
