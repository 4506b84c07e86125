package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/hardware-cli/internal/model"
)

func TestLoad_EmbeddedIndex(t *testing.T) {
	t.Parallel()

	idx, err := Load()
	require.NoError(t, err)
	for _, ct := range model.ComponentTypes {
		assert.NotEmpty(t, idx.Entries(ct), ct)
	}
	assert.Empty(t, idx.Entries(model.ComponentGeneral))

	var found bool
	for _, e := range idx.Entries(model.ComponentCPU) {
		if e.Canonical.PartNumber == "BX8071512700K" {
			found = true
			assert.Equal(t, "Intel", e.Canonical.Brand)
			assert.Equal(t, "intel_ark_spider", e.SpiderID)
		}
	}
	assert.True(t, found)
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte("- type: PSU\n  model: x\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("- type: CPU\n  brand: Intel\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("not: [valid"))
	assert.Error(t, err)
}

func TestIndex_AddReplacesSameModel(t *testing.T) {
	t.Parallel()

	idx := NewIndex(nil)
	e := Entry{Type: model.ComponentRAM, Canonical: model.Canonical{Brand: "Acme", Model: "Fast 32GB"}}
	assert.True(t, idx.Add(e))

	e.SourceName = "validated"
	e.Specs = []model.SpecField{{Key: "ram.type", Value: "DDR5", Provenance: model.Reference()}}
	assert.False(t, idx.Add(Entry{Type: model.ComponentRAM, Canonical: model.Canonical{Brand: "ACME", Model: "fast 32gb"}, SourceName: "validated", Specs: e.Specs}))

	entries := idx.Entries(model.ComponentRAM)
	require.Len(t, entries, 1)
	assert.Equal(t, "validated", entries[0].SourceName)
	assert.Equal(t, 1, idx.Len())
}

func TestEntry_Candidate(t *testing.T) {
	t.Parallel()

	e := Entry{
		Type:      model.ComponentGPU,
		Canonical: model.Canonical{Brand: "NVIDIA", Model: "GeForce RTX 4090"},
		SourceURL: "https://www.nvidia.com/x",
		SpiderID:  "nvidia_gpu_chip_spider",
	}
	c := e.Candidate(0.96)
	assert.Equal(t, model.TierCatalog, c.Tier)
	assert.InDelta(t, 0.96, c.Score, 1e-9)
	assert.False(t, c.HasSpecs())

	e.Tier = model.TierReference
	e.Specs = []model.SpecField{{Key: "gpu.vram_gb", Value: "24"}}
	c = e.Candidate(0.7)
	assert.Equal(t, model.TierReference, c.Tier)
	assert.True(t, c.HasSpecs())
}

func TestReferenceTable_Lookup(t *testing.T) {
	t.Parallel()

	tbl, err := LoadReferenceTable()
	require.NoError(t, err)
	assert.Positive(t, tbl.Len(model.ComponentGPU))
	assert.Positive(t, tbl.Len(model.ComponentCPU))

	u, ok := tbl.Lookup(model.ComponentGPU, model.Canonical{Brand: "NVIDIA", Model: "GeForce RTX 4090"})
	require.True(t, ok)
	assert.Equal(t, "https://www.techpowerup.com/gpu-specs/geforce-rtx-4090.c3889", u)

	u, ok = tbl.Lookup(model.ComponentCPU, model.Canonical{Brand: "AMD", Model: "AMD Ryzen 9 7950X"})
	require.True(t, ok)
	assert.Contains(t, u, "ryzen-9-7950x.c3018")

	_, ok = tbl.Lookup(model.ComponentCPU, model.Canonical{Brand: "Intel", Model: "Core i3-1000"})
	assert.False(t, ok)

	_, ok = tbl.Lookup(model.ComponentRAM, model.Canonical{Model: "Vengeance"})
	assert.False(t, ok)

	var nilTable *ReferenceTable
	_, ok = nilTable.Lookup(model.ComponentGPU, model.Canonical{Model: "GeForce RTX 4090"})
	assert.False(t, ok)
}
