package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/hardware-cli/internal/model"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  model.ComponentType
		conf  float64
	}{
		{"intel core i7-12700k", model.ComponentCPU, 0.80},
		{"corsair vengeance lpx 16gb ddr4 3200", model.ComponentRAM, 0.65},
		{"nvidia geforce rtx 4090", model.ComponentGPU, 0.80},
		{"samsung 990 pro 2tb nvme", model.ComponentDisk, 0.95},
		{"asus rog strix z790-e", model.ComponentMainboard, 0.80},
		{"hello world", model.ComponentGeneral, 0.1},
		{"", model.ComponentGeneral, 0.1},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			ct, conf := Classify(tt.input)
			assert.Equal(t, tt.want, ct)
			assert.InDelta(t, tt.conf, conf, 1e-9)
		})
	}
}

func TestClassify_Deterministic(t *testing.T) {
	t.Parallel()

	inputs := []string{"amd ryzen 9 7950x", "kingston fury beast ddr5", "wd black sn850x 1tb", "radeon rx 7800 xt"}
	for _, in := range inputs {
		ct1, c1 := Classify(in)
		for i := 0; i < 5; i++ {
			ct2, c2 := Classify(in)
			assert.Equal(t, ct1, ct2)
			assert.Equal(t, c1, c2)
		}
	}
}

func TestClassify_CaseInsensitive(t *testing.T) {
	t.Parallel()

	ct1, c1 := Classify("NVIDIA GEFORCE RTX 4090")
	ct2, c2 := Classify("nvidia geforce rtx 4090")
	assert.Equal(t, ct1, ct2)
	assert.Equal(t, c1, c2)
}

func TestScore(t *testing.T) {
	t.Parallel()

	assert.Zero(t, Score(0))
	assert.InDelta(t, 0.35, Score(1), 1e-9)
	assert.InDelta(t, 0.50, Score(2), 1e-9)
	assert.InDelta(t, 0.65, Score(3), 1e-9)
	assert.InDelta(t, 0.80, Score(4), 1e-9)
	assert.InDelta(t, 0.95, Score(5), 1e-9)
	assert.InDelta(t, 0.95, Score(12), 1e-9)
}

func TestExplain_TieBreaksOnMatchCount(t *testing.T) {
	t.Parallel()

	// "amd" hits both CPU and GPU once; CPU registers first.
	r := Explain("amd")
	assert.Equal(t, model.ComponentCPU, r.Type)
	assert.Equal(t, 1, r.Matches)

	// Enough GPU evidence outweighs the shared brand.
	r = Explain("amd radeon rx 7800 xt")
	assert.Equal(t, model.ComponentGPU, r.Type)
}
