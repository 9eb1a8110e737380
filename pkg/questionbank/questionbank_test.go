package questionbank

import (
	"testing"

	"ai-interview-be/pkg/framework"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelect_KnownTrack(t *testing.T) {
	bank := NewBank()

	questions := bank.Select("behavioral", "medium", 3)
	require.Len(t, questions, 3)
	for _, q := range questions {
		assert.NotEmpty(t, q.Text)
		assert.NotEmpty(t, q.StructureHint)
	}
}

func TestSelect_UnknownTrackFallsBackToBehavioral(t *testing.T) {
	bank := NewBank()

	questions := bank.Select("underwater-basket-weaving", "easy", 2)
	require.Len(t, questions, 2)
	assert.Equal(t, "behavioral", questions[0].Category)
}

func TestSelect_CountLargerThanPool(t *testing.T) {
	bank := NewBank()

	questions := bank.Select("backend", "hard", 50)
	assert.Len(t, questions, 3)
}

func TestSelect_CachedSelectionIsStable(t *testing.T) {
	bank := NewBank()

	first := bank.Select("System_Design", "medium", 2)
	second := bank.Select("system_design", "medium", 2)
	assert.Equal(t, first, second)
}

func TestFallbackHint(t *testing.T) {
	assert.Contains(t, FallbackHint("behavioral"), "STAR")
	assert.Contains(t, FallbackHint("system_design"), "architecture")
	assert.Contains(t, FallbackHint("coding"), "complexity")
	assert.Contains(t, FallbackHint(""), "context and definition")
}

func TestFallbackHint_DetectsIntendedFramework(t *testing.T) {
	registry := framework.NewRegistry()

	tests := []struct {
		category string
		want     string
	}{
		{"behavioral", "STAR"},
		{"system_design", "G-C-D-I-O"},
		{"design", "G-C-D-I-O"},
	}
	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			fw := registry.Detect(FallbackHint(tt.category))
			assert.Equal(t, tt.want, fw.Name)
		})
	}
}
