package assessment

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeDirectJSON(t *testing.T) {
	m := Normalize(`{"points_earned": 8, "level": "proficient"}`)
	require.Equal(t, 8.0, m["points_earned"])
	require.Equal(t, "proficient", m["level"])
}

func TestNormalizeFencedBlock(t *testing.T) {
	raw := "Here is the result: ```json\n{\"points_earned\": 8, \"level\": \"proficient\"}\n``` Thanks!"
	m := Normalize(raw)
	require.Equal(t, 8.0, m["points_earned"])
}

func TestNormalizeBraceSpan(t *testing.T) {
	raw := `Sure! The assessment is {"points_earned": 5, "confidence": "medium"} as requested.`
	m := Normalize(raw)
	require.Equal(t, 5.0, m["points_earned"])
	require.Equal(t, "medium", m["confidence"])
}

func TestNormalizeUnparseableProse(t *testing.T) {
	m := Normalize("I am sorry, I cannot produce structured output right now.")
	require.NotNil(t, m)
	require.Empty(t, m)
}

func TestNormalizeMalformedEverywhere(t *testing.T) {
	m := Normalize("```json\nnot json\n``` and also {broken")
	require.Empty(t, m)
}

func TestNormalizeNestedBraces(t *testing.T) {
	raw := `prefix {"evidence": [{"type": "chat_exchange"}], "points_earned": 3} suffix`
	m := Normalize(raw)
	require.Equal(t, 3.0, m["points_earned"])
	require.Len(t, mapSliceField(m, "evidence"), 1)
}

func TestFieldAccessorDefaults(t *testing.T) {
	m := map[string]any{"level": "proficient", "points_earned": 7.0, "score": 42.0}

	require.Equal(t, "proficient", stringField(m, "level", "inadequate"))
	require.Equal(t, "inadequate", stringField(m, "missing", "inadequate"))
	require.Equal(t, 7.0, floatField(m, "points_earned", 0))
	require.Equal(t, 0.0, floatField(m, "missing", 0))
	require.Equal(t, 42, intField(m, "score", 50))
	require.Equal(t, 50, intField(m, "missing", 50))
	require.Empty(t, stringSliceField(m, "missing"))
	require.Empty(t, mapSliceField(m, "missing"))
}

func TestStringSliceFieldSkipsNonStrings(t *testing.T) {
	m := Normalize(`{"key_strengths": ["one", 2, "three"]}`)
	require.Equal(t, []string{"one", "three"}, stringSliceField(m, "key_strengths"))
}
