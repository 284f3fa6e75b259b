package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halvorlinder/jlm/internal/serialize"
)

func TestFixtures_BuildAndDump(t *testing.T) {
	reg, err := defaultRegistry()
	require.NoError(t, err)

	for _, name := range fixtureNames() {
		g, err := fixtureByName(name)
		require.NoErrorf(t, err, "%s: build", name)
		_, err = serialize.Dump(g, reg)
		require.NoErrorf(t, err, "%s: dump", name)
	}
}

func TestFixtures_UnknownNameErrors(t *testing.T) {
	_, err := fixtureByName("nonexistent")
	assert.Error(t, err, "expected an error for an unknown fixture name")
}

func TestFixture_Branch_RoundTrips(t *testing.T) {
	reg, err := defaultRegistry()
	require.NoError(t, err)

	g, err := fixtureByName("branch")
	require.NoError(t, err)
	text, err := serialize.Dump(g, reg)
	require.NoError(t, err)

	g2, err := serialize.Parse(text, reg)
	require.NoError(t, err)
	text2, err := serialize.Dump(g2, reg)
	require.NoError(t, err)
	assert.Equal(t, text, text2, "round trip should dump identical text")
}

func TestFixture_Loopsum_RoundTrips(t *testing.T) {
	reg, err := defaultRegistry()
	require.NoError(t, err)

	g, err := fixtureByName("loopsum")
	require.NoError(t, err)
	text, err := serialize.Dump(g, reg)
	require.NoError(t, err)

	g2, err := serialize.Parse(text, reg)
	require.NoErrorf(t, err, "parse\n--- dumped text ---\n%s", text)
	text2, err := serialize.Dump(g2, reg)
	require.NoError(t, err)
	assert.Equal(t, text, text2, "round trip should dump identical text")
}

func TestFixture_Memory_ExercisesStoreNumStates(t *testing.T) {
	reg, err := defaultRegistry()
	require.NoError(t, err)

	g, err := fixtureByName("memory")
	require.NoError(t, err)
	text, err := serialize.Dump(g, reg)
	require.NoError(t, err)
	assert.Contains(t, text, "NODE OP store 1:bits:32")
}

func TestPrintStats_CountsGammaSubregions(t *testing.T) {
	g, err := fixtureByName("branch")
	require.NoError(t, err)

	var buf strings.Builder
	printStats(&buf, g)
	out := buf.String()
	assert.Contains(t, out, "gamma: 1")
	assert.Contains(t, out, "regions: 3", "expected 3 regions (root + 2 subregions)")
}
