package world

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const forestYAML = `
zone:
  id: forest
  name: "Whispering Forest"
  description: "Old growth and older grudges."
  start_room: glade
  rooms:
    - id: glade
      title: "Sunlit Glade"
      description: |
        Shafts of light fall through the canopy.
      exits:
        - direction: north
          target: den
        - direction: east
          target: stream
      properties:
        safe: "true"
    - id: den
      title: "Wolf Den"
      description: "Bones litter the floor."
      exits:
        - direction: south
          target: glade
        - direction: down
          target: burrow
          locked: true
      spawns:
        - template: grey_wolf
          count: 3
          respawn_after: 30s
    - id: burrow
      title: "Burrow"
      description: "Cramped and dark."
      exits:
        - direction: up
          target: den
    - id: stream
      title: "Stream"
      description: "Cold water over round stones."
      exits:
        - direction: west
          target: glade
`

func TestLoadZoneFromBytes(t *testing.T) {
	zone, err := LoadZoneFromBytes([]byte(forestYAML))
	require.NoError(t, err)
	assert.Equal(t, "forest", zone.ID)
	require.Len(t, zone.Rooms, 4)

	glade := zone.Rooms["glade"]
	assert.True(t, glade.IsSafe())
	assert.Equal(t, "Shafts of light fall through the canopy.", glade.Description)

	den := zone.Rooms["den"]
	assert.False(t, den.IsSafe())
	require.Len(t, den.Spawns, 1)
	assert.Equal(t, "grey_wolf", den.Spawns[0].Template)
	assert.Equal(t, 3, den.Spawns[0].Count)
	assert.Equal(t, int64(30_000), den.Spawns[0].RespawnAfterMs())
	assert.True(t, den.Exits[1].Locked)
}

func TestLoadZoneFromBytes_Invalid(t *testing.T) {
	cases := map[string]string{
		"unknown field": "zone:\n  id: z\n  name: Z\n  colour: red\n",
		"no rooms":      "zone:\n  id: z\n  name: Z\n",
		"bad start":     "zone:\n  id: z\n  name: Z\n  start_room: nowhere\n  rooms:\n    - id: a\n      title: A\n",
		"bad spawn":     "zone:\n  id: z\n  name: Z\n  rooms:\n    - id: a\n      title: A\n      spawns:\n        - template: rat\n          count: 0\n",
		"bad respawn":   "zone:\n  id: z\n  name: Z\n  rooms:\n    - id: a\n      title: A\n      spawns:\n        - template: rat\n          count: 1\n          respawn_after: later\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadZoneFromBytes([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadZonesFromDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "forest.yaml"), []byte(forestYAML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README"), []byte("skip"), 0o644))
	zones, err := LoadZonesFromDir(dir)
	require.NoError(t, err)
	assert.Len(t, zones, 1)

	_, err = LoadZonesFromDir(t.TempDir())
	assert.Error(t, err)
}
