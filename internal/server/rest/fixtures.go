package rest

import (
	"embed"
	"errors"
	"io/fs"
)

//go:embed fixtures/*.json
var fixtureFS embed.FS

var errUnknownResource = errors.New("unknown resource")

// loadFixture returns the canned payload for resource name.
func loadFixture(name string) ([]byte, error) {
	data, err := fixtureFS.ReadFile("fixtures/" + name + ".json")
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errUnknownResource
	}
	return data, err
}
