package game

import (
	"github.com/sw965/omw/encoding/jsonx"
)

// Save writes the game as JSON. Games and solutions are plain data trees,
// so a round trip reproduces the input exactly.
func Save(g *Game, path string) error {
	return jsonx.Save[Game](*g, path)
}

func Load(path string) (*Game, error) {
	g, err := jsonx.Load[Game](path)
	if err != nil {
		return nil, err
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return &g, nil
}
