package kknd2

import "fmt"

// Conventional layer roles; the format itself does not name layers but the
// stock levels order them this way.
var layerNames = []string{
	"ground",
	"detail",
	"overlay",
}

// LayerName returns the conventional display name for a layer index.
func LayerName(i int) string {
	if i >= 0 && i < len(layerNames) {
		return layerNames[i]
	}
	return fmt.Sprintf("layer %d", i)
}
