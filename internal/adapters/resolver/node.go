package resolver

import (
	"context"

	"github.com/grindlemire/graft"
)

// GenericsNodeID is the unique identifier for the generic method registry Graft node.
const GenericsNodeID graft.ID = "adapter.generics"

func init() {
	graft.Register(graft.Node[*Generics]{
		ID:        GenericsNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Generics, error) {
			return NewGenerics(), nil
		},
	})
}
