package memory_test

import (
	"testing"

	"github.com/aretw0/buml/pkg/adapters/memory"
	"github.com/aretw0/buml/pkg/ports"
)

var _ ports.TokenStore = (*memory.Store)(nil)

func TestMemoryStore_Contract(t *testing.T) {
	ports.RunTokenStoreContract(t, memory.NewStore())
}
