package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRepairMojibake(t *testing.T) {
	// UTF-8 text that was decoded as Latin-1 somewhere upstream
	assert.Equal(t, "José", RepairMojibake("JosÃ©"))
	assert.Equal(t, "ação", RepairMojibake("aÃ§Ã£o"))
}

func TestRepairMojibakeLeavesCleanTextAlone(t *testing.T) {
	for _, s := range []string{"", "Ana Souza", "José", "coração", "R$ 1.500,00"} {
		assert.Equal(t, s, RepairMojibake(s))
	}
}

func TestRepairMojibakeNoFalseRepair(t *testing.T) {
	// a lone Ã can be legitimate text; repair must not mangle it when
	// the round-trip does not reduce the marker count
	s := "SÃO PAULO"
	got := RepairMojibake(s)
	if got != s {
		// if it did repair, it must at least still be valid text with
		// fewer corruption markers
		assert.Less(t, mojibakeScore(got), mojibakeScore(s))
	}
}
