package docnum_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pcruz7/lancer/internal/docnum"
)

func TestFormat(t *testing.T) {
	assert.Equal(t, "QUO-2026-0001", docnum.Format(docnum.PrefixQuote, 2026, 1))
	assert.Equal(t, "INV-2026-0042", docnum.Format(docnum.PrefixInvoice, 2026, 42))
	assert.Equal(t, "INV-2027-12345", docnum.Format(docnum.PrefixInvoice, 2027, 12345))
}
