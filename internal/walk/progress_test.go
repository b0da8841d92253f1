package walk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBarProgress(t *testing.T) {
	var buf strings.Builder
	p := BarProgress{W: &buf, Width: 4}
	p.Start(2)
	p.Advance(1, 2, "a.adoc")
	p.Advance(2, 2, "b.adoc")
	p.Finish()

	assert.Equal(t, "\r[    ] 0/2\r[##  ] 1/2\r[####] 2/2\n", buf.String())
}
