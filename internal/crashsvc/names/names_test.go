package names

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-Z][a-z]+[A-Z][a-z]+\d{2}$`)
	for i := 0; i < 50; i++ {
		name := Generate()
		assert.Regexp(t, pattern, name)
	}
}
