package indicators

import (
	"fmt"
	"strings"

	"github.com/ducminhle1904/indicator-engine/internal/errors"
	"github.com/ducminhle1904/indicator-engine/pkg/types"
)

type columnLength struct {
	name string
	n    int
}

func lengthOf(name string, col []types.NullFloat64) columnLength {
	return columnLength{name: name, n: len(col)}
}

// checkLengths rejects columns that are not aligned on the same rows
func checkLengths(component, operation string, cols ...columnLength) error {
	if len(cols) == 0 {
		return nil
	}
	want := cols[0].n
	for _, c := range cols[1:] {
		if c.n != want {
			parts := make([]string, len(cols))
			for i, col := range cols {
				parts[i] = fmt.Sprintf("%s=%d", col.name, col.n)
			}
			return errors.NewConfigurationError(component, operation, "input columns have different lengths").
				WithContext("lengths", strings.Join(parts, " "))
		}
	}
	return nil
}
