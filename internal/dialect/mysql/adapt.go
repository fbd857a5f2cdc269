package mysql

import (
	"strings"

	"ogma/internal/core"
)

// Adapt returns a copy of the schema rewritten for MySQL. Generic datetime
// columns gain millisecond precision, which MySQL only provides when the
// fractional-seconds parameter is explicit. The input schema is not mutated.
func Adapt(s *core.Schema) *core.Schema {
	adapted := s.Clone()
	adapted.VisitColumns(func(_ *core.Table, c *core.Column) {
		if c.Type.Kind != core.TypeOther {
			return
		}
		if strings.EqualFold(strings.TrimSpace(c.Type.Raw), "DATETIME") {
			c.Type = core.RawType("DATETIME(3)")
		}
	})
	return adapted
}
