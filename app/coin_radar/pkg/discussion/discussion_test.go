package discussion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryTemplate_Build(t *testing.T) {
	q := DefaultQueryTemplate.Build("Berachain")
	assert.Equal(t, Query{Q: "Berachain crypto", Sort: "relevance", Time: "month", Limit: PageSize}, q)

	q = QueryTemplate{}.Build("solayer")
	assert.Equal(t, Query{Q: "solayer", Limit: PageSize}, q)

	q = QueryTemplate{Format: "${asset} OR {asset} token", Sort: "new"}.Build("BERA")
	assert.Equal(t, "$BERA OR BERA token", q.Q)
	assert.Equal(t, "new", q.Sort)
	assert.Empty(t, q.Time)
}
