package plan

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/delimsql/delimsql/sql"
)

func TestOffset(t *testing.T) {
	testCases := []struct {
		name   string
		offset int64
		rows   int
	}{
		{"zero", 0, 4},
		{"some", 2, 2},
		{"all", 4, 0},
		{"beyond", 100, 0},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			ctx := sql.NewEmptyContext()

			o := NewOffset(tt.offset, NewResolvedTable(newPeopleTable(t)))

			rows, err := sql.NodeToRows(ctx, o)
			require.NoError(err)
			require.Len(rows, tt.rows)
		})
	}
}

func TestOffsetSkipsLeadingRows(t *testing.T) {
	require := require.New(t)
	ctx := sql.NewEmptyContext()

	o := NewOffset(3, NewResolvedTable(newPeopleTable(t)))
	rows, err := sql.NodeToRows(ctx, o)
	require.NoError(err)
	require.Len(rows, 1)
	require.Equal(sql.NewString("dan"), rows[0][1])
}

func TestLimitAfterOffset(t *testing.T) {
	require := require.New(t)
	ctx := sql.NewEmptyContext()

	l := NewLimit(2, NewOffset(1, NewResolvedTable(newPeopleTable(t))))
	rows, err := sql.NodeToRows(ctx, l)
	require.NoError(err)
	require.Len(rows, 2)
	require.Equal(sql.NewString("bob"), rows[0][1])
	require.Equal(sql.NewString("carol"), rows[1][1])
}
