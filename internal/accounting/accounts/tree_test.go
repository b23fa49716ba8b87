package accounts

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func ptr(v int64) *int64 { return &v }

func TestBuildTreeNestsAndSorts(t *testing.T) {
	accounts := []Account{
		{ID: 1, Code: "1000", Name: "Assets", IsGroup: true},
		{ID: 2, Code: "1200", Name: "Bank", ParentID: ptr(1)},
		{ID: 3, Code: "1100", Name: "Cash", ParentID: ptr(1)},
		{ID: 4, Code: "2000", Name: "Liabilities"},
		{ID: 5, Code: "1110", Name: "Petty", ParentID: ptr(3)},
	}
	tree := BuildTree(accounts, nil)
	require.Len(t, tree, 2)
	require.Equal(t, "1000", tree[0].Account.Code)
	require.Len(t, tree[0].Children, 2)
	require.Equal(t, "1100", tree[0].Children[0].Account.Code)
	require.Equal(t, "1110", tree[0].Children[0].Children[0].Account.Code)

	sub := BuildTree(accounts, ptr(3))
	require.Len(t, sub, 1)
}

func TestBuildTreeIgnoresCycles(t *testing.T) {
	accounts := []Account{
		{ID: 1, Code: "A", ParentID: ptr(2)},
		{ID: 2, Code: "B", ParentID: ptr(1)},
	}
	require.Empty(t, BuildTree(accounts, nil))
	sub := BuildTree(accounts, ptr(1))
	require.Len(t, sub, 1)
	require.Len(t, sub[0].Children, 1)
	require.Empty(t, sub[0].Children[0].Children)
}
