package repository

import (
	"strings"
	"testing"
)

func TestActiveItemsQueryLimit(t *testing.T) {
	// A non-positive limit scans the whole active list
	query, args := activeItemsQuery(0)
	if strings.Contains(query, "LIMIT") {
		t.Errorf("query with limit 0 must not cap the rows:\n%s", query)
	}
	if len(args) != 1 {
		t.Errorf("args = %v, want only the status", args)
	}

	query, args = activeItemsQuery(20)
	if !strings.Contains(query, "LIMIT $2") {
		t.Errorf("query with limit 20 must cap the rows:\n%s", query)
	}
	if len(args) != 2 || args[1] != 20 {
		t.Errorf("args = %v, want status and 20", args)
	}
}
