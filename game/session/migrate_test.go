package session

import (
	"strings"
	"testing"
)

func TestExtractUpMigration(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		contains string
		excludes string
	}{
		{
			name:     "up and down",
			content:  "-- +migrate Up\nCREATE TABLE a (id INT);\n-- +migrate Down\nDROP TABLE a;\n",
			contains: "CREATE TABLE a",
			excludes: "DROP TABLE",
		},
		{
			name:     "up only",
			content:  "-- +migrate Up\nCREATE TABLE b (id INT);\n",
			contains: "CREATE TABLE b",
			excludes: "+migrate",
		},
		{
			name:     "no markers",
			content:  "CREATE TABLE c (id INT);",
			contains: "CREATE TABLE c",
			excludes: "DROP",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractUpMigration(tt.content)
			if !strings.Contains(got, tt.contains) {
				t.Errorf("Expected %q in %q", tt.contains, got)
			}
			if strings.Contains(got, tt.excludes) {
				t.Errorf("Did not expect %q in %q", tt.excludes, got)
			}
		})
	}
}
