package class

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuotaExempt(t *testing.T) {
	strp := func(s string) *string { return &s }

	tests := []struct {
		name   string
		class  Class
		exempt bool
	}{
		{"regular group class", Class{Name: "Adults BJJ Fundamentals"}, false},
		{"private in name", Class{Name: "Private Coaching Session"}, true},
		{"case insensitive", Class{Name: "PRIVATE session"}, true},
		{"1-1 marker in name", Class{Name: "Striking 1-1"}, true},
		{"1:1 marker in name", Class{Name: "Grappling 1:1"}, true},
		{"one-on-one in class type", Class{Name: "Coaching", ClassType: strp("one-on-one")}, true},
		{"private in class type only", Class{Name: "Morning Session", ClassType: strp("private")}, true},
		{"normal class type", Class{Name: "Kids Judo", ClassType: strp("judo")}, false},
		{"nil class type", Class{Name: "Open Mat", ClassType: nil}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.exempt, tt.class.QuotaExempt())
		})
	}
}
