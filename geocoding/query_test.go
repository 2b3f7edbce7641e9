// Copyright 2025 The HerSafety Authors
// SPDX-License-Identifier: Apache-2.0

package geocoding

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeQuery(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Shivaji Nagar", want: "Shivaji Nagar"},
		{in: "  Shivaji \t Nagar\n", want: "Shivaji Nagar"},
		{in: "Cafe\u0301", want: "Caf\u00e9"},
		{in: "Pune\u0007", want: "Pune"},
		{in: "   ", want: ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeQuery(tt.in), "input %q", tt.in)
	}
}

func TestScopedQuery(t *testing.T) {
	assert.Equal(t, "Pune, India", scopedQuery("Pune", "India"))
	assert.Equal(t, "Pune", scopedQuery("Pune", ""))
}
