package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsCampusEmail(t *testing.T) {
	const domain = "uel.ac.uk"

	tests := []struct {
		email string
		want  bool
	}{
		{"student@uel.ac.uk", true},
		{"first.last@uel.ac.uk", true},
		{"u1234567@UEL.AC.UK", true},
		{"  student@uel.ac.uk  ", true},
		{"student@gmail.com", false},
		{"student@uel.ac.uk.evil.com", false},
		{"@uel.ac.uk", false},
		{"studentuel.ac.uk", false},
		{"stu dent@uel.ac.uk", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.want, isCampusEmail(tt.email, domain))
		})
	}
}
