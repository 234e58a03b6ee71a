package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple title", "Inception", "inception"},
		{"spaces become hyphens", "Time Is a Lie", "time-is-a-lie"},
		{"punctuation dropped", "Spider-Man: No Way Home", "spider-man-no-way-home"},
		{"apostrophe dropped", "Don't Look Up", "dont-look-up"},
		{"surrounding whitespace", "   Looper \t", "looper"},
		{"collapsed hyphens", "Sci -- Fi", "sci-fi"},
		{"leading and trailing hyphens", "--Heat--", "heat"},
		{"underscores dropped", "snake_case_title", "snakecasetitle"},
		{"digits kept", "2001: A Space Odyssey", "2001-a-space-odyssey"},
		{"non-ascii dropped", "Amélie", "amlie"},
		{"nothing usable", "!!!", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.input))
		})
	}
}

func TestSlugifyShape(t *testing.T) {
	shape := regexp.MustCompile(`^([a-z0-9]+(-[a-z0-9]+)*)?$`)
	inputs := []string{
		"The Grand Budapest Hotel",
		"  Mad Max: Fury Road!  ",
		"Eddie the Eagle",
		"WALL·E",
		"Crouching Tiger, Hidden Dragon",
		"-_- weird __ input -_-",
		"Tab\tand\nnewline",
		"Ünïcødé & symbols © 2024",
	}

	for _, in := range inputs {
		got := Slugify(in)
		assert.Regexp(t, shape, got, "input %q", in)
		assert.Equal(t, got, Slugify(got), "slug of a slug must be stable for %q", in)
	}
}
