package codec_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/webx403/webx403-go/codec"
)

func TestCanonicalPath(t *testing.T) {
	tests := map[string]struct {
		in   string
		want string
	}{
		"empty becomes root":          {"", "/"},
		"root stays root":             {"/", "/"},
		"plain path unchanged":        {"/hello", "/hello"},
		"trailing slash stripped":     {"/hello/", "/hello"},
		"repeated trailing stripped":  {"/hello//", "/hello"},
		"leading slash added":         {"hello", "/hello"},
		"uppercase lowered":           {"/Api/Me", "/api/me"},
		"slash only sequence to root": {"///", "/"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, tc.want, codec.CanonicalPath(tc.in))
		})
	}
}

func TestCanonicalMethod(t *testing.T) {
	tests := map[string]struct {
		in   string
		want string
	}{
		"lowercase upper-cased": {"get", "GET"},
		"already canonical":     {"POST", "POST"},
		"surrounding space":     {" delete ", "DELETE"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, tc.want, codec.CanonicalMethod(tc.in))
		})
	}
}
