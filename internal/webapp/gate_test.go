package webapp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecide(t *testing.T) {
	cases := []struct {
		path          string
		authenticated bool
		target        string
		redirect      bool
	}{
		{"/login", false, "", false},
		{"/login", true, "/dashboard", true},
		{"/dashboard", false, "/login", true},
		{"/dashboard", true, "", false},
		{"/employees", false, "/login", true},
		{"/employees", true, "", false},
		{"/employees/abc123/edit", false, "/login", true},
		{"/employees/import", true, "", false},
		{"/logout", false, "/login", true},
		{"/", false, "/login", true},
		{"/", true, "/dashboard", true},
		{"/nope", true, "/dashboard", true},
		{"/nope", false, "/login", true},
		{"/assets/app.css", false, "", false},
		{"/healthz", false, "", false},
		{"/metrics", false, "", false},
	}
	for _, tc := range cases {
		target, redirect := Decide(tc.path, tc.authenticated)
		assert.Equal(t, tc.redirect, redirect, "%s auth=%v", tc.path, tc.authenticated)
		assert.Equal(t, tc.target, target, "%s auth=%v", tc.path, tc.authenticated)
	}
}
