package transport

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFlexBoolUnmarshal(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  bool
		fails bool
	}{
		{name: "bool true", input: `true`, want: true},
		{name: "bool false", input: `false`, want: false},
		{name: "string true", input: `"true"`, want: true},
		{name: "string false", input: `"false"`, want: false},
		{name: "null", input: `null`, want: false},
		{name: "garbage string", input: `"yes please"`, fails: true},
		{name: "number", input: `1`, fails: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var b FlexBool
			err := json.Unmarshal([]byte(tc.input), &b)
			if tc.fails {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, bool(b))
		})
	}
}

func TestUserUpdateRequestLegacyAdminString(t *testing.T) {
	var req UserUpdateRequest
	require.NoError(t, json.Unmarshal([]byte(`{"name":"a","email":"a@b.c","isAdmin":"true"}`), &req))
	require.True(t, bool(req.IsAdmin))
}
