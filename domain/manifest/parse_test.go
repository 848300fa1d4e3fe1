package manifest

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Structure(t *testing.T) {
	input := `// app build script
"appbuild"
{
	"appid" "480"
	depots
	{
		"481" { "contentroot" "c:\\content" }
	}
}
`
	root, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	want := &Node{
		IsBlock: true,
		Children: []*Node{
			{
				Key:     "appbuild",
				IsBlock: true,
				Children: []*Node{
					{Key: "appid", Value: "480"},
					{
						Key:     "depots",
						IsBlock: true,
						Children: []*Node{
							{
								Key:     "481",
								IsBlock: true,
								Children: []*Node{
									{Key: "contentroot", Value: `c:\content`},
								},
							},
						},
					},
				},
			},
		},
	}

	if diff := cmp.Diff(want, root); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "unterminated string", input: `"appbuild" { "appid" "480 }`},
		{name: "missing close", input: `"appbuild" { "appid" "480"`},
		{name: "stray close", input: `"appid" "480" }`},
		{name: "key without value", input: `"appbuild" { "appid" }`},
		{name: "anonymous block", input: `{ "appid" "480" }`},
		{name: "single slash", input: `/ "appid" "480"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrSyntax), "got %v", err)
		})
	}
}

func TestNode_FindMissing(t *testing.T) {
	root, err := Parse(strings.NewReader(`"a" { "b" "c" }`))
	require.NoError(t, err)

	assert.Nil(t, root.Find("a", "x"))
	assert.Nil(t, root.Find("a", "b", "c"))
	assert.Equal(t, "c", root.Find("A", "B").Value)
}
