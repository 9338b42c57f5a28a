package usecase

import (
	"testing"

	"github.com/smartshop/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCandidates_Sources(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantNames []string
	}{
		{
			name:      "bare array",
			text:      `[{"name":"A","url":"https://a.example"},{"name":"B","url":"https://b.example"}]`,
			wantNames: []string{"A", "B"},
		},
		{
			name:      "fenced json block with prose",
			text:      "Here are some options:\n```json\n[{\"name\":\"A\",\"url\":\"https://a.example\"}]\n```\nLet me know!",
			wantNames: []string{"A"},
		},
		{
			name:      "untagged fence",
			text:      "```\n[{\"name\":\"A\",\"url\":\"https://a.example\"}]\n```",
			wantNames: []string{"A"},
		},
		{
			name:      "array embedded in prose",
			text:      `I found these: [{"name":"A","url":"https://a.example"}]`,
			wantNames: []string{"A"},
		},
		{
			name:      "empty array",
			text:      "[]",
			wantNames: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := ParseCandidates(tt.text)
			require.NoError(t, err)

			names := make([]string, 0, len(parsed.Candidates))
			for _, c := range parsed.Candidates {
				names = append(names, c.Name)
			}
			assert.Equal(t, tt.wantNames, names)
		})
	}
}

func TestParseCandidates_Malformed(t *testing.T) {
	corpus := map[string]string{
		"no json at all":              "Sorry, I could not find any alternatives.",
		"empty response":              "",
		"trailing prose with brackets": `[{"name":"A","url":"https://a.example"}] See sources [1] and [2].`,
		"trailing comma":              `[{"name":"A","url":"https://a.example"},]`,
		"object instead of array":     `{"name":"A","url":"https://a.example"}`,
		"truncated output":            `[{"name":"A","url":"https://a.exa`,
		"broken fenced block":         "```json\n[{\"name\": \"A\",\n```",
		"fence wins over valid array": "```json\nnot json\n```\n[{\"name\":\"A\",\"url\":\"https://a.example\"}]",
	}

	for name, text := range corpus {
		t.Run(name, func(t *testing.T) {
			var parsed *ParsedCandidates
			var err error
			assert.NotPanics(t, func() { parsed, err = ParseCandidates(text) })
			assert.Nil(t, parsed)
			assert.ErrorIs(t, err, domain.ErrAIParseFailure)
		})
	}
}

func TestParseCandidates_ItemValidation(t *testing.T) {
	text := `[
		{"name":"Valid","url":"https://a.example","price":"$149.99","description":"Good","source":"Walmart","imageUrl":"https://img.example/a.jpg"},
		{"name":"","url":"https://b.example"},
		{"name":"No URL"},
		{"name":"   ","url":"https://c.example"},
		{"name":42,"url":"https://d.example"},
		{"name":"Bad URL type","url":["https://e.example"]},
		"just a string",
		null,
		{"name":"Price unknown","url":"https://f.example","price":null,"imageUrl":null},
		{"name":"Price text","url":"https://g.example","price":"N/A"}
	]`

	parsed, err := ParseCandidates(text)
	require.NoError(t, err)
	require.Len(t, parsed.Candidates, 3)
	assert.Equal(t, 7, parsed.Dropped)

	valid := parsed.Candidates[0]
	assert.Equal(t, "Valid", valid.Name)
	assert.Equal(t, "https://a.example", valid.URL)
	require.NotNil(t, valid.Price)
	assert.InDelta(t, 149.99, *valid.Price, 1e-9)
	assert.Equal(t, "Good", *valid.Description)
	assert.Equal(t, "Walmart", *valid.Source)
	assert.Equal(t, "https://img.example/a.jpg", *valid.ImageURL)

	unknown := parsed.Candidates[1]
	assert.Nil(t, unknown.Price)
	assert.Nil(t, unknown.ImageURL)
	assert.Nil(t, unknown.Description)

	assert.Nil(t, parsed.Candidates[2].Price)

	for _, c := range parsed.Candidates {
		assert.NotEmpty(t, c.Name)
		assert.NotEmpty(t, c.URL)
	}
}

func TestParseObject(t *testing.T) {
	t.Run("plain object", func(t *testing.T) {
		obj, err := ParseObject(`{"name":"Mug","category":"Kitchen"}`)
		require.NoError(t, err)
		assert.Equal(t, "Mug", obj["name"])
	})

	t.Run("fenced object", func(t *testing.T) {
		obj, err := ParseObject("```json\n{\"name\":\"Mug\"}\n```")
		require.NoError(t, err)
		assert.Equal(t, "Mug", obj["name"])
	})

	t.Run("object inside prose", func(t *testing.T) {
		obj, err := ParseObject(`Sure! {"name":"Mug","price":"$9.99"} Hope that helps.`)
		require.NoError(t, err)
		assert.Equal(t, "$9.99", obj["price"])
	})

	t.Run("failures", func(t *testing.T) {
		for _, text := range []string{"", "null", "no braces here", `["array"]`, `{"name":`} {
			_, err := ParseObject(text)
			assert.ErrorIs(t, err, domain.ErrAIParseFailure, "input %q", text)
		}
	})
}
