package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/changeprob/internal/ir"
	"github.com/roach88/changeprob/internal/table"
)

func TestJSGoldenDefaultTable(t *testing.T) {
	out, err := JS(table.Default())
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "boxed_scenes.js", []byte(out))
}

func TestJSQuotesStrings(t *testing.T) {
	st := table.Default().IR()
	st.Name = "quoting"
	st.Prompts[0].Text = `say "when" <b>now</b>`
	st.Scenes[0].Objects[1].Label = `back\slash`

	tb, err := table.New(st)
	require.NoError(t, err)

	out, err := JS(tb)
	require.NoError(t, err)
	assert.Contains(t, out, `"say \"when\" <b>now</b>"`)
	assert.Contains(t, out, `"back\\slash"`)
	assert.NotContains(t, out, "&quot;")
	assert.NotContains(t, out, "&lt;")
}

func TestJSMultipleScenes(t *testing.T) {
	st := table.Default().IR()
	second := st.Clone().Scenes[0]
	second.Image = "02_R_target_absent_lamp_BOX.png"
	second.Objects[0].ChangeTarget = false
	second.Objects[4].ChangeTarget = true
	st.Scenes = append(st.Scenes, second)

	tb, err := table.New(st)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteJS(&buf, tb))
	out := buf.String()

	assert.Contains(t, out, "  \"01_L_filler_present_mirror_BOX.png\",\n  \"02_R_target_absent_lamp_BOX.png\"\n]")
	assert.Contains(t, out, "    \"TV\"\n  ],\n  [\n    \"mirror\",")
	assert.Contains(t, out, "\"TV_CHANGE\"")
	assert.Contains(t, out, "// table "+tb.Hash())
	assert.Equal(t, 1, strings.Count(out, "var all_objects"))
}

func TestJSHeaderIsCommentOnly(t *testing.T) {
	st := table.Default().IR()
	st.Name = "boxed\nwindow.location='https://example.org'"
	_, err := table.New(st)
	require.Error(t, err, "a multi-line name would leak out of the header comment")

	st.Name = "boxed scenes */ pilot"
	tb, err := table.New(st)
	require.NoError(t, err)

	out, err := JS(tb)
	require.NoError(t, err)
	lines := strings.Split(out, "\n")
	require.GreaterOrEqual(t, len(lines), 4)
	assert.Equal(t, "// boxed scenes */ pilot", lines[0])
	for _, line := range lines[:3] {
		assert.True(t, strings.HasPrefix(line, "// "), "header line %q", line)
	}
	assert.Equal(t, "", lines[3])
}

func TestQuoteAll(t *testing.T) {
	assert.Equal(t, []string{`"a"`, `"b\"c"`}, quoteAll([]string{"a", `b"c`}))
	assert.Empty(t, quoteAll(nil))
	assert.Equal(t, ir.QuoteString("x"), quoteAll([]string{"x"})[0])
}
