package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/newsrec/internal/version"
)

// writeCorpus creates a three-article CSV corpus and returns its path.
func writeCorpus(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "news.csv")
	data := "categoria,titulo,contenido,fecha\n" +
		"economia,Bitcoin al alza,el precio del bitcoin sube,2021-01-01\n" +
		"politica,Debate parlamentario,el gobierno debate la regulacion,2021-01-02\n" +
		"economia,Bitcoin a la baja,el precio del bitcoin cae,2021-01-03\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

type resultsJSON struct {
	Strategy string       `json:"strategy"`
	Results  []resultView `json:"results"`
}

func resultIDs(views []resultView) []int {
	ids := make([]int, len(views))
	for i, v := range views {
		ids[i] = v.ID
	}
	return ids
}

func TestQueryCmd_JSON(t *testing.T) {
	// Given: a corpus where two articles mention bitcoin prices
	csv := writeCorpus(t)

	// When: querying for bitcoin prices
	out, _, err := run(t, "query", "--csv", csv, "--format", "json", "precio", "bitcoin")

	// Then: both bitcoin articles rank before the unrelated one
	require.NoError(t, err)
	var got resultsJSON
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "lexical", got.Strategy)
	require.Len(t, got.Results, 3)
	assert.ElementsMatch(t, []int{0, 2}, resultIDs(got.Results[:2]))
	assert.Equal(t, 1, got.Results[2].ID)
	assert.Equal(t, 0.0, got.Results[2].Similarity)
}

func TestQueryCmd_TextOutput(t *testing.T) {
	csv := writeCorpus(t)

	out, _, err := run(t, "query", "--csv", csv, "-n", "1", "regulacion")

	require.NoError(t, err)
	assert.Contains(t, out, "SIMILARITY")
	assert.Contains(t, out, "Debate parlamentario")
	assert.NotContains(t, out, "Bitcoin")
}

func TestQueryCmd_SemanticUnavailable(t *testing.T) {
	csv := writeCorpus(t)

	out, errOut, err := run(t, "query", "--csv", csv, "--strategy", "embeddings", "bitcoin")

	require.NoError(t, err)
	assert.Contains(t, out, "(no results)")
	assert.Contains(t, errOut, "semantic strategy unavailable")
}

func TestQueryCmd_InvalidFlags(t *testing.T) {
	csv := writeCorpus(t)

	_, _, err := run(t, "query", "--csv", csv, "-n", "-1", "bitcoin")
	assert.Error(t, err, "negative top-n")

	_, _, err = run(t, "query", "--csv", csv, "--strategy", "bm25", "bitcoin")
	assert.Error(t, err, "unknown strategy")

	_, _, err = run(t, "query", "--csv", csv, "--format", "xml", "bitcoin")
	assert.Error(t, err, "unknown format")
}

func TestSimilarCmd(t *testing.T) {
	csv := writeCorpus(t)

	out, _, err := run(t, "similar", "--csv", csv, "-n", "1", "-f", "json", "0")

	require.NoError(t, err)
	var got resultsJSON
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, []int{2}, resultIDs(got.Results))
}

func TestSimilarCmd_Errors(t *testing.T) {
	csv := writeCorpus(t)

	_, _, err := run(t, "similar", "--csv", csv, "999")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "document not found")

	_, _, err = run(t, "similar", "--csv", csv, "first")
	assert.Error(t, err)
}

func TestCompareCmd(t *testing.T) {
	csv := writeCorpus(t)

	out, errOut, err := run(t, "compare", "--csv", csv, "--query", "bitcoin")

	require.NoError(t, err)
	assert.Contains(t, out, "== lexical")
	assert.Contains(t, out, "== semantic")
	assert.Contains(t, out, "(no results)")
	assert.Contains(t, errOut, "semantic strategy unavailable")
}

func TestCompareCmd_RequiresOneReference(t *testing.T) {
	csv := writeCorpus(t)

	_, _, err := run(t, "compare", "--csv", csv)
	assert.Error(t, err)

	_, _, err = run(t, "compare", "--csv", csv, "--query", "x", "--id", "1")
	assert.Error(t, err)
}

func TestListCmd(t *testing.T) {
	csv := writeCorpus(t)

	out, _, err := run(t, "list", "--csv", csv, "--filter", "REGULACION", "--format", "json")

	require.NoError(t, err)
	var got struct {
		Documents []documentView `json:"documents"`
		Skipped   int            `json:"skipped"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Documents, 1)
	assert.Equal(t, 1, got.Documents[0].ID)
	assert.Equal(t, "2021-01-02", got.Documents[0].Date)
}

func TestRootCmd_CorpusRequired(t *testing.T) {
	_, _, err := run(t, "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--corpus or --csv")
}

func TestRootCmd_CorpusFlagsExclusive(t *testing.T) {
	_, _, err := run(t, "list", "--corpus", "news", "--csv", "news.csv")
	assert.Error(t, err)
}

func TestExportSampleCmd(t *testing.T) {
	// Given: a corpus tree with one valid article
	root := t.TempDir()
	dir := filepath.Join(root, "economia", "noticias")
	require.NoError(t, os.MkdirAll(dir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"),
		[]byte("2021-01-01;Titular;Cuerpo de la noticia"), 0o600))

	// When: exporting to stdout
	out, _, err := run(t, "export-sample", "--corpus", root, "--per-category", "5")

	// Then: the CSV holds the header and the article
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "categoria,titulo,contenido,fecha", strings.TrimSpace(lines[0]))
	assert.Equal(t, "economia,Titular,Cuerpo de la noticia,2021-01-01", strings.TrimSpace(lines[1]))
}

func TestExportSampleCmd_ToFile(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "politica", "noticias")
	require.NoError(t, os.MkdirAll(dir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("d;t;b"), 0o600))
	dest := filepath.Join(t.TempDir(), "sample.csv")

	_, errOut, err := run(t, "export-sample", "--corpus", root, "--out", dest)

	require.NoError(t, err)
	assert.Contains(t, errOut, "wrote 1 articles")
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(data), "politica,t,b,d")
}

func TestExportSampleCmd_RequiresDirectory(t *testing.T) {
	_, _, err := run(t, "export-sample", "--csv", "x.csv")
	assert.Error(t, err)
}

func TestVersionCmd(t *testing.T) {
	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "newsrecctl "+version.Version)

	out, _, err = run(t, "version", "--json")
	require.NoError(t, err)
	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, version.Version, info["version"])
}
