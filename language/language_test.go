package language_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hive/language"
)

func TestParseCoderRead(t *testing.T) {
	d, err := language.ParseCoder(`READ "notes.txt"`)
	require.NoError(t, err)

	read, ok := d.(language.Read)
	require.True(t, ok)
	assert.Equal(t, "notes.txt", read.Target)
}

func TestParseCoderChangeTripleQuoted(t *testing.T) {
	d, err := language.ParseCoder("CHANGE CONTENT=\"\"\"def hello():\n    return 'world'\n\"\"\"")
	require.NoError(t, err)

	change, ok := d.(language.Change)
	require.True(t, ok)
	assert.Equal(t, "def hello():\n    return 'world'\n", change.Content)
}

func TestParseCoderEscapes(t *testing.T) {
	d, err := language.ParseCoder(`CHANGE CONTENT="line1\nline2\t\"quoted\""`)
	require.NoError(t, err)

	change := d.(language.Change)
	assert.Equal(t, "line1\nline2\t\"quoted\"", change.Content)
}

func TestParseCoderUnknownEscapePreserved(t *testing.T) {
	d, err := language.ParseCoder(`CHANGE CONTENT="a\qb"`)
	require.NoError(t, err)

	change := d.(language.Change)
	assert.Equal(t, `a\qb`, change.Content)
}

func TestParseCoderReplaceList(t *testing.T) {
	d, err := language.ParseCoder(`REPLACE FROM="old" TO="new", FROM="foo" TO="bar"`)
	require.NoError(t, err)

	rep, ok := d.(language.Replace)
	require.True(t, ok)
	require.Len(t, rep.Items, 2)
	assert.Equal(t, language.ReplaceItem{From: "old", To: "new"}, rep.Items[0])
	assert.Equal(t, language.ReplaceItem{From: "foo", To: "bar"}, rep.Items[1])
}

func TestParseCoderInsert(t *testing.T) {
	d, err := language.ParseCoder(`INSERT FROM="import os" TO="import sys"`)
	require.NoError(t, err)

	ins := d.(language.Insert)
	assert.Equal(t, "import os", ins.From)
	assert.Equal(t, "import sys", ins.To)
}

func TestParseCoderFinish(t *testing.T) {
	d, err := language.ParseCoder(`FINISH PROMPT="done"`)
	require.NoError(t, err)

	fin := d.(language.Finish)
	assert.Equal(t, "done", fin.Prompt)
}

func TestParseCoderWait(t *testing.T) {
	d, err := language.ParseCoder("WAIT")
	require.NoError(t, err)
	assert.IsType(t, language.Wait{}, d)
}

func TestParseCoderUnknownDirective(t *testing.T) {
	_, err := language.ParseCoder(`DELEGATE file "x" PROMPT="y"`)
	require.Error(t, err)

	var perr *language.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Msg, "Unknown directive")
}

func TestParseCoderTwoDirectivesOneLine(t *testing.T) {
	_, err := language.ParseCoder(`WAIT FINISH PROMPT="x"`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "one directive per line")
}

func TestParseCoderUnterminatedString(t *testing.T) {
	_, err := language.ParseCoder(`READ "notes.txt`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unterminated")
}

func TestParseManagerDelegate(t *testing.T) {
	d, err := language.ParseManager(`DELEGATE file "main.py" PROMPT="implement entry point", folder "utils" PROMPT="helpers"`)
	require.NoError(t, err)

	del, ok := d.(language.Delegate)
	require.True(t, ok)
	require.Len(t, del.Items, 2)
	assert.Equal(t, language.TargetFile, del.Items[0].Target.Kind)
	assert.Equal(t, "main.py", del.Items[0].Target.Name)
	assert.Equal(t, "implement entry point", del.Items[0].Prompt)
	assert.Equal(t, language.TargetFolder, del.Items[1].Target.Kind)
}

func TestParseManagerCreate(t *testing.T) {
	d, err := language.ParseManager(`CREATE folder "src"`)
	require.NoError(t, err)

	create := d.(language.Create)
	assert.Equal(t, language.TargetFolder, create.Target.Kind)
	assert.Equal(t, "src", create.Target.Name)
}

func TestParseManagerCreateBadKind(t *testing.T) {
	_, err := language.ParseManager(`CREATE directory "src"`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file or folder")
}

func TestParseManagerReadFolder(t *testing.T) {
	d, err := language.ParseManager(`READ folder "src"`)
	require.NoError(t, err)

	read := d.(language.ReadTarget)
	assert.Equal(t, language.TargetFolder, read.Target.Kind)
}

func TestParseManagerSpawn(t *testing.T) {
	d, err := language.ParseManager(`SPAWN tester PROMPT="verify the api"`)
	require.NoError(t, err)

	spawn := d.(language.Spawn)
	require.Len(t, spawn.Items, 1)
	assert.Equal(t, "tester", spawn.Items[0].EphemeralType)
	assert.Equal(t, "verify the api", spawn.Items[0].Prompt)
}

func TestParseManagerUpdateReadme(t *testing.T) {
	d, err := language.ParseManager(`UPDATE_README CONTENT="""# src\nOwns the source tree."""`)
	require.NoError(t, err)

	upd := d.(language.UpdateReadme)
	assert.Contains(t, upd.Content, "# src")
}

func TestParseTesterSubset(t *testing.T) {
	_, err := language.ParseTester(`SPAWN tester PROMPT="no recursion"`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unknown directive")

	d, err := language.ParseTester(`RUN "python -m pytest"`)
	require.NoError(t, err)
	run := d.(language.Run)
	assert.Equal(t, "python -m pytest", run.Command)
}

func TestParseMasterIsManagerGrammar(t *testing.T) {
	d, err := language.ParseMaster(`CREATE file "main.py"`)
	require.NoError(t, err)
	assert.IsType(t, language.Create{}, d)
}

func TestSplitDirectivesSimple(t *testing.T) {
	chunks := language.SplitDirectives("READ \"a.py\"\nRUN \"ls\"\n\nWAIT\n")
	require.Len(t, chunks, 3)
	assert.Equal(t, `READ "a.py"`, chunks[0])
	assert.Equal(t, `RUN "ls"`, chunks[1])
	assert.Equal(t, "WAIT", chunks[2])
}

func TestSplitDirectivesTripleQuoteSpansLines(t *testing.T) {
	response := "CHANGE CONTENT=\"\"\"line one\nline two\n\"\"\"\nFINISH PROMPT=\"done\""
	chunks := language.SplitDirectives(response)
	require.Len(t, chunks, 2)
	assert.Contains(t, chunks[0], "line two")
	assert.Equal(t, `FINISH PROMPT="done"`, chunks[1])
}

func TestSplitDirectivesEmptyResponse(t *testing.T) {
	assert.Empty(t, language.SplitDirectives("\n \n"))
}
