package resolver

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestEvaluateExportsConditionalSelectsFirstActiveCondition(t *testing.T) {
	tree := gjson.Parse(`{"./sub":{"import":"./x.mjs","default":"./x.cjs"}}`)
	out, err := evaluateExportsLike(tree, "./sub", NewConditions("import"), '.')
	require.NoError(t, err)
	require.Equal(t, "./x.mjs", out)
}

func TestEvaluateExportsFallsBackToDefault(t *testing.T) {
	tree := gjson.Parse(`{"./sub":{"import":"./x.mjs","default":"./x.cjs"}}`)
	out, err := evaluateExportsLike(tree, "./sub", NewConditions("require"), '.')
	require.NoError(t, err)
	require.Equal(t, "./x.cjs", out)
}

func TestEvaluateExportsWildcardSubstitutesCapture(t *testing.T) {
	tree := gjson.Parse(`{"./*":"./src/*.js"}`)
	out, err := evaluateExportsLike(tree, "./util/a", NewConditions(), '.')
	require.NoError(t, err)
	require.Equal(t, "./src/util/a.js", out)
	require.NoError(t, validateInPackage(out))
}

func TestEvaluateExportsExactBeatsPattern(t *testing.T) {
	tree := gjson.Parse(`{"./*":"./wrong/*.js","./util/a":"./right.js"}`)
	out, err := evaluateExportsLike(tree, "./util/a", NewConditions(), '.')
	require.NoError(t, err)
	require.Equal(t, "./right.js", out)
}

func TestEvaluateExportsLongestPrefixWins(t *testing.T) {
	tree := gjson.Parse(`{"./*":"./generic/*.js","./util/*":"./specific/*.js"}`)
	out, err := evaluateExportsLike(tree, "./util/a", NewConditions(), '.')
	require.NoError(t, err)
	require.Equal(t, "./specific/a.js", out)
}

func TestEvaluateExportsNullBlocks(t *testing.T) {
	tree := gjson.Parse(`{"./internal/*":null,"./*":"./src/*.js"}`)
	_, err := evaluateExportsLike(tree, "./internal/x", NewConditions(), '.')
	var rerr *Error
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, KindExportsBlocked, rerr.Kind)
}

func TestEvaluateExportsArrayTriesEachInOrder(t *testing.T) {
	tree := gjson.Parse(`{".":["./missing-condition-only.js",{"node":"./node.js","default":"./default.js"}]}`)
	out, err := evaluateExportsLike(tree, ".", NewConditions("node"), '.')
	require.NoError(t, err)
	// The first array entry is a bare string so it always "resolves" — array
	// semantics try entries in order and take the first that resolves.
	require.Equal(t, "./missing-condition-only.js", out)
}

func TestEvaluateExportsConditionalSugarAtRoot(t *testing.T) {
	tree := gjson.Parse(`{"import":"./x.mjs","default":"./x.cjs"}`)
	out, err := evaluateExportsLike(tree, ".", NewConditions("import"), '.')
	require.NoError(t, err)
	require.Equal(t, "./x.mjs", out)
}

func TestEvaluateImportsKeyPrefixHash(t *testing.T) {
	tree := gjson.Parse(`{"#internal":"./src/internal.js"}`)
	out, err := evaluateExportsLike(tree, "#internal", NewConditions(), '#')
	require.NoError(t, err)
	require.Equal(t, "./src/internal.js", out)
}

func TestValidateInPackageRejectsEscape(t *testing.T) {
	err := validateInPackage("../outside.js")
	require.Error(t, err)
}

func TestValidateInPackageRejectsMissingDotSlash(t *testing.T) {
	err := validateInPackage("/abs.js")
	require.Error(t, err)
}
