package skill

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSkillMD(t *testing.T, dir, name, body string) {
	t.Helper()
	skillDir := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(skillDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(skillDir, "SKILL.md"), []byte(body), 0o644))
}

func TestRegistryScanDirectoryRegistersSkill(t *testing.T) {
	root := t.TempDir()
	writeSkillMD(t, root, "greet", "---\n"+
		"name: greet\n"+
		"description: say hello\n"+
		"parameters:\n"+
		"  who:\n"+
		"    type: string\n"+
		"    required: true\n"+
		"---\n"+
		"Instructions body.\n")

	r := NewRegistry("core", NewExecutors())
	n, err := r.ScanDirectory(root, "core", true)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	sk, ok := r.Get("greet")
	require.True(t, ok)
	assert.Equal(t, "say hello", sk.Description)
	assert.True(t, sk.IsCore)
	assert.True(t, sk.Parameters["who"].Required)
}

func TestRegistryAgentSkillOverridesCore(t *testing.T) {
	coreRoot := t.TempDir()
	agentRoot := t.TempDir()
	writeSkillMD(t, coreRoot, "deploy", "---\nname: deploy\ndescription: core deploy\n---\ncore body\n")
	writeSkillMD(t, agentRoot, "deploy", "---\nname: deploy\ndescription: agent deploy\n---\nagent body\n")

	r := NewRegistry("ops", NewExecutors())
	_, err := r.ScanDirectory(coreRoot, "core", true)
	require.NoError(t, err)
	_, err = r.ScanDirectory(agentRoot, "ops", false)
	require.NoError(t, err)

	sk, ok := r.Get("deploy")
	require.True(t, ok)
	assert.Equal(t, "agent deploy", sk.Description)
	assert.True(t, sk.OverridesCore)
	assert.False(t, sk.IsCore)
}

func TestRegistryCoreSkillsTracksOriginalCoreSetAfterOverride(t *testing.T) {
	coreRoot := t.TempDir()
	agentRoot := t.TempDir()
	writeSkillMD(t, coreRoot, "deploy", "---\nname: deploy\ndescription: core deploy\n---\n")
	writeSkillMD(t, agentRoot, "deploy", "---\nname: deploy\ndescription: agent deploy\n---\n")

	r := NewRegistry("ops", NewExecutors())
	_, err := r.ScanDirectory(coreRoot, "core", true)
	require.NoError(t, err)
	_, err = r.ScanDirectory(agentRoot, "ops", false)
	require.NoError(t, err)

	core := r.CoreSkills()
	require.Len(t, core, 1)
	assert.Equal(t, "deploy", core[0].Name)
	assert.Equal(t, "core deploy", core[0].Description)
}

func TestRegistryCoreAfterAgentDoesNotOverride(t *testing.T) {
	agentRoot := t.TempDir()
	coreRoot := t.TempDir()
	writeSkillMD(t, agentRoot, "deploy", "---\nname: deploy\ndescription: agent deploy\n---\n")
	writeSkillMD(t, coreRoot, "deploy", "---\nname: deploy\ndescription: core deploy\n---\n")

	r := NewRegistry("ops", NewExecutors())
	_, err := r.ScanDirectory(agentRoot, "ops", false)
	require.NoError(t, err)
	_, err = r.ScanDirectory(coreRoot, "core", true)
	require.NoError(t, err)

	sk, ok := r.Get("deploy")
	require.True(t, ok)
	assert.Equal(t, "agent deploy", sk.Description)
}

func TestRegistryExecuteNoRuntimeReturnsErrNoRuntime(t *testing.T) {
	root := t.TempDir()
	writeSkillMD(t, root, "noop", "---\nname: noop\ndescription: does nothing\n---\n")

	r := NewRegistry("core", NewExecutors())
	_, err := r.ScanDirectory(root, "core", true)
	require.NoError(t, err)

	_, err = r.Execute(context.Background(), "noop", nil)
	require.Error(t, err)
	var noRuntime *ErrNoRuntime
	assert.ErrorAs(t, err, &noRuntime)
}

func TestRegistryExecuteWithRegisteredExecutor(t *testing.T) {
	root := t.TempDir()
	writeSkillMD(t, root, "echo", "---\n"+
		"name: echo\n"+
		"description: echoes input\n"+
		"parameters:\n"+
		"  text:\n"+
		"    type: string\n"+
		"    required: true\n"+
		"---\n")

	executors := NewExecutors()
	executors.Register("echo", func(ctx context.Context, params map[string]any) (any, error) {
		return params["text"], nil
	})

	r := NewRegistry("core", executors)
	_, err := r.ScanDirectory(root, "core", true)
	require.NoError(t, err)

	out, err := r.Execute(context.Background(), "echo", map[string]any{"text": "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hi", out)

	_, err = r.Execute(context.Background(), "echo", map[string]any{})
	require.Error(t, err)
	var missing *ErrMissingParameter
	assert.ErrorAs(t, err, &missing)
}

func TestRegistryPromptContextFormatsRequiredMarker(t *testing.T) {
	root := t.TempDir()
	writeSkillMD(t, root, "alpha", "---\n"+
		"name: alpha\n"+
		"description: first skill\n"+
		"parameters:\n"+
		"  required_param:\n"+
		"    type: string\n"+
		"    required: true\n"+
		"  optional_param:\n"+
		"    type: string\n"+
		"    required: false\n"+
		"---\n")
	writeSkillMD(t, root, "beta", "---\nname: beta\ndescription: second skill\n---\n")

	r := NewRegistry("core", NewExecutors())
	_, err := r.ScanDirectory(root, "core", true)
	require.NoError(t, err)

	ctx := r.PromptContext("")
	assert.Contains(t, ctx, "Available skills:")
	assert.Contains(t, ctx, "alpha(optional_param, required_param*): first skill")
	assert.Contains(t, ctx, "beta(): second skill")
	assert.Contains(t, ctx, "(* = required parameter)")
}

func TestRegistryPromptContextEmpty(t *testing.T) {
	r := NewRegistry("core", NewExecutors())
	assert.Equal(t, "No skills available.", r.PromptContext(""))
}

func TestRegistrySearchMatchesNameDescriptionAndTags(t *testing.T) {
	root := t.TempDir()
	writeSkillMD(t, root, "deploy", "---\nname: deploy\ndescription: deploys a service\ntags:\n  - release\n---\n")
	writeSkillMD(t, root, "rollback", "---\nname: rollback\ndescription: undoes a release\n---\n")

	r := NewRegistry("core", NewExecutors())
	_, err := r.ScanDirectory(root, "core", true)
	require.NoError(t, err)

	assert.Len(t, r.Search("release"), 2)
	assert.Len(t, r.Search("deploy"), 1)
}

func TestRegistryByAgentAndByCategory(t *testing.T) {
	root := t.TempDir()
	writeSkillMD(t, root, "scan", "---\nname: scan\ndescription: scans\ncategory: security\n---\n")

	r := NewRegistry("ops", NewExecutors())
	_, err := r.ScanDirectory(root, "ops", false)
	require.NoError(t, err)

	assert.Len(t, r.ByAgent("ops"), 1)
	assert.Len(t, r.ByCategory("security"), 1)
	assert.Empty(t, r.ByAgent("other"))
}
