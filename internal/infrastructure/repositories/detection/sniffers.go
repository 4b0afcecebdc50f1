package detection

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"golang.org/x/mod/modfile"
	"gopkg.in/yaml.v3"
)

func sniffGoMod(path, defaultType string) (string, bool) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	mod, err := modfile.ParseLax(path, content, nil)
	if err != nil || mod.Module == nil {
		return "", false
	}
	return defaultType, true
}

// sniffPyproject accepts PEP 621 and Poetry projects that declare dependencies.
func sniffPyproject(path, defaultType string) (string, bool) {
	var doc map[string]any
	meta, err := toml.DecodeFile(path, &doc)
	if err != nil {
		return "", false
	}

	switch {
	case meta.IsDefined("tool", "poetry", "dependencies"):
		return "poetry", true
	case meta.IsDefined("project", "dependencies"):
		return defaultType, true
	default:
		return "", false
	}
}

// sniffCargoManifest accepts crates and workspaces.
func sniffCargoManifest(path, defaultType string) (string, bool) {
	var doc map[string]any
	meta, err := toml.DecodeFile(path, &doc)
	if err != nil {
		return "", false
	}
	if meta.IsDefined("package") || meta.IsDefined("workspace") {
		return defaultType, true
	}
	return "", false
}

func sniffPnpmLock(path, defaultType string) (string, bool) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}

	var lock struct {
		LockfileVersion any `yaml:"lockfileVersion"`
	}
	if err = yaml.Unmarshal(content, &lock); err != nil || lock.LockfileVersion == nil {
		return "", false
	}
	return defaultType, true
}

// sniffTerraformLock requires at least one provider block pinned to a string version.
func sniffTerraformLock(path, defaultType string) (string, bool) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() || file.Body == nil {
		return "", false
	}

	content, _, diags := file.Body.PartialContent(&hcl.BodySchema{
		Blocks: []hcl.BlockHeaderSchema{
			{Type: "provider", LabelNames: []string{"source"}},
		},
	})
	if diags.HasErrors() {
		return "", false
	}

	for _, block := range content.Blocks {
		attrs, _ := block.Body.JustAttributes()
		versionAttr, ok := attrs["version"]
		if !ok {
			continue
		}
		value, valueDiags := versionAttr.Expr.Value(&hcl.EvalContext{})
		if valueDiags.HasErrors() || value.IsNull() || value.Type() != cty.String {
			continue
		}
		return defaultType, true
	}
	return "", false
}
