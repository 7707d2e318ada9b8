package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/pricelist/pkg/domain/entities"
)

const catalogJSON = `{
  "machines": ["X1", "X2"],
  "hours": [500, 1000],
  "items": [
    {"venda": "Peça", "plano": "Básico", "modelo": "X1", "hour": 1000, "tipo": "Filtro",
     "codigo": "B", "descricao": "Filtro de ar", "precos": {"custo": null, "over": 50}},
    {"venda": "Peça", "plano": "Básico", "modelo": "X1", "hour": 500, "tipo": "Óleo",
     "codigo": "A", "descricao": "Óleo do motor", "precos": {"custo": 100, "over": null}},
    {"venda": "Peça", "plano": "Básico", "modelo": "X2", "hour": 500, "tipo": "Óleo",
     "codigo": "C", "descricao": "Óleo hidráulico", "precos": {"custo": 30, "over": 40}}
  ]
}`

const catalogCSV = "venda,plano,modelo,hour,tipo,codigo,descricao,custo,margem,impostos,over\n" +
	"Peça,Básico,X1,500,Óleo,A,Óleo do motor,100,,,\n" +
	"Peça,Básico,X1,1000,Filtro,B,Filtro de ar,,,,50\n"

// workspace writes the catalog and a config pointing at it into a fresh
// working directory and returns the config path
func workspace(t *testing.T, source, name, data string) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)

	catalogPath := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(catalogPath, []byte(data), 0o644))

	configPath := filepath.Join(dir, "pricelist.yaml")
	cfg := "catalog:\n  source: " + source + "\n  file: " + catalogPath + "\nlog:\n  level: error\n"
	require.NoError(t, os.WriteFile(configPath, []byte(cfg), 0o644))
	return configPath
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCommand(BuildInfo{Version: "1.2.3", Commit: "abc123"})
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestList_InitialSelection(t *testing.T) {
	configPath := workspace(t, "file", "maintenance.json", catalogJSON)

	out, _, err := run(t, "list", "--config", configPath)
	require.NoError(t, err)

	assert.Contains(t, out, "X1 • até 0500H • 1 itens")
	assert.Contains(t, out, "Óleo do motor")
	assert.NotContains(t, out, "Filtro de ar")
	assert.Contains(t, out, "Total  R$\u00a0100,00 → R$\u00a00,00")
}

func TestList_FlagsOverrideSelection(t *testing.T) {
	configPath := workspace(t, "file", "maintenance.json", catalogJSON)

	out, _, err := run(t, "list", "--config", configPath, "--machine", "X1", "--hour", "1000", "--format", "json")
	require.NoError(t, err)

	var doc struct {
		Machine   string `json:"machine"`
		Count     int    `json:"count"`
		TotalCost string `json:"totalCost"`
		TotalOver string `json:"totalOver"`
		Items     []struct {
			Code string `json:"code"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "X1", doc.Machine)
	assert.Equal(t, 2, doc.Count)
	assert.Equal(t, "100", doc.TotalCost)
	assert.Equal(t, "50", doc.TotalOver)
	require.Len(t, doc.Items, 2)
	assert.Equal(t, "A", doc.Items[0].Code)
	assert.Equal(t, "B", doc.Items[1].Code)
}

func TestList_DisplayedHourForm(t *testing.T) {
	configPath := workspace(t, "file", "maintenance.json", catalogJSON)

	out, _, err := run(t, "list", "--config", configPath, "--hour", "1000H")
	require.NoError(t, err)
	assert.Contains(t, out, "X1 • até 1000H • 2 itens")
}

func TestList_EmptyHourClearsCeiling(t *testing.T) {
	configPath := workspace(t, "file", "maintenance.json", catalogJSON)

	out, _, err := run(t, "list", "--config", configPath, "--hour", "")
	require.NoError(t, err)
	assert.Contains(t, out, "X1 • até — • 0 itens")
}

func TestList_UnknownMachineIsEmpty(t *testing.T) {
	configPath := workspace(t, "file", "maintenance.json", catalogJSON)

	out, _, err := run(t, "list", "--config", configPath, "--machine", "Z9")
	require.NoError(t, err)
	assert.Contains(t, out, "Z9 • até 0500H • 0 itens")
}

func TestList_CSVSource(t *testing.T) {
	configPath := workspace(t, "csv", "maintenance.csv", catalogCSV)

	out, _, err := run(t, "list", "--config", configPath, "--hour", "1000")
	require.NoError(t, err)
	assert.Contains(t, out, "X1 • até 1000H • 2 itens")
	assert.Contains(t, out, "Filtro de ar")
}

func TestList_OutputFile(t *testing.T) {
	configPath := workspace(t, "file", "maintenance.json", catalogJSON)
	target := filepath.Join(t.TempDir(), "list.csv")

	out, _, err := run(t, "list", "--config", configPath, "--format", "csv", "--output", target)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Peça,Básico,X1,500,Óleo,A,Óleo do motor,100,,,")
}

func TestList_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "invalid hour",
			args:    []string{"--hour", "abc"},
			wantErr: `validation error: invalid hour "abc": must be an integer`,
		},
		{
			name:    "unsupported format",
			args:    []string{"--format", "yaml"},
			wantErr: "validation error: unsupported output format: yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := workspace(t, "file", "maintenance.json", catalogJSON)
			_, _, err := run(t, append([]string{"list", "--config", configPath}, tt.args...)...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestList_LoadFailure(t *testing.T) {
	configPath := workspace(t, "file", "maintenance.json", `{"machines": []}`)

	_, _, err := run(t, "list", "--config", configPath)
	require.Error(t, err)

	var parseErr *entities.ParseError
	assert.ErrorAs(t, err, &parseErr)
	assert.Contains(t, err.Error(), "failed to load catalog")
}

func TestList_MissingConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())
	_, _, err := run(t, "list", "--config", "does-not-exist.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config")
}

func TestList_InvalidLogLevel(t *testing.T) {
	configPath := workspace(t, "file", "maintenance.json", catalogJSON)
	_, _, err := run(t, "list", "--config", configPath, "--log-level", "loud")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "pricelist 1.2.3 (abc123)\n", out)
}

func TestBuildInfo_AssetVersion(t *testing.T) {
	tests := []struct {
		name string
		info BuildInfo
		want string
	}{
		{name: "unstamped", info: BuildInfo{}, want: ""},
		{name: "dev", info: BuildInfo{Version: "dev", Commit: "abc123"}, want: ""},
		{name: "release", info: BuildInfo{Version: "1.2.3"}, want: "1.2.3"},
		{name: "release with commit", info: BuildInfo{Version: "1.2.3", Commit: "abc123"}, want: "1.2.3-abc123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.info.AssetVersion())
		})
	}
}

func TestParseHour(t *testing.T) {
	tests := []struct {
		raw     string
		want    entities.Hour
		wantErr bool
	}{
		{raw: "500", want: 500},
		{raw: "0500H", want: 500},
		{raw: "2000h", want: 2000},
		{raw: "0", want: 0},
		{raw: "H", wantErr: true},
		{raw: "5.5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := parseHour(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
