package csv

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/pricelist/pkg/domain/entities"
)

const csvHeader = "venda,plano,modelo,hour,tipo,codigo,descricao,custo,margem,impostos,over\n"

func TestLoader_ReadCatalog(t *testing.T) {
	data := csvHeader +
		"Balcão,Preventiva,PC300,1000,Filtro,B-2,Filtro hidráulico,300.10,,,450\n" +
		"Balcão,Preventiva,PC200,500,Filtro,A-1,Filtro de óleo,120.50,0.3,12,\n" +
		"Oficina,Preventiva,PC200,1000,Serviço,S-1,Mão de obra,,,,\n"

	catalog, err := NewLoader().ReadCatalog(strings.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, []entities.MachineModel{"PC300", "PC200"}, catalog.Machines)
	assert.Equal(t, []entities.Hour{1000, 500}, catalog.Hours)
	require.Len(t, catalog.Items, 3)

	first := catalog.Items[0]
	assert.Equal(t, "B-2", first.Code)
	assert.True(t, decimal.RequireFromString("300.10").Equal(first.Price.Cost.Decimal))
	assert.False(t, first.Price.Margin.Valid)
	assert.True(t, first.Price.Over.Valid)

	second := catalog.Items[1]
	assert.Equal(t, entities.Hour(500), second.Hour)
	assert.True(t, second.Price.Taxes.Valid)
	assert.False(t, second.Price.Over.Valid)

	labour := catalog.Items[2]
	assert.False(t, labour.Price.Cost.Valid)
	assert.False(t, labour.Price.Over.Valid)
}

func TestLoader_ReadCatalog_HeaderOnly(t *testing.T) {
	catalog, err := NewLoader().ReadCatalog(strings.NewReader(csvHeader))
	require.NoError(t, err)
	assert.Empty(t, catalog.Machines)
	assert.Empty(t, catalog.Hours)
	assert.Empty(t, catalog.Items)
}

func TestLoader_ReadCatalog_ByteOrderMark(t *testing.T) {
	catalog, err := NewLoader().ReadCatalog(strings.NewReader("\ufeff" + csvHeader))
	require.NoError(t, err)
	assert.Empty(t, catalog.Items)
}

func TestLoader_ReadCatalog_Errors(t *testing.T) {
	testCases := []struct {
		name        string
		data        string
		expectError string
	}{
		{"empty file", "", "must have a header row"},
		{"wrong header", "a,b,c\n", "header mismatch"},
		{"bad hour", csvHeader + "v,p,PC200,abc,t,c,d,1,,,\n", "row 2: invalid hour: abc"},
		{"bad cost", csvHeader + "v,p,PC200,500,t,c,d,R$10,,,\n", "row 2: invalid custo: R$10"},
		{"bad over", csvHeader + "v,p,PC200,500,t,c,d,,,,x\n", "row 2: invalid over: x"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewLoader().ReadCatalog(strings.NewReader(tc.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.expectError)

			var parseErr *entities.ParseError
			assert.True(t, errors.As(err, &parseErr), "expected *ParseError, got %T", err)
		})
	}
}

func TestSource_FetchCatalog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "maintenance.csv")
	require.NoError(t, os.WriteFile(path, []byte(csvHeader+"v,p,PC200,500,t,A,d,100,,,\n"), 0o644))

	source := NewSource(path)
	assert.Equal(t, path, source.Location())

	catalog, err := source.FetchCatalog(context.Background())
	require.NoError(t, err)
	require.Len(t, catalog.Items, 1)
	assert.Equal(t, "A", catalog.Items[0].Code)
}

func TestSource_FetchCatalog_MissingFile(t *testing.T) {
	source := NewSource(filepath.Join(t.TempDir(), "missing.csv"))

	_, err := source.FetchCatalog(context.Background())
	require.Error(t, err)

	var fetchErr *entities.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, 0, fetchErr.StatusCode)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
