package entities

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCatalog_LegacyKeys(t *testing.T) {
	t.Parallel()

	doc := `{
		"machines": ["PC200", "PC300"],
		"hours": [500, 1000],
		"items": [{
			"venda": "Balcão",
			"plano": "Preventiva",
			"modelo": "PC200",
			"hour": 500,
			"tipo": "Filtro",
			"codigo": "600-211-1340",
			"descricao": "Filtro de óleo do motor",
			"precos": {"custo": 120.5, "margem": 0.3, "impostos": null, "over": 180}
		}]
	}`

	catalog, err := ParseCatalog([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, []MachineModel{"PC200", "PC300"}, catalog.Machines)
	assert.Equal(t, []Hour{500, 1000}, catalog.Hours)
	require.Len(t, catalog.Items, 1)

	item := catalog.Items[0]
	assert.Equal(t, "Balcão", item.SaleType)
	assert.Equal(t, "Preventiva", item.Plan)
	assert.Equal(t, MachineModel("PC200"), item.Model)
	assert.Equal(t, Hour(500), item.Hour)
	assert.Equal(t, "Filtro", item.Type)
	assert.Equal(t, "600-211-1340", item.Code)
	assert.Equal(t, "Filtro de óleo do motor", item.Description)

	require.True(t, item.Price.Cost.Valid)
	assert.True(t, decimal.RequireFromString("120.5").Equal(item.Price.Cost.Decimal))
	assert.True(t, item.Price.Margin.Valid)
	assert.False(t, item.Price.Taxes.Valid, "null taxes must stay absent")
	require.True(t, item.Price.Over.Valid)
	assert.True(t, decimal.NewFromInt(180).Equal(item.Price.Over.Decimal))
}

func TestParseCatalog_EnglishKeys(t *testing.T) {
	t.Parallel()

	doc := `{
		"machines": ["X1"],
		"hours": [500, 1000],
		"items": [
			{"model": "X1", "hour": 500, "code": "A", "price": {"cost": 100}},
			{"model": "X1", "hour": 1000, "code": "B", "price": {"over": 50}}
		]
	}`

	catalog, err := ParseCatalog([]byte(doc))
	require.NoError(t, err)
	require.Len(t, catalog.Items, 2)

	a := catalog.Items[0]
	assert.Equal(t, MachineModel("X1"), a.Model)
	assert.Equal(t, "A", a.Code)
	assert.True(t, a.Price.Cost.Valid)
	assert.False(t, a.Price.Over.Valid)

	b := catalog.Items[1]
	assert.False(t, b.Price.Cost.Valid)
	assert.True(t, decimal.NewFromInt(50).Equal(b.Price.Over.Decimal))
}

func TestParseCatalog_LegacyKeyWins(t *testing.T) {
	t.Parallel()

	doc := `{"machines": [], "hours": [], "items": [
		{"modelo": "PT", "model": "EN", "codigo": "C1", "code": "C2",
		 "precos": {"custo": 1}, "price": {"cost": 2, "over": 3}}
	]}`

	catalog, err := ParseCatalog([]byte(doc))
	require.NoError(t, err)
	require.Len(t, catalog.Items, 1)

	item := catalog.Items[0]
	assert.Equal(t, MachineModel("PT"), item.Model)
	assert.Equal(t, "C1", item.Code)
	assert.True(t, decimal.NewFromInt(1).Equal(item.Price.Cost.Decimal))
	assert.True(t, decimal.NewFromInt(3).Equal(item.Price.Over.Decimal))
}

func TestParseCatalog_EmptyListsAreValid(t *testing.T) {
	t.Parallel()

	catalog, err := ParseCatalog([]byte(`{"machines": [], "hours": [], "items": []}`))
	require.NoError(t, err)

	_, ok := catalog.FirstMachine()
	assert.False(t, ok)
	_, ok = catalog.FirstHour()
	assert.False(t, ok)
	assert.Empty(t, catalog.Items)
}

func TestParseCatalog_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
	}{
		{"empty body", ``},
		{"html page", `<!doctype html><html></html>`},
		{"array document", `[1, 2, 3]`},
		{"truncated json", `{"machines": ["X1"], "hours": [`},
		{"missing machines", `{"hours": [500], "items": []}`},
		{"missing hours", `{"machines": ["X1"], "items": []}`},
		{"missing items", `{"machines": ["X1"], "hours": [500]}`},
		{"machines not a list", `{"machines": "X1", "hours": [], "items": []}`},
		{"fractional hour", `{"machines": [], "hours": [], "items": [{"hour": 500.5}]}`},
		{"text price", `{"machines": [], "hours": [], "items": [{"precos": {"custo": "abc"}}]}`},
		{"quoted price", `{"machines": [], "hours": [], "items": [{"precos": {"custo": "12.5"}}]}`},
		{"boolean price", `{"machines": [], "hours": [], "items": [{"price": {"over": true}}]}`},
		{"quoted hour", `{"machines": [], "hours": [], "items": [{"hour": "500"}]}`},
		{"fractional listed hour", `{"machines": [], "hours": [500.5], "items": []}`},
		{"huge hour", `{"machines": [], "hours": [1e30], "items": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			catalog, err := ParseCatalog([]byte(tt.doc))
			require.Error(t, err)
			assert.Nil(t, catalog)

			var parseErr *ParseError
			assert.True(t, errors.As(err, &parseErr), "expected *ParseError, got %T", err)
		})
	}
}

func TestParseCatalog_IntegralFloatHours(t *testing.T) {
	t.Parallel()

	doc := `{"machines": ["X1"], "hours": [500.0, 1e3], "items": [
		{"modelo": "X1", "hour": 500.0, "codigo": "A", "precos": {"custo": 1.5e2}}
	]}`

	catalog, err := ParseCatalog([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, []Hour{500, 1000}, catalog.Hours)
	require.Len(t, catalog.Items, 1)
	assert.Equal(t, Hour(500), catalog.Items[0].Hour)
	assert.True(t, decimal.NewFromInt(150).Equal(catalog.Items[0].Price.Cost.Decimal))
}

func TestNewCatalog_CopiesSlices(t *testing.T) {
	t.Parallel()

	machines := []MachineModel{"X1"}
	catalog := NewCatalog(machines, []Hour{500}, nil)
	machines[0] = "CHANGED"

	assert.Equal(t, MachineModel("X1"), catalog.Machines[0])
	assert.NotNil(t, catalog.Items)
}

func TestFetchError_Message(t *testing.T) {
	t.Parallel()

	err := &FetchError{Source: "http://example.test/data.json", StatusCode: 404}
	assert.Equal(t, "HTTP 404", err.Error())

	cause := errors.New("connection refused")
	err = &FetchError{Source: "http://example.test/data.json", Err: cause}
	assert.Contains(t, err.Error(), "connection refused")
	assert.ErrorIs(t, err, cause)
}
