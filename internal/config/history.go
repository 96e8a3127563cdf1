package config

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/onedigerati/bbd-sim/internal/domain"
)

// HistoricalReturnRow is one row of the denormalized tabular stream format:
// (symbol, name, asset_class, year, annual_return).
type HistoricalReturnRow struct {
	Symbol       string  `yaml:"symbol"`
	Name         string  `yaml:"name"`
	AssetClass   string  `yaml:"assetClass"`
	Year         int     `yaml:"year"`
	AnnualReturn float64 `yaml:"annualReturn"`
}

// HistoricalReturnsExport is the structured payload variant of the
// historical-returns file format.
type HistoricalReturnsExport struct {
	Version    int    `yaml:"version"`
	ExportedAt string `yaml:"exportedAt"`
	Assets     []struct {
		Symbol     string `yaml:"symbol"`
		Name       string `yaml:"name"`
		AssetClass string `yaml:"assetClass"`
		StartDate  string `yaml:"startDate"`
		EndDate    string `yaml:"endDate"`
		Returns    []struct {
			Date   string  `yaml:"date"`
			Return float64 `yaml:"return"`
		} `yaml:"returns"`
	} `yaml:"assets"`
}

// NormalizeRows folds a denormalized tabular stream into the
// {assetClass -> yearly returns[]} map the return model accepts, ordering
// each asset class's returns by year ascending. This is an external
// import-side concern normally left to the host, kept here as a
// convenience for the CLI driver that has no browser-side importer to do
// it instead.
func NormalizeRows(rows []HistoricalReturnRow) map[string][]float64 {
	byClass := map[string][]HistoricalReturnRow{}
	for _, r := range rows {
		byClass[r.AssetClass] = append(byClass[r.AssetClass], r)
	}
	out := make(map[string][]float64, len(byClass))
	for class, rs := range byClass {
		sortRowsByYear(rs)
		returns := make([]float64, len(rs))
		for i, r := range rs {
			returns[i] = r.AnnualReturn
		}
		out[class] = returns
	}
	return out
}

func sortRowsByYear(rs []HistoricalReturnRow) {
	sort.Slice(rs, func(i, j int) bool { return rs[i].Year < rs[j].Year })
}

// NormalizeExport folds the structured export payload into the same
// {assetClass -> yearly returns[]} map, keeping each asset's returns in the
// order they appear in the payload. The date strings are not read.
func NormalizeExport(export HistoricalReturnsExport) (map[string][]float64, error) {
	out := make(map[string][]float64, len(export.Assets))
	for _, asset := range export.Assets {
		returns := make([]float64, len(asset.Returns))
		for i, r := range asset.Returns {
			returns[i] = r.Return
		}
		if len(returns) < 5 {
			return nil, domain.ConfigError("returnModel.history",
				"asset class %q needs >= 5 years of historical returns, got %d", asset.AssetClass, len(returns))
		}
		out[asset.AssetClass] = returns
	}
	return out, nil
}

// LoadHistoryFile reads a YAML file containing either format and returns the
// normalized map, trying the structured export shape first.
func LoadHistoryFile(data []byte) (map[string][]float64, error) {
	var export HistoricalReturnsExport
	if err := yaml.Unmarshal(data, &export); err == nil && export.Version != 0 {
		return NormalizeExport(export)
	}
	var rows []HistoricalReturnRow
	if err := yaml.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse historical returns: %w", err)
	}
	return NormalizeRows(rows), nil
}
