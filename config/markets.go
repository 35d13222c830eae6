package config

import (
	"io/ioutil"

	"gopkg.in/yaml.v2"
)

// MarketConfig is one bootstrap entry of config/markets.yml. Markets
// created over the admin API are persisted, the yaml only seeds a fresh
// deployment.
type MarketConfig struct {
	Symbol      string `yaml:"symbol"`
	BaseUnit    string `yaml:"base_unit"`
	QuoteUnit   string `yaml:"quote_unit"`
	MakerFeeBps int64  `yaml:"maker_fee_bps"`
	TakerFeeBps int64  `yaml:"taker_fee_bps"`
}

func LoadMarkets(path string) ([]MarketConfig, error) {
	buf, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var markets []MarketConfig
	if err := yaml.Unmarshal(buf, &markets); err != nil {
		return nil, err
	}

	return markets, nil
}
