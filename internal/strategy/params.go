package strategy

// Params holds every threshold and weight used by the scorer.
// Negative adjustments are stored with their sign.
type Params struct {
	BaseScore float64 `yaml:"base_score"`

	TrendBullish float64 `yaml:"trend_bullish"`
	TrendBearish float64 `yaml:"trend_bearish"`

	RSIOversold       float64 `yaml:"rsi_oversold"`
	RSIOverbought     float64 `yaml:"rsi_overbought"`
	OversoldBonus     float64 `yaml:"oversold_bonus"`
	OverboughtPenalty float64 `yaml:"overbought_penalty"`
	NeutralRSILow     float64 `yaml:"neutral_rsi_low"`
	NeutralRSIHigh    float64 `yaml:"neutral_rsi_high"`
	NeutralRSIBonus   float64 `yaml:"neutral_rsi_bonus"`

	MACDBullish float64 `yaml:"macd_bullish"`
	MACDBearish float64 `yaml:"macd_bearish"`

	VolatilityThreshold float64 `yaml:"volatility_threshold"`
	VolatilityBonus     float64 `yaml:"volatility_bonus"`

	VolumeHigh      float64 `yaml:"volume_high"`
	VolumeHighBonus float64 `yaml:"volume_high_bonus"`
	VolumeMid       float64 `yaml:"volume_mid"`
	VolumeMidBonus  float64 `yaml:"volume_mid_bonus"`

	MarketCapThreshold float64 `yaml:"market_cap_threshold"`
	MarketCapBonus     float64 `yaml:"market_cap_bonus"`

	MomentumThreshold float64 `yaml:"momentum_threshold"` // percent
	MomentumBonus     float64 `yaml:"momentum_bonus"`
}

// DefaultParams returns the stock scoring parameters.
func DefaultParams() Params {
	return Params{
		BaseScore:           0,
		TrendBullish:        0.30,
		TrendBearish:        -0.20,
		RSIOversold:         30,
		RSIOverbought:       70,
		OversoldBonus:       0.25,
		OverboughtPenalty:   -0.20,
		NeutralRSILow:       40,
		NeutralRSIHigh:      60,
		NeutralRSIBonus:     0.05,
		MACDBullish:         0.20,
		MACDBearish:         -0.15,
		VolatilityThreshold: 0.05,
		VolatilityBonus:     0.10,
		VolumeHigh:          1e9,
		VolumeHighBonus:     0.20,
		VolumeMid:           1e8,
		VolumeMidBonus:      0.10,
		MarketCapThreshold:  1e10,
		MarketCapBonus:      0.10,
		MomentumThreshold:   2,
		MomentumBonus:       0.05,
	}
}

// RankOptions controls which scored results are returned and how many.
type RankOptions struct {
	MinScore float64 `yaml:"min_score"`
	Limit    int     `yaml:"limit"`
}

// DefaultRankOptions returns the full-feature ranking settings.
func DefaultRankOptions() RankOptions {
	return RankOptions{MinScore: 0.3, Limit: 16}
}
