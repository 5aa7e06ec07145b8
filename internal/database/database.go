package database

import (
	"fmt"

	"trade-journal-go/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewDatabase creates a new database connection and performs auto-migration.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := AutoMigrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// AutoMigrate creates or updates the schema for all journal entities.
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Organization{},
		&models.User{},
		&models.Coin{},
		&models.Strategy{},
		&models.Trade{},
		&models.BacktestTrade{},
	)
	if err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	return nil
}

// seedCoin is one entry of the default coin catalog.
type seedCoin struct {
	Name, Symbol, Description string
}

// seedStrategy is one entry of the default strategy catalog.
type seedStrategy struct {
	Name, Description string
	Rules             map[string]any
}

var defaultCoins = []seedCoin{
	{"Bitcoin", "BTC", "The first and largest cryptocurrency by market cap"},
	{"Ethereum", "ETH", "Decentralized platform for smart contracts and DApps"},
	{"Tether", "USDT", "Stablecoin pegged to US Dollar"},
	{"BNB", "BNB", "Native token of Binance ecosystem"},
	{"Solana", "SOL", "High-performance blockchain for DApps"},
	{"XRP", "XRP", "Digital payment protocol and cryptocurrency"},
	{"USD Coin", "USDC", "Stablecoin pegged to US Dollar"},
	{"Cardano", "ADA", "Proof-of-stake blockchain platform"},
	{"Avalanche", "AVAX", "Platform for decentralized applications"},
	{"Dogecoin", "DOGE", "Meme cryptocurrency with strong community"},
}

var defaultStrategies = []seedStrategy{
	{"MACD", "Moving Average Convergence Divergence - momentum indicator",
		map[string]any{"type": "momentum", "indicators": []string{"MACD", "Signal Line"}}},
	{"Bollinger Bands", "Volatility indicator with upper and lower bands",
		map[string]any{"type": "volatility", "indicators": []string{"SMA", "Upper Band", "Lower Band"}}},
	{"Moving Average Crossover", "Buy/sell signals from MA crossovers",
		map[string]any{"type": "trend", "indicators": []string{"SMA", "EMA"}}},
	{"Fibonacci Retracement", "Support/resistance levels based on Fibonacci ratios",
		map[string]any{"type": "support_resistance", "levels": []float64{0.236, 0.382, 0.5, 0.618, 0.786}}},
	{"Breakout Trading", "Enter trades when price breaks key levels",
		map[string]any{"type": "breakout", "indicators": []string{"Volume", "Price Action"}}},
	{"Trend Following", "Trade in direction of established trend",
		map[string]any{"type": "trend", "indicators": []string{"ADX", "Moving Averages"}}},
	{"Swing Trading", "Hold positions for days to weeks",
		map[string]any{"type": "swing", "timeframe": "4h-1d", "indicators": []string{"RSI", "MACD", "Support/Resistance"}}},
}

// SeedOrganization populates a fresh organization with the default coin and
// strategy catalogs. Existing rows are left untouched.
func SeedOrganization(db *gorm.DB, orgID uint) error {
	for _, c := range defaultCoins {
		coin := models.Coin{Name: c.Name, Symbol: c.Symbol, Description: c.Description, OrganizationID: orgID}
		if err := db.FirstOrCreate(&coin, models.Coin{Symbol: c.Symbol, OrganizationID: orgID}).Error; err != nil {
			return fmt.Errorf("failed to seed coin '%s': %w", c.Symbol, err)
		}
	}

	for _, s := range defaultStrategies {
		strategy := models.Strategy{Name: s.Name, Description: s.Description, Rules: s.Rules, OrganizationID: orgID}
		if err := db.FirstOrCreate(&strategy, models.Strategy{Name: s.Name, OrganizationID: orgID}).Error; err != nil {
			return fmt.Errorf("failed to seed strategy '%s': %w", s.Name, err)
		}
	}

	return nil
}
