package config

type App struct {
	Port        string `env:"APP_PORT" default:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	JWTSecret   string `env:"JWT_SECRET,required"`
	Env         string `env:"APP_ENV" default:"dev"`

	// Pricing knobs; defaults match service/pricing.
	TaxRate     float64 `env:"TAX_RATE" default:"0.08"`
	ShippingFee float64 `env:"SHIPPING_FEE" default:"4.99"`
}
