package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/iliyamo/restaurant-table-reservation/internal/money"
)

// Config holds all runtime configuration values.  Each field maps to
// one environment variable.  Billing parameters are parsed once at
// startup so a malformed TAX_PCT kills the process instead of
// corrupting every bill.
type Config struct {
	Env            string // application environment (dev/test/prod)
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	JWTSecret      string // secret used to sign JWTs
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing

	TaxPct        money.Money    // tax percentage applied to every bill (e.g. 13.00)
	ServiceCharge money.Money    // flat service charge added to every bill
	ReportLoc     *time.Location // timezone used to bound daily revenue windows
}

// Load reads configuration from environment variables.  Required
// variables are enforced by must() and missing values cause the
// program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"), // empty allowed
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     mustInt("BCRYPT_COST"),
		TaxPct:         moneyOr("TAX_PCT", "13.00"),
		ServiceCharge:  moneyOr("SERVICE_CHARGE", "5.00"),
		ReportLoc:      locationOr("REPORT_TIMEZONE", "UTC"),
	}
}

// must retrieves a required environment variable or exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the value to an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// moneyOr parses an exact decimal env var, falling back to def when
// unset.  Negative values are rejected.
func moneyOr(key, def string) money.Money {
	s := getenv(key, def)
	m, err := money.FromString(s)
	if err != nil {
		log.Fatalf("invalid decimal for %s: %q", key, s)
	}
	if m.IsNegative() {
		log.Fatalf("negative value for %s: %q", key, s)
	}
	return m
}

// locationOr loads an IANA timezone name, falling back to def.
func locationOr(key, def string) *time.Location {
	name := getenv(key, def)
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Fatalf("invalid timezone for %s: %q", key, name)
	}
	return loc
}
