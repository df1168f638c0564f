package cliparse

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Mapping store backends
const (
	MappingLevelDB = "leveldb"
	MappingRedis   = "redis"
	MappingMemory  = "memory"
)

const (
	defaultPort             = 3318
	defaultRefreshVoteLimit = 5
	defaultMappingPath      = "votememaybe-mappings"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string

	// Contract side; both empty means database only
	RPCURL          string
	ContractAddress string
	ChainID         int64

	// Wallet: a private key signs, an address alone is read-only
	PrivateKey    string
	WalletAddress string

	MappingStore string
	MappingPath  string
	RedisURL     string

	RefreshVoteLimit int

	// Browser origins allowed to call the API; empty allows any
	CORSOrigins []string
}

// HasContract reports whether a contract endpoint is configured
func (c Config) HasContract() bool {
	return c.RPCURL != "" && c.ContractAddress != ""
}

// BindFlags registers every configuration flag on fs
func BindFlags(fs *pflag.FlagSet) {
	fs.IntP("port", "p", defaultPort, "Server port")
	fs.StringP("database-url", "d", "", "Database URL")
	fs.StringP("database-type", "t", "sqlite", "Database type (sqlite or postgres)")

	fs.String("rpc-url", "", "Ethereum JSON-RPC endpoint")
	fs.String("contract-address", "", "Voting contract address")
	fs.Int64("chain-id", 0, "Chain ID (0 asks the node)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.String("private-key", "", "Hex private key for signing (prefer env)")
	fs.String("wallet-address", "", "Read-only wallet address")

	fs.String("mapping-store", MappingLevelDB, "Identifier mapping store (leveldb, redis or memory)")
	fs.String("mapping-path", defaultMappingPath, "LevelDB directory for identifier mappings")
	fs.String("redis-url", "", "Redis URL for identifier mappings")

	fs.Int("refresh-vote-limit", defaultRefreshVoteLimit, "Proposals whose contract votes are fetched on refresh")

	fs.String("cors-origins", "", "Comma-separated browser origins allowed to call the API (default any)")

	fs.String("env-file", ".env", "Environment file loaded before reading env variables")
	fs.String("config", "", "Config file (default ./votememaybe.yaml if present)")
}

// Load merges flags, environment variables and the optional config file.
// Explicit flags win over env, env over the file, the file over defaults.
func Load(flags *pflag.FlagSet) (Config, error) {
	envFile, _ := flags.GetString("env-file")
	if envFile != "" {
		// godotenv never overrides variables that are already set
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load env file: %w", err)
		}
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return Config{}, fmt.Errorf("failed to bind flags: %w", err)
	}

	if err := readConfigFile(v, flags); err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:             v.GetInt("port"),
		DatabaseURL:      v.GetString("database-url"),
		DatabaseType:     strings.ToLower(v.GetString("database-type")),
		RPCURL:           v.GetString("rpc-url"),
		ContractAddress:  v.GetString("contract-address"),
		ChainID:          v.GetInt64("chain-id"),
		PrivateKey:       v.GetString("private-key"),
		WalletAddress:    v.GetString("wallet-address"),
		MappingStore:     strings.ToLower(v.GetString("mapping-store")),
		MappingPath:      v.GetString("mapping-path"),
		RedisURL:         v.GetString("redis-url"),
		RefreshVoteLimit: v.GetInt("refresh-vote-limit"),
		CORSOrigins:      splitList(v.GetString("cors-origins")),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseFlags validates flags and returns the merged configuration
func ParseFlags(args []string) (Config, error) {
	flags := pflag.NewFlagSet("votememaybe", pflag.ContinueOnError)
	BindFlags(flags)

	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}
	return Load(flags)
}

func readConfigFile(v *viper.Viper, flags *pflag.FlagSet) error {
	path, _ := flags.GetString("config")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		return nil
	}

	v.SetConfigName("votememaybe")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// splitList splits a comma-separated value, dropping blanks
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func (c Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return errors.New("invalid port")
	}
	if c.DatabaseURL == "" {
		return errors.New("database URL required (use -d or DATABASE_URL env)")
	}
	if c.DatabaseType != "sqlite" && c.DatabaseType != "postgres" {
		return errors.New("database type must be sqlite or postgres")
	}

	if (c.RPCURL == "") != (c.ContractAddress == "") {
		return errors.New("RPC_URL and CONTRACT_ADDRESS must be set together")
	}
	if c.ContractAddress != "" && !common.IsHexAddress(c.ContractAddress) {
		return errors.New("invalid CONTRACT_ADDRESS")
	}
	if c.WalletAddress != "" && !common.IsHexAddress(c.WalletAddress) {
		return errors.New("invalid WALLET_ADDRESS")
	}

	switch c.MappingStore {
	case MappingLevelDB:
		if c.MappingPath == "" {
			return errors.New("MAPPING_PATH required for the leveldb mapping store")
		}
	case MappingRedis:
		if c.RedisURL == "" {
			return errors.New("REDIS_URL required for the redis mapping store")
		}
	case MappingMemory:
	default:
		return errors.New("mapping store must be leveldb, redis or memory")
	}

	for _, origin := range c.CORSOrigins {
		if !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("invalid CORS origin %q", origin)
		}
	}

	if c.RefreshVoteLimit < 0 {
		return errors.New("refresh vote limit cannot be negative")
	}
	return nil
}
