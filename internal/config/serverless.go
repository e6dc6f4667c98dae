package config

import (
	"os"
	"sync"
)

// ServerlessConfig holds serverless-specific configuration
type ServerlessConfig struct {
	IsLambda     bool
	FunctionName string
	Region       string
	Stage        string
}

var (
	serverlessConfig *ServerlessConfig
	serverlessOnce   sync.Once
)

// GetServerlessConfig returns the serverless configuration
func GetServerlessConfig() *ServerlessConfig {
	serverlessOnce.Do(func() {
		serverlessConfig = &ServerlessConfig{
			IsLambda:     isRunningInLambda(),
			FunctionName: os.Getenv("AWS_LAMBDA_FUNCTION_NAME"),
			Region:       os.Getenv("AWS_REGION"),
			Stage:        GetEnv("STAGE", "dev"),
		}
	})
	return serverlessConfig
}

func isRunningInLambda() bool {
	return os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""
}

// IsServerlessMode returns true if running in serverless mode
func IsServerlessMode() bool {
	return GetServerlessConfig().IsLambda
}

// AdaptConfigForServerless modifies configuration for a Lambda runtime.
// The only writable path in Lambda is /tmp, and one execution environment
// serves one request at a time, so the pool is kept small.
func AdaptConfigForServerless(config *Config) *Config {
	if rdsEndpoint := os.Getenv("RDS_ENDPOINT"); rdsEndpoint != "" {
		config.Database.Driver = DriverPostgres
		config.Database.DSN = buildRDSConnectionString(rdsEndpoint)
	} else if config.Database.IsSQLite() && config.Database.DSN == DefaultSQLitePath {
		config.Database.DSN = "/tmp/customers.db"
	}

	if config.Database.MaxOpenConns > 2 {
		config.Database.MaxOpenConns = 2
	}
	if config.Database.MaxIdleConns > 2 {
		config.Database.MaxIdleConns = 2
	}
	config.Database.ConnectAttempts = 1

	return config
}

// buildRDSConnectionString constructs a pgx keyword/value DSN from RDS_* variables
func buildRDSConnectionString(host string) string {
	port := GetEnv("RDS_PORT", "5432")
	dbname := GetEnv("RDS_DB_NAME", "customers")
	user := os.Getenv("RDS_USERNAME")
	password := os.Getenv("RDS_PASSWORD")

	return "host=" + host + " port=" + port + " user=" + user + " password=" + password + " dbname=" + dbname + " sslmode=require"
}

// GetOptimizedConfig returns configuration optimized for the current deployment mode
func GetOptimizedConfig() (*Config, error) {
	config, err := Load()
	if err != nil {
		return nil, err
	}

	if IsServerlessMode() {
		config = AdaptConfigForServerless(config)
	}

	return config, nil
}
