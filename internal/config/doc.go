// Package config provides configuration loading for ADB-aware tooling.
//
// # Overview
//
// The config package handles loading, parsing, and validating tool
// configuration from YAML files and environment variables:
//
//   - YAML configuration files (gopkg.in/yaml.v3)
//   - Environment variable substitution ("${VAR}"/"$VAR")
//   - Default values for all settings
//   - Configuration validation
//
// # Configuration Structure
//
//	type Config struct {
//	    Root       RootConfig       // managed apk root location
//	    Repository RepositoryConfig // repository URLs, fetch timeout
//	    Signing    SigningConfig    // signature-verification policy
//	    Logging    LogConfig        // logging settings
//	}
//
// # Loading Configuration
//
//	cfg, err := config.LoadConfig("/etc/apk/adb.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Or use defaults:
//
//	cfg := config.DefaultConfig()
//
// # Example Configuration
//
//	root:
//	  path: "/"
//	  createIfNotExists: false
//
//	repository:
//	  urls:
//	    - "https://dl-cdn.alpinelinux.org/alpine/v3.19/main"
//	  fetchTimeout: 30s
//
//	signing:
//	  enabled: true
//	  keysDir: "${APK_KEYS_DIR}"
//
//	logging:
//	  level: "info"
//	  format: "console"
//	  output: "stderr"
package config
