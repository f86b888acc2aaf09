package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/strata-io/strata-client/internal/auth"
	"github.com/strata-io/strata-client/internal/client"
	"github.com/strata-io/strata-client/internal/constants"
	"github.com/strata-io/strata-client/pkg/strata"
	"github.com/strata-io/strata-client/pkg/strataclient"
	"gopkg.in/yaml.v3"
)

// Config represents the CLI configuration.
type Config struct {
	API            string     `json:"api,omitempty"              yaml:"api,omitempty"`
	Token          string     `json:"token,omitempty"            yaml:"token,omitempty"`
	TokenExpiresAt *time.Time `json:"token_expires_at,omitempty" yaml:"token_expires_at,omitempty"`
	RefreshToken   string     `json:"refresh_token,omitempty"    yaml:"refresh_token,omitempty"`
	LastRefreshed  *time.Time `json:"last_refreshed,omitempty"   yaml:"last_refreshed,omitempty"`
	Username       string     `json:"username,omitempty"         yaml:"username,omitempty"`
	TokenURL       string     `json:"token_url,omitempty"        yaml:"token_url,omitempty"`

	// Global settings
	Output            string `json:"output"              yaml:"output"`
	NoColor           bool   `json:"no_color"            yaml:"no_color"`
	SkipSSLValidation bool   `json:"skip_ssl_validation" yaml:"skip_ssl_validation"`
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Manage Strata CLI configuration including the API target and settings",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())
	cmd.AddCommand(newConfigClearCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the current CLI configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			output := viper.GetString("output")
			switch output {
			case constants.FormatJSON:
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")

				return encoder.Encode(redactedConfig(config))
			case constants.FormatYAML:
				encoder := yaml.NewEncoder(os.Stdout)

				return encoder.Encode(redactedConfig(config))
			default:
				return displayConfigTable(config)
			}
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set a specific configuration value",
		Args:  cobra.ExactArgs(constants.KeyValueSplitParts),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value := args[1]

			config := loadConfig()

			err := setConfigValue(config, key, value)
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			fmt.Printf("Set %s\n", key)

			return nil
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Long:  "Remove a specific configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			config := loadConfig()

			err := unsetConfigValue(config, key)
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			fmt.Printf("Unset %s\n", key)

			return nil
		},
	}
}

func newConfigClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear configuration",
		Long:  "Remove all configuration settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			configFile := viper.ConfigFileUsed()
			if configFile == "" {
				home, _ := os.UserHomeDir()
				configFile = filepath.Join(home, ".strata", "config.yml")
			}

			err := os.Remove(configFile)
			if err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to remove config file: %w", err)
			}

			fmt.Println("Cleared all configuration")

			return nil
		},
	}
}

func setConfigValue(config *Config, key, value string) error {
	switch key {
	case "api":
		config.API = value
	case "username":
		config.Username = value
	case "token_url":
		config.TokenURL = value
	case "output":
		config.Output = value
	case "no_color":
		config.NoColor = parseBoolValue(value)
	case "skip_ssl_validation":
		config.SkipSSLValidation = parseBoolValue(value)
	default:
		return fmt.Errorf("%w: %s", strata.ErrUnknownConfigKey, key)
	}

	return nil
}

func unsetConfigValue(config *Config, key string) error {
	switch key {
	case "api":
		config.API = ""
	case "username":
		config.Username = ""
	case "token_url":
		config.TokenURL = ""
	case "output":
		config.Output = constants.FormatTable
	case "no_color":
		config.NoColor = false
	case "skip_ssl_validation":
		config.SkipSSLValidation = false
	// Token fields should not be unset via config command for security
	case "token", "refresh_token":
		return fmt.Errorf("%w. Use 'strata logout' instead", strata.ErrTokenFieldsCannotUnset)
	default:
		return fmt.Errorf("%w: %s", strata.ErrUnknownConfigKey, key)
	}

	return nil
}

// parseBoolValue parses a boolean value from string.
func parseBoolValue(value string) bool {
	return value == "true" || value == "1"
}

func loadConfig() *Config {
	config := &Config{
		API:               viper.GetString("api"),
		Token:             viper.GetString("token"),
		RefreshToken:      viper.GetString("refresh_token"),
		Username:          viper.GetString("username"),
		TokenURL:          viper.GetString("token_url"),
		Output:            viper.GetString("output"),
		NoColor:           viper.GetBool("no_color"),
		SkipSSLValidation: viper.GetBool("skip_ssl_validation"),
	}

	if expiresAtStr := viper.GetString("token_expires_at"); expiresAtStr != "" {
		t, err := time.Parse(time.RFC3339, expiresAtStr)
		if err == nil {
			config.TokenExpiresAt = &t
		}
	}

	if lastRefreshedStr := viper.GetString("last_refreshed"); lastRefreshedStr != "" {
		t, err := time.Parse(time.RFC3339, lastRefreshedStr)
		if err == nil {
			config.LastRefreshed = &t
		}
	}

	return config
}

func saveConfigStruct(config *Config) error {
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get user home directory: %w", err)
		}

		configDir := filepath.Join(home, ".strata")

		err = os.MkdirAll(configDir, constants.ConfigDirPerm)
		if err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}

		configFile = filepath.Join(configDir, "config.yml")
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// redactedConfig returns a copy of the config with token values masked.
func redactedConfig(config *Config) *Config {
	redacted := *config
	if redacted.Token != "" {
		redacted.Token = constants.MaskedSecret
	}

	if redacted.RefreshToken != "" {
		redacted.RefreshToken = constants.MaskedSecret
	}

	return &redacted
}

func displayConfigTable(config *Config) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Property", "Value")

	_ = table.Append([]string{"API", formatConfigValue(config.API)})
	_ = table.Append([]string{"Username", formatConfigValue(config.Username)})
	_ = table.Append([]string{"Token URL", formatConfigValue(config.TokenURL)})
	_ = table.Append([]string{"Output", config.Output})
	_ = table.Append([]string{"No Color", strconv.FormatBool(config.NoColor)})
	_ = table.Append([]string{"Skip SSL", strconv.FormatBool(config.SkipSSLValidation)})

	if config.Token != "" {
		_ = table.Append([]string{"Token", "[REDACTED]"})
	}

	if config.TokenExpiresAt != nil {
		_ = table.Append([]string{"Token Expires", config.TokenExpiresAt.Format(time.RFC3339)})
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func formatConfigValue(value string) string {
	if value == "" {
		return "-"
	}

	return value
}

// CreateClientWithAPI creates a Strata client using the given endpoint or the
// configured one, reusing the persisted token when available.
func CreateClientWithAPI(apiFlag string) (strata.Client, error) {
	config := loadConfig()

	apiEndpoint := apiFlag
	if apiEndpoint == "" {
		apiEndpoint = config.API
	}

	if apiEndpoint == "" {
		return nil, fmt.Errorf("%w, use 'strata login' first", strata.ErrAPIEndpointRequired)
	}

	strataConfig := &strata.Config{
		APIEndpoint:   apiEndpoint,
		SkipTLSVerify: config.SkipSSLValidation,
		Username:      config.Username,
		TokenURL:      config.TokenURL,
	}

	if config.Token == "" && config.RefreshToken == "" {
		return nil, fmt.Errorf("%w, use 'strata login' first", strata.ErrNotAuthenticated)
	}

	tokenManager := createTokenManager(config, apiEndpoint)
	if tokenManager != nil {
		strataClient, err := client.NewWithTokenManager(strataConfig, tokenManager)
		if err != nil {
			return nil, fmt.Errorf("failed to create client with token manager: %w", err)
		}

		return strataClient, nil
	}

	strataConfig.AccessToken = config.Token

	strataClient, err := strataclient.New(context.Background(), strataConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return strataClient, nil
}

// createTokenManager builds a config-persisting token manager when a token URL
// is known; otherwise the static token path is used.
func createTokenManager(config *Config, apiEndpoint string) auth.TokenManager {
	if config.TokenURL == "" {
		return nil
	}

	oauth2Config := &auth.OAuth2Config{
		TokenURL:     config.TokenURL,
		ClientID:     "strata-cli",
		Username:     config.Username,
		RefreshToken: config.RefreshToken,
		AccessToken:  config.Token,
	}

	initialExpiry := time.Time{}
	if config.TokenExpiresAt != nil {
		initialExpiry = *config.TokenExpiresAt
	}

	return auth.NewConfigTokenManager(oauth2Config, NewConfigPersister(), apiEndpoint, config.Token, initialExpiry)
}

// parseLabels parses repeated key=value strings into a label map.
func parseLabels(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	labels := make(map[string]string, len(pairs))

	for _, pair := range pairs {
		parts := strings.SplitN(pair, "=", constants.KeyValueSplitParts)
		if len(parts) != constants.KeyValueSplitParts {
			return nil, fmt.Errorf("%w: %s", ErrInvalidLabelFormat, pair)
		}

		labels[parts[0]] = parts[1]
	}

	return labels, nil
}
