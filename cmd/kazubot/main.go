package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/stellarlinkco/kazubot/internal/config"
	"github.com/stellarlinkco/kazubot/internal/gateway"
)

var rootCmd = &cobra.Command{
	Use:   "kazubot",
	Short: "kazubot - persona chat responder",
}

var gatewayCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Start the gateway (channels + daily checkpoints)",
	RunE:  runGateway,
}

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Initialize config",
	RunE:  runOnboard,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show kazubot status",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(gatewayCmd, onboardCmd, statusCmd)
}

func main() {
	// Optional .env for local runs; missing file is fine.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runGateway(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if !cfg.Channels.LINE.Enabled && !cfg.Channels.Telegram.Enabled {
		return fmt.Errorf("no channel enabled. Run 'kazubot onboard' and edit %s", config.ConfigPath())
	}

	gw, err := gateway.New(cfg)
	if err != nil {
		return fmt.Errorf("create gateway: %w", err)
	}

	return gw.Run(context.Background())
}

func runOnboard(cmd *cobra.Command, args []string) error {
	cfgPath := config.ConfigPath()

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		if err := config.SaveConfig(config.DefaultConfig()); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		fmt.Printf("Created config: %s\n", cfgPath)
	} else {
		fmt.Printf("Config already exists: %s\n", cfgPath)
	}

	fmt.Println("\nNext steps:")
	fmt.Printf("  1. Edit %s to enable a channel and set credentials\n", cfgPath)
	fmt.Println("  2. Or set LINE_CHANNEL_SECRET / LINE_CHANNEL_ACCESS_TOKEN / OPENAI_API_KEY")
	fmt.Println("  3. Run 'kazubot gateway'")

	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Config: error (%v)\n", err)
		return nil
	}

	fmt.Printf("Config: %s\n", config.ConfigPath())
	fmt.Printf("Model: %s\n", cfg.Provider.Model)
	fmt.Printf("Provider API key: %s\n", maskKey(cfg.Provider.APIKey))
	fmt.Printf("LINE: enabled=%v secret=%s\n", cfg.Channels.LINE.Enabled, maskKey(cfg.Channels.LINE.ChannelSecret))
	fmt.Printf("Telegram: enabled=%v\n", cfg.Channels.Telegram.Enabled)
	if cfg.Store.RedisAddr != "" {
		fmt.Printf("State: redis at %s\n", cfg.Store.RedisAddr)
	} else {
		fmt.Println("State: in-memory (no redis configured)")
	}
	fmt.Printf("Quiet windows (UTC%+d, weekdays): %v\n", cfg.Persona.UTCOffsetHours, cfg.Persona.QuietWindows)
	fmt.Printf("Burst threshold: %d in %dm\n", cfg.Persona.BurstThreshold, cfg.Persona.BurstWindowMin)
	fmt.Printf("Jealous policy: %s\n", cfg.Persona.JealousPolicy)
	fmt.Printf("Push targets: %d\n", len(cfg.Schedule.PushTo))

	return nil
}

func maskKey(key string) string {
	if key == "" {
		return "not set"
	}
	if len(key) <= 8 {
		return "set"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
