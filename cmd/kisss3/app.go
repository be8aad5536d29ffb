package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dim0x69/kisss3/internal/blob"
	"github.com/dim0x69/kisss3/internal/config"
	"github.com/dim0x69/kisss3/internal/sync"
	"github.com/dim0x69/kisss3/internal/vault"
	"github.com/dim0x69/kisss3/internal/version"
)

var (
	home, _         = os.UserHomeDir()
	defaultVaultDir = filepath.Join(home, "Vault")
	configFileName  = "config"
)

var rootCmd = &cobra.Command{
	Use:     "kisss3",
	Short:   "Keep a local vault and an S3 bucket in sync",
	Version: version.Detailed(),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := configFromViper()
		if err != nil {
			return err
		}

		cmd.SilenceUsage = true
		showHeader()

		return runDaemon(cmd, cfg)
	},
}

func init() {
	rootCmd.Flags().SortFlags = false
	rootCmd.PersistentFlags().StringP("config", "c", config.DefaultConfigPath, "config file")
	rootCmd.PersistentFlags().StringP("vault", "d", defaultVaultDir, "vault directory")
	rootCmd.PersistentFlags().StringP("bucket", "b", "", "S3 bucket name")
	rootCmd.PersistentFlags().String("region", "", "S3 region")
	rootCmd.PersistentFlags().String("endpoint", "", "custom S3 endpoint (MinIO etc.)")
	rootCmd.PersistentFlags().String("prefix", "", "key prefix inside the bucket")
	rootCmd.Flags().DurationP("interval", "i", config.DefaultInterval, "time between sync runs")
	rootCmd.Flags().BoolP("watch", "w", false, "also sync on local file changes")
}

func runDaemon(cmd *cobra.Command, cfg *config.Config) error {
	v, engine, filter, cleanup, err := buildEngine(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	manager := sync.NewManager(engine, cfg.Interval)

	if cfg.Watch {
		watcher := vault.NewWatcher(v)
		// changes to excluded paths can never produce work
		watcher.FilterPaths(filter.IsExcluded)
		if err := watcher.Start(cmd.Context()); err != nil {
			return fmt.Errorf("start watcher: %w", err)
		}
		defer watcher.Stop()
		manager.AttachWatcher(watcher)
	}

	if err := manager.Start(cmd.Context()); err != nil {
		return err
	}

	<-cmd.Context().Done()
	manager.Stop()
	slog.Info("bye")
	return nil
}

// buildEngine wires the collaborators: vault (locked), S3 store, journal,
// path filter. The returned cleanup releases the lock and closes the journal.
func buildEngine(cfg *config.Config) (*vault.Vault, *sync.Engine, *sync.PathFilter, func(), error) {
	v, err := vault.New(cfg.VaultDir)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if err := v.Setup(); err != nil {
		if errors.Is(err, vault.ErrVaultLocked) {
			return nil, nil, nil, nil, fmt.Errorf("vault %q is in use by another kisss3 process", cfg.VaultDir)
		}
		return nil, nil, nil, nil, err
	}

	remote, err := blob.NewS3ClientFromConfig(cfg.S3())
	if err != nil {
		v.Unlock()
		return nil, nil, nil, nil, err
	}

	journal := sync.NewJournal(v.JournalPath())
	if err := journal.Open(); err != nil {
		v.Unlock()
		return nil, nil, nil, nil, err
	}

	filter := sync.NewPathFilter()
	filter.LoadIgnoreFile(v.IgnorePath())

	engine := sync.NewEngine(v, remote, journal, filter, nil)

	cleanup := func() {
		if err := journal.Close(); err != nil {
			slog.Error("close journal", "error", err)
		}
		if err := v.Unlock(); err != nil {
			slog.Error("unlock vault", "error", err)
		}
	}
	return v, engine, filter, cleanup, nil
}

func loadConfig(cmd *cobra.Command) error {
	if cmd.Flags().Changed("config") {
		configFilePath, _ := cmd.Flags().GetString("config")
		viper.SetConfigFile(configFilePath)
	} else {
		viper.AddConfigPath(filepath.Join(home, ".kisss3"))
		viper.AddConfigPath(filepath.Join(home, ".config", "kisss3"))
		viper.SetConfigName(configFileName)
		viper.SetConfigType("json")
	}

	if err := viper.ReadInConfig(); err != nil {
		enoent := errors.Is(err, os.ErrNotExist)
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !enoent && !notFound {
			return fmt.Errorf("config read %q: %w", viper.ConfigFileUsed(), err)
		}
	}

	viper.BindPFlag("vault_dir", cmd.Flags().Lookup("vault"))
	viper.BindPFlag("bucket", cmd.Flags().Lookup("bucket"))
	viper.BindPFlag("region", cmd.Flags().Lookup("region"))
	viper.BindPFlag("endpoint", cmd.Flags().Lookup("endpoint"))
	viper.BindPFlag("prefix", cmd.Flags().Lookup("prefix"))
	if f := cmd.Flags().Lookup("interval"); f != nil {
		viper.BindPFlag("interval", f)
	}
	if f := cmd.Flags().Lookup("watch"); f != nil {
		viper.BindPFlag("watch", f)
	}

	viper.SetEnvPrefix("KISSS3")
	viper.AutomaticEnv()

	return nil
}

func configFromViper() (*config.Config, error) {
	cfg := &config.Config{
		Path:      viper.ConfigFileUsed(),
		VaultDir:  viper.GetString("vault_dir"),
		Bucket:    viper.GetString("bucket"),
		Region:    viper.GetString("region"),
		AccessKey: viper.GetString("access_key"),
		SecretKey: viper.GetString("secret_key"),
		Endpoint:  viper.GetString("endpoint"),
		Prefix:    viper.GetString("prefix"),
		Interval:  viper.GetDuration("interval"),
		Watch:     viper.GetBool("watch"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func showHeader() {
	color.New(color.FgHiCyan, color.Bold).Printf("kisss3 %s\n", version.Detailed())
}
