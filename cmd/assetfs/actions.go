package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/brettbedarf/assetfs"
	"github.com/brettbedarf/assetfs/classifier"
	"github.com/brettbedarf/assetfs/config"
	"github.com/brettbedarf/assetfs/inspect"
	"github.com/brettbedarf/assetfs/internal/util"
	"github.com/brettbedarf/assetfs/manifest"
	"github.com/brettbedarf/assetfs/server"
	"github.com/brettbedarf/assetfs/stores"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// loadConfig builds the config from defaults, the --config file and the
// verbosity flag, in that order, and initializes logging from it
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg := config.NewDefaultConfig()
	if path := c.String("config"); path != "" {
		override, err := config.LoadConfigOverrideFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "couldn't load config %s", path)
		}
		cfg.Merge(override)
	}
	if c.IsSet("verbose") {
		cfg.Merge(&config.ConfigOverride{LogLvl: util.Pointer(c.Int("verbose"))})
	}
	util.InitializeLoggerTo(c.App.ErrWriter, cfg.LogLvl)
	return cfg, nil
}

func loadStore(c *cli.Context) (assetfs.AssetStore, error) {
	path := c.String("store")
	if path == "" {
		return nil, errors.New("no store definition provided; pass --store")
	}
	stores.RegisterBuiltins(stores.Default)
	return manifest.Build(stores.Default, path)
}

// classify

func classifyAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("no paths provided")
	}
	if _, err := loadConfig(c); err != nil {
		return err
	}
	store, err := loadStore(c)
	if err != nil {
		return err
	}

	cl := classifier.New(store)
	for _, p := range c.Args().Slice() {
		fmt.Fprintf(c.App.Writer, "%s\t%s\n", cl.Classify(p), p)
	}
	return nil
}

// inspect

func inspectAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("no paths provided")
	}
	format := c.String("format")
	switch format {
	case formatText, formatJSON, formatYAML:
	default:
		return errors.Errorf("unknown output format %q", format)
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	store, err := loadStore(c)
	if err != nil {
		return err
	}

	concurrency := cfg.Concurrency
	if c.IsSet("concurrency") {
		concurrency = c.Int("concurrency")
	}
	reports, err := inspect.DescribeAll(c.Context, classifier.New(store), c.Args().Slice(), concurrency)
	if err != nil {
		return errors.Wrap(err, "inspection interrupted")
	}
	return printReports(c, format, reports)
}

func printReports(c *cli.Context, format string, reports []inspect.Report) error {
	w := c.App.Writer
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	case formatYAML:
		out, err := yaml.Marshal(reports)
		if err != nil {
			return errors.Wrap(err, "couldn't render reports as YAML")
		}
		_, err = w.Write(out)
		return err
	}
	for _, r := range reports {
		mime := r.MIME
		if mime == "" {
			mime = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", r.Kind, mime, r.Path)
	}
	return nil
}

// mount

func mountAction(c *cli.Context) error {
	mnt := c.Args().First()
	if mnt == "" {
		return errors.New("mount point not specified; it must be passed as the argument")
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if c.IsSet("root") {
		cfg.Merge(&config.ConfigOverride{Root: util.Pointer(c.String("root"))})
	}
	store, err := loadStore(c)
	if err != nil {
		return err
	}
	logger := util.GetLogger("main")

	if c.Bool("umount") {
		// we ignore error here if not already mounted
		_ = exec.Command("fusermount", "-u", mnt).Run()
	}

	afs := server.New(cfg, store)
	logger.Info().Str("mnt", mnt).Str("root", cfg.Root).Str("session", afs.Session().String()).
		Msg("AssetFS server initializing")
	if err := afs.Serve(mnt); err != nil {
		return err
	}
	logger.Info().Str("mountpoint", mnt).Msg("Filesystem mounted successfully")

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer signal.Stop(signalChan)
	unmounted := make(chan struct{})
	go func() {
		afs.Wait()
		close(unmounted)
	}()

	select {
	case sig := <-signalChan:
		logger.Info().Str("signal", sig.String()).Msg("Received signal, unmounting filesystem")
		if err := afs.Unmount(); err != nil {
			return errors.Wrap(err, "failed to unmount filesystem")
		}
		logger.Info().Msg("Filesystem unmounted successfully")
	case <-unmounted:
		logger.Info().Msg("Filesystem was unmounted externally")
	}
	return nil
}
