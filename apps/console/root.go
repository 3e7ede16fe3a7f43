package main

import (
	"os"
	"path/filepath"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trezcool/safari/core"
	"github.com/trezcool/safari/core/catalog"
	logsvc "github.com/trezcool/safari/services/logger"
	"github.com/trezcool/safari/services/remotesync"
)

// app is what every command works with, built once the flags are parsed.
type app struct {
	conf       *core.Config
	logger     core.Logger
	client     *remotesync.Client
	validate   *validator.Validate
	translator ut.Translator
	logFile    *os.File
}

func newRootCmd() *cobra.Command {
	var (
		a           = &app{}
		apiURL      string
		sessionFile string
		debug       bool
	)

	root := &cobra.Command{
		Use:           "safari",
		Short:         "Back-office console of the Safari study-abroad platform",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.conf = core.NewConfig()
			if apiURL != "" {
				a.conf.Console.APIBaseURL = apiURL
			}
			if sessionFile != "" {
				a.conf.Console.SessionFile = sessionFile
			}
			return a.init(debug)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}

	root.PersistentFlags().StringVar(&apiURL, "api", "", "API base URL (default $<ENV>_CONSOLEAPIBASEURL or http://localhost:8000/api)")
	root.PersistentFlags().StringVar(&sessionFile, "session", "", "session file (default ~/.safari/session)")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "log requests to the console log")

	root.AddCommand(loginCmd(a), logoutCmd(a), setupCmd(a), bookCmd(a))
	for _, r := range resources {
		root.AddCommand(resourceCmd(a, r))
	}
	return root
}

// init opens the console log next to the session file; the terminal belongs to the TUI.
func (a *app) init(debug bool) error {
	dir := filepath.Dir(a.conf.Console.SessionFile)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrap(err, "creating console dir")
	}
	f, err := os.OpenFile(filepath.Join(dir, "console.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return errors.Wrap(err, "opening console log")
	}
	a.logFile = f
	a.logger = logsvc.NewLocalLogger(f, debug)

	if a.client, err = remotesync.NewClientFromConfig(a.conf, a.logger); err != nil {
		return err
	}
	a.validate, a.translator = catalog.NewValidator()
	return nil
}

func (a *app) close() {
	if s, ok := a.logger.(interface{ Sync() }); ok {
		s.Sync()
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}
