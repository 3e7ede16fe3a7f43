package main

import (
	"fmt"
	"os"

	"github.com/trezcool/safari/core"
	"github.com/trezcool/safari/core/catalog"
	emailsvc "github.com/trezcool/safari/services/email"
	logsvc "github.com/trezcool/safari/services/logger"
	"github.com/trezcool/safari/storage/database"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(conf)
	defer logger.Sync()

	if conf.Database.InMemory() {
		logger.Fatal("admin: the in-memory engine has nothing to administer; set DB_ENGINE=postgres")
	}

	// set up DB
	db, err := database.Open(conf)
	errAndDie(logger, err)
	defer db.Close()
	errAndDie(logger, db.Ping())

	// set up services
	repos := database.NewRepositories(db)
	validate, translator := catalog.NewValidator()
	svcs := catalog.NewServices(conf, repos, emailsvc.NewConsoleService(conf, logger), validate, translator, logger)

	// start CLI
	cli := commandLine{
		db:      db,
		usrRepo: repos.Users,
		svcs:    svcs,
		logger:  logger,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			fmt.Fprintf(os.Stderr, "\nerror: %s\n", err)
		}
		logger.Sync()
		os.Exit(1)
	}
}

func errAndDie(logger core.Logger, err error) {
	if err != nil {
		logger.Fatal(err.Error(), err)
	}
}
