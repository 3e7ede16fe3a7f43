package dig_container

import (
	"database/sql"
	"fmt"
	"log"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/safari/apps/api/echo"
	"github.com/trezcool/safari/core"
	"github.com/trezcool/safari/core/catalog"
	emailsvc "github.com/trezcool/safari/services/email"
	logsvc "github.com/trezcool/safari/services/logger"
	"github.com/trezcool/safari/storage/database"
	inmemdb "github.com/trezcool/safari/storage/database/inmem"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

// Storage holds the repositories. DB is nil with the in-memory engine.
type Storage struct {
	Repos catalog.Repositories
	DB    *sql.DB
}

func (s Storage) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

func newLogger(conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	return logger
}

func newStorage(conf *core.Config, loggerParam DBLoggerParam) Storage {
	logger := loggerParam.Logger
	if conf.Database.InMemory() {
		logger.Warn("using in-memory storage: records are lost on restart")
		return Storage{Repos: inmemdb.NewRepositories(inmemdb.Open())}
	}

	setUp := func() (*sql.DB, error) {
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}

		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}

		if err = database.Migrate(db); err != nil {
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return Storage{Repos: database.NewRepositories(db), DB: db}
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newServices(
	conf *core.Config,
	storage Storage,
	mailSvc core.EmailService,
	validate *validator.Validate,
	translator ut.Translator,
	logger core.Logger,
) *catalog.Services {
	return catalog.NewServices(conf, storage.Repos, mailSvc, validate, translator, logger)
}

func newServer(
	conf *core.Config,
	logger core.Logger,
	svcs *catalog.Services,
	validate *validator.Validate,
	translator ut.Translator,
) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:       conf,
		Logger:     logger,
		Services:   svcs,
		Validate:   validate,
		Translator: translator,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newLogger, dig.Name("dbLogger")))
	must(c.Provide(newStorage))
	must(c.Provide(newEmailService))
	must(c.Provide(catalog.NewValidator))
	must(c.Provide(newServices))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
