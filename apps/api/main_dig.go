package main

import (
	"log"

	dig_container "github.com/trezcool/safari/apps/api/di/dig"
	echoapi "github.com/trezcool/safari/apps/api/echo"
	"github.com/trezcool/safari/core"
)

func startWithDig() {
	c := dig_container.New()

	must(c.Invoke(func(
		conf *core.Config,
		logger core.Logger,
		dbLoggerParam dig_container.DBLoggerParam,
		storage dig_container.Storage,
		server *echoapi.Server,
	) {
		run(conf, logger, server, func() {
			if err := storage.Close(); err != nil {
				dbLoggerParam.Logger.Fatal("Failed to close", err)
			}
		})
	}))
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
